package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrListingNotFound = errors.New("listing not found")
	ErrNoSession       = errors.New("no active session")
	ErrTokenInvalid    = errors.New("invalid or expired session token")
)

// ValidationError - локальная ошибка формы, до обращения к репозиторию.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// AuthReason - закрытый набор причин отказа бэкенда аутентификации.
type AuthReason int

const (
	AuthReasonUnknown AuthReason = iota
	AuthReasonInvalidEmail
	AuthReasonUserNotFound
	AuthReasonWrongPassword
	AuthReasonInvalidCredential
	AuthReasonTooManyRequests
	AuthReasonUserDisabled
	AuthReasonEmailAlreadyInUse
	AuthReasonWeakPassword
	AuthReasonOperationNotAllowed
)

var authReasonCodes = map[AuthReason]string{
	AuthReasonInvalidEmail:        "invalid-email",
	AuthReasonUserNotFound:        "user-not-found",
	AuthReasonWrongPassword:       "wrong-password",
	AuthReasonInvalidCredential:   "invalid-credential",
	AuthReasonTooManyRequests:     "too-many-requests",
	AuthReasonUserDisabled:        "user-disabled",
	AuthReasonEmailAlreadyInUse:   "email-already-in-use",
	AuthReasonWeakPassword:        "weak-password",
	AuthReasonOperationNotAllowed: "operation-not-allowed",
}

// Code возвращает машинный код причины в том виде, в котором его отдает бэкенд.
func (r AuthReason) Code() string {
	if code, ok := authReasonCodes[r]; ok {
		return code
	}
	return "unknown"
}

func (r AuthReason) String() string { return r.Code() }

// ParseAuthReason принимает код как с префиксом "auth/", так и без него.
// Неизвестные коды сворачиваются в AuthReasonUnknown.
func ParseAuthReason(code string) AuthReason {
	code = strings.TrimPrefix(strings.TrimSpace(code), "auth/")
	for reason, c := range authReasonCodes {
		if c == code {
			return reason
		}
	}
	return AuthReasonUnknown
}

// AuthError - отказ бэкенда аутентификации.
type AuthError struct {
	Reason AuthReason
	Err    error
}

func NewAuthError(reason AuthReason, err error) *AuthError {
	return &AuthError{Reason: reason, Err: err}
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("auth/%s: %v", e.Reason.Code(), e.Err)
	}
	return "auth/" + e.Reason.Code()
}

func (e *AuthError) Unwrap() error { return e.Err }

// StoreErrorKind различает сбои чтения и записи хранилища.
type StoreErrorKind int

const (
	StoreRead StoreErrorKind = iota
	StoreWrite
)

func (k StoreErrorKind) String() string {
	if k == StoreWrite {
		return "write"
	}
	return "read"
}

// StoreError - непрозрачный сбой документного хранилища.
type StoreError struct {
	Kind StoreErrorKind
	Op   string
	Err  error
}

func NewStoreError(kind StoreErrorKind, op string, err error) *StoreError {
	return &StoreError{Kind: kind, Op: op, Err: err}
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s failed (%s): %v", e.Kind, e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// IsStoreError сообщает, является ли err (или любая обернутая им ошибка) StoreError.
func IsStoreError(err error) bool {
	var storeErr *StoreError
	return errors.As(err, &storeErr)
}

// AuthReasonOf извлекает причину из цепочки ошибок.
func AuthReasonOf(err error) (AuthReason, bool) {
	var authErr *AuthError
	if errors.As(err, &authErr) {
		return authErr.Reason, true
	}
	return AuthReasonUnknown, false
}
