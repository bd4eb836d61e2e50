package domain

import "time"

// MinPasswordLength - минимальная длина пароля при регистрации.
const MinPasswordLength = 6

// Identity - аутентифицированный пользователь текущей сессии.
// Отсутствие сессии представлено nil *Identity.
type Identity struct {
	UserID    string
	Email     string
	Token     string
	ExpiresAt time.Time
}

// Expired сообщает, истек ли срок токена к моменту now. Нулевой ExpiresAt не истекает.
func (i *Identity) Expired(now time.Time) bool {
	if i == nil {
		return true
	}
	return !i.ExpiresAt.IsZero() && !now.Before(i.ExpiresAt)
}
