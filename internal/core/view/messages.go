package view

import (
	"github.com/Fvicente04/ca1-real-estate-app/internal/core/domain"
)

const (
	msgInvalidListing      = "Please fill in all required fields correctly."
	msgListingCreated      = "Property created successfully!"
	msgCreateListingFailed = "Failed to create property. Please try again."

	msgViewingRequestSent   = "Thank you! Your viewing request has been sent."
	msgViewingRequestFailed = "Sorry, there was a problem sending your request. Please try again."

	msgSignInMissingFields = "Please fill in all fields"
	msgSignedIn            = "Signed in successfully."
	msgSignInFailed        = "An error occurred during login."

	msgSignUpMissingFields = "Please fill in all fields."
	msgPasswordTooShort    = "Password must be at least 6 characters."
	msgPasswordMismatch    = "Passwords don't match."
	msgSignedUp            = "Account created. Please sign in."
	msgSignUpFailed        = "An error occurred during registration. Please try again."
)

var signInReasonMessages = map[domain.AuthReason]string{
	domain.AuthReasonInvalidEmail:      "Invalid email address format.",
	domain.AuthReasonUserNotFound:      "No account found with this email.",
	domain.AuthReasonWrongPassword:     "Incorrect password.",
	domain.AuthReasonInvalidCredential: "Invalid email or password.",
	domain.AuthReasonTooManyRequests:   "Too many failed attempts. Please try again later.",
	domain.AuthReasonUserDisabled:      "This account has been disabled.",
}

var signUpReasonMessages = map[domain.AuthReason]string{
	domain.AuthReasonEmailAlreadyInUse:   "This email is already registered. Please sign in instead.",
	domain.AuthReasonInvalidEmail:        "Invalid email address format.",
	domain.AuthReasonWeakPassword:        "Password is too weak. Please use at least 6 characters.",
	domain.AuthReasonOperationNotAllowed: "Registration is currently disabled. Please try again later.",
	domain.AuthReasonUserDisabled:        "This account has been disabled.",
}

// SignInErrorMessage переводит отказ входа в текст для пользователя.
func SignInErrorMessage(err error) string {
	return authMessage(err, signInReasonMessages, msgSignInFailed)
}

// SignUpErrorMessage переводит отказ регистрации в текст для пользователя.
func SignUpErrorMessage(err error) string {
	return authMessage(err, signUpReasonMessages, msgSignUpFailed)
}

func authMessage(err error, messages map[domain.AuthReason]string, fallback string) string {
	reason, ok := domain.AuthReasonOf(err)
	if !ok {
		return fallback
	}
	if msg, ok := messages[reason]; ok {
		return msg
	}
	return fallback
}

// storeMessage - любой сбой хранилища показывается одним и тем же текстом.
func storeMessage(msg string) func(error) string {
	return func(error) string { return msg }
}
