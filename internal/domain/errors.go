package domain

import "errors"

var (
	ErrNotFound           = errors.New("resource not found")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountInactive    = errors.New("account is inactive")
	ErrDuplicateEmail     = errors.New("email already registered")

	ErrDraftInvalid     = errors.New("invoice draft failed validation")
	ErrProfileNotFound  = errors.New("business profile not configured")
	ErrCreditsExhausted = errors.New("no invoice credits remaining")

	ErrUnsupportedLogoType = errors.New("unsupported logo file type")
	ErrLogoTooLarge        = errors.New("logo exceeds maximum allowed size")
	ErrUploadFailed        = errors.New("upload to storage failed")

	ErrRenderFailed    = errors.New("invoice rendering failed")
	ErrEmailSendFailed = errors.New("invoice email delivery failed")

	ErrOrderNotFound      = errors.New("payment order not found")
	ErrPaymentNotFound    = errors.New("payment not found")
	ErrInvalidOrder       = errors.New("invalid payment order parameters")
	ErrSignatureMismatch  = errors.New("payment signature mismatch")
	ErrPaymentNotCaptured = errors.New("payment not captured")
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")
)
