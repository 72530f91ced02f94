package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"invogen/internal/domain"
	"invogen/internal/middleware"
)

// APIResponse is the standard envelope for all API responses.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
	Meta    *PagMeta    `json:"meta,omitempty"`
}

// APIError holds error details in the response.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// PagMeta holds pagination metadata.
type PagMeta struct {
	Total int `json:"total"`
	Limit int `json:"limit"`
}

// RespondOK sends a 200 success response.
func RespondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data})
}

// RespondCreated sends a 201 success response.
func RespondCreated(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, APIResponse{Success: true, Data: data})
}

// RespondPaginated sends a 200 success response with pagination metadata.
func RespondPaginated(c *gin.Context, data interface{}, meta PagMeta) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data, Meta: &meta})
}

// RespondError sends an error response with the given status code.
func RespondError(c *gin.Context, status int, code, msg string) {
	c.JSON(status, APIResponse{
		Success: false,
		Error:   &APIError{Code: code, Message: msg},
	})
}

// MapDomainError translates domain errors to HTTP status codes and error codes.
func MapDomainError(err error) (status int, code, msg string) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "NOT_FOUND", "resource not found"
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, "UNAUTHORIZED", "unauthorized"
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, "FORBIDDEN", "forbidden"
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, "INVALID_CREDENTIALS", "invalid credentials"
	case errors.Is(err, domain.ErrAccountInactive):
		return http.StatusForbidden, "ACCOUNT_INACTIVE", "account is inactive"
	case errors.Is(err, domain.ErrDuplicateEmail):
		return http.StatusConflict, "DUPLICATE_EMAIL", "an account with this email already exists"
	case errors.Is(err, domain.ErrDraftInvalid):
		return http.StatusBadRequest, "INVALID_DRAFT", "draft needs a client name and at least one item with a description"
	case errors.Is(err, domain.ErrProfileNotFound):
		return http.StatusNotFound, "PROFILE_NOT_FOUND", "business profile not set up yet"
	case errors.Is(err, domain.ErrCreditsExhausted):
		return http.StatusPaymentRequired, "CREDITS_EXHAUSTED", "no invoice credits remaining; purchase credits or subscribe"
	case errors.Is(err, domain.ErrUnsupportedLogoType):
		return http.StatusBadRequest, "UNSUPPORTED_LOGO_TYPE", "unsupported logo type; allowed: png, jpg"
	case errors.Is(err, domain.ErrLogoTooLarge):
		return http.StatusRequestEntityTooLarge, "LOGO_TOO_LARGE", "logo exceeds maximum allowed size"
	case errors.Is(err, domain.ErrUploadFailed):
		return http.StatusInternalServerError, "UPLOAD_FAILED", "file upload to storage failed"
	case errors.Is(err, domain.ErrRenderFailed):
		return http.StatusInternalServerError, "RENDER_FAILED", "invoice rendering failed; credit refunded, please retry"
	case errors.Is(err, domain.ErrEmailSendFailed):
		return http.StatusBadGateway, "EMAIL_SEND_FAILED", "email delivery failed; the invoice was generated, please retry sending"
	case errors.Is(err, domain.ErrOrderNotFound):
		return http.StatusNotFound, "ORDER_NOT_FOUND", "payment order not found"
	case errors.Is(err, domain.ErrPaymentNotFound):
		return http.StatusNotFound, "PAYMENT_NOT_FOUND", "payment not found"
	case errors.Is(err, domain.ErrInvalidOrder):
		return http.StatusBadRequest, "INVALID_ORDER", "invalid payment order parameters"
	case errors.Is(err, domain.ErrSignatureMismatch):
		return http.StatusBadRequest, "SIGNATURE_MISMATCH", "payment signature verification failed"
	case errors.Is(err, domain.ErrPaymentNotCaptured):
		return http.StatusBadRequest, "PAYMENT_NOT_CAPTURED", "payment is not captured yet"
	case errors.Is(err, domain.ErrGatewayUnavailable):
		return http.StatusBadGateway, "GATEWAY_UNAVAILABLE", "payment gateway is unavailable; please retry"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR", "an internal error occurred"
	}
}

// requireAccountID extracts the account ID from the request context.
// Returns false if auth context is missing (error response already written).
func requireAccountID(c *gin.Context) (uuid.UUID, bool) {
	accountID, err := middleware.GetAccountID(c)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "missing account context")
		return uuid.Nil, false
	}
	return accountID, true
}

// HandleError maps a domain error and sends the appropriate error response.
func HandleError(c *gin.Context, err error) {
	status, code, msg := MapDomainError(err)
	if status >= 500 {
		requestID, _ := c.Get("request_id")
		log.Printf("[%s] internal error: %v", requestID, err)
	}
	RespondError(c, status, code, msg)
}
