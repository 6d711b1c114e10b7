package response

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Machine-readable error codes shared across handlers and middleware.
// TOKEN_EXPIRED is deliberately distinct from INVALID_TOKEN: the former
// tells the client to refresh, the latter to re-authenticate.
const (
	CodeValidation         = "VALIDATION_ERROR"
	CodeEmailTaken         = "EMAIL_TAKEN"
	CodeUserNotFound       = "USER_NOT_FOUND"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeNotVerified        = "NOT_VERIFIED"
	CodeAlreadyVerified    = "ALREADY_VERIFIED"
	CodeTokenExpired       = "TOKEN_EXPIRED"
	CodeInvalidToken       = "INVALID_TOKEN"
	CodeRateLimited        = "RATE_LIMITED"
	CodeInternal           = "INTERNAL_ERROR"
)

type APIResponse[T any] struct {
	Status    int         `json:"status"`
	Timestamp time.Time   `json:"timestamp"`
	RequestID string      `json:"request_id"`
	Success   bool        `json:"success"`
	Code      string      `json:"code,omitempty"`
	Message   string      `json:"message"`
	Data      T           `json:"data,omitempty"`
	Error     interface{} `json:"error,omitempty"`
}

// Success writes a success envelope and returns it.
func Success[T any](ctx *gin.Context, status int, data T, message string) APIResponse[T] {
	if status == 0 {
		status = http.StatusOK
	}
	resp := APIResponse[T]{
		Status:    status,
		Timestamp: time.Now(),
		RequestID: ctx.GetString("request_id"),
		Success:   true,
		Message:   message,
		Data:      data,
	}
	ctx.JSON(status, resp)
	return resp
}

// Error writes an error envelope and returns it.
func Error[T any](ctx *gin.Context, status int, code, message string, details interface{}) APIResponse[T] {
	if status == 0 {
		status = http.StatusBadRequest
	}
	resp := APIResponse[T]{
		Status:    status,
		Timestamp: time.Now(),
		RequestID: ctx.GetString("request_id"),
		Success:   false,
		Code:      code,
		Message:   message,
		Error:     details,
	}
	ctx.JSON(status, resp)
	return resp
}

// AbortError writes an error envelope and aborts the handler chain.
// Middleware uses this so downstream handlers never run on failure.
func AbortError(ctx *gin.Context, status int, code, message string, details interface{}) {
	resp := APIResponse[any]{
		Status:    status,
		Timestamp: time.Now(),
		RequestID: ctx.GetString("request_id"),
		Success:   false,
		Code:      code,
		Message:   message,
		Error:     details,
	}
	ctx.AbortWithStatusJSON(status, resp)
}
