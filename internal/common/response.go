package common

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	pkglogger "github.com/damoang/angple-cms/pkg/logger"
)

// Response 표준 응답 형식
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
	Meta    *ListMeta   `json:"meta,omitempty"`
	Error   *ErrorInfo  `json:"error,omitempty"`
}

// ListMeta pagination metadata
type ListMeta struct {
	Limit int   `json:"limit"`
	Skip  int   `json:"skip"`
	Total int64 `json:"total"`
}

// ErrorInfo error details
type ErrorInfo struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// NewListMeta creates pagination metadata
func NewListMeta(limit, skip int, total int64) *ListMeta {
	return &ListMeta{Limit: limit, Skip: skip, Total: total}
}

// Success returns a 200 response
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{Success: true, Data: data})
}

// SuccessWithMessage returns a 200 response with a message
func SuccessWithMessage(c *gin.Context, data interface{}, message string) {
	c.JSON(http.StatusOK, Response{Success: true, Data: data, Message: message})
}

// SuccessWithMeta returns a 200 response with pagination
func SuccessWithMeta(c *gin.Context, data interface{}, meta *ListMeta) {
	c.JSON(http.StatusOK, Response{Success: true, Data: data, Meta: meta})
}

// Created returns a 201 response
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{Success: true, Data: data})
}

// ErrorResponse returns an error response with an explicit status
func ErrorResponse(c *gin.Context, status int, message string, details interface{}) {
	c.JSON(status, Response{
		Success: false,
		Error: &ErrorInfo{
			Code:    getErrorCode(status),
			Message: message,
			Details: details,
		},
	})
}

// AbortWithError writes an error response and aborts the handler chain
func AbortWithError(c *gin.Context, status int, message string) {
	ErrorResponse(c, status, message, nil)
	c.Abort()
}

// Fail maps err onto the error envelope
func Fail(c *gin.Context, err error) {
	status := StatusFor(err)
	if status == http.StatusInternalServerError {
		l := pkglogger.WithRequestID(c.GetString("request_id"))
		l.Error().Err(err).Str("path", c.Request.URL.Path).Msg("internal error")
		ErrorResponse(c, status, "internal server error", nil)
		return
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		ErrorResponse(c, status, appErr.Message, appErr.Details)
		return
	}
	ErrorResponse(c, status, err.Error(), nil)
}

// StatusFor returns the HTTP status for err
func StatusFor(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusBadRequest
	case KindAuth:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// getErrorCode generates error code from HTTP status
func getErrorCode(status int) string {
	switch status {
	case 400:
		return "BAD_REQUEST"
	case 401:
		return "UNAUTHORIZED"
	case 403:
		return "FORBIDDEN"
	case 404:
		return "NOT_FOUND"
	case 409:
		return "CONFLICT"
	case 429:
		return "TOO_MANY_REQUESTS"
	case 500:
		return "INTERNAL_SERVER_ERROR"
	default:
		return "ERROR"
	}
}
