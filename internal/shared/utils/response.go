package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rolegate/rolegate/internal/shared/errors"
)

// APIResponse represents a standard API response structure
type APIResponse struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Error   *ErrorInfo `json:"error,omitempty"`
	Message string     `json:"message,omitempty"`
}

// ErrorInfo represents error information in API response
type ErrorInfo struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

func SuccessResponse(c *gin.Context, statusCode int, message string, data any) {
	c.JSON(statusCode, APIResponse{
		Success: true,
		Data:    data,
		Message: message,
	})
}

func CreatedResponse(c *gin.Context, data any, message string) {
	SuccessResponse(c, http.StatusCreated, message, data)
}

func ErrorResponse(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, APIResponse{
		Success: false,
		Error:   &ErrorInfo{Type: "error", Message: message},
	})
}

// ErrorResponseWithError maps err to a status code via errors.ToAppError.
// Internal errors never expose their details.
func ErrorResponseWithError(c *gin.Context, err error) {
	appErr := errors.ToAppError(err)
	info := ErrorInfo{
		Type:    string(appErr.Type),
		Message: appErr.Message,
		Details: appErr.Details,
	}
	if appErr.Type == errors.ErrorTypeInternal {
		info.Details = ""
	}
	c.JSON(appErr.Code, APIResponse{Success: false, Error: &info})
}
