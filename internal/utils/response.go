// internal/utils/response.go
package utils

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/javajoker/rights-backend/internal/i18n"
)

// Error codes carried in APIError.Code. Clients branch on these, not on
// the translated message.
const (
	CodeBadRequest         = "BAD_REQUEST"
	CodeValidation         = "VALIDATION_ERROR"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeForbidden          = "FORBIDDEN"
	CodeNotFound           = "NOT_FOUND"
	CodeConflict           = "CONFLICT"
	CodeIntegrityViolation = "INTEGRITY_VIOLATION"
	CodeRateLimited        = "RATE_LIMITED"
	CodeInternal           = "INTERNAL_ERROR"
)

// Context keys set by the middleware chain.
const (
	ContextUserID    = "user_id"
	ContextEmail     = "email"
	ContextRole      = "role"
	ContextLang      = "lang"
	ContextRequestID = "request_id"
)

type APIResponse struct {
	Success   bool        `json:"success"`
	Data      interface{} `json:"data,omitempty"`
	Error     *APIError   `json:"error,omitempty"`
	Meta      interface{} `json:"meta,omitempty"`
	RequestID string      `json:"request_id,omitempty"`
}

type APIError struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

func SuccessResponse(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, APIResponse{
		Success: true,
		Data:    data,
	})
}

func SuccessResponseWithMeta(c *gin.Context, data interface{}, meta interface{}) {
	c.JSON(http.StatusOK, APIResponse{
		Success: true,
		Data:    data,
		Meta:    meta,
	})
}

func CreatedResponse(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, APIResponse{
		Success: true,
		Data:    data,
	})
}

// AttachmentResponse streams a generated file as a download.
func AttachmentResponse(c *gin.Context, filename, contentType string, data []byte) {
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, contentType, data)
}

// ErrorResponse writes the error envelope. The request id is echoed so a
// failed call can be matched to its log line.
func ErrorResponse(c *gin.Context, statusCode int, code, message string, details interface{}) {
	c.JSON(statusCode, APIResponse{
		Success: false,
		Error: &APIError{
			Code:    code,
			Message: message,
			Details: details,
		},
		RequestID: contextString(c, ContextRequestID),
	})
}

func BadRequestResponse(c *gin.Context, message string, details interface{}) {
	if message == "" {
		message = i18n.T(GetLangFromContext(c), i18n.KeyValidationInvalid, "request")
	}
	ErrorResponse(c, http.StatusBadRequest, CodeBadRequest, message, details)
}

func UnauthorizedResponse(c *gin.Context, message string) {
	if message == "" {
		message = i18n.T(GetLangFromContext(c), i18n.KeyAuthRequired)
	}
	ErrorResponse(c, http.StatusUnauthorized, CodeUnauthorized, message, nil)
}

func ForbiddenResponse(c *gin.Context, message string) {
	if message == "" {
		message = i18n.T(GetLangFromContext(c), i18n.KeyAccessDenied)
	}
	ErrorResponse(c, http.StatusForbidden, CodeForbidden, message, nil)
}

// NotFoundResponse takes the translation key of the missing resource.
func NotFoundResponse(c *gin.Context, key string) {
	ErrorResponse(c, http.StatusNotFound, CodeNotFound, i18n.T(GetLangFromContext(c), key), nil)
}

func ConflictResponse(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusConflict, CodeConflict, message, nil)
}

// IntegrityViolationResponse reports stored data that breaks a contract
// invariant, as opposed to bad input.
func IntegrityViolationResponse(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusUnprocessableEntity, CodeIntegrityViolation, message, nil)
}

func RateLimitedResponse(c *gin.Context) {
	ErrorResponse(c, http.StatusTooManyRequests, CodeRateLimited,
		i18n.T(GetLangFromContext(c), i18n.KeyRateLimited), nil)
}

func InternalErrorResponse(c *gin.Context, message string) {
	if message == "" {
		message = "Internal server error"
	}
	ErrorResponse(c, http.StatusInternalServerError, CodeInternal, message, nil)
}

// ValidationErrorResponse lists every offending field at once.
func ValidationErrorResponse(c *gin.Context, errors []ValidationError) {
	message := i18n.T(GetLangFromContext(c), i18n.KeyValidationInvalid, "input")
	ErrorResponse(c, http.StatusBadRequest, CodeValidation, message, errors)
}

func PaginatedResponse(c *gin.Context, result PaginationResult) {
	SetPaginationHeaders(c, result)
	SuccessResponseWithMeta(c, result.Data, gin.H{
		"pagination": gin.H{
			"page":        result.Page,
			"limit":       result.Limit,
			"total":       result.Total,
			"total_pages": result.TotalPages,
		},
	})
}

func contextString(c *gin.Context, key string) string {
	if v, exists := c.Get(key); exists {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func GetLangFromContext(c *gin.Context) string {
	if lang := contextString(c, ContextLang); lang != "" {
		return lang
	}
	return "en"
}

func GetUserIDFromContext(c *gin.Context) (string, bool) {
	id := contextString(c, ContextUserID)
	return id, id != ""
}

func GetUserRoleFromContext(c *gin.Context) (string, bool) {
	role := contextString(c, ContextRole)
	return role, role != ""
}
