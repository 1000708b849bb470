package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	apperrors "gift-market-backend/internal/common/errors"
)

const requestIDKey = "request_id"

// Recovery turns panics into a 500 JSON body.
func Recovery(debugMode bool) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		log.Error().
			Str("request_id", RequestIDFrom(c)).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Interface("panic", recovered).
			Str("stack", string(debug.Stack())).
			Msg("Panic recovered")

		appErr := apperrors.New(apperrors.ErrCodeInternal, "Internal server error").
			WithDetail("panic", fmt.Sprintf("%v", recovered))
		Abort(c, appErr, debugMode)
	})
}

// RequestID middleware для добавления ID запроса
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}

		c.Set(requestIDKey, requestID)
		c.Header("X-Request-ID", requestID)
		c.Next()
	}
}

// RequestIDFrom returns the request id stored by RequestID.
func RequestIDFrom(c *gin.Context) string {
	if requestID, exists := c.Get(requestIDKey); exists {
		if id, ok := requestID.(string); ok {
			return id
		}
	}
	return "unknown"
}

// ErrorResponse is the body of every failed API call.
type ErrorResponse struct {
	Success   bool                   `json:"success"`
	Error     string                 `json:"error"`
	Code      apperrors.ErrorCode    `json:"code"`
	Details   map[string]interface{} `json:"details,omitempty"`
	RequestID string                 `json:"request_id,omitempty"`
}

// Abort writes err as a JSON error body and stops the handler chain.
// Details of internal errors are only exposed in debug mode.
func Abort(c *gin.Context, err error, debugMode bool) {
	appErr := apperrors.From(err).WithRequestID(RequestIDFrom(c))
	status := appErr.Status()

	resp := ErrorResponse{
		Success:   false,
		Error:     appErr.Message,
		Code:      appErr.Code,
		RequestID: appErr.RequestID,
	}
	if !appErr.IsInternal() {
		resp.Details = appErr.Details
	} else if debugMode {
		resp.Details = appErr.Details
		if appErr.Cause != nil {
			resp = withCause(resp, appErr.Cause)
		}
	}

	logError(c, appErr, status)
	c.AbortWithStatusJSON(status, resp)
}

func withCause(resp ErrorResponse, cause error) ErrorResponse {
	details := make(map[string]interface{}, len(resp.Details)+1)
	for k, v := range resp.Details {
		details[k] = v
	}
	details["cause"] = cause.Error()
	resp.Details = details
	return resp
}

func logError(c *gin.Context, appErr *apperrors.AppError, status int) {
	event := log.Info()
	if status >= http.StatusInternalServerError {
		event = log.Error().Err(appErr.Cause)
	} else if appErr.Code == apperrors.ErrCodeUnauthorized {
		event = log.Warn()
	}

	event.
		Str("request_id", appErr.RequestID).
		Str("method", c.Request.Method).
		Str("path", c.Request.URL.Path).
		Str("error_code", string(appErr.Code)).
		Str("error_message", appErr.Message).
		Int("status", status).
		Msg("Request failed")
}
