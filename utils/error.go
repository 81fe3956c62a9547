package utils

import (
	"errors"
	"net/http"

	"homeease/errs"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// Response is the envelope every API endpoint answers with.
type Response struct {
	Success bool        `json:"success"`
	Code    string      `json:"code,omitempty"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// ErrorHandler is a middleware to catch panics and return structured errors
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				GetLogger().Error("Unhandled panic", zap.Any("error", err), zap.String("path", c.Request.URL.Path))
				c.AbortWithStatusJSON(http.StatusInternalServerError, Response{
					Success: false,
					Code:    "internal_error",
					Message: "An unexpected error occurred. Please try again later.",
				})
			}
		}()
		c.Next()
	}
}

// RespondOK writes a successful envelope.
func RespondOK(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, Response{Success: true, Message: message, Data: data})
}

// JSONError sends a standardized JSON error response
func JSONError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, Response{Success: false, Code: code, Message: message})
}

// StatusFor maps an error kind to its HTTP status.
func StatusFor(kind errs.Kind) int {
	switch kind {
	case errs.KindNotFound:
		return http.StatusNotFound
	case errs.KindUnauthorized:
		return http.StatusForbidden
	case errs.KindBusinessRule, errs.KindGateway:
		// a processor decline is a business outcome for the caller
		return http.StatusBadRequest
	case errs.KindGatewayTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// RespondError translates a service error into the envelope. Unexpected
// failures are logged with their cause and answered with a generic message.
func RespondError(c *gin.Context, err error) {
	appErr := errs.As(err)
	status := StatusFor(appErr.Kind)
	if status >= http.StatusInternalServerError {
		GetLogger().Error("request failed",
			zap.String("path", c.Request.URL.Path),
			zap.String("code", appErr.Code),
			zap.Error(err))
	} else {
		GetLogger().Warn(appErr.Message, zap.String("code", appErr.Code), zap.String("path", c.Request.URL.Path))
	}
	JSONError(c, status, appErr.Code, appErr.Message)
}

// RespondBindError answers a failed request bind as a validation error.
func RespondBindError(c *gin.Context, err error) {
	message := err.Error()
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		message = "invalid value for " + fe.Field() + " (" + fe.Tag() + ")"
	}
	JSONError(c, http.StatusBadRequest, "validation_error", message)
}
