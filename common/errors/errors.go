package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Error represents an application error
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error
func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a new Error
func New(code int, message string, err error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func BadRequest(err error) *Error {
	return New(http.StatusBadRequest, err.Error(), err)
}

func NotFound(err error) *Error {
	return New(http.StatusNotFound, err.Error(), err)
}

func Conflict(err error) *Error {
	return New(http.StatusConflict, err.Error(), err)
}

// Internal hides the cause from the client but keeps it for logging
func Internal(message string, err error) *Error {
	return New(http.StatusInternalServerError, message, err)
}

// From returns err as an *Error, treating anything unknown as a 500
func From(err error) *Error {
	var appErr *Error
	if stderrors.As(err, &appErr) {
		return appErr
	}
	return Internal("Internal server error", err)
}

// Respond writes err as JSON and aborts the request
func Respond(c *gin.Context, err error) {
	appErr := From(err)
	_ = c.Error(appErr)
	c.AbortWithStatusJSON(appErr.Code, gin.H{"error": appErr.Message, "code": appErr.Code})
}

// ErrorMiddleware renders errors attached with c.Error when no response was written
func ErrorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		appErr := From(c.Errors.Last().Err)
		c.JSON(appErr.Code, gin.H{"error": appErr.Message, "code": appErr.Code})
		c.Abort()
	}
}

// Common error types
var (
	ErrUnauthorized       = New(http.StatusUnauthorized, "Unauthorized", nil)
	ErrInvalidCredentials = New(http.StatusUnauthorized, "Invalid credentials", nil)
	ErrTooManyRequests    = New(http.StatusTooManyRequests, "Too many requests", nil)
)
