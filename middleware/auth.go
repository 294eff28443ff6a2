package middleware

import (
	"errors"
	"strings"

	apperrors "attire-service/common/errors"

	"github.com/gin-gonic/gin"
)

const UsernameContextKey = "username"

// TokenValidator resolves a bearer token to the username it was issued to.
type TokenValidator interface {
	Authenticate(token string) (string, error)
}

func AuthMiddleware(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok {
			// EventSource cannot set headers
			token = c.Query("access_token")
		}
		token = strings.TrimSpace(token)
		if token == "" {
			apperrors.Respond(c, apperrors.ErrUnauthorized)
			return
		}
		username, err := validator.Authenticate(token)
		if err != nil {
			apperrors.Respond(c, apperrors.ErrUnauthorized)
			return
		}
		c.Set(UsernameContextKey, username)
		c.Next()
	}
}

func GetUsername(c *gin.Context) (string, error) {
	if val, ok := c.Get(UsernameContextKey); ok {
		if name, ok := val.(string); ok && name != "" {
			return name, nil
		}
	}
	return "", errors.New("username not found in context")
}
