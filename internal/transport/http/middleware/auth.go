package middleware

import (
	"errors"
	"net/http"
	"strings"

	ctxlog "github.com/ErlanBelekov/expense-tracker/internal/log"
	"github.com/ErlanBelekov/expense-tracker/internal/token"
	"github.com/gin-gonic/gin"
)

const (
	errUnauthorized = "Unauthorized access, Please login first"
	errTokenExpired = "Token expired, please login again"
	errTokenInvalid = "Invalid token"
)

// tokenVerifier is satisfied by *token.Manager.
type tokenVerifier interface {
	Verify(kind token.Kind, raw string) (*token.Claims, error)
}

// Auth validates a Bearer access token and sets "userID" and "email" in the
// gin context. A missing or expired token is 401, any other failure is 403.
func Auth(tokens tokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			abort(c, http.StatusUnauthorized, errUnauthorized)
			return
		}

		claims, err := tokens.Verify(token.Access, strings.TrimPrefix(header, "Bearer "))
		switch {
		case errors.Is(err, token.ErrExpired):
			abort(c, http.StatusUnauthorized, errTokenExpired)
			return
		case err != nil:
			abort(c, http.StatusForbidden, errTokenInvalid)
			return
		}

		if claims.Subject == "" {
			abort(c, http.StatusForbidden, errTokenInvalid)
			return
		}

		c.Set("userID", claims.Subject)
		c.Set("email", claims.Email)
		c.Request = c.Request.WithContext(ctxlog.WithUserID(c.Request.Context(), claims.Subject))
		c.Next()
	}
}

func abort(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"success": false, "message": message})
}
