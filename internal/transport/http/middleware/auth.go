package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"nlustudio/internal/app"
	"nlustudio/internal/transport/http/response"
)

const (
	ContextUserIDKey  = "user_id"
	SessionCookieName = "session_token"
)

// CredentialResolver maps an opaque session token to a user ID.
type CredentialResolver interface {
	ResolveCredential(token string) (uint, error)
}

// SessionAuth accepts the token from the Authorization header first, falling
// back to the session cookie. Missing, unknown, and expired credentials all
// produce the same 401.
func SessionAuth(resolver CredentialResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		tok := bearerToken(c)
		if tok == "" {
			if cookie, err := c.Cookie(SessionCookieName); err == nil {
				tok = strings.TrimSpace(cookie)
			}
		}

		userID, err := resolver.ResolveCredential(tok)
		if err != nil {
			if errors.Is(err, app.ErrUnauthenticated) {
				response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "authentication required")
			} else {
				response.Error(c, http.StatusInternalServerError, response.CodeInternalError, "credential check failed")
			}
			c.Abort()
			return
		}

		c.Set(ContextUserIDKey, userID)
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	authHeader := strings.TrimSpace(c.GetHeader("Authorization"))
	const prefix = "Bearer "
	if !strings.HasPrefix(authHeader, prefix) {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(authHeader, prefix))
}
