package middleware

import (
	"crypto/subtle"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/veritalabs/supplement-verifier/internal/http/response"
	"github.com/veritalabs/supplement-verifier/internal/platform/logger"
)

type AuthMiddleware struct {
	log    *logger.Logger
	apiKey string
}

func NewAuthMiddleware(log *logger.Logger, apiKey string) *AuthMiddleware {
	return &AuthMiddleware{
		log:    log.With("middleware", "AuthMiddleware"),
		apiKey: apiKey,
	}
}

// RequireAPIKey guards admin routes with the static shared secret.
func (m *AuthMiddleware) RequireAPIKey() gin.HandlerFunc {
	return func(c *gin.Context) {
		provided := c.GetHeader("X-API-Key")
		if m.apiKey == "" || provided == "" ||
			subtle.ConstantTimeCompare([]byte(provided), []byte(m.apiKey)) != 1 {
			response.RespondError(c, http.StatusUnauthorized, "UNAUTHORIZED", errors.New("Missing or invalid X-API-Key header"))
			c.Abort()
			return
		}
		c.Next()
	}
}
