package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"homestay/internal/handler/httperr"
	"homestay/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	ctxActorIDKey   = "actor_id"
	ctxActorRoleKey = "actor_role"
)

type AuthMiddleware struct {
	tokenValidator usecase.TokenValidator
}

func NewAuthMiddleware(tokenValidator usecase.TokenValidator) *AuthMiddleware {
	return &AuthMiddleware{tokenValidator: tokenValidator}
}

func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		var token string
		authHeader := c.GetHeader("Authorization")
		if authHeader != "" && strings.HasPrefix(authHeader, "Bearer ") {
			token = strings.TrimSpace(authHeader[len("Bearer "):])
		}

		if token == "" {
			httperr.AbortWithError(c, http.StatusUnauthorized, nil, "Access token required", nil)
			return
		}

		actorID, role, err := m.tokenValidator.ValidateToken(token)
		if err != nil {
			slog.Warn("Token validation failed in auth middleware", "error", err.Error())
			httperr.AbortWithError(c, http.StatusUnauthorized, err, "Invalid or expired token", nil)
			return
		}

		c.Set(ctxActorIDKey, actorID)
		c.Set(ctxActorRoleKey, role)
		c.Next()
	}
}

func GetActorID(c *gin.Context) (uuid.UUID, bool) {
	v, exists := c.Get(ctxActorIDKey)
	if !exists {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}

func GetActorRole(c *gin.Context) (string, bool) {
	v, exists := c.Get(ctxActorRoleKey)
	if !exists {
		return "", false
	}
	role, ok := v.(string)
	return role, ok
}
