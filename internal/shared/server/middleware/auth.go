package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"records-backend/internal/shared/auth"
	"records-backend/internal/shared/server/respond"
)

const (
	actorKey     = "actor"
	actorNameKey = "actorName"

	// AnonymousActor is recorded for requests that carry no token.
	AnonymousActor = "anonymous"
)

// Auth resolves the calling actor from a bearer JWT signed with secret.
// With an empty secret every request runs as AnonymousActor. Otherwise
// reads may stay anonymous but writes need a valid token.
func Auth(secret string) gin.HandlerFunc {
	secret = strings.TrimSpace(secret)
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Status(http.StatusNoContent)
			return
		}

		if secret == "" {
			c.Set(actorKey, AnonymousActor)
			c.Next()
			return
		}

		authHeader := strings.TrimSpace(c.GetHeader("Authorization"))
		if authHeader == "" {
			if isReadOnly(c.Request.Method) {
				c.Set(actorKey, AnonymousActor)
				c.Next()
				return
			}
			respond.Error(c, http.StatusUnauthorized, "unauthorized", "missing or invalid token", nil)
			return
		}

		if !strings.HasPrefix(authHeader, "Bearer ") {
			respond.Error(c, http.StatusUnauthorized, "unauthorized", "missing or invalid token", nil)
			return
		}
		token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer"))
		if token == "" {
			respond.Error(c, http.StatusUnauthorized, "unauthorized", "missing or invalid token", nil)
			return
		}

		claims, err := auth.VerifyJWT(secret, token)
		if err != nil {
			respond.Error(c, http.StatusUnauthorized, "unauthorized", "missing or invalid token", nil)
			return
		}

		c.Set(actorKey, claims.Sub)
		if claims.Name != "" {
			c.Set(actorNameKey, claims.Name)
		}
		c.Next()
	}
}

func isReadOnly(method string) bool {
	return method == http.MethodGet || method == http.MethodHead
}

// ActorFromContext fetches the actor set by the auth middleware.
func ActorFromContext(c *gin.Context) string {
	if c == nil {
		return ""
	}
	val, _ := c.Get(actorKey)
	if id, ok := val.(string); ok {
		return id
	}
	return ""
}

// ActorNameFromContext fetches the display name carried by the token, if any.
func ActorNameFromContext(c *gin.Context) string {
	if c == nil {
		return ""
	}
	val, _ := c.Get(actorNameKey)
	if name, ok := val.(string); ok {
		return name
	}
	return ""
}
