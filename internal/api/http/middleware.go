package http

import (
	"log/slog"
	"net/http"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/immxrtalbeast/roomrent/internal/auth"
	"github.com/immxrtalbeast/roomrent/internal/domain"
	"github.com/immxrtalbeast/roomrent/lib/logger/sl"
)

const actorKey = "actor"

// RequireActor authenticates the caller from a bearer token. Websocket clients
// that cannot set headers may pass the token as a query parameter.
func RequireActor(secret string, log *slog.Logger) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		raw := strings.TrimPrefix(ctx.GetHeader("Authorization"), "Bearer ")
		if raw == "" {
			raw = ctx.Query("token")
		}
		if raw == "" {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			return
		}

		actor, err := auth.Parse(secret, raw)
		if err != nil {
			log.Debug("rejected token", slog.String("path", ctx.FullPath()), sl.Err(err))
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		ctx.Set(actorKey, actor)
		ctx.Next()
	}
}

// RequireRole lets through actors holding one of roles. Admins always pass.
func RequireRole(roles ...domain.Role) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		actor := actorFrom(ctx)
		if actor.IsAdmin() || slices.Contains(roles, actor.Role) {
			ctx.Next()
			return
		}
		ctx.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "role not allowed"})
	}
}

func actorFrom(ctx *gin.Context) domain.Actor {
	if v, ok := ctx.Get(actorKey); ok {
		if actor, ok := v.(domain.Actor); ok {
			return actor
		}
	}
	return domain.Actor{}
}
