package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"github.com/ozpm/task-tracker-api/internal/clients"
	"github.com/ozpm/task-tracker-api/internal/constants"
	apierrors "github.com/ozpm/task-tracker-api/internal/errors"
	"github.com/ozpm/task-tracker-api/internal/policy"
)

// IdentityResolver exchanges a bearer token for the caller's identity.
type IdentityResolver interface {
	Resolve(ctx context.Context, token string) (clients.Identity, error)
}

// RequireActor resolves the acting identity for the request. A previously
// resolved identity is served from the session; otherwise the bearer token is
// sent to the identity service and the result cached. The resolved actor is
// stored in the request context and passed explicitly into the service layer
// by the handlers.
func RequireActor(identity IdentityResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)

		if username, ok := session.Get(constants.SessionKeyUsername).(string); ok && username != "" {
			roles, _ := session.Get(constants.SessionKeyRoles).(string)
			c.Set(constants.ContextKeyActor, policy.Actor{
				Username: username,
				Roles:    splitRoles(roles),
			})
			c.Next()
			return
		}

		token := bearerToken(c)
		if token == "" {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		resolved, err := identity.Resolve(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, clients.ErrTokenRejected) {
				apierrors.Unauthorized(c, "")
			} else {
				apierrors.ServiceUnavailable(c, "Identity service unavailable")
			}
			c.Abort()
			return
		}

		session.Set(constants.SessionKeyUsername, resolved.Username)
		session.Set(constants.SessionKeyRoles, strings.Join(resolved.Roles, ","))
		if err := session.Save(); err != nil {
			// Caching failed; the request still carries a valid identity.
			c.Error(err)
		}

		c.Set(constants.ContextKeyActor, policy.Actor{
			Username: resolved.Username,
			Roles:    resolved.Roles,
		})
		c.Next()
	}
}

// GetActor retrieves the resolved actor from the request context.
func GetActor(c *gin.Context) (policy.Actor, bool) {
	value, exists := c.Get(constants.ContextKeyActor)
	if !exists {
		return policy.Actor{}, false
	}
	actor, ok := value.(policy.Actor)
	return actor, ok
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}

func splitRoles(roles string) []string {
	if roles == "" {
		return nil
	}
	return strings.Split(roles, ",")
}
