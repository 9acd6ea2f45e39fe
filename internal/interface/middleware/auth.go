package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/aadi90392/yoga-master-full/internal/domain/entity"
	repo "github.com/aadi90392/yoga-master-full/internal/domain/repository"
	"github.com/aadi90392/yoga-master-full/pkg/helpers"
	"github.com/aadi90392/yoga-master-full/pkg/response"
)

// Context keys set by the auth middleware.
const (
	CtxUserEmail = "userEmail"
	CtxTokenRole = "tokenRole"
	CtxRole      = "role"
)

// RoleLookup returns the role currently stored for an email.
type RoleLookup interface {
	CurrentRole(ctx context.Context, email string) (entity.Role, error)
}

func bearerToken(c *gin.Context) string {
	h := strings.TrimSpace(c.GetHeader("Authorization"))
	if len(h) < 7 || !strings.EqualFold(h[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(h[7:])
}

// Auth requires a valid bearer token and stores its email and role claim.
func Auth(jwt *helpers.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			response.Fail(c, http.StatusUnauthorized, "missing access token", nil)
			return
		}
		claims, err := jwt.Parse(token)
		if err != nil {
			response.Fail(c, http.StatusUnauthorized, "invalid or expired token", nil)
			return
		}
		c.Set(CtxUserEmail, claims.Email)
		c.Set(CtxTokenRole, claims.Role)
		c.Next()
	}
}

// OptionalAuth accepts anonymous requests. A valid token of an existing
// account identifies the caller; anything else is ignored.
func OptionalAuth(jwt *helpers.JWTManager, lookup RoleLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := bearerToken(c); token != "" {
			if claims, err := jwt.Parse(token); err == nil {
				// accounts that no longer resolve stay anonymous
				if role, err := lookup.CurrentRole(c.Request.Context(), claims.Email); err == nil {
					c.Set(CtxUserEmail, claims.Email)
					c.Set(CtxTokenRole, claims.Role)
					c.Set(CtxRole, string(role))
				}
			}
		}
		c.Next()
	}
}

// RequireRole re-reads the caller's role from storage and rejects the request
// with 403 unless it is one of roles. With no roles any existing account
// passes, which refreshes the role for handlers that check ownership.
func RequireRole(lookup RoleLookup, roles ...entity.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		email := c.GetString(CtxUserEmail)
		if email == "" {
			response.Fail(c, http.StatusUnauthorized, "missing access token", nil)
			return
		}
		role, err := lookup.CurrentRole(c.Request.Context(), email)
		if err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				response.Fail(c, http.StatusForbidden, "forbidden access", nil)
				return
			}
			response.Fail(c, http.StatusInternalServerError, "internal server error", nil)
			return
		}
		if len(roles) > 0 && !hasRole(roles, role) {
			response.Fail(c, http.StatusForbidden, "forbidden access", nil)
			return
		}
		c.Set(CtxRole, string(role))
		c.Next()
	}
}

func hasRole(roles []entity.Role, r entity.Role) bool {
	for _, x := range roles {
		if x == r {
			return true
		}
	}
	return false
}

// Viewer builds the caller identity. The live role wins over the token claim.
func Viewer(c *gin.Context) entity.Viewer {
	role := c.GetString(CtxRole)
	if role == "" {
		role = c.GetString(CtxTokenRole)
	}
	return entity.Viewer{Email: c.GetString(CtxUserEmail), Role: entity.Role(role)}
}
