package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/aadi90392/yoga-master-full/internal/domain/entity"
	"github.com/aadi90392/yoga-master-full/internal/interface/middleware"
	"github.com/aadi90392/yoga-master-full/pkg/helpers"
)

// Guards builds the auth chains shared by every module.
type Guards struct {
	JWT   *helpers.JWTManager
	Roles middleware.RoleLookup
	Redis *redis.Client
}

// Authed requires a token and refreshes the caller's role from storage.
func (g Guards) Authed() []gin.HandlerFunc {
	return []gin.HandlerFunc{middleware.Auth(g.JWT), middleware.RequireRole(g.Roles)}
}

// Instructor requires the instructor or admin role.
func (g Guards) Instructor() []gin.HandlerFunc {
	return []gin.HandlerFunc{middleware.Auth(g.JWT), middleware.RequireRole(g.Roles, entity.RoleInstructor, entity.RoleAdmin)}
}

// Admin requires the admin role.
func (g Guards) Admin() []gin.HandlerFunc {
	return []gin.HandlerFunc{middleware.Auth(g.JWT), middleware.RequireRole(g.Roles, entity.RoleAdmin)}
}

// Optional identifies the caller when a valid token is sent.
func (g Guards) Optional() gin.HandlerFunc {
	return middleware.OptionalAuth(g.JWT, g.Roles)
}

// PerUser limits authenticated callers to max requests per minute.
func (g Guards) PerUser(max int) gin.HandlerFunc {
	return middleware.RateLimit(g.Redis, middleware.Rule{Scope: "user", Max: max, Window: time.Minute}, middleware.KeyByUser(), nil)
}

// PerIPAndPath limits one route to max requests per minute per client IP.
func (g Guards) PerIPAndPath(max int) gin.HandlerFunc {
	return middleware.RateLimit(g.Redis, middleware.Rule{Scope: "route", Max: max, Window: time.Minute}, middleware.KeyByIPAndPath(), nil)
}
