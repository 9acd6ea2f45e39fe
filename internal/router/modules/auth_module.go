package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/aadi90392/yoga-master-full/internal/interface/http"
)

type AuthModule struct {
	Handler *handlers.AuthHandler
	Guards  Guards
}

func NewAuthModule(h *handlers.AuthHandler, g Guards) *AuthModule {
	return &AuthModule{Handler: h, Guards: g}
}

func (m *AuthModule) Name() string { return "auth" }

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	rg.POST("/api/login", m.Guards.PerIPAndPath(10), m.Handler.Login)
	rg.POST("/new-user", m.Guards.PerIPAndPath(10), m.Handler.Signup)
}
