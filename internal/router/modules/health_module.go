package modules

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/aadi90392/yoga-master-full/pkg/response"
)

type HealthModule struct {
	AppName  string
	Backends func() map[string]bool
}

func NewHealthModule(appName string, backends func() map[string]bool) *HealthModule {
	return &HealthModule{AppName: appName, Backends: backends}
}

func (m *HealthModule) Name() string { return "health" }

func (m *HealthModule) Register(rg *gin.RouterGroup) {
	rg.GET("/", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"name": m.AppName}, m.AppName+" server is running", nil)
	})
	rg.GET("/health", func(c *gin.Context) {
		body := gin.H{"status": "ok"}
		if m.Backends != nil {
			body["backends"] = m.Backends()
		}
		response.Success(c, http.StatusOK, body, "healthy", nil)
	})
}
