package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/aadi90392/yoga-master-full/internal/interface/http"
)

type ClassModule struct {
	Handler *handlers.ClassHandler
	Guards  Guards
}

func NewClassModule(h *handlers.ClassHandler, g Guards) *ClassModule {
	return &ClassModule{Handler: h, Guards: g}
}

func (m *ClassModule) Name() string { return "classes" }

func (m *ClassModule) Register(rg *gin.RouterGroup) {
	rg.GET("/classes", m.Handler.All)
	rg.GET("/approved-classes", m.Handler.Approved)
	rg.GET("/search-classes", m.Handler.Search)
	rg.GET("/class/:id", m.Guards.Optional(), m.Handler.Detail)
	rg.GET("/class/:id/chapters/:index", m.Guards.Optional(), m.Handler.Chapter)

	teach := rg.Group("/", m.Guards.Instructor()...)
	{
		teach.POST("/new-class", m.Handler.Create)
		teach.GET("/classes/:email", m.Handler.ByInstructor)
		teach.PUT("/update-class/:id", m.Handler.Update)
		teach.POST("/class/:id/image", m.Guards.PerUser(10), m.Handler.UploadImage)
	}

	admin := rg.Group("/", m.Guards.Admin()...)
	{
		admin.GET("/class-manage", m.Handler.Manage)
		admin.PATCH("/change-status/:id", m.Handler.ChangeStatus)
		admin.DELETE("/delete-class/:id", m.Handler.Delete)
	}
}
