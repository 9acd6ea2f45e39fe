package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/aadi90392/yoga-master-full/internal/interface/http"
)

type StatsModule struct {
	Handler *handlers.StatsHandler
	Guards  Guards
}

func NewStatsModule(h *handlers.StatsHandler, g Guards) *StatsModule {
	return &StatsModule{Handler: h, Guards: g}
}

func (m *StatsModule) Name() string { return "stats" }

func (m *StatsModule) Register(rg *gin.RouterGroup) {
	rg.GET("/popular_classes", m.Handler.PopularClasses)
	rg.GET("/popular-instructors", m.Handler.PopularInstructors)

	rg.GET("/enrolled-classes/:email", append(m.Guards.Authed(), m.Handler.EnrolledClasses)...)
	rg.GET("/instructor-stats/:email", append(m.Guards.Instructor(), m.Handler.InstructorStats)...)

	admin := rg.Group("/", m.Guards.Admin()...)
	{
		admin.GET("/admin-stats", m.Handler.AdminStats)
		admin.GET("/audit-logs", m.Handler.AuditLogs)
	}
}
