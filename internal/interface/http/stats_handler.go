package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	app "github.com/aadi90392/yoga-master-full/internal/application"
	"github.com/aadi90392/yoga-master-full/internal/interface/middleware"
	"github.com/aadi90392/yoga-master-full/pkg/response"
)

type StatsHandler struct {
	Svc    *app.StatsService
	Audit  *app.Auditor
	Logger *logrus.Logger
}

func NewStatsHandler(svc *app.StatsService, audit *app.Auditor, logger *logrus.Logger) *StatsHandler {
	return &StatsHandler{Svc: svc, Audit: audit, Logger: logger}
}

func (h *StatsHandler) PopularClasses(c *gin.Context) {
	list, err := h.Svc.PopularClasses(c.Request.Context())
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, list, "popular classes", nil)
}

func (h *StatsHandler) PopularInstructors(c *gin.Context) {
	list, err := h.Svc.PopularInstructors(c.Request.Context())
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, list, "popular instructors", nil)
}

func (h *StatsHandler) InstructorStats(c *gin.Context) {
	st, err := h.Svc.InstructorStats(c.Request.Context(), middleware.Viewer(c), c.Param("email"))
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, st, "instructor stats", nil)
}

func (h *StatsHandler) AdminStats(c *gin.Context) {
	st, err := h.Svc.AdminStats(c.Request.Context(), middleware.Viewer(c))
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, st, "admin stats", nil)
}

func (h *StatsHandler) EnrolledClasses(c *gin.Context) {
	list, err := h.Svc.EnrolledClasses(c.Request.Context(), middleware.Viewer(c), c.Param("email"))
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.List(c, list, "enrolled classes")
}

// AuditLogs handles GET /audit-logs?limit=.
func (h *StatsHandler) AuditLogs(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	list, err := h.Audit.Recent(c.Request.Context(), middleware.Viewer(c), limit)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.List(c, list, "audit logs")
}
