package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	app "github.com/aadi90392/yoga-master-full/internal/application"
	"github.com/aadi90392/yoga-master-full/internal/interface/middleware"
	"github.com/aadi90392/yoga-master-full/pkg/response"
)

type InstructorHandler struct {
	Svc    *app.InstructorService
	Logger *logrus.Logger
}

func NewInstructorHandler(svc *app.InstructorService, logger *logrus.Logger) *InstructorHandler {
	return &InstructorHandler{Svc: svc, Logger: logger}
}

type applyRequest struct {
	Name       string `json:"name" binding:"required,max=120"`
	PhotoURL   string `json:"photoUrl" binding:"omitempty,url"`
	Experience string `json:"experience" binding:"omitempty,max=2000"`
	Skills     string `json:"skills" binding:"omitempty,max=500"`
	About      string `json:"about" binding:"omitempty,max=2000"`
	DemoVideo  string `json:"demoVideo" binding:"omitempty,url"`
}

type makeInstructorRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// Apply handles POST /as-instructor. The applicant is the token holder.
func (h *InstructorHandler) Apply(c *gin.Context) {
	var req applyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	a, err := h.Svc.Apply(c.Request.Context(), middleware.Viewer(c), app.ApplyInput{
		Name:       req.Name,
		PhotoURL:   req.PhotoURL,
		Experience: req.Experience,
		Skills:     req.Skills,
		About:      req.About,
		DemoVideo:  req.DemoVideo,
	})
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusCreated, a, "application submitted", nil)
}

func (h *InstructorHandler) GetByEmail(c *gin.Context) {
	a, err := h.Svc.GetByEmail(c.Request.Context(), middleware.Viewer(c), c.Param("email"))
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, a, "application", nil)
}

func (h *InstructorHandler) List(c *gin.Context) {
	list, err := h.Svc.List(c.Request.Context(), middleware.Viewer(c))
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.List(c, list, "applications")
}

// MakeInstructor handles PATCH /make-instructor.
func (h *InstructorHandler) MakeInstructor(c *gin.Context) {
	var req makeInstructorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	u, err := h.Svc.Approve(c.Request.Context(), middleware.Viewer(c), req.Email)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, u, "user is now an instructor", nil)
}

func (h *InstructorHandler) DeleteApplication(c *gin.Context) {
	id := c.Param("id")
	if err := h.Svc.Reject(c.Request.Context(), middleware.Viewer(c), id); err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": id}, "application deleted", nil)
}
