package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	app "github.com/aadi90392/yoga-master-full/internal/application"
	"github.com/aadi90392/yoga-master-full/internal/domain/entity"
	"github.com/aadi90392/yoga-master-full/internal/interface/middleware"
	"github.com/aadi90392/yoga-master-full/pkg/response"
)

type ClassHandler struct {
	Svc    *app.ClassService
	Logger *logrus.Logger
}

func NewClassHandler(svc *app.ClassService, logger *logrus.Logger) *ClassHandler {
	return &ClassHandler{Svc: svc, Logger: logger}
}

type chapterRequest struct {
	Title       string `json:"title" binding:"required,max=200"`
	Description string `json:"description" binding:"omitempty,max=2000"`
	Video       string `json:"video" binding:"required,url"`
	IsFree      bool   `json:"isFree"`
}

type newClassRequest struct {
	Name           string           `json:"name" binding:"required,max=200"`
	Description    string           `json:"description" binding:"omitempty,max=5000"`
	Image          string           `json:"image" binding:"omitempty,url"`
	Price          float64          `json:"price" binding:"gte=0"`
	AvailableSeats int              `json:"availableSeats" binding:"gte=0"`
	VideoLink      string           `json:"videoLink" binding:"omitempty,url"`
	Chapters       []chapterRequest `json:"chapters" binding:"omitempty,dive"`
}

type updateClassRequest struct {
	Name           *string           `json:"name" binding:"omitempty,max=200"`
	Description    *string           `json:"description" binding:"omitempty,max=5000"`
	Image          *string           `json:"image" binding:"omitempty,url"`
	Price          *float64          `json:"price" binding:"omitempty,gte=0"`
	AvailableSeats *int              `json:"availableSeats" binding:"omitempty,gte=0"`
	VideoLink      *string           `json:"videoLink" binding:"omitempty,url"`
	Chapters       *[]chapterRequest `json:"chapters" binding:"omitempty,dive"`
}

type changeStatusRequest struct {
	Status string `json:"status" binding:"required,classstatus"`
	Reason string `json:"reason" binding:"omitempty,max=1000"`
}

func toChapters(in []chapterRequest) []entity.Chapter {
	out := make([]entity.Chapter, 0, len(in))
	for _, ch := range in {
		out = append(out, entity.Chapter{Title: ch.Title, Description: ch.Description, Video: ch.Video, IsFree: ch.IsFree})
	}
	return out
}

func (r updateClassRequest) patch() entity.ClassPatch {
	p := entity.ClassPatch{
		Name:           r.Name,
		Description:    r.Description,
		Image:          r.Image,
		Price:          r.Price,
		AvailableSeats: r.AvailableSeats,
		VideoLink:      r.VideoLink,
	}
	if r.Chapters != nil {
		chapters := toChapters(*r.Chapters)
		p.Chapters = &chapters
	}
	return p
}

// Create handles POST /new-class.
func (h *ClassHandler) Create(c *gin.Context) {
	var req newClassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	cl, err := h.Svc.Create(c.Request.Context(), middleware.Viewer(c), app.NewClassInput{
		Name:           req.Name,
		Description:    req.Description,
		Image:          req.Image,
		Price:          req.Price,
		AvailableSeats: req.AvailableSeats,
		VideoLink:      req.VideoLink,
		Chapters:       toChapters(req.Chapters),
	})
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusCreated, cl, "class submitted for review", nil)
}

func (h *ClassHandler) Update(c *gin.Context) {
	var req updateClassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	cl, err := h.Svc.Update(c.Request.Context(), middleware.Viewer(c), c.Param("id"), req.patch())
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, cl, "class updated and resubmitted for review", nil)
}

// ChangeStatus handles PATCH /change-status/:id.
func (h *ClassHandler) ChangeStatus(c *gin.Context) {
	var req changeStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	cl, err := h.Svc.Review(c.Request.Context(), middleware.Viewer(c), c.Param("id"), entity.ClassStatus(req.Status), req.Reason)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, cl, "class "+req.Status, nil)
}

func (h *ClassHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if err := h.Svc.Delete(c.Request.Context(), middleware.Viewer(c), id); err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": id}, "class deleted", nil)
}

func (h *ClassHandler) All(c *gin.Context) {
	h.list(c, "classes", func() ([]entity.Class, error) { return h.Svc.All(c.Request.Context()) })
}

func (h *ClassHandler) Approved(c *gin.Context) {
	h.list(c, "approved classes", func() ([]entity.Class, error) { return h.Svc.Approved(c.Request.Context()) })
}

func (h *ClassHandler) Manage(c *gin.Context) {
	h.list(c, "classes", func() ([]entity.Class, error) { return h.Svc.Manage(c.Request.Context(), middleware.Viewer(c)) })
}

func (h *ClassHandler) ByInstructor(c *gin.Context) {
	h.list(c, "instructor classes", func() ([]entity.Class, error) {
		return h.Svc.ByInstructor(c.Request.Context(), middleware.Viewer(c), c.Param("email"))
	})
}

// Search handles GET /search-classes?q=.
func (h *ClassHandler) Search(c *gin.Context) {
	h.list(c, "search results", func() ([]entity.Class, error) { return h.Svc.SearchClasses(c.Request.Context(), c.Query("q")) })
}

func (h *ClassHandler) list(c *gin.Context, msg string, load func() ([]entity.Class, error)) {
	list, err := load()
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.List(c, list, msg)
}

func (h *ClassHandler) Detail(c *gin.Context) {
	cl, err := h.Svc.Detail(c.Request.Context(), middleware.Viewer(c), c.Param("id"))
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, cl, "class", nil)
}

// Chapter handles GET /class/:id/chapters/:index.
func (h *ClassHandler) Chapter(c *gin.Context) {
	idx, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, "invalid chapter index", nil)
		return
	}
	ch, err := h.Svc.Chapter(c.Request.Context(), middleware.Viewer(c), c.Param("id"), idx)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, ch, "chapter", nil)
}

// UploadImage handles POST /class/:id/image with a multipart "file" field.
func (h *ClassHandler) UploadImage(c *gin.Context) {
	file, ok := imageUpload(c)
	if !ok {
		return
	}
	defer func() { _ = file.Close() }()
	cl, err := h.Svc.UploadImage(c.Request.Context(), middleware.Viewer(c), c.Param("id"), file, file.name, file.contentType)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, cl, "image uploaded", nil)
}
