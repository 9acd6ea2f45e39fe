package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	app "github.com/aadi90392/yoga-master-full/internal/application"
	"github.com/aadi90392/yoga-master-full/internal/domain/entity"
	"github.com/aadi90392/yoga-master-full/internal/interface/middleware"
	"github.com/aadi90392/yoga-master-full/pkg/response"
)

type UserHandler struct {
	Svc    *app.UserService
	Logger *logrus.Logger
}

func NewUserHandler(svc *app.UserService, logger *logrus.Logger) *UserHandler {
	return &UserHandler{Svc: svc, Logger: logger}
}

// Email is not editable and is ignored if sent.
type updateUserRequest struct {
	Name     *string `json:"name" binding:"omitempty,max=120"`
	Address  *string `json:"address" binding:"omitempty,max=255"`
	Phone    *string `json:"phone" binding:"omitempty,max=32"`
	About    *string `json:"about" binding:"omitempty,max=2000"`
	PhotoURL *string `json:"photoUrl" binding:"omitempty,url"`
	Skills   *string `json:"skills" binding:"omitempty,max=500"`
	Gender   *string `json:"gender" binding:"omitempty,max=32"`
	Role     *string `json:"role" binding:"omitempty,role"`
}

func (r updateUserRequest) patch() entity.ProfilePatch {
	p := entity.ProfilePatch{
		Name:     r.Name,
		Address:  r.Address,
		Phone:    r.Phone,
		About:    r.About,
		PhotoURL: r.PhotoURL,
		Skills:   r.Skills,
		Gender:   r.Gender,
	}
	if r.Role != nil {
		role := entity.Role(*r.Role)
		p.Role = &role
	}
	return p
}

func (h *UserHandler) List(c *gin.Context) {
	users, err := h.Svc.List(c.Request.Context())
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.List(c, users, "users")
}

func (h *UserHandler) Instructors(c *gin.Context) {
	users, err := h.Svc.Instructors(c.Request.Context())
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.List(c, users, "instructors")
}

func (h *UserHandler) GetByID(c *gin.Context) {
	u, err := h.Svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, u, "user", nil)
}

func (h *UserHandler) GetByEmail(c *gin.Context) {
	u, err := h.Svc.GetByEmail(c.Request.Context(), middleware.Viewer(c), c.Param("email"))
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, u, "user", nil)
}

func (h *UserHandler) Update(c *gin.Context) {
	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	u, err := h.Svc.UpdateProfile(c.Request.Context(), middleware.Viewer(c), c.Param("id"), req.patch())
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, u, "user updated", nil)
}

func (h *UserHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if err := h.Svc.Delete(c.Request.Context(), middleware.Viewer(c), id); err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": id}, "user deleted", nil)
}

// UploadPhoto handles POST /upload-photo with a multipart "file" field.
func (h *UserHandler) UploadPhoto(c *gin.Context) {
	file, ok := imageUpload(c)
	if !ok {
		return
	}
	defer func() { _ = file.Close() }()
	u, err := h.Svc.UploadPhoto(c.Request.Context(), middleware.Viewer(c), file, file.name, file.contentType)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, u, "photo uploaded", nil)
}
