package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	app "github.com/aadi90392/yoga-master-full/internal/application"
	"github.com/aadi90392/yoga-master-full/pkg/response"
)

type AuthHandler struct {
	Svc    *app.AuthService
	Logger *logrus.Logger
}

func NewAuthHandler(svc *app.AuthService, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{Svc: svc, Logger: logger}
}

type signupRequest struct {
	Name     string `json:"name" binding:"required,max=120"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,pwd"`
	PhotoURL string `json:"photoUrl" binding:"omitempty,url"`
	Phone    string `json:"phone" binding:"omitempty,max=32"`
	Address  string `json:"address" binding:"omitempty,max=255"`
	Gender   string `json:"gender" binding:"omitempty,max=32"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Signup handles POST /new-user.
func (h *AuthHandler) Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	u, err := h.Svc.Signup(c.Request.Context(), app.SignupInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		PhotoURL: req.PhotoURL,
		Phone:    req.Phone,
		Address:  req.Address,
		Gender:   req.Gender,
	})
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusCreated, u, "user created", nil)
}

// Login handles POST /api/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	res, err := h.Svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, res, "login successful", map[string]any{"access_expires_at": res.ExpiresAt})
}
