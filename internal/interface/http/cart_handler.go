package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	app "github.com/aadi90392/yoga-master-full/internal/application"
	"github.com/aadi90392/yoga-master-full/internal/interface/middleware"
	"github.com/aadi90392/yoga-master-full/pkg/response"
)

type CartHandler struct {
	Svc    *app.CartService
	Logger *logrus.Logger
}

func NewCartHandler(svc *app.CartService, logger *logrus.Logger) *CartHandler {
	return &CartHandler{Svc: svc, Logger: logger}
}

// The owner always comes from the token; a userMail field is ignored.
type addToCartRequest struct {
	ClassID string `json:"classId" binding:"required,objectid"`
}

func (h *CartHandler) Add(c *gin.Context) {
	var req addToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	item, err := h.Svc.Add(c.Request.Context(), middleware.Viewer(c), req.ClassID)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusCreated, item, "added to cart", nil)
}

// Item handles GET /cart-item/:id where id is the class id.
func (h *CartHandler) Item(c *gin.Context) {
	item, err := h.Svc.Item(c.Request.Context(), middleware.Viewer(c), c.Param("id"))
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, item, "cart item", nil)
}

func (h *CartHandler) List(c *gin.Context) {
	list, err := h.Svc.ListClasses(c.Request.Context(), middleware.Viewer(c), c.Param("email"))
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.List(c, list, "cart")
}

// Remove handles DELETE /delete-cart-item/:id where id is the class id.
func (h *CartHandler) Remove(c *gin.Context) {
	id := c.Param("id")
	if err := h.Svc.Remove(c.Request.Context(), middleware.Viewer(c), id); err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": id}, "removed from cart", nil)
}
