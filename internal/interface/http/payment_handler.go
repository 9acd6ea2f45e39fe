package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	app "github.com/aadi90392/yoga-master-full/internal/application"
	"github.com/aadi90392/yoga-master-full/internal/interface/middleware"
	"github.com/aadi90392/yoga-master-full/pkg/response"
)

type PaymentHandler struct {
	Svc    *app.CheckoutService
	Logger *logrus.Logger
}

func NewPaymentHandler(svc *app.CheckoutService, logger *logrus.Logger) *PaymentHandler {
	return &PaymentHandler{Svc: svc, Logger: logger}
}

// The amount is always computed server-side; a client price is ignored.
type createIntentRequest struct {
	ClassIDs []string `json:"classesId" binding:"omitempty,dive,objectid"`
}

type paymentInfoRequest struct {
	TransactionID string   `json:"transactionId" binding:"required,max=255"`
	ClassIDs      []string `json:"classesId" binding:"required,min=1,dive,objectid"`
}

// CreateIntent handles POST /create-payment-intent.
func (h *PaymentHandler) CreateIntent(c *gin.Context) {
	var req createIntentRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
	}
	res, err := h.Svc.CreateIntent(c.Request.Context(), middleware.Viewer(c), req.ClassIDs)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, res, "payment intent created", nil)
}

// Confirm handles POST /payment-info.
func (h *PaymentHandler) Confirm(c *gin.Context) {
	var req paymentInfoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	res, err := h.Svc.Confirm(c.Request.Context(), middleware.Viewer(c), app.ConfirmInput{
		TransactionID: req.TransactionID,
		ClassIDs:      req.ClassIDs,
	})
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	status, msg := http.StatusCreated, "payment recorded"
	if res.Duplicate {
		status, msg = http.StatusOK, "payment already recorded"
	}
	response.Success(c, status, res, msg, nil)
}

func (h *PaymentHandler) History(c *gin.Context) {
	list, err := h.Svc.History(c.Request.Context(), middleware.Viewer(c), c.Param("email"))
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.List(c, list, "payment history")
}

func (h *PaymentHandler) HistoryLength(c *gin.Context) {
	n, err := h.Svc.HistoryLength(c.Request.Context(), middleware.Viewer(c), c.Param("email"))
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"total": n}, "payment history length", nil)
}
