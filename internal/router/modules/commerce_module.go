package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/aadi90392/yoga-master-full/internal/interface/http"
)

// CommerceModule mounts the cart and checkout routes.
type CommerceModule struct {
	Cart     *handlers.CartHandler
	Payments *handlers.PaymentHandler
	Guards   Guards
}

func NewCommerceModule(cart *handlers.CartHandler, payments *handlers.PaymentHandler, g Guards) *CommerceModule {
	return &CommerceModule{Cart: cart, Payments: payments, Guards: g}
}

func (m *CommerceModule) Name() string { return "commerce" }

func (m *CommerceModule) Register(rg *gin.RouterGroup) {
	authed := rg.Group("/", m.Guards.Authed()...)
	{
		authed.POST("/add-to-cart", m.Cart.Add)
		authed.GET("/cart-item/:id", m.Cart.Item)
		authed.GET("/cart/:email", m.Cart.List)
		authed.DELETE("/delete-cart-item/:id", m.Cart.Remove)

		authed.POST("/create-payment-intent", m.Guards.PerUser(20), m.Payments.CreateIntent)
		authed.POST("/payment-info", m.Guards.PerUser(20), m.Payments.Confirm)
		authed.GET("/payment-history/:email", m.Payments.History)
		authed.GET("/payment-history-length/:email", m.Payments.HistoryLength)
	}
}
