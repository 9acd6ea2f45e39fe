// Package payment talks to the card processor.
package payment

import (
	"context"

	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/client"

	"github.com/aadi90392/yoga-master-full/internal/domain/entity"
)

// StripeGateway creates and reads card payment intents through Stripe.
type StripeGateway struct {
	api *client.API
}

func NewStripeGateway(secretKey string) *StripeGateway {
	return &StripeGateway{api: client.New(secretKey, nil)}
}

func (g *StripeGateway) CreateIntent(ctx context.Context, amount int64, currency string, metadata map[string]string) (entity.PaymentIntent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:             stripe.Int64(amount),
		Currency:           stripe.String(currency),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
	}
	params.Context = ctx
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}
	pi, err := g.api.PaymentIntents.New(params)
	if err != nil {
		return entity.PaymentIntent{}, err
	}
	return fromStripe(pi), nil
}

func (g *StripeGateway) GetIntent(ctx context.Context, id string) (entity.PaymentIntent, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx
	pi, err := g.api.PaymentIntents.Get(id, params)
	if err != nil {
		return entity.PaymentIntent{}, err
	}
	return fromStripe(pi), nil
}

func fromStripe(pi *stripe.PaymentIntent) entity.PaymentIntent {
	return entity.PaymentIntent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		Amount:       pi.Amount,
		Currency:     string(pi.Currency),
		Status:       string(pi.Status),
		Metadata:     pi.Metadata,
	}
}
