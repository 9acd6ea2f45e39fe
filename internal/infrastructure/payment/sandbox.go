package payment

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/aadi90392/yoga-master-full/internal/domain/entity"
)

var ErrUnknownIntent = errors.New("unknown payment intent")

// SandboxGateway is an in-process processor for local runs and tests.
// Intents it creates are immediately succeeded.
type SandboxGateway struct {
	mu      sync.Mutex
	intents map[string]entity.PaymentIntent
}

func NewSandboxGateway() *SandboxGateway {
	return &SandboxGateway{intents: map[string]entity.PaymentIntent{}}
}

func (g *SandboxGateway) CreateIntent(_ context.Context, amount int64, currency string, metadata map[string]string) (entity.PaymentIntent, error) {
	id := "pi_sandbox_" + uuid.NewString()
	md := make(map[string]string, len(metadata))
	for k, v := range metadata {
		md[k] = v
	}
	in := entity.PaymentIntent{
		ID:           id,
		ClientSecret: id + "_secret",
		Amount:       amount,
		Currency:     currency,
		Status:       entity.IntentSucceeded,
		Metadata:     md,
	}
	g.Put(in)
	return in, nil
}

func (g *SandboxGateway) GetIntent(_ context.Context, id string) (entity.PaymentIntent, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	in, ok := g.intents[id]
	if !ok {
		return entity.PaymentIntent{}, ErrUnknownIntent
	}
	return in, nil
}

// Put stores or replaces an intent as-is.
func (g *SandboxGateway) Put(in entity.PaymentIntent) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.intents[in.ID] = in
}
