package cache

import (
	"context"
	"time"

	"github.com/djamelwaw6-beep/djamelwaw6-beep-lol/internal/domain"
)

// CartCache keeps shopper cart snapshots between requests and restarts.
type CartCache interface {
	Get(ctx context.Context, sessionID string) ([]domain.CartLine, bool, error)
	Set(ctx context.Context, sessionID string, lines []domain.CartLine, ttl time.Duration) error
	Delete(ctx context.Context, sessionID string) error
}

type NoopCartCache struct{}

func (NoopCartCache) Get(_ context.Context, _ string) ([]domain.CartLine, bool, error) {
	return nil, false, nil
}

func (NoopCartCache) Set(_ context.Context, _ string, _ []domain.CartLine, _ time.Duration) error {
	return nil
}

func (NoopCartCache) Delete(_ context.Context, _ string) error {
	return nil
}

func cartKey(sessionID string) string {
	return "storefront:cart:" + sessionID
}
