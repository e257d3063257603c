package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/mapops/volcsync/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.SecretProvider = (*SecretChain)(nil)

// SecretChain resolves a secret from an ordered list of backends. The
// first backend holding the secret wins; a backend reporting not-found
// passes the lookup on, any other failure aborts the chain.
type SecretChain struct {
	providers []driven.SecretProvider
}

// NewSecretChain creates a SecretChain over the given providers in
// priority order.
func NewSecretChain(providers ...driven.SecretProvider) *SecretChain {
	return &SecretChain{providers: providers}
}

// Get returns the first secret found, or driven.ErrSecretNotFound when
// every backend comes up empty.
func (c *SecretChain) Get(ctx context.Context, service, account string) (string, error) {
	for _, p := range c.providers {
		secret, err := p.Get(ctx, service, account)
		if err == nil {
			return secret, nil
		}
		if !errors.Is(err, driven.ErrSecretNotFound) {
			return "", err
		}
	}
	return "", fmt.Errorf("%w: %s/%s in any configured backend", driven.ErrSecretNotFound, service, account)
}
