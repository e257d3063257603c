// Package envsecret implements the SecretProvider port over a single
// environment variable, for deployments without an OS keychain.
package envsecret

import (
	"context"
	"fmt"
	"os"

	"github.com/mapops/volcsync/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.SecretProvider = (*Provider)(nil)

// Provider reads the secret from a fixed environment variable regardless
// of the requested service/account.
type Provider struct {
	varName string
}

// NewProvider creates a Provider reading varName.
func NewProvider(varName string) *Provider {
	return &Provider{varName: varName}
}

// Get returns the variable's value, or driven.ErrSecretNotFound when it
// is unset or empty.
func (p *Provider) Get(_ context.Context, _, _ string) (string, error) {
	v, ok := os.LookupEnv(p.varName)
	if !ok || v == "" {
		return "", fmt.Errorf("%w: %s not set", driven.ErrSecretNotFound, p.varName)
	}
	return v, nil
}
