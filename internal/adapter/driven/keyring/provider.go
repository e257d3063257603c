// Package keyring implements the SecretProvider port against the OS
// credential store (Keychain, Secret Service, Windows Credential Manager).
package keyring

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	gokeyring "github.com/zalando/go-keyring"

	"github.com/mapops/volcsync/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.SecretProvider = (*Provider)(nil)

// Provider resolves secrets from the OS keychain. Lookup only; entries
// are managed out of band with the platform's own tooling.
type Provider struct{}

// NewProvider creates a keychain-backed Provider.
func NewProvider() *Provider {
	return &Provider{}
}

// Get returns the secret stored under (service, account), or
// driven.ErrSecretNotFound if the keychain has no such entry. A keychain
// that cannot be reached at all (headless host without a Secret Service,
// scratch container) also reports not-found, so a provider chain can
// fall through to its other backends; the underlying error is logged.
func (p *Provider) Get(_ context.Context, service, account string) (string, error) {
	secret, err := gokeyring.Get(service, account)
	if err == nil {
		return secret, nil
	}

	if !errors.Is(err, gokeyring.ErrNotFound) {
		slog.Warn("os keychain unavailable",
			"service", service,
			"account", account,
			"error", err,
		)
	}

	return "", fmt.Errorf("%w: keychain entry %s/%s", driven.ErrSecretNotFound, service, account)
}
