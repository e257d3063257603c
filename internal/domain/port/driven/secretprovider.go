package driven

import (
	"context"
	"errors"
)

// ErrSecretNotFound is returned by SecretProvider.Get when the backend
// holds no secret for the requested service/account pair.
var ErrSecretNotFound = errors.New("secret not found")

// ErrEncryptionKeyNotSet is returned by the encrypted credential store
// when VOLCSYNC_SECRET_KEY has not been configured.
var ErrEncryptionKeyNotSet = errors.New("encryption key not configured: set VOLCSYNC_SECRET_KEY")

// SecretProvider defines the driven port for resolving a secret from an
// external store (OS keychain, encrypted local store, environment).
// Implementations must never write the secret to any log or file.
type SecretProvider interface {
	// Get returns the plaintext secret for the given service and account,
	// or ErrSecretNotFound if the backend has no entry.
	Get(ctx context.Context, service, account string) (string, error)
}

// CredentialStore extends SecretProvider with write access, for backends
// that persist credentials locally (the encrypted SQLite store).
type CredentialStore interface {
	SecretProvider

	// Set stores or replaces the secret for the given service and account.
	// Returns ErrEncryptionKeyNotSet if the store was constructed without
	// an encryption key.
	Set(ctx context.Context, service, account, plaintext string) error

	// Delete removes the stored secret for the given service and account.
	Delete(ctx context.Context, service, account string) error
}
