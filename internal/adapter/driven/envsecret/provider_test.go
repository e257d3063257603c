package envsecret_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mapops/volcsync/internal/adapter/driven/envsecret"
	"github.com/mapops/volcsync/internal/domain/port/driven"
)

func TestGet_Set(t *testing.T) {
	t.Setenv("VOLCSYNC_PORTAL_PASSWORD", "pw1")

	provider := envsecret.NewProvider("VOLCSYNC_PORTAL_PASSWORD")
	secret, err := provider.Get(context.Background(), "PORTAL", "svc")

	require.NoError(t, err)
	assert.Equal(t, "pw1", secret)
}

func TestGet_Unset(t *testing.T) {
	t.Setenv("VOLCSYNC_PORTAL_PASSWORD", "")

	provider := envsecret.NewProvider("VOLCSYNC_PORTAL_PASSWORD")
	_, err := provider.Get(context.Background(), "PORTAL", "svc")

	require.Error(t, err)
	assert.ErrorIs(t, err, driven.ErrSecretNotFound)
}
