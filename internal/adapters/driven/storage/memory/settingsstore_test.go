package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mschrader15/hypothesis-sync/internal/core/domain"
)

func TestSettingsStoreAppliesDefaults(t *testing.T) {
	store := NewSettingsStore(domain.Settings{})

	settings, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultTemplate, settings.Template)
}

func TestSettingsStoreSaveLoad(t *testing.T) {
	store := NewSettingsStore(domain.Settings{})
	ctx := context.Background()

	in := domain.Settings{APIToken: "tok", HighlightsFolder: "highlights"}.WithDefaults()
	require.NoError(t, store.Save(ctx, &in))

	out, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, in, *out)

	// The returned copy is detached from the store.
	out.APIToken = "mutated"
	again, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok", again.APIToken)
}
