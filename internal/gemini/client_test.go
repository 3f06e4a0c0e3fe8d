package gemini

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewClient(t *testing.T) {
	t.Parallel()

	t.Run("empty API key returns error", func(t *testing.T) {
		t.Parallel()
		client, err := NewClient(context.Background(), "")
		require.ErrorIs(t, err, ErrAPIKeyRequired)
		require.Nil(t, client)
	})

	t.Run("non-empty key builds client without calling the API", func(t *testing.T) {
		t.Parallel()
		client, err := NewClient(context.Background(), "test-api-key")
		require.NoError(t, err)
		require.NotNil(t, client)
	})
}
