package mcp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewServer(t *testing.T) {
	t.Run("nil retrieval service returns error", func(t *testing.T) {
		server, err := NewServer(&Ports{})
		require.Error(t, err)
		assert.Nil(t, server)
		assert.ErrorIs(t, err, ErrMissingRetrievalService)
	})

	t.Run("retrieval only creates server", func(t *testing.T) {
		server, err := NewServer(&Ports{Retrieval: &mockRetrievalService{}})
		require.NoError(t, err)
		assert.NotNil(t, server)
		assert.NotNil(t, server.Handler())
	})

	t.Run("all ports creates server", func(t *testing.T) {
		server, err := NewServer(&Ports{
			Retrieval:  &mockRetrievalService{},
			Extraction: &mockExtractionService{},
		})
		require.NoError(t, err)
		assert.NotNil(t, server)
	})
}
