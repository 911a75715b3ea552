package utils

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUUIDGenerator_Generate_ValidUUID(t *testing.T) {
	g := NewUUIDGenerator()

	id := g.Generate()
	_, err := uuid.Parse(id)
	require.NoError(t, err)
}

func TestUUIDGenerator_Generate_Unique(t *testing.T) {
	g := NewUUIDGenerator()

	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		id := g.Generate()
		_, dup := seen[id]
		require.False(t, dup, "duplicate id %s", id)
		seen[id] = struct{}{}
	}
}

func TestNewLocalID_PrefixedAndDetected(t *testing.T) {
	g := NewUUIDGenerator()

	id := g.NewLocalID()
	assert.True(t, IsLocalID(id))
	_, err := uuid.Parse(id[len(LocalIDPrefix):])
	require.NoError(t, err)
}

func TestIsLocalID_ServerID(t *testing.T) {
	assert.False(t, IsLocalID(uuid.NewString()))
	assert.False(t, IsLocalID(""))
}
