package gameid

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProducesValidIDs(t *testing.T) {
	g := NewGenerator(nil)
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := g.New()
		require.Len(t, id, 26)
		require.NoError(t, Validate(id))
		require.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}

func TestGeneratorWithReader(t *testing.T) {
	g := NewGenerator(rand.New(rand.NewSource(1)))
	id := g.New()
	require.NoError(t, Validate(id))
	assert.Equal(t, id[:8], Short(id))
}

func TestValidateRejectsGarbage(t *testing.T) {
	assert.Error(t, Validate("short"))
	assert.Error(t, Validate("iiiiiiiiiiiiiiiiiiiiiiiiii"))
	assert.Equal(t, "abc", Short("abc"))
}
