package randutil

import (
	"math/bits"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyIsDeterministic(t *testing.T) {
	assert.Equal(t, Key(42), Key(42))
	assert.NotEqual(t, Key(42), Key(43))
}

func TestNeighbouringSeedsDiffer(t *testing.T) {
	for seed := int64(-10); seed < 10; seed++ {
		diff := bits.OnesCount64(Key(seed) ^ Key(seed+1))
		// A good mixer flips about half the bits.
		assert.Greater(t, diff, 10, "seeds %d and %d", seed, seed+1)
		assert.Less(t, diff, 54, "seeds %d and %d", seed, seed+1)
	}
}

func TestKeys(t *testing.T) {
	keys := Keys(7, 16)
	assert.Len(t, keys, 16)
	assert.Equal(t, Key(7), keys[0])

	seen := make(map[uint64]bool)
	for _, k := range keys {
		assert.False(t, seen[k], "duplicate key %#x", k)
		seen[k] = true
	}
	assert.Equal(t, keys, Keys(7, 16))
	assert.Empty(t, Keys(7, 0))
}

func TestSeed(t *testing.T) {
	// Two draws from crypto/rand colliding would be a one in 2^64 event.
	assert.NotEqual(t, Seed(), Seed())
}
