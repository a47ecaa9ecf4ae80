package watchedbitfield

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	b := New("tt0386676", 6)
	b.Set(0, true)
	b.Set(3, true)

	encoded, err := b.Encode()
	require.NoError(t, err)

	decoded, err := Decode(encoded)
	require.NoError(t, err)
	assert.Equal(t, "tt0386676", decoded.MetaID)
	assert.Equal(t, 6, decoded.Count)
	assert.True(t, decoded.Get(0))
	assert.True(t, decoded.Get(3))
	assert.False(t, decoded.Get(1))
	assert.False(t, decoded.Get(5))
}

func TestRekeyPreservesWatchedByVideoID(t *testing.T) {
	b := New("tt1", 3)
	oldIDs := []string{"v1", "v2", "v3"}
	b.Set(1, true) // v2 watched

	newIDs := []string{"v0", "v1", "v2", "v3"}
	rekeyed := Rekey(b, oldIDs, newIDs)

	assert.False(t, rekeyed.Get(0)) // v0, new, unwatched
	assert.False(t, rekeyed.Get(1)) // v1
	assert.True(t, rekeyed.Get(2))  // v2 carried over
	assert.False(t, rekeyed.Get(3)) // v3
}

func TestDecodeRejectsMalformedInput(t *testing.T) {
	_, err := Decode("not-enough-parts")
	assert.Error(t, err)
}
