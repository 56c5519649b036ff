package cache

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"f1trackrenderer/pkg/cache"
)

func newStore(t *testing.T) cache.Store {
	t.Helper()
	s, err := cache.Open(cache.BackendFile, t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.Put("2023_italian_grand_prix_r.pkl", make([]byte, 2048)))
	require.NoError(t, s.Put("2023_monaco_q.pkl", []byte("x")))
	return s
}

func TestList(t *testing.T) {
	s := newStore(t)
	var out bytes.Buffer
	require.NoError(t, List(s, &out))
	assert.Contains(t, out.String(), "2023_italian_grand_prix_r.pkl")
	assert.Contains(t, out.String(), "2.0 kB")
	assert.Contains(t, out.String(), "2 entries")
}

func TestRemoveAndClear(t *testing.T) {
	s := newStore(t)
	var out bytes.Buffer
	err := Remove(s, &out, "2023_monaco_q.pkl", "missing.pkl")
	assert.ErrorIs(t, err, cache.ErrNotFound)
	assert.Contains(t, out.String(), "removed 2023_monaco_q.pkl")

	out.Reset()
	require.NoError(t, Clear(s, &out))
	assert.Equal(t, "removed 1 entries\n", out.String())
	entries, err := s.List()
	require.NoError(t, err)
	assert.Empty(t, entries)
}
