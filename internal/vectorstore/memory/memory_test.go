package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRebuildAndSearch(t *testing.T) {
	s := NewStore()
	assert.Equal(t, 0, s.Len())

	require.NoError(t, s.Rebuild(
		[]string{"a", "b", "c"},
		[][]float32{
			{1, 0, 0},
			{0, 1, 0},
			{0.7071, 0.7071, 0},
		},
	))
	assert.Equal(t, 3, s.Len())

	hits, err := s.Search([]float32{1, 0, 0}, 2)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "a", hits[0].SchemeID)
	assert.InDelta(t, 1.0, hits[0].Score, 1e-4)
	assert.Equal(t, "c", hits[1].SchemeID)
	assert.InDelta(t, 0.7071, hits[1].Score, 1e-4)
}

func TestRebuildValidates(t *testing.T) {
	s := NewStore()
	assert.Error(t, s.Rebuild([]string{"a"}, nil))
	assert.Error(t, s.Rebuild(
		[]string{"a", "b"},
		[][]float32{{1, 0}, {1, 0, 0}},
	))
}

func TestRebuildReplacesContents(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.Rebuild([]string{"old"}, [][]float32{{1}}))
	require.NoError(t, s.Rebuild([]string{"new-1", "new-2"}, [][]float32{{1, 0}, {0, 1}}))

	assert.Equal(t, 2, s.Len())
	hits, err := s.Search([]float32{1, 0}, 10)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "new-1", hits[0].SchemeID)
}

func TestSearchEmptyStore(t *testing.T) {
	s := NewStore()
	hits, err := s.Search([]float32{1, 0}, 5)
	require.NoError(t, err)
	assert.Empty(t, hits)
}
