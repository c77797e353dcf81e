package tfidf

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var corpus = []string{
	"scholarship for scheduled caste students in college",
	"income support for farmers with cultivable land",
	"monthly pension for senior citizens",
}

func prepared(t *testing.T) *Embedder {
	t.Helper()
	e := NewEmbedder()
	require.NoError(t, e.Prepare(corpus))
	return e
}

func TestPrepare(t *testing.T) {
	e := prepared(t)
	assert.Greater(t, e.Dimension(), 0)

	// Embedding before Prepare is an error.
	fresh := NewEmbedder()
	_, err := fresh.Embed(context.Background(), "anything")
	assert.Error(t, err)

	assert.Error(t, fresh.Prepare(nil))
}

func TestEmbedIsL2Normalized(t *testing.T) {
	e := prepared(t)

	vec, err := e.Embed(context.Background(), "scholarship for college students")
	require.NoError(t, err)
	require.Len(t, vec, e.Dimension())

	norm := 0.0
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	assert.InDelta(t, 1.0, math.Sqrt(norm), 1e-5)
}

func TestEmbedSimilarity(t *testing.T) {
	e := prepared(t)

	docs := make([][]float32, len(corpus))
	for i, text := range corpus {
		vec, err := e.Embed(context.Background(), text)
		require.NoError(t, err)
		docs[i] = vec
	}

	query, err := e.Embed(context.Background(), "pension for senior citizens")
	require.NoError(t, err)

	best, bestScore := -1, -1.0
	for i, doc := range docs {
		score := 0.0
		for j := range doc {
			score += float64(doc[j]) * float64(query[j])
		}
		if score > bestScore {
			best, bestScore = i, score
		}
	}
	assert.Equal(t, 2, best)
	assert.Greater(t, bestScore, 0.5)
}

func TestEmbedUnknownTextIsZeroVector(t *testing.T) {
	e := prepared(t)

	vec, err := e.Embed(context.Background(), "quantum flux capacitor")
	require.NoError(t, err)
	for _, v := range vec {
		assert.Zero(t, v)
	}
}

func TestTokenizeHindi(t *testing.T) {
	e := NewEmbedder()
	require.NoError(t, e.Prepare([]string{
		"किसान के लिए फसल बीमा योजना",
		"छात्रवृत्ति योजना for students",
	}))

	vec, err := e.Embed(context.Background(), "फसल बीमा")
	require.NoError(t, err)

	nonZero := false
	for _, v := range vec {
		if v != 0 {
			nonZero = true
			break
		}
	}
	assert.True(t, nonZero)
}
