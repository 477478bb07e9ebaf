package search

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubEmbedder struct {
	err    error
	called bool
}

func (e *stubEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	e.called = true
	if e.err != nil {
		return nil, e.err
	}
	return []float32{1, 2, 3}, nil
}

type stubRepo struct {
	result    *QueryResult
	err       error
	lastLimit int
}

func (r *stubRepo) QueryNearest(ctx context.Context, collection string, queryVector []float32, limit int) (*QueryResult, error) {
	r.lastLimit = limit
	if r.err != nil {
		return nil, r.err
	}
	return r.result, nil
}

func TestSearchPreservesStoreOrder(t *testing.T) {
	repo := &stubRepo{result: &QueryResult{
		Metadatas: []EntryMetadata{
			{File: "a.go", LineNumber: 10},
			{File: "b.go", LineNumber: 20},
			{File: "c.go", LineNumber: 30},
		},
		Documents: []string{"alpha", "beta", "gamma"},
		Distances: []float64{0.05, 0.1, 0.3},
	}}
	embedder := &stubEmbedder{}
	svc := NewSearchService(repo, embedder)

	matches := svc.Search(context.Background(), SearchParams{Collection: "code_lines", Query: "hello"})

	require.Len(t, matches, 3)
	assert.True(t, embedder.called)

	// ストアの昇順をそのまま保持する
	assert.Equal(t, Match{File: "a.go", LineNumber: 10, Content: "alpha", Distance: 0.05}, matches[0])
	assert.Equal(t, Match{File: "b.go", LineNumber: 20, Content: "beta", Distance: 0.1}, matches[1])
	assert.Equal(t, Match{File: "c.go", LineNumber: 30, Content: "gamma", Distance: 0.3}, matches[2])
}

func TestSearchAppliesDefaultLimit(t *testing.T) {
	repo := &stubRepo{result: &QueryResult{}}
	svc := NewSearchService(repo, &stubEmbedder{})

	matches := svc.Search(context.Background(), SearchParams{Collection: "code_lines", Query: "hello", Limit: 0})

	assert.Empty(t, matches)
	assert.Equal(t, DefaultLimit, repo.lastLimit)
}

func TestSearchMissingCollectionReturnsEmpty(t *testing.T) {
	repo := &stubRepo{err: errors.New("collection not found: code_lines")}
	svc := NewSearchService(repo, &stubEmbedder{})

	matches := svc.Search(context.Background(), SearchParams{Collection: "code_lines", Query: "hello"})
	assert.Empty(t, matches)
}

func TestSearchEmbedFailureReturnsEmpty(t *testing.T) {
	repo := &stubRepo{result: &QueryResult{}}
	svc := NewSearchService(repo, &stubEmbedder{err: errors.New("inference down")})

	matches := svc.Search(context.Background(), SearchParams{Collection: "code_lines", Query: "hello"})
	assert.Empty(t, matches)
	// Embedding失敗時はストアに問い合わせない
	assert.Zero(t, repo.lastLimit)
}

func TestSearchMalformedStoreResultReturnsEmpty(t *testing.T) {
	repo := &stubRepo{result: &QueryResult{
		Metadatas: []EntryMetadata{{File: "a.go", LineNumber: 1}},
		Documents: []string{"alpha", "beta"},
		Distances: []float64{0.1},
	}}
	svc := NewSearchService(repo, &stubEmbedder{})

	matches := svc.Search(context.Background(), SearchParams{Collection: "code_lines", Query: "hello"})
	assert.Empty(t, matches)
}

func TestSearchEmptyQueryReturnsEmpty(t *testing.T) {
	repo := &stubRepo{result: &QueryResult{}}
	embedder := &stubEmbedder{}
	svc := NewSearchService(repo, embedder)

	matches := svc.Search(context.Background(), SearchParams{Collection: "code_lines", Query: ""})
	assert.Empty(t, matches)
	assert.False(t, embedder.called)
}
