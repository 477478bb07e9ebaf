package indexing

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jinford/code-search/internal/core/extract"
)

type stubExtractor struct {
	records []extract.LineRecord
}

func (e *stubExtractor) ExtractDir(dir string) []extract.LineRecord {
	return e.records
}

// stubEmbedder は各テキストに対して次元3の固定ベクトルを返す。
// truncate が正の場合は入力より少ない件数だけ返す（長さ不一致の再現用）
type stubEmbedder struct {
	truncate int
	err      error
	calls    int
}

func (e *stubEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.EmbedAll(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (e *stubEmbedder) EmbedAll(ctx context.Context, texts []string) ([][]float32, error) {
	e.calls++
	if e.err != nil {
		return nil, e.err
	}
	n := len(texts)
	if e.truncate > 0 && e.truncate < n {
		n = e.truncate
	}
	vectors := make([][]float32, n)
	for i := range vectors {
		vectors[i] = []float32{1, 2, 3}
	}
	return vectors, nil
}

func (e *stubEmbedder) ModelName() string { return "stub-model" }

type stubRepo struct {
	ensured    []string
	addCalled  bool
	ids        []string
	embeddings [][]float32
	metadatas  []EntryMetadata
	documents  []string
}

func (r *stubRepo) EnsureCollection(ctx context.Context, name string) error {
	r.ensured = append(r.ensured, name)
	return nil
}

func (r *stubRepo) AddEntries(ctx context.Context, collection string, ids []string, embeddings [][]float32, metadatas []EntryMetadata, documents []string) error {
	r.addCalled = true
	r.ids = ids
	r.embeddings = embeddings
	r.metadatas = metadatas
	r.documents = documents
	return nil
}

type fixedTokenCounter struct{ tokens map[string]int }

func (c *fixedTokenCounter) CountTokens(text string) int { return c.tokens[text] }

func sampleRecords() []extract.LineRecord {
	return []extract.LineRecord{
		{Content: "package main", File: "main.go", LineNumber: 1, Language: "Go"},
		{Content: "func main() {", File: "main.go", LineNumber: 3, Language: "Go"},
		{Content: "}", File: "main.go", LineNumber: 5, Language: "Go"},
	}
}

func TestIndexDirectoryBuildsParallelArrays(t *testing.T) {
	repo := &stubRepo{}
	svc := NewIndexService(repo, &stubExtractor{records: sampleRecords()}, &stubEmbedder{})

	result, err := svc.IndexDirectory(context.Background(), IndexParams{Dir: "src", Collection: "code_lines"})
	require.NoError(t, err)

	assert.Equal(t, 3, result.IndexedLines)
	assert.Equal(t, []string{"code_lines"}, repo.ensured)
	require.True(t, repo.addCalled)
	assert.Len(t, repo.ids, 3)
	assert.Len(t, repo.embeddings, 3)
	assert.Len(t, repo.metadatas, 3)
	assert.Len(t, repo.documents, 3)

	assert.Equal(t, "main.go", repo.metadatas[1].File)
	assert.Equal(t, 3, repo.metadatas[1].LineNumber)
	assert.Equal(t, "func main() {", repo.documents[1])
}

func TestIndexDirectoryRejectsLengthMismatch(t *testing.T) {
	repo := &stubRepo{}
	// Embedderが3件の入力に対して2件しか返さないケース
	svc := NewIndexService(repo, &stubExtractor{records: sampleRecords()}, &stubEmbedder{truncate: 2})

	_, err := svc.IndexDirectory(context.Background(), IndexParams{Dir: "src", Collection: "code_lines"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrLengthMismatch)
	assert.Contains(t, err.Error(), "ids=3")
	assert.Contains(t, err.Error(), "embeddings=2")

	// 不一致が検出された場合はストアを呼ばない
	assert.False(t, repo.addCalled)
	assert.Empty(t, repo.ensured)
}

func TestIndexDirectoryEmbedFailureAborts(t *testing.T) {
	repo := &stubRepo{}
	embedErr := errors.New("boom")
	svc := NewIndexService(repo, &stubExtractor{records: sampleRecords()}, &stubEmbedder{err: embedErr})

	_, err := svc.IndexDirectory(context.Background(), IndexParams{Dir: "src", Collection: "code_lines"})
	require.Error(t, err)
	assert.ErrorIs(t, err, embedErr)
	assert.False(t, repo.addCalled)
}

func TestIndexDirectoryEmptyExtractionIsNoop(t *testing.T) {
	repo := &stubRepo{}
	embedder := &stubEmbedder{}
	svc := NewIndexService(repo, &stubExtractor{}, embedder)

	result, err := svc.IndexDirectory(context.Background(), IndexParams{Dir: "empty", Collection: "code_lines"})
	require.NoError(t, err)
	assert.Equal(t, 0, result.IndexedLines)
	assert.Zero(t, embedder.calls)
	assert.False(t, repo.addCalled)
}

func TestIndexDirectoryTokenGuardSkipsLongLines(t *testing.T) {
	repo := &stubRepo{}
	counter := &fixedTokenCounter{tokens: map[string]int{
		"package main":  3,
		"func main() {": 999,
		"}":             1,
	}}
	svc := NewIndexService(repo, &stubExtractor{records: sampleRecords()}, &stubEmbedder{},
		WithTokenGuard(counter, 100))

	result, err := svc.IndexDirectory(context.Background(), IndexParams{Dir: "src", Collection: "code_lines"})
	require.NoError(t, err)
	assert.Equal(t, 2, result.IndexedLines)
	assert.Equal(t, 1, result.SkippedLines)
	assert.NotContains(t, repo.documents, "func main() {")
}

func TestEntryIDIsContentDerived(t *testing.T) {
	id1 := EntryID("main.go", 3, "func main() {")
	id2 := EntryID("main.go", 3, "func main() {")
	id3 := EntryID("main.go", 4, "func main() {")

	assert.Equal(t, id1, id2)
	assert.NotEqual(t, id1, id3)
	assert.Regexp(t, `^line_[0-9a-f]{16}$`, id1)
}

func TestValidateParallel(t *testing.T) {
	assert.NoError(t, ValidateParallel(2, 2, 2, 2))
	assert.NoError(t, ValidateParallel(0, 0, 0, 0))

	err := ValidateParallel(3, 2, 3, 3)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrLengthMismatch)
	assert.EqualError(t, err, "parallel array length mismatch: ids=3 embeddings=2 metadatas=3 documents=3")
}
