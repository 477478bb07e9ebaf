package extract

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractLinesKeepsOriginalLineNumbers(t *testing.T) {
	content := "package main\n\n\tfunc main() {\n   \n}\n"

	records := ExtractLines("main.go", content)

	require.Len(t, records, 3)

	// 行番号はトリム前の分割位置（空行の除外で振り直されない）
	assert.Equal(t, "package main", records[0].Content)
	assert.Equal(t, 1, records[0].LineNumber)
	assert.Equal(t, "func main() {", records[1].Content)
	assert.Equal(t, 3, records[1].LineNumber)
	assert.Equal(t, "}", records[2].Content)
	assert.Equal(t, 5, records[2].LineNumber)

	for _, rec := range records {
		assert.Equal(t, "main.go", rec.File)
		assert.Equal(t, "Go", rec.Language)
	}
}

func TestExtractLinesEmptyContent(t *testing.T) {
	assert.Empty(t, ExtractLines("empty.go", ""))
	assert.Empty(t, ExtractLines("blank.go", "\n  \n\t\n"))
}

func TestExtractDirFiltersByExtension(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "main.go", "package main\n")
	writeFile(t, dir, "README.md", "# readme\n")
	writeFile(t, dir, "notes.txt", "memo\n")

	extractor := NewExtractor(WithExtensions([]string{".go"}))
	records := extractor.ExtractDir(dir)

	require.Len(t, records, 1)
	assert.Equal(t, "main.go", records[0].File)
}

func TestExtractDirOnlyUnacceptedExtensions(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.txt", "hello\n")
	writeFile(t, dir, "b.csv", "x,y\n")

	extractor := NewExtractor(WithExtensions([]string{".go", ".py"}))
	assert.Empty(t, extractor.ExtractDir(dir))
}

func TestExtractDirMissingDirectoryReturnsEmpty(t *testing.T) {
	extractor := NewExtractor()
	assert.Empty(t, extractor.ExtractDir(filepath.Join(t.TempDir(), "no-such-dir")))
}

func TestExtractDirRespectsGitignore(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ".gitignore", "generated/\nignored.go\n")
	writeFile(t, dir, "main.go", "package main\n")
	writeFile(t, dir, "ignored.go", "package ignored\n")
	writeFile(t, dir, filepath.Join("generated", "gen.go"), "package gen\n")

	extractor := NewExtractor(WithExtensions([]string{".go"}))
	records := extractor.ExtractDir(dir)

	require.Len(t, records, 1)
	assert.Equal(t, "main.go", records[0].File)
}

func TestExtractDirFileThenLineOrder(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.go", "package a\nvar x = 1\n")
	writeFile(t, dir, "b.go", "package b\n")

	extractor := NewExtractor(WithExtensions([]string{".go"}))
	records := extractor.ExtractDir(dir)

	require.Len(t, records, 3)
	assert.Equal(t, "a.go", records[0].File)
	assert.Equal(t, 1, records[0].LineNumber)
	assert.Equal(t, "a.go", records[1].File)
	assert.Equal(t, 2, records[1].LineNumber)
	assert.Equal(t, "b.go", records[2].File)
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}
