package indexing

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// EntryMetadata はコレクションに保存される1エントリのメタデータ
type EntryMetadata struct {
	File       string `json:"file"`
	LineNumber int    `json:"line"`
	Language   string `json:"language,omitempty"`
}

// IndexResult はインデックス化処理の結果を表す
type IndexResult struct {
	Collection   string
	IndexedLines int
	SkippedLines int
	Duration     time.Duration
}

// IndexParams はインデックス化のパラメータ
type IndexParams struct {
	// Dir はインデックス対象のディレクトリ
	Dir string

	// Collection は書き込み先のコレクション名
	Collection string
}

// EntryID はエントリの内容から安定したIDを導出する。
// 同一の file/line/content は常に同じIDになるため、再インデックスは
// 既存エントリへの上書きになる
func EntryID(file string, lineNumber int, content string) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s\n%d\n%s", file, lineNumber, content)))
	return "line_" + hex.EncodeToString(sum[:8])
}
