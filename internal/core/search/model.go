package search

// Match はベクトル検索の結果1件を表す。Distance は小さいほど類似度が高い
type Match struct {
	File       string  `json:"file"`
	LineNumber int     `json:"lineNumber"`
	Content    string  `json:"content"`
	Distance   float64 `json:"distance"`
}

// EntryMetadata はストアから返されるエントリのメタデータ
type EntryMetadata struct {
	File       string `json:"file"`
	LineNumber int    `json:"line"`
	Language   string `json:"language,omitempty"`
}

// QueryResult はストアが返す並列配列。各配列は同じ長さであり、
// 距離の昇順に並んでいることがストアの契約
type QueryResult struct {
	Metadatas []EntryMetadata
	Documents []string
	Distances []float64
}
