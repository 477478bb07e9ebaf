package indexing

import "context"

// Embedder はテキストをベクトル表現に変換するインターフェース
// テスト時のモック用に消費者側で定義
type Embedder interface {
	// Embed は単一テキストのEmbeddingを生成する
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedAll は複数テキストのEmbeddingを生成する。
	// 入力と同数・同順のベクトルを返し、1件でも失敗した場合は
	// 部分結果を返さずエラーを返す
	EmbedAll(ctx context.Context, texts []string) ([][]float32, error)

	// ModelName はモデル名を返す
	ModelName() string
}

// TokenCounter はテキストのトークン数を数えるインターフェース
type TokenCounter interface {
	CountTokens(text string) int
}
