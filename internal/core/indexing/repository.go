package indexing

import "context"

// Repository はベクトルコレクションへの書き込みインターフェース
// テスト時のモック用に消費者側で定義
type Repository interface {
	// EnsureCollection はコレクションが存在しなければ作成する
	EnsureCollection(ctx context.Context, name string) error

	// AddEntries は等しい長さの並列配列をコレクションにupsertする。
	// 配列長の検証は呼び出し側の責務
	AddEntries(ctx context.Context, collection string, ids []string, embeddings [][]float32, metadatas []EntryMetadata, documents []string) error
}
