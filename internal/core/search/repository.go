package search

import "context"

// Repository はベクトルコレクションへの問い合わせインターフェース
// テスト時のモック用に消費者側で定義
type Repository interface {
	// QueryNearest は queryVector に近い順に最大 limit 件を返す。
	// コレクションが存在しない場合はエラーを返す
	QueryNearest(ctx context.Context, collection string, queryVector []float32, limit int) (*QueryResult, error)
}
