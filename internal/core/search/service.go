package search

import (
	"context"
	"log/slog"
)

// DefaultLimit は件数未指定時の検索結果件数
const DefaultLimit = 5

// Embedder はクエリテキストのEmbedding生成インターフェース
type Embedder interface {
	// Embed は単一テキストのEmbeddingを生成する
	Embed(ctx context.Context, text string) ([]float32, error)
}

// SearchService は検索のビジネスロジックを提供する
type SearchService struct {
	repo     Repository
	embedder Embedder
	logger   *slog.Logger
}

type searchServiceOptions struct {
	logger *slog.Logger
}

// SearchServiceOption は SearchService のオプション設定
type SearchServiceOption func(*searchServiceOptions)

// WithSearchLogger は SearchService にロガーを設定する
func WithSearchLogger(logger *slog.Logger) SearchServiceOption {
	return func(o *searchServiceOptions) {
		o.logger = logger
	}
}

// NewSearchService は新しいSearchServiceを作成する
func NewSearchService(repo Repository, embedder Embedder, opts ...SearchServiceOption) *SearchService {
	options := searchServiceOptions{
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(&options)
	}
	if options.logger == nil {
		options.logger = slog.Default()
	}

	return &SearchService{
		repo:     repo,
		embedder: embedder,
		logger:   options.logger,
	}
}

// SearchParams は検索パラメータを表す
type SearchParams struct {
	Collection string
	Query      string
	Limit      int
}

// Search はクエリに基づいてベクトル検索を実行し、距離の昇順で
// Match を返す。失敗時（コレクション未作成・Embedding失敗・形状不正）は
// エラーを伝播せず、ログを出して空のリストを返す。したがって空の結果は
// 「該当なし」と「エラー」のどちらの場合もある
func (s *SearchService) Search(ctx context.Context, params SearchParams) []Match {
	if params.Query == "" {
		s.logger.Warn("検索クエリが空です")
		return nil
	}

	limit := params.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}

	// クエリをEmbeddingに変換（インデックス時と同じ正規化を通る）
	queryVector, err := s.embedder.Embed(ctx, params.Query)
	if err != nil {
		s.logger.Error("クエリのEmbedding生成に失敗しました", "error", err)
		return nil
	}

	result, err := s.repo.QueryNearest(ctx, params.Collection, queryVector, limit)
	if err != nil {
		s.logger.Error("ベクトル検索に失敗しました", "collection", params.Collection, "error", err)
		return nil
	}

	// ストアの並列配列をMatchに詰め替える。長さの不一致は形状エラー
	if len(result.Metadatas) != len(result.Documents) || len(result.Metadatas) != len(result.Distances) {
		s.logger.Error("ストアの応答形状が不正です",
			"metadatas", len(result.Metadatas),
			"documents", len(result.Documents),
			"distances", len(result.Distances),
		)
		return nil
	}

	// ストアは距離の昇順を保証する（SQLのORDER BY）ため並べ替えない
	matches := make([]Match, 0, len(result.Documents))
	for i := range result.Documents {
		matches = append(matches, Match{
			File:       result.Metadatas[i].File,
			LineNumber: result.Metadatas[i].LineNumber,
			Content:    result.Documents[i],
			Distance:   result.Distances[i],
		})
	}
	return matches
}
