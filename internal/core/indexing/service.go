package indexing

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jinford/code-search/internal/core/extract"
)

// Extractor はディレクトリから行レコードを抽出するインターフェース
type Extractor interface {
	ExtractDir(dir string) []extract.LineRecord
}

// IndexService はインデックス化のユースケースを提供する
type IndexService struct {
	repository    Repository
	extractor     Extractor
	embedder      Embedder
	tokenCounter  TokenCounter
	maxLineTokens int
	logger        *slog.Logger
}

type indexServiceOptions struct {
	tokenCounter  TokenCounter
	maxLineTokens int
	logger        *slog.Logger
}

// IndexServiceOption は IndexService のオプション設定
type IndexServiceOption func(*indexServiceOptions)

// WithIndexLogger は IndexService にロガーを設定する
func WithIndexLogger(logger *slog.Logger) IndexServiceOption {
	return func(o *indexServiceOptions) {
		o.logger = logger
	}
}

// WithTokenGuard は1行あたりの最大トークン数の検査を有効にする。
// Embeddingモデルの入力長上限を超える行はスキップされる
func WithTokenGuard(counter TokenCounter, maxLineTokens int) IndexServiceOption {
	return func(o *indexServiceOptions) {
		o.tokenCounter = counter
		o.maxLineTokens = maxLineTokens
	}
}

// NewIndexService は新しいIndexServiceを作成する
func NewIndexService(repo Repository, extractor Extractor, embedder Embedder, opts ...IndexServiceOption) *IndexService {
	options := indexServiceOptions{
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(&options)
	}
	if options.logger == nil {
		options.logger = slog.Default()
	}

	return &IndexService{
		repository:    repo,
		extractor:     extractor,
		embedder:      embedder,
		tokenCounter:  options.tokenCounter,
		maxLineTokens: options.maxLineTokens,
		logger:        options.logger,
	}
}

// IndexDirectory はディレクトリ配下の行をインデックス化する。
// 抽出結果が空の場合は何も書き込まずに正常終了する
func (s *IndexService) IndexDirectory(ctx context.Context, params IndexParams) (*IndexResult, error) {
	startTime := time.Now()

	records := s.extractor.ExtractDir(params.Dir)

	skipped := 0
	if s.tokenCounter != nil && s.maxLineTokens > 0 {
		kept := records[:0]
		for _, rec := range records {
			if tokens := s.tokenCounter.CountTokens(rec.Content); tokens > s.maxLineTokens {
				s.logger.Warn("トークン数上限を超える行をスキップします",
					"file", rec.File, "line", rec.LineNumber, "tokens", tokens)
				skipped++
				continue
			}
			kept = append(kept, rec)
		}
		records = kept
	}

	if len(records) == 0 {
		s.logger.Info("インデックス対象の行がありません", "dir", params.Dir)
		return &IndexResult{
			Collection:   params.Collection,
			SkippedLines: skipped,
			Duration:     time.Since(startTime),
		}, nil
	}

	s.logger.Info("Embeddingを生成します", "lines", len(records), "model", s.embedder.ModelName())

	texts := make([]string, len(records))
	for i, rec := range records {
		texts[i] = rec.Content
	}

	embeddings, err := s.embedder.EmbedAll(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("failed to embed lines: %w", err)
	}

	ids := make([]string, len(records))
	metadatas := make([]EntryMetadata, len(records))
	documents := make([]string, len(records))
	for i, rec := range records {
		ids[i] = EntryID(rec.File, rec.LineNumber, rec.Content)
		metadatas[i] = EntryMetadata{
			File:       rec.File,
			LineNumber: rec.LineNumber,
			Language:   rec.Language,
		}
		documents[i] = rec.Content
	}

	if err := ValidateParallel(len(ids), len(embeddings), len(metadatas), len(documents)); err != nil {
		return nil, err
	}

	if err := s.repository.EnsureCollection(ctx, params.Collection); err != nil {
		return nil, fmt.Errorf("failed to ensure collection %q: %w", params.Collection, err)
	}

	if err := s.repository.AddEntries(ctx, params.Collection, ids, embeddings, metadatas, documents); err != nil {
		return nil, fmt.Errorf("failed to add entries to collection %q: %w", params.Collection, err)
	}

	result := &IndexResult{
		Collection:   params.Collection,
		IndexedLines: len(records),
		SkippedLines: skipped,
		Duration:     time.Since(startTime),
	}

	s.logger.Info("インデックス化が完了しました",
		"collection", result.Collection,
		"lines", result.IndexedLines,
		"skipped", result.SkippedLines,
		"duration", result.Duration,
	)

	return result, nil
}
