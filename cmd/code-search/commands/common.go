package commands

import (
	"context"
	"fmt"

	"github.com/jinford/code-search/internal/core/indexing"
	"github.com/jinford/code-search/internal/infra/hf"
	"github.com/jinford/code-search/internal/infra/openai"
	"github.com/jinford/code-search/internal/infra/postgres"
	"github.com/jinford/code-search/pkg/config"
	"github.com/jinford/code-search/pkg/db"
)

// AppContext はコマンド実行に必要な共通コンテキストを保持する
type AppContext struct {
	Config   *config.Config
	Database *db.DB
	Store    *postgres.CollectionStore
	Embedder indexing.Embedder
}

// NewAppContext は設定ファイルを読み込み、DBに接続して AppContext を作成する
func NewAppContext(ctx context.Context, envFile string) (*AppContext, error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, fmt.Errorf("設定の読み込みに失敗: %w", err)
	}

	database, err := db.New(ctx, db.ConnectionParams{
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		DBName:   cfg.Database.DBName,
		SSLMode:  cfg.Database.SSLMode,
	})
	if err != nil {
		return nil, fmt.Errorf("データベース接続に失敗: %w", err)
	}

	if err := database.Migrate(ctx); err != nil {
		database.Close()
		return nil, fmt.Errorf("スキーマ初期化に失敗: %w", err)
	}

	embedder, err := newEmbedder(cfg)
	if err != nil {
		database.Close()
		return nil, err
	}

	return &AppContext{
		Config:   cfg,
		Database: database,
		Store:    postgres.NewCollectionStore(database.Pool),
		Embedder: embedder,
	}, nil
}

// newEmbedder は設定に応じたEmbeddingプロバイダを作成する
func newEmbedder(cfg *config.Config) (indexing.Embedder, error) {
	switch cfg.Embedding.Provider {
	case "hf":
		return hf.NewEmbedder(
			cfg.Embedding.HFBaseURL,
			hf.WithModel(cfg.Embedding.HFModel),
		), nil
	case "openai":
		if cfg.Embedding.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY が設定されていません")
		}
		return openai.NewEmbedder(
			cfg.Embedding.OpenAIAPIKey,
			openai.WithEmbeddingModel(cfg.Embedding.OpenAIModel),
			openai.WithEmbeddingDimension(cfg.Embedding.OpenAIDimension),
		), nil
	default:
		return nil, fmt.Errorf("不明なEmbeddingプロバイダ: %s", cfg.Embedding.Provider)
	}
}

// Close はAppContextが保持するリソースをクリーンアップする
func (ac *AppContext) Close() {
	if ac.Database != nil {
		ac.Database.Close()
	}
}
