package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config はアプリケーション全体の設定を保持します
type Config struct {
	// Database設定
	Database DatabaseConfig

	// Embedding設定
	Embedding EmbeddingConfig

	// インデックス設定
	Index IndexConfig

	// 検索設定
	Search SearchConfig

	// Git設定
	Git GitConfig
}

// DatabaseConfig はデータベース接続設定
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// EmbeddingConfig はEmbedding生成の設定
// Providerは "hf"（ローカル推論サーバ）または "openai" を指定する
type EmbeddingConfig struct {
	Provider string

	// HF推論サーバ設定（Provider=hf）
	HFBaseURL string
	HFModel   string

	// OpenAI設定（Provider=openai）
	OpenAIAPIKey    string
	OpenAIModel     string
	OpenAIDimension int
}

// IndexConfig はインデックス化の設定
type IndexConfig struct {
	// Dir はデフォルトのインデックス対象ディレクトリ
	Dir string

	// Extensions は対象ファイルの拡張子ホワイトリスト
	Extensions []string

	// Collection はデフォルトのコレクション名
	Collection string

	// MaxLineTokens は1行あたりの最大トークン数（超過行はスキップ）
	MaxLineTokens int
}

// SearchConfig は検索の設定
type SearchConfig struct {
	// Limit は検索結果のデフォルト件数
	Limit int
}

// GitConfig はGit操作設定
type GitConfig struct {
	CloneDir string
}

// DefaultExtensions はインデックス対象のデフォルト拡張子
var DefaultExtensions = []string{".go", ".kt", ".java", ".py", ".js", ".ts", ".rs"}

// Load は環境変数または.envファイルから設定を読み込みます
func Load(envFilePath string) (*Config, error) {
	// .envファイルが存在する場合は読み込む
	if envFilePath != "" {
		if err := godotenv.Load(envFilePath); err != nil {
			// ファイルが存在しない場合はエラーとしない（環境変数のみで動作可能）
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to load .env file: %w", err)
			}
		}
	}

	cfg := &Config{
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "codesearch"),
			Password: getEnv("DB_PASSWORD", ""),
			DBName:   getEnv("DB_NAME", "codesearch"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Embedding: EmbeddingConfig{
			Provider:        getEnv("EMBEDDING_PROVIDER", "hf"),
			HFBaseURL:       getEnv("HF_BASE_URL", "http://localhost:8080"),
			HFModel:         getEnv("HF_EMBEDDING_MODEL", "sentence-transformers/all-MiniLM-L6-v2"),
			OpenAIAPIKey:    getEnv("OPENAI_API_KEY", ""),
			OpenAIModel:     getEnv("OPENAI_EMBEDDING_MODEL", "text-embedding-3-small"),
			OpenAIDimension: getEnvAsInt("OPENAI_EMBEDDING_DIMENSION", 1536),
		},
		Index: IndexConfig{
			Dir:           getEnv("INDEX_DIR", "."),
			Extensions:    getEnvAsList("INDEX_EXTENSIONS", DefaultExtensions),
			Collection:    getEnv("INDEX_COLLECTION", "code_lines"),
			MaxLineTokens: getEnvAsInt("INDEX_MAX_LINE_TOKENS", 512),
		},
		Search: SearchConfig{
			Limit: getEnvAsInt("SEARCH_LIMIT", 5),
		},
		Git: GitConfig{
			CloneDir: getEnv("GIT_CLONE_DIR", "/var/lib/code-search/repos"),
		},
	}

	return cfg, nil
}

// getEnv は環境変数を取得し、存在しない場合はデフォルト値を返します
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt は環境変数を整数として取得します
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsList は環境変数をカンマ区切りリストとして取得します
func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	parts := strings.Split(valueStr, ",")
	values := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			values = append(values, trimmed)
		}
	}
	if len(values) == 0 {
		return defaultValue
	}
	return values
}
