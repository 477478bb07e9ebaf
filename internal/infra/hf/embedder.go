package hf

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jinford/code-search/internal/core/indexing"
	"github.com/jinford/code-search/internal/core/search"
)

const (
	// DefaultModel はデフォルトで使用するEmbeddingモデル
	DefaultModel = "sentence-transformers/all-MiniLM-L6-v2"

	// DefaultTimeout はAPI呼び出しのデフォルトタイムアウト
	DefaultTimeout = 60 * time.Second

	// featureExtractionPath は推論サーバのfeature-extractionパイプラインのパス
	featureExtractionPath = "/pipeline/feature-extraction/"

	// maxErrorBodyBytes はエラーメッセージに含めるレスポンスボディの上限
	maxErrorBodyBytes = 512
)

var (
	// ErrUnexpectedStatus は2xx以外のHTTPステータスを受け取った場合のエラー
	ErrUnexpectedStatus = errors.New("unexpected HTTP status from inference server")

	// ErrInvalidResponseShape はレスポンスを平坦なベクトルに正規化できない場合のエラー
	ErrInvalidResponseShape = errors.New("invalid embedding response shape")
)

// Embedder はローカル推論サーバのfeature-extractionエンドポイントを使って
// テキストをベクトルに変換する。リクエストは1テキストずつ順次送信し、
// 推論サーバへの同時負荷を1リクエストに抑える
type Embedder struct {
	baseURL    string
	model      string
	httpClient *http.Client
}

type embedderOptions struct {
	model      string
	httpClient *http.Client
}

// EmbedderOption は Embedder のオプション設定
type EmbedderOption func(*embedderOptions)

// WithModel はモデル名を上書きする
func WithModel(model string) EmbedderOption {
	return func(o *embedderOptions) {
		o.model = model
	}
}

// WithHTTPClient はHTTPクライアントを差し替える
func WithHTTPClient(client *http.Client) EmbedderOption {
	return func(o *embedderOptions) {
		o.httpClient = client
	}
}

// NewEmbedder は新しい Embedder を作成する
func NewEmbedder(baseURL string, opts ...EmbedderOption) *Embedder {
	options := embedderOptions{
		model:      DefaultModel,
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(&options)
	}

	return &Embedder{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		model:      options.model,
		httpClient: options.httpClient,
	}
}

// Embed は単一テキストのEmbeddingを生成する
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	body, err := json.Marshal(map[string]any{
		// 1件でも1要素のバッチとして送る
		"inputs": []string{text},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	url := e.baseURL + featureExtractionPath + e.model
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("inference request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet := respBody
		if len(snippet) > maxErrorBodyBytes {
			snippet = snippet[:maxErrorBodyBytes]
		}
		return nil, fmt.Errorf("%w: %d %s: %s", ErrUnexpectedStatus, resp.StatusCode, http.StatusText(resp.StatusCode), snippet)
	}

	vector, err := NormalizeVector(respBody)
	if err != nil {
		return nil, err
	}
	return vector, nil
}

// EmbedAll は複数テキストのEmbeddingを順次生成する。
// 1件でも失敗した場合は残りを処理せずエラーを返す（リトライなし・部分結果なし）
func (e *Embedder) EmbedAll(ctx context.Context, texts []string) ([][]float32, error) {
	embeddings := make([][]float32, 0, len(texts))
	for i, text := range texts {
		vector, err := e.Embed(ctx, text)
		if err != nil {
			return nil, fmt.Errorf("failed to embed text %d of %d: %w", i+1, len(texts), err)
		}
		embeddings = append(embeddings, vector)
	}
	return embeddings, nil
}

// ModelName はモデル名を返す
func (e *Embedder) ModelName() string {
	return e.model
}

// インターフェース実装の確認
var (
	_ indexing.Embedder = (*Embedder)(nil)
	_ search.Embedder   = (*Embedder)(nil)
)
