package tokenizer

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"

	"github.com/jinford/code-search/internal/core/indexing"
)

// Counter はtiktokenによるトークンカウンタ。
// Embeddingモデルの入力長ガードに使用する
type Counter struct {
	encoding *tiktoken.Tiktoken
}

// NewCounter は新しいCounterを作成する
// cl100k_baseエンコーディングを使用する
func NewCounter() (*Counter, error) {
	encoding, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		return nil, fmt.Errorf("failed to get tiktoken encoding: %w", err)
	}

	return &Counter{
		encoding: encoding,
	}, nil
}

// CountTokens はテキストのトークン数をカウントする
func (c *Counter) CountTokens(text string) int {
	if c.encoding == nil {
		return 0
	}
	tokens := c.encoding.Encode(text, nil, nil)
	return len(tokens)
}

var _ indexing.TokenCounter = (*Counter)(nil)
