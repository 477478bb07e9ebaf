package indexing

import (
	"errors"
	"fmt"
)

// ErrLengthMismatch は並列配列の長さが揃っていない場合のエラー
var ErrLengthMismatch = errors.New("parallel array length mismatch")

// ValidateParallel は ids/embeddings/metadatas/documents の長さが
// すべて等しいことを検証する。不一致の場合は各配列の長さを含む
// 診断メッセージ付きのエラーを返す
func ValidateParallel(ids, embeddings, metadatas, documents int) error {
	if ids == embeddings && ids == metadatas && ids == documents {
		return nil
	}
	return fmt.Errorf("%w: ids=%d embeddings=%d metadatas=%d documents=%d",
		ErrLengthMismatch, ids, embeddings, metadatas, documents)
}
