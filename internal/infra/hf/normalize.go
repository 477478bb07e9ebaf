package hf

import (
	"encoding/json"
	"fmt"
)

// maxNestingDepth は許容するネストの深さ。既知のレスポンス形状は
// 最大で2段ネストした配列を返す
const maxNestingDepth = 3

// NormalizeVector は推論サーバの応答を平坦な数値ベクトルに正規化する。
// サーバの実装によって応答は次のいずれかの形状を取る:
//
//	a. Embeddingの配列そのもの（先頭要素を採用）
//	b. embeddings フィールドに配列を持つオブジェクト（先頭要素を採用）
//	c. 1〜2段余分にネストした配列
//
// いずれの場合も、要素が数値になるまで先頭要素を辿ってネストを剥がす。
// インデックス時とクエリ時で同一の正規化を通すことで、保存済みベクトルと
// クエリベクトルの次元が比較可能であることを保証する
func NormalizeVector(body []byte) ([]float32, error) {
	var raw any
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("%w: not valid JSON: %v", ErrInvalidResponseShape, err)
	}

	// 形状b: embeddings フィールドを持つオブジェクト
	if obj, ok := raw.(map[string]any); ok {
		inner, ok := obj["embeddings"]
		if !ok {
			return nil, fmt.Errorf("%w: object response without embeddings field", ErrInvalidResponseShape)
		}
		raw = inner
	}

	return flatten(raw, maxNestingDepth)
}

// flatten は要素型が数値になるまで先頭要素を辿る
func flatten(v any, depth int) ([]float32, error) {
	arr, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: expected array, got %T", ErrInvalidResponseShape, v)
	}
	if len(arr) == 0 {
		return nil, fmt.Errorf("%w: empty array", ErrInvalidResponseShape)
	}

	switch arr[0].(type) {
	case float64:
		vector := make([]float32, len(arr))
		for i, elem := range arr {
			num, ok := elem.(float64)
			if !ok {
				return nil, fmt.Errorf("%w: mixed element types at index %d", ErrInvalidResponseShape, i)
			}
			vector[i] = float32(num)
		}
		return vector, nil
	case []any:
		if depth <= 0 {
			return nil, fmt.Errorf("%w: nesting deeper than %d levels", ErrInvalidResponseShape, maxNestingDepth)
		}
		return flatten(arr[0], depth-1)
	default:
		return nil, fmt.Errorf("%w: element type %T is neither number nor array", ErrInvalidResponseShape, arr[0])
	}
}
