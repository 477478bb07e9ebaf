package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgvector "github.com/pgvector/pgvector-go"

	"github.com/jinford/code-search/internal/core/indexing"
	"github.com/jinford/code-search/internal/core/search"
)

var (
	// ErrCollectionNotFound は存在しないコレクションへの問い合わせエラー
	ErrCollectionNotFound = errors.New("collection not found")

	// ErrDimensionMismatch はコレクションの次元と異なるベクトルを扱おうとした場合のエラー
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
)

// CollectionStore は PostgreSQL + pgvector によるベクトルコレクションの実装。
// indexing.Repository と search.Repository の両方を満たす
type CollectionStore struct {
	pool *pgxpool.Pool
}

// NewCollectionStore は新しい CollectionStore を返す
func NewCollectionStore(pool *pgxpool.Pool) *CollectionStore {
	return &CollectionStore{pool: pool}
}

var (
	_ indexing.Repository = (*CollectionStore)(nil)
	_ search.Repository   = (*CollectionStore)(nil)
)

// EnsureCollection はコレクションが存在しなければ作成する（冪等）
func (s *CollectionStore) EnsureCollection(ctx context.Context, name string) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO collections (id, name) VALUES ($1, $2) ON CONFLICT (name) DO NOTHING`,
		uuid.New(), name,
	)
	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}
	return nil
}

type collectionRow struct {
	ID        uuid.UUID
	Dimension int
}

func (s *CollectionStore) getCollection(ctx context.Context, name string) (*collectionRow, error) {
	var row collectionRow
	err := s.pool.QueryRow(ctx,
		`SELECT id, dimension FROM collections WHERE name = $1`, name,
	).Scan(&row.ID, &row.Dimension)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrCollectionNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get collection: %w", err)
	}
	return &row, nil
}

// AddEntries は並列配列をコレクションにupsertする。
// コレクションの次元は最初の書き込みで確定し、以後は同じ次元のみ受け付ける
func (s *CollectionStore) AddEntries(ctx context.Context, collection string, ids []string, embeddings [][]float32, metadatas []indexing.EntryMetadata, documents []string) error {
	if len(ids) == 0 {
		return nil
	}

	col, err := s.getCollection(ctx, collection)
	if err != nil {
		return err
	}

	dimension := len(embeddings[0])
	for i, emb := range embeddings {
		if len(emb) != dimension {
			return fmt.Errorf("%w: embedding %d has %d dimensions, expected %d", ErrDimensionMismatch, i, len(emb), dimension)
		}
	}
	if col.Dimension != 0 && col.Dimension != dimension {
		return fmt.Errorf("%w: collection %q expects %d dimensions, got %d", ErrDimensionMismatch, collection, col.Dimension, dimension)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if col.Dimension == 0 {
		if _, err := tx.Exec(ctx,
			`UPDATE collections SET dimension = $1 WHERE id = $2 AND dimension = 0`,
			dimension, col.ID,
		); err != nil {
			return fmt.Errorf("failed to set collection dimension: %w", err)
		}
	}

	batch := &pgx.Batch{}
	for i := range ids {
		metadata, err := json.Marshal(metadatas[i])
		if err != nil {
			return fmt.Errorf("failed to encode metadata: %w", err)
		}
		batch.Queue(
			`INSERT INTO collection_entries (collection_id, id, embedding, metadata, document)
			 VALUES ($1, $2, $3, $4, $5)
			 ON CONFLICT (collection_id, id)
			 DO UPDATE SET embedding = EXCLUDED.embedding, metadata = EXCLUDED.metadata, document = EXCLUDED.document`,
			col.ID, ids[i], pgvector.NewVector(embeddings[i]), metadata, documents[i],
		)
	}

	results := tx.SendBatch(ctx, batch)
	for range ids {
		if _, err := results.Exec(); err != nil {
			results.Close()
			return fmt.Errorf("failed to upsert entry: %w", err)
		}
	}
	if err := results.Close(); err != nil {
		return fmt.Errorf("failed to close batch: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// QueryNearest はコサイン距離の昇順で最大 limit 件を返す。
// 並び順はSQLの ORDER BY によって保証される
func (s *CollectionStore) QueryNearest(ctx context.Context, collection string, queryVector []float32, limit int) (*search.QueryResult, error) {
	col, err := s.getCollection(ctx, collection)
	if err != nil {
		return nil, err
	}
	if col.Dimension != 0 && col.Dimension != len(queryVector) {
		return nil, fmt.Errorf("%w: collection %q expects %d dimensions, query has %d", ErrDimensionMismatch, collection, col.Dimension, len(queryVector))
	}

	rows, err := s.pool.Query(ctx,
		`SELECT metadata, document, embedding <=> $1 AS distance
		 FROM collection_entries
		 WHERE collection_id = $2
		 ORDER BY embedding <=> $1
		 LIMIT $3`,
		pgvector.NewVector(queryVector), col.ID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query nearest entries: %w", err)
	}
	defer rows.Close()

	result := &search.QueryResult{}
	for rows.Next() {
		var (
			metadataJSON []byte
			document     string
			distance     float64
		)
		if err := rows.Scan(&metadataJSON, &document, &distance); err != nil {
			return nil, fmt.Errorf("failed to scan result row: %w", err)
		}

		var metadata search.EntryMetadata
		if err := json.Unmarshal(metadataJSON, &metadata); err != nil {
			return nil, fmt.Errorf("failed to decode metadata: %w", err)
		}

		result.Metadatas = append(result.Metadatas, metadata)
		result.Documents = append(result.Documents, document)
		result.Distances = append(result.Distances, distance)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate result rows: %w", err)
	}

	return result, nil
}
