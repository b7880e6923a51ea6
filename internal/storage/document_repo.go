package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// DocumentRepo tracks which source files have been indexed and with what
// content hash, so re-indexing can skip unchanged files.
type DocumentRepo struct {
	db *sql.DB
}

// NewDocumentRepo creates a new DocumentRepo.
func NewDocumentRepo(db *sql.DB) *DocumentRepo {
	return &DocumentRepo{db: db}
}

// Hash returns the stored content hash for source, or "" if the source has
// never been indexed.
func (r *DocumentRepo) Hash(ctx context.Context, source string) (string, error) {
	var hash string
	err := r.db.QueryRowContext(ctx,
		"SELECT hash FROM documents WHERE source = ?", source,
	).Scan(&hash)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to query document: %w", err)
	}
	return hash, nil
}

// Upsert records (or refreshes) the index state of one source file.
func (r *DocumentRepo) Upsert(ctx context.Context, rec *DocumentRecord) error {
	if rec.ID == "" {
		rec.ID = "doc_" + uuid.NewString()
	}
	if rec.IndexedAt.IsZero() {
		rec.IndexedAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO documents (id, source, category, hash, chunk_count, indexed_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(source) DO UPDATE SET
		   category = excluded.category,
		   hash = excluded.hash,
		   chunk_count = excluded.chunk_count,
		   indexed_at = excluded.indexed_at`,
		rec.ID, rec.Source, rec.Category, rec.Hash, rec.ChunkCount, rec.IndexedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert document: %w", err)
	}
	return nil
}

// List returns all indexed documents ordered by source name.
func (r *DocumentRepo) List(ctx context.Context) ([]DocumentRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, source, category, hash, chunk_count, indexed_at FROM documents ORDER BY source ASC",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query documents: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var records []DocumentRecord
	for rows.Next() {
		var rec DocumentRecord
		if err := rows.Scan(&rec.ID, &rec.Source, &rec.Category, &rec.Hash, &rec.ChunkCount, &rec.IndexedAt); err != nil {
			return nil, fmt.Errorf("failed to scan document row: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate documents: %w", err)
	}

	return records, nil
}

// Delete removes the index record for source.
func (r *DocumentRepo) Delete(ctx context.Context, source string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM documents WHERE source = ?", source)
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
