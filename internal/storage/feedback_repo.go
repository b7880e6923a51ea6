package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// FeedbackRepo stores answer ratings.
type FeedbackRepo struct {
	db *sql.DB
}

// NewFeedbackRepo creates a new FeedbackRepo.
func NewFeedbackRepo(db *sql.DB) *FeedbackRepo {
	return &FeedbackRepo{db: db}
}

// Save persists one rating and returns its id. Rating must be -1, 0 or 1;
// the CHECK constraint rejects anything else.
func (r *FeedbackRepo) Save(ctx context.Context, questionID string, rating int, comment string) (string, error) {
	id := "fb_" + uuid.NewString()
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO feedback (id, question_id, rating, comment, created_at) VALUES (?, ?, ?, ?, ?)",
		id, questionID, rating, comment, time.Now().UTC(),
	)
	if err != nil {
		return "", fmt.Errorf("failed to save feedback: %w", err)
	}
	return id, nil
}

// List returns all stored ratings, most recent first.
func (r *FeedbackRepo) List(ctx context.Context) ([]FeedbackRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, question_id, rating, COALESCE(comment, ''), created_at FROM feedback ORDER BY created_at DESC",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query feedback: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var records []FeedbackRecord
	for rows.Next() {
		var rec FeedbackRecord
		if err := rows.Scan(&rec.ID, &rec.QuestionID, &rec.Rating, &rec.Comment, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan feedback row: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate feedback: %w", err)
	}

	return records, nil
}
