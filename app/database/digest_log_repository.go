package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

var _ DigestLogRepository = (*DigestLogRepo)(nil)

type DigestLogRepo struct {
	db *DB
}

func NewDigestLogRepository(db *DB) *DigestLogRepo {
	return &DigestLogRepo{db: db}
}

func (r *DigestLogRepo) Insert(ctx context.Context, log DigestLog) error {
	sentAt := log.SentAt
	if sentAt.IsZero() {
		sentAt = time.Now()
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO digest_logs (sent_at, article_count, subscriber_count)
		VALUES (?, ?, ?)
	`, sentAt.UTC().Truncate(time.Second), log.ArticleCount, log.SubscriberCount)
	if err != nil {
		return fmt.Errorf("failed to insert digest log: %w", err)
	}

	return nil
}

// GetLatest returns nil when no digest has been sent yet
func (r *DigestLogRepo) GetLatest(ctx context.Context) (*DigestLog, error) {
	var log DigestLog
	err := r.db.QueryRowContext(ctx, `
		SELECT id, sent_at, article_count, subscriber_count
		FROM digest_logs
		ORDER BY id DESC
		LIMIT 1
	`).Scan(&log.ID, &log.SentAt, &log.ArticleCount, &log.SubscriberCount)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest digest log: %w", err)
	}

	return &log, nil
}
