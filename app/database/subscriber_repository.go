package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
)

var _ SubscriberRepository = (*SubscriberRepo)(nil)

// SubscriberRepo handles database operations for subscribers.
// Callers pass emails already normalized; rows are never deleted, only toggled.
type SubscriberRepo struct {
	db *DB
}

func NewSubscriberRepository(db *DB) *SubscriberRepo {
	return &SubscriberRepo{db: db}
}

// Create inserts an active subscriber and returns its generated id
func (r *SubscriberRepo) Create(ctx context.Context, email string) (string, error) {
	id := uuid.NewString()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO subscribers (id, email, is_active, subscribed_at)
		VALUES (?, ?, 1, ?)
	`, id, email, time.Now().UTC().Truncate(time.Second))
	if err != nil {
		return "", fmt.Errorf("failed to create subscriber: %w", err)
	}

	return id, nil
}

// FindByEmail returns nil when no subscriber has the given email
func (r *SubscriberRepo) FindByEmail(ctx context.Context, email string) (*Subscriber, error) {
	var subscriber Subscriber
	err := r.db.QueryRowContext(ctx, `
		SELECT id, email, is_active, subscribed_at
		FROM subscribers
		WHERE email = ?
	`, email).Scan(&subscriber.ID, &subscriber.Email, &subscriber.IsActive, &subscriber.SubscribedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get subscriber by email: %w", err)
	}

	return &subscriber, nil
}

// SetActive toggles the active flag and reports whether the subscriber exists
func (r *SubscriberRepo) SetActive(ctx context.Context, id string, active bool) (bool, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE subscribers
		SET is_active = ?
		WHERE id = ?
	`, active, id)
	if err != nil {
		return false, fmt.Errorf("failed to set subscriber active status: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get affected row count: %w", err)
	}

	return affected > 0, nil
}

// ListActive returns all active subscribers in subscription order
func (r *SubscriberRepo) ListActive(ctx context.Context) ([]Subscriber, error) {
	query, args, err := sq.Select("id", "email", "is_active", "subscribed_at").
		From("subscribers").
		Where(sq.Eq{"is_active": true}).
		OrderBy("subscribed_at", "id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build subscribers query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get active subscribers: %w", err)
	}
	defer rows.Close()

	var subscribers []Subscriber
	for rows.Next() {
		var subscriber Subscriber
		if err := rows.Scan(&subscriber.ID, &subscriber.Email, &subscriber.IsActive, &subscriber.SubscribedAt); err != nil {
			return nil, fmt.Errorf("failed to scan subscriber row: %w", err)
		}
		subscribers = append(subscribers, subscriber)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating subscriber rows: %w", err)
	}

	return subscribers, nil
}

func (r *SubscriberRepo) GetActiveCount(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM subscribers WHERE is_active = 1").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get active subscriber count: %w", err)
	}
	return count, nil
}
