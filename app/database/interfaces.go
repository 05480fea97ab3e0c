package database

import (
	"context"
	"time"
)

type ArticleRepository interface {
	BatchExists(ctx context.Context, guids []string) (map[string]bool, error)
	InsertMany(ctx context.Context, articles []Article) (int, error)
	GetCreatedSince(ctx context.Context, since time.Time, limit int) ([]Article, error)
	GetArticleCount(ctx context.Context) (int, error)
}

type SubscriberRepository interface {
	Create(ctx context.Context, email string) (string, error)
	FindByEmail(ctx context.Context, email string) (*Subscriber, error)
	SetActive(ctx context.Context, id string, active bool) (bool, error)
	ListActive(ctx context.Context) ([]Subscriber, error)
	GetActiveCount(ctx context.Context) (int, error)
}

type DigestLogRepository interface {
	Insert(ctx context.Context, log DigestLog) error
	GetLatest(ctx context.Context) (*DigestLog, error)
}
