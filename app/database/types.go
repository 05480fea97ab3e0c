package database

import (
	"time"
)

type Article struct {
	ID          int64
	GUID        string
	Title       string
	Link        string
	PublishedAt time.Time
	Source      string
	Content     string
	Summary     string // Empty when the article was stored without a summary
	CreatedAt   time.Time
}

type Subscriber struct {
	ID           string // UUID v4
	Email        string // Lowercase-normalized
	IsActive     bool
	SubscribedAt time.Time
}

type DigestLog struct {
	ID              int64
	SentAt          time.Time
	ArticleCount    int
	SubscriberCount int
}
