package api

import (
	"context"

	"github.com/lysyi3m/news-digest/app/database"
	"github.com/lysyi3m/news-digest/app/subscription"
)

type SubscriptionServiceInterface interface {
	Subscribe(ctx context.Context, email string) (subscription.Outcome, error)
	Unsubscribe(ctx context.Context, id string) error
}

var _ SubscriptionServiceInterface = (*subscription.Service)(nil)

type Handler struct {
	subscriptions  SubscriptionServiceInterface
	articleRepo    database.ArticleRepository
	subscriberRepo database.SubscriberRepository
	digestLogRepo  database.DigestLogRepository
	version        string
}

type subscribeRequest struct {
	Email string `json:"email"`
}

type unsubscribeRequest struct {
	ID string `json:"id"`
}
