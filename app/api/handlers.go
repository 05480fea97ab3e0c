package api

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lysyi3m/news-digest/app/database"
	"github.com/lysyi3m/news-digest/app/subscription"
)

func NewHandler(subscriptions SubscriptionServiceInterface, articleRepo database.ArticleRepository,
	subscriberRepo database.SubscriberRepository, digestLogRepo database.DigestLogRepository,
	version string) *Handler {
	return &Handler{
		subscriptions:  subscriptions,
		articleRepo:    articleRepo,
		subscriberRepo: subscriberRepo,
		digestLogRepo:  digestLogRepo,
		version:        version,
	}
}

func (h *Handler) Subscribe(c *gin.Context) {
	var req subscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid email address"})
		return
	}

	outcome, err := h.subscriptions.Subscribe(c.Request.Context(), req.Email)
	switch {
	case errors.Is(err, subscription.ErrInvalidEmail):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid email address"})
		return
	case errors.Is(err, subscription.ErrAlreadySubscribed):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email already subscribed"})
		return
	case err != nil:
		slog.Error("Database error", "operation", "subscribe", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to subscribe"})
		return
	}

	if outcome == subscription.OutcomeReactivated {
		c.JSON(http.StatusOK, gin.H{"message": "Subscription reactivated"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Successfully subscribed"})
}

func (h *Handler) Unsubscribe(c *gin.Context) {
	var req unsubscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Subscriber ID required"})
		return
	}

	err := h.subscriptions.Unsubscribe(c.Request.Context(), req.ID)
	switch {
	case errors.Is(err, subscription.ErrMissingID):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Subscriber ID required"})
		return
	case errors.Is(err, subscription.ErrSubscriberNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Subscriber not found"})
		return
	case err != nil:
		slog.Error("Database error", "operation", "unsubscribe", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to unsubscribe"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Successfully unsubscribed"})
}

func (h *Handler) GetHealth(c *gin.Context) {
	ctx := c.Request.Context()

	health := map[string]interface{}{
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
		"version":   h.version,
	}

	if articleCount, err := h.articleRepo.GetArticleCount(ctx); err == nil {
		health["articles"] = articleCount
	}

	if subscriberCount, err := h.subscriberRepo.GetActiveCount(ctx); err == nil {
		health["active_subscribers"] = subscriberCount
	}

	c.JSON(http.StatusOK, health)
}

func (h *Handler) GetStats(c *gin.Context) {
	ctx := c.Request.Context()

	articleCount, err := h.articleRepo.GetArticleCount(ctx)
	if err != nil {
		slog.Error("Database error", "operation", "get_article_count", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	subscriberCount, err := h.subscriberRepo.GetActiveCount(ctx)
	if err != nil {
		slog.Error("Database error", "operation", "get_active_count", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	latest, err := h.digestLogRepo.GetLatest(ctx)
	if err != nil {
		slog.Error("Database error", "operation", "get_latest_digest", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	stats := gin.H{
		"articles":           articleCount,
		"active_subscribers": subscriberCount,
		"last_digest":        nil,
	}

	if latest != nil {
		stats["last_digest"] = gin.H{
			"sent_at":          latest.SentAt.In(time.Local).Format(time.RFC3339),
			"article_count":    latest.ArticleCount,
			"subscriber_count": latest.SubscriberCount,
		}
	}

	c.JSON(http.StatusOK, stats)
}
