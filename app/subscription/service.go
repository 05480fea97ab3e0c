package subscription

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/lysyi3m/news-digest/app/database"
)

var (
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrAlreadySubscribed  = errors.New("email already subscribed")
	ErrMissingID          = errors.New("subscriber id required")
	ErrSubscriberNotFound = errors.New("subscriber not found")
)

type Outcome string

const (
	OutcomeSubscribed  Outcome = "subscribed"
	OutcomeReactivated Outcome = "reactivated"
)

type Service struct {
	subscriberRepo database.SubscriberRepository
}

func NewService(subscriberRepo database.SubscriberRepository) *Service {
	return &Service{
		subscriberRepo: subscriberRepo,
	}
}

// NormalizeEmail trims and lowercases an address. Characters such as ß are
// kept as written.
func NormalizeEmail(email string) string {
	return cases.Lower(language.Und).String(strings.TrimSpace(email))
}

func (s *Service) Subscribe(ctx context.Context, email string) (Outcome, error) {
	email = NormalizeEmail(email)
	if !strings.Contains(email, "@") {
		return "", ErrInvalidEmail
	}

	existing, err := s.subscriberRepo.FindByEmail(ctx, email)
	if err != nil {
		return "", fmt.Errorf("failed to look up subscriber: %w", err)
	}

	if existing != nil {
		if existing.IsActive {
			return "", ErrAlreadySubscribed
		}

		if _, err := s.subscriberRepo.SetActive(ctx, existing.ID, true); err != nil {
			return "", fmt.Errorf("failed to reactivate subscriber: %w", err)
		}

		slog.Info("Subscription reactivated", "subscriber", existing.ID)
		return OutcomeReactivated, nil
	}

	id, err := s.subscriberRepo.Create(ctx, email)
	if err != nil {
		return "", fmt.Errorf("failed to create subscriber: %w", err)
	}

	slog.Info("Subscriber created", "subscriber", id)
	return OutcomeSubscribed, nil
}

func (s *Service) Unsubscribe(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return ErrMissingID
	}

	found, err := s.subscriberRepo.SetActive(ctx, id, false)
	if err != nil {
		return fmt.Errorf("failed to deactivate subscriber: %w", err)
	}
	if !found {
		return ErrSubscriberNotFound
	}

	slog.Info("Subscriber deactivated", "subscriber", id)
	return nil
}
