package subscription

import (
	"context"
	"errors"
	"testing"

	"github.com/lysyi3m/news-digest/app/database"
)

type mockSubscriberRepo struct {
	byID    map[string]*database.Subscriber
	created int
	updated int
	err     error
}

func newMockSubscriberRepo(subscribers ...database.Subscriber) *mockSubscriberRepo {
	repo := &mockSubscriberRepo{byID: make(map[string]*database.Subscriber)}
	for i := range subscribers {
		repo.byID[subscribers[i].ID] = &subscribers[i]
	}
	return repo
}

func (m *mockSubscriberRepo) Create(ctx context.Context, email string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.created++
	id := "new-id"
	m.byID[id] = &database.Subscriber{ID: id, Email: email, IsActive: true}
	return id, nil
}

func (m *mockSubscriberRepo) FindByEmail(ctx context.Context, email string) (*database.Subscriber, error) {
	if m.err != nil {
		return nil, m.err
	}
	for _, subscriber := range m.byID {
		if subscriber.Email == email {
			copied := *subscriber
			return &copied, nil
		}
	}
	return nil, nil
}

func (m *mockSubscriberRepo) SetActive(ctx context.Context, id string, active bool) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	subscriber, ok := m.byID[id]
	if !ok {
		return false, nil
	}
	m.updated++
	subscriber.IsActive = active
	return true, nil
}

func (m *mockSubscriberRepo) ListActive(ctx context.Context) ([]database.Subscriber, error) {
	var active []database.Subscriber
	for _, subscriber := range m.byID {
		if subscriber.IsActive {
			active = append(active, *subscriber)
		}
	}
	return active, nil
}

func (m *mockSubscriberRepo) GetActiveCount(ctx context.Context) (int, error) {
	active, _ := m.ListActive(ctx)
	return len(active), nil
}

func TestSubscribeCreatesSubscriber(t *testing.T) {
	repo := newMockSubscriberRepo()
	service := NewService(repo)

	outcome, err := service.Subscribe(context.Background(), "  Reader@Example.COM ")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if outcome != OutcomeSubscribed {
		t.Errorf("Expected outcome %s, got %s", OutcomeSubscribed, outcome)
	}
	if repo.byID["new-id"].Email != "reader@example.com" {
		t.Errorf("Expected normalized email, got %s", repo.byID["new-id"].Email)
	}
}

func TestSubscribeInvalidEmail(t *testing.T) {
	repo := newMockSubscriberRepo()
	service := NewService(repo)

	for _, email := range []string{"", "   ", "not-an-email"} {
		_, err := service.Subscribe(context.Background(), email)
		if !errors.Is(err, ErrInvalidEmail) {
			t.Errorf("Expected ErrInvalidEmail for %q, got %v", email, err)
		}
	}
	if repo.created != 0 {
		t.Errorf("Expected no subscriber to be created, got %d", repo.created)
	}
}

func TestSubscribeAlreadyActive(t *testing.T) {
	repo := newMockSubscriberRepo(database.Subscriber{ID: "s1", Email: "reader@example.com", IsActive: true})
	service := NewService(repo)

	_, err := service.Subscribe(context.Background(), "READER@example.com")
	if !errors.Is(err, ErrAlreadySubscribed) {
		t.Fatalf("Expected ErrAlreadySubscribed, got %v", err)
	}
	if repo.created != 0 || repo.updated != 0 {
		t.Errorf("Expected no mutation, got created=%d updated=%d", repo.created, repo.updated)
	}
}

func TestSubscribeReactivates(t *testing.T) {
	repo := newMockSubscriberRepo(database.Subscriber{ID: "s1", Email: "reader@example.com", IsActive: false})
	service := NewService(repo)

	outcome, err := service.Subscribe(context.Background(), "reader@example.com")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if outcome != OutcomeReactivated {
		t.Errorf("Expected outcome %s, got %s", OutcomeReactivated, outcome)
	}
	if !repo.byID["s1"].IsActive {
		t.Error("Expected subscriber to be active again")
	}
	if repo.created != 0 {
		t.Errorf("Expected no new row, got %d", repo.created)
	}
}

func TestSubscribeStoreError(t *testing.T) {
	repo := newMockSubscriberRepo()
	repo.err = errors.New("disk I/O error")

	_, err := NewService(repo).Subscribe(context.Background(), "reader@example.com")
	if err == nil || errors.Is(err, ErrInvalidEmail) || errors.Is(err, ErrAlreadySubscribed) {
		t.Errorf("Expected wrapped store error, got %v", err)
	}
}

func TestUnsubscribe(t *testing.T) {
	repo := newMockSubscriberRepo(database.Subscriber{ID: "s1", Email: "reader@example.com", IsActive: true})
	service := NewService(repo)

	if err := service.Unsubscribe(context.Background(), "s1"); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if repo.byID["s1"].IsActive {
		t.Error("Expected subscriber to be inactive")
	}

	// Unsubscribing twice is harmless
	if err := service.Unsubscribe(context.Background(), "s1"); err != nil {
		t.Errorf("Expected no error on repeat, got: %v", err)
	}

	if err := service.Unsubscribe(context.Background(), ""); !errors.Is(err, ErrMissingID) {
		t.Errorf("Expected ErrMissingID, got %v", err)
	}
	if err := service.Unsubscribe(context.Background(), "missing"); !errors.Is(err, ErrSubscriberNotFound) {
		t.Errorf("Expected ErrSubscriberNotFound, got %v", err)
	}
}

func TestNormalizeEmail(t *testing.T) {
	tests := map[string]string{
		"Reader@Example.com":    "reader@example.com",
		"  spaced@example.com ": "spaced@example.com",
		"already@example.com":   "already@example.com",
		"Straße@Example.com":    "straße@example.com",
		"ﬁnn@example.com":       "ﬁnn@example.com",
	}

	for input, expected := range tests {
		if got := NormalizeEmail(input); got != expected {
			t.Errorf("NormalizeEmail(%q): expected %q, got %q", input, expected, got)
		}
	}
}
