package interfaces

import (
	"context"
	"errors"

	"github.com/stockbrief/stockbrief/internal/models"
)

// ErrSubscriberNotFound is returned when a lookup by ID or name finds
// no subscriber.
var ErrSubscriberNotFound = errors.New("subscriber not found")

// SubscriberStorage persists subscribers and their watchlists.
type SubscriberStorage interface {
	Get(ctx context.Context, id string) (*models.Subscriber, error)
	GetByName(ctx context.Context, name string) (*models.Subscriber, error)
	List(ctx context.Context) ([]*models.Subscriber, error)
	ListActive(ctx context.Context) ([]*models.Subscriber, error)
	Save(ctx context.Context, sub *models.Subscriber) error
	SetActive(ctx context.Context, id string, active bool) error
	Delete(ctx context.Context, id string) error
}
