package badger

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"

	"github.com/stockbrief/stockbrief/internal/common"
	"github.com/stockbrief/stockbrief/internal/interfaces"
	"github.com/stockbrief/stockbrief/internal/models"
)

// SubscriberStorage implements the SubscriberStorage interface for Badger
type SubscriberStorage struct {
	db       *BadgerDB
	logger   arbor.ILogger
	validate *validator.Validate
}

// NewSubscriberStorage creates a new SubscriberStorage instance
func NewSubscriberStorage(db *BadgerDB, logger arbor.ILogger) interfaces.SubscriberStorage {
	return &SubscriberStorage{
		db:       db,
		logger:   logger,
		validate: validator.New(),
	}
}

// Get retrieves a subscriber by ID
func (s *SubscriberStorage) Get(ctx context.Context, id string) (*models.Subscriber, error) {
	var sub models.Subscriber
	err := s.db.Store().Get(id, &sub)
	if err == badgerhold.ErrNotFound {
		return nil, interfaces.ErrSubscriberNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get subscriber: %w", err)
	}
	return &sub, nil
}

// GetByName retrieves a subscriber by display name
func (s *SubscriberStorage) GetByName(ctx context.Context, name string) (*models.Subscriber, error) {
	var subs []models.Subscriber
	err := s.db.Store().Find(&subs, badgerhold.Where("Name").Eq(name))
	if err != nil {
		return nil, fmt.Errorf("failed to find subscriber by name: %w", err)
	}
	if len(subs) == 0 {
		return nil, interfaces.ErrSubscriberNotFound
	}
	return &subs[0], nil
}

// List returns all subscribers ordered by creation time
func (s *SubscriberStorage) List(ctx context.Context) ([]*models.Subscriber, error) {
	var subs []models.Subscriber
	err := s.db.Store().Find(&subs, badgerhold.Where("ID").Ne("").SortBy("CreatedAt"))
	if err != nil {
		return nil, fmt.Errorf("failed to list subscribers: %w", err)
	}

	result := make([]*models.Subscriber, len(subs))
	for i := range subs {
		result[i] = &subs[i]
	}
	return result, nil
}

// ListActive returns all active subscribers ordered by creation time
func (s *SubscriberStorage) ListActive(ctx context.Context) ([]*models.Subscriber, error) {
	var subs []models.Subscriber
	err := s.db.Store().Find(&subs, badgerhold.Where("Active").Eq(true).SortBy("CreatedAt"))
	if err != nil {
		return nil, fmt.Errorf("failed to list active subscribers: %w", err)
	}

	result := make([]*models.Subscriber, len(subs))
	for i := range subs {
		result[i] = &subs[i]
	}
	return result, nil
}

// Save inserts or updates a subscriber, preserving CreatedAt on update.
// A missing ID is filled in; invalid records are rejected before any write.
func (s *SubscriberStorage) Save(ctx context.Context, sub *models.Subscriber) error {
	if err := s.validate.Struct(sub); err != nil {
		return fmt.Errorf("invalid subscriber: %w", err)
	}

	now := time.Now()
	if sub.ID == "" {
		sub.ID = common.NewSubscriberID()
		sub.CreatedAt = now
	}
	sub.UpdatedAt = now

	// Preserve CreatedAt when updating an existing record
	var existing models.Subscriber
	if err := s.db.Store().Get(sub.ID, &existing); err == nil {
		sub.CreatedAt = existing.CreatedAt
	} else if sub.CreatedAt.IsZero() {
		sub.CreatedAt = now
	}

	if err := s.db.Store().Upsert(sub.ID, sub); err != nil {
		return fmt.Errorf("failed to save subscriber: %w", err)
	}

	s.logger.Debug().
		Str("id", sub.ID).
		Str("name", sub.Name).
		Int("assets", len(sub.Assets)).
		Int("industries", len(sub.Industries)).
		Msg("Saved subscriber")

	return nil
}

// SetActive toggles a subscriber's active flag
func (s *SubscriberStorage) SetActive(ctx context.Context, id string, active bool) error {
	sub, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	sub.Active = active
	sub.UpdatedAt = time.Now()

	if err := s.db.Store().Upsert(sub.ID, sub); err != nil {
		return fmt.Errorf("failed to update subscriber: %w", err)
	}

	s.logger.Debug().Str("id", id).Bool("active", active).Msg("Updated subscriber active flag")
	return nil
}

// Delete removes a subscriber
func (s *SubscriberStorage) Delete(ctx context.Context, id string) error {
	err := s.db.Store().Delete(id, &models.Subscriber{})
	if err == badgerhold.ErrNotFound {
		return interfaces.ErrSubscriberNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to delete subscriber: %w", err)
	}
	return nil
}
