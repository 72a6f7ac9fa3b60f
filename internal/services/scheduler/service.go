// -----------------------------------------------------------------------
// Scheduler Service - per-subscriber daily delivery slots in serve mode
// -----------------------------------------------------------------------

package scheduler

import (
	"context"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"

	"github.com/stockbrief/stockbrief/internal/interfaces"
)

// Service schedules one daily detached send per active subscriber at
// the subscriber's delivery slot. Reload rebuilds the whole cron table
// from storage, so watchlist edits take effect without a restart.
type Service struct {
	subscribers interfaces.SubscriberStorage
	submitter   interfaces.TaskSubmitter
	cron        *cron.Cron
	logger      arbor.ILogger
	mu          sync.Mutex
	entries     map[string]cron.EntryID // subscriber ID -> cron entry
	running     bool
}

// NewService creates a scheduler service
func NewService(subscribers interfaces.SubscriberStorage, submitter interfaces.TaskSubmitter, logger arbor.ILogger) *Service {
	return &Service{
		subscribers: subscribers,
		submitter:   submitter,
		cron:        cron.New(),
		logger:      logger,
		entries:     make(map[string]cron.EntryID),
	}
}

// Start loads the schedule and begins firing delivery slots
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("scheduler already running")
	}
	s.running = true
	s.mu.Unlock()

	if err := s.Reload(ctx); err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info().Msg("Scheduler started")
	return nil
}

// Reload rebuilds cron entries from the current active subscriber set
func (s *Service) Reload(ctx context.Context) error {
	active, err := s.subscribers.ListActive(ctx)
	if err != nil {
		return fmt.Errorf("failed to list active subscribers: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, entryID := range s.entries {
		s.cron.Remove(entryID)
	}
	s.entries = make(map[string]cron.EntryID)

	for _, sub := range active {
		subscriberID := sub.ID
		spec := fmt.Sprintf("%d %d * * *", sub.SendMinute, sub.SendHour)

		entryID, err := s.cron.AddFunc(spec, func() {
			if err := s.submitter.SubmitSendNow(subscriberID); err != nil {
				s.logger.Error().Err(err).Str("subscriber_id", subscriberID).Msg("Scheduled send failed to launch")
			}
		})
		if err != nil {
			s.logger.Error().Err(err).
				Str("subscriber_id", subscriberID).
				Str("spec", spec).
				Msg("Failed to schedule subscriber")
			continue
		}

		s.entries[subscriberID] = entryID
		s.logger.Debug().
			Str("subscriber", sub.Name).
			Str("spec", spec).
			Msg("Scheduled daily digest")
	}

	s.logger.Info().Int("subscribers", len(s.entries)).Msg("Schedule reloaded")
	return nil
}

// Stop halts the scheduler, waiting for in-flight launches
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.running = false
	s.logger.Info().Msg("Scheduler stopped")
}

// IsRunning reports whether the scheduler has been started
func (s *Service) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}
