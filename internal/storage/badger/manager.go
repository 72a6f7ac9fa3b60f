package badger

import (
	"context"

	"github.com/ternarybob/arbor"

	"github.com/stockbrief/stockbrief/internal/common"
	"github.com/stockbrief/stockbrief/internal/interfaces"
)

// Manager bundles the Badger-backed storage implementations behind one
// connection so the application opens the database exactly once.
type Manager struct {
	db          *BadgerDB
	subscribers interfaces.SubscriberStorage
	kv          interfaces.KeyValueStorage
	logger      arbor.ILogger
}

// NewManager creates a new Badger storage manager
func NewManager(logger arbor.ILogger, config *common.BadgerConfig) (*Manager, error) {
	db, err := NewBadgerDB(logger, config)
	if err != nil {
		return nil, err
	}

	manager := &Manager{
		db:          db,
		subscribers: NewSubscriberStorage(db, logger),
		kv:          NewKVStorage(db, logger),
		logger:      logger,
	}

	logger.Info().Msg("Badger storage manager initialized")

	return manager, nil
}

// SubscriberStorage returns the Subscriber storage interface
func (m *Manager) SubscriberStorage() interfaces.SubscriberStorage {
	return m.subscribers
}

// KeyValueStorage returns the KeyValue storage interface
func (m *Manager) KeyValueStorage() interfaces.KeyValueStorage {
	return m.kv
}

// SeedDefaults inserts default KV values on startup without
// overwriting keys the user has already edited.
func (m *Manager) SeedDefaults(ctx context.Context) error {
	for _, d := range common.GetDefaultKVValues() {
		if _, err := m.kv.Get(ctx, d.Key); err == nil {
			continue
		}
		if err := m.kv.Set(ctx, d.Key, d.Value, d.Description); err != nil {
			return err
		}
		m.logger.Debug().Str("key", d.Key).Msg("Seeded default key/value pair")
	}
	return nil
}

// Close closes the database connection
func (m *Manager) Close() error {
	if m.db != nil {
		return m.db.Close()
	}
	return nil
}
