package models

import (
	"fmt"
	"sync"
	"time"
)

// RunOutcome accumulates per-unit and per-subscriber results over one
// digest run. Counters are guarded so concurrent pipeline workers can
// report into a single outcome.
type RunOutcome struct {
	mu sync.Mutex

	Mode      string    `json:"mode"`
	StartedAt time.Time `json:"started_at"`

	UnitsRequested int `json:"units_requested"`
	UnitsGenerated int `json:"units_generated"`
	UnitsFailed    int `json:"units_failed"`

	SubscribersProcessed int `json:"subscribers_processed"`
	Dispatched           int `json:"dispatched"`
	Skipped              int `json:"skipped"`
	DeliveryFailures     int `json:"delivery_failures"`

	Entries []OutcomeEntry `json:"entries"`
}

// OutcomeEntry records one terminal event in a run: a unit finishing
// (or failing) generation, or a subscriber being dispatched, skipped,
// or failing delivery.
type OutcomeEntry struct {
	Scope  string    `json:"scope"` // "unit" or "subscriber"
	Key    string    `json:"key"`
	OK     bool      `json:"ok"`
	Detail string    `json:"detail,omitempty"`
	At     time.Time `json:"at"`
}

func NewRunOutcome(mode string) *RunOutcome {
	return &RunOutcome{
		Mode:      mode,
		StartedAt: time.Now(),
	}
}

func (o *RunOutcome) record(entry OutcomeEntry) {
	entry.At = time.Now()
	o.Entries = append(o.Entries, entry)
}

// UnitGenerated records a successful generation for one unit.
func (o *RunOutcome) UnitGenerated(unit ResearchUnit) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.UnitsGenerated++
	o.record(OutcomeEntry{Scope: "unit", Key: unit.String(), OK: true})
}

// UnitFailed records a failed generation for one unit. The run keeps
// going; the unit is simply absent from every digest.
func (o *RunOutcome) UnitFailed(unit ResearchUnit, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.UnitsFailed++
	o.record(OutcomeEntry{Scope: "unit", Key: unit.String(), Detail: err.Error()})
}

// SubscriberDispatched records a delivered digest.
func (o *RunOutcome) SubscriberDispatched(sub *Subscriber, cards int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.SubscribersProcessed++
	o.Dispatched++
	o.record(OutcomeEntry{Scope: "subscriber", Key: sub.Email, OK: true, Detail: fmt.Sprintf("%d cards", cards)})
}

// SubscriberSkipped records a subscriber for whom no digest was sent
// because no usable card existed.
func (o *RunOutcome) SubscriberSkipped(sub *Subscriber, reason string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.SubscribersProcessed++
	o.Skipped++
	o.record(OutcomeEntry{Scope: "subscriber", Key: sub.Email, Detail: reason})
}

// DeliveryFailed records a composed digest that could not be sent.
func (o *RunOutcome) DeliveryFailed(sub *Subscriber, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.SubscribersProcessed++
	o.DeliveryFailures++
	o.record(OutcomeEntry{Scope: "subscriber", Key: sub.Email, Detail: err.Error()})
}

// Snapshot returns a copy safe to serialize without holding the lock.
func (o *RunOutcome) Snapshot() RunOutcome {
	o.mu.Lock()
	defer o.mu.Unlock()
	snap := RunOutcome{
		Mode:                 o.Mode,
		StartedAt:            o.StartedAt,
		UnitsRequested:       o.UnitsRequested,
		UnitsGenerated:       o.UnitsGenerated,
		UnitsFailed:          o.UnitsFailed,
		SubscribersProcessed: o.SubscribersProcessed,
		Dispatched:           o.Dispatched,
		Skipped:              o.Skipped,
		DeliveryFailures:     o.DeliveryFailures,
		Entries:              make([]OutcomeEntry, len(o.Entries)),
	}
	copy(snap.Entries, o.Entries)
	return snap
}
