package interfaces

import (
	"context"

	"github.com/stockbrief/stockbrief/internal/models"
)

// Deliverer sends a composed digest to its subscriber.
type Deliverer interface {
	// Deliver sends one digest. Errors are classified by the
	// implementation (see mailer.DeliveryError) so callers can log a
	// useful failure kind, but every error is non-fatal to the run.
	Deliver(ctx context.Context, digest *models.Digest) error

	// Verify checks that delivery is configured well enough to
	// attempt sending (host, credentials, sender address present).
	Verify(ctx context.Context) error
}

// TaskSubmitter hands off a single-subscriber send so it runs outside
// the caller's request lifecycle.
type TaskSubmitter interface {
	SubmitSendNow(subscriberID string) error
}
