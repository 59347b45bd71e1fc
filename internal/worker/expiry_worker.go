package worker

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/prepdesk/prepdesk-backend/internal/service"
	"github.com/rs/zerolog"
)

const (
	ExpiryPollInterval = 1 * time.Second
	ExpiryBatchSize    = 100
)

// SessionFinalizer is the slice of the session engine the worker needs.
type SessionFinalizer interface {
	AutoSubmit(ctx context.Context, sessionID uuid.UUID) (bool, error)
	ExpiredSessions(ctx context.Context, limit int) ([]uuid.UUID, error)
}

// ExpiryWorker finalizes exam sessions whose deadline passed without a user
// submission. The Redis deadline queue gives near-realtime reaction; the
// periodic DB sweep guarantees nothing is missed even if the queue loses
// entries.
type ExpiryWorker struct {
	queue         *DeadlineQueue
	sessions      SessionFinalizer
	sweepInterval time.Duration
	log           zerolog.Logger
}

// NewExpiryWorker creates a new ExpiryWorker.
func NewExpiryWorker(queue *DeadlineQueue, sessions SessionFinalizer, sweepInterval time.Duration, log zerolog.Logger) *ExpiryWorker {
	return &ExpiryWorker{
		queue:         queue,
		sessions:      sessions,
		sweepInterval: sweepInterval,
		log:           log.With().Str("component", "expiry_worker").Logger(),
	}
}

// Start runs the worker until ctx is canceled.
func (w *ExpiryWorker) Start(ctx context.Context) {
	w.log.Info().Dur("sweep_interval", w.sweepInterval).Msg("ExpiryWorker started")

	poll := time.NewTicker(ExpiryPollInterval)
	defer poll.Stop()
	sweep := time.NewTicker(w.sweepInterval)
	defer sweep.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("ExpiryWorker stopped")
			return
		case <-poll.C:
			w.drainQueue(ctx)
		case <-sweep.C:
			w.sweepDB(ctx)
		}
	}
}

func (w *ExpiryWorker) drainQueue(ctx context.Context) {
	due, err := w.queue.Due(ctx, time.Now(), ExpiryBatchSize)
	if err != nil {
		if ctx.Err() == nil {
			w.log.Error().Err(err).Msg("deadline queue poll failed")
		}
		return
	}

	handled := make([]uuid.UUID, 0, len(due))
	for _, id := range due {
		if w.finalize(ctx, id, "queue") {
			handled = append(handled, id)
		}
	}
	if err := w.queue.Remove(ctx, handled); err != nil {
		w.log.Warn().Err(err).Msg("failed to clear handled deadlines")
	}
}

func (w *ExpiryWorker) sweepDB(ctx context.Context) {
	ids, err := w.sessions.ExpiredSessions(ctx, ExpiryBatchSize)
	if err != nil {
		if ctx.Err() == nil {
			w.log.Error().Err(err).Msg("expired session sweep failed")
		}
		return
	}
	for _, id := range ids {
		w.finalize(ctx, id, "sweep")
	}
}

// finalize auto-submits one session. Returns true when the session needs no
// further attention (finalized now, already submitted, or gone).
func (w *ExpiryWorker) finalize(ctx context.Context, id uuid.UUID, source string) bool {
	submitted, err := w.sessions.AutoSubmit(ctx, id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			// Session deleted since it was scheduled. Nothing to do.
			return true
		}
		w.log.Error().Err(err).Str("session_id", id.String()).Str("source", source).Msg("auto submit failed")
		return false
	}
	if submitted {
		w.log.Info().Str("session_id", id.String()).Str("source", source).Msg("exam session auto-submitted")
	}
	return true
}
