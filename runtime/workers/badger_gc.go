package workers

import (
	"context"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// BadgerGCWorker runs Badger's value-log garbage collection on a ticker.
// Badger never reclaims value-log space on its own; without this loop the
// store grows unbounded under sustained message traffic.
type BadgerGCWorker struct {
	db       *badger.DB
	log      *slog.Logger
	interval time.Duration
}

func NewBadgerGCWorker(db *badger.DB, log *slog.Logger, interval time.Duration) *BadgerGCWorker {
	return &BadgerGCWorker{db: db, log: log, interval: interval}
}

func (w *BadgerGCWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			// RunValueLogGC returns ErrNoRewrite when there is nothing to
			// collect; that is the common case and not worth logging.
			err := w.db.RunValueLogGC(0.5)
			switch err {
			case nil:
				w.log.Debug("Value log GC rewrote a file")
			case badger.ErrNoRewrite:
			default:
				w.log.Warn("Value log GC failed", "error", err)
			}
		}
	}
}
