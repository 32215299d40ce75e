package dispatcher

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sheetfill/engine/internal/domain/repository"
	"github.com/sheetfill/engine/internal/infrastructure/logger"
)

// Reaper periodically forces stuck pending/processing events older than a
// threshold to completed, trading correctness of that one fill for forward
// progress on the rest of the row.
type Reaper struct {
	queue      repository.EventQueue
	reapAfter  time.Duration
	log        *logger.Logger
	cron       *cron.Cron
}

// NewReaper creates a Reaper. reapAfter is the stuck-event age threshold
// (dispatcher.reapAfterMs, default 2 minutes).
func NewReaper(queue repository.EventQueue, reapAfter time.Duration, log *logger.Logger) *Reaper {
	return &Reaper{
		queue:     queue,
		reapAfter: reapAfter,
		log:       log,
		cron:      cron.New(cron.WithSeconds(), cron.WithLocation(time.UTC)),
	}
}

// Start schedules the reap sweep to run every 30 seconds and begins the
// cron scheduler. The sweep itself is idempotent and cheap to run often;
// a short interval keeps stuck rows from blocking a row's fill chain for
// much longer than reapAfter.
func (r *Reaper) Start(ctx context.Context) error {
	_, err := r.cron.AddFunc("*/30 * * * * *", func() {
		r.sweep(ctx)
	})
	if err != nil {
		return err
	}
	r.cron.Start()
	return nil
}

// Stop halts the cron scheduler, waiting for any in-flight sweep to finish.
func (r *Reaper) Stop() {
	<-r.cron.Stop().Done()
}

func (r *Reaper) sweep(ctx context.Context) {
	n, err := r.queue.Reap(ctx, r.reapAfter)
	if err != nil {
		r.log.Error("reap sweep failed", "error", err)
		return
	}
	if n > 0 {
		r.log.Info("reaped stuck events", "count", n)
	}
}
