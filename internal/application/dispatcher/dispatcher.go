// Package dispatcher implements the operator controller: a poll loop that
// claims queued events and runs each through a bounded-parallelism,
// at-most-one-retry pipeline.
package dispatcher

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sheetfill/engine/internal/application/validator"
	"github.com/sheetfill/engine/internal/application/wrapper"
	"github.com/sheetfill/engine/internal/domain/repository"
	"github.com/sheetfill/engine/internal/infrastructure/logger"
	"github.com/sheetfill/engine/pkg/models"
	"github.com/sheetfill/engine/pkg/operator"
)

// Config holds the dispatcher's poll/claim/retry knobs.
type Config struct {
	Parallelism     int
	PollInterval    time.Duration
	ClaimBatchSize  int
	MaxRetries      int
	OperatorTimeout time.Duration
}

// Dispatcher runs the claim-dispatch-retry loop over the event queue.
type Dispatcher struct {
	cfg Config

	queue  repository.EventQueue
	sheets repository.SheetRepository
	cells  repository.CellRepository
	status repository.StatusRepository

	operators *operator.Registry
	wrapper   *wrapper.Wrapper
	validator *validator.Validator

	log *logger.Logger
}

// New constructs a Dispatcher.
func New(
	cfg Config,
	queue repository.EventQueue,
	sheets repository.SheetRepository,
	cells repository.CellRepository,
	status repository.StatusRepository,
	operators *operator.Registry,
	w *wrapper.Wrapper,
	v *validator.Validator,
	log *logger.Logger,
) *Dispatcher {
	return &Dispatcher{
		cfg: cfg, queue: queue, sheets: sheets, cells: cells, status: status,
		operators: operators, wrapper: w, validator: v, log: log,
	}
}

// Run polls the queue until ctx is cancelled. It is meant to run as a
// long-lived background process alongside the reaper.
func (d *Dispatcher) Run(ctx context.Context) {
	ticker := time.NewTicker(d.cfg.PollInterval)
	defer ticker.Stop()

	semaphore := make(chan struct{}, d.cfg.Parallelism)
	var wg sync.WaitGroup

	for {
		select {
		case <-ctx.Done():
			wg.Wait()
			return
		case <-ticker.C:
			events, err := d.queue.Claim(ctx, d.cfg.ClaimBatchSize)
			if err != nil {
				d.log.Error("claim failed", "error", err)
				continue
			}
			for _, event := range events {
				semaphore <- struct{}{}
				wg.Add(1)
				go func(ev *models.Event) {
					defer wg.Done()
					defer func() { <-semaphore }()
					d.processEvent(ctx, ev)
				}(event)
			}
		}
	}
}

// processEvent runs the fill pipeline for a single claimed event, recovering
// from any uncaught panic as an event failure.
func (d *Dispatcher) processEvent(ctx context.Context, event *models.Event) {
	defer func() {
		if r := recover(); r != nil {
			d.log.Error("pipeline panic", "event", event.ID, "recover", r)
			_ = d.queue.Fail(ctx, event.ID, errors.New("panic during processing"))
		}
	}()

	if err := d.runPipeline(ctx, event); err != nil {
		d.log.Error("pipeline failed", "event", event.ID, "error", err)
		d.markCellError(ctx, event, err)
		if failErr := d.queue.Fail(ctx, event.ID, err); failErr != nil {
			d.log.Error("fail transition failed", "event", event.ID, "error", failErr)
		}
		return
	}
}

func (d *Dispatcher) markCellError(ctx context.Context, event *models.Event, cause error) {
	_ = d.status.UpsertStatus(ctx, &models.CellProcessingStatus{
		SheetID:       event.SheetID,
		RowIndex:      event.RowIndex,
		ColIndex:      event.ColIndex + 1,
		Status:        models.CellStatusError,
		StatusMessage: cause.Error(),
		UpdatedAt:     time.Now(),
	})
}
