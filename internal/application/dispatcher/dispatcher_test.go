package dispatcher

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sheetfill/engine/internal/application/validator"
	"github.com/sheetfill/engine/internal/application/wrapper"
	"github.com/sheetfill/engine/pkg/models"
	"github.com/sheetfill/engine/pkg/operator"
	"github.com/sheetfill/engine/testutil"
)

func TestDispatcher_Run_ClaimsAndProcessesUntilCancelled(t *testing.T) {
	queue := new(testutil.MockEventQueue)
	sheets := new(testutil.MockSheetRepository)
	cells := new(testutil.MockCellRepository)
	status := new(testutil.MockStatusRepository)
	audit := new(testutil.MockAuditRepository)

	op := &stubOperator{output: map[string]interface{}{"summary": "https://acme.com"}}
	registry := operator.NewRegistry()
	require.NoError(t, registry.Register(models.OperatorURLContext, op))

	v := validator.New(0.5, nil)
	w := wrapper.New(cells, audit, queue, v, nil, 0)

	seedSheet(sheets, cells)
	cells.On("UpsertCell", mock.Anything, mock.Anything).Return(nil)
	audit.On("Append", mock.Anything, mock.Anything).Return(nil)
	status.On("UpsertStatus", mock.Anything, mock.Anything).Return(nil)
	queue.On("ReadRetryCount", mock.Anything, "evt-1").Return(0, nil)
	queue.On("Complete", mock.Anything, "evt-1").Return(nil)

	event := &models.Event{ID: "evt-1", SheetID: "sheet-1", RowIndex: 1, ColIndex: 0, EventType: models.EventTypeUserCellEdit, Payload: models.NewCellEditPayload("Acme")}

	claimed := make(chan struct{}, 1)
	queue.On("Claim", mock.Anything, 10).Return([]*models.Event{event}, nil).Run(func(args mock.Arguments) {
		select {
		case claimed <- struct{}{}:
		default:
		}
	}).Once()
	queue.On("Claim", mock.Anything, 10).Return([]*models.Event{}, nil)

	d := New(Config{Parallelism: 2, PollInterval: 5 * time.Millisecond, ClaimBatchSize: 10, MaxRetries: 1}, queue, sheets, cells, status, registry, w, v, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		d.Run(ctx)
		close(done)
	}()

	select {
	case <-claimed:
	case <-time.After(2 * time.Second):
		t.Fatal("dispatcher never claimed the seeded event")
	}

	// give the in-flight goroutine a moment to finish processing before cancel.
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after context cancellation")
	}

	queue.AssertCalled(t, "Complete", mock.Anything, "evt-1")
}

func TestDispatcher_ProcessEvent_RecoversFromPanic(t *testing.T) {
	queue := new(testutil.MockEventQueue)
	sheets := new(testutil.MockSheetRepository)
	cells := new(testutil.MockCellRepository)
	status := new(testutil.MockStatusRepository)

	registry := operator.NewRegistry()
	require.NoError(t, registry.Register(models.OperatorURLContext, &panicOperator{}))

	v := validator.New(0.5, nil)
	w := wrapper.New(cells, new(testutil.MockAuditRepository), queue, v, nil, 0)

	seedSheet(sheets, cells)
	status.On("UpsertStatus", mock.Anything, mock.Anything).Return(nil)
	queue.On("Fail", mock.Anything, "evt-1", mock.Anything).Return(nil)

	d := New(Config{Parallelism: 1, MaxRetries: 1}, queue, sheets, cells, status, registry, w, v, testLogger())

	event := &models.Event{ID: "evt-1", SheetID: "sheet-1", RowIndex: 1, ColIndex: 0, EventType: models.EventTypeUserCellEdit, Payload: models.NewCellEditPayload("Acme")}

	require.NotPanics(t, func() { d.processEvent(context.Background(), event) })
	queue.AssertCalled(t, "Fail", mock.Anything, "evt-1", mock.Anything)
}

type panicOperator struct {
	operator.BaseOperator
}

func (panicOperator) Operate(ctx context.Context, input map[string]interface{}) (map[string]interface{}, error) {
	panic("boom")
}
