package dispatcher

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sheetfill/engine/internal/application/validator"
	"github.com/sheetfill/engine/internal/application/wrapper"
	"github.com/sheetfill/engine/internal/config"
	"github.com/sheetfill/engine/internal/infrastructure/logger"
	"github.com/sheetfill/engine/pkg/models"
	"github.com/sheetfill/engine/pkg/operator"
	"github.com/sheetfill/engine/testutil"
)

// stubOperator returns a fixed output/error pair regardless of input.
type stubOperator struct {
	operator.BaseOperator
	output map[string]interface{}
	err    error
	calls  int
}

func (s *stubOperator) Operate(ctx context.Context, input map[string]interface{}) (map[string]interface{}, error) {
	s.calls++
	return s.output, s.err
}

func testLogger() *logger.Logger {
	return logger.New(config.LoggingConfig{Level: "error", Format: "text"})
}

func newTestDispatcher(t *testing.T, op operator.Operator) (*Dispatcher, *testutil.MockEventQueue, *testutil.MockSheetRepository, *testutil.MockCellRepository, *testutil.MockStatusRepository, *testutil.MockAuditRepository) {
	t.Helper()

	queue := new(testutil.MockEventQueue)
	sheets := new(testutil.MockSheetRepository)
	cells := new(testutil.MockCellRepository)
	status := new(testutil.MockStatusRepository)
	audit := new(testutil.MockAuditRepository)

	registry := operator.NewRegistry()
	require.NoError(t, registry.Register(models.OperatorURLContext, op))

	v := validator.New(0.5, nil)
	w := wrapper.New(cells, audit, queue, v, nil, 0)

	d := New(Config{Parallelism: 1, MaxRetries: 1}, queue, sheets, cells, status, registry, w, v, testLogger())
	return d, queue, sheets, cells, status, audit
}

func seedSheet(sheets *testutil.MockSheetRepository, cells *testutil.MockCellRepository) {
	sheets.On("GetSheet", mock.Anything, "sheet-1").Return(&models.Sheet{ID: "sheet-1", TemplateType: models.TemplateTypeGeneric}, nil)
	sheets.On("ListColumns", mock.Anything, "sheet-1").Return([]*models.Column{
		{ID: "seed", Position: 0, DataType: models.DataTypeShortText},
		{ID: "target", Position: 1, Title: "Website", DataType: models.DataTypeURL, OperatorType: models.OperatorURLContext},
	}, nil)
	cells.On("ListRowCells", mock.Anything, "sheet-1", 1).Return([]*models.Cell{
		{SheetID: "sheet-1", RowIndex: 1, ColIndex: 0, Content: "Acme"},
	}, nil)
}

func TestRunPipeline_SuccessCompletesEvent(t *testing.T) {
	op := &stubOperator{output: map[string]interface{}{"summary": "https://acme.com"}}
	d, queue, sheets, cells, status, audit := newTestDispatcher(t, op)
	seedSheet(sheets, cells)

	cells.On("UpsertCell", mock.Anything, mock.Anything).Return(nil)
	audit.On("Append", mock.Anything, mock.Anything).Return(nil)
	status.On("UpsertStatus", mock.Anything, mock.Anything).Return(nil)
	queue.On("ReadRetryCount", mock.Anything, "evt-1").Return(0, nil)
	queue.On("Complete", mock.Anything, "evt-1").Return(nil)

	event := &models.Event{ID: "evt-1", SheetID: "sheet-1", RowIndex: 1, ColIndex: 0, EventType: models.EventTypeUserCellEdit, Payload: models.NewCellEditPayload("Acme")}

	err := d.runPipeline(context.Background(), event)
	require.NoError(t, err)
	assert.Equal(t, 1, op.calls)
	queue.AssertExpectations(t)
}

func TestRunPipeline_RejectedWriteStillCompletes(t *testing.T) {
	op := &stubOperator{output: map[string]interface{}{"summary": "null"}}
	d, queue, sheets, cells, status, _ := newTestDispatcher(t, op)
	seedSheet(sheets, cells)

	status.On("UpsertStatus", mock.Anything, mock.Anything).Return(nil)
	queue.On("Complete", mock.Anything, "evt-1").Return(nil)

	event := &models.Event{ID: "evt-1", SheetID: "sheet-1", RowIndex: 1, ColIndex: 0, EventType: models.EventTypeUserCellEdit, Payload: models.NewCellEditPayload("Acme")}

	err := d.runPipeline(context.Background(), event)
	require.NoError(t, err)
	cells.AssertNotCalled(t, "UpsertCell", mock.Anything, mock.Anything)
	queue.AssertExpectations(t)
}

func TestRunPipeline_OperatorErrorPropagates(t *testing.T) {
	op := &stubOperator{err: errors.New("vendor timeout")}
	d, _, sheets, cells, status, _ := newTestDispatcher(t, op)
	seedSheet(sheets, cells)

	status.On("UpsertStatus", mock.Anything, mock.Anything).Return(nil)

	event := &models.Event{ID: "evt-1", SheetID: "sheet-1", RowIndex: 1, ColIndex: 0, EventType: models.EventTypeUserCellEdit, Payload: models.NewCellEditPayload("Acme")}

	err := d.runPipeline(context.Background(), event)
	assert.Error(t, err)
}

func TestRunPipeline_RetriesOnLowConfidence(t *testing.T) {
	op := &stubOperator{output: map[string]interface{}{"summary": "not a url"}}
	d, queue, sheets, cells, status, audit := newTestDispatcher(t, op)
	seedSheet(sheets, cells)

	cells.On("UpsertCell", mock.Anything, mock.Anything).Return(nil)
	audit.On("Append", mock.Anything, mock.Anything).Return(nil)
	status.On("UpsertStatus", mock.Anything, mock.Anything).Return(nil)
	queue.On("ReadRetryCount", mock.Anything, "evt-1").Return(0, nil)
	queue.On("IncrementRetry", mock.Anything, "evt-1").Return(nil)
	queue.On("Complete", mock.Anything, "evt-1").Return(nil)

	event := &models.Event{ID: "evt-1", SheetID: "sheet-1", RowIndex: 1, ColIndex: 0, EventType: models.EventTypeUserCellEdit, Payload: models.NewCellEditPayload("Acme")}

	err := d.runPipeline(context.Background(), event)
	require.NoError(t, err)
	assert.Equal(t, 2, op.calls, "expected one retry invocation on top of the initial operate call")
	queue.AssertExpectations(t)
}

func TestRunPipeline_NoRetryWhenMaxRetriesExhausted(t *testing.T) {
	op := &stubOperator{output: map[string]interface{}{"summary": "not a url"}}
	d, queue, sheets, cells, status, audit := newTestDispatcher(t, op)
	d.cfg.MaxRetries = 0
	seedSheet(sheets, cells)

	cells.On("UpsertCell", mock.Anything, mock.Anything).Return(nil)
	audit.On("Append", mock.Anything, mock.Anything).Return(nil)
	status.On("UpsertStatus", mock.Anything, mock.Anything).Return(nil)
	queue.On("ReadRetryCount", mock.Anything, "evt-1").Return(0, nil)
	queue.On("Complete", mock.Anything, "evt-1").Return(nil)

	event := &models.Event{ID: "evt-1", SheetID: "sheet-1", RowIndex: 1, ColIndex: 0, EventType: models.EventTypeUserCellEdit, Payload: models.NewCellEditPayload("Acme")}

	err := d.runPipeline(context.Background(), event)
	require.NoError(t, err)
	assert.Equal(t, 1, op.calls)
}
