package queue

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sheetfill/engine/internal/application/observer"
	"github.com/sheetfill/engine/pkg/models"
	"github.com/sheetfill/engine/testutil"
)

func TestQueue_EnqueueCellEdit(t *testing.T) {
	t.Run("enqueues and notifies", func(t *testing.T) {
		events := new(testutil.MockEventQueue)
		cells := new(testutil.MockCellRepository)
		mgr := observer.NewObserverManager()
		obs := observer.NewMockObserver("watcher")
		require.NoError(t, mgr.Register(obs))

		events.On("Enqueue", mock.Anything, "sheet-1", 2, 1, models.EventTypeUserCellEdit, models.NewCellEditPayload("hello")).
			Return("event-1", nil)

		q := New(events, cells, mgr)
		id, err := q.EnqueueCellEdit(context.Background(), "sheet-1", 2, 1, "hello")

		require.NoError(t, err)
		assert.Equal(t, "event-1", id)
		events.AssertExpectations(t)
	})

	t.Run("rejects empty sheet ID", func(t *testing.T) {
		q := New(new(testutil.MockEventQueue), new(testutil.MockCellRepository), nil)
		_, err := q.EnqueueCellEdit(context.Background(), "", 0, 0, "x")
		assert.Error(t, err)
	})

	t.Run("propagates repository error", func(t *testing.T) {
		events := new(testutil.MockEventQueue)
		events.On("Enqueue", mock.Anything, "sheet-1", 0, 0, models.EventTypeUserCellEdit, mock.Anything).
			Return("", assert.AnError)

		q := New(events, new(testutil.MockCellRepository), nil)
		_, err := q.EnqueueCellEdit(context.Background(), "sheet-1", 0, 0, "x")
		assert.Error(t, err)
	})
}

func TestQueue_EnqueueManualTrigger(t *testing.T) {
	events := new(testutil.MockEventQueue)
	events.On("Enqueue", mock.Anything, "sheet-1", 1, 2, models.EventTypeManualTrigger, mock.Anything).
		Return("event-2", nil)

	q := New(events, new(testutil.MockCellRepository), nil)
	id, err := q.EnqueueManualTrigger(context.Background(), "sheet-1", 1, 2, "retry", map[string]interface{}{"force": true})

	require.NoError(t, err)
	assert.Equal(t, "event-2", id)
	events.AssertExpectations(t)
}

func TestQueue_BulkCreateRows(t *testing.T) {
	t.Run("seeds and enqueues one event per row", func(t *testing.T) {
		events := new(testutil.MockEventQueue)
		cells := new(testutil.MockCellRepository)

		rows := [][]string{{"a"}, {"b"}}
		cells.On("BulkUpsertSeedCells", mock.Anything, "sheet-1", rows).Return([]int{5, 6}, nil)
		events.On("Enqueue", mock.Anything, "sheet-1", 5, 0, models.EventTypeUserCellEdit, models.NewCellEditPayload("a")).Return("e1", nil)
		events.On("Enqueue", mock.Anything, "sheet-1", 6, 0, models.EventTypeUserCellEdit, models.NewCellEditPayload("b")).Return("e2", nil)

		q := New(events, cells, nil)
		err := q.BulkCreateRows(context.Background(), "sheet-1", rows)

		require.NoError(t, err)
		cells.AssertExpectations(t)
		events.AssertExpectations(t)
	})

	t.Run("no-op on empty rows", func(t *testing.T) {
		cells := new(testutil.MockCellRepository)
		q := New(new(testutil.MockEventQueue), cells, nil)

		err := q.BulkCreateRows(context.Background(), "sheet-1", nil)
		require.NoError(t, err)
		cells.AssertNotCalled(t, "BulkUpsertSeedCells", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("rejects empty sheet ID", func(t *testing.T) {
		q := New(new(testutil.MockEventQueue), new(testutil.MockCellRepository), nil)
		err := q.BulkCreateRows(context.Background(), "", [][]string{{"a"}})
		assert.Error(t, err)
	})
}
