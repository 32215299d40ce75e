package dispatcher

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sheetfill/engine/testutil"
)

func TestReaper_Sweep_ReapsStuckEvents(t *testing.T) {
	queue := new(testutil.MockEventQueue)
	queue.On("Reap", mock.Anything, 2*time.Minute).Return(3, nil)

	r := NewReaper(queue, 2*time.Minute, testLogger())
	r.sweep(context.Background())

	queue.AssertExpectations(t)
}

func TestReaper_Sweep_LogsErrorWithoutPanicking(t *testing.T) {
	queue := new(testutil.MockEventQueue)
	queue.On("Reap", mock.Anything, time.Minute).Return(0, assert.AnError)

	r := NewReaper(queue, time.Minute, testLogger())
	require.NotPanics(t, func() { r.sweep(context.Background()) })
}

func TestReaper_StartAndStop(t *testing.T) {
	queue := new(testutil.MockEventQueue)
	queue.On("Reap", mock.Anything, time.Minute).Return(0, nil).Maybe()

	r := NewReaper(queue, time.Minute, testLogger())
	require.NoError(t, r.Start(context.Background()))
	r.Stop()
}
