package observer

import (
	"context"

	"github.com/sheetfill/engine/internal/infrastructure/logger"
)

// LoggerObserver writes every cell-processing event to the structured logger.
type LoggerObserver struct {
	log *logger.Logger
}

// NewLoggerObserver creates an observer that logs each event at Info/Warn level.
func NewLoggerObserver(log *logger.Logger) *LoggerObserver {
	return &LoggerObserver{log: log}
}

func (o *LoggerObserver) Name() string { return "logger" }

func (o *LoggerObserver) Filter() EventFilter { return nil }

func (o *LoggerObserver) OnEvent(ctx context.Context, event Event) error {
	args := []any{
		"sheet_id", event.SheetID,
		"row_index", event.RowIndex,
		"col_index", event.ColIndex,
		"operator", event.Operator,
	}
	if event.StatusMessage != "" {
		args = append(args, "message", event.StatusMessage)
	}
	if event.RetryCount != nil {
		args = append(args, "retry_count", *event.RetryCount)
	}
	if event.DurationMs != nil {
		args = append(args, "duration_ms", *event.DurationMs)
	}

	if event.Type == EventTypeCellError {
		if event.Error != nil {
			args = append(args, "error", event.Error)
		}
		o.log.ErrorContext(ctx, string(event.Type), args...)
		return nil
	}

	o.log.InfoContext(ctx, string(event.Type), args...)
	return nil
}
