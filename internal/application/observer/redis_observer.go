package observer

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// redisChannelFormat follows the "<service>:events:%s" pub/sub naming
// convention, scoped to a sheet so a UI subscribes to only the rows it has
// open.
const redisChannelFormat = "sheetfill:status:%s"

// RedisObserver publishes cell-processing events on a per-sheet Redis
// pub/sub channel so multiple UI subscribers see live status without
// polling Postgres directly.
type RedisObserver struct {
	client *redis.Client
}

// NewRedisObserver creates a Redis pub/sub observer.
func NewRedisObserver(client *redis.Client) *RedisObserver {
	return &RedisObserver{client: client}
}

func (o *RedisObserver) Name() string { return "redis" }

func (o *RedisObserver) Filter() EventFilter { return nil }

// redisPayload is the wire shape published on the channel.
type redisPayload struct {
	Type          string `json:"type"`
	SheetID       string `json:"sheetId"`
	RowIndex      int    `json:"rowIndex"`
	ColIndex      int    `json:"colIndex"`
	Operator      string `json:"operator,omitempty"`
	StatusMessage string `json:"statusMessage,omitempty"`
	RetryCount    *int   `json:"retryCount,omitempty"`
	Error         string `json:"error,omitempty"`
}

func (o *RedisObserver) OnEvent(ctx context.Context, event Event) error {
	payload := redisPayload{
		Type:          string(event.Type),
		SheetID:       event.SheetID,
		RowIndex:      event.RowIndex,
		ColIndex:      event.ColIndex,
		Operator:      event.Operator,
		StatusMessage: event.StatusMessage,
		RetryCount:    event.RetryCount,
	}
	if event.Error != nil {
		payload.Error = event.Error.Error()
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	channel := fmt.Sprintf(redisChannelFormat, event.SheetID)
	return o.client.Publish(ctx, channel, data).Err()
}
