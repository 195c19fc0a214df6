// internal/cache/redis.go
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// DefaultQueueName is the Redis list (queue) name for game action logs.
const DefaultQueueName = "skyjo_actions"

// SystemSeat marks actions that no seat performed, e.g. starting a game.
const SystemSeat = -1

// GameActionRecord holds the minimal info needed by the historian.
type GameActionRecord struct {
	GameID        uuid.UUID              `json:"game_id"`
	ActionIndex   int                    `json:"action_index"`
	ActorSeat     int                    `json:"actor_seat"`
	ActionType    string                 `json:"action_type"`
	ActionPayload map[string]interface{} `json:"action_payload"`
	Timestamp     int64                  `json:"timestamp"`
}

// Publisher pushes action records onto a Redis list.
type Publisher struct {
	client *redis.Client
	queue  string
}

// ConnectRedis creates a client for addr/db and pings it.
func ConnectRedis(ctx context.Context, addr string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}
	return rdb, nil
}

// NewPublisher returns a Publisher writing to queue, or DefaultQueueName if empty.
func NewPublisher(client *redis.Client, queue string) *Publisher {
	if queue == "" {
		queue = DefaultQueueName
	}
	return &Publisher{client: client, queue: queue}
}

// Queue returns the list name records are pushed to.
func (p *Publisher) Queue() string { return p.queue }

// PublishGameAction serializes the record to JSON and RPushes it.
func (p *Publisher) PublishGameAction(ctx context.Context, record GameActionRecord) error {
	data, err := EncodeRecord(record)
	if err != nil {
		return err
	}
	if err := p.client.RPush(ctx, p.queue, data).Err(); err != nil {
		return fmt.Errorf("failed to RPush to Redis list '%s': %w", p.queue, err)
	}
	return nil
}

// EncodeRecord marshals a record for the queue.
func EncodeRecord(record GameActionRecord) ([]byte, error) {
	if record.ActionPayload == nil {
		record.ActionPayload = map[string]interface{}{}
	}
	data, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal GameActionRecord: %w", err)
	}
	return data, nil
}

// DecodeRecord parses a queue entry.
func DecodeRecord(data []byte) (GameActionRecord, error) {
	var record GameActionRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return GameActionRecord{}, fmt.Errorf("invalid action record: %w", err)
	}
	if record.GameID == uuid.Nil {
		return GameActionRecord{}, fmt.Errorf("invalid action record: missing game_id")
	}
	return record, nil
}
