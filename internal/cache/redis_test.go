package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordRoundTrip(t *testing.T) {
	rec := GameActionRecord{
		GameID:        uuid.New(),
		ActionIndex:   3,
		ActorSeat:     1,
		ActionType:    "player_place",
		ActionPayload: map[string]interface{}{"slot": float64(4)},
		Timestamp:     time.Now().UnixMilli(),
	}
	data, err := EncodeRecord(rec)
	require.NoError(t, err)

	got, err := DecodeRecord(data)
	require.NoError(t, err)
	assert.Equal(t, rec, got)
}

func TestEncodeRecordFillsPayload(t *testing.T) {
	data, err := EncodeRecord(GameActionRecord{GameID: uuid.New(), ActorSeat: SystemSeat})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"action_payload":{}`)
}

func TestDecodeRecordRejectsGarbage(t *testing.T) {
	_, err := DecodeRecord([]byte("not json"))
	assert.Error(t, err)

	_, err = DecodeRecord([]byte(`{"action_type":"x"}`))
	assert.Error(t, err, "records without a game id are dropped")
}

// TestPublishGameAction needs a live Redis; set REDIS_ADDR to run it.
func TestPublishGameAction(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	ctx := context.Background()
	rdb, err := ConnectRedis(ctx, addr, 0)
	require.NoError(t, err)
	defer rdb.Close()

	queue := "skyjo_actions_test_" + uuid.NewString()
	defer rdb.Del(ctx, queue)

	p := NewPublisher(rdb, queue)
	rec := GameActionRecord{GameID: uuid.New(), ActionIndex: 1, ActionType: "game_start", ActorSeat: SystemSeat}
	require.NoError(t, p.PublishGameAction(ctx, rec))

	raw, err := rdb.LPop(ctx, queue).Result()
	require.NoError(t, err)
	got, err := DecodeRecord([]byte(raw))
	require.NoError(t, err)
	assert.Equal(t, rec.GameID, got.GameID)
	assert.Equal(t, "game_start", got.ActionType)
}
