package database

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/skyjo/internal/cache"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnectDBRequiresURL(t *testing.T) {
	logger, _ := test.NewNullLogger()
	_, err := ConnectDB(context.Background(), "", logger)
	require.Error(t, err)
}

// TestStoreRoundTrip needs a disposable Postgres in DATABASE_URL.
func TestStoreRoundTrip(t *testing.T) {
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		t.Skip("DATABASE_URL not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	logger, _ := test.NewNullLogger()
	pool, err := ConnectDB(ctx, url, logger)
	require.NoError(t, err)
	defer pool.Close()
	require.NoError(t, Migrate(ctx, pool))

	store := NewStore(pool)
	gameID := uuid.New()
	recs := []cache.GameActionRecord{
		{GameID: gameID, ActionIndex: 1, ActorSeat: cache.SystemSeat, ActionType: "game_start", ActionPayload: map[string]interface{}{"playerCount": 2}, Timestamp: time.Now().UnixMilli()},
		{GameID: gameID, ActionIndex: 2, ActorSeat: 0, ActionType: "player_reveal", ActionPayload: map[string]interface{}{"slot": 4}, Timestamp: time.Now().UnixMilli()},
	}
	require.NoError(t, store.InsertGameActions(ctx, recs))
	// redelivery is ignored
	require.NoError(t, store.InsertGameActions(ctx, recs[1:]))

	var n int
	require.NoError(t, pool.QueryRow(ctx, `SELECT COUNT(*) FROM game_actions WHERE game_id = $1`, gameID).Scan(&n))
	assert.Equal(t, 2, n)

	require.NoError(t, store.MarkGameStatus(ctx, gameID, StatusCompleted))
	require.NoError(t, store.MarkGameStatus(ctx, gameID, StatusAbandoned))
	var status string
	require.NoError(t, pool.QueryRow(ctx, `SELECT status FROM games WHERE id = $1`, gameID).Scan(&status))
	assert.Equal(t, StatusCompleted, status, "only in-progress games change status")

	// a second deal reopens the game until its own reset
	require.NoError(t, store.InsertGameActions(ctx, []cache.GameActionRecord{
		{GameID: gameID, ActionIndex: 3, ActorSeat: cache.SystemSeat, ActionType: "game_start", ActionPayload: map[string]interface{}{"playerCount": 3}, Timestamp: time.Now().UnixMilli()},
	}))
	require.NoError(t, store.ReopenGame(ctx, gameID))
	var ended *time.Time
	require.NoError(t, pool.QueryRow(ctx, `SELECT status, end_time FROM games WHERE id = $1`, gameID).Scan(&status, &ended))
	assert.Equal(t, StatusInProgress, status)
	assert.Nil(t, ended)

	require.NoError(t, store.MarkGameStatus(ctx, gameID, StatusAbandoned))
	require.NoError(t, pool.QueryRow(ctx, `SELECT status FROM games WHERE id = $1`, gameID).Scan(&status))
	assert.Equal(t, StatusAbandoned, status)
}
