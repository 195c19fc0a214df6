// internal/database/game.go
package database

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jason-s-yu/skyjo/internal/cache"
)

// Game statuses stored in games.status.
const (
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusAbandoned  = "abandoned"
)

// Store writes historian batches to Postgres.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// InsertGameActions inserts all records in a single transaction, creating the
// game row on first sight. Re-delivered records are ignored.
func (s *Store) InsertGameActions(ctx context.Context, records []cache.GameActionRecord) error {
	if len(records) == 0 {
		return nil
	}
	err := pgx.BeginTxFunc(ctx, s.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		for _, rec := range records {
			if err := insertGameActionTx(ctx, tx, rec); err != nil {
				return fmt.Errorf("insert action %d of game %v: %w", rec.ActionIndex, rec.GameID, err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("tx insert game actions: %w", err)
	}
	return nil
}

// MarkGameStatus moves a game that is still in progress to status.
func (s *Store) MarkGameStatus(ctx context.Context, gameID uuid.UUID, status string) error {
	q := `
		UPDATE games
		SET status = $2, end_time = NOW()
		WHERE id = $1 AND status = 'in_progress'
	`
	err := pgx.BeginTxFunc(ctx, s.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		_, e := tx.Exec(ctx, q, gameID, status)
		return e
	})
	if err != nil {
		return fmt.Errorf("mark game %v %s: %w", gameID, status, err)
	}
	return nil
}

// ReopenGame puts a finished game back in progress when it is dealt again.
func (s *Store) ReopenGame(ctx context.Context, gameID uuid.UUID) error {
	q := `
		UPDATE games
		SET status = 'in_progress', start_time = NOW(), end_time = NULL
		WHERE id = $1 AND status <> 'in_progress'
	`
	if _, err := s.pool.Exec(ctx, q, gameID); err != nil {
		return fmt.Errorf("reopen game %v: %w", gameID, err)
	}
	return nil
}

func insertGameActionTx(ctx context.Context, tx pgx.Tx, rec cache.GameActionRecord) error {
	upsertGameQ := `
		INSERT INTO games (id, status, start_time)
		VALUES ($1, 'in_progress', NOW())
		ON CONFLICT (id) DO NOTHING
	`
	if _, err := tx.Exec(ctx, upsertGameQ, rec.GameID); err != nil {
		return err
	}

	jsonPayload, err := json.Marshal(rec.ActionPayload)
	if err != nil {
		return err
	}
	actionInsertQ := `
		INSERT INTO game_actions (
			game_id, action_index, actor_seat, action_type, action_payload, recorded_at
		) VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (game_id, action_index) DO NOTHING
	`
	_, err = tx.Exec(ctx, actionInsertQ,
		rec.GameID, rec.ActionIndex, rec.ActorSeat, rec.ActionType, jsonPayload,
		time.UnixMilli(rec.Timestamp),
	)
	return err
}
