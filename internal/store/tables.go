package store

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"card-room/internal/game"
)

// dbtx is the subset of pgxpool.Pool and pgx.Tx the queries need, so every
// query can run either standalone or inside a transaction.
type dbtx interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func (s *Store) InsertTableState(ctx context.Context, st *game.TableState) error {
	return insertTableState(ctx, s.Pool, st)
}

func insertTableState(ctx context.Context, q dbtx, st *game.TableState) error {
	st.Version = 1
	blob, err := json.Marshal(st)
	if err != nil {
		return err
	}
	_, err = q.Exec(ctx, `
		INSERT INTO table_states (id, small_blind, big_blind, state, version)
		VALUES ($1, $2, $3, $4, $5)`,
		st.TableID, st.SmallBlind, st.BigBlind, blob, st.Version)
	return err
}

func (s *Store) GetTableState(ctx context.Context, tableID string) (*game.TableState, error) {
	return getTableState(ctx, s.Pool, tableID, false)
}

// GetTableStateForUpdate locks the row until the surrounding transaction
// ends. Use for join/leave/start, where losing a race is not acceptable.
func (s *Store) GetTableStateForUpdate(ctx context.Context, tx pgx.Tx, tableID string) (*game.TableState, error) {
	return getTableState(ctx, tx, tableID, true)
}

func getTableState(ctx context.Context, q dbtx, tableID string, forUpdate bool) (*game.TableState, error) {
	query := `SELECT state, version FROM table_states WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	var blob []byte
	var version int64
	if err := q.QueryRow(ctx, query, tableID).Scan(&blob, &version); err != nil {
		return nil, mapNotFound(err)
	}
	var st game.TableState
	if err := json.Unmarshal(blob, &st); err != nil {
		return nil, err
	}
	st.TableID = tableID
	st.Version = version
	st.EnsureMaps()
	st.DropStalePayloads()
	return &st, nil
}

// UpdateTableState persists the aggregate only if the row is still at
// expectedVersion, bumping it by one. ErrVersionConflict means the caller
// raced and must reload.
func (s *Store) UpdateTableState(ctx context.Context, q dbtx, st *game.TableState, expectedVersion int64) error {
	st.Version = expectedVersion + 1
	blob, err := json.Marshal(st)
	if err != nil {
		return err
	}
	tag, err := q.Exec(ctx, `
		UPDATE table_states
		SET state = $2, version = $3, updated_at = now()
		WHERE id = $1 AND version = $4`,
		st.TableID, blob, st.Version, expectedVersion)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		st.Version = expectedVersion
		return ErrVersionConflict
	}
	return nil
}

func (s *Store) ListTableIDs(ctx context.Context) ([]string, error) {
	rows, err := s.Pool.Query(ctx, `SELECT id FROM table_states ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}
