package store

import "context"

func (s *Store) InsertHand(ctx context.Context, q dbtx, handID, tableID string, seed int64) error {
	_, err := q.Exec(ctx, `
		INSERT INTO hands (id, table_id, seed)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO NOTHING`,
		handID, tableID, seed)
	return err
}

func (s *Store) FinishHand(ctx context.Context, q dbtx, handID string, pot int64) error {
	_, err := q.Exec(ctx, `
		UPDATE hands SET pot = $2, ended_at = now()
		WHERE id = $1 AND ended_at IS NULL`,
		handID, pot)
	return err
}

func (s *Store) GetHand(ctx context.Context, handID string) (*HandRecord, error) {
	row := s.Pool.QueryRow(ctx, `
		SELECT id, table_id, seed, pot, started_at, ended_at
		FROM hands WHERE id = $1`, handID)
	var h HandRecord
	if err := row.Scan(&h.ID, &h.TableID, &h.Seed, &h.Pot, &h.StartedAt, &h.EndedAt); err != nil {
		return nil, mapNotFound(err)
	}
	return &h, nil
}
