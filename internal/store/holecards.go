package store

import (
	"context"
	"encoding/json"

	"card-room/internal/game"
)

// PutHoleCards records each participant's private cards for one hand. Rows
// are written once at deal time and never updated.
func (s *Store) PutHoleCards(ctx context.Context, q dbtx, tableID, handID string, holes map[string][]game.Card) error {
	for userID, cards := range holes {
		blob, err := json.Marshal(cards)
		if err != nil {
			return err
		}
		if _, err := q.Exec(ctx, `
			INSERT INTO hole_cards (table_id, hand_id, user_id, cards)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (table_id, hand_id, user_id) DO NOTHING`,
			tableID, handID, userID, blob); err != nil {
			return err
		}
	}
	return nil
}

// GetHoleCards returns one player's cards for one hand. The lookup is keyed
// by viewer, so a player can never fetch another player's cards.
func (s *Store) GetHoleCards(ctx context.Context, tableID, handID, userID string) ([]game.Card, error) {
	var blob []byte
	err := s.Pool.QueryRow(ctx, `
		SELECT cards FROM hole_cards
		WHERE table_id = $1 AND hand_id = $2 AND user_id = $3`,
		tableID, handID, userID).Scan(&blob)
	if err != nil {
		return nil, mapNotFound(err)
	}
	var cards []game.Card
	if err := json.Unmarshal(blob, &cards); err != nil {
		return nil, err
	}
	return cards, nil
}
