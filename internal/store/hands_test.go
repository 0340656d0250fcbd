package store

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"

	"card-room/internal/game"
)

func TestHandRecordLifecycle(t *testing.T) {
	st, ctx, cleanup := openStore(t)
	defer cleanup()

	err := st.WithTx(ctx, func(tx pgx.Tx) error {
		if err := st.InsertHand(ctx, tx, "h1", "t1", 42); err != nil {
			return err
		}
		// Replayed inserts are absorbed.
		return st.InsertHand(ctx, tx, "h1", "t1", 42)
	})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	err = st.WithTx(ctx, func(tx pgx.Tx) error {
		return st.FinishHand(ctx, tx, "h1", 150)
	})
	if err != nil {
		t.Fatalf("finish: %v", err)
	}

	h, err := st.GetHand(ctx, "h1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if h.Pot != 150 || h.EndedAt == nil {
		t.Fatalf("unexpected hand record: %+v", h)
	}
	endedAt := *h.EndedAt

	// Finishing again must not overwrite the settled row.
	err = st.WithTx(ctx, func(tx pgx.Tx) error {
		return st.FinishHand(ctx, tx, "h1", 999)
	})
	if err != nil {
		t.Fatalf("refinish: %v", err)
	}
	h, err = st.GetHand(ctx, "h1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if h.Pot != 150 || !h.EndedAt.Equal(endedAt) {
		t.Fatalf("finished hand was overwritten: %+v", h)
	}
}

func TestHoleCardsKeyedByViewer(t *testing.T) {
	st, ctx, cleanup := openStore(t)
	defer cleanup()

	holes := map[string][]game.Card{
		"a": {{Rank: game.Ace, Suit: game.Spades}, {Rank: game.King, Suit: game.Spades}},
		"b": {{Rank: game.Two, Suit: game.Hearts}, {Rank: game.Seven, Suit: game.Clubs}},
	}
	err := st.WithTx(ctx, func(tx pgx.Tx) error {
		return st.PutHoleCards(ctx, tx, "t1", "h1", holes)
	})
	if err != nil {
		t.Fatalf("put: %v", err)
	}

	cards, err := st.GetHoleCards(ctx, "t1", "h1", "a")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(cards) != 2 || cards[0].Rank != game.Ace {
		t.Fatalf("unexpected cards: %+v", cards)
	}

	if _, err := st.GetHoleCards(ctx, "t1", "h1", "ghost"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("outsider lookup must miss, got %v", err)
	}
	if _, err := st.GetHoleCards(ctx, "t1", "h2", "a"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("wrong hand lookup must miss, got %v", err)
	}
}

func TestUserLookupByToken(t *testing.T) {
	st, ctx, cleanup := openStore(t)
	defer cleanup()

	id, err := st.CreateUser(ctx, "alice", "tok-1", false)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	u, err := st.GetUserByToken(ctx, "tok-1")
	if err != nil {
		t.Fatalf("get by token: %v", err)
	}
	if u.ID != id || u.Name != "alice" || u.IsBot {
		t.Fatalf("unexpected user: %+v", u)
	}

	if _, err := st.GetUserByToken(ctx, "tok-wrong"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
