package table

import (
	"context"

	"github.com/jackc/pgx/v5"

	"card-room/internal/game"
	"card-room/internal/store"
)

// TxOps is what one service operation may do inside a single atomic commit.
// SaveState carries the optimistic version check; everything else commits or
// rolls back with it.
type TxOps interface {
	StateForUpdate(tableID string) (*game.TableState, error)
	SaveState(st *game.TableState, expectedVersion int64) error
	BeginRequest(tableID, userID, requestID, kind string) (*store.ActionRequest, bool, error)
	CompleteRequest(tableID, userID, requestID string, response any) error
	Transfer(from, to string, amount int64, entryType, refType, refID string) error
	PutHoleCards(tableID, handID string, holes map[string][]game.Card) error
	InsertHand(handID, tableID string, seed int64) error
	FinishHand(handID string, pot int64) error
}

// Storage is the persistence surface the service needs. *store.Store
// implements it via pgStorage; tests substitute an in-memory version.
type Storage interface {
	GetState(ctx context.Context, tableID string) (*game.TableState, error)
	CreateState(ctx context.Context, st *game.TableState) error
	GetRequest(ctx context.Context, tableID, userID, requestID string) (*store.ActionRequest, error)
	GetHoleCards(ctx context.Context, tableID, handID, userID string) ([]game.Card, error)
	InTx(ctx context.Context, fn func(ops TxOps) error) error
}

// NewStorage adapts the Postgres store to the service's Storage interface.
func NewStorage(st *store.Store) Storage {
	return &pgStorage{st: st}
}

type pgStorage struct {
	st *store.Store
}

func (p *pgStorage) GetState(ctx context.Context, tableID string) (*game.TableState, error) {
	return p.st.GetTableState(ctx, tableID)
}

func (p *pgStorage) CreateState(ctx context.Context, st *game.TableState) error {
	return p.st.InsertTableState(ctx, st)
}

func (p *pgStorage) GetRequest(ctx context.Context, tableID, userID, requestID string) (*store.ActionRequest, error) {
	return p.st.GetActionRequest(ctx, tableID, userID, requestID)
}

func (p *pgStorage) GetHoleCards(ctx context.Context, tableID, handID, userID string) ([]game.Card, error) {
	return p.st.GetHoleCards(ctx, tableID, handID, userID)
}

func (p *pgStorage) InTx(ctx context.Context, fn func(ops TxOps) error) error {
	return p.st.WithTx(ctx, func(tx pgx.Tx) error {
		return fn(&pgTxOps{st: p.st, tx: tx, ctx: ctx})
	})
}

type pgTxOps struct {
	st  *store.Store
	tx  pgx.Tx
	ctx context.Context
}

func (o *pgTxOps) StateForUpdate(tableID string) (*game.TableState, error) {
	return o.st.GetTableStateForUpdate(o.ctx, o.tx, tableID)
}

func (o *pgTxOps) SaveState(st *game.TableState, expectedVersion int64) error {
	return o.st.UpdateTableState(o.ctx, o.tx, st, expectedVersion)
}

func (o *pgTxOps) BeginRequest(tableID, userID, requestID, kind string) (*store.ActionRequest, bool, error) {
	return o.st.BeginActionRequest(o.ctx, o.tx, tableID, userID, requestID, kind)
}

func (o *pgTxOps) CompleteRequest(tableID, userID, requestID string, response any) error {
	return o.st.CompleteActionRequest(o.ctx, o.tx, tableID, userID, requestID, response)
}

func (o *pgTxOps) Transfer(from, to string, amount int64, entryType, refType, refID string) error {
	return o.st.Transfer(o.ctx, o.tx, from, to, amount, entryType, refType, refID)
}

func (o *pgTxOps) PutHoleCards(tableID, handID string, holes map[string][]game.Card) error {
	return o.st.PutHoleCards(o.ctx, o.tx, tableID, handID, holes)
}

func (o *pgTxOps) InsertHand(handID, tableID string, seed int64) error {
	return o.st.InsertHand(o.ctx, o.tx, handID, tableID, seed)
}

func (o *pgTxOps) FinishHand(handID string, pot int64) error {
	return o.st.FinishHand(o.ctx, o.tx, handID, pot)
}
