package table

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"

	"card-room/internal/game"
	"card-room/internal/game/viewmodel"
	"card-room/internal/store"
)

// effects collects the non-state writes an operation produced, applied in
// the same transaction as the state save.
type effects struct {
	transfers []pendingTransfer
	newHands  []pendingHand
	finished  map[string]int64
}

type pendingTransfer struct {
	from, to  string
	amount    int64
	entryType string
	refType   string
	refID     string
}

type pendingHand struct {
	handID string
	seed   int64
	holes  map[string][]game.Card
}

func newEffects() *effects {
	return &effects{finished: map[string]int64{}}
}

func (fx *effects) transfer(from, to string, amount int64, entryType, refType, refID string) {
	fx.transfers = append(fx.transfers, pendingTransfer{from, to, amount, entryType, refType, refID})
}

func (fx *effects) handStarted(st *game.TableState) {
	holes := make(map[string][]game.Card, len(st.HoleCards))
	for u, cards := range st.HoleCards {
		holes[u] = append([]game.Card{}, cards...)
	}
	fx.newHands = append(fx.newHands, pendingHand{handID: st.HandID, seed: st.HandSeed, holes: holes})
}

func (fx *effects) handFinished(handID string, pot int64) {
	if _, ok := fx.finished[handID]; !ok {
		fx.finished[handID] = pot
	}
}

func (fx *effects) apply(tableID string, ops TxOps) error {
	for _, h := range fx.newHands {
		if err := ops.InsertHand(h.handID, tableID, h.seed); err != nil {
			return err
		}
		if err := ops.PutHoleCards(tableID, h.handID, h.holes); err != nil {
			return err
		}
	}
	for handID, pot := range fx.finished {
		if err := ops.FinishHand(handID, pot); err != nil {
			return err
		}
	}
	for _, t := range fx.transfers {
		if err := ops.Transfer(t.from, t.to, t.amount, t.entryType, t.refType, t.refID); err != nil {
			return err
		}
	}
	return nil
}

// maintain is the lazy upkeep every touch performs before its own command:
// rotate past a finished hand, expire overdue turns, let seated bots play.
// Reports whether it changed the state.
func (s *Service) maintain(st *game.TableState, fx *effects) bool {
	now := s.clock.Now()
	changed := false
	if ev := st.PromoteInactive(); len(ev) > 0 {
		changed = true
	}
	if st.Phase == game.PhaseHandDone {
		s.rotateHand(st, fx)
		changed = true
	}
	events, err := st.ExpireOverdueTurns(now)
	if len(events) > 0 {
		changed = true
	}
	if err != nil {
		log.Error().Err(err).Str("table_id", st.TableID).Str("hand_id", st.HandID).Msg("turn expiry failed")
		return changed
	}
	if s.drainBots(st, fx) {
		changed = true
	}
	s.noteSettled(st, fx)
	return changed
}

// noteSettled records the finished-hand row for a settlement produced during
// this operation.
func (s *Service) noteSettled(st *game.TableState, fx *effects) {
	if st.Phase == game.PhaseHandDone && st.Settlement != nil {
		fx.handFinished(st.Settlement.HandID, st.Settlement.Pot)
	}
}

type ActParams struct {
	TableID   string
	UserID    string
	RequestID string
	Action    game.ActionType
	Amount    int64
}

type ActResult struct {
	TableID  string              `json:"table_id"`
	HandID   string              `json:"hand_id"`
	TurnNo   int                 `json:"turn_no"`
	Version  int64               `json:"version"`
	State    viewmodel.TableView `json:"state"`
	Replayed bool                `json:"-"`
}

// Act applies one player action through the optimistic pipeline: load,
// maintain, apply, then a versioned save. A lost race reloads and retries;
// the idempotency record commits atomically with the state it describes.
func (s *Service) Act(ctx context.Context, p ActParams) (ActResult, error) {
	var res ActResult
	err := s.casOp(ctx, p.TableID, p.UserID, p.RequestID, kindAct, &res, func(st *game.TableState, fx *effects) error {
		now := s.clock.Now()
		a := game.Action{Type: p.Action, UserID: p.UserID, Amount: p.Amount, RequestID: p.RequestID}
		if _, err := st.Apply(a, now); err != nil {
			if errors.Is(err, game.ErrContractMismatch) {
				log.Error().
					Str("table_id", p.TableID).
					Str("hand_id", st.HandID).
					Str("actor", p.UserID).
					Msg("empty legal action set for the acting player")
			}
			return err
		}
		st.AdvanceIfNeeded(now)
		if s.drainBots(st, fx) {
			s.noteSettled(st, fx)
		}
		res = ActResult{TableID: p.TableID, HandID: st.HandID, TurnNo: st.TurnNo}
		return nil
	})
	return res, err
}

// Heartbeat is the liveness touch: it runs the maintenance pipeline so a
// stalled table makes progress, and sits the caller back in after an
// inactivity sit-out. Persists only when something changed.
func (s *Service) Heartbeat(ctx context.Context, tableID, userID string) (*game.TableState, error) {
	return s.touch(ctx, tableID, func(st *game.TableState) bool {
		if userID == "" {
			return false
		}
		return st.SitBackIn(userID)
	})
}

// State returns the aggregate after lazy upkeep, for building a view.
func (s *Service) State(ctx context.Context, tableID string) (*game.TableState, error) {
	return s.touch(ctx, tableID, nil)
}

// View projects the table for one viewer, upkeep included.
func (s *Service) View(ctx context.Context, tableID, viewerID string) (viewmodel.TableView, error) {
	st, err := s.Heartbeat(ctx, tableID, viewerID)
	if err != nil {
		return viewmodel.TableView{}, err
	}
	return viewmodel.BuildTableView(st, viewerID), nil
}

// HoleCards returns the viewer's own cards for a hand; the key includes the
// viewer so nothing else can be fetched.
func (s *Service) HoleCards(ctx context.Context, tableID, handID, userID string) ([]game.Card, error) {
	return s.storage.GetHoleCards(ctx, tableID, handID, userID)
}

const casAttempts = 3

// touch loads the table, runs maintenance plus an optional extra mutation,
// and saves under the optimistic version check only when needed.
func (s *Service) touch(ctx context.Context, tableID string, extra func(*game.TableState) bool) (*game.TableState, error) {
	var last error
	for attempt := 0; attempt < casAttempts; attempt++ {
		st, err := s.storage.GetState(ctx, tableID)
		if err != nil {
			return nil, err
		}
		loaded := st.Version
		fx := newEffects()
		changed := s.maintain(st, fx)
		if extra != nil && extra(st) {
			changed = true
		}
		if !changed {
			return st, nil
		}
		err = s.storage.InTx(ctx, func(ops TxOps) error {
			if err := ops.SaveState(st, loaded); err != nil {
				return err
			}
			return fx.apply(tableID, ops)
		})
		if err == nil {
			return st, nil
		}
		if !errors.Is(err, store.ErrVersionConflict) {
			return nil, err
		}
		last = err
	}
	_ = last
	return nil, ErrStateConflict
}

// casOp is the optimistic mutation pipeline for the hot path. The request
// claim, the versioned state save and the side effects commit together; a
// version conflict retries from a fresh load with nothing persisted.
func (s *Service) casOp(ctx context.Context, tableID, userID, requestID, kind string, result any, fn func(st *game.TableState, fx *effects) error) error {
	if requestID != "" {
		if done, err := s.replay(ctx, tableID, userID, requestID, kind, result); done || err != nil {
			return err
		}
	}
	for attempt := 0; attempt < casAttempts; attempt++ {
		st, err := s.storage.GetState(ctx, tableID)
		if err != nil {
			return err
		}
		loaded := st.Version
		fx := newEffects()
		maintChanged := s.maintain(st, fx)

		if cmdErr := fn(st, fx); cmdErr != nil {
			// The command failed; still persist whatever maintenance did, but
			// without consuming the request id.
			if maintChanged {
				if _, err := s.persistMaintenance(ctx, tableID, st, fx, loaded); err != nil {
					return err
				}
			}
			return cmdErr
		}
		s.noteSettled(st, fx)

		err = s.storage.InTx(ctx, func(ops TxOps) error {
			if requestID != "" {
				rec, inserted, err := ops.BeginRequest(tableID, userID, requestID, kind)
				if err != nil {
					return err
				}
				if !inserted {
					return s.decodeRecord(rec, kind, result)
				}
			}
			if err := ops.SaveState(st, loaded); err != nil {
				return err
			}
			if err := fx.apply(tableID, ops); err != nil {
				return err
			}
			if v, ok := result.(*ActResult); ok {
				v.Version = st.Version
			}
			attachView(result, st, userID)
			if requestID != "" {
				return ops.CompleteRequest(tableID, userID, requestID, result)
			}
			return nil
		})
		if err == nil {
			return nil
		}
		if !errors.Is(err, store.ErrVersionConflict) {
			return err
		}
	}
	return ErrStateConflict
}

func (s *Service) persistMaintenance(ctx context.Context, tableID string, st *game.TableState, fx *effects, loaded int64) (bool, error) {
	s.noteSettled(st, fx)
	err := s.storage.InTx(ctx, func(ops TxOps) error {
		if err := ops.SaveState(st, loaded); err != nil {
			return err
		}
		return fx.apply(tableID, ops)
	})
	if errors.Is(err, store.ErrVersionConflict) {
		// Someone else already advanced the table; their write includes the
		// same lazy upkeep.
		return false, nil
	}
	return err == nil, err
}
