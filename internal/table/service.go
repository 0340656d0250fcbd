package table

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/coder/quartz"

	"card-room/internal/config"
	"card-room/internal/game"
	"card-room/internal/game/viewmodel"
	"card-room/internal/store"
)

const maxSeats = 9

const (
	kindJoin      = "join"
	kindLeave     = "leave"
	kindStartHand = "start_hand"
	kindAct       = "act"
)

// Service owns every table mutation. Reads and writes go through the
// persisted aggregate: no table state lives in process memory, so any number
// of server replicas can serve the same table.
type Service struct {
	storage Storage
	cfg     config.TableConfig
	clock   quartz.Clock
	policy  game.BotPolicy
	newID   func() string

	seedMu  sync.Mutex
	seedSrc *rand.Rand
}

type Option func(*Service)

// WithClock injects a test clock for turn-timeout control.
func WithClock(c quartz.Clock) Option {
	return func(s *Service) { s.clock = c }
}

func WithBotPolicy(p game.BotPolicy) Option {
	return func(s *Service) { s.policy = p }
}

// WithIDSource overrides id and seed generation for deterministic tests.
func WithIDSource(newID func() string, seed int64) Option {
	return func(s *Service) {
		s.newID = newID
		s.seedSrc = rand.New(rand.NewSource(seed))
	}
}

func New(storage Storage, cfg config.TableConfig, opts ...Option) *Service {
	s := &Service{
		storage: storage,
		cfg:     cfg,
		clock:   quartz.NewReal(),
		policy:  game.CallingStation{},
		newID:   store.NewID,
		seedSrc: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Service) nextSeed() int64 {
	s.seedMu.Lock()
	defer s.seedMu.Unlock()
	return s.seedSrc.Int63()
}

func (s *Service) turnTimeout() time.Duration {
	return time.Duration(s.cfg.TurnTimeoutSecs) * time.Second
}

type CreateParams struct {
	SmallBlind int64
	BigBlind   int64
}

// CreateTable registers an empty table and returns its id.
func (s *Service) CreateTable(ctx context.Context, p CreateParams) (string, error) {
	sb, bb := p.SmallBlind, p.BigBlind
	if sb <= 0 {
		sb = s.cfg.DefaultSmallBlind
	}
	if bb <= 0 {
		bb = s.cfg.DefaultBigBlind
	}
	if bb < sb {
		bb = sb * 2
	}
	st := game.NewTableState(s.newID(), sb, bb, s.turnTimeout())
	if err := s.storage.CreateState(ctx, st); err != nil {
		return "", err
	}
	return st.TableID, nil
}

type JoinParams struct {
	TableID   string
	UserID    string
	RequestID string
	SeatNo    int
	BuyIn     int64
	IsBot     bool
}

type JoinResult struct {
	TableID  string              `json:"table_id"`
	UserID   string              `json:"user_id"`
	SeatNo   int                 `json:"seat_no"`
	Stack    int64               `json:"stack"`
	State    viewmodel.TableView `json:"state"`
	Replayed bool                `json:"-"`
}

// Join seats the user with a fresh buy-in moved into the table escrow. Runs
// under a row lock: seating must never race.
func (s *Service) Join(ctx context.Context, p JoinParams) (JoinResult, error) {
	if p.BuyIn <= 0 {
		p.BuyIn = s.cfg.DefaultBuyIn
	}
	if p.BuyIn <= 0 {
		return JoinResult{}, ErrInvalidBuyIn
	}
	var res JoinResult
	err := s.lockedOp(ctx, p.TableID, p.UserID, p.RequestID, kindJoin, &res, func(st *game.TableState, fx *effects) error {
		if _, seated := st.SeatOf(p.UserID); seated {
			return ErrAlreadySeated
		}
		seatNo, err := pickSeat(st, p.SeatNo)
		if err != nil {
			return err
		}
		st.Seats = append(st.Seats, game.Seat{UserID: p.UserID, SeatNo: seatNo, IsBot: p.IsBot})
		st.Stacks[p.UserID] += p.BuyIn
		st.SitBackIn(p.UserID)

		from := store.UserAccount(p.UserID)
		entry := "buy_in"
		if p.IsBot {
			// Bot stacks are staked by the house.
			from = store.TreasuryAccount
			entry = "bot_stake"
		}
		fx.transfer(from, store.EscrowAccount(p.TableID), p.BuyIn, entry, "table", p.TableID)

		res = JoinResult{TableID: p.TableID, UserID: p.UserID, SeatNo: seatNo, Stack: st.Stacks[p.UserID]}
		return nil
	})
	return res, err
}

func pickSeat(st *game.TableState, want int) (int, error) {
	taken := map[int]bool{}
	for _, seat := range st.Seats {
		taken[seat.SeatNo] = true
	}
	if want > 0 {
		if want > maxSeats {
			return 0, game.ErrSeatTaken
		}
		if taken[want] {
			return 0, game.ErrSeatTaken
		}
		return want, nil
	}
	for n := 1; n <= maxSeats; n++ {
		if !taken[n] {
			return n, nil
		}
	}
	return 0, game.ErrSeatTaken
}

type LeaveResult struct {
	TableID  string              `json:"table_id"`
	UserID   string              `json:"user_id"`
	CashOut  int64               `json:"cash_out"`
	State    viewmodel.TableView `json:"state"`
	Replayed bool                `json:"-"`
}

// Leave unseats the user and returns their uncommitted stack from escrow.
// Leaving mid-hand folds them; chips already in the pot stay contested.
func (s *Service) Leave(ctx context.Context, tableID, userID, requestID string) (LeaveResult, error) {
	var res LeaveResult
	err := s.lockedOp(ctx, tableID, userID, requestID, kindLeave, &res, func(st *game.TableState, fx *effects) error {
		lr, _ := st.ApplyLeave(userID, s.clock.Now())
		if !lr.AlreadyOut && lr.CashOut > 0 {
			fx.transfer(store.EscrowAccount(tableID), store.UserAccount(userID), lr.CashOut, "cash_out", "table", tableID)
		}
		res = LeaveResult{TableID: tableID, UserID: userID, CashOut: lr.CashOut}
		return nil
	})
	return res, err
}

type StartHandResult struct {
	TableID  string              `json:"table_id"`
	HandID   string              `json:"hand_id,omitempty"`
	Started  bool                `json:"started"`
	Reason   string              `json:"reason,omitempty"`
	State    viewmodel.TableView `json:"state"`
	Replayed bool                `json:"-"`
}

// StartHand deals the next hand, or reports why it could not be dealt.
func (s *Service) StartHand(ctx context.Context, tableID, userID, requestID string) (StartHandResult, error) {
	var res StartHandResult
	err := s.lockedOp(ctx, tableID, userID, requestID, kindStartHand, &res, func(st *game.TableState, fx *effects) error {
		if st.Phase.Betting() {
			return game.ErrHandInProgress
		}
		started := s.rotateHand(st, fx)
		res = StartHandResult{TableID: tableID, HandID: st.HandID, Started: started}
		if !started {
			res.HandID = ""
			res.Reason = "not_enough_players"
		}
		return nil
	})
	return res, err
}

// lockedOp is the row-locked mutation pipeline: claim the idempotency key,
// lock the row, run maintenance and the command, persist everything in one
// commit. Replays return the stored response without touching the table.
func (s *Service) lockedOp(ctx context.Context, tableID, userID, requestID, kind string, result any, fn func(st *game.TableState, fx *effects) error) error {
	if requestID != "" {
		if done, err := s.replay(ctx, tableID, userID, requestID, kind, result); done || err != nil {
			return err
		}
	}
	return s.storage.InTx(ctx, func(ops TxOps) error {
		st, err := ops.StateForUpdate(tableID)
		if err != nil {
			return err
		}
		if requestID != "" {
			rec, inserted, err := ops.BeginRequest(tableID, userID, requestID, kind)
			if err != nil {
				return err
			}
			if !inserted {
				return s.decodeRecord(rec, kind, result)
			}
		}
		loaded := st.Version
		fx := newEffects()
		s.maintain(st, fx)
		if err := fn(st, fx); err != nil {
			return err
		}
		s.noteSettled(st, fx)
		if err := ops.SaveState(st, loaded); err != nil {
			return err
		}
		if err := fx.apply(tableID, ops); err != nil {
			return err
		}
		attachView(result, st, userID)
		if requestID != "" {
			return ops.CompleteRequest(tableID, userID, requestID, result)
		}
		return nil
	})
}

// attachView stamps the caller's projection of the committed state onto the
// response, so a mutation answers with the table it produced and no follow-up
// read is needed. The stored replay carries the same view.
func attachView(result any, st *game.TableState, viewerID string) {
	view := viewmodel.BuildTableView(st, viewerID)
	switch r := result.(type) {
	case *JoinResult:
		r.State = view
	case *LeaveResult:
		r.State = view
	case *StartHandResult:
		r.State = view
	case *ActResult:
		r.State = view
	}
}

// replay serves a finished request from its stored response. Returns
// done=true when the caller should not run the operation.
func (s *Service) replay(ctx context.Context, tableID, userID, requestID, kind string, result any) (bool, error) {
	rec, err := s.storage.GetRequest(ctx, tableID, userID, requestID)
	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, s.decodeRecord(rec, kind, result)
}

func (s *Service) decodeRecord(rec *store.ActionRequest, kind string, result any) error {
	if rec.Kind != kind {
		return ErrRequestMismatch
	}
	if rec.Status != store.RequestDone {
		return ErrRequestPending
	}
	if err := json.Unmarshal(rec.Response, result); err != nil {
		return err
	}
	markReplayed(result)
	return nil
}

func markReplayed(result any) {
	switch r := result.(type) {
	case *JoinResult:
		r.Replayed = true
	case *LeaveResult:
		r.Replayed = true
	case *StartHandResult:
		r.Replayed = true
	case *ActResult:
		r.Replayed = true
	}
}
