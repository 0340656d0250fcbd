package game

import "time"

type Phase string

const (
	PhaseInit     Phase = "init"
	PhasePreflop  Phase = "preflop"
	PhaseFlop     Phase = "flop"
	PhaseTurn     Phase = "turn"
	PhaseRiver    Phase = "river"
	PhaseSettled  Phase = "settled"
	PhaseHandDone Phase = "hand_done"
)

func (p Phase) Betting() bool {
	switch p {
	case PhasePreflop, PhaseFlop, PhaseTurn, PhaseRiver:
		return true
	}
	return false
}

type ActionType string

const (
	ActionFold  ActionType = "fold"
	ActionCheck ActionType = "check"
	ActionCall  ActionType = "call"
	ActionBet   ActionType = "bet"
	ActionRaise ActionType = "raise"
)

// Action is the tagged payload applied by the reducer. Amount is meaningful
// only for bet (chips added) and raise (raise-to total for the round).
type Action struct {
	Type      ActionType `json:"type"`
	UserID    string     `json:"user_id"`
	Amount    int64      `json:"amount,omitempty"`
	RequestID string     `json:"request_id,omitempty"`
}

type Seat struct {
	UserID string `json:"user_id"`
	SeatNo int    `json:"seat_no"`
	IsBot  bool   `json:"is_bot,omitempty"`
}

// ShowdownResult reveals hole cards after a contested river. It carries the
// hand it describes; a payload from a prior hand is dropped on load.
type ShowdownResult struct {
	HandID   string            `json:"hand_id"`
	Revealed map[string][]Card `json:"revealed"`
}

type HandSettlement struct {
	HandID  string           `json:"hand_id"`
	Pot     int64            `json:"pot"`
	Payouts map[string]int64 `json:"payouts"`
}

// TableState is the versioned aggregate, one row per table. Deck and
// HoleCards are private; viewmodel strips them before anything leaves the
// server.
type TableState struct {
	TableID    string `json:"table_id"`
	Phase      Phase  `json:"phase"`
	SmallBlind int64  `json:"small_blind"`
	BigBlind   int64  `json:"big_blind"`

	// Seats is live seating, mutated by join/leave. HandSeats is the frozen
	// snapshot taken at hand start and is the only source of truth for turn
	// order and pot eligibility while a hand runs.
	Seats     []Seat `json:"seats"`
	HandSeats []Seat `json:"hand_seats,omitempty"`

	Stacks map[string]int64 `json:"stacks"`

	Pot            int64  `json:"pot"`
	Community      []Card `json:"community"`
	CommunityDealt int    `json:"community_dealt"`

	Deck      []Card            `json:"deck,omitempty"`
	HoleCards map[string][]Card `json:"hole_cards,omitempty"`

	DealerSeatNo int    `json:"dealer_seat_no"`
	TurnUserID   string `json:"turn_user_id"`
	TurnNo       int    `json:"turn_no"`
	HandID       string `json:"hand_id"`
	HandSeed     int64  `json:"hand_seed"`

	ToCall       map[string]int64 `json:"to_call"`
	BetThisRound map[string]int64 `json:"bet_this_round"`
	Acted        map[string]bool  `json:"acted"`
	Folded       map[string]bool  `json:"folded"`
	AllIn        map[string]bool  `json:"all_in"`
	Contrib      map[string]int64 `json:"contrib"`

	LeftTable         map[string]bool `json:"left_table"`
	SitOut            map[string]bool `json:"sit_out"`
	PendingAutoSitOut map[string]bool `json:"pending_auto_sit_out"`
	MissedTurns       map[string]int  `json:"missed_turns"`

	CurrentBet    int64  `json:"current_bet"`
	LastRaiseSize int64  `json:"last_raise_size"`
	LastAggressor string `json:"last_aggressor,omitempty"`

	TurnStartedAt  time.Time     `json:"turn_started_at"`
	TurnDeadlineAt time.Time     `json:"turn_deadline_at"`
	TurnTimeout    time.Duration `json:"turn_timeout"`

	// Last applied requestId per user; in-state replay guard independent of
	// the external idempotency ledger (auto-actions rely on it).
	LastActionRequestID map[string]string `json:"last_action_request_id"`

	Showdown   *ShowdownResult `json:"showdown,omitempty"`
	Settlement *HandSettlement `json:"settlement,omitempty"`

	Version int64 `json:"version"`
}

const (
	// MissedTurnLimit is the missed-turn count at which a player is parked
	// sitting out.
	MissedTurnLimit = 2

	DefaultTurnTimeout = 30 * time.Second
)

func NewTableState(tableID string, sb, bb int64, turnTimeout time.Duration) *TableState {
	if turnTimeout <= 0 {
		turnTimeout = DefaultTurnTimeout
	}
	return &TableState{
		TableID:             tableID,
		Phase:               PhaseInit,
		SmallBlind:          sb,
		BigBlind:            bb,
		TurnTimeout:         turnTimeout,
		Stacks:              map[string]int64{},
		ToCall:              map[string]int64{},
		BetThisRound:        map[string]int64{},
		Acted:               map[string]bool{},
		Folded:              map[string]bool{},
		AllIn:               map[string]bool{},
		Contrib:             map[string]int64{},
		LeftTable:           map[string]bool{},
		SitOut:              map[string]bool{},
		PendingAutoSitOut:   map[string]bool{},
		MissedTurns:         map[string]int{},
		LastActionRequestID: map[string]string{},
	}
}

// EnsureMaps backfills nil maps after a JSON round trip through storage.
func (s *TableState) EnsureMaps() {
	if s.Stacks == nil {
		s.Stacks = map[string]int64{}
	}
	if s.ToCall == nil {
		s.ToCall = map[string]int64{}
	}
	if s.BetThisRound == nil {
		s.BetThisRound = map[string]int64{}
	}
	if s.Acted == nil {
		s.Acted = map[string]bool{}
	}
	if s.Folded == nil {
		s.Folded = map[string]bool{}
	}
	if s.AllIn == nil {
		s.AllIn = map[string]bool{}
	}
	if s.Contrib == nil {
		s.Contrib = map[string]int64{}
	}
	if s.LeftTable == nil {
		s.LeftTable = map[string]bool{}
	}
	if s.SitOut == nil {
		s.SitOut = map[string]bool{}
	}
	if s.PendingAutoSitOut == nil {
		s.PendingAutoSitOut = map[string]bool{}
	}
	if s.MissedTurns == nil {
		s.MissedTurns = map[string]int{}
	}
	if s.LastActionRequestID == nil {
		s.LastActionRequestID = map[string]string{}
	}
}

// DropStalePayloads discards showdown/settlement payloads describing a prior
// hand. Called right after the state is loaded from storage.
func (s *TableState) DropStalePayloads() {
	if s.Showdown != nil && s.Showdown.HandID != s.HandID {
		s.Showdown = nil
	}
	if s.Settlement != nil && s.Settlement.HandID != s.HandID {
		s.Settlement = nil
	}
}

func (s *TableState) SeatOf(userID string) (Seat, bool) {
	for _, st := range s.Seats {
		if st.UserID == userID {
			return st, true
		}
	}
	return Seat{}, false
}

func (s *TableState) HandSeatOf(userID string) (Seat, bool) {
	for _, st := range s.HandSeats {
		if st.UserID == userID {
			return st, true
		}
	}
	return Seat{}, false
}

// InHand reports whether the user is a live participant of the current hand:
// in the frozen snapshot, not folded, not left.
func (s *TableState) InHand(userID string) bool {
	if _, ok := s.HandSeatOf(userID); !ok {
		return false
	}
	return !s.Folded[userID] && !s.LeftTable[userID]
}

// CanAct reports whether the user could take a voluntary action this round.
func (s *TableState) CanAct(userID string) bool {
	return s.InHand(userID) && !s.AllIn[userID] && !s.SitOut[userID]
}

// EligibleNextHand counts seated users who would be dealt into a fresh hand.
func (s *TableState) EligibleNextHand() int {
	n := 0
	for _, st := range s.Seats {
		if !s.LeftTable[st.UserID] && !s.SitOut[st.UserID] && s.Stacks[st.UserID] > 0 {
			n++
		}
	}
	return n
}

// TotalChips is pot plus every tracked stack; conserved across reducer
// operations within a hand.
func (s *TableState) TotalChips() int64 {
	total := s.Pot
	for _, v := range s.Stacks {
		total += v
	}
	return total
}
