package game

import (
	"sort"
	"time"
)

// StartHand freezes the participant snapshot, deals hole cards from a deck
// seeded by the hand seed, posts blinds and hands the turn to first-to-act.
func (s *TableState) StartHand(handID string, seed int64, now time.Time) ([]Event, error) {
	if s.Phase.Betting() {
		return nil, ErrHandInProgress
	}
	participants := s.eligibleSeats()
	if len(participants) < 2 {
		return nil, ErrNotEnoughPlayers
	}

	s.HandSeats = participants
	s.HandID = handID
	s.HandSeed = seed
	s.Deck = NewShuffledDeck(seed)
	s.Community = nil
	s.CommunityDealt = 0
	s.Pot = 0
	s.CurrentBet = 0
	s.LastRaiseSize = s.BigBlind
	s.LastAggressor = ""
	s.Showdown = nil
	s.Settlement = nil
	s.HoleCards = map[string][]Card{}
	s.ToCall = map[string]int64{}
	s.BetThisRound = map[string]int64{}
	s.Acted = map[string]bool{}
	s.Folded = map[string]bool{}
	s.AllIn = map[string]bool{}
	s.Contrib = map[string]int64{}

	s.DealerSeatNo = s.nextSeatNoAfter(s.DealerSeatNo)

	for i := 0; i < 2; i++ {
		for _, seat := range s.handOrderFrom(s.DealerSeatNo) {
			s.HoleCards[seat.UserID] = append(s.HoleCards[seat.UserID], dealOne(s))
		}
	}

	sbSeat, bbSeat, firstSeat := s.blindSeats()
	s.post(sbSeat.UserID, s.SmallBlind)
	s.post(bbSeat.UserID, s.BigBlind)
	s.CurrentBet = s.BigBlind
	s.LastRaiseSize = s.BigBlind
	s.recomputeToCall()

	s.Phase = PhasePreflop
	s.setTurn(firstSeat.UserID, now)
	return []Event{{Type: EventHandStarted}}, nil
}

// Apply validates and applies a voluntary player action, then routes the
// turn. Callers follow up with AdvanceIfNeeded.
func (s *TableState) Apply(a Action, now time.Time) ([]Event, error) {
	return s.apply(a, now, true)
}

func (s *TableState) apply(a Action, now time.Time, manual bool) ([]Event, error) {
	if !s.Phase.Betting() {
		return nil, ErrHandNotStarted
	}
	set, cons, err := LegalActions(s, a.UserID)
	if err != nil {
		return nil, err
	}
	if a.UserID != s.TurnUserID {
		return nil, ErrNotYourTurn
	}
	if len(set) == 0 {
		// It is this user's turn yet the engine granted nothing: a bug in the
		// engine or the state, not bad input.
		return nil, ErrContractMismatch
	}
	if !containsAction(set, a.Type) {
		return nil, ErrActionNotAllowed
	}

	user := a.UserID
	var events []Event

	switch a.Type {
	case ActionFold:
		s.Folded[user] = true
	case ActionCheck:
		// no chips move
	case ActionCall:
		s.pay(user, min64(cons.ToCall, s.Stacks[user]))
	case ActionBet:
		minBet := min64(s.BigBlind, s.Stacks[user])
		if a.Amount < minBet || a.Amount > cons.MaxBet {
			return nil, ErrInvalidAmount
		}
		// The bet may open over an already-matched bet (the big blind option),
		// so the raise size is the increment, not the new total.
		prev := s.CurrentBet
		s.pay(user, a.Amount)
		s.CurrentBet = s.BetThisRound[user]
		s.LastRaiseSize = s.CurrentBet - prev
		s.LastAggressor = user
		s.reopenActionExcept(user)
	case ActionRaise:
		raiseTo := a.Amount
		if raiseTo <= s.CurrentBet || raiseTo > cons.MaxRaiseTo {
			return nil, ErrInvalidAmount
		}
		if raiseTo < cons.MinRaiseTo && raiseTo != cons.MaxRaiseTo {
			return nil, ErrInvalidAmount
		}
		prev := s.CurrentBet
		s.pay(user, raiseTo-s.BetThisRound[user])
		s.CurrentBet = raiseTo
		s.LastRaiseSize = raiseTo - prev
		s.LastAggressor = user
		s.reopenActionExcept(user)
	}

	s.Acted[user] = true
	s.recomputeToCall()
	if a.RequestID != "" {
		s.LastActionRequestID[user] = a.RequestID
	}

	if manual {
		s.MissedTurns[user] = 0
		delete(s.PendingAutoSitOut, user)
		if a.Type != ActionFold {
			delete(s.SitOut, user)
		}
	}

	events = append(events, s.routeTurn(user, now)...)
	return events, nil
}

// routeTurn hands the turn to the next eligible hand seat, or parks it when
// the round (or hand) is finished and AdvanceIfNeeded should take over.
func (s *TableState) routeTurn(afterUserID string, now time.Time) []Event {
	if len(s.liveUsers()) <= 1 || s.roundComplete() {
		s.TurnUserID = ""
		return nil
	}
	next, ok := s.nextEligibleAfter(afterUserID)
	if !ok {
		s.TurnUserID = ""
		return nil
	}
	s.setTurn(next, now)
	return nil
}

// AdvanceIfNeeded deals streets, fast-forwards all-in runouts and settles the
// hand once betting can no longer continue. Safe to call repeatedly.
func (s *TableState) AdvanceIfNeeded(now time.Time) []Event {
	var events []Event
	for s.Phase.Betting() {
		events = append(events, s.foldBlockedSitOuts()...)

		live := s.liveUsers()
		if len(live) == 1 {
			events = append(events, s.finishByFold(live[0])...)
			return events
		}
		if !s.roundComplete() {
			if s.TurnUserID == "" {
				if next, ok := s.nextEligibleAfter(s.lastToActAnchor()); ok {
					s.setTurn(next, now)
				}
			}
			return events
		}

		if s.Phase == PhaseRiver {
			events = append(events, s.settleShowdown()...)
			return events
		}
		events = append(events, s.dealNextStreet(now)...)
	}
	return events
}

func (s *TableState) dealNextStreet(now time.Time) []Event {
	switch s.Phase {
	case PhasePreflop:
		s.Community = append(s.Community, dealOne(s), dealOne(s), dealOne(s))
		s.Phase = PhaseFlop
	case PhaseFlop:
		s.Community = append(s.Community, dealOne(s))
		s.Phase = PhaseTurn
	case PhaseTurn:
		s.Community = append(s.Community, dealOne(s))
		s.Phase = PhaseRiver
	}
	s.CommunityDealt = len(s.Community)

	s.BetThisRound = map[string]int64{}
	s.Acted = map[string]bool{}
	s.ToCall = map[string]int64{}
	s.CurrentBet = 0
	s.LastRaiseSize = s.BigBlind
	s.LastAggressor = ""

	s.TurnUserID = ""
	if next, ok := s.nextEligibleAfter(s.dealerUserID()); ok {
		s.setTurn(next, now)
	}
	return []Event{{Type: EventStreetDealt, Reason: string(s.Phase)}}
}

// ApplyLeave removes the user from live seating. A live hand participant
// stays in the frozen snapshot, folded, so settlement math and turn routing
// remain correct; their uncommitted stack is returned for cash-out.
type LeaveResult struct {
	CashOut    int64
	AlreadyOut bool
}

func (s *TableState) ApplyLeave(userID string, now time.Time) (LeaveResult, []Event) {
	_, seated := s.SeatOf(userID)
	if !seated && s.LeftTable[userID] {
		return LeaveResult{AlreadyOut: true}, nil
	}
	if !seated {
		if _, known := s.Stacks[userID]; !known {
			return LeaveResult{AlreadyOut: true}, nil
		}
	}

	var events []Event
	s.removeSeat(userID)
	s.LeftTable[userID] = true

	res := LeaveResult{CashOut: s.Stacks[userID]}
	s.Stacks[userID] = 0

	if _, inSnapshot := s.HandSeatOf(userID); inSnapshot && s.Phase.Betting() {
		if !s.Folded[userID] {
			s.Folded[userID] = true
		}
		s.Acted[userID] = true
		if s.TurnUserID == userID {
			events = append(events, Event{Type: EventTurnSkippedByLeave, UserID: userID})
			events = append(events, s.routeTurn(userID, now)...)
		}
	} else {
		delete(s.Stacks, userID)
	}
	return res, events
}

// ResetToNextHand starts a fresh hand when at least two seated users remain
// eligible; otherwise the table parks in settled with no snapshot, waiting
// for joiners.
func (s *TableState) ResetToNextHand(handID string, seed int64, now time.Time) ([]Event, bool) {
	if s.Phase.Betting() {
		return nil, false
	}
	s.clearDeparted()
	if s.EligibleNextHand() < 2 {
		s.Phase = PhaseSettled
		s.HandSeats = nil
		s.TurnUserID = ""
		return []Event{{Type: EventHandResetSkipped, Reason: "not_enough_players"}}, false
	}
	events, err := s.StartHand(handID, seed, now)
	if err != nil {
		return []Event{{Type: EventHandResetSkipped, Reason: err.Error()}}, false
	}
	return events, true
}

// clearDeparted drops per-user residue for users who left once no hand needs
// their frozen entries any more.
func (s *TableState) clearDeparted() {
	for userID, left := range s.LeftTable {
		if !left {
			continue
		}
		if _, seated := s.SeatOf(userID); seated {
			// Rejoined before the old hand resolved; seat them fresh.
			delete(s.LeftTable, userID)
			continue
		}
		delete(s.Stacks, userID)
		delete(s.Contrib, userID)
		delete(s.Folded, userID)
		delete(s.Acted, userID)
		delete(s.AllIn, userID)
		delete(s.ToCall, userID)
		delete(s.BetThisRound, userID)
		delete(s.SitOut, userID)
		delete(s.PendingAutoSitOut, userID)
		delete(s.MissedTurns, userID)
		delete(s.LastActionRequestID, userID)
		delete(s.LeftTable, userID)
	}
}

// --- seating / routing helpers ---

func (s *TableState) eligibleSeats() []Seat {
	out := make([]Seat, 0, len(s.Seats))
	for _, seat := range s.Seats {
		if !s.LeftTable[seat.UserID] && !s.SitOut[seat.UserID] && s.Stacks[seat.UserID] > 0 {
			out = append(out, seat)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SeatNo < out[j].SeatNo })
	return out
}

func (s *TableState) removeSeat(userID string) {
	for i, seat := range s.Seats {
		if seat.UserID == userID {
			s.Seats = append(s.Seats[:i], s.Seats[i+1:]...)
			return
		}
	}
}

// nextSeatNoAfter picks the next eligible seat number strictly after n,
// wrapping, for dealer rotation.
func (s *TableState) nextSeatNoAfter(n int) int {
	seats := s.eligibleSeats()
	if len(seats) == 0 {
		return n
	}
	for _, seat := range seats {
		if seat.SeatNo > n {
			return seat.SeatNo
		}
	}
	return seats[0].SeatNo
}

// handOrderFrom returns hand seats ordered clockwise starting after seatNo.
func (s *TableState) handOrderFrom(seatNo int) []Seat {
	seats := append([]Seat{}, s.HandSeats...)
	sort.Slice(seats, func(i, j int) bool { return seats[i].SeatNo < seats[j].SeatNo })
	split := 0
	for i, seat := range seats {
		if seat.SeatNo > seatNo {
			split = i
			break
		}
	}
	return append(seats[split:], seats[:split]...)
}

func (s *TableState) blindSeats() (sb, bb, first Seat) {
	order := s.handOrderFrom(s.DealerSeatNo)
	var dealer Seat
	for _, seat := range s.HandSeats {
		if seat.SeatNo == s.DealerSeatNo {
			dealer = seat
		}
	}
	if len(s.HandSeats) == 2 {
		// Heads-up: dealer posts the small blind and acts first preflop.
		sb = dealer
		for _, seat := range s.HandSeats {
			if seat.SeatNo != s.DealerSeatNo {
				bb = seat
			}
		}
		return sb, bb, sb
	}
	sb = order[0]
	bb = order[1]
	first = order[2%len(order)]
	return sb, bb, first
}

func (s *TableState) dealerUserID() string {
	for _, seat := range s.HandSeats {
		if seat.SeatNo == s.DealerSeatNo {
			return seat.UserID
		}
	}
	if len(s.HandSeats) > 0 {
		return s.HandSeats[0].UserID
	}
	return ""
}

func (s *TableState) nextEligibleAfter(userID string) (string, bool) {
	if len(s.HandSeats) == 0 {
		return "", false
	}
	anchor, ok := s.HandSeatOf(userID)
	if !ok {
		anchor = Seat{SeatNo: s.DealerSeatNo}
	}
	// handOrderFrom starts just past the anchor seat and wraps, so the anchor
	// itself is considered last; the turn may legitimately come back around.
	for _, seat := range s.handOrderFrom(anchor.SeatNo) {
		if s.CanAct(seat.UserID) {
			return seat.UserID, true
		}
	}
	return "", false
}

func (s *TableState) lastToActAnchor() string {
	if s.LastAggressor != "" {
		return s.LastAggressor
	}
	return s.dealerUserID()
}

func (s *TableState) setTurn(userID string, now time.Time) {
	s.TurnUserID = userID
	s.TurnNo++
	s.TurnStartedAt = now
	s.TurnDeadlineAt = now.Add(s.TurnTimeout)
}

func (s *TableState) liveUsers() []string {
	out := make([]string, 0, len(s.HandSeats))
	for _, seat := range s.handOrderFrom(s.DealerSeatNo) {
		if !s.Folded[seat.UserID] {
			out = append(out, seat.UserID)
		}
	}
	return out
}

// roundComplete holds when every participant who could still act has acted
// with bets matched. All-in and sitting-out users never block completion.
func (s *TableState) roundComplete() bool {
	actable := make([]string, 0, len(s.HandSeats))
	for _, seat := range s.HandSeats {
		u := seat.UserID
		if s.Folded[u] || s.AllIn[u] || s.SitOut[u] {
			continue
		}
		if s.ToCall[u] > 0 {
			return false
		}
		actable = append(actable, u)
	}
	if len(actable) < 2 {
		// A lone non-all-in player has nobody left to bet against: run the
		// board out rather than offering an empty betting round.
		return true
	}
	for _, u := range actable {
		if !s.Acted[u] {
			return false
		}
	}
	return true
}

// foldBlockedSitOuts folds sitting-out participants facing unmatched bets so
// a round never waits on a player who cannot be routed to.
func (s *TableState) foldBlockedSitOuts() []Event {
	var events []Event
	for _, seat := range s.HandSeats {
		u := seat.UserID
		if s.SitOut[u] && !s.Folded[u] && !s.AllIn[u] && s.ToCall[u] > 0 {
			s.Folded[u] = true
			s.Acted[u] = true
			events = append(events, Event{Type: EventSitOutFold, UserID: u})
		}
	}
	return events
}

// --- chips ---

func (s *TableState) pay(userID string, amount int64) {
	if amount <= 0 {
		return
	}
	if amount > s.Stacks[userID] {
		amount = s.Stacks[userID]
	}
	s.Stacks[userID] -= amount
	s.BetThisRound[userID] += amount
	s.Contrib[userID] += amount
	s.Pot += amount
	if s.Stacks[userID] == 0 {
		s.AllIn[userID] = true
	}
}

func (s *TableState) post(userID string, blind int64) {
	s.pay(userID, min64(blind, s.Stacks[userID]))
}

func (s *TableState) recomputeToCall() {
	for _, seat := range s.HandSeats {
		u := seat.UserID
		tc := s.CurrentBet - s.BetThisRound[u]
		if tc < 0 {
			tc = 0
		}
		s.ToCall[u] = tc
	}
}

// reopenActionExcept forces every other live, non-all-in participant to
// respond to new aggression.
func (s *TableState) reopenActionExcept(userID string) {
	for _, seat := range s.HandSeats {
		u := seat.UserID
		if u == userID {
			continue
		}
		if s.Folded[u] || s.AllIn[u] {
			continue
		}
		s.Acted[u] = false
	}
}

func min64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}
