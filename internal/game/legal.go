package game

// ActionConstraints bounds the chip amounts for the legal action set.
// MinRaiseTo/MaxRaiseTo are raise-to totals for the round; MaxBet is the
// largest opening bet (the whole stack).
type ActionConstraints struct {
	ToCall     int64 `json:"to_call"`
	MinRaiseTo int64 `json:"min_raise_to"`
	MaxRaiseTo int64 `json:"max_raise_to"`
	MaxBet     int64 `json:"max_bet"`
}

// LegalActions is the single authoritative computation of what the actor may
// do. Every caller, including client-facing projections, goes through it.
//
// A user who left the table gets ErrPlayerLeft; anyone else outside the hand
// snapshot gets ErrInvalidPlayer. A seated participant who is folded, all-in,
// sitting out, or simply not the acting player gets an empty set with no
// error. Callers must treat an empty set for the player whose turn it is as
// ErrContractMismatch, not retry it.
func LegalActions(s *TableState, userID string) ([]ActionType, ActionConstraints, error) {
	var c ActionConstraints
	if s.LeftTable[userID] {
		return nil, c, ErrPlayerLeft
	}
	if !s.Phase.Betting() {
		if _, seated := s.SeatOf(userID); !seated {
			return nil, c, ErrInvalidPlayer
		}
		return nil, c, nil
	}
	if _, ok := s.HandSeatOf(userID); !ok {
		return nil, c, ErrInvalidPlayer
	}
	if s.Folded[userID] || s.AllIn[userID] || s.SitOut[userID] || s.TurnUserID != userID {
		return nil, c, nil
	}

	stack := s.Stacks[userID]
	toCall := s.ToCall[userID]
	c.ToCall = toCall
	c.MaxBet = stack
	c.MinRaiseTo = s.CurrentBet + s.LastRaiseSize
	c.MaxRaiseTo = stack + s.BetThisRound[userID]

	if toCall == 0 {
		return []ActionType{ActionCheck, ActionBet}, c, nil
	}
	set := []ActionType{ActionFold, ActionCall}
	// Raise only when the actor can actually exceed the current bet.
	if c.MaxRaiseTo > s.CurrentBet {
		set = append(set, ActionRaise)
	}
	return set, c, nil
}

func containsAction(set []ActionType, t ActionType) bool {
	for _, a := range set {
		if a == t {
			return true
		}
	}
	return false
}
