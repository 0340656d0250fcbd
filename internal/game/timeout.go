package game

import (
	"fmt"
	"time"
)

// TimeoutRequestID is the deterministic request id stamped on an auto-action
// for a given turn, so concurrent heartbeats expire the same turn exactly
// once.
func TimeoutRequestID(handID string, turnNo int) string {
	return fmt.Sprintf("auto:%s:%d", handID, turnNo)
}

// ApplyTurnTimeout expires the current turn when its deadline has passed:
// auto-check when nothing is owed, auto-fold otherwise. There is no
// background scheduler; any read or write of the table calls this first.
// Returns false when no turn was expired.
func (s *TableState) ApplyTurnTimeout(now time.Time) ([]Event, bool, error) {
	if !s.Phase.Betting() || s.TurnUserID == "" {
		return nil, false, nil
	}
	if now.Before(s.TurnDeadlineAt) {
		return nil, false, nil
	}

	user := s.TurnUserID
	reqID := TimeoutRequestID(s.HandID, s.TurnNo)
	if s.LastActionRequestID[user] == reqID {
		return nil, false, nil
	}

	act := Action{Type: ActionFold, UserID: user, RequestID: reqID}
	if s.ToCall[user] == 0 {
		act.Type = ActionCheck
	}

	events := []Event{{Type: EventTurnTimedOut, UserID: user, Reason: string(act.Type)}}
	applied, err := s.apply(act, now, false)
	if err != nil {
		return nil, false, err
	}
	events = append(events, applied...)

	s.MissedTurns[user]++
	events = append(events, s.PromoteInactive()...)
	return events, true, nil
}

// ExpireOverdueTurns applies turn timeouts repeatedly until the clock catches
// up, interleaving street advancement, so a table stalled across several
// turns settles in one pass.
func (s *TableState) ExpireOverdueTurns(now time.Time) ([]Event, error) {
	var events []Event
	for {
		applied, ok, err := s.ApplyTurnTimeout(now)
		if err != nil {
			return events, err
		}
		events = append(events, applied...)
		events = append(events, s.AdvanceIfNeeded(now)...)
		if !ok {
			return events, nil
		}
	}
}
