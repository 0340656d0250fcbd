package game

// PromoteInactive converts accumulated missed turns into sit-out status for
// every seated, still-present user at or past the threshold. It runs as a
// guard on every table mutation, so a counter that reached the limit outside
// the timeout path still ends in a promotion. One event per promoted user.
func (s *TableState) PromoteInactive() []Event {
	var events []Event
	for _, seat := range s.Seats {
		u := seat.UserID
		if s.LeftTable[u] || s.SitOut[u] {
			continue
		}
		if s.MissedTurns[u] >= MissedTurnLimit {
			s.SitOut[u] = true
			s.PendingAutoSitOut[u] = true
			events = append(events, Event{Type: EventAutoSitOut, UserID: u})
		}
	}
	return events
}

// SitBackIn clears an inactivity sit-out so the user is dealt into the next
// hand. Reports whether anything changed.
func (s *TableState) SitBackIn(userID string) bool {
	if !s.SitOut[userID] {
		return false
	}
	delete(s.SitOut, userID)
	delete(s.PendingAutoSitOut, userID)
	s.MissedTurns[userID] = 0
	return true
}
