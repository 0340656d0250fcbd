package game

import "testing"

func TestLegalActionsFacingBet(t *testing.T) {
	s := seatTable(100, "u1", "u2", "u3")
	if _, err := s.StartHand("h1", 7, testNow); err != nil {
		t.Fatalf("start hand: %v", err)
	}
	set, cons, err := LegalActions(s, "u1")
	if err != nil {
		t.Fatalf("legal actions: %v", err)
	}
	if !containsAction(set, ActionFold) || !containsAction(set, ActionCall) || !containsAction(set, ActionRaise) {
		t.Fatalf("expected fold/call/raise, got %v", set)
	}
	if containsAction(set, ActionCheck) || containsAction(set, ActionBet) {
		t.Fatalf("check/bet illegal facing a bet, got %v", set)
	}
	if cons.ToCall != 10 || cons.MinRaiseTo != 20 || cons.MaxRaiseTo != 100 {
		t.Fatalf("constraints wrong: %+v", cons)
	}
}

func TestLegalActionsUnopenedRound(t *testing.T) {
	s := seatTable(100, "u1", "u2", "u3")
	if _, err := s.StartHand("h1", 7, testNow); err != nil {
		t.Fatalf("start hand: %v", err)
	}
	mustApply(t, s, Action{Type: ActionCall, UserID: "u1"})
	mustApply(t, s, Action{Type: ActionCall, UserID: "u2"})
	mustApply(t, s, Action{Type: ActionCheck, UserID: "u3"})

	set, cons, err := LegalActions(s, "u2")
	if err != nil {
		t.Fatalf("legal actions: %v", err)
	}
	if !containsAction(set, ActionCheck) || !containsAction(set, ActionBet) {
		t.Fatalf("expected check/bet, got %v", set)
	}
	if cons.ToCall != 0 || cons.MaxBet != 90 {
		t.Fatalf("constraints wrong: %+v", cons)
	}
}

func TestLegalActionsNotOnTurnEmpty(t *testing.T) {
	s := seatTable(100, "u1", "u2", "u3")
	if _, err := s.StartHand("h1", 7, testNow); err != nil {
		t.Fatalf("start hand: %v", err)
	}
	set, _, err := LegalActions(s, "u2")
	if err != nil {
		t.Fatalf("off-turn participant must get empty set, not error: %v", err)
	}
	if len(set) != 0 {
		t.Fatalf("expected empty set off turn, got %v", set)
	}
}

func TestLegalActionsOutsiderRejected(t *testing.T) {
	s := seatTable(100, "u1", "u2")
	if _, err := s.StartHand("h1", 7, testNow); err != nil {
		t.Fatalf("start hand: %v", err)
	}
	if _, _, err := LegalActions(s, "stranger"); err != ErrInvalidPlayer {
		t.Fatalf("expected ErrInvalidPlayer, got %v", err)
	}
}

func TestLegalActionsLeaverRejectedAsLeft(t *testing.T) {
	s := seatTable(100, "u1", "u2", "u3")
	if _, err := s.StartHand("h1", 7, testNow); err != nil {
		t.Fatalf("start hand: %v", err)
	}
	s.ApplyLeave("u2", testNow)
	if _, _, err := LegalActions(s, "u2"); err != ErrPlayerLeft {
		t.Fatalf("expected ErrPlayerLeft during the hand, got %v", err)
	}
	mustApply(t, s, Action{Type: ActionFold, UserID: "u1"})
	if _, _, err := LegalActions(s, "u2"); err != ErrPlayerLeft {
		t.Fatalf("expected ErrPlayerLeft after the hand, got %v", err)
	}
}

func TestLegalActionsShortStackCannotRaise(t *testing.T) {
	s := seatTable(100, "u1", "u2", "u3")
	s.Stacks["u1"] = 10
	if _, err := s.StartHand("h1", 7, testNow); err != nil {
		t.Fatalf("start hand: %v", err)
	}
	// u1 can exactly call the big blind; raising is impossible.
	set, cons, err := LegalActions(s, "u1")
	if err != nil {
		t.Fatalf("legal actions: %v", err)
	}
	if containsAction(set, ActionRaise) {
		t.Fatalf("raise must be absent when the stack cannot exceed the bet: %v %+v", set, cons)
	}
	if !containsAction(set, ActionCall) {
		t.Fatalf("call must be available, got %v", set)
	}
}
