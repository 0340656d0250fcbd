package game

// finishByFold awards the whole pot to the sole remaining live player. No
// cards are revealed.
func (s *TableState) finishByFold(winner string) []Event {
	pot := s.Pot
	s.Stacks[winner] += pot
	s.Pot = 0
	s.Settlement = &HandSettlement{
		HandID:  s.HandID,
		Pot:     pot,
		Payouts: map[string]int64{winner: pot},
	}
	s.Phase = PhaseHandDone
	s.TurnUserID = ""
	return []Event{{Type: EventHandSettled, UserID: winner, Reason: "fold"}}
}

// settleShowdown reveals live players' hole cards, splits the pot into
// layers and pays each layer to its best eligible hand(s). Odd chips go to
// the winner seated earliest after the dealer.
func (s *TableState) settleShowdown() []Event {
	live := s.liveUsers()

	revealed := make(map[string][]Card, len(live))
	ranks := make(map[string]HandRank, len(live))
	for _, u := range live {
		seven := append([]Card{}, s.HoleCards[u]...)
		seven = append(seven, s.Community...)
		ranks[u] = Evaluate7(seven)
		revealed[u] = append([]Card{}, s.HoleCards[u]...)
	}

	pot := s.Pot
	payouts := map[string]int64{}
	for _, layer := range BuildPotLayers(s.Contrib, s.Folded) {
		eligible := layer.Eligible
		if len(eligible) == 0 {
			// Every contributor at this level folded; the chips play for the
			// remaining live hands.
			eligible = live
		}
		winners := s.orderFromDealer(bestHands(eligible, ranks))
		share := layer.Amount / int64(len(winners))
		odd := layer.Amount - share*int64(len(winners))
		for i, w := range winners {
			amount := share
			if int64(i) < odd {
				amount++
			}
			payouts[w] += amount
		}
	}
	for u, amount := range payouts {
		s.Stacks[u] += amount
	}
	s.Pot = 0

	s.Showdown = &ShowdownResult{HandID: s.HandID, Revealed: revealed}
	s.Settlement = &HandSettlement{HandID: s.HandID, Pot: pot, Payouts: payouts}
	s.Phase = PhaseHandDone
	s.TurnUserID = ""
	return []Event{{Type: EventHandSettled, Reason: "showdown"}}
}

func bestHands(users []string, ranks map[string]HandRank) []string {
	var winners []string
	var best HandRank
	for _, u := range users {
		r, ok := ranks[u]
		if !ok {
			continue
		}
		switch {
		case len(winners) == 0 || r.BetterThan(best):
			winners = []string{u}
			best = r
		case !best.BetterThan(r):
			winners = append(winners, u)
		}
	}
	return winners
}

// orderFromDealer sorts the given users into seat order starting after the
// dealer.
func (s *TableState) orderFromDealer(users []string) []string {
	set := make(map[string]bool, len(users))
	for _, u := range users {
		set[u] = true
	}
	out := make([]string, 0, len(users))
	for _, seat := range s.handOrderFrom(s.DealerSeatNo) {
		if set[seat.UserID] {
			out = append(out, seat.UserID)
		}
	}
	return out
}
