package viewmodel

import (
	"time"

	"card-room/internal/game"
)

type SeatView struct {
	SeatNo       int    `json:"seat_no"`
	UserID       string `json:"user_id"`
	Stack        int64  `json:"stack"`
	BetThisRound int64  `json:"bet_this_round"`
	ToCall       int64  `json:"to_call"`
	InHand       bool   `json:"in_hand"`
	Folded       bool   `json:"folded"`
	AllIn        bool   `json:"all_in"`
	SittingOut   bool   `json:"sitting_out"`
	IsBot        bool   `json:"is_bot,omitempty"`
}

type ShowdownView struct {
	Revealed map[string][]string `json:"revealed"`
}

type SettlementView struct {
	Pot     int64            `json:"pot"`
	Payouts map[string]int64 `json:"payouts"`
}

// TableView is the per-viewer projection of a table. The deck never appears
// and the only hole cards present are the viewer's own, except for hands
// revealed at showdown.
type TableView struct {
	TableID    string `json:"table_id"`
	Phase      string `json:"phase"`
	SmallBlind int64  `json:"small_blind"`
	BigBlind   int64  `json:"big_blind"`
	HandID     string `json:"hand_id,omitempty"`

	Pot       int64    `json:"pot"`
	Community []string `json:"community"`

	DealerSeatNo   int        `json:"dealer_seat_no"`
	TurnUserID     string     `json:"turn_user_id,omitempty"`
	TurnDeadlineAt *time.Time `json:"turn_deadline_at,omitempty"`

	Seats []SeatView `json:"seats"`

	MyHoleCards  []string                `json:"my_hole_cards,omitempty"`
	MyLegal      []game.ActionType       `json:"my_legal_actions,omitempty"`
	MyConstraint *game.ActionConstraints `json:"my_constraints,omitempty"`

	Showdown   *ShowdownView   `json:"showdown,omitempty"`
	Settlement *SettlementView `json:"settlement,omitempty"`

	Version int64 `json:"version"`
}

// BuildTableView projects the aggregate for one viewer. It never mutates the
// state and never leaks another player's live hole cards.
func BuildTableView(s *game.TableState, viewerID string) TableView {
	community := make([]string, 0, len(s.Community))
	for _, c := range s.Community {
		community = append(community, c.String())
	}

	seats := make([]SeatView, 0, len(s.Seats))
	for _, seat := range s.Seats {
		u := seat.UserID
		seats = append(seats, SeatView{
			SeatNo:       seat.SeatNo,
			UserID:       u,
			Stack:        s.Stacks[u],
			BetThisRound: s.BetThisRound[u],
			ToCall:       s.ToCall[u],
			InHand:       s.InHand(u),
			Folded:       s.Folded[u],
			AllIn:        s.AllIn[u],
			SittingOut:   s.SitOut[u],
			IsBot:        seat.IsBot,
		})
	}

	view := TableView{
		TableID:      s.TableID,
		Phase:        string(s.Phase),
		SmallBlind:   s.SmallBlind,
		BigBlind:     s.BigBlind,
		HandID:       s.HandID,
		Pot:          s.Pot,
		Community:    community,
		DealerSeatNo: s.DealerSeatNo,
		TurnUserID:   s.TurnUserID,
		Seats:        seats,
		Version:      s.Version,
	}
	if s.Phase.Betting() && s.TurnUserID != "" {
		t := s.TurnDeadlineAt
		view.TurnDeadlineAt = &t
	}

	if hole, ok := s.HoleCards[viewerID]; ok {
		cards := make([]string, 0, len(hole))
		for _, c := range hole {
			cards = append(cards, c.String())
		}
		view.MyHoleCards = cards
	}

	if legal, cons, err := game.LegalActions(s, viewerID); err == nil && len(legal) > 0 {
		view.MyLegal = legal
		view.MyConstraint = &cons
	}

	if s.Showdown != nil {
		revealed := make(map[string][]string, len(s.Showdown.Revealed))
		for u, cards := range s.Showdown.Revealed {
			out := make([]string, 0, len(cards))
			for _, c := range cards {
				out = append(out, c.String())
			}
			revealed[u] = out
		}
		view.Showdown = &ShowdownView{Revealed: revealed}
	}
	if s.Settlement != nil {
		view.Settlement = &SettlementView{Pot: s.Settlement.Pot, Payouts: s.Settlement.Payouts}
	}
	return view
}
