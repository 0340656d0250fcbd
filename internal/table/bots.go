package table

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"card-room/internal/game"
)

// drainBots plays seated bots forward synchronously until a human holds the
// turn, the table parks, or the step budget runs out. Every step is one bot
// action (or one hand rotation); the budget bounds the work a single request
// can be billed for. Bot-only tables get a larger budget so whole hands can
// run without an outside caller per street.
func (s *Service) drainBots(st *game.TableState, fx *effects) bool {
	budget := s.cfg.BotSteps
	if allBots(st) {
		budget = s.cfg.BotOnlySteps
	}
	now := s.clock.Now()
	changed := false
	for step := 0; step < budget; step++ {
		if st.Phase == game.PhaseHandDone {
			if !s.rotateHand(st, fx) {
				return true
			}
			changed = true
			continue
		}
		if !st.Phase.Betting() {
			return changed
		}
		actor := st.TurnUserID
		if actor == "" {
			st.AdvanceIfNeeded(now)
			if st.TurnUserID == "" && st.Phase.Betting() {
				return changed
			}
			continue
		}
		seat, ok := st.HandSeatOf(actor)
		if !ok || !seat.IsBot {
			return changed
		}

		legal, cons, err := game.LegalActions(st, actor)
		if err != nil || len(legal) == 0 {
			log.Error().Err(err).
				Str("table_id", st.TableID).
				Str("hand_id", st.HandID).
				Str("actor", actor).
				Msg("bot has no legal action, stopping autoplay")
			return changed
		}
		act := s.policy.Decide(st, actor, legal, cons)
		act.RequestID = fmt.Sprintf("bot:%s:%d", st.HandID, st.TurnNo)
		if _, err := st.Apply(act, now); err != nil {
			log.Error().Err(err).
				Str("table_id", st.TableID).
				Str("hand_id", st.HandID).
				Str("actor", actor).
				Str("action", string(act.Type)).
				Msg("bot action rejected, stopping autoplay")
			return changed
		}
		st.AdvanceIfNeeded(now)
		s.noteSettled(st, fx)
		changed = true
	}
	return changed
}

// rotateHand finishes the settled hand's bookkeeping and deals the next one.
// Returns false when the table parks instead (not enough eligible players).
func (s *Service) rotateHand(st *game.TableState, fx *effects) bool {
	s.noteSettled(st, fx)
	_, started := st.ResetToNextHand(s.newID(), s.nextSeed(), s.clock.Now())
	if started {
		fx.handStarted(st)
	}
	return started
}

func allBots(st *game.TableState) bool {
	if len(st.Seats) == 0 {
		return false
	}
	for _, seat := range st.Seats {
		if !seat.IsBot {
			return false
		}
	}
	return true
}
