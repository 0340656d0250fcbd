package game

// BotPolicy picks an action for a bot whose turn it is. Implementations see
// only what a player would: the legal action set and its chip bounds.
type BotPolicy interface {
	Decide(s *TableState, userID string, legal []ActionType, cons ActionConstraints) Action
}

// CallingStation checks or calls whenever it can and never raises.
type CallingStation struct{}

func (CallingStation) Decide(_ *TableState, userID string, legal []ActionType, _ ActionConstraints) Action {
	if containsAction(legal, ActionCheck) {
		return Action{Type: ActionCheck, UserID: userID}
	}
	if containsAction(legal, ActionCall) {
		return Action{Type: ActionCall, UserID: userID}
	}
	return Action{Type: ActionFold, UserID: userID}
}
