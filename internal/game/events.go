package game

type EventType string

const (
	EventHandStarted        EventType = "HAND_STARTED"
	EventStreetDealt        EventType = "STREET_DEALT"
	EventHandSettled        EventType = "HAND_SETTLED"
	EventHandResetSkipped   EventType = "HAND_RESET_SKIPPED"
	EventTurnSkippedByLeave EventType = "TURN_SKIPPED_BY_LEAVE"
	EventTurnTimedOut       EventType = "TURN_TIMED_OUT"
	EventAutoSitOut         EventType = "AUTO_SIT_OUT"
	EventSitOutFold         EventType = "SIT_OUT_FOLD"
)

// Event is a reducer-emitted fact about a state transition, collected per
// request and logged by the caller; never persisted inside the aggregate.
type Event struct {
	Type   EventType `json:"type"`
	UserID string    `json:"user_id,omitempty"`
	Reason string    `json:"reason,omitempty"`
}
