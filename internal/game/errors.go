package game

import "errors"

var (
	ErrNotYourTurn      = errors.New("not_your_turn")
	ErrActionNotAllowed = errors.New("action_not_allowed")
	ErrInvalidAmount    = errors.New("invalid_amount")
	ErrInvalidPlayer    = errors.New("invalid_player")
	ErrPlayerLeft       = errors.New("player_left")
	ErrHandNotStarted   = errors.New("hand_not_started")
	ErrHandInProgress   = errors.New("hand_in_progress")
	ErrNotEnoughPlayers = errors.New("not_enough_players")
	ErrSeatTaken        = errors.New("seat_taken")

	// ErrContractMismatch signals the legal-actions engine returned an empty
	// set for the player whose turn it is: an engine bug, never client error.
	ErrContractMismatch = errors.New("contract_mismatch_empty_legal_actions")
)
