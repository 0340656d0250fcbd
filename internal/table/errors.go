package table

import "errors"

var (
	// ErrStateConflict means the optimistic retry budget ran out; the client
	// should re-read and resubmit.
	ErrStateConflict = errors.New("state_conflict")

	// ErrRequestPending means a request with this id is mid-flight; the
	// client retries later and gets the stored response. The claim and its
	// response commit in one transaction, so a pending record is only ever
	// seen across a live race; a failed request rolls its claim back.
	ErrRequestPending = errors.New("request_pending")

	// ErrRequestMismatch means a request id was reused for a different kind
	// of operation.
	ErrRequestMismatch = errors.New("request_mismatch")

	ErrAlreadySeated = errors.New("already_seated")
	ErrNotSeated     = errors.New("not_seated")
	ErrInvalidBuyIn  = errors.New("invalid_buy_in")
)
