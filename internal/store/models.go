package store

import (
	"encoding/json"
	"time"
)

type User struct {
	ID        string
	Name      string
	TokenHash string
	IsBot     bool
	CreatedAt time.Time
}

// Account is one side of the double-entry chip ledger. IDs are structured:
// "user:<userID>", "escrow:<tableID>" and the singleton "treasury".
type Account struct {
	ID        string
	Balance   int64
	UpdatedAt time.Time
}

type LedgerEntry struct {
	ID        string
	AccountID string
	Amount    int64
	EntryType string
	RefType   string
	RefID     string
	CreatedAt time.Time
}

// ActionRequest is one idempotency record. A row is inserted as pending
// before the operation runs and completed with the serialized response; a
// replay returns the stored response instead of re-running anything.
type ActionRequest struct {
	TableID   string
	UserID    string
	RequestID string
	Kind      string
	Status    string
	Response  json.RawMessage
	CreatedAt time.Time
}

const (
	RequestPending = "pending"
	RequestDone    = "done"
)

type HandRecord struct {
	ID        string
	TableID   string
	Seed      int64
	Pot       int64
	StartedAt time.Time
	EndedAt   *time.Time
}
