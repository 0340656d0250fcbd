package store

import (
	"context"
	"errors"
	"sort"
)

const TreasuryAccount = "treasury"

func UserAccount(userID string) string    { return "user:" + userID }
func EscrowAccount(tableID string) string { return "escrow:" + tableID }

var ErrInsufficientBalance = errors.New("insufficient_balance")

func (s *Store) EnsureAccount(ctx context.Context, q dbtx, accountID string) error {
	_, err := q.Exec(ctx, `
		INSERT INTO accounts (id, balance) VALUES ($1, 0)
		ON CONFLICT (id) DO NOTHING`, accountID)
	return err
}

func (s *Store) GetAccountBalance(ctx context.Context, accountID string) (int64, error) {
	var bal int64
	err := s.Pool.QueryRow(ctx, `SELECT balance FROM accounts WHERE id = $1`, accountID).Scan(&bal)
	if err != nil {
		return 0, mapNotFound(err)
	}
	return bal, nil
}

// Transfer moves amount between two accounts with a paired ledger entry for
// each side. Both rows are locked in id order to avoid deadlocks between
// concurrent transfers. The treasury may go negative; nothing else may.
func (s *Store) Transfer(ctx context.Context, q dbtx, from, to string, amount int64, entryType, refType, refID string) error {
	if amount < 0 {
		return errors.New("amount must be positive")
	}
	if amount == 0 || from == to {
		return nil
	}
	for _, acct := range []string{from, to} {
		if err := s.EnsureAccount(ctx, q, acct); err != nil {
			return err
		}
	}

	lockOrder := []string{from, to}
	sort.Strings(lockOrder)
	balances := map[string]int64{}
	for _, acct := range lockOrder {
		var bal int64
		if err := q.QueryRow(ctx, `SELECT balance FROM accounts WHERE id = $1 FOR UPDATE`, acct).Scan(&bal); err != nil {
			return mapNotFound(err)
		}
		balances[acct] = bal
	}
	if from != TreasuryAccount && balances[from] < amount {
		return ErrInsufficientBalance
	}

	if _, err := q.Exec(ctx, `UPDATE accounts SET balance = balance - $2, updated_at = now() WHERE id = $1`, from, amount); err != nil {
		return err
	}
	if _, err := q.Exec(ctx, `UPDATE accounts SET balance = balance + $2, updated_at = now() WHERE id = $1`, to, amount); err != nil {
		return err
	}

	for _, side := range []struct {
		account string
		amount  int64
	}{{from, -amount}, {to, amount}} {
		if _, err := q.Exec(ctx, `
			INSERT INTO ledger_entries (id, account_id, amount, entry_type, ref_type, ref_id)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			NewID(), side.account, side.amount, entryType, refType, refID); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) ListLedgerEntries(ctx context.Context, accountID string, limit int) ([]LedgerEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.Pool.Query(ctx, `
		SELECT id, account_id, amount, entry_type, ref_type, ref_id, created_at
		FROM ledger_entries
		WHERE account_id = $1
		ORDER BY created_at DESC
		LIMIT $2`, accountID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]LedgerEntry, 0, limit)
	for rows.Next() {
		var e LedgerEntry
		if err := rows.Scan(&e.ID, &e.AccountID, &e.Amount, &e.EntryType, &e.RefType, &e.RefID, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
