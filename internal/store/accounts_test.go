package store

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
)

func TestTransferDoubleEntry(t *testing.T) {
	st, ctx, cleanup := openStore(t)
	defer cleanup()

	err := st.WithTx(ctx, func(tx pgx.Tx) error {
		return st.Transfer(ctx, tx, TreasuryAccount, UserAccount("a"), 100, "deposit", "user", "a")
	})
	if err != nil {
		t.Fatalf("transfer: %v", err)
	}

	if bal, err := st.GetAccountBalance(ctx, UserAccount("a")); err != nil || bal != 100 {
		t.Fatalf("user balance: %d, %v", bal, err)
	}
	// The treasury mints chips; it is the only account allowed below zero.
	if bal, err := st.GetAccountBalance(ctx, TreasuryAccount); err != nil || bal != -100 {
		t.Fatalf("treasury balance: %d, %v", bal, err)
	}

	entries, err := st.ListLedgerEntries(ctx, UserAccount("a"), 10)
	if err != nil {
		t.Fatalf("ledger: %v", err)
	}
	if len(entries) != 1 || entries[0].Amount != 100 || entries[0].EntryType != "deposit" {
		t.Fatalf("unexpected ledger entries: %+v", entries)
	}
}

func TestTransferInsufficientBalance(t *testing.T) {
	st, ctx, cleanup := openStore(t)
	defer cleanup()

	err := st.WithTx(ctx, func(tx pgx.Tx) error {
		return st.Transfer(ctx, tx, TreasuryAccount, UserAccount("a"), 100, "deposit", "user", "a")
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	err = st.WithTx(ctx, func(tx pgx.Tx) error {
		return st.Transfer(ctx, tx, UserAccount("a"), UserAccount("b"), 150, "buy_in", "table", "t1")
	})
	if !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}
	// The failed transfer must leave no trace.
	if bal, err := st.GetAccountBalance(ctx, UserAccount("a")); err != nil || bal != 100 {
		t.Fatalf("balance changed after failed transfer: %d, %v", bal, err)
	}
	entries, err := st.ListLedgerEntries(ctx, UserAccount("b"), 10)
	if err != nil {
		t.Fatalf("ledger: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("unexpected entries for b: %+v", entries)
	}
}

func TestTransferZeroAndSelfAreNoops(t *testing.T) {
	st, ctx, cleanup := openStore(t)
	defer cleanup()

	err := st.WithTx(ctx, func(tx pgx.Tx) error {
		if err := st.Transfer(ctx, tx, UserAccount("a"), UserAccount("b"), 0, "noop", "", ""); err != nil {
			return err
		}
		return st.Transfer(ctx, tx, UserAccount("a"), UserAccount("a"), 50, "noop", "", "")
	})
	if err != nil {
		t.Fatalf("noop transfers: %v", err)
	}
	entries, err := st.ListLedgerEntries(ctx, UserAccount("a"), 10)
	if err != nil {
		t.Fatalf("ledger: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("noop transfers must write nothing, got %+v", entries)
	}
}
