package store

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/roach88/bountylist/internal/address"
)

// createTestStore creates a new store in a temp dir for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestRecord creates a receipt record with minimal required fields.
func createTestRecord(id string, seq int64, status string) TransactionRecord {
	return TransactionRecord{
		ID:          id,
		Seq:         seq,
		Token:       "token",
		Signer:      address.Address{1},
		Program:     address.Address{2},
		Instruction: "add",
		Status:      status,
	}
}

// createTestAccount creates an account state owned by the zero address.
func createTestAccount(b byte, lamports uint64, seq int64) AccountState {
	return AccountState{
		Address:  address.Address{b},
		Lamports: lamports,
		Data:     []byte{b, b},
		Seq:      seq,
	}
}

// verifyPragma checks that a pragma is set to the expected value.
func verifyPragma(s *Store, name, expected string) error {
	var value string
	if err := s.db.QueryRow(fmt.Sprintf("PRAGMA %s", name)).Scan(&value); err != nil {
		return fmt.Errorf("failed to query %s: %w", name, err)
	}
	if value != expected {
		return fmt.Errorf("%s = %q, expected %q", name, value, expected)
	}
	return nil
}
