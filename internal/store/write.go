package store

import (
	"context"
	"fmt"

	"github.com/roach88/bountylist/internal/address"
)

// Commit atomically records a receipt together with the account changes it
// produced: updated accounts are upserted and reclaimed accounts deleted.
//
// A successful receipt whose id is already committed violates the partial
// unique index and fails the whole commit.
func (s *Store) Commit(ctx context.Context, rec TransactionRecord, updated []AccountState, reclaimed []address.Address) error {
	logsJSON, err := marshalLogs(rec.Logs)
	if err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("commit: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	_, err = tx.ExecContext(ctx, `
		INSERT INTO transactions
		(seq, id, token, signer, program, instruction, status, error_code, error, logs, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		rec.Seq,
		rec.ID,
		rec.Token,
		rec.Signer.String(),
		rec.Program.String(),
		rec.Instruction,
		rec.Status,
		rec.ErrorCode,
		rec.Error,
		logsJSON,
		timeToSQL(rec.RecordedAt),
	)
	if err != nil {
		return fmt.Errorf("commit: insert transaction: %w", err)
	}

	for _, st := range updated {
		lamports, err := lamportsToSQL(st.Lamports)
		if err != nil {
			return fmt.Errorf("commit: account %s: %w", st.Address, err)
		}
		data := st.Data
		if data == nil {
			data = []byte{}
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO accounts (address, lamports, owner, data, updated_seq)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT(address) DO UPDATE SET
				lamports = excluded.lamports,
				owner = excluded.owner,
				data = excluded.data,
				updated_seq = excluded.updated_seq
		`,
			st.Address.String(),
			lamports,
			st.Owner.String(),
			data,
			st.Seq,
		)
		if err != nil {
			return fmt.Errorf("commit: upsert account %s: %w", st.Address, err)
		}
	}

	for _, addr := range reclaimed {
		if _, err := tx.ExecContext(ctx, `DELETE FROM accounts WHERE address = ?`, addr.String()); err != nil {
			return fmt.Errorf("commit: delete account %s: %w", addr, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
