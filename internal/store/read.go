package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/roach88/bountylist/internal/address"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// LoadAccounts returns every stored account ordered by address.
func (s *Store) LoadAccounts(ctx context.Context) ([]AccountState, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT address, lamports, owner, data, updated_seq
		FROM accounts
		ORDER BY address ASC COLLATE BINARY
	`)
	if err != nil {
		return nil, fmt.Errorf("load accounts: %w", err)
	}
	defer rows.Close()

	var out []AccountState
	for rows.Next() {
		st, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("load accounts: %w", err)
		}
		out = append(out, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load accounts: %w", err)
	}
	return out, nil
}

// ReadAccount returns a single stored account, or ErrNotFound.
func (s *Store) ReadAccount(ctx context.Context, addr address.Address) (AccountState, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT address, lamports, owner, data, updated_seq
		FROM accounts
		WHERE address = ?
	`, addr.String())

	st, err := scanAccount(row)
	if errors.Is(err, sql.ErrNoRows) {
		return AccountState{}, fmt.Errorf("read account %s: %w", addr, ErrNotFound)
	}
	if err != nil {
		return AccountState{}, fmt.Errorf("read account %s: %w", addr, err)
	}
	return st, nil
}

// LastSeq returns the highest recorded seq, or 0 for an empty log.
func (s *Store) LastSeq(ctx context.Context) (int64, error) {
	var seq sql.NullInt64
	if err := s.db.QueryRowContext(ctx, `SELECT MAX(seq) FROM transactions`).Scan(&seq); err != nil {
		return 0, fmt.Errorf("last seq: %w", err)
	}
	return seq.Int64, nil
}

// CommittedIDs returns the ids of every successful transaction in seq order.
func (s *Store) CommittedIDs(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id FROM transactions
		WHERE status = 'ok'
		ORDER BY seq ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("committed ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("committed ids: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("committed ids: %w", err)
	}
	return ids, nil
}

// ReadTransactions returns receipts with seq > afterSeq in seq order.
// A limit of 0 or less returns all of them.
func (s *Store) ReadTransactions(ctx context.Context, afterSeq int64, limit int) ([]TransactionRecord, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE seq > ?
		ORDER BY seq ASC
	`
	args := []any{afterSeq}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	out, err := s.queryTransactions(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("read transactions: %w", err)
	}
	return out, nil
}

// AirdropsSince returns the successful airdrop receipts recorded at or after
// since, in seq order.
func (s *Store) AirdropsSince(ctx context.Context, since time.Time) ([]TransactionRecord, error) {
	out, err := s.queryTransactions(ctx, `
		SELECT `+transactionColumns+`
		FROM transactions
		WHERE instruction = 'airdrop' AND status = 'ok' AND recorded_at >= ?
		ORDER BY seq ASC
	`, timeToSQL(since))
	if err != nil {
		return nil, fmt.Errorf("airdrops since %s: %w", since.Format(time.RFC3339), err)
	}
	return out, nil
}

const transactionColumns = "seq, id, token, signer, program, instruction, status, error_code, error, logs, recorded_at"

func (s *Store) queryTransactions(ctx context.Context, query string, args ...any) ([]TransactionRecord, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TransactionRecord
	for rows.Next() {
		var (
			rec             TransactionRecord
			signer, program string
			logsJSON        string
			recordedAt      int64
		)
		if err := rows.Scan(&rec.Seq, &rec.ID, &rec.Token, &signer, &program,
			&rec.Instruction, &rec.Status, &rec.ErrorCode, &rec.Error, &logsJSON, &recordedAt); err != nil {
			return nil, err
		}
		if rec.Signer, err = parseAddress("signer", signer); err != nil {
			return nil, fmt.Errorf("seq %d: %w", rec.Seq, err)
		}
		if rec.Program, err = parseAddress("program", program); err != nil {
			return nil, fmt.Errorf("seq %d: %w", rec.Seq, err)
		}
		if rec.Logs, err = unmarshalLogs(logsJSON); err != nil {
			return nil, fmt.Errorf("seq %d: %w", rec.Seq, err)
		}
		rec.RecordedAt = timeFromSQL(recordedAt)
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanAccount(sc scanner) (AccountState, error) {
	var (
		st          AccountState
		addr, owner string
		lamports    int64
	)
	if err := sc.Scan(&addr, &lamports, &owner, &st.Data, &st.Seq); err != nil {
		return AccountState{}, err
	}
	var err error
	if st.Address, err = parseAddress("address", addr); err != nil {
		return AccountState{}, err
	}
	if st.Owner, err = parseAddress("owner", owner); err != nil {
		return AccountState{}, err
	}
	if st.Lamports, err = lamportsFromSQL(lamports); err != nil {
		return AccountState{}, err
	}
	return st, nil
}
