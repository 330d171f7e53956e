package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/roach88/bountylist/internal/address"
)

// marshalLogs converts receipt logs to JSON TEXT.
// HTML escaping is disabled so log text round-trips byte for byte.
func marshalLogs(logs []string) (string, error) {
	if logs == nil {
		logs = []string{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(logs); err != nil {
		return "", fmt.Errorf("marshal logs: %w", err)
	}
	// Encoder adds a trailing newline, remove it
	return strings.TrimSpace(buf.String()), nil
}

// unmarshalLogs parses JSON TEXT to receipt logs.
func unmarshalLogs(data string) ([]string, error) {
	if data == "" || data == "[]" {
		return nil, nil
	}
	var logs []string
	if err := json.Unmarshal([]byte(data), &logs); err != nil {
		return nil, fmt.Errorf("unmarshal logs: %w", err)
	}
	return logs, nil
}

// lamportsToSQL converts a balance to a SQLite INTEGER.
// Balances above math.MaxInt64 cannot be stored.
func lamportsToSQL(lamports uint64) (int64, error) {
	if lamports > math.MaxInt64 {
		return 0, fmt.Errorf("balance %d exceeds storable range", lamports)
	}
	return int64(lamports), nil
}

// lamportsFromSQL converts a SQLite INTEGER back to a balance.
func lamportsFromSQL(v int64) (uint64, error) {
	if v < 0 {
		return 0, fmt.Errorf("negative stored balance %d", v)
	}
	return uint64(v), nil
}

// timeToSQL stores a wall time as unix nanoseconds. The zero time is 0.
func timeToSQL(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixNano()
}

// timeFromSQL is the inverse of timeToSQL.
func timeFromSQL(v int64) time.Time {
	if v == 0 {
		return time.Time{}
	}
	return time.Unix(0, v).UTC()
}

// parseAddress decodes a stored base58 address column.
func parseAddress(column, s string) (address.Address, error) {
	a, err := address.Parse(s)
	if err != nil {
		return address.Address{}, fmt.Errorf("column %s: %w", column, err)
	}
	return a, nil
}
