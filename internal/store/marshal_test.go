package store

import (
	"math"
	"testing"
)

func TestMarshalLogs(t *testing.T) {
	tests := []struct {
		name string
		logs []string
		want string
	}{
		{"nil", nil, "[]"},
		{"empty", []string{}, "[]"},
		{"html not escaped", []string{"a <b> & c"}, `["a <b> & c"]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := marshalLogs(tt.logs)
			if err != nil {
				t.Fatalf("marshalLogs() failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("marshalLogs() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestUnmarshalLogs(t *testing.T) {
	logs, err := unmarshalLogs(`["x","y"]`)
	if err != nil {
		t.Fatalf("unmarshalLogs() failed: %v", err)
	}
	if len(logs) != 2 || logs[1] != "y" {
		t.Errorf("unmarshalLogs() = %v", logs)
	}

	if logs, err := unmarshalLogs("[]"); err != nil || logs != nil {
		t.Errorf("unmarshalLogs([]) = %v, %v", logs, err)
	}
	if _, err := unmarshalLogs("{"); err == nil {
		t.Error("unmarshalLogs() should fail on malformed JSON")
	}
}

func TestLamportsSQL(t *testing.T) {
	v, err := lamportsToSQL(math.MaxInt64)
	if err != nil || v != math.MaxInt64 {
		t.Errorf("lamportsToSQL(MaxInt64) = %d, %v", v, err)
	}
	if _, err := lamportsToSQL(math.MaxInt64 + 1); err == nil {
		t.Error("lamportsToSQL() should reject values above MaxInt64")
	}
	if _, err := lamportsFromSQL(-1); err == nil {
		t.Error("lamportsFromSQL() should reject negative values")
	}
}

func TestParseAddress(t *testing.T) {
	if _, err := parseAddress("owner", "11111111111111111111111111111111"); err != nil {
		t.Errorf("parseAddress() failed: %v", err)
	}
	if _, err := parseAddress("owner", "bad"); err == nil {
		t.Error("parseAddress() should fail on bad input")
	}
}
