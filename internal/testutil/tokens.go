package testutil

import (
	"fmt"
	"sync/atomic"
)

// SequentialTokens generates "<prefix>-0001", "<prefix>-0002", ...
//
// This enables deterministic receipts and golden snapshot comparison: the same
// scenario run with a fresh generator produces byte-identical tokens.
//
// Thread-safety: safe for concurrent use.
type SequentialTokens struct {
	prefix string
	n      atomic.Int64
}

// NewSequentialTokens creates a generator. An empty prefix means "token".
func NewSequentialTokens(prefix string) *SequentialTokens {
	if prefix == "" {
		prefix = "token"
	}
	return &SequentialTokens{prefix: prefix}
}

// Generate returns the next token.
func (g *SequentialTokens) Generate() string {
	return fmt.Sprintf("%s-%04d", g.prefix, g.n.Add(1))
}
