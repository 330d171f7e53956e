package testutil

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSequentialTokens_Sequence(t *testing.T) {
	gen := NewSequentialTokens("tx")

	assert.Equal(t, "tx-0001", gen.Generate())
	assert.Equal(t, "tx-0002", gen.Generate())
	assert.Equal(t, "tx-0003", gen.Generate())
}

func TestSequentialTokens_EmptyPrefixDefault(t *testing.T) {
	gen := NewSequentialTokens("")
	assert.Equal(t, "token-0001", gen.Generate())
}

func TestSequentialTokens_ThreadSafe(t *testing.T) {
	gen := NewSequentialTokens("t")

	var (
		mu   sync.Mutex
		seen = make(map[string]bool)
		wg   sync.WaitGroup
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				tok := gen.Generate()
				mu.Lock()
				seen[tok] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Len(t, seen, 1000)
}
