package runtime

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRent_MinimumBalance(t *testing.T) {
	r := DefaultRent()

	assert.Equal(t, uint64(890_880), r.MinimumBalance(0))
	assert.Equal(t, uint64(minimumTen), r.MinimumBalance(10))
	assert.Equal(t, uint64(1_238_880), r.MinimumBalance(50))
	assert.Equal(t, uint64(1_753_920), r.MinimumBalance(124))
	assert.Equal(t, r.MinimumBalance(0), r.MinimumBalance(-5))
}

func TestRent_MinimumBalanceSaturates(t *testing.T) {
	r := Rent{LamportsPerByteYear: math.MaxUint64, ExemptionThreshold: 2, StorageOverhead: 128}
	assert.Equal(t, uint64(math.MaxUint64), r.MinimumBalance(1))
}

func TestAccount_CloneIsDeep(t *testing.T) {
	a := Account{Lamports: 5, Data: []byte{1, 2}}
	c := a.Clone()
	c.Data[0] = 9
	assert.Equal(t, byte(1), a.Data[0])
}

func TestAccount_Live(t *testing.T) {
	assert.False(t, Account{}.Live())
	assert.True(t, Account{Lamports: 1}.Live())
	assert.True(t, Account{Data: []byte{0}}.Live())
}

func TestAccount_Closed(t *testing.T) {
	assert.False(t, Account{}.Closed())
	assert.False(t, Account{Lamports: 1, Data: []byte{0}}.Closed())
	assert.True(t, Account{Data: []byte{0}}.Closed())
}
