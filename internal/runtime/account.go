package runtime

import (
	"math"
	"math/bits"

	"github.com/roach88/bountylist/internal/address"
)

// MaxAccountSize is the largest data allocation a single account may hold.
const MaxAccountSize = 10 * 1024 * 1024

// Account is the stored state behind an address.
type Account struct {
	Lamports uint64          `json:"lamports"`
	Owner    address.Address `json:"owner"`
	Data     []byte          `json:"data"`
}

// Clone returns a deep copy of the account.
func (a Account) Clone() Account {
	c := a
	if a.Data != nil {
		c.Data = make([]byte, len(a.Data))
		copy(c.Data, a.Data)
	}
	return c
}

// Live reports whether the account holds a balance or data.
// Closed accounts are live: their address stays taken.
func (a Account) Live() bool {
	return a.Lamports > 0 || len(a.Data) > 0
}

// Closed reports whether the account is a drained program account.
func (a Account) Closed() bool {
	return a.Lamports == 0 && len(a.Data) > 0
}

// AccountReader reads committed or in-flight account state.
type AccountReader interface {
	// Account returns a copy of the account at addr, or false if none exists.
	Account(addr address.Address) (Account, bool)
}

// Rent computes the minimum balance an account needs to stay allocated.
type Rent struct {
	LamportsPerByteYear uint64 `yaml:"lamports_per_byte_year" json:"lamports_per_byte_year"`
	ExemptionThreshold  uint64 `yaml:"exemption_threshold" json:"exemption_threshold"`
	StorageOverhead     uint64 `yaml:"storage_overhead" json:"storage_overhead"`
}

// DefaultRent matches the mainnet rent schedule.
func DefaultRent() Rent {
	return Rent{
		LamportsPerByteYear: 3480,
		ExemptionThreshold:  2,
		StorageOverhead:     128,
	}
}

// MinimumBalance returns the rent-exempt balance for an account holding
// space bytes of data. Saturates at math.MaxUint64.
func (r Rent) MinimumBalance(space int) uint64 {
	if space < 0 {
		space = 0
	}
	size, carry := bits.Add64(r.StorageOverhead, uint64(space), 0)
	if carry != 0 {
		return math.MaxUint64
	}
	hi, perYear := bits.Mul64(size, r.LamportsPerByteYear)
	if hi != 0 {
		return math.MaxUint64
	}
	hi, total := bits.Mul64(perYear, r.ExemptionThreshold)
	if hi != 0 {
		return math.MaxUint64
	}
	return total
}

// checkedAdd returns a+b or false on overflow.
func checkedAdd(a, b uint64) (uint64, bool) {
	sum, carry := bits.Add64(a, b, 0)
	return sum, carry == 0
}
