package address

import (
	"bytes"
	"crypto/ed25519"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mr-tron/base58"
)

// Size is the byte length of an Address.
const Size = 32

// Address identifies an account on the ledger.
type Address [Size]byte

// Zero is the all-zero address. It doubles as the system program id.
var Zero Address

// SystemProgramID owns every plain wallet account.
var SystemProgramID = Zero

// ErrInvalidAddress is returned when text or bytes do not decode to an Address.
var ErrInvalidAddress = errors.New("invalid address")

// FromBytes copies b into an Address. b must be exactly Size bytes.
func FromBytes(b []byte) (Address, error) {
	var a Address
	if len(b) != Size {
		return a, fmt.Errorf("%w: want %d bytes, got %d", ErrInvalidAddress, Size, len(b))
	}
	copy(a[:], b)
	return a, nil
}

// FromPublicKey returns the address of an ed25519 public key.
func FromPublicKey(pub ed25519.PublicKey) Address {
	var a Address
	copy(a[:], pub)
	return a
}

// Parse decodes base58 text.
func Parse(s string) (Address, error) {
	b, err := base58.Decode(s)
	if err != nil {
		return Address{}, fmt.Errorf("%w: %q: %v", ErrInvalidAddress, s, err)
	}
	return FromBytes(b)
}

// MustParse is like Parse but panics on error.
// Use only for compile-time constants and tests.
func MustParse(s string) Address {
	a, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return a
}

// String returns the base58 encoding.
func (a Address) String() string {
	return base58.Encode(a[:])
}

// Bytes returns a copy of the raw bytes.
func (a Address) Bytes() []byte {
	b := make([]byte, Size)
	copy(b, a[:])
	return b
}

// IsZero reports whether a is the zero address.
func (a Address) IsZero() bool {
	return a == Zero
}

// Compare orders addresses bytewise.
func (a Address) Compare(b Address) int {
	return bytes.Compare(a[:], b[:])
}

// PublicKey reinterprets the address as an ed25519 public key.
func (a Address) PublicKey() ed25519.PublicKey {
	return ed25519.PublicKey(a.Bytes())
}

// MarshalText implements encoding.TextMarshaler.
func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Address) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

var _ json.Marshaler = Address{}

// MarshalJSON renders the address as a base58 JSON string.
func (a Address) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

// UnmarshalJSON parses a base58 JSON string.
func (a *Address) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidAddress, err)
	}
	return a.UnmarshalText([]byte(s))
}
