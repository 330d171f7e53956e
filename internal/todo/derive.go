package todo

import (
	"fmt"

	"github.com/roach88/bountylist/internal/address"
)

// ProgramID is the identity the todo program is deployed under.
var ProgramID = address.MustParse("2NW2t7NuhrzpscaZomaEjYW2he5P9AwAnSNHbT3UEEHJ")

const (
	listSeedTag = "todolist"
	itemSeedTag = "todoitem"
)

// NameSeed returns the part of name that participates in derivation.
// Names sharing a 32-byte prefix derive the same address.
func NameSeed(name string) []byte {
	b := []byte(name)
	if len(b) > address.MaxSeedLength {
		b = b[:address.MaxSeedLength]
	}
	return b
}

// ListSeeds returns the derivation seeds for a list.
func ListSeeds(owner address.Address, name string) [][]byte {
	return [][]byte{[]byte(listSeedTag), owner.Bytes(), NameSeed(name)}
}

// FindListAddress searches for the canonical list address and bump.
func FindListAddress(owner address.Address, name string) (address.Address, uint8, error) {
	return address.FindProgramAddress(ListSeeds(owner, name), ProgramID)
}

// ListAddress re-derives a list address from a stored bump.
func ListAddress(owner address.Address, name string, bump uint8) (address.Address, error) {
	return address.CreateProgramAddress(withBump(ListSeeds(owner, name), bump), ProgramID)
}

// ItemSeeds returns the derivation seeds for an item.
func ItemSeeds(list, creator address.Address, name string) [][]byte {
	return [][]byte{[]byte(itemSeedTag), list.Bytes(), creator.Bytes(), NameSeed(name)}
}

// FindItemAddress searches for the canonical item address and bump.
func FindItemAddress(list, creator address.Address, name string) (address.Address, uint8, error) {
	return address.FindProgramAddress(ItemSeeds(list, creator, name), ProgramID)
}

// verifyList checks that addr is the list derived from owner, name and bump.
func verifyList(addr, owner address.Address, name string, bump uint8) error {
	want, err := ListAddress(owner, name, bump)
	if err != nil || want != addr {
		return ErrWrongListOwner
	}
	return nil
}

func withBump(seeds [][]byte, bump uint8) [][]byte {
	out := make([][]byte, 0, len(seeds)+1)
	out = append(out, seeds...)
	return append(out, []byte{bump})
}

func seedError(err error) error {
	return fmt.Errorf("%w: %v", ErrConstraintSeeds, err)
}
