package todo

import (
	"bytes"
	"fmt"

	"github.com/roach88/bountylist/internal/address"
	"github.com/roach88/bountylist/internal/runtime"
)

// Instruction names as they appear on receipts.
const (
	InstructionNewList = "new_list"
	InstructionAdd     = "add"
	InstructionCancel  = "cancel"
)

var (
	newListDiscriminator = discriminator("global:" + InstructionNewList)
	addDiscriminator     = discriminator("global:" + InstructionAdd)
	cancelDiscriminator  = discriminator("global:" + InstructionCancel)
)

// NewListArgs are the arguments of new_list.
type NewListArgs struct {
	Name     string
	Capacity uint16
	Bump     uint8
}

// AddArgs are the arguments of add.
type AddArgs struct {
	ListName string
	ItemName string
	Bounty   uint64
}

// CancelArgs are the arguments of cancel.
type CancelArgs struct {
	ListName string
}

func (a NewListArgs) encode() []byte {
	e := &encoder{}
	e.raw(newListDiscriminator[:])
	e.str(a.Name)
	e.u16(a.Capacity)
	e.u8(a.Bump)
	return e.buf
}

func (a AddArgs) encode() []byte {
	e := &encoder{}
	e.raw(addDiscriminator[:])
	e.str(a.ListName)
	e.str(a.ItemName)
	e.u64(a.Bounty)
	return e.buf
}

func (a CancelArgs) encode() []byte {
	e := &encoder{}
	e.raw(cancelDiscriminator[:])
	e.str(a.ListName)
	return e.buf
}

// NewListInstruction builds a new_list instruction for owner.
// The bump is searched here so the caller never has to.
func NewListInstruction(owner address.Address, name string, capacity uint16) (runtime.Instruction, address.Address, error) {
	list, bump, err := FindListAddress(owner, name)
	if err != nil {
		return runtime.Instruction{}, address.Address{}, fmt.Errorf("derive list address: %w", err)
	}
	ix := runtime.Instruction{
		ProgramID: ProgramID,
		Accounts: []runtime.AccountMeta{
			{Address: list, Writable: true},
			{Address: owner, Signer: true, Writable: true},
			{Address: address.SystemProgramID},
		},
		Data: NewListArgs{Name: name, Capacity: capacity, Bump: bump}.encode(),
	}
	return ix, list, nil
}

// AddInstruction builds an add instruction placing itemName on the list
// named listName owned by listOwner, paid for by user.
func AddInstruction(listOwner address.Address, listName string, user address.Address, itemName string, bounty uint64) (runtime.Instruction, address.Address, error) {
	list, _, err := FindListAddress(listOwner, listName)
	if err != nil {
		return runtime.Instruction{}, address.Address{}, fmt.Errorf("derive list address: %w", err)
	}
	item, _, err := FindItemAddress(list, user, itemName)
	if err != nil {
		return runtime.Instruction{}, address.Address{}, fmt.Errorf("derive item address: %w", err)
	}
	ix := runtime.Instruction{
		ProgramID: ProgramID,
		Accounts: []runtime.AccountMeta{
			{Address: list, Writable: true},
			{Address: listOwner},
			{Address: item, Writable: true},
			{Address: user, Signer: true, Writable: true},
			{Address: address.SystemProgramID},
		},
		Data: AddArgs{ListName: listName, ItemName: itemName, Bounty: bounty}.encode(),
	}
	return ix, item, nil
}

// CancelInstruction builds a cancel instruction signed by user. The refund
// goes to itemCreator.
func CancelInstruction(listOwner address.Address, listName string, item, itemCreator, user address.Address) (runtime.Instruction, error) {
	list, _, err := FindListAddress(listOwner, listName)
	if err != nil {
		return runtime.Instruction{}, fmt.Errorf("derive list address: %w", err)
	}
	return runtime.Instruction{
		ProgramID: ProgramID,
		Accounts: []runtime.AccountMeta{
			{Address: list, Writable: true},
			{Address: listOwner},
			{Address: item, Writable: true},
			{Address: itemCreator, Writable: true},
			{Address: user, Signer: true},
		},
		Data: CancelArgs{ListName: listName}.encode(),
	}, nil
}

// InstructionName labels instruction data by its discriminator.
func InstructionName(data []byte) string {
	if len(data) < DiscriminatorSize {
		return "unknown"
	}
	switch disc := data[:DiscriminatorSize]; {
	case bytes.Equal(disc, newListDiscriminator[:]):
		return InstructionNewList
	case bytes.Equal(disc, addDiscriminator[:]):
		return InstructionAdd
	case bytes.Equal(disc, cancelDiscriminator[:]):
		return InstructionCancel
	default:
		return "unknown"
	}
}

func decodeArgs(data []byte, fn func(d *decoder)) error {
	d := &decoder{buf: data, off: DiscriminatorSize}
	fn(d)
	if d.err != nil {
		return fmt.Errorf("%w: %v", ErrInstructionDidNotDeserialize, d.err)
	}
	if d.remaining() != 0 {
		return fmt.Errorf("%w: %d trailing bytes", ErrInstructionDidNotDeserialize, d.remaining())
	}
	return nil
}

func decodeNewList(data []byte) (NewListArgs, error) {
	var a NewListArgs
	err := decodeArgs(data, func(d *decoder) {
		a.Name = d.str()
		a.Capacity = d.u16()
		a.Bump = d.u8()
	})
	return a, err
}

func decodeAdd(data []byte) (AddArgs, error) {
	var a AddArgs
	err := decodeArgs(data, func(d *decoder) {
		a.ListName = d.str()
		a.ItemName = d.str()
		a.Bounty = d.u64()
	})
	return a, err
}

func decodeCancel(data []byte) (CancelArgs, error) {
	var a CancelArgs
	err := decodeArgs(data, func(d *decoder) {
		a.ListName = d.str()
	})
	return a, err
}
