package todo

import (
	"bytes"
	"crypto/sha256"
	"fmt"

	"github.com/roach88/bountylist/internal/address"
)

// DiscriminatorSize is the length of the type tag at the start of every record.
const DiscriminatorSize = 8

var (
	listDiscriminator = discriminator("account:TodoList")
	itemDiscriminator = discriminator("account:ListItem")

	// ClosedDiscriminator marks a record that has been logically deleted.
	ClosedDiscriminator = [DiscriminatorSize]byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff}
)

func discriminator(preimage string) [DiscriminatorSize]byte {
	var d [DiscriminatorSize]byte
	sum := sha256.Sum256([]byte(preimage))
	copy(d[:], sum[:DiscriminatorSize])
	return d
}

// TodoList is the list record.
type TodoList struct {
	Owner    address.Address   `json:"owner"`
	Bump     uint8             `json:"bump"`
	Capacity uint16            `json:"capacity"`
	Name     string            `json:"name"`
	Items    []address.Address `json:"items"`
}

// ListSpace is the exact allocation for a list: discriminator, owner, bump,
// capacity, length-prefixed name, and capacity item-address slots.
func ListSpace(name string, capacity uint16) int {
	return DiscriminatorSize + 32 + 1 + 2 + 4 + len(name) + 4 + int(capacity)*address.Size
}

// Full reports whether the list holds Capacity items.
func (l *TodoList) Full() bool {
	return len(l.Items) >= int(l.Capacity)
}

// IndexOf returns the position of item in the list, or -1.
func (l *TodoList) IndexOf(item address.Address) int {
	for i, a := range l.Items {
		if a == item {
			return i
		}
	}
	return -1
}

// Marshal encodes the list padded with zeros to space bytes.
func (l *TodoList) Marshal(space int) ([]byte, error) {
	if len(l.Items) > int(l.Capacity) {
		return nil, fmt.Errorf("%w: %d items exceed capacity %d", ErrAccountDidNotSerialize, len(l.Items), l.Capacity)
	}
	e := &encoder{buf: make([]byte, 0, space)}
	e.raw(listDiscriminator[:])
	e.addr(l.Owner)
	e.u8(l.Bump)
	e.u16(l.Capacity)
	e.str(l.Name)
	e.u32(uint32(len(l.Items)))
	for _, it := range l.Items {
		e.addr(it)
	}
	return pad(e.buf, space)
}

// UnmarshalList decodes a list record.
func UnmarshalList(data []byte) (*TodoList, error) {
	if err := checkDiscriminator(data, listDiscriminator); err != nil {
		return nil, err
	}
	d := &decoder{buf: data, off: DiscriminatorSize}
	l := &TodoList{
		Owner:    d.addr(),
		Bump:     d.u8(),
		Capacity: d.u16(),
		Name:     d.str(),
	}
	n := d.u32()
	if d.err == nil && n > uint32(l.Capacity) {
		return nil, fmt.Errorf("%w: %d items exceed capacity %d", ErrAccountDidNotDeserialize, n, l.Capacity)
	}
	if d.err == nil {
		l.Items = make([]address.Address, 0, n)
		for i := uint32(0); i < n; i++ {
			l.Items = append(l.Items, d.addr())
		}
	}
	if d.err != nil {
		return nil, fmt.Errorf("%w: list: %v", ErrAccountDidNotDeserialize, d.err)
	}
	return l, nil
}

// ListItem is the item record. CreatorFinished and OwnerFinished are
// carried but never set by any instruction.
type ListItem struct {
	Creator         address.Address `json:"creator"`
	CreatorFinished bool            `json:"creator_finished"`
	OwnerFinished   bool            `json:"owner_finished"`
	Name            string          `json:"name"`
}

// ItemSpace is the exact allocation for an item: discriminator, creator, two
// flags, and the length-prefixed name.
func ItemSpace(name string) int {
	return DiscriminatorSize + 32 + 1 + 1 + 4 + len(name)
}

// Marshal encodes the item padded with zeros to space bytes.
func (it *ListItem) Marshal(space int) ([]byte, error) {
	e := &encoder{buf: make([]byte, 0, space)}
	e.raw(itemDiscriminator[:])
	e.addr(it.Creator)
	e.boolean(it.CreatorFinished)
	e.boolean(it.OwnerFinished)
	e.str(it.Name)
	return pad(e.buf, space)
}

// UnmarshalItem decodes an item record.
func UnmarshalItem(data []byte) (*ListItem, error) {
	if err := checkDiscriminator(data, itemDiscriminator); err != nil {
		return nil, err
	}
	d := &decoder{buf: data, off: DiscriminatorSize}
	it := &ListItem{
		Creator:         d.addr(),
		CreatorFinished: d.boolean(),
		OwnerFinished:   d.boolean(),
		Name:            d.str(),
	}
	if d.err != nil {
		return nil, fmt.Errorf("%w: item: %v", ErrAccountDidNotDeserialize, d.err)
	}
	return it, nil
}

// IsClosed reports whether data carries the closed marker.
func IsClosed(data []byte) bool {
	return len(data) >= DiscriminatorSize && bytes.Equal(data[:DiscriminatorSize], ClosedDiscriminator[:])
}

// closedRecord returns a space-byte buffer holding only the closed marker.
func closedRecord(space int) ([]byte, error) {
	if space < DiscriminatorSize {
		return nil, fmt.Errorf("%w: %d-byte record cannot hold the marker", ErrCloseFailed, space)
	}
	data := make([]byte, space)
	copy(data, ClosedDiscriminator[:])
	return data, nil
}

func checkDiscriminator(data []byte, want [DiscriminatorSize]byte) error {
	if len(data) < DiscriminatorSize {
		return fmt.Errorf("%w: %d bytes", ErrAccountDiscriminatorMismatch, len(data))
	}
	if IsClosed(data) {
		return fmt.Errorf("%w: account is closed", ErrAccountDiscriminatorMismatch)
	}
	if !bytes.Equal(data[:DiscriminatorSize], want[:]) {
		return ErrAccountDiscriminatorMismatch
	}
	return nil
}

func pad(buf []byte, space int) ([]byte, error) {
	if len(buf) > space {
		return nil, fmt.Errorf("%w: need %d bytes, have %d", ErrAccountDidNotSerialize, len(buf), space)
	}
	out := make([]byte, space)
	copy(out, buf)
	return out, nil
}
