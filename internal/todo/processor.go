package todo

import (
	"fmt"
	"slices"

	"github.com/roach88/bountylist/internal/address"
	"github.com/roach88/bountylist/internal/runtime"
)

// Program is the todo program. It holds no state of its own; every call
// reads and writes accounts through the host.
type Program struct{}

var (
	_ runtime.Program          = Program{}
	_ runtime.InstructionNamer = Program{}
)

// InstructionName implements runtime.InstructionNamer.
func (Program) InstructionName(data []byte) string {
	return InstructionName(data)
}

// Process dispatches on the instruction discriminator.
func (p Program) Process(h runtime.Host, ix runtime.Instruction) error {
	switch InstructionName(ix.Data) {
	case InstructionNewList:
		args, err := decodeNewList(ix.Data)
		if err != nil {
			return err
		}
		return p.newList(h, ix, args)
	case InstructionAdd:
		args, err := decodeAdd(ix.Data)
		if err != nil {
			return err
		}
		return p.add(h, ix, args)
	case InstructionCancel:
		args, err := decodeCancel(ix.Data)
		if err != nil {
			return err
		}
		return p.cancel(h, ix, args)
	default:
		return ErrInstructionFallbackNotFound
	}
}

// newList accounts: [list w, user s w, system].
func (Program) newList(h runtime.Host, ix runtime.Instruction, args NewListArgs) error {
	if len(ix.Accounts) < 3 {
		return ErrAccountNotEnoughKeys
	}
	listAddr := ix.Accounts[0].Address
	user := ix.Accounts[1]
	if err := requireSigner(h, user); err != nil {
		return err
	}
	if ix.Accounts[2].Address != address.SystemProgramID {
		return ErrInvalidProgramID
	}

	want, bump, err := FindListAddress(user.Address, args.Name)
	if err != nil {
		return seedError(err)
	}
	if want != listAddr || bump != args.Bump {
		return ErrConstraintSeeds
	}

	space := ListSpace(args.Name, args.Capacity)
	list := &TodoList{
		Owner:    user.Address,
		Bump:     bump,
		Capacity: args.Capacity,
		Name:     args.Name,
		Items:    []address.Address{},
	}
	data, err := list.Marshal(space)
	if err != nil {
		return err
	}

	if _, err := h.CreateAccount(user.Address, withBump(ListSeeds(user.Address, args.Name), bump), space); err != nil {
		return fmt.Errorf("allocate list: %w", err)
	}
	if err := h.WriteData(listAddr, data); err != nil {
		return fmt.Errorf("write list: %w", err)
	}
	h.Log("new_list %q capacity=%d space=%d", args.Name, args.Capacity, space)
	return nil
}

// add accounts: [list w, listOwner, item w, user s w, system].
func (Program) add(h runtime.Host, ix runtime.Instruction, args AddArgs) error {
	if len(ix.Accounts) < 5 {
		return ErrAccountNotEnoughKeys
	}
	listAddr := ix.Accounts[0].Address
	listOwner := ix.Accounts[1].Address
	itemAddr := ix.Accounts[2].Address
	user := ix.Accounts[3]
	if err := requireSigner(h, user); err != nil {
		return err
	}
	if ix.Accounts[4].Address != address.SystemProgramID {
		return ErrInvalidProgramID
	}

	list, listSpace, err := loadList(h, listAddr)
	if err != nil {
		return err
	}
	if err := verifyList(listAddr, listOwner, args.ListName, list.Bump); err != nil {
		return err
	}
	if list.Full() {
		return ErrListFull
	}

	want, bump, err := FindItemAddress(listAddr, user.Address, args.ItemName)
	if err != nil {
		return seedError(err)
	}
	if want != itemAddr {
		return ErrConstraintSeeds
	}

	space := ItemSpace(args.ItemName)
	if _, err := depositAmount(args.Bounty, h.MinimumBalance(space)); err != nil {
		return err
	}

	item := &ListItem{Creator: user.Address, Name: args.ItemName}
	itemData, err := item.Marshal(space)
	if err != nil {
		return err
	}
	list.Items = append(list.Items, itemAddr)
	listData, err := list.Marshal(listSpace)
	if err != nil {
		return err
	}

	if _, err := h.CreateAccount(user.Address, withBump(ItemSeeds(listAddr, user.Address, args.ItemName), bump), space); err != nil {
		return fmt.Errorf("allocate item: %w", err)
	}
	deposited, err := settleAdd(h, user.Address, itemAddr, args.Bounty)
	if err != nil {
		return err
	}
	if err := h.WriteData(itemAddr, itemData); err != nil {
		return fmt.Errorf("write item: %w", err)
	}
	if err := h.WriteData(listAddr, listData); err != nil {
		return fmt.Errorf("write list: %w", err)
	}
	h.Log("add %q to %q bounty=%d deposited=%d items=%d/%d",
		args.ItemName, list.Name, args.Bounty, deposited, len(list.Items), list.Capacity)
	return nil
}

// cancel accounts: [list w, listOwner, item w, itemCreator w, user s].
func (Program) cancel(h runtime.Host, ix runtime.Instruction, args CancelArgs) error {
	if len(ix.Accounts) < 5 {
		return ErrAccountNotEnoughKeys
	}
	listAddr := ix.Accounts[0].Address
	listOwner := ix.Accounts[1].Address
	itemAddr := ix.Accounts[2].Address
	creator := ix.Accounts[3].Address
	user := ix.Accounts[4]
	if err := requireSigner(h, user); err != nil {
		return err
	}

	list, listSpace, err := loadList(h, listAddr)
	if err != nil {
		return err
	}
	if err := verifyList(listAddr, listOwner, args.ListName, list.Bump); err != nil {
		return err
	}

	idx := list.IndexOf(itemAddr)
	if idx < 0 {
		return ErrItemNotFound
	}
	itemAcct, ok := h.Account(itemAddr)
	if !ok || itemAcct.Owner != h.ProgramID() {
		return ErrItemNotFound
	}
	item, err := UnmarshalItem(itemAcct.Data)
	if err != nil {
		return ErrItemNotFound
	}

	if user.Address != list.Owner && user.Address != item.Creator {
		return ErrCancelPermissions
	}
	if creator != item.Creator {
		return ErrWrongItemCreator
	}

	list.Items = slices.Delete(list.Items, idx, idx+1)
	listData, err := list.Marshal(listSpace)
	if err != nil {
		return err
	}

	refund, err := settleCancel(h, itemAddr, creator, len(itemAcct.Data))
	if err != nil {
		return err
	}
	if err := h.WriteData(listAddr, listData); err != nil {
		return fmt.Errorf("write list: %w", err)
	}
	h.Log("cancel %q from %q refund=%d items=%d/%d",
		item.Name, list.Name, refund, len(list.Items), list.Capacity)
	return nil
}

func requireSigner(h runtime.Host, m runtime.AccountMeta) error {
	if !m.Signer || m.Address != h.Signer() {
		return ErrAccountNotSigner
	}
	return nil
}

// loadList reads and decodes a program-owned list account, returning its
// allocated size alongside.
func loadList(h runtime.Host, addr address.Address) (*TodoList, int, error) {
	acct, ok := h.Account(addr)
	if !ok || !acct.Live() {
		return nil, 0, ErrAccountNotInitialized
	}
	if acct.Owner != h.ProgramID() {
		return nil, 0, ErrAccountOwnedByWrongProgram
	}
	list, err := UnmarshalList(acct.Data)
	if err != nil {
		return nil, 0, err
	}
	return list, len(acct.Data), nil
}
