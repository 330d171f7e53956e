package runtime

import (
	"errors"
	"fmt"

	"github.com/roach88/bountylist/internal/address"
)

// Host is the set of primitives a program may use while processing one
// instruction. Every mutation is journaled and rolled back if the
// instruction fails.
type Host interface {
	AccountReader

	// ProgramID returns the id of the executing program.
	ProgramID() address.Address

	// Signer returns the identity that signed the transaction.
	Signer() address.Address

	// MinimumBalance returns the rent-exempt balance for space bytes.
	MinimumBalance(space int) uint64

	// CreateAccount allocates space zeroed bytes at the address derived from
	// seeds under the executing program, funded with the minimum balance by
	// payer. Fails if the derived address already holds a live account.
	CreateAccount(payer address.Address, seeds [][]byte, space int) (address.Address, error)

	// Transfer moves lamports from a system-owned signer account.
	Transfer(from, to address.Address, amount uint64) error

	// Withdraw moves lamports out of an account owned by the executing program.
	Withdraw(from, to address.Address, amount uint64) error

	// WriteData overwrites the data of a program-owned account.
	// The length must equal the allocated size.
	WriteData(addr address.Address, data []byte) error

	// Log appends a message to the receipt.
	Log(format string, args ...any)
}

// Program processes instructions addressed to it.
type Program interface {
	Process(h Host, ix Instruction) error
}

// InstructionNamer is optionally implemented by programs to label receipts.
type InstructionNamer interface {
	InstructionName(data []byte) string
}

// ProgramFunc adapts a function to the Program interface.
type ProgramFunc func(h Host, ix Instruction) error

// Process calls f(h, ix).
func (f ProgramFunc) Process(h Host, ix Instruction) error {
	return f(h, ix)
}

// invokeContext implements Host for one transaction.
// Not safe for concurrent use; owned by the executor.
type invokeContext struct {
	rt     *Runtime
	tx     Transaction
	orig   map[address.Address]*Account // nil value: account did not exist
	order  []address.Address
	logs   []string
	closed bool
}

var _ Host = (*invokeContext)(nil)

func newInvokeContext(rt *Runtime, tx Transaction) *invokeContext {
	return &invokeContext{
		rt:   rt,
		tx:   tx,
		orig: make(map[address.Address]*Account),
	}
}

func (c *invokeContext) ProgramID() address.Address { return c.tx.Instruction.ProgramID }

func (c *invokeContext) Signer() address.Address { return c.tx.Signer }

func (c *invokeContext) MinimumBalance(space int) uint64 { return c.rt.rent.MinimumBalance(space) }

func (c *invokeContext) Account(addr address.Address) (Account, bool) {
	return c.rt.lookup(addr)
}

func (c *invokeContext) Log(format string, args ...any) {
	c.logs = append(c.logs, fmt.Sprintf(format, args...))
}

// touch snapshots addr before its first mutation and returns the live entry,
// creating an empty system account if create is set.
func (c *invokeContext) touch(addr address.Address, create bool) (*Account, error) {
	if c.closed {
		return nil, errors.New("invoke context already finalized")
	}
	if !c.tx.Instruction.writable(addr) {
		return nil, newError(ErrCodeReadonlyAccount, addr, "account is not writable")
	}

	acct, ok := c.rt.accounts[addr]
	if _, seen := c.orig[addr]; !seen {
		if ok {
			snap := acct.Clone()
			c.orig[addr] = &snap
		} else {
			c.orig[addr] = nil
		}
		c.order = append(c.order, addr)
	}

	if !ok {
		if !create {
			return nil, newError(ErrCodeAccountNotFound, addr, "account does not exist")
		}
		acct = &Account{Owner: address.SystemProgramID}
		c.rt.accounts[addr] = acct
	}
	return acct, nil
}

func (c *invokeContext) CreateAccount(payer address.Address, seeds [][]byte, space int) (address.Address, error) {
	programID := c.ProgramID()
	addr, err := address.CreateProgramAddress(seeds, programID)
	if err != nil {
		return address.Address{}, &RuntimeError{Code: ErrCodeInvalidSeeds, Message: "cannot derive account address", Err: err}
	}
	if space < 0 || space > MaxAccountSize {
		return address.Address{}, newError(ErrCodeAccountTooLarge, addr, "requested %d bytes, limit %d", space, MaxAccountSize)
	}
	if existing, ok := c.rt.lookup(addr); ok && existing.Live() {
		return address.Address{}, newError(ErrCodeAccountInUse, addr, "address already holds a live account")
	}
	if payer != c.Signer() {
		return address.Address{}, newError(ErrCodeMissingSignature, payer, "payer must sign")
	}

	lamports := c.MinimumBalance(space)

	from, err := c.touch(payer, false)
	if err != nil {
		return address.Address{}, err
	}
	if from.Owner != address.SystemProgramID {
		return address.Address{}, newError(ErrCodeIllegalOwner, payer, "payer is not a system account")
	}
	if from.Lamports < lamports {
		return address.Address{}, newError(ErrCodeInsufficientFunds, payer, "need %d lamports, have %d", lamports, from.Lamports)
	}

	to, err := c.touch(addr, true)
	if err != nil {
		return address.Address{}, err
	}
	from.Lamports -= lamports
	to.Lamports = lamports
	to.Owner = programID
	to.Data = make([]byte, space)

	return addr, nil
}

func (c *invokeContext) Transfer(from, to address.Address, amount uint64) error {
	if from != c.Signer() {
		return newError(ErrCodeMissingSignature, from, "transfer source must sign")
	}
	src, err := c.touch(from, false)
	if err != nil {
		return err
	}
	if src.Owner != address.SystemProgramID {
		return newError(ErrCodeIllegalOwner, from, "transfer source is not a system account")
	}
	if len(src.Data) > 0 {
		return newError(ErrCodeInvalidAccountData, from, "transfer source carries data")
	}
	return c.move(src, from, to, amount)
}

func (c *invokeContext) Withdraw(from, to address.Address, amount uint64) error {
	src, err := c.touch(from, false)
	if err != nil {
		return err
	}
	if src.Owner != c.ProgramID() {
		return newError(ErrCodeIllegalOwner, from, "account is not owned by the executing program")
	}
	return c.move(src, from, to, amount)
}

func (c *invokeContext) move(src *Account, from, to address.Address, amount uint64) error {
	if src.Lamports < amount {
		return newError(ErrCodeInsufficientFunds, from, "need %d lamports, have %d", amount, src.Lamports)
	}
	dst, err := c.touch(to, true)
	if err != nil {
		return err
	}
	if c.closedAtStart(to) {
		return newError(ErrCodeAccountClosed, to, "account is closed")
	}
	if from == to {
		return nil
	}
	credited, ok := checkedAdd(dst.Lamports, amount)
	if !ok {
		return newError(ErrCodeArithmeticOverflow, to, "balance overflow")
	}
	src.Lamports -= amount
	dst.Lamports = credited
	return nil
}

func (c *invokeContext) WriteData(addr address.Address, data []byte) error {
	acct, err := c.touch(addr, false)
	if err != nil {
		return err
	}
	if acct.Owner != c.ProgramID() {
		return newError(ErrCodeIllegalOwner, addr, "account is not owned by the executing program")
	}
	if c.closedAtStart(addr) {
		return newError(ErrCodeAccountClosed, addr, "account is closed")
	}
	if len(data) != len(acct.Data) {
		return newError(ErrCodeInvalidAccountData, addr, "write of %d bytes into %d-byte account", len(data), len(acct.Data))
	}
	copy(acct.Data, data)
	return nil
}

// closedAtStart reports whether addr was closed before this transaction.
// Must be called after touch(addr).
func (c *invokeContext) closedAtStart(addr address.Address) bool {
	snap := c.orig[addr]
	return snap != nil && snap.Closed()
}

// rollback restores every touched account to its pre-transaction state.
func (c *invokeContext) rollback() {
	for _, addr := range c.order {
		if snap := c.orig[addr]; snap != nil {
			restored := snap.Clone()
			c.rt.accounts[addr] = &restored
		} else {
			delete(c.rt.accounts, addr)
		}
	}
	c.closed = true
}

// changeSet lists the post-transaction state of touched accounts.
type changeSet struct {
	updated   map[address.Address]Account
	reclaimed []address.Address
}

// finalize checks rent invariants and reclaims empty accounts.
// A program account drained to zero keeps its data and stays resident as a
// closed account, so its address can never be allocated again.
// On error nothing has been changed beyond what rollback restores.
func (c *invokeContext) finalize() (changeSet, error) {
	cs := changeSet{updated: make(map[address.Address]Account)}
	for _, addr := range c.order {
		acct, ok := c.rt.accounts[addr]
		if !ok {
			continue
		}
		if acct.Lamports == 0 && len(acct.Data) == 0 {
			cs.reclaimed = append(cs.reclaimed, addr)
			continue
		}
		if acct.Lamports > 0 && len(acct.Data) > 0 {
			if need := c.MinimumBalance(len(acct.Data)); acct.Lamports < need {
				return changeSet{}, newError(ErrCodeInsufficientFundsForRent, addr, "balance %d below minimum %d", acct.Lamports, need)
			}
		}
		cs.updated[addr] = acct.Clone()
	}
	for _, addr := range cs.reclaimed {
		delete(c.rt.accounts, addr)
	}
	c.closed = true
	return cs, nil
}
