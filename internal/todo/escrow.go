package todo

import (
	"fmt"

	"github.com/roach88/bountylist/internal/address"
	"github.com/roach88/bountylist/internal/runtime"
)

// depositAmount is the part of bounty not already covered by an item's
// allocation balance. Fails with ErrBountyTooSmall when bounty < balance.
func depositAmount(bounty, balance uint64) (uint64, error) {
	if bounty < balance {
		return 0, fmt.Errorf("%w: bounty %d, minimum %d", ErrBountyTooSmall, bounty, balance)
	}
	return bounty - balance, nil
}

// settleAdd tops the freshly allocated item up to bounty from user and
// returns the amount moved.
func settleAdd(h runtime.Host, user, item address.Address, bounty uint64) (uint64, error) {
	acct, ok := h.Account(item)
	if !ok {
		return 0, ErrAccountNotInitialized
	}
	amount, err := depositAmount(bounty, acct.Lamports)
	if err != nil {
		return 0, err
	}
	if amount == 0 {
		return 0, nil
	}
	if err := h.Transfer(user, item, amount); err != nil {
		return 0, fmt.Errorf("deposit bounty: %w", err)
	}
	return amount, nil
}

// settleCancel drains item to creator and then overwrites it with the
// closed marker. Both steps must apply; a marker write failure is CloseFailed.
func settleCancel(h runtime.Host, item, creator address.Address, space int) (uint64, error) {
	acct, ok := h.Account(item)
	if !ok {
		return 0, ErrItemNotFound
	}
	closed, err := closedRecord(space)
	if err != nil {
		return 0, err
	}
	if err := h.Withdraw(item, creator, acct.Lamports); err != nil {
		return 0, fmt.Errorf("refund bounty: %w", err)
	}
	if err := h.WriteData(item, closed); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrCloseFailed, err)
	}
	return acct.Lamports, nil
}
