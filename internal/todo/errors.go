package todo

import "fmt"

// Error is a program error with a stable numeric code and name.
type Error struct {
	Code uint32
	Name string
	Msg  string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s (%d): %s", e.Name, e.Code, e.Msg)
}

// ErrorName returns the stable name used on receipts.
func (e *Error) ErrorName() string {
	return e.Name
}

// Domain errors, in declaration order starting at 6000.
var (
	ErrListFull          = &Error{6000, "ListFull", "list is at capacity"}
	ErrBountyTooSmall    = &Error{6001, "BountyTooSmall", "bounty does not cover the item's minimum balance"}
	ErrCancelPermissions = &Error{6002, "CancelPermissions", "only the list owner or the item creator may cancel an item"}
	ErrItemNotFound      = &Error{6003, "ItemNotFound", "item is not in the list"}
	ErrWrongListOwner    = &Error{6004, "WrongListOwner", "list address does not match the declared owner and name"}
	ErrWrongItemCreator  = &Error{6005, "WrongItemCreator", "supplied creator does not match the item's creator"}
	ErrCloseFailed       = &Error{6006, "CloseFailed", "could not write the closed marker"}
)

// Framework errors raised while decoding instructions and accounts.
var (
	ErrInstructionFallbackNotFound  = &Error{101, "InstructionFallbackNotFound", "unknown instruction"}
	ErrInstructionDidNotDeserialize = &Error{102, "InstructionDidNotDeserialize", "instruction data is malformed"}
	ErrConstraintSeeds              = &Error{2006, "ConstraintSeeds", "account address does not match its seeds"}
	ErrAccountDiscriminatorMismatch = &Error{3002, "AccountDiscriminatorMismatch", "account discriminator does not match"}
	ErrAccountDidNotDeserialize     = &Error{3003, "AccountDidNotDeserialize", "account data is malformed"}
	ErrAccountDidNotSerialize       = &Error{3004, "AccountDidNotSerialize", "record does not fit its allocation"}
	ErrAccountNotEnoughKeys         = &Error{3005, "AccountNotEnoughKeys", "not enough accounts"}
	ErrAccountOwnedByWrongProgram   = &Error{3007, "AccountOwnedByWrongProgram", "account is owned by another program"}
	ErrInvalidProgramID             = &Error{3008, "InvalidProgramId", "expected the system program"}
	ErrAccountNotSigner             = &Error{3010, "AccountNotSigner", "account must sign"}
	ErrAccountNotInitialized        = &Error{3012, "AccountNotInitialized", "account is not initialized"}
)
