package runtime

import (
	"context"
	"errors"
	"fmt"

	"github.com/roach88/bountylist/internal/address"
)

// ErrorCode categorizes runtime errors.
type ErrorCode string

const (
	// ErrCodeAccountInUse indicates an allocation targeted a live account.
	ErrCodeAccountInUse ErrorCode = "ACCOUNT_IN_USE"

	// ErrCodeAccountClosed indicates a write to or credit of a closed account.
	ErrCodeAccountClosed ErrorCode = "ACCOUNT_CLOSED"

	// ErrCodeAccountNotFound indicates a required account does not exist.
	ErrCodeAccountNotFound ErrorCode = "ACCOUNT_NOT_FOUND"

	// ErrCodeInsufficientFunds indicates the source balance is too small.
	ErrCodeInsufficientFunds ErrorCode = "INSUFFICIENT_FUNDS"

	// ErrCodeInsufficientFundsForRent indicates a data account ended below its minimum balance.
	ErrCodeInsufficientFundsForRent ErrorCode = "INSUFFICIENT_FUNDS_FOR_RENT"

	// ErrCodeMissingSignature indicates an account required to sign did not.
	ErrCodeMissingSignature ErrorCode = "MISSING_SIGNATURE"

	// ErrCodeInvalidSignature indicates the transaction signature does not verify.
	ErrCodeInvalidSignature ErrorCode = "INVALID_SIGNATURE"

	// ErrCodeDuplicateTransaction indicates the transaction was already committed.
	ErrCodeDuplicateTransaction ErrorCode = "DUPLICATE_TRANSACTION"

	// ErrCodeUnknownProgram indicates no program is registered at the target id.
	ErrCodeUnknownProgram ErrorCode = "UNKNOWN_PROGRAM"

	// ErrCodeIllegalOwner indicates the account is owned by a different program.
	ErrCodeIllegalOwner ErrorCode = "ILLEGAL_OWNER"

	// ErrCodeReadonlyAccount indicates a write to an account not marked writable.
	ErrCodeReadonlyAccount ErrorCode = "READONLY_ACCOUNT"

	// ErrCodeInvalidAccountData indicates a data write with the wrong length.
	ErrCodeInvalidAccountData ErrorCode = "INVALID_ACCOUNT_DATA"

	// ErrCodeArithmeticOverflow indicates a balance computation overflowed.
	ErrCodeArithmeticOverflow ErrorCode = "ARITHMETIC_OVERFLOW"

	// ErrCodeAccountTooLarge indicates an allocation above MaxAccountSize.
	ErrCodeAccountTooLarge ErrorCode = "ACCOUNT_TOO_LARGE"

	// ErrCodeInvalidSeeds indicates the seeds do not derive a program address.
	ErrCodeInvalidSeeds ErrorCode = "INVALID_SEEDS"

	// ErrCodeRateLimited indicates the faucet refused an airdrop.
	ErrCodeRateLimited ErrorCode = "RATE_LIMITED"

	// ErrCodeStopped indicates the runtime loop is no longer accepting work.
	ErrCodeStopped ErrorCode = "STOPPED"
)

// RuntimeError represents an error detected by the host while validating or
// executing a transaction.
type RuntimeError struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Account is the account involved, if any.
	Account address.Address

	// Err is the underlying cause, if any.
	Err error
}

// Error implements the error interface.
func (e *RuntimeError) Error() string {
	if !e.Account.IsZero() {
		return fmt.Sprintf("%s: %s (account=%s)", e.Code, e.Message, e.Account)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *RuntimeError) Unwrap() error {
	return e.Err
}

// ErrorName returns the code as the receipt error name.
func (e *RuntimeError) ErrorName() string {
	return string(e.Code)
}

func newError(code ErrorCode, acct address.Address, format string, args ...any) *RuntimeError {
	return &RuntimeError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Account: acct,
	}
}

// IsCode reports whether err is a RuntimeError with the given code.
// Uses errors.As to handle wrapped errors.
func IsCode(err error, code ErrorCode) bool {
	var re *RuntimeError
	if errors.As(err, &re) {
		return re.Code == code
	}
	return false
}

// InstructionError wraps an error returned by a program.
// The program error is preserved verbatim for errors.Is / errors.As.
type InstructionError struct {
	TxID string
	Err  error
}

// Error implements the error interface.
func (e *InstructionError) Error() string {
	return fmt.Sprintf("instruction failed (tx=%s): %v", shortID(e.TxID), e.Err)
}

// Unwrap returns the program error.
func (e *InstructionError) Unwrap() error {
	return e.Err
}

// Named is implemented by errors that carry a stable name for receipts.
type Named interface {
	ErrorName() string
}

// ErrorName returns the stable name of err for receipts and CLI output.
func ErrorName(err error) string {
	if err == nil {
		return ""
	}
	var named Named
	if errors.As(err, &named) {
		return named.ErrorName()
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return "CANCELLED"
	}
	return "INTERNAL"
}

func shortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}
