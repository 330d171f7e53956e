package store

import (
	"time"

	"github.com/roach88/bountylist/internal/address"
)

// AccountState is the persisted form of one account.
type AccountState struct {
	Address  address.Address
	Lamports uint64
	Owner    address.Address
	Data     []byte
	Seq      int64 // seq of the transaction that last wrote the account
}

// TransactionRecord is the persisted form of one receipt.
type TransactionRecord struct {
	ID          string
	Seq         int64
	Token       string
	Signer      address.Address
	Program     address.Address
	Instruction string
	Status      string
	ErrorCode   string
	Error       string
	Logs        []string
	RecordedAt  time.Time // wall time of the commit; never used for ordering
}
