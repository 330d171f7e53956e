package runtime

import (
	"crypto/ed25519"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"

	"github.com/roach88/bountylist/internal/address"
)

// DomainTransaction prefixes transaction ids.
// Version suffix enables future algorithm migration.
const DomainTransaction = "bountylist/transaction/v1"

// AccountMeta declares an account an instruction touches and how.
type AccountMeta struct {
	Address  address.Address `json:"address"`
	Signer   bool            `json:"signer"`
	Writable bool            `json:"writable"`
}

// Instruction is a single program invocation.
type Instruction struct {
	ProgramID address.Address `json:"program_id"`
	Accounts  []AccountMeta   `json:"accounts"`
	Data      []byte          `json:"data"`
}

// writable reports whether addr is declared writable by any meta.
func (ix Instruction) writable(addr address.Address) bool {
	for _, m := range ix.Accounts {
		if m.Address == addr && m.Writable {
			return true
		}
	}
	return false
}

// Transaction is a signed instruction.
// Nonce distinguishes otherwise identical submissions.
type Transaction struct {
	Instruction Instruction     `json:"instruction"`
	Signer      address.Address `json:"signer"`
	Nonce       uint64          `json:"nonce"`
	Signature   []byte          `json:"signature"`
}

// NewTransaction signs ix with key.
func NewTransaction(ix Instruction, key ed25519.PrivateKey, nonce uint64) Transaction {
	tx := Transaction{
		Instruction: ix,
		Signer:      address.FromPublicKey(key.Public().(ed25519.PublicKey)),
		Nonce:       nonce,
	}
	tx.Signature = ed25519.Sign(key, tx.Message())
	return tx
}

// Message returns the deterministic byte encoding that is signed.
//
// Layout (little endian):
//
//	program_id[32] | u16 n | n × (address[32] | flags u8) | u32 len | data | signer[32] | nonce u64
func (tx Transaction) Message() []byte {
	ix := tx.Instruction
	size := 32 + 2 + len(ix.Accounts)*33 + 4 + len(ix.Data) + 32 + 8
	buf := make([]byte, 0, size)

	buf = append(buf, ix.ProgramID[:]...)
	buf = binary.LittleEndian.AppendUint16(buf, uint16(len(ix.Accounts)))
	for _, m := range ix.Accounts {
		buf = append(buf, m.Address[:]...)
		var flags byte
		if m.Signer {
			flags |= 1
		}
		if m.Writable {
			flags |= 2
		}
		buf = append(buf, flags)
	}
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(ix.Data)))
	buf = append(buf, ix.Data...)
	buf = append(buf, tx.Signer[:]...)
	buf = binary.LittleEndian.AppendUint64(buf, tx.Nonce)
	return buf
}

// ID computes the content-addressed transaction id.
// Format: hex(SHA256(domain + 0x00 + message + signature))
func (tx Transaction) ID() string {
	h := sha256.New()
	h.Write([]byte(DomainTransaction))
	h.Write([]byte{0x00})
	h.Write(tx.Message())
	h.Write(tx.Signature)
	return hex.EncodeToString(h.Sum(nil))
}

// Verify checks the signature and that every signer meta is the transaction signer.
func (tx Transaction) Verify() error {
	if len(tx.Signature) != ed25519.SignatureSize {
		return newError(ErrCodeInvalidSignature, tx.Signer, "signature is %d bytes", len(tx.Signature))
	}
	if !ed25519.Verify(tx.Signer.PublicKey(), tx.Message(), tx.Signature) {
		return newError(ErrCodeInvalidSignature, tx.Signer, "signature does not verify")
	}
	for i, m := range tx.Instruction.Accounts {
		if m.Signer && m.Address != tx.Signer {
			return newError(ErrCodeMissingSignature, m.Address, "account %d requires a signature", i)
		}
	}
	return nil
}

// Status is the outcome of a transaction.
type Status string

const (
	StatusOK     Status = "ok"
	StatusFailed Status = "failed"
)

// Receipt records the outcome of one transaction.
type Receipt struct {
	ID          string          `json:"id"`
	Seq         int64           `json:"seq"`
	Token       string          `json:"token"`
	Signer      address.Address `json:"signer"`
	Program     address.Address `json:"program"`
	Instruction string          `json:"instruction"`
	Status      Status          `json:"status"`
	ErrorCode   string          `json:"error_code,omitempty"`
	Error       string          `json:"error,omitempty"`
	Logs        []string        `json:"logs,omitempty"`
}

// String returns a one-line summary.
func (r *Receipt) String() string {
	if r.Status == StatusOK {
		return fmt.Sprintf("#%d %s ok (%s)", r.Seq, r.Instruction, shortID(r.ID))
	}
	return fmt.Sprintf("#%d %s failed: %s (%s)", r.Seq, r.Instruction, r.ErrorCode, shortID(r.ID))
}
