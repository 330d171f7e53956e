package wallet

import (
	"crypto/ed25519"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/tyler-smith/go-bip39"
	"golang.org/x/crypto/hkdf"

	"github.com/roach88/bountylist/internal/address"
)

var (
	ErrInvalidMnemonic  = errors.New("invalid mnemonic")
	ErrInvalidPassword  = errors.New("invalid password")
	ErrAddressMismatch  = errors.New("keyfile address does not match its key")
	ErrPasswordRequired = errors.New("keyfile is encrypted; password required")
)

const hkdfInfoPrefix = "bountylist/wallet/ed25519/v1/"

// Wallet is a mnemonic together with the key it derives at Index.
type Wallet struct {
	Mnemonic string
	Index    uint32
	key      ed25519.PrivateKey
}

// Generate creates a wallet from a fresh 24-word mnemonic.
func Generate() (*Wallet, error) {
	entropy, err := bip39.NewEntropy(256)
	if err != nil {
		return nil, fmt.Errorf("generate entropy: %w", err)
	}
	mnemonic, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return nil, fmt.Errorf("generate mnemonic: %w", err)
	}
	return FromMnemonic(mnemonic, 0)
}

// FromMnemonic restores the wallet at index from mnemonic.
func FromMnemonic(mnemonic string, index uint32) (*Wallet, error) {
	mnemonic = strings.Join(strings.Fields(mnemonic), " ")
	if !bip39.IsMnemonicValid(mnemonic) {
		return nil, ErrInvalidMnemonic
	}
	seed, err := bip39.NewSeedWithErrorChecking(mnemonic, "")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMnemonic, err)
	}
	key, err := deriveKey(seed, index)
	if err != nil {
		return nil, err
	}
	return &Wallet{Mnemonic: mnemonic, Index: index, key: key}, nil
}

// PrivateKey returns the signing key.
func (w *Wallet) PrivateKey() ed25519.PrivateKey {
	return w.key
}

// Address returns the account address of the signing key.
func (w *Wallet) Address() address.Address {
	return address.FromPublicKey(w.key.Public().(ed25519.PublicKey))
}

func deriveKey(seed []byte, index uint32) (ed25519.PrivateKey, error) {
	r := hkdf.New(sha256.New, seed, nil, []byte(fmt.Sprintf("%s%d", hkdfInfoPrefix, index)))
	out := make([]byte, ed25519.SeedSize)
	if _, err := io.ReadFull(r, out); err != nil {
		return nil, fmt.Errorf("derive key: %w", err)
	}
	return ed25519.NewKeyFromSeed(out), nil
}
