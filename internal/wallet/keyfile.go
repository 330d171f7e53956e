package wallet

import (
	"bytes"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"
	"gopkg.in/yaml.v3"

	"github.com/roach88/bountylist/internal/address"
)

const (
	keyfileVersion = 1

	argonTime    = uint32(2)
	argonMemKB   = uint32(64 * 1024)
	argonThreads = uint8(1)
)

// Keyfile is the on-disk form of a wallet.
type Keyfile struct {
	Version  int             `yaml:"version"`
	Address  address.Address `yaml:"address"`
	Index    uint32          `yaml:"index"`
	Mnemonic string          `yaml:"mnemonic,omitempty"`
	Sealed   *SealedMnemonic `yaml:"sealed,omitempty"`
}

// SealedMnemonic is an encrypted mnemonic. Binary fields are base64.
type SealedMnemonic struct {
	KDF        string `yaml:"kdf"`
	Time       uint32 `yaml:"time"`
	MemoryKB   uint32 `yaml:"memory_kb"`
	Threads    uint8  `yaml:"threads"`
	Salt       string `yaml:"salt"`
	Nonce      string `yaml:"nonce"`
	Ciphertext string `yaml:"ciphertext"`
}

// Save writes w to path with mode 0600. An empty password stores the
// mnemonic in the clear. Existing files are never overwritten.
func Save(path string, w *Wallet, password string) error {
	kf := Keyfile{
		Version: keyfileVersion,
		Address: w.Address(),
		Index:   w.Index,
	}
	if password == "" {
		kf.Mnemonic = w.Mnemonic
	} else {
		sealed, err := seal([]byte(w.Mnemonic), []byte(password))
		if err != nil {
			return fmt.Errorf("save keyfile: %w", err)
		}
		kf.Sealed = sealed
	}

	data, err := yaml.Marshal(&kf)
	if err != nil {
		return fmt.Errorf("save keyfile: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("save keyfile: %w", err)
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return fmt.Errorf("save keyfile: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("save keyfile: %w", err)
	}
	return f.Close()
}

// Load reads the keyfile at path and restores its wallet.
func Load(path, password string) (*Wallet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load keyfile: %w", err)
	}

	var kf Keyfile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&kf); err != nil {
		return nil, fmt.Errorf("load keyfile %s: %w", path, err)
	}
	if kf.Version != keyfileVersion {
		return nil, fmt.Errorf("load keyfile %s: unsupported version %d", path, kf.Version)
	}

	mnemonic := kf.Mnemonic
	if kf.Sealed != nil {
		if password == "" {
			return nil, ErrPasswordRequired
		}
		plain, err := open(kf.Sealed, []byte(password))
		if err != nil {
			return nil, err
		}
		mnemonic = string(plain)
	}

	w, err := FromMnemonic(mnemonic, kf.Index)
	if err != nil {
		return nil, fmt.Errorf("load keyfile %s: %w", path, err)
	}
	if w.Address() != kf.Address {
		return nil, fmt.Errorf("load keyfile %s: %w", path, ErrAddressMismatch)
	}
	return w, nil
}

func seal(plain, password []byte) (*SealedMnemonic, error) {
	salt := make([]byte, 16)
	if _, err := rand.Read(salt); err != nil {
		return nil, err
	}
	key := argon2.IDKey(password, salt, argonTime, argonMemKB, argonThreads, chacha20poly1305.KeySize)
	defer clear(key)

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, chacha20poly1305.NonceSizeX)
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}
	return &SealedMnemonic{
		KDF:        "argon2id",
		Time:       argonTime,
		MemoryKB:   argonMemKB,
		Threads:    argonThreads,
		Salt:       base64.StdEncoding.EncodeToString(salt),
		Nonce:      base64.StdEncoding.EncodeToString(nonce),
		Ciphertext: base64.StdEncoding.EncodeToString(aead.Seal(nil, nonce, plain, nil)),
	}, nil
}

func open(s *SealedMnemonic, password []byte) ([]byte, error) {
	if s.KDF != "argon2id" {
		return nil, fmt.Errorf("unsupported kdf: %s", s.KDF)
	}
	salt, err1 := base64.StdEncoding.DecodeString(s.Salt)
	nonce, err2 := base64.StdEncoding.DecodeString(s.Nonce)
	ct, err3 := base64.StdEncoding.DecodeString(s.Ciphertext)
	if err := errors.Join(err1, err2, err3); err != nil {
		return nil, fmt.Errorf("sealed mnemonic: %w", err)
	}

	key := argon2.IDKey(password, salt, s.Time, s.MemoryKB, s.Threads, chacha20poly1305.KeySize)
	defer clear(key)
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, err
	}
	if len(nonce) != aead.NonceSize() {
		return nil, fmt.Errorf("sealed mnemonic: nonce is %d bytes", len(nonce))
	}
	plain, err := aead.Open(nil, nonce, ct, nil)
	if err != nil {
		return nil, ErrInvalidPassword
	}
	return plain, nil
}
