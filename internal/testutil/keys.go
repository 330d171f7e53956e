package testutil

import (
	"crypto/ed25519"
	"crypto/sha256"
	"io"

	"golang.org/x/crypto/hkdf"
)

// keySalt separates test keys from wallet-derived keys.
const keySalt = "bountylist/testutil/key/v1"

// Key derives a deterministic ed25519 key from label. The same label always
// yields the same key, so golden output can name actors by label.
//
// Never use outside tests: the key material is public.
func Key(label string) ed25519.PrivateKey {
	r := hkdf.New(sha256.New, []byte(label), []byte(keySalt), nil)
	seed := make([]byte, ed25519.SeedSize)
	if _, err := io.ReadFull(r, seed); err != nil {
		panic("testutil: hkdf: " + err.Error())
	}
	return ed25519.NewKeyFromSeed(seed)
}

// Keyring hands out labelled keys and remembers the label for each public key.
//
// Thread-safety: not safe for concurrent use.
type Keyring struct {
	keys   map[string]ed25519.PrivateKey
	labels map[string]string
}

// NewKeyring creates an empty keyring.
func NewKeyring() *Keyring {
	return &Keyring{
		keys:   make(map[string]ed25519.PrivateKey),
		labels: make(map[string]string),
	}
}

// Get returns the key for label, deriving it on first use.
func (k *Keyring) Get(label string) ed25519.PrivateKey {
	if key, ok := k.keys[label]; ok {
		return key
	}
	key := Key(label)
	k.keys[label] = key
	k.labels[string(key.Public().(ed25519.PublicKey))] = label
	return key
}

// Label returns the label that produced pub, or "" if unknown.
func (k *Keyring) Label(pub []byte) string {
	return k.labels[string(pub)]
}
