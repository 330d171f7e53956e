// Package wallet manages signing keys derived from BIP-39 mnemonics.
//
// A mnemonic is expanded to a BIP-39 seed, and the ed25519 signing key for
// account index i is HKDF-SHA256(seed, info="bountylist/wallet/ed25519/v1/<i>").
// Keyfiles are YAML. The mnemonic is stored in the clear unless a password is
// supplied, in which case it is sealed with XChaCha20-Poly1305 under an
// Argon2id key.
package wallet
