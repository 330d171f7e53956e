// Package address provides 32-byte ledger identities and the host's
// program-derived address primitive.
//
// A program-derived address (PDA) is computed as
//
//	SHA256(seed_0 || ... || seed_n || program_id || "ProgramDerivedAddress")
//
// and is only valid when the digest does not decode to a point on the
// ed25519 curve, so no private key can ever sign for it. FindProgramAddress
// appends a one-byte bump seed, searching from 255 downward, until an
// off-curve digest is found.
//
// Addresses render as base58 text.
package address
