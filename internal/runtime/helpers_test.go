package runtime

import (
	"context"
	"crypto/ed25519"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/bountylist/internal/address"
	"github.com/roach88/bountylist/internal/testutil"
)

var testProgramID = address.Address{0xAA, 0x01}

// minimum(10) with the default rent: (128 + 10) * 3480 * 2.
const minimumTen = 960_480

func keyAddress(key ed25519.PrivateKey) address.Address {
	return address.FromPublicKey(key.Public().(ed25519.PublicKey))
}

// newTestRuntime returns a runtime with deterministic tokens and a funded payer.
func newTestRuntime(t *testing.T, p Program, opts ...Option) (*Runtime, ed25519.PrivateKey) {
	t.Helper()
	opts = append([]Option{WithTokenGenerator(testutil.NewSequentialTokens("tx"))}, opts...)
	rt := New(opts...)
	if p != nil {
		rt.Register(testProgramID, p)
	}
	key := testutil.Key("payer")
	_, err := rt.Airdrop(context.Background(), keyAddress(key), 10_000_000)
	require.NoError(t, err)
	return rt, key
}

// pdaSeeds are the seeds, canonical bump included, of the single account
// the test programs allocate.
var pdaSeeds = func() [][]byte {
	_, bump, err := address.FindProgramAddress([][]byte{[]byte("acct")}, testProgramID)
	if err != nil {
		panic(err)
	}
	return [][]byte{[]byte("acct"), {bump}}
}()

func pda(t *testing.T) address.Address {
	t.Helper()
	a, err := address.CreateProgramAddress(pdaSeeds, testProgramID)
	require.NoError(t, err)
	return a
}

// ix builds an instruction with the payer as writable signer followed by extra metas.
func ix(payer address.Address, extra ...AccountMeta) Instruction {
	metas := append([]AccountMeta{{Address: payer, Signer: true, Writable: true}}, extra...)
	return Instruction{ProgramID: testProgramID, Accounts: metas, Data: []byte("test")}
}

// allocate is a program that creates the pda account with 10 bytes and
// writes "0123456789" into it.
var allocate = ProgramFunc(func(h Host, ix Instruction) error {
	addr, err := h.CreateAccount(h.Signer(), pdaSeeds, 10)
	if err != nil {
		return err
	}
	h.Log("allocated %s", addr)
	return h.WriteData(addr, []byte("0123456789"))
})
