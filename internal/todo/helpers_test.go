package todo

import (
	"context"
	"crypto/ed25519"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/bountylist/internal/address"
	"github.com/roach88/bountylist/internal/runtime"
	"github.com/roach88/bountylist/internal/testutil"
)

const (
	// groceriesMinimum is the minimum balance of a 2-slot list named
	// "groceries": (128 + 124) * 3480 * 2.
	groceriesMinimum = 1_753_920

	// milkMinimum is the minimum balance of an item named "milk" or "eggs":
	// (128 + 50) * 3480 * 2.
	milkMinimum = 1_238_880

	startingBalance = 1_000_000_000
)

// fixture is a runtime with the todo program registered and funded actors.
type fixture struct {
	t     *testing.T
	rt    *runtime.Runtime
	keys  *testutil.Keyring
	nonce uint64
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	rt := runtime.New(runtime.WithTokenGenerator(testutil.NewSequentialTokens("tx")))
	rt.Register(ProgramID, Program{})
	return &fixture{t: t, rt: rt, keys: testutil.NewKeyring()}
}

// actor returns the funded address for label.
func (f *fixture) actor(label string) address.Address {
	f.t.Helper()
	key := f.keys.Get(label)
	addr := address.FromPublicKey(key.Public().(ed25519.PublicKey))
	if f.rt.Balance(addr) == 0 {
		_, err := f.rt.Airdrop(context.Background(), addr, startingBalance)
		require.NoError(f.t, err)
	}
	return addr
}

func (f *fixture) exec(label string, ix runtime.Instruction) (*runtime.Receipt, error) {
	f.t.Helper()
	f.nonce++
	tx := runtime.NewTransaction(ix, f.keys.Get(label), f.nonce)
	return f.rt.Execute(context.Background(), tx)
}

func (f *fixture) newList(label, name string, capacity uint16) address.Address {
	f.t.Helper()
	owner := f.actor(label)
	ix, list, err := NewListInstruction(owner, name, capacity)
	require.NoError(f.t, err)
	_, err = f.exec(label, ix)
	require.NoError(f.t, err)
	return list
}

func (f *fixture) add(label, ownerLabel, listName, itemName string, bounty uint64) (address.Address, error) {
	f.t.Helper()
	user := f.actor(label)
	ix, item, err := AddInstruction(f.actor(ownerLabel), listName, user, itemName, bounty)
	require.NoError(f.t, err)
	_, err = f.exec(label, ix)
	return item, err
}

func (f *fixture) cancel(label, ownerLabel, listName string, item, creator address.Address) error {
	f.t.Helper()
	ix, err := CancelInstruction(f.actor(ownerLabel), listName, item, creator, f.actor(label))
	require.NoError(f.t, err)
	_, err = f.exec(label, ix)
	return err
}

func (f *fixture) list(addr address.Address) *TodoList {
	f.t.Helper()
	l, err := FetchList(f.rt, addr)
	require.NoError(f.t, err)
	return l
}

// actorAddress returns the address of the deterministic test key for label.
func actorAddress(label string) address.Address {
	return address.FromPublicKey(testutil.Key(label).Public().(ed25519.PublicKey))
}
