package todo

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/bountylist/internal/address"
	"github.com/roach88/bountylist/internal/runtime"
)

func TestNewList(t *testing.T) {
	f := newFixture(t)
	owner := f.actor("alice")

	list := f.newList("alice", "groceries", 2)

	want, bump, err := FindListAddress(owner, "groceries")
	require.NoError(t, err)
	assert.Equal(t, want, list)

	got := f.list(list)
	assert.Equal(t, owner, got.Owner)
	assert.Equal(t, bump, got.Bump)
	assert.Equal(t, uint16(2), got.Capacity)
	assert.Equal(t, "groceries", got.Name)
	assert.Empty(t, got.Items)

	acct, ok := f.rt.Account(list)
	require.True(t, ok)
	assert.Len(t, acct.Data, 124)
	assert.Equal(t, uint64(groceriesMinimum), acct.Lamports)
	assert.Equal(t, ProgramID, acct.Owner)
	assert.Equal(t, uint64(startingBalance-groceriesMinimum), f.rt.Balance(owner))
}

func TestNewList_AlreadyExists(t *testing.T) {
	f := newFixture(t)
	owner := f.actor("alice")
	list := f.newList("alice", "groceries", 2)

	ix, _, err := NewListInstruction(owner, "groceries", 5)
	require.NoError(t, err)
	rec, err := f.exec("alice", ix)

	require.Error(t, err)
	assert.True(t, runtime.IsCode(err, runtime.ErrCodeAccountInUse))
	assert.Equal(t, "ACCOUNT_IN_USE", rec.ErrorCode)
	assert.Equal(t, uint16(2), f.list(list).Capacity, "original list untouched")
}

func TestNewList_NonCanonicalBump(t *testing.T) {
	f := newFixture(t)
	owner := f.actor("alice")

	ix, _, err := NewListInstruction(owner, "groceries", 2)
	require.NoError(t, err)
	args, err := decodeNewList(ix.Data)
	require.NoError(t, err)
	args.Bump--
	ix.Data = args.encode()

	rec, err := f.exec("alice", ix)
	assert.ErrorIs(t, err, ErrConstraintSeeds)
	assert.Equal(t, "ConstraintSeeds", rec.ErrorCode)
}

func TestNewList_WrongAddress(t *testing.T) {
	f := newFixture(t)
	owner := f.actor("alice")

	ix, _, err := NewListInstruction(owner, "groceries", 2)
	require.NoError(t, err)
	other, _, err := FindListAddress(owner, "chores")
	require.NoError(t, err)
	ix.Accounts[0].Address = other

	_, err = f.exec("alice", ix)
	assert.ErrorIs(t, err, ErrConstraintSeeds)
}

func TestNewList_ZeroCapacity(t *testing.T) {
	f := newFixture(t)
	list := f.newList("alice", "empty", 0)

	_, err := f.add("bob", "alice", "empty", "milk", milkMinimum)
	assert.ErrorIs(t, err, ErrListFull)
	assert.Empty(t, f.list(list).Items)
}

func TestAdd_GroceriesScenario(t *testing.T) {
	f := newFixture(t)
	alice := f.actor("alice")
	list := f.newList("alice", "groceries", 2)

	before := f.rt.Balance(alice)
	milk, err := f.add("alice", "alice", "groceries", "milk", milkMinimum+100)
	require.NoError(t, err)
	assert.Equal(t, uint64(milkMinimum+100), f.rt.Balance(milk))
	assert.Equal(t, before-(milkMinimum+100), f.rt.Balance(alice))

	eggs, err := f.add("alice", "alice", "groceries", "eggs", milkMinimum)
	require.NoError(t, err)
	assert.Equal(t, uint64(milkMinimum), f.rt.Balance(eggs))

	before = f.rt.Balance(alice)
	_, err = f.add("alice", "alice", "groceries", "bread", 10_000_000)
	assert.ErrorIs(t, err, ErrListFull)
	assert.Equal(t, before, f.rt.Balance(alice))

	assert.Equal(t, []address.Address{milk, eggs}, f.list(list).Items)

	item, err := FetchItem(f.rt, milk)
	require.NoError(t, err)
	assert.Equal(t, alice, item.Creator)
	assert.Equal(t, "milk", item.Name)
}

func TestAdd_BountyTooSmall(t *testing.T) {
	f := newFixture(t)
	bob := f.actor("bob")
	list := f.newList("alice", "groceries", 2)

	before := f.rt.Balance(bob)
	item, err := f.add("bob", "alice", "groceries", "milk", milkMinimum-1)

	assert.ErrorIs(t, err, ErrBountyTooSmall)
	assert.Empty(t, f.list(list).Items)
	assert.Equal(t, before, f.rt.Balance(bob))
	_, exists := f.rt.Account(item)
	assert.False(t, exists)
}

func TestAdd_WrongListOwner(t *testing.T) {
	f := newFixture(t)
	alice := f.actor("alice")
	mallory := f.actor("mallory")
	f.newList("alice", "groceries", 2)

	ix, _, err := AddInstruction(alice, "groceries", mallory, "milk", milkMinimum)
	require.NoError(t, err)
	ix.Accounts[1].Address = mallory

	rec, err := f.exec("mallory", ix)
	assert.ErrorIs(t, err, ErrWrongListOwner)
	assert.Equal(t, "WrongListOwner", rec.ErrorCode)
}

func TestAdd_WrongItemAddress(t *testing.T) {
	f := newFixture(t)
	alice := f.actor("alice")
	bob := f.actor("bob")
	list := f.newList("alice", "groceries", 2)

	ix, _, err := AddInstruction(alice, "groceries", bob, "milk", milkMinimum)
	require.NoError(t, err)
	other, _, err := FindItemAddress(list, bob, "eggs")
	require.NoError(t, err)
	ix.Accounts[2].Address = other

	_, err = f.exec("bob", ix)
	assert.ErrorIs(t, err, ErrConstraintSeeds)
}

func TestAdd_ListNotInitialized(t *testing.T) {
	f := newFixture(t)
	f.actor("alice")

	_, err := f.add("bob", "alice", "missing", "milk", milkMinimum)
	assert.ErrorIs(t, err, ErrAccountNotInitialized)
}

func TestAdd_DuplicateItemName(t *testing.T) {
	f := newFixture(t)
	list := f.newList("alice", "groceries", 2)

	_, err := f.add("bob", "alice", "groceries", "milk", milkMinimum)
	require.NoError(t, err)
	_, err = f.add("bob", "alice", "groceries", "milk", milkMinimum)

	assert.True(t, runtime.IsCode(err, runtime.ErrCodeAccountInUse))
	assert.Len(t, f.list(list).Items, 1)
}

func TestAdd_InsufficientFunds(t *testing.T) {
	f := newFixture(t)
	bob := f.actor("bob")
	list := f.newList("alice", "groceries", 2)

	_, err := f.add("bob", "alice", "groceries", "milk", startingBalance+1)

	assert.True(t, runtime.IsCode(err, runtime.ErrCodeInsufficientFunds))
	assert.Equal(t, uint64(startingBalance), f.rt.Balance(bob))
	assert.Empty(t, f.list(list).Items)
}

func TestCancel_OwnerRefundsCreator(t *testing.T) {
	f := newFixture(t)
	alice := f.actor("alice")
	bob := f.actor("bob")
	list := f.newList("alice", "groceries", 2)

	milk, err := f.add("bob", "alice", "groceries", "milk", milkMinimum+500)
	require.NoError(t, err)

	aliceBefore := f.rt.Balance(alice)
	bobBefore := f.rt.Balance(bob)
	itemBalance := f.rt.Balance(milk)

	require.NoError(t, f.cancel("alice", "alice", "groceries", milk, bob))

	assert.Equal(t, bobBefore+itemBalance, f.rt.Balance(bob))
	assert.Equal(t, aliceBefore, f.rt.Balance(alice))
	assert.Equal(t, uint64(0), f.rt.Balance(milk))
	assert.Empty(t, f.list(list).Items)

	_, err = FetchItem(f.rt, milk)
	assert.ErrorIs(t, err, ErrAccountNotInitialized)

	err = f.cancel("alice", "alice", "groceries", milk, bob)
	assert.ErrorIs(t, err, ErrItemNotFound)
}

func TestCancel_CreatorMayCancel(t *testing.T) {
	f := newFixture(t)
	bob := f.actor("bob")
	f.newList("alice", "groceries", 2)

	milk, err := f.add("bob", "alice", "groceries", "milk", milkMinimum)
	require.NoError(t, err)

	assert.NoError(t, f.cancel("bob", "alice", "groceries", milk, bob))
	assert.Equal(t, uint64(startingBalance), f.rt.Balance(bob))
}

func TestCancel_PreservesOrder(t *testing.T) {
	f := newFixture(t)
	alice := f.actor("alice")
	list := f.newList("alice", "chores", 3)

	a, err := f.add("alice", "alice", "chores", "a", milkMinimum)
	require.NoError(t, err)
	b, err := f.add("alice", "alice", "chores", "b", milkMinimum)
	require.NoError(t, err)
	c, err := f.add("alice", "alice", "chores", "c", milkMinimum)
	require.NoError(t, err)

	require.NoError(t, f.cancel("alice", "alice", "chores", b, alice))
	assert.Equal(t, []address.Address{a, c}, f.list(list).Items)

	d, err := f.add("alice", "alice", "chores", "d", milkMinimum)
	require.NoError(t, err)
	assert.Equal(t, []address.Address{a, c, d}, f.list(list).Items)
}

func TestCancel_Permissions(t *testing.T) {
	f := newFixture(t)
	bob := f.actor("bob")
	f.actor("mallory")
	list := f.newList("alice", "groceries", 2)

	milk, err := f.add("bob", "alice", "groceries", "milk", milkMinimum)
	require.NoError(t, err)

	err = f.cancel("mallory", "alice", "groceries", milk, bob)
	assert.ErrorIs(t, err, ErrCancelPermissions)
	assert.Len(t, f.list(list).Items, 1)
}

func TestCancel_WrongItemCreator(t *testing.T) {
	f := newFixture(t)
	alice := f.actor("alice")
	f.actor("bob")
	list := f.newList("alice", "groceries", 2)

	milk, err := f.add("bob", "alice", "groceries", "milk", milkMinimum)
	require.NoError(t, err)
	before := f.rt.Balance(milk)

	err = f.cancel("alice", "alice", "groceries", milk, alice)
	assert.ErrorIs(t, err, ErrWrongItemCreator)
	assert.Equal(t, before, f.rt.Balance(milk))
	assert.Len(t, f.list(list).Items, 1)
}

func TestCancel_ItemNotInList(t *testing.T) {
	f := newFixture(t)
	bob := f.actor("bob")
	f.newList("alice", "groceries", 2)
	f.newList("alice", "chores", 2)

	milk, err := f.add("bob", "alice", "chores", "milk", milkMinimum)
	require.NoError(t, err)

	err = f.cancel("alice", "alice", "groceries", milk, bob)
	assert.ErrorIs(t, err, ErrItemNotFound)
}

func TestCancel_WrongListName(t *testing.T) {
	f := newFixture(t)
	alice := f.actor("alice")
	bob := f.actor("bob")
	f.newList("alice", "groceries", 2)

	milk, err := f.add("bob", "alice", "groceries", "milk", milkMinimum)
	require.NoError(t, err)

	ix, err := CancelInstruction(alice, "groceries", milk, bob, alice)
	require.NoError(t, err)
	ix.Data = CancelArgs{ListName: "chores"}.encode()

	_, err = f.exec("alice", ix)
	assert.ErrorIs(t, err, ErrWrongListOwner)
}

func TestCancel_ThenReAdd(t *testing.T) {
	f := newFixture(t)
	bob := f.actor("bob")
	list := f.newList("alice", "groceries", 1)

	milk, err := f.add("bob", "alice", "groceries", "milk", milkMinimum)
	require.NoError(t, err)
	require.NoError(t, f.cancel("alice", "alice", "groceries", milk, bob))

	again, err := f.add("bob", "alice", "groceries", "milk", milkMinimum)
	require.Error(t, err)
	assert.Equal(t, milk, again)
	assert.True(t, runtime.IsCode(err, runtime.ErrCodeAccountInUse))
	assert.Empty(t, f.list(list).Items)

	acct, ok := f.rt.Account(milk)
	require.True(t, ok, "cancelled item stays resident")
	assert.Zero(t, acct.Lamports)
	assert.True(t, IsClosed(acct.Data))
	assert.Equal(t, uint64(startingBalance), f.rt.Balance(bob))

	_, err = FetchItem(f.rt, milk)
	assert.ErrorIs(t, err, ErrAccountNotInitialized)
}

func TestCancel_Twice(t *testing.T) {
	f := newFixture(t)
	bob := f.actor("bob")
	f.newList("alice", "groceries", 2)

	milk, err := f.add("bob", "alice", "groceries", "milk", milkMinimum)
	require.NoError(t, err)
	require.NoError(t, f.cancel("alice", "alice", "groceries", milk, bob))

	err = f.cancel("alice", "alice", "groceries", milk, bob)
	assert.ErrorIs(t, err, ErrItemNotFound)
	err = f.cancel("bob", "alice", "groceries", milk, bob)
	assert.ErrorIs(t, err, ErrItemNotFound)
}

func TestProcess_UnknownInstruction(t *testing.T) {
	f := newFixture(t)
	f.actor("alice")

	rec, err := f.exec("alice", runtime.Instruction{ProgramID: ProgramID, Data: []byte{1, 2, 3}})
	assert.ErrorIs(t, err, ErrInstructionFallbackNotFound)
	assert.Equal(t, "unknown", rec.Instruction)
}

func TestProcess_MalformedArgs(t *testing.T) {
	f := newFixture(t)
	alice := f.actor("alice")

	ix, _, err := NewListInstruction(alice, "groceries", 2)
	require.NoError(t, err)
	ix.Data = ix.Data[:len(ix.Data)-1]

	rec, err := f.exec("alice", ix)
	assert.ErrorIs(t, err, ErrInstructionDidNotDeserialize)
	assert.Equal(t, InstructionNewList, rec.Instruction)
}

func TestProcess_NotEnoughAccounts(t *testing.T) {
	f := newFixture(t)
	alice := f.actor("alice")

	ix, _, err := NewListInstruction(alice, "groceries", 2)
	require.NoError(t, err)
	ix.Accounts = ix.Accounts[:2]

	_, err = f.exec("alice", ix)
	assert.ErrorIs(t, err, ErrAccountNotEnoughKeys)
}

func TestProcess_SignerMustBeUser(t *testing.T) {
	f := newFixture(t)
	alice := f.actor("alice")

	ix, _, err := NewListInstruction(alice, "groceries", 2)
	require.NoError(t, err)
	ix.Accounts[1].Signer = false

	_, err = f.exec("alice", ix)
	assert.ErrorIs(t, err, ErrAccountNotSigner)
}

func TestInstructionName(t *testing.T) {
	ix, _, err := NewListInstruction(actorAddress("alice"), "x", 1)
	require.NoError(t, err)
	assert.Equal(t, InstructionNewList, InstructionName(ix.Data))
	assert.Equal(t, "unknown", InstructionName(nil))
	assert.Equal(t, "unknown", InstructionName(make([]byte, 8)))
}

func TestExecute_FailedTransactionCanBeResubmitted(t *testing.T) {
	f := newFixture(t)
	alice := f.actor("alice")
	f.actor("bob")
	list := f.newList("alice", "groceries", 2)

	ix, _, err := AddInstruction(alice, "groceries", actorAddress("bob"), "milk", milkMinimum)
	require.NoError(t, err)
	tx := runtime.NewTransaction(ix, f.keys.Get("bob"), 42)

	// Fill the list from another actor so the add fails, then free a slot.
	carol := f.actor("carol")
	_, err = f.add("carol", "alice", "groceries", "a", milkMinimum)
	require.NoError(t, err)
	b, err := f.add("carol", "alice", "groceries", "b", milkMinimum)
	require.NoError(t, err)

	_, err = f.rt.Execute(context.Background(), tx)
	require.ErrorIs(t, err, ErrListFull)

	require.NoError(t, f.cancel("carol", "alice", "groceries", b, carol))

	_, err = f.rt.Execute(context.Background(), tx)
	require.NoError(t, err)
	assert.Len(t, f.list(list).Items, 2)
}
