// Package todo is the bounty list program: capacity-bounded lists whose items
// each hold an escrowed bounty.
//
// The program has three instructions:
//
//   - new_list: allocate a list record at the address derived from
//     ("todolist", owner, name[:32]) with room for exactly capacity items
//   - add: allocate an item record funded by the adder, move the rest of the
//     bounty into it, and append its address to the list
//   - cancel: drain the item to its creator, overwrite it with the closed
//     marker, and remove it from the list (order preserved)
//
// # Invariants
//
//   - len(list.Items) <= list.Capacity at all times
//   - The list address is re-derived from (owner, name, stored bump) on every
//     add and cancel; a mismatch is ErrWrongListOwner
//   - A live item holds at least the minimum balance for its storage
//   - Every check that can fail runs before the first balance movement
//   - Items move nonexistent → live → closed, never back. A closed item
//     keeps its address, so the same creator cannot re-add that name
//
// Names longer than 32 bytes share an address with every other name that has
// the same 32-byte prefix. This is a property of the address scheme.
//
// The CreatorFinished and OwnerFinished item flags are stored but no
// instruction sets them.
package todo
