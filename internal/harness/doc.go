// Package harness runs scripted bounty list scenarios against a fresh runtime
// and compares their traces with golden files.
//
// # Scenario Format
//
// Scenarios are YAML files:
//
//	name: groceries_capacity
//	description: "A two-slot list rejects a third item"
//	actors:
//	  alice: 1000000000
//	steps:
//	  - op: new_list
//	    as: alice
//	    list: groceries
//	    capacity: 2
//	  - op: add
//	    as: alice
//	    list: groceries
//	    item: milk
//	    bounty_over_minimum: 100
//	  - op: add
//	    as: alice
//	    list: groceries
//	    item: bread
//	    bounty: 1245840
//	    expect: ListFull
//	assertions:
//	  - type: list_items
//	    owner: alice
//	    list: groceries
//	    items: [milk@alice]
//
// A file is first checked against the embedded CUE schema (schema.cue), then
// decoded with unknown fields rejected, then checked for references to
// undeclared actors and for fields each op requires.
//
// # Steps
//
//   - new_list: as creates list with capacity
//   - add: as adds item to owner's list (owner defaults to as); exactly one
//     of bounty or bounty_over_minimum, the latter relative to the item's
//     minimum balance
//   - cancel: as cancels item created by added_by (defaults to as) and
//     refunds refund_to (defaults to added_by)
//   - airdrop: as receives amount lamports
//
// expect names the outcome: "ok" (the default) or an error name as it
// appears on receipts, such as ListFull or ACCOUNT_IN_USE.
//
// # Labels
//
// Traces and assertions name accounts by label rather than address. Actors
// use their own label; a list is "<owner>:<list>" and an item is
// "<owner>:<list>:<item>@<creator>".
//
// # Assertion Types
//
//   - balance: the ledger balance of account equals lamports
//   - list_items: the list holds exactly items, in order, as "<item>@<creator>"
//   - account_absent: account has no ledger row (never created or reclaimed)
//   - account_closed: account's ledger row holds 0 lamports and the closed marker
//   - trace_count: count trace events match op and outcome (either may be omitted)
//
// # Deterministic Testing
//
// Every run uses an in-memory SQLite ledger, keys derived from actor labels
// (testutil.Key) and sequential receipt tokens prefixed with the scenario
// name, so the same scenario always yields a byte-identical trace.
package harness
