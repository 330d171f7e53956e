// Package runtime is the single-process ledger host that loads programs and
// executes signed transactions against accounts.
//
// The runtime owns everything the programs it hosts must not do themselves:
//   - Signature verification and duplicate-transaction rejection
//   - Account storage, rent-exempt minimum balances and reclamation
//   - Balance transfers with checked arithmetic
//   - Atomic commit: a transaction either applies all of its account writes
//     or none of them
//
// # Execution Model
//
// Transactions are serialized. Execute runs one transaction under the runtime
// lock; Submit enqueues it for the single-writer Run loop. Both paths share
// one executor, so a program never observes a concurrent writer.
//
// Every account mutation goes through a per-transaction journal. The first
// write to an account snapshots its prior state; if the program returns an
// error, or the commit to the ledger fails, every snapshot is restored.
//
// On success, empty accounts (no lamports, no data) are reclaimed and the
// touched accounts are persisted together with a Receipt in one ledger
// transaction. A program account drained to zero lamports keeps its data and
// stays resident as a closed account: its address cannot be allocated again
// and it accepts no further writes or credits.
//
// # Ordering
//
// Receipts carry a monotonic logical sequence number from Clock. Wall-clock
// time is never used for ordering.
package runtime
