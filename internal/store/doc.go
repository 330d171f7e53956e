// Package store provides SQLite-backed durable storage for the ledger.
//
// The store holds two tables:
//   - accounts: the latest committed state of every live or closed account
//   - transactions: an append-only log of receipts, successful or not
//
// # Critical Patterns
//
// Atomic Commit
//   - Commit writes the receipt, the updated accounts and the reclaimed
//     account deletions in one SQL transaction
//   - A failed Commit leaves the database unchanged
//
// Logical Time
//   - All ordering uses seq INTEGER (logical clock), NEVER timestamps
//   - recorded_at holds the commit's wall time for the faucet only
//   - seq is UNIQUE; the runtime resumes its clock from MAX(seq)
//
// Resubmission
//   - A transaction id is UNIQUE only among successful receipts (partial
//     index), so a failed transaction can be resubmitted unchanged
//
// Deterministic Query Results
//   - All list queries include ORDER BY seq ASC or ORDER BY address ASC
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
