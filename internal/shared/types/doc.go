// Package types provides the shared data model for the object ledger.
//
// This package defines the core types used across the registry, provider,
// and backend layers, ensuring consistent structures everywhere.
//
// Object Model:
//   - ObjectID: globally unique, immutable object identity
//   - Address: account address owning objects
//   - Owner: single-owner marker (address, object, shared, immutable)
//   - VersionedObject: identity + monotonically increasing version + owner +
//     typed fields
//   - ObjectRef: (id, version, digest) triple pinning an exact object state
//
// Transactions:
//   - Transaction: sender + ordered commands applied atomically
//   - Command: create/mutate/transfer/delete/pay operation
//   - Effects: created/mutated/deleted refs plus execution status
//   - TransactionRecord: committed transaction with digest and effects
//
// Events:
//   - Event: emitted on every committed state change
//   - EventFilter: subscription filter; nil fields are wildcards
//
// Pagination:
//   - Page[T]: items plus opaque continuation cursor
//   - Order: caller-specified ascending/descending iteration
package types
