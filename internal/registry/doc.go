// Package registry implements the typed object registry: a store mapping
// unique object identities to versioned, owned records.
//
// Guarantees:
//   - Every live record has exactly one current owner and one current
//     version at any instant.
//   - Identities are assigned once, never reassigned, and never reused
//     after deletion (deleted identities are tombstoned).
//   - Mutation is guarded by an optimistic version check: a caller passing
//     a stale expected version is rejected with a VersionConflict and the
//     record is left untouched. There is no auto-retry; surfacing the
//     conflict is the caller's job.
//   - Ownership transfer is atomic. No interleaving can observe a record
//     with zero or two owners.
//
// Field maps are shape-checked against the schema registry on creation and
// after every mutation, so a record can never hold fields that violate its
// type tag.
//
// Snapshots: Clone produces an isolated deep copy for dry-run execution;
// Export/Import persist the full object set as zstd-compressed canonical
// JSON.
package registry
