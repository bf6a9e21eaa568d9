// Package provider declares the capability surface a concrete ledger
// backend must implement.
//
// Provider is the full read/query/execute contract: object fetches, coin
// selection, transaction execution (committed, dry-run, dev-inspect),
// paginated transaction and event queries, event subscriptions, and
// normalized package metadata. The interface is stateless by declaration;
// concrete backends supply all behavior.
//
// Unimplemented is the deliberate placeholder: every operation fails with
// an Unimplemented error naming the operation and has no side effects.
// Embed it in partial backends so an unwired operation surfaces immediately
// and unambiguously instead of shipping silent misbehavior:
//
//	type ReadOnlyBackend struct {
//	    provider.Unimplemented
//	}
//
//	func (b *ReadOnlyBackend) GetObject(ctx context.Context, oid types.ObjectID) (*types.VersionedObject, error) {
//	    ...
//	}
//
// Operations take a context because real backends may suspend on remote
// calls. Independent calls carry no ordering guarantee relative to each
// other; callers needing order must sequence explicitly.
package provider
