// Package local implements the full provider contract against an in-memory
// object registry.
//
// The backend owns a registry, an event bus, and two append-only logs
// (transactions and events). Transactions execute against a registry clone;
// on success the clone's state is adopted wholesale, so a failure at any
// command leaves the live store untouched. Dry-run and dev-inspect execute
// the same way but discard the clone, so they can never leak state into
// the live store.
//
// Genesis seeds coin objects for the configured addresses through the
// normal execution path, so even the first checkpoint is an ordinary
// transaction record.
package local
