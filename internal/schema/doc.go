// Package schema manages type registration and shape checking for the
// object ledger.
//
// The registry maps type tags (package::module::struct) to struct
// definitions. Every object creation and mutation is checked against the
// registered shape: missing fields, unknown fields, and kind-incompatible
// values are rejected before any state changes.
//
// The same registration data backs the normalized-metadata provider
// operations: packages resolve to modules, modules to their structs and
// declared functions.
//
// The registry is thread-safe and is typically populated during backend
// construction, before any objects exist.
package schema
