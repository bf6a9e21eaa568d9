// Package monitoring provides Prometheus instrumentation for the ledger
// core.
//
// Metrics cover four areas:
//   - Registry: live object gauge, create/mutate/transfer/delete counters,
//     version-conflict counter
//   - Provider: per-operation call, error, and latency metrics
//   - Transactions: executed and failed counters
//   - Events: published/dropped counters and live subscription gauge
//
// All metrics are registered on an explicit prometheus.Registry so
// embedding applications control exposure. A nil *Metrics is valid
// everywhere it is accepted: instrumentation becomes a no-op.
package monitoring
