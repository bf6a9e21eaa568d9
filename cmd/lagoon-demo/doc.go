// Package main is a self-contained demonstration of the lagoon ledger.
//
// It boots an in-memory backend, runs genesis for two addresses, and walks
// a small scenario: a coin payment, an object create/mutate/transfer
// lifecycle, and a conflict retry. The final balances and transaction log
// are printed as JSON.
//
// Configuration:
//   - Environment variables (LAGOON_*)
//   - Optional YAML file via -config (overrides env)
//
// Usage:
//
//	# Defaults
//	./lagoon-demo
//
//	# Custom config, verbose logging
//	./lagoon-demo -config lagoon.yaml -dev
package main
