/*
Package resilience provides retry with backoff for optimistic-concurrency
conflicts.

# Overview

Mutations carry an expected version and fail with a version conflict when a
concurrent writer got there first. The registry never retries on its own;
callers that want last-writer-wins semantics re-read and retry explicitly.
This package packages that loop.

# Usage

	policy := resilience.DefaultPolicy()
	err := resilience.Do(ctx, policy, func() error {
		obj, err := backend.GetObject(ctx, oid)
		if err != nil {
			return err
		}
		_, err = backend.ExecuteTransaction(ctx, types.Transaction{
			Sender: sender,
			Commands: []types.Command{{
				Kind:            types.CommandMutate,
				Object:          oid,
				ExpectedVersion: obj.Version,
				Fields:          fields,
			}},
		})
		return err
	})

Only version conflicts are retried by default; every other error returns
immediately. Backoff doubles per attempt with jitter, capped at MaxDelay.
*/
package resilience
