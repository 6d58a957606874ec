// Package sync implements the reconciliation engine that keeps one Notion
// page per book in step with a freshly parsed set of Kindle clippings.
//
// The engine is deliberately stateless between runs: every "has this been
// synced before" decision is derived by re-reading the remote database, so
// repeated runs over the same clippings file are idempotent and never
// duplicate content. Everything except the executor is a pure function
// over in-memory data.
package sync
