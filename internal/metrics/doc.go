// Package metrics records the outcome of every probe attempt made during one
// invocation.
//
// Each attempt contributes its duration and either a status code or a
// transport error. A Snapshot summarises them:
//   - attempt, success and failure counts
//   - status code distribution
//   - average and P50/P95/P99 latency
//
// Example usage:
//
//	m := metrics.NewMetrics()
//	m.RecordAttempt(150*time.Millisecond, 200, nil)
//	snap := m.Snapshot()
//
// Metrics is safe for concurrent use, although the prober records attempts
// from a single goroutine.
package metrics
