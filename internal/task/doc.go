// Package task contains the application's background machinery: the
// asynchronous email dispatcher with its priority lanes and retry
// policy, the periodic deadline scanner, and the purger for stale
// unconfirmed accounts.
//
// Handlers enqueue email jobs and return immediately; delivery outcome
// never influences an HTTP response. The dispatcher retries failed
// deliveries a fixed number of times with a constant backoff and then
// abandons the job with an error log.
package task
