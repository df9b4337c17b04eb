// Package resilience provides the retry engine and the shared
// rate-limit bookkeeping used by the client.
//
// Retry runs a function with bounded, strictly sequential attempts and
// exponential backoff. Errors that know their own retry delay (rate
// limits carrying the window reset time) implement DelayHint and
// override the computed backoff.
//
// LimitTracker records per-endpoint rate-limit state from response
// headers. The data is advisory: updates are last-writer-wins and only
// inform backoff timing.
package resilience
