package usecase

import "time"

const (
	// DefaultBatchSize is how many statement lines a run scores per batch.
	DefaultBatchSize = 100

	// DefaultSessionTimeout bounds a single reconciliation run.
	DefaultSessionTimeout = 5 * time.Minute

	// DefaultLockTTL bounds the per-account session lock so a crashed
	// runner cannot block the account forever.
	DefaultLockTTL = 10 * time.Minute

	// DefaultRuleCacheTTL bounds staleness of the cached active rule set.
	DefaultRuleCacheTTL = time.Minute

	// CancelledMatchNote marks matches produced before a cancellation.
	CancelledMatchNote = "session cancelled before completion"
)
