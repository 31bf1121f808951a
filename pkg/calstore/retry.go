// retry.go provides automatic retry logic for transient SQLite errors.
//
// The calendar store may be read by other processes (viewers, exporters)
// while a sync run writes batches, and WAL-mode SQLite can then produce
// transient errors like SQLITE_BUSY, SQLITE_LOCKED, and IOERR_SHORT_READ
// (error 522). The busy_timeout pragma handles SQLITE_BUSY at the
// connection level; the remaining transient errors get application-level
// retries with exponential backoff and jitter.
//
// This is driver-level contention handling only. The sync engine itself
// never retries a failed batch: astronomical data is regenerable and the
// next run re-derives it.
package calstore

import (
	"math/rand"
	"strings"
	"time"
)

// retryConfig controls retry behavior for transient SQLite errors.
type retryConfig struct {
	maxRetries int
	baseDelay  time.Duration
	maxDelay   time.Duration
}

// defaultRetryConfig is used for all store write operations.
var defaultRetryConfig = retryConfig{
	maxRetries: 3,
	baseDelay:  50 * time.Millisecond,
	maxDelay:   500 * time.Millisecond,
}

// transientPatterns are substrings of modernc.org/sqlite error messages
// that identify retryable contention: SQLITE_BUSY (5), SQLITE_LOCKED (6),
// SQLITE_IOERR_SHORT_READ (522), and the textual "database is locked"
// forms that surface when busy_timeout falls through.
var transientPatterns = []string{
	"SQLITE_BUSY",
	"SQLITE_LOCKED",
	"IOERR_SHORT_READ",
	"database is locked",
	"database table is locked",
	"(5)",
	"(6)",
	"(522)",
}

// isTransientSQLiteErr reports whether err is contention that a retry can
// resolve. Anything else (constraint violations, readonly, syntax) is
// permanent and must surface to the caller.
func isTransientSQLiteErr(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	for _, pattern := range transientPatterns {
		if strings.Contains(msg, pattern) {
			return true
		}
	}
	return false
}

// retryOp executes fn, retrying transient SQLite errors with exponential
// backoff + jitter. It returns immediately on success or on any permanent
// error, and returns the last transient error once retries are exhausted.
func retryOp(cfg retryConfig, fn func() error) error {
	var lastErr error
	for attempt := 0; attempt <= cfg.maxRetries; attempt++ {
		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if !isTransientSQLiteErr(lastErr) {
			return lastErr
		}
		if attempt < cfg.maxRetries {
			time.Sleep(backoffDelay(cfg, attempt))
		}
	}
	return lastErr
}

// backoffDelay returns baseDelay * 2^attempt, capped at maxDelay, plus a
// random jitter in [0, baseDelay) so concurrent writers don't reconverge.
func backoffDelay(cfg retryConfig, attempt int) time.Duration {
	delay := cfg.baseDelay << uint(attempt)
	if delay > cfg.maxDelay {
		delay = cfg.maxDelay
	}
	jitter := time.Duration(rand.Int63n(int64(cfg.baseDelay)))
	return delay + jitter
}
