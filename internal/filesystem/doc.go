/*
Package filesystem retries filesystem operations that fail with ESTALE.

The snapshot database directory is often a network volume. A stale NFS file
handle (errno 116) is transient, so the startup checks on that directory go
through [StatWithRetry] and [WriteFileWithRetry], which retry with
exponential backoff and pass every other error straight through:

	info, err := filesystem.StatWithRetry(dir, filesystem.DefaultRetryConfig())

[Retry] wraps any other operation the same way. Outcomes are reported to an
[Observer], either the one on the RetryConfig or the package default set
with [SetDefaultObserver].
*/
package filesystem
