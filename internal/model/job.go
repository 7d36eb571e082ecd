package model

import (
	"context"
	"time"
)

// SnippetLimit caps Job.Snippet length in runes.
const SnippetLimit = 280

// Job is the normalized form of a single posting, regardless of which
// provider it came from.
type Job struct {
	Signature string     // dedup key, see Signature()
	Company   string     // board handle or display name from the companies config
	Title     string
	Location  string     // empty when the upstream omits it
	URL       string
	Posted    *time.Time // nil when the upstream gives no usable timestamp
	Snippet   string     // plain-text description, at most SnippetLimit runes
	Source    string     // provider tag: "greenhouse", "lever" or "workday"
}

// Signature builds the deduplication key for a posting. The same posting
// fetched again, in this run or a later one, yields the same key.
func Signature(provider, handle, title, url string) string {
	return provider + "|" + handle + "|" + title + "|" + url
}

// JobFetcher fetches and normalizes postings from one provider's boards.
// Implementations handle per-board failures internally so that one broken
// board never hides results from the rest.
type JobFetcher interface {
	FetchJobs(ctx context.Context) ([]Job, error)
}

// Matcher decides whether a posting qualifies for notification.
type Matcher interface {
	Match(title, description, location string) bool
}

// SeenStore tracks signatures that have already been notified.
type SeenStore interface {
	// HasSeen reports whether the signature was recorded by an earlier
	// MarkSeen, in this run or a previous one.
	HasSeen(ctx context.Context, signature string) (bool, error)

	// MarkSeen records the signature so later HasSeen calls return true.
	MarkSeen(ctx context.Context, signature string) error

	// Cleanup drops signatures first seen longer than olderThan ago.
	Cleanup(ctx context.Context, olderThan time.Duration) error

	// Close flushes any buffered state and releases resources. A failed
	// Close means the run's new signatures may not have been persisted.
	Close() error
}

// Notifier delivers a batch of new jobs to the configured destination.
type Notifier interface {
	Notify(ctx context.Context, jobs []Job) error
}
