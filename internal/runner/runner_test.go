package runner

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"jobwatch/internal/model"
)

// --- Mock/Fake Implementations ---

// MockFetcher returns a canned slice of jobs or an error.
type MockFetcher struct {
	Jobs []model.Job
	Err  error
}

func (m *MockFetcher) FetchJobs(_ context.Context) ([]model.Job, error) {
	return m.Jobs, m.Err
}

// InMemoryStore is a map-based store for testing dedup. The error fields
// make individual calls fail on demand.
type InMemoryStore struct {
	seen     map[string]bool
	cleanups []time.Duration

	HasSeenErr  error
	MarkSeenErr map[string]error
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{seen: make(map[string]bool)}
}

func (s *InMemoryStore) HasSeen(_ context.Context, signature string) (bool, error) {
	if s.HasSeenErr != nil {
		return false, s.HasSeenErr
	}
	return s.seen[signature], nil
}

func (s *InMemoryStore) MarkSeen(_ context.Context, signature string) error {
	if err := s.MarkSeenErr[signature]; err != nil {
		return err
	}
	s.seen[signature] = true
	return nil
}

func (s *InMemoryStore) Cleanup(_ context.Context, olderThan time.Duration) error {
	s.cleanups = append(s.cleanups, olderThan)
	return nil
}

func (s *InMemoryStore) Close() error { return nil }

// RecordingNotifier records which jobs were sent to Notify.
type RecordingNotifier struct {
	Notified []model.Job
	Calls    int
	Err      error
}

func (n *RecordingNotifier) Notify(_ context.Context, jobs []model.Job) error {
	n.Calls++
	n.Notified = append(n.Notified, jobs...)
	return n.Err
}

// --- Helpers ---

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func makeJobs(sigs ...string) []model.Job {
	jobs := make([]model.Job, len(sigs))
	for i, sig := range sigs {
		jobs[i] = model.Job{
			Signature: sig,
			Company:   "testco",
			Title:     "Software Engineer",
			Location:  "Pune, India",
			URL:       "https://example.com/" + sig,
			Source:    "test",
		}
	}
	return jobs
}

// --- Tests ---

func TestRun_DedupAndMark(t *testing.T) {
	// 5 fetched, store has seen "2": notifier gets 4, store marks all 5.
	store := NewInMemoryStore()
	store.MarkSeen(context.Background(), "2")

	notifier := &RecordingNotifier{}
	r := New(
		[]model.JobFetcher{&MockFetcher{Jobs: makeJobs("1", "2", "3", "4", "5")}},
		store,
		notifier,
		0,
		discardLogger(),
	)

	stats := r.Run(context.Background())

	if stats.Fetched != 5 || stats.New != 4 {
		t.Errorf("stats = %+v, want Fetched=5 New=4", stats)
	}
	if got := len(notifier.Notified); got != 4 {
		t.Errorf("notified = %d, want 4", got)
	}
	for _, sig := range []string{"1", "2", "3", "4", "5"} {
		if seen, _ := store.HasSeen(context.Background(), sig); !seen {
			t.Errorf("signature %s should be marked seen", sig)
		}
	}
}

func TestRun_SecondSweepIsQuiet(t *testing.T) {
	store := NewInMemoryStore()
	fetchers := []model.JobFetcher{&MockFetcher{Jobs: makeJobs("1", "2", "3")}}

	first := &RecordingNotifier{}
	New(fetchers, store, first, 0, discardLogger()).Run(context.Background())
	if len(first.Notified) != 3 {
		t.Fatalf("first sweep notified = %d, want 3", len(first.Notified))
	}

	second := &RecordingNotifier{}
	stats := New(fetchers, store, second, 0, discardLogger()).Run(context.Background())

	if stats.New != 0 {
		t.Errorf("second sweep new = %d, want 0", stats.New)
	}
	if second.Calls != 0 {
		t.Error("notifier should not be called when nothing is new")
	}
}

func TestRun_FetchErrorIsolation(t *testing.T) {
	// A failing provider must not sink the rest of the sweep.
	notifier := &RecordingNotifier{}
	r := New(
		[]model.JobFetcher{
			&MockFetcher{Err: errors.New("network down")},
			&MockFetcher{Jobs: makeJobs("a", "b")},
		},
		NewInMemoryStore(),
		notifier,
		0,
		discardLogger(),
	)

	stats := r.Run(context.Background())

	if stats.Fetched != 2 || stats.New != 2 {
		t.Errorf("stats = %+v, want Fetched=2 New=2", stats)
	}
	if len(notifier.Notified) != 2 {
		t.Errorf("notified = %d, want 2", len(notifier.Notified))
	}
}

func TestRun_MarksEvenWhenNotifyFails(t *testing.T) {
	store := NewInMemoryStore()
	fetchers := []model.JobFetcher{&MockFetcher{Jobs: makeJobs("1", "2", "3")}}

	stats := New(fetchers, store, &RecordingNotifier{Err: errors.New("webhook down")}, 0, discardLogger()).Run(context.Background())
	if stats.New != 3 {
		t.Fatalf("new = %d, want 3", stats.New)
	}

	// Signatures were marked before notification, so the next sweep
	// stays silent even though delivery failed.
	retry := &RecordingNotifier{}
	New(fetchers, store, retry, 0, discardLogger()).Run(context.Background())
	if retry.Calls != 0 {
		t.Error("failed delivery should not be retried on the next sweep")
	}
}

func TestRun_ProviderOrderPreserved(t *testing.T) {
	notifier := &RecordingNotifier{}
	r := New(
		[]model.JobFetcher{
			&MockFetcher{Jobs: makeJobs("gh-1", "gh-2")},
			&MockFetcher{Jobs: makeJobs("lever-1")},
			&MockFetcher{Jobs: makeJobs("wd-1")},
		},
		NewInMemoryStore(),
		notifier,
		0,
		discardLogger(),
	)

	r.Run(context.Background())

	if notifier.Calls != 1 {
		t.Fatalf("notify calls = %d, want 1", notifier.Calls)
	}
	want := []string{"gh-1", "gh-2", "lever-1", "wd-1"}
	if len(notifier.Notified) != len(want) {
		t.Fatalf("notified = %d jobs, want %d", len(notifier.Notified), len(want))
	}
	for i, sig := range want {
		if notifier.Notified[i].Signature != sig {
			t.Errorf("notified[%d] = %s, want %s", i, notifier.Notified[i].Signature, sig)
		}
	}
}

func TestRun_RetentionCleanup(t *testing.T) {
	store := NewInMemoryStore()
	r := New(
		[]model.JobFetcher{&MockFetcher{Jobs: makeJobs("1")}},
		store,
		&RecordingNotifier{},
		72*time.Hour,
		discardLogger(),
	)

	r.Run(context.Background())

	if len(store.cleanups) != 1 || store.cleanups[0] != 72*time.Hour {
		t.Errorf("cleanups = %v, want one call with 72h", store.cleanups)
	}

	// Zero retention disables cleanup entirely.
	store = NewInMemoryStore()
	New(nil, store, &RecordingNotifier{}, 0, discardLogger()).Run(context.Background())
	if len(store.cleanups) != 0 {
		t.Errorf("cleanups = %v, want none with zero retention", store.cleanups)
	}
}

func TestRun_EmptySignatureSkipped(t *testing.T) {
	jobs := makeJobs("real")
	jobs = append(jobs, model.Job{Company: "testco", Title: "Unkeyed"})

	notifier := &RecordingNotifier{}
	stats := New(
		[]model.JobFetcher{&MockFetcher{Jobs: jobs}},
		NewInMemoryStore(),
		notifier,
		0,
		discardLogger(),
	).Run(context.Background())

	if stats.Fetched != 2 || stats.New != 1 {
		t.Errorf("stats = %+v, want Fetched=2 New=1", stats)
	}
	if len(notifier.Notified) != 1 || notifier.Notified[0].Signature != "real" {
		t.Errorf("notified = %v, want just the keyed job", notifier.Notified)
	}
}

func TestRun_StoreFailuresSkipJob(t *testing.T) {
	// A job whose signature cannot be marked is held back from the
	// notifier rather than risking a duplicate next run.
	store := NewInMemoryStore()
	store.MarkSeenErr = map[string]error{"2": errors.New("disk full")}

	notifier := &RecordingNotifier{}
	stats := New(
		[]model.JobFetcher{&MockFetcher{Jobs: makeJobs("1", "2", "3")}},
		store,
		notifier,
		0,
		discardLogger(),
	).Run(context.Background())

	if stats.New != 2 {
		t.Errorf("new = %d, want 2", stats.New)
	}
	for _, j := range notifier.Notified {
		if j.Signature == "2" {
			t.Error("unmarked job should not be notified")
		}
	}
	if seen, _ := store.HasSeen(context.Background(), "2"); seen {
		t.Error("failed mark should leave signature unseen")
	}
}
