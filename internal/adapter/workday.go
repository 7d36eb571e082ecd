package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sort"

	"jobwatch/internal/model"
)

// maxScanDepth bounds the recursive posting scan so a pathological or
// deeply nested payload cannot blow the stack.
const maxScanDepth = 8

// WorkdayBoard is one Workday career site: a display name plus the full
// endpoint URL, since Workday tenants have no uniform public API path.
type WorkdayBoard struct {
	Name string
	URL  string
}

// WorkdayAdapter fetches jobs from caller-supplied Workday endpoints.
// Tenant responses vary wildly, so decoding is schemaless: the adapter
// looks for a jobPostings list first and falls back to scanning the whole
// document for lists of posting-shaped objects. A response with neither
// yields zero jobs, not an error. A nil matcher returns every posting.
type WorkdayAdapter struct {
	boards  []WorkdayBoard
	matcher model.Matcher
	client  *http.Client
	logger  *slog.Logger
}

// NewWorkdayAdapter creates an adapter over the given Workday boards.
func NewWorkdayAdapter(boards []WorkdayBoard, matcher model.Matcher, client *http.Client, logger *slog.Logger) *WorkdayAdapter {
	return &WorkdayAdapter{
		boards:  boards,
		matcher: matcher,
		client:  client,
		logger:  logger,
	}
}

var _ model.JobFetcher = (*WorkdayAdapter)(nil)

// FetchJobs sweeps every configured board, skipping boards that fail.
func (a *WorkdayAdapter) FetchJobs(ctx context.Context) ([]model.Job, error) {
	var jobs []model.Job
	for _, board := range a.boards {
		boardJobs, err := a.FetchBoard(ctx, board)
		if err != nil {
			a.logger.Error("workday board failed", "name", board.Name, "error", err)
			continue
		}
		jobs = append(jobs, boardJobs...)
	}
	a.logger.Info("workday sweep done", "boards", len(a.boards), "jobs", len(jobs))
	return jobs, nil
}

// FetchBoard retrieves one board's endpoint and normalizes whatever
// posting-shaped objects it can find in the response.
func (a *WorkdayAdapter) FetchBoard(ctx context.Context, board WorkdayBoard) ([]model.Job, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, board.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("workday fetch for %s: %w", board.Name, err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("workday fetch for %s: %w", board.Name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &model.HTTPError{
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("workday fetch for %s", board.Name),
		}
	}

	var data any
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("workday decode for %s: %w", board.Name, err)
	}

	postings := directPostings(data)
	if len(postings) == 0 {
		postings = scanPostings(data, 0)
	}

	var jobs []model.Job
	for _, p := range postings {
		title := str(p["title"])
		if title == "" {
			title = str(p["jobTitle"])
		}

		jobURL := str(p["externalUrl"])
		if jobURL == "" {
			jobURL = str(p["absoluteUrl"])
		}
		if jobURL == "" {
			jobURL = board.URL
		}

		location := stringify(p["location"])
		if location == "" {
			location = stringify(p["locationsText"])
		}
		if location == "" {
			location = stringify(p["jobLocations"])
		}

		summary := extractText(str(p["summary"]))
		if a.matcher != nil && !a.matcher.Match(title, summary, location) {
			continue
		}

		posted := parseTime(str(p["postingDate"]))
		if posted == nil {
			posted = parseTime(str(p["startDate"]))
		}

		jobs = append(jobs, model.Job{
			Signature: model.Signature("workday", board.Name, title, jobURL),
			Company:   board.Name,
			Title:     title,
			Location:  location,
			URL:       jobURL,
			Posted:    posted,
			Snippet:   truncate(summary, model.SnippetLimit),
			Source:    "workday",
		})
	}

	return jobs, nil
}

// directPostings handles the common tenant shape: a top-level object with a
// jobPostings list.
func directPostings(data any) []map[string]any {
	obj, ok := data.(map[string]any)
	if !ok {
		return nil
	}
	list, ok := obj["jobPostings"].([]any)
	if !ok {
		return nil
	}
	return postingObjects(list)
}

// scanPostings walks arbitrary JSON collecting objects that look like
// postings, meaning list elements carrying a title-like key. Object keys
// are walked in sorted order so results are stable run-to-run. Collected
// postings are not descended into. Subtrees deeper than maxScanDepth are
// ignored rather than reported as errors.
func scanPostings(v any, depth int) []map[string]any {
	if depth > maxScanDepth {
		return nil
	}

	var found []map[string]any
	switch t := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			found = append(found, scanPostings(t[k], depth+1)...)
		}
	case []any:
		for _, item := range t {
			if obj, ok := item.(map[string]any); ok && isPosting(obj) {
				found = append(found, obj)
				continue
			}
			found = append(found, scanPostings(item, depth+1)...)
		}
	}
	return found
}

func postingObjects(list []any) []map[string]any {
	var out []map[string]any
	for _, item := range list {
		if obj, ok := item.(map[string]any); ok && isPosting(obj) {
			out = append(out, obj)
		}
	}
	return out
}

func isPosting(obj map[string]any) bool {
	if _, ok := obj["title"]; ok {
		return true
	}
	_, ok := obj["jobTitle"]
	return ok
}
