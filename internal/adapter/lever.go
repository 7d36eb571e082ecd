package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"jobwatch/internal/model"
)

const leverBaseURL = "https://api.lever.co/v0/postings"

// leverCategories represents the categories object in a Lever posting.
type leverCategories struct {
	Team       string `json:"team"`
	Department string `json:"department"`
	Location   string `json:"location"`
	Commitment string `json:"commitment"`
}

// leverJob represents a single posting in the Lever API response, which is a
// bare top-level array.
type leverJob struct {
	ID          string          `json:"id"`
	Text        string          `json:"text"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Categories  leverCategories `json:"categories"`
	CreatedAt   int64           `json:"createdAt"`
	DatePosted  string          `json:"datePosted"`
	HostedURL   string          `json:"hostedUrl"`
	ApplyURL    string          `json:"applyUrl"`
}

// LeverAdapter fetches jobs from the Lever public postings API for a set of
// board handles. A nil matcher returns every posting unfiltered.
type LeverAdapter struct {
	handles []string
	matcher model.Matcher
	client  *http.Client
	logger  *slog.Logger
}

// NewLeverAdapter creates an adapter over the given Lever boards.
func NewLeverAdapter(handles []string, matcher model.Matcher, client *http.Client, logger *slog.Logger) *LeverAdapter {
	return &LeverAdapter{
		handles: handles,
		matcher: matcher,
		client:  client,
		logger:  logger,
	}
}

var _ model.JobFetcher = (*LeverAdapter)(nil)

// FetchJobs sweeps every configured board, skipping boards that fail.
func (a *LeverAdapter) FetchJobs(ctx context.Context) ([]model.Job, error) {
	var jobs []model.Job
	for _, handle := range a.handles {
		boardJobs, err := a.FetchBoard(ctx, handle)
		if err != nil {
			a.logger.Error("lever board failed", "handle", handle, "error", err)
			continue
		}
		jobs = append(jobs, boardJobs...)
	}
	a.logger.Info("lever sweep done", "boards", len(a.handles), "jobs", len(jobs))
	return jobs, nil
}

// FetchBoard retrieves one board's postings and normalizes the ones that
// pass the matcher into the unified Job model.
func (a *LeverAdapter) FetchBoard(ctx context.Context, handle string) ([]model.Job, error) {
	url := fmt.Sprintf("%s/%s?mode=json", leverBaseURL, handle)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("lever fetch for %s: %w", handle, err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("lever fetch for %s: %w", handle, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &model.HTTPError{
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("lever fetch for %s", handle),
		}
	}

	var leverJobs []leverJob
	if err := json.NewDecoder(resp.Body).Decode(&leverJobs); err != nil {
		return nil, fmt.Errorf("lever decode for %s: %w", handle, err)
	}

	jobs := make([]model.Job, 0, len(leverJobs))
	for _, lj := range leverJobs {
		title := lj.Text
		if title == "" {
			title = lj.Title
		}

		jobURL := lj.HostedURL
		if jobURL == "" {
			jobURL = lj.ApplyURL
		}
		// Last resort is the posting id, which also keeps signatures
		// distinct when both URL fields are absent.
		if jobURL == "" {
			jobURL = lj.ID
		}

		description := extractText(lj.Description)
		if a.matcher != nil && !a.matcher.Match(title, description, lj.Categories.Location) {
			continue
		}

		posted := parseTime(lj.DatePosted)
		if posted == nil && lj.CreatedAt > 0 {
			t := time.UnixMilli(lj.CreatedAt).UTC()
			posted = &t
		}

		jobs = append(jobs, model.Job{
			Signature: model.Signature("lever", handle, title, jobURL),
			Company:   handle,
			Title:     title,
			Location:  lj.Categories.Location,
			URL:       jobURL,
			Posted:    posted,
			Snippet:   truncate(description, model.SnippetLimit),
			Source:    "lever",
		})
	}

	return jobs, nil
}
