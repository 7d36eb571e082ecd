package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"jobwatch/internal/model"
)

const greenhouseBaseURL = "https://api.greenhouse.io/v1/boards"

// greenhouseJob represents a single job in the Greenhouse API response.
type greenhouseJob struct {
	ID          int64              `json:"id"`
	Title       string             `json:"title"`
	Location    greenhouseLocation `json:"location"`
	AbsoluteURL string             `json:"absolute_url"`
	URL         string             `json:"url"`
	Content     string             `json:"content"`
	UpdatedAt   string             `json:"updated_at"`
	CreatedAt   string             `json:"created_at"`
}

type greenhouseLocation struct {
	Name string `json:"name"`
}

// greenhouseResponse is the top-level Greenhouse jobs API response.
type greenhouseResponse struct {
	Jobs []greenhouseJob `json:"jobs"`
}

// GreenhouseAdapter fetches jobs from the Greenhouse public boards API for a
// set of board handles. A nil matcher returns every posting unfiltered.
type GreenhouseAdapter struct {
	handles []string
	matcher model.Matcher
	client  *http.Client
	logger  *slog.Logger
}

// NewGreenhouseAdapter creates an adapter over the given Greenhouse boards.
func NewGreenhouseAdapter(handles []string, matcher model.Matcher, client *http.Client, logger *slog.Logger) *GreenhouseAdapter {
	return &GreenhouseAdapter{
		handles: handles,
		matcher: matcher,
		client:  client,
		logger:  logger,
	}
}

var _ model.JobFetcher = (*GreenhouseAdapter)(nil)

// FetchJobs sweeps every configured board. A board that fails to fetch or
// decode is logged and skipped so the remaining boards still report.
func (a *GreenhouseAdapter) FetchJobs(ctx context.Context) ([]model.Job, error) {
	var jobs []model.Job
	for _, handle := range a.handles {
		boardJobs, err := a.FetchBoard(ctx, handle)
		if err != nil {
			a.logger.Error("greenhouse board failed", "handle", handle, "error", err)
			continue
		}
		jobs = append(jobs, boardJobs...)
	}
	a.logger.Info("greenhouse sweep done", "boards", len(a.handles), "jobs", len(jobs))
	return jobs, nil
}

// FetchBoard retrieves one board's postings and normalizes the ones that
// pass the matcher into the unified Job model.
func (a *GreenhouseAdapter) FetchBoard(ctx context.Context, handle string) ([]model.Job, error) {
	url := fmt.Sprintf("%s/%s/jobs", greenhouseBaseURL, handle)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("greenhouse fetch for %s: %w", handle, err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("greenhouse fetch for %s: %w", handle, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &model.HTTPError{
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("greenhouse fetch for %s", handle),
		}
	}

	var ghResp greenhouseResponse
	if err := json.NewDecoder(resp.Body).Decode(&ghResp); err != nil {
		return nil, fmt.Errorf("greenhouse decode for %s: %w", handle, err)
	}

	jobs := make([]model.Job, 0, len(ghResp.Jobs))
	for _, gj := range ghResp.Jobs {
		jobURL := gj.AbsoluteURL
		if jobURL == "" {
			jobURL = gj.URL
		}
		if jobURL == "" && gj.ID != 0 {
			jobURL = fmt.Sprintf("https://boards.greenhouse.io/%s/jobs/%d", handle, gj.ID)
		}

		description := extractText(gj.Content)
		if a.matcher != nil && !a.matcher.Match(gj.Title, description, gj.Location.Name) {
			continue
		}

		posted := parseTime(gj.UpdatedAt)
		if posted == nil {
			posted = parseTime(gj.CreatedAt)
		}

		jobs = append(jobs, model.Job{
			Signature: model.Signature("greenhouse", handle, gj.Title, jobURL),
			Company:   handle,
			Title:     gj.Title,
			Location:  gj.Location.Name,
			URL:       jobURL,
			Posted:    posted,
			Snippet:   truncate(description, model.SnippetLimit),
			Source:    "greenhouse",
		})
	}

	return jobs, nil
}
