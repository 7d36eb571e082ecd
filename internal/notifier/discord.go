package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/time/rate"

	"jobwatch/internal/model"
)

// Discord caps embeds at 10 per request; staying lower keeps payloads
// small and the webhook well under its rate limit.
const defaultMaxBatch = 6

// embedTitleLimit is Discord's hard cap on an embed title.
const embedTitleLimit = 256

// Payload formats.
const (
	FormatEmbed = "embed"
	FormatText  = "text"
)

// Ensure DiscordNotifier implements model.Notifier.
var _ model.Notifier = (*DiscordNotifier)(nil)

// DiscordNotifier posts new jobs to a Discord webhook, batched and paced
// so a large sweep cannot trip the webhook rate limit.
type DiscordNotifier struct {
	webhookURL string
	format     string
	maxBatch   int
	pace       *rate.Limiter
	httpClient *http.Client
	logger     *slog.Logger
}

// NewDiscordNotifier returns a notifier that posts batches of up to
// maxBatch jobs, waiting batchPause between posts. An empty webhookURL is
// allowed: Notify then logs and drops the batch instead of failing, so a
// run without a configured webhook still completes.
func NewDiscordNotifier(webhookURL, format string, maxBatch int, batchPause time.Duration, httpClient *http.Client, logger *slog.Logger) *DiscordNotifier {
	if maxBatch < 1 {
		maxBatch = defaultMaxBatch
	}
	limit := rate.Inf
	if batchPause > 0 {
		limit = rate.Every(batchPause)
	}
	return &DiscordNotifier{
		webhookURL: webhookURL,
		format:     format,
		maxBatch:   maxBatch,
		pace:       rate.NewLimiter(limit, 1),
		httpClient: httpClient,
		logger:     logger,
	}
}

// Notify delivers jobs in batches. A failed batch is logged and dropped;
// an error comes back only when every batch fails, matching the rest of
// the pipeline's prefer-partial-delivery stance.
func (n *DiscordNotifier) Notify(ctx context.Context, jobs []model.Job) error {
	if len(jobs) == 0 {
		return nil
	}
	if n.webhookURL == "" {
		n.logger.Info("no webhook configured, skipping delivery", "jobs", len(jobs))
		return nil
	}

	batches, failures := 0, 0
	for start := 0; start < len(jobs); start += n.maxBatch {
		end := min(start+n.maxBatch, len(jobs))
		batch := jobs[start:end]
		batches++

		if err := n.pace.Wait(ctx); err != nil {
			return fmt.Errorf("pacing webhook batches: %w", err)
		}
		if err := n.send(ctx, batch); err != nil {
			n.logger.Error("webhook delivery failed, batch dropped", "jobs", len(batch), "error", err)
			failures++
		}
	}

	if failures == batches {
		return fmt.Errorf("all %d webhook batches failed", batches)
	}
	n.logger.Info("webhook delivery complete", "batches", batches, "failed", failures)
	return nil
}

func (n *DiscordNotifier) send(ctx context.Context, batch []model.Job) error {
	var payload any
	if n.format == FormatText {
		payload = textPayload{Content: buildContent(batch)}
	} else {
		embeds := make([]discordEmbed, 0, len(batch))
		for _, j := range batch {
			embeds = append(embeds, buildEmbed(j))
		}
		payload = embedPayload{Embeds: embeds}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("post to webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return &model.HTTPError{
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("webhook rejected batch"),
		}
	}
	return nil
}

// Webhook payload types.

type embedPayload struct {
	Embeds []discordEmbed `json:"embeds"`
}

type textPayload struct {
	Content string `json:"content"`
}

type discordEmbed struct {
	Title       string         `json:"title"`
	Description string         `json:"description"`
	URL         string         `json:"url"`
	Timestamp   string         `json:"timestamp"`
	Fields      []discordField `json:"fields"`
}

type discordField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

func buildEmbed(j model.Job) discordEmbed {
	title := j.Title
	if title == "" {
		title = "New Job"
	}
	if utf8.RuneCountInString(title) > embedTitleLimit {
		title = string([]rune(title)[:embedTitleLimit])
	}

	ts := time.Now().UTC()
	if j.Posted != nil {
		ts = j.Posted.UTC()
	}

	return discordEmbed{
		Title:       title,
		Description: j.Snippet,
		URL:         j.URL,
		Timestamp:   ts.Format(time.RFC3339),
		Fields: []discordField{
			{Name: "Company", Value: j.Company, Inline: true},
			{Name: "Location", Value: displayLocation(j.Location), Inline: true},
		},
	}
}

func buildContent(batch []model.Job) string {
	var b strings.Builder
	for i, j := range batch {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "**%s** %s (%s) %s", j.Company, j.Title, displayLocation(j.Location), j.URL)
	}
	return b.String()
}

func displayLocation(location string) string {
	if location == "" {
		return "Remote/Unspecified"
	}
	return location
}

// SendTestMessage delivers a dummy job so the webhook wiring can be
// verified without waiting for a real posting.
func SendTestMessage(ctx context.Context, n model.Notifier) error {
	now := time.Now()
	testJob := model.Job{
		Signature: model.Signature("test", "jobwatch", "Test Notification", "https://example.com"),
		Company:   "jobwatch",
		Title:     "Test Notification",
		Location:  "Everywhere",
		URL:       "https://example.com",
		Posted:    &now,
		Snippet:   "If you can read this, the webhook works.",
		Source:    "test",
	}
	return n.Notify(ctx, []model.Job{testJob})
}
