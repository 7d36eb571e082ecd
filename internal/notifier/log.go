package notifier

import (
	"context"
	"log/slog"

	"jobwatch/internal/model"
)

// Ensure LogNotifier implements model.Notifier.
var _ model.Notifier = (*LogNotifier)(nil)

// LogNotifier writes new job matches to the given logger as structured
// messages. The check command uses it in place of the webhook.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier returns a notifier that logs each job via slog.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Notify logs each job. Returns nil (stdout logging does not fail).
func (n *LogNotifier) Notify(_ context.Context, jobs []model.Job) error {
	for _, j := range jobs {
		args := []any{"source", j.Source, "company", j.Company, "title", j.Title, "location", j.Location, "url", j.URL}
		if j.Posted != nil {
			args = append(args, "posted", *j.Posted)
		}
		n.logger.Info("new job", args...)
	}
	return nil
}
