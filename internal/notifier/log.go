package notifier

import (
	"context"
	"log/slog"
	"os"

	"github.com/garnizeh/jobboard/pkg/models"
)

// LogNotifier only logs alerts, for development.
type LogNotifier struct {
	logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(os.Stdout, nil))
	}
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(ctx context.Context, to models.UserProfile, alerts []models.DeadlineAlert) error {
	for _, a := range alerts {
		n.logger.InfoContext(ctx, "deadline approaching",
			slog.String("uid", to.UserID),
			slog.String("jobId", a.Job.JobID),
			slog.String("title", a.Job.Title),
			slog.Int("daysUntilDeadline", a.DaysUntilDeadline),
		)
	}
	return nil
}
