// Package notifier delivers deadline alerts to users.
package notifier

import (
	"context"
	"fmt"
	"strings"

	"github.com/garnizeh/jobboard/pkg/models"
)

// Notifier sends one digest of approaching deadlines to a user.
type Notifier interface {
	Notify(ctx context.Context, to models.UserProfile, alerts []models.DeadlineAlert) error
}

func buildBody(to models.UserProfile, alerts []models.DeadlineAlert) string {
	var b strings.Builder
	name := to.DisplayName
	if name == "" {
		name = to.Email
	}
	b.WriteString(fmt.Sprintf("Hi %s,\n\nThese application deadlines are coming up:\n", name))
	for _, a := range alerts {
		b.WriteString(fmt.Sprintf("- %s at %s (job %s): %s\n", a.Job.Title, a.Job.CompanyName, a.Job.JobID, daysLabel(a.DaysUntilDeadline)))
	}
	return b.String()
}

func daysLabel(days int) string {
	switch days {
	case 0:
		return "due today"
	case 1:
		return "1 day left"
	default:
		return fmt.Sprintf("%d days left", days)
	}
}
