// Package alerts scans users' tracked jobs for approaching application
// deadlines and hands the results to a notifier.
package alerts

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/garnizeh/jobboard/internal/jobs"
	"github.com/garnizeh/jobboard/pkg/models"
)

// JobType is the background job type for a single user's deadline scan.
const JobType = "deadline_scan"

type Payload struct {
	UserID string `json:"uid"`
}

// Deadlines is the slice of the tracker the scan needs.
type Deadlines interface {
	GetJobsWithApproachingDeadlines(ctx context.Context, uid string) ([]models.DeadlineAlert, error)
}

// Profiles resolves users and their notification preferences.
type Profiles interface {
	GetByUserID(ctx context.Context, userID string) (*models.UserProfile, error)
	ListNotifiable(ctx context.Context) ([]models.UserProfile, error)
}

type Notifier interface {
	Notify(ctx context.Context, to models.UserProfile, alerts []models.DeadlineAlert) error
}

// Scan computes the alerts for uid and notifies the user when there are any.
// Users without a profile or with notifications turned off are skipped.
func Scan(ctx context.Context, uid string, d Deadlines, p Profiles, n Notifier) ([]models.DeadlineAlert, error) {
	profile, err := p.GetByUserID(ctx, uid)
	if err != nil {
		return nil, fmt.Errorf("load profile %s: %w", uid, err)
	}
	if profile == nil || !profile.Preferences.Notifications {
		return nil, nil
	}

	alerts, err := d.GetJobsWithApproachingDeadlines(ctx, uid)
	if err != nil {
		return nil, fmt.Errorf("scan deadlines for %s: %w", uid, err)
	}
	if len(alerts) == 0 {
		return alerts, nil
	}
	if err := n.Notify(ctx, *profile, alerts); err != nil {
		return alerts, fmt.Errorf("notify %s: %w", uid, err)
	}
	return alerts, nil
}

// Handler returns the worker pool handler for JobType.
func Handler(d Deadlines, p Profiles, n Notifier, logger *slog.Logger) jobs.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return func(ctx context.Context, j *jobs.Job) error {
		var pl Payload
		if err := json.Unmarshal(j.Payload, &pl); err != nil {
			return fmt.Errorf("decode %s payload: %w", JobType, err)
		}
		if pl.UserID == "" {
			return fmt.Errorf("%s payload missing uid", JobType)
		}
		alerts, err := Scan(ctx, pl.UserID, d, p, n)
		if err != nil {
			return err
		}
		logger.DebugContext(ctx, "deadline scan done", slog.String("uid", pl.UserID), slog.Int("alerts", len(alerts)))
		return nil
	}
}
