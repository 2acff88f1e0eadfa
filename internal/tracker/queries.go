package tracker

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/garnizeh/jobboard/pkg/models"
	"github.com/garnizeh/jobboard/pkg/repository"
	"golang.org/x/sync/errgroup"
)

func userQuery(uid string) repository.Query {
	return repository.Query{Filters: []repository.Filter{repository.Where("userId", uid)}}
}

// GetUserInterests returns the user's records, most recently updated first.
func (t *Tracker) GetUserInterests(ctx context.Context, uid string) ([]models.JobInterest, error) {
	if uid == "" {
		return nil, ErrUnauthenticated
	}
	docs, err := t.store.Query(ctx, Collection, userQuery(uid))
	if err != nil {
		return nil, fmt.Errorf("list interests: %w", err)
	}
	return t.sorted(ctx, docs), nil
}

// SubscribeToUserInterests calls onChange with the full sorted list now and
// after every change to the user's records, until the returned func is
// called or ctx ends.
func (t *Tracker) SubscribeToUserInterests(ctx context.Context, uid string, onChange func([]models.JobInterest)) (func(), error) {
	if uid == "" {
		return nil, ErrUnauthenticated
	}
	if onChange == nil {
		return nil, fmt.Errorf("subscribe interests: nil callback")
	}
	return t.store.Subscribe(ctx, Collection, userQuery(uid), func(docs []repository.Document) {
		onChange(t.sorted(ctx, docs))
	})
}

func (t *Tracker) sorted(ctx context.Context, docs []repository.Document) []models.JobInterest {
	out := make([]models.JobInterest, 0, len(docs))
	for _, d := range docs {
		in, err := t.decode(ctx, d)
		if err != nil {
			t.logger.Warn("skipping undecodable interest", slog.String("id", d.ID), "err", err)
			continue
		}
		out = append(out, in)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out
}

// GetJobsWithApproachingDeadlines returns open interests whose deadline falls
// within the next three days, soonest first.
func (t *Tracker) GetJobsWithApproachingDeadlines(ctx context.Context, uid string) ([]models.DeadlineAlert, error) {
	interests, err := t.GetUserInterests(ctx, uid)
	if err != nil {
		return nil, err
	}

	now := t.now()
	alerts := make([]models.DeadlineAlert, 0)
	for _, in := range interests {
		if terminalForAlerts(in.Status) {
			continue
		}

		var job *models.Job
		deadline := in.Deadline
		if deadline == "" {
			job = t.lookup(ctx, in.JobID)
			if job == nil {
				continue
			}
			deadline = job.ApplicationDeadline
		}
		if deadline == "" {
			continue
		}

		due, err := parseDeadline(deadline, now.Location())
		if err != nil {
			t.logger.Warn("unparseable deadline", slog.String("jobId", in.JobID), slog.String("deadline", deadline), "err", err)
			continue
		}
		if !due.After(now) {
			continue
		}
		days := int(due.Sub(now) / (24 * time.Hour))
		if days > deadlineThresholdDays {
			continue
		}

		if job == nil {
			if job = t.lookup(ctx, in.JobID); job == nil {
				continue
			}
		}
		alerts = append(alerts, models.DeadlineAlert{Interest: in, Job: *job, DaysUntilDeadline: days})
	}

	sort.SliceStable(alerts, func(i, j int) bool {
		return alerts[i].DaysUntilDeadline < alerts[j].DaysUntilDeadline
	})
	return alerts, nil
}

func parseDeadline(s string, loc *time.Location) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts, nil
	}
	return time.ParseInLocation(dateOnlyLayout, s, loc)
}

// lookup resolves a job, logging and returning nil on failure.
func (t *Tracker) lookup(ctx context.Context, jobID string) *models.Job {
	if t.jobs == nil {
		return nil
	}
	job, err := t.jobs.GetJob(ctx, jobID)
	if err != nil {
		t.logger.Warn("job lookup failed", slog.String("jobId", jobID), "err", err)
		return nil
	}
	return job
}

// CalculateCoverageRate reports how many of the user's interests reached an
// application, as a percentage rounded to one decimal.
func (t *Tracker) CalculateCoverageRate(ctx context.Context, uid string) (models.CoverageStats, error) {
	interests, err := t.GetUserInterests(ctx, uid)
	if err != nil {
		return models.CoverageStats{}, err
	}

	var st models.CoverageStats
	st.Total = len(interests)
	for _, in := range interests {
		switch in.Status {
		case models.StatusApplied, models.StatusInterviewed, models.StatusAccepted:
			st.Applied++
		case models.StatusStarted:
			st.Started++
		case models.StatusInterested:
			st.Interested++
		}
	}
	if st.Total > 0 {
		st.CoverageRate = math.Round(float64(st.Applied)/float64(st.Total)*1000) / 10
	}
	return st, nil
}

// GetInterestsWithJobs pairs every interest with its job. Jobs that cannot be
// resolved are nil.
func (t *Tracker) GetInterestsWithJobs(ctx context.Context, uid string) ([]models.InterestWithJob, error) {
	interests, err := t.GetUserInterests(ctx, uid)
	if err != nil {
		return nil, err
	}

	out := make([]models.InterestWithJob, len(interests))
	var g errgroup.Group
	g.SetLimit(t.concurrency)
	for i, in := range interests {
		i, in := i, in
		out[i].Interest = in
		g.Go(func() error {
			out[i].Job = t.lookup(ctx, in.JobID)
			return nil
		})
	}
	_ = g.Wait()

	return out, nil
}
