// Package tracker records each user's interest in job postings: the status
// lifecycle with its append-only history, free-form notes, deadline alerts,
// coverage statistics and live subscriptions.
//
// Every operation takes the acting user's uid explicitly; the tracker holds
// no session state. Mutations are read-modify-write against the document
// store without optimistic concurrency, so concurrent writers to the same
// record resolve as last-write-wins.
//
// At most one record exists per (uid, jobId) only as long as writers do not
// race: AddJobInterest looks the pair up before creating it and nothing in the
// store enforces uniqueness. Two concurrent adds for a brand-new pair can both
// create a record.
package tracker

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"time"

	"github.com/garnizeh/jobboard/pkg/models"
	"github.com/garnizeh/jobboard/pkg/repository"
	"github.com/google/uuid"
)

// Collection holds one document per (userId, jobId).
const Collection = "job_interest"

const (
	schemaName               = "job_interest"
	deadlineThresholdDays    = 3
	defaultLookupConcurrency = 8
	dateOnlyLayout           = "2006-01-02"
)

var (
	ErrUnauthenticated   = errors.New("user not authenticated")
	ErrInterestNotFound  = errors.New("job interest not found")
	ErrInvalidStatus     = errors.New("invalid interest status")
	ErrInvalidTransition = errors.New("status transition not allowed")
	ErrInvalidPriority   = errors.New("invalid priority")
	ErrEmptyComment      = errors.New("comment text is empty")
	ErrMissingJobID      = errors.New("job id is required")
)

// JobLookup resolves a public jobId into the posting.
type JobLookup interface {
	GetJob(ctx context.Context, jobID string) (*models.Job, error)
}

// Validator checks an encoded document against a named schema.
type Validator interface {
	Validate(ctx context.Context, name string, raw []byte) error
}

type Tracker struct {
	store       repository.DocumentStore
	jobs        JobLookup
	logger      *slog.Logger
	now         func() time.Time
	newID       func() string
	validator   Validator
	transitions TransitionTable
	concurrency int
}

type Option func(*Tracker)

func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

func WithLogger(l *slog.Logger) Option {
	return func(t *Tracker) { t.logger = l }
}

// WithValidator checks every record against the job_interest schema before it
// is written and after it is read.
func WithValidator(v Validator) Option {
	return func(t *Tracker) { t.validator = v }
}

// WithTransitions restricts status changes to the given table. A nil table
// allows every move.
func WithTransitions(tt TransitionTable) Option {
	return func(t *Tracker) { t.transitions = tt }
}

// WithLookupConcurrency bounds the number of concurrent job lookups made by
// GetInterestsWithJobs.
func WithLookupConcurrency(n int) Option {
	return func(t *Tracker) {
		if n > 0 {
			t.concurrency = n
		}
	}
}

func New(store repository.DocumentStore, jobs JobLookup, opts ...Option) *Tracker {
	t := &Tracker{
		store:       store,
		jobs:        jobs,
		logger:      slog.New(slog.NewJSONHandler(os.Stdout, nil)),
		now:         time.Now,
		newID:       uuid.NewString,
		transitions: PermissiveTransitions,
		concurrency: defaultLookupConcurrency,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// TransitionTable maps a current status to the statuses it may move to.
// Re-entering the current status is always allowed.
type TransitionTable map[models.InterestStatus][]models.InterestStatus

// PermissiveTransitions lets any status follow any other.
var PermissiveTransitions TransitionTable

// LifecycleTransitions follows interested → started → applied → outcome.
var LifecycleTransitions = TransitionTable{
	models.StatusInterested:  {models.StatusStarted, models.StatusApplied},
	models.StatusStarted:     {models.StatusApplied},
	models.StatusApplied:     {models.StatusInterviewed, models.StatusRejected, models.StatusAccepted},
	models.StatusInterviewed: {models.StatusRejected, models.StatusAccepted},
}

func (tt TransitionTable) Allows(from, to models.InterestStatus) bool {
	if tt == nil || from == to {
		return true
	}
	for _, s := range tt[from] {
		if s == to {
			return true
		}
	}
	return false
}

// terminalForAlerts lists statuses that need no further deadline action.
func terminalForAlerts(s models.InterestStatus) bool {
	switch s {
	case models.StatusApplied, models.StatusInterviewed, models.StatusAccepted, models.StatusRejected:
		return true
	}
	return false
}

func checkCaller(uid, jobID string) error {
	if uid == "" {
		return ErrUnauthenticated
	}
	if jobID == "" {
		return ErrMissingJobID
	}
	return nil
}
