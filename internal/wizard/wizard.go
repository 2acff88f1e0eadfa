// Package wizard drives the multi-step job posting form: each step validates
// its slice of the draft before the user may move forward, and the finished
// draft is validated as a whole before it is saved.
package wizard

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/garnizeh/jobboard/pkg/models"
)

var ErrDraftInvalid = errors.New("job draft is invalid")

// SaveFunc persists a validated draft.
type SaveFunc func(ctx context.Context, job models.Job) error

// Wizard holds one user's draft and progress. It is not safe for concurrent
// use.
type Wizard struct {
	save      SaveFunc
	now       func() time.Time
	draft     models.Job
	step      int
	furthest  int
	completed map[int]bool
}

type Option func(*Wizard)

func WithDraft(j models.Job) Option {
	return func(w *Wizard) { w.draft = j }
}

func WithClock(now func() time.Time) Option {
	return func(w *Wizard) { w.now = now }
}

func New(save SaveFunc, opts ...Option) *Wizard {
	w := &Wizard{
		save:      save,
		now:       time.Now,
		step:      1,
		furthest:  1,
		completed: make(map[int]bool),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

func (w *Wizard) Step() int { return w.step }

func (w *Wizard) Draft() models.Job { return w.draft }

// Update edits the draft in place.
func (w *Wizard) Update(fn func(*models.Job)) {
	fn(&w.draft)
}

// Next validates the current step and advances. Only the first failure is
// reported. Next on the review step does nothing.
func (w *Wizard) Next() error {
	if w.step >= ReviewStep {
		return nil
	}
	if errs := check(w.step, project(w.step, w.draft)); len(errs) > 0 {
		first := errs[0]
		return &first
	}

	w.completed[w.step] = true
	w.step++
	if w.step > w.furthest {
		w.furthest = w.step
	}
	return nil
}

// Back moves one step back without validating.
func (w *Wizard) Back() {
	if w.step > 1 {
		w.step--
	}
}

// GoTo jumps to any step already reached.
func (w *Wizard) GoTo(step int) error {
	if step < 1 || step > w.furthest {
		return fmt.Errorf("%w: %d", ErrUnknownStep, step)
	}
	w.step = step
	return nil
}

func (w *Wizard) Completed(step int) bool {
	return w.completed[step]
}

func (w *Wizard) CompletedSteps() []int {
	out := make([]int, 0, len(w.completed))
	for s := range w.completed {
		out = append(out, s)
	}
	sort.Ints(out)
	return out
}

// Submit fills the posting defaults, validates the whole draft and hands it
// to the save callback.
func (w *Wizard) Submit(ctx context.Context) error {
	job := ApplyDefaults(w.draft, w.now())
	if len(ValidateAll(job)) > 0 {
		return ErrDraftInvalid
	}
	if w.save == nil {
		return errors.New("wizard has no save callback")
	}
	if err := w.save(ctx, job); err != nil {
		return fmt.Errorf("save job draft: %w", err)
	}
	w.draft = job
	return nil
}

// ApplyDefaults sets datePosted to today and status to draft when unset.
func ApplyDefaults(j models.Job, now time.Time) models.Job {
	if j.DatePosted == "" {
		j.DatePosted = now.Format("2006-01-02")
	}
	if j.Status == "" {
		j.Status = models.JobDraft
	}
	return j
}
