package tracker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/garnizeh/jobboard/pkg/models"
	"github.com/garnizeh/jobboard/pkg/repository"
)

// record is the stored shape of a JobInterest. Identity and timestamps live
// on the document, not in its body.
type record struct {
	UserID        string                      `json:"userId"`
	JobID         string                      `json:"jobId"`
	Status        models.InterestStatus       `json:"status"`
	Notes         []models.InterestNote       `json:"notes"`
	StatusHistory []models.StatusHistoryEntry `json:"statusHistory"`
	Deadline      string                      `json:"deadline,omitempty"`
	Priority      models.Priority             `json:"priority"`
	Tags          []string                    `json:"tags"`
}

// decode is the single path from a stored document to a JobInterest.
func (t *Tracker) decode(ctx context.Context, d repository.Document) (models.JobInterest, error) {
	if t.validator != nil {
		if err := t.validator.Validate(ctx, schemaName, d.Data); err != nil {
			return models.JobInterest{}, fmt.Errorf("interest %s: %w", d.ID, err)
		}
	}

	var r record
	if err := d.Decode(&r); err != nil {
		return models.JobInterest{}, err
	}
	r.normalize()

	return models.JobInterest{
		ID:            d.ID,
		UserID:        r.UserID,
		JobID:         r.JobID,
		Status:        r.Status,
		Notes:         r.Notes,
		StatusHistory: r.StatusHistory,
		Deadline:      r.Deadline,
		Priority:      r.Priority,
		Tags:          r.Tags,
		CreatedAt:     d.Created,
		UpdatedAt:     d.Updated,
	}, nil
}

func (r *record) normalize() {
	if r.Notes == nil {
		r.Notes = []models.InterestNote{}
	}
	if r.StatusHistory == nil {
		r.StatusHistory = []models.StatusHistoryEntry{}
	}
	if r.Tags == nil {
		r.Tags = []string{}
	}
	if r.Priority == "" {
		r.Priority = models.PriorityMedium
	}
}

// check validates an outgoing record before it reaches the store.
func (t *Tracker) check(ctx context.Context, r record) error {
	if t.validator == nil {
		return nil
	}
	r.normalize()
	raw, err := json.Marshal(r)
	if err != nil {
		return err
	}
	return t.validator.Validate(ctx, schemaName, raw)
}

func recordOf(in models.JobInterest) record {
	return record{
		UserID:        in.UserID,
		JobID:         in.JobID,
		Status:        in.Status,
		Notes:         in.Notes,
		StatusHistory: in.StatusHistory,
		Deadline:      in.Deadline,
		Priority:      in.Priority,
		Tags:          in.Tags,
	}
}
