package tracker

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/garnizeh/jobboard/pkg/models"
	"github.com/garnizeh/jobboard/pkg/repository"
)

// AddInterest carries the optional inputs of AddJobInterest.
type AddInterest struct {
	// Status defaults to interested.
	Status   models.InterestStatus
	Comment  string
	Deadline string
}

// AddJobInterest creates the user's record for jobID or, when one already
// exists, records a status change on it. It returns the record id.
func (t *Tracker) AddJobInterest(ctx context.Context, uid, jobID string, in AddInterest) (string, error) {
	if err := checkCaller(uid, jobID); err != nil {
		return "", err
	}
	if in.Status == "" {
		in.Status = models.StatusInterested
	}
	if !in.Status.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, in.Status)
	}

	existing, err := t.GetInterestByJob(ctx, uid, jobID)
	if err != nil {
		return "", err
	}
	if existing != nil {
		if err := t.UpdateJobInterestStatus(ctx, uid, jobID, in.Status, in.Comment); err != nil {
			return "", err
		}
		return existing.ID, nil
	}

	now := t.now()
	r := record{
		UserID: uid,
		JobID:  jobID,
		Status: in.Status,
		Notes:  []models.InterestNote{},
		StatusHistory: []models.StatusHistoryEntry{{
			Status:    in.Status,
			Timestamp: now,
			Comment:   in.Comment,
			UserID:    uid,
		}},
		Deadline: in.Deadline,
		Priority: models.PriorityMedium,
		Tags:     []string{},
	}
	if in.Comment != "" {
		r.Notes = append(r.Notes, t.note(uid, in.Comment, in.Status))
	}
	if err := t.check(ctx, r); err != nil {
		return "", err
	}

	id, err := t.store.Create(ctx, Collection, r)
	if err != nil {
		return "", fmt.Errorf("create interest for job %s: %w", jobID, err)
	}

	t.logger.Info("interest added", slog.String("uid", uid), slog.String("jobId", jobID), slog.String("status", string(in.Status)))
	return id, nil
}

// UpdateJobInterestStatus appends a history entry and, with a comment, a note.
// Concurrent updates to the same record are last-write-wins.
func (t *Tracker) UpdateJobInterestStatus(ctx context.Context, uid, jobID string, status models.InterestStatus, comment string) error {
	if err := checkCaller(uid, jobID); err != nil {
		return err
	}
	if !status.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	in, err := t.mustGet(ctx, uid, jobID)
	if err != nil {
		return err
	}
	if !t.transitions.Allows(in.Status, status) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, in.Status, status)
	}

	now := t.now()
	in.StatusHistory = append(in.StatusHistory, models.StatusHistoryEntry{
		Status:    status,
		Timestamp: now,
		Comment:   comment,
		UserID:    uid,
	})
	if comment != "" {
		in.Notes = append(in.Notes, t.note(uid, comment, status))
	}
	in.Status = status

	if err := t.check(ctx, recordOf(*in)); err != nil {
		return err
	}
	err = t.store.Update(ctx, Collection, in.ID, map[string]any{
		"status":        in.Status,
		"notes":         in.Notes,
		"statusHistory": in.StatusHistory,
	})
	if err != nil {
		return fmt.Errorf("update interest status for job %s: %w", jobID, err)
	}

	t.logger.Info("interest status updated", slog.String("uid", uid), slog.String("jobId", jobID), slog.String("status", string(status)))
	return nil
}

// AddCommentToInterest appends a note tagged with status, or with the current
// status when status is empty.
func (t *Tracker) AddCommentToInterest(ctx context.Context, uid, jobID, text string, status models.InterestStatus) error {
	if err := checkCaller(uid, jobID); err != nil {
		return err
	}
	if strings.TrimSpace(text) == "" {
		return ErrEmptyComment
	}
	if status != "" && !status.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	in, err := t.mustGet(ctx, uid, jobID)
	if err != nil {
		return err
	}
	if status == "" {
		status = in.Status
	}
	in.Notes = append(in.Notes, t.note(uid, text, status))

	if err := t.check(ctx, recordOf(*in)); err != nil {
		return err
	}
	if err := t.store.Update(ctx, Collection, in.ID, map[string]any{"notes": in.Notes}); err != nil {
		return fmt.Errorf("add comment for job %s: %w", jobID, err)
	}
	return nil
}

func (t *Tracker) DeleteJobInterest(ctx context.Context, uid, jobID string) error {
	if err := checkCaller(uid, jobID); err != nil {
		return err
	}
	in, err := t.mustGet(ctx, uid, jobID)
	if err != nil {
		return err
	}
	if err := t.store.Delete(ctx, Collection, in.ID); err != nil {
		return fmt.Errorf("delete interest for job %s: %w", jobID, err)
	}

	t.logger.Info("interest deleted", slog.String("uid", uid), slog.String("jobId", jobID))
	return nil
}

func (t *Tracker) UpdateInterestPriority(ctx context.Context, uid, jobID string, p models.Priority) error {
	if err := checkCaller(uid, jobID); err != nil {
		return err
	}
	if !p.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidPriority, p)
	}
	in, err := t.mustGet(ctx, uid, jobID)
	if err != nil {
		return err
	}
	in.Priority = p
	if err := t.check(ctx, recordOf(*in)); err != nil {
		return err
	}
	if err := t.store.Update(ctx, Collection, in.ID, map[string]any{"priority": p}); err != nil {
		return fmt.Errorf("update priority for job %s: %w", jobID, err)
	}
	return nil
}

// UpdateInterestTags replaces the tag list. Tags are trimmed and blanks dropped.
func (t *Tracker) UpdateInterestTags(ctx context.Context, uid, jobID string, tags []string) error {
	if err := checkCaller(uid, jobID); err != nil {
		return err
	}
	in, err := t.mustGet(ctx, uid, jobID)
	if err != nil {
		return err
	}

	clean := make([]string, 0, len(tags))
	for _, tag := range tags {
		if tag = strings.TrimSpace(tag); tag != "" {
			clean = append(clean, tag)
		}
	}
	in.Tags = clean
	if err := t.check(ctx, recordOf(*in)); err != nil {
		return err
	}
	if err := t.store.Update(ctx, Collection, in.ID, map[string]any{"tags": clean}); err != nil {
		return fmt.Errorf("update tags for job %s: %w", jobID, err)
	}
	return nil
}

// GetInterestByJob returns the user's record for jobID, or nil.
func (t *Tracker) GetInterestByJob(ctx context.Context, uid, jobID string) (*models.JobInterest, error) {
	if err := checkCaller(uid, jobID); err != nil {
		return nil, err
	}
	docs, err := t.store.Query(ctx, Collection, repository.Query{
		Filters: []repository.Filter{
			repository.Where("userId", uid),
			repository.Where("jobId", jobID),
		},
		Limit: 1,
	})
	if err != nil {
		return nil, fmt.Errorf("lookup interest for job %s: %w", jobID, err)
	}
	if len(docs) == 0 {
		return nil, nil
	}

	in, err := t.decode(ctx, docs[0])
	if err != nil {
		return nil, err
	}
	return &in, nil
}

func (t *Tracker) IsJobBookmarked(ctx context.Context, uid, jobID string) (bool, error) {
	in, err := t.GetInterestByJob(ctx, uid, jobID)
	if err != nil {
		return false, err
	}
	return in != nil, nil
}

func (t *Tracker) mustGet(ctx context.Context, uid, jobID string) (*models.JobInterest, error) {
	in, err := t.GetInterestByJob(ctx, uid, jobID)
	if err != nil {
		return nil, err
	}
	if in == nil {
		return nil, fmt.Errorf("%w: job %s", ErrInterestNotFound, jobID)
	}
	return in, nil
}

func (t *Tracker) note(uid, text string, status models.InterestStatus) models.InterestNote {
	return models.InterestNote{
		ID:        t.newID(),
		Text:      text,
		Timestamp: t.now(),
		UserID:    uid,
		Status:    status,
	}
}
