// Package catalog owns job postings and their categories.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/garnizeh/jobboard/pkg/models"
	"github.com/garnizeh/jobboard/pkg/repository"
)

const (
	JobsCollection       = "jobs"
	CategoriesCollection = "categories"

	jobIDWidth = 8
	dateLayout = "2006-01-02"
)

var (
	ErrJobNotFound = errors.New("job not found")
	ErrEmptyLabel  = errors.New("category label is empty")
)

// Validator checks an encoded document against a named schema.
type Validator interface {
	Validate(ctx context.Context, name string, raw []byte) error
}

type Catalog struct {
	store     repository.DocumentStore
	logger    *slog.Logger
	now       func() time.Time
	validator Validator
}

type Option func(*Catalog)

func WithClock(now func() time.Time) Option {
	return func(c *Catalog) { c.now = now }
}

// WithValidator guards every job and category write with a schema check.
func WithValidator(v Validator) Option {
	return func(c *Catalog) { c.validator = v }
}

func New(store repository.DocumentStore, logger *slog.Logger, opts ...Option) *Catalog {
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(os.Stdout, nil))
	}
	c := &Catalog{store: store, logger: logger, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// JobFilter narrows ListJobs. Empty fields are ignored.
type JobFilter struct {
	Role     string
	Category string
	Status   models.JobStatus
}

// CreateJob assigns the next jobId, defaults datePosted and status, and stores
// the posting.
func (c *Catalog) CreateJob(ctx context.Context, job models.Job) (*models.Job, error) {
	next, err := c.nextJobID(ctx)
	if err != nil {
		return nil, err
	}

	job.JobID = next
	if job.DatePosted == "" {
		job.DatePosted = c.now().Format(dateLayout)
	}
	if job.Status == "" {
		job.Status = models.JobDraft
	}

	fields, err := c.encodeJob(ctx, job)
	if err != nil {
		return nil, err
	}

	id, err := c.store.Create(ctx, JobsCollection, fields)
	if err != nil {
		return nil, fmt.Errorf("create job %s: %w", next, err)
	}
	job.ID = id

	c.logger.Info("job created", slog.String("jobId", next), slog.String("title", job.Title))
	return &job, nil
}

func (c *Catalog) nextJobID(ctx context.Context) (string, error) {
	docs, err := c.store.Query(ctx, JobsCollection, repository.Query{OrderBy: "jobId", Descending: true, Limit: 1})
	if err != nil {
		return "", fmt.Errorf("read last job id: %w", err)
	}

	last := 0
	if len(docs) > 0 {
		var head struct {
			JobID string `json:"jobId"`
		}
		if err := docs[0].Decode(&head); err != nil {
			return "", err
		}
		last = parseJobNumber(head.JobID)
	}

	return FormatJobID(last + 1), nil
}

// FormatJobID renders n as a zero-padded job identifier.
func FormatJobID(n int) string {
	return fmt.Sprintf("%0*d", jobIDWidth, n)
}

func parseJobNumber(id string) int {
	var b strings.Builder
	for _, r := range id {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	n, err := strconv.Atoi(b.String())
	if err != nil {
		return 0
	}
	return n
}

// ListJobs returns postings newest first.
func (c *Catalog) ListJobs(ctx context.Context, f JobFilter) ([]models.Job, error) {
	q := repository.Query{OrderBy: "datePosted", Descending: true}
	if f.Role != "" {
		q.Filters = append(q.Filters, repository.Where("role", f.Role))
	}
	if f.Category != "" {
		q.Filters = append(q.Filters, repository.Where("category", f.Category))
	}
	if f.Status != "" {
		q.Filters = append(q.Filters, repository.Where("status", string(f.Status)))
	}

	docs, err := c.store.Query(ctx, JobsCollection, q)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}

	jobs := make([]models.Job, 0, len(docs))
	for _, d := range docs {
		j, err := decodeJob(d)
		if err != nil {
			c.logger.Warn("skipping undecodable job", slog.String("id", d.ID), "err", err)
			continue
		}
		jobs = append(jobs, j)
	}
	return jobs, nil
}

// GetJob resolves a posting by its public jobId, or by its document id for
// records that predate jobIds.
func (c *Catalog) GetJob(ctx context.Context, jobID string) (*models.Job, error) {
	doc, err := c.findJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	j, err := decodeJob(*doc)
	if err != nil {
		return nil, err
	}
	return &j, nil
}

func (c *Catalog) findJob(ctx context.Context, jobID string) (*repository.Document, error) {
	docs, err := c.store.Query(ctx, JobsCollection, repository.Query{
		Filters: []repository.Filter{repository.Where("jobId", jobID)},
		Limit:   1,
	})
	if err != nil {
		return nil, fmt.Errorf("get job %s: %w", jobID, err)
	}
	if len(docs) > 0 {
		return &docs[0], nil
	}

	doc, err := c.store.Get(ctx, JobsCollection, jobID)
	if err != nil {
		return nil, fmt.Errorf("get job %s: %w", jobID, err)
	}
	if doc == nil {
		return nil, fmt.Errorf("%w: %s", ErrJobNotFound, jobID)
	}
	return doc, nil
}

// UpdateJob merges fields into the posting. The jobId and store-managed keys
// cannot be changed.
func (c *Catalog) UpdateJob(ctx context.Context, jobID string, fields map[string]any) error {
	doc, err := c.findJob(ctx, jobID)
	if err != nil {
		return err
	}

	partial := make(map[string]any, len(fields))
	for k, v := range fields {
		switch k {
		case "id", "jobId", "createdAt", "updatedAt":
			continue
		}
		partial[k] = v
	}
	if len(partial) == 0 {
		return nil
	}

	if c.validator != nil {
		var merged map[string]any
		if err := json.Unmarshal(doc.Data, &merged); err != nil {
			return fmt.Errorf("decode job %s: %w", jobID, err)
		}
		for k, v := range partial {
			merged[k] = v
		}
		raw, err := json.Marshal(merged)
		if err != nil {
			return err
		}
		if err := c.validator.Validate(ctx, "job", raw); err != nil {
			return err
		}
	}

	if err := c.store.Update(ctx, JobsCollection, doc.ID, partial); err != nil {
		return fmt.Errorf("update job %s: %w", jobID, err)
	}
	return nil
}

func (c *Catalog) DeleteJob(ctx context.Context, jobID string) error {
	doc, err := c.findJob(ctx, jobID)
	if err != nil {
		return err
	}
	if err := c.store.Delete(ctx, JobsCollection, doc.ID); err != nil {
		return fmt.Errorf("delete job %s: %w", jobID, err)
	}
	c.logger.Info("job deleted", slog.String("jobId", jobID))
	return nil
}

// encodeJob produces the stored representation: store-managed keys removed,
// schema checked.
func (c *Catalog) encodeJob(ctx context.Context, job models.Job) (map[string]any, error) {
	raw, err := json.Marshal(job)
	if err != nil {
		return nil, fmt.Errorf("encode job: %w", err)
	}
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("encode job: %w", err)
	}
	delete(fields, "id")
	delete(fields, "createdAt")
	delete(fields, "updatedAt")

	if c.validator != nil {
		raw, err = json.Marshal(fields)
		if err != nil {
			return nil, err
		}
		if err := c.validator.Validate(ctx, "job", raw); err != nil {
			return nil, err
		}
	}
	return fields, nil
}

func decodeJob(d repository.Document) (models.Job, error) {
	var j models.Job
	if err := d.Decode(&j); err != nil {
		return models.Job{}, err
	}
	j.ID = d.ID
	j.CreatedAt = d.Created
	j.UpdatedAt = d.Updated
	return j, nil
}
