package catalog_test

import (
	"context"
	"errors"
	"testing"
	"time"

	dbfs "github.com/garnizeh/jobboard/db"
	"github.com/garnizeh/jobboard/internal/catalog"
	"github.com/garnizeh/jobboard/internal/db"
	"github.com/garnizeh/jobboard/internal/docstore"
	"github.com/garnizeh/jobboard/internal/schema"
	"github.com/garnizeh/jobboard/pkg/models"
	"github.com/garnizeh/jobboard/pkg/repository/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

func setupCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	ctx := context.Background()
	d, err := db.New(ctx, ":memory:")
	require.NoError(t, err)
	require.NoError(t, db.Migrate(ctx, d, dbfs.Migrations, nil))

	store := docstore.New(d, nil)
	t.Cleanup(func() {
		_ = store.Close()
		_ = d.Close()
	})

	loader, err := schema.NewLoader(ctx, schema.NewFSRepo(dbfs.SeedFiles, "seed/schemas"))
	require.NoError(t, err)

	return catalog.New(store, nil,
		catalog.WithClock(func() time.Time { return fixedNow }),
		catalog.WithValidator(loader),
	)
}

func TestCreateJob_AssignsSequentialIDs(t *testing.T) {
	c := setupCatalog(t)
	ctx := context.Background()

	first, err := c.CreateJob(ctx, models.Job{Title: "Backend Engineer"})
	require.NoError(t, err)
	assert.Equal(t, "00000001", first.JobID)
	assert.NotEmpty(t, first.ID)
	assert.Equal(t, "2026-03-14", first.DatePosted)
	assert.Equal(t, models.JobDraft, first.Status)

	second, err := c.CreateJob(ctx, models.Job{Title: "Data Analyst", DatePosted: "2026-01-01", Status: models.JobOpen})
	require.NoError(t, err)
	assert.Equal(t, "00000002", second.JobID)
	assert.Equal(t, "2026-01-01", second.DatePosted)
	assert.Equal(t, models.JobOpen, second.Status)

	// a caller-supplied jobId is ignored
	third, err := c.CreateJob(ctx, models.Job{JobID: "99999999", Title: "QA"})
	require.NoError(t, err)
	assert.Equal(t, "00000003", third.JobID)
}

func TestCreateJob_ContinuesFromLegacyIDs(t *testing.T) {
	store := mock.NewDocumentStore()
	ctx := context.Background()
	_, err := store.Create(ctx, catalog.JobsCollection, map[string]any{"jobId": "JOB-00000041", "title": "legacy", "status": "open"})
	require.NoError(t, err)

	c := catalog.New(store, nil)
	job, err := c.CreateJob(ctx, models.Job{Title: "next"})
	require.NoError(t, err)
	assert.Equal(t, "00000042", job.JobID)
}

func TestGetJob_FallsBackToDocumentID(t *testing.T) {
	store := mock.NewDocumentStore()
	ctx := context.Background()
	docID, err := store.Create(ctx, catalog.JobsCollection, map[string]any{"title": "legacy posting", "status": "open"})
	require.NoError(t, err)

	c := catalog.New(store, nil)
	job, err := c.GetJob(ctx, docID)
	require.NoError(t, err)
	assert.Equal(t, docID, job.ID)
	assert.Equal(t, "legacy posting", job.Title)

	require.NoError(t, c.UpdateJob(ctx, docID, map[string]any{"title": "renamed"}))
	job, err = c.GetJob(ctx, docID)
	require.NoError(t, err)
	assert.Equal(t, "renamed", job.Title)

	_, err = c.GetJob(ctx, "no-such-doc")
	assert.ErrorIs(t, err, catalog.ErrJobNotFound)
}

func TestCreateJob_SchemaRejectsUnknownStatus(t *testing.T) {
	c := setupCatalog(t)
	_, err := c.CreateJob(context.Background(), models.Job{Title: "x", Status: "archived"})
	assert.ErrorIs(t, err, schema.ErrInvalidDocument)
}

func TestCreateJob_StoreFailure(t *testing.T) {
	store := mock.NewDocumentStore()
	store.QueryErr = errors.New("unavailable")
	c := catalog.New(store, nil)

	_, err := c.CreateJob(context.Background(), models.Job{Title: "x"})
	require.Error(t, err)
	creates, _, _ := store.Writes()
	assert.Zero(t, creates)
}

func TestListJobs(t *testing.T) {
	c := setupCatalog(t)
	ctx := context.Background()

	seed := []models.Job{
		{Title: "a", Role: "senior", Category: "engineering", Status: models.JobOpen, DatePosted: "2026-01-10"},
		{Title: "b", Role: "junior", Category: "engineering", Status: models.JobOpen, DatePosted: "2026-02-01"},
		{Title: "c", Role: "senior", Category: "design", Status: models.JobClosed, DatePosted: "2026-01-20"},
		{Title: "d", Role: "senior", Category: "engineering", Status: models.JobDraft, DatePosted: "2026-03-01"},
	}
	for _, j := range seed {
		_, err := c.CreateJob(ctx, j)
		require.NoError(t, err)
	}

	titles := func(jobs []models.Job) string {
		out := ""
		for _, j := range jobs {
			out += j.Title
		}
		return out
	}

	tests := []struct {
		name   string
		filter catalog.JobFilter
		want   string
	}{
		{name: "all newest first", filter: catalog.JobFilter{}, want: "dbca"},
		{name: "by role", filter: catalog.JobFilter{Role: "senior"}, want: "dca"},
		{name: "by category", filter: catalog.JobFilter{Category: "engineering"}, want: "dba"},
		{name: "by role and category", filter: catalog.JobFilter{Role: "senior", Category: "engineering"}, want: "da"},
		{name: "by status", filter: catalog.JobFilter{Status: models.JobOpen}, want: "ba"},
		{name: "nothing", filter: catalog.JobFilter{Role: "expert"}, want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			jobs, err := c.ListJobs(ctx, tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.want, titles(jobs))
		})
	}
}

func TestGetUpdateDeleteJob(t *testing.T) {
	c := setupCatalog(t)
	ctx := context.Background()

	_, err := c.GetJob(ctx, "00000001")
	assert.ErrorIs(t, err, catalog.ErrJobNotFound)

	created, err := c.CreateJob(ctx, models.Job{Title: "Engineer", CompanyName: "Acme", ApplicationDeadline: "2026-04-01"})
	require.NoError(t, err)

	got, err := c.GetJob(ctx, created.JobID)
	require.NoError(t, err)
	assert.Equal(t, "Engineer", got.Title)
	assert.Equal(t, "2026-04-01", got.ApplicationDeadline)
	assert.Equal(t, created.ID, got.ID)
	assert.False(t, got.CreatedAt.IsZero())

	err = c.UpdateJob(ctx, created.JobID, map[string]any{"title": "Senior Engineer", "jobId": "00000077", "status": "open"})
	require.NoError(t, err)
	got, err = c.GetJob(ctx, created.JobID)
	require.NoError(t, err)
	assert.Equal(t, "Senior Engineer", got.Title)
	assert.Equal(t, models.JobOpen, got.Status)
	assert.Equal(t, "Acme", got.CompanyName)

	err = c.UpdateJob(ctx, created.JobID, map[string]any{"status": "archived"})
	assert.ErrorIs(t, err, schema.ErrInvalidDocument)

	assert.ErrorIs(t, c.UpdateJob(ctx, "00000099", map[string]any{"title": "x"}), catalog.ErrJobNotFound)

	require.NoError(t, c.DeleteJob(ctx, created.JobID))
	_, err = c.GetJob(ctx, created.JobID)
	assert.ErrorIs(t, err, catalog.ErrJobNotFound)
	assert.ErrorIs(t, c.DeleteJob(ctx, created.JobID), catalog.ErrJobNotFound)
}

func TestFormatJobID(t *testing.T) {
	assert.Equal(t, "00000001", catalog.FormatJobID(1))
	assert.Equal(t, "00012345", catalog.FormatJobID(12345))
	assert.Equal(t, "123456789", catalog.FormatJobID(123456789))
}
