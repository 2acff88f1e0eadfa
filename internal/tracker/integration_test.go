package tracker_test

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
	"github.com/garnizeh/jobboard/internal/tracker"
	"github.com/garnizeh/jobboard/pkg/models"
)

// setupSQLite wires the tracker to the sqlite document store, the catalog and
// the seeded document schemas.
func setupSQLite(t *testing.T) (*tracker.Tracker, *catalog.Catalog, *docstore.Store) {
	t.Helper()
	ctx := context.Background()
	d, err := db.New(ctx, ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.Migrate(ctx, d, dbfs.Migrations, dbfs.SeedFiles); err != nil {
		d.Close()
		t.Fatalf("migrate: %v", err)
	}

	store := docstore.New(d, nil)
	t.Cleanup(func() {
		_ = store.Close()
		_ = d.Close()
	})

	loader, err := schema.NewLoader(ctx, schema.NewFSRepo(dbfs.SeedFiles, "seed/schemas"))
	if err != nil {
		t.Fatalf("schema loader: %v", err)
	}

	cat := catalog.New(store, nil, catalog.WithValidator(loader))
	return tracker.New(store, cat, tracker.WithValidator(loader)), cat, store
}

func TestSQLite_InterestLifecycle(t *testing.T) {
	tr, cat, _ := setupSQLite(t)
	ctx := context.Background()

	job, err := cat.CreateJob(ctx, models.Job{Title: "Platform Engineer", Status: models.JobOpen, ApplicationDeadline: time.Now().Add(50 * time.Hour).UTC().Format(time.RFC3339)})
	if err != nil {
		t.Fatalf("CreateJob: %v", err)
	}

	if _, err := tr.AddJobInterest(ctx, "u1", job.JobID, tracker.AddInterest{Comment: "looks great"}); err != nil {
		t.Fatalf("AddJobInterest: %v", err)
	}
	if err := tr.UpdateJobInterestStatus(ctx, "u1", job.JobID, models.StatusStarted, ""); err != nil {
		t.Fatalf("UpdateJobInterestStatus: %v", err)
	}

	in, err := tr.GetInterestByJob(ctx, "u1", job.JobID)
	if err != nil || in == nil {
		t.Fatalf("GetInterestByJob: %v %v", in, err)
	}
	checkInvariants(t, in)
	if in.CreatedAt.IsZero() || in.UpdatedAt.Before(in.CreatedAt) {
		t.Fatalf("expected store timestamps, got %v %v", in.CreatedAt, in.UpdatedAt)
	}

	alerts, err := tr.GetJobsWithApproachingDeadlines(ctx, "u1")
	if err != nil {
		t.Fatalf("deadlines: %v", err)
	}
	if len(alerts) != 1 || alerts[0].DaysUntilDeadline != 2 || alerts[0].Job.Title != "Platform Engineer" {
		t.Fatalf("unexpected alerts %+v", alerts)
	}

	joined, err := tr.GetInterestsWithJobs(ctx, "u1")
	if err != nil || len(joined) != 1 || joined[0].Job == nil {
		t.Fatalf("unexpected join %+v %v", joined, err)
	}

	if err := tr.DeleteJobInterest(ctx, "u1", job.JobID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if in, _ := tr.GetInterestByJob(ctx, "u1", job.JobID); in != nil {
		t.Fatalf("expected nil after delete")
	}
}

func TestSQLite_SchemaGuardsDecode(t *testing.T) {
	tr, _, store := setupSQLite(t)
	ctx := context.Background()

	// a record written behind the tracker's back with an empty history
	if _, err := store.Create(ctx, tracker.Collection, map[string]any{
		"userId": "u1", "jobId": "00000001", "status": "interested", "statusHistory": []any{},
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	if _, err := tr.GetInterestByJob(ctx, "u1", "00000001"); !errors.Is(err, schema.ErrInvalidDocument) {
		t.Fatalf("expected ErrInvalidDocument, got %v", err)
	}
	// list reads skip the bad record
	list, err := tr.GetUserInterests(ctx, "u1")
	if err != nil || len(list) != 0 {
		t.Fatalf("expected bad record skipped, got %d %v", len(list), err)
	}
}

func TestSQLite_Subscription(t *testing.T) {
	tr, _, _ := setupSQLite(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := make(chan []models.JobInterest, 8)
	unsub, err := tr.SubscribeToUserInterests(ctx, "u1", func(list []models.JobInterest) { ch <- list })
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer unsub()

	next := func() []models.JobInterest {
		t.Helper()
		select {
		case l := <-ch:
			return l
		case <-time.After(3 * time.Second):
			t.Fatalf("timed out waiting for snapshot")
			return nil
		}
	}

	if l := next(); len(l) != 0 {
		t.Fatalf("expected empty initial snapshot")
	}
	if _, err := tr.AddJobInterest(ctx, "u1", "00000001", tracker.AddInterest{}); err != nil {
		t.Fatalf("add: %v", err)
	}
	if l := next(); len(l) != 1 || l[0].JobID != "00000001" {
		t.Fatalf("unexpected snapshot %+v", l)
	}
}
