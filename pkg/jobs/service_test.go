package jobs

import (
	"context"
	"testing"

	"github.com/segmentio/encoding/json"
	"github.com/shishobooks/circulation/pkg/errcodes"
	"github.com/shishobooks/circulation/pkg/models"
	"github.com/shishobooks/circulation/pkg/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newImportJob(t *testing.T, svc *Service, status string) *models.Job {
	t.Helper()
	job := &models.Job{
		Type:   models.JobTypeImport,
		Status: status,
		DataParsed: &models.JobImportData{
			Books: json.RawMessage(`[{"title": "Hourglass"}]`),
		},
	}
	require.NoError(t, svc.CreateJob(context.Background(), job))
	return job
}

func TestCreateJob_RoundTripsData(t *testing.T) {
	t.Parallel()
	db := testutils.NewDB(t)
	svc := NewService(db)
	ctx := context.Background()

	job := newImportJob(t, svc, models.JobStatusPending)
	assert.NotZero(t, job.ID)

	got, err := svc.RetrieveJob(ctx, RetrieveJobOptions{ID: &job.ID})
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusPending, got.Status)

	data, ok := got.DataParsed.(*models.JobImportData)
	require.True(t, ok)
	assert.JSONEq(t, `[{"title": "Hourglass"}]`, string(data.Books))
}

func TestRetrieveJob_NotFound(t *testing.T) {
	t.Parallel()
	db := testutils.NewDB(t)
	svc := NewService(db)

	id := 42
	_, err := svc.RetrieveJob(context.Background(), RetrieveJobOptions{ID: &id})
	assert.ErrorIs(t, err, errcodes.NotFound("Job"))
}

func TestListJobsWithTotal_FiltersByStatus(t *testing.T) {
	t.Parallel()
	db := testutils.NewDB(t)
	svc := NewService(db)
	ctx := context.Background()

	pending := newImportJob(t, svc, models.JobStatusPending)
	newImportJob(t, svc, models.JobStatusCompleted)
	newImportJob(t, svc, models.JobStatusFailed)

	jobs, total, err := svc.ListJobsWithTotal(ctx, ListJobsOptions{
		Statuses: []string{models.JobStatusPending},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, jobs, 1)
	assert.Equal(t, pending.ID, jobs[0].ID)

	jobs, total, err = svc.ListJobsWithTotal(ctx, ListJobsOptions{
		Statuses: []string{models.JobStatusCompleted, models.JobStatusFailed},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, jobs, 2)
}

func TestClaimJob_OnlyOnce(t *testing.T) {
	t.Parallel()
	db := testutils.NewDB(t)
	svc := NewService(db)
	ctx := context.Background()

	job := newImportJob(t, svc, models.JobStatusPending)
	stale := *job

	claimed, err := svc.ClaimJob(ctx, job, "first")
	require.NoError(t, err)
	assert.True(t, claimed)
	assert.Equal(t, models.JobStatusInProgress, job.Status)

	claimed, err = svc.ClaimJob(ctx, &stale, "second")
	require.NoError(t, err)
	assert.False(t, claimed)

	got, err := svc.RetrieveJob(ctx, RetrieveJobOptions{ID: &job.ID})
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusInProgress, got.Status)
	require.NotNil(t, got.ProcessID)
	assert.Equal(t, "first", *got.ProcessID)
}

func TestUpdateJob(t *testing.T) {
	t.Parallel()
	db := testutils.NewDB(t)
	svc := NewService(db)
	ctx := context.Background()

	job := newImportJob(t, svc, models.JobStatusInProgress)
	job.Status = models.JobStatusCompleted
	job.Progress = 100
	require.NoError(t, svc.UpdateJob(ctx, job, UpdateJobOptions{Columns: []string{"status", "progress"}}))

	got, err := svc.RetrieveJob(ctx, RetrieveJobOptions{ID: &job.ID})
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusCompleted, got.Status)
	assert.Equal(t, 100, got.Progress)

	missing := &models.Job{ID: 999, Status: models.JobStatusFailed}
	err = svc.UpdateJob(ctx, missing, UpdateJobOptions{Columns: []string{"status"}})
	assert.ErrorIs(t, err, errcodes.NotFound("Job"))
}
