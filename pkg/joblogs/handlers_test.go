package joblogs

import (
	"context"
	"net/http"
	"strconv"
	"testing"

	"github.com/robinjoseph08/golib/logger"
	"github.com/segmentio/encoding/json"
	"github.com/shishobooks/circulation/pkg/errcodes"
	"github.com/shishobooks/circulation/pkg/jobs"
	"github.com/shishobooks/circulation/pkg/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type logsResponse struct {
	Job struct {
		ID int `json:"id"`
	} `json:"job"`
	Logs []struct {
		ID      int    `json:"id"`
		Level   string `json:"level"`
		Message string `json:"message"`
	} `json:"logs"`
	NextAfterID *int `json:"next_after_id"`
}

func TestHandler_ListLogsFollowsCursor(t *testing.T) {
	t.Parallel()
	db := testutils.NewDB(t)
	svc := NewService(db)
	h := &handler{jobLogService: svc, jobService: jobs.NewService(db)}
	job := newJob(t, db)
	id := strconv.Itoa(job.ID)

	jl := svc.NewJobLogger(context.Background(), job.ID, logger.New())
	jl.Info("starting import", nil)
	jl.Warn("skipping invalid book", nil)

	c, rec := testutils.NewEchoContext(t, http.MethodGet, "/jobs/"+id+"/logs", "", "id", id)
	require.NoError(t, h.listLogs(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var first logsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &first))
	assert.Equal(t, job.ID, first.Job.ID)
	require.Len(t, first.Logs, 2)
	require.NotNil(t, first.NextAfterID)
	assert.Equal(t, first.Logs[1].ID, *first.NextAfterID)

	jl.Info("import finished", nil)

	after := strconv.Itoa(*first.NextAfterID)
	c, rec = testutils.NewEchoContext(t, http.MethodGet, "/jobs/"+id+"/logs?after_id="+after, "", "id", id)
	require.NoError(t, h.listLogs(c))

	var second logsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &second))
	require.Len(t, second.Logs, 1)
	assert.Equal(t, "import finished", second.Logs[0].Message)
	assert.Equal(t, second.Logs[0].ID, *second.NextAfterID)

	c, rec = testutils.NewEchoContext(t, http.MethodGet, "/jobs/"+id+"/logs?level=warn", "", "id", id)
	require.NoError(t, h.listLogs(c))

	var warns logsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &warns))
	require.Len(t, warns.Logs, 1)
	assert.Equal(t, "skipping invalid book", warns.Logs[0].Message)
}

func TestHandler_ListLogsUnknownJob(t *testing.T) {
	t.Parallel()
	db := testutils.NewDB(t)
	h := &handler{jobLogService: NewService(db), jobService: jobs.NewService(db)}

	c, _ := testutils.NewEchoContext(t, http.MethodGet, "/jobs/999/logs", "", "id", "999")
	err := h.listLogs(c)

	var errResp *errcodes.Error
	require.ErrorAs(t, err, &errResp)
	assert.Equal(t, http.StatusNotFound, errResp.HTTPCode)
}
