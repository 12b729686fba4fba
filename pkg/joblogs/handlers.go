package joblogs

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/shishobooks/circulation/pkg/errcodes"
	"github.com/shishobooks/circulation/pkg/jobs"
	"github.com/shishobooks/circulation/pkg/models"
)

type handler struct {
	jobLogService *Service
	jobService    *jobs.Service
}

// listLogsResponse carries the cursor to pass back as after_id, so an import
// can be followed by polling until the job leaves in_progress.
type listLogsResponse struct {
	Job         *models.Job      `json:"job"`
	Logs        []*models.JobLog `json:"logs"`
	NextAfterID *int             `json:"next_after_id,omitempty"`
}

func (h *handler) listLogs(c echo.Context) error {
	ctx := c.Request().Context()

	jobID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Job")
	}

	job, err := h.jobService.RetrieveJob(ctx, jobs.RetrieveJobOptions{
		ID: &jobID,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	params := ListJobLogsQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	logs, err := h.jobLogService.ListJobLogs(ctx, ListJobLogsOptions{
		JobID:   jobID,
		AfterID: params.AfterID,
		Levels:  params.Level,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	resp := listLogsResponse{Job: job, Logs: logs, NextAfterID: params.AfterID}
	if len(logs) > 0 {
		resp.NextAfterID = &logs[len(logs)-1].ID
	}

	return errors.WithStack(c.JSON(http.StatusOK, resp))
}
