package jobs

import (
	"net/http"
	"testing"

	"github.com/segmentio/encoding/json"
	"github.com/shishobooks/circulation/pkg/errcodes"
	"github.com/shishobooks/circulation/pkg/models"
	"github.com/shishobooks/circulation/pkg/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandler_CreateImportJob(t *testing.T) {
	t.Parallel()
	db := testutils.NewDB(t)
	h := &handler{jobService: NewService(db)}

	c, rec := testutils.NewEchoContext(t, http.MethodPost, "/jobs",
		`{"type": "import", "data": {"books": {"title": "Hourglass"}}}`)
	require.NoError(t, h.create(c))
	assert.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		ID     int    `json:"id"`
		Type   string `json:"type"`
		Status string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotZero(t, resp.ID)
	assert.Equal(t, models.JobTypeImport, resp.Type)
	assert.Equal(t, models.JobStatusPending, resp.Status)
}

func TestHandler_CreateRejectsBadDocument(t *testing.T) {
	t.Parallel()
	db := testutils.NewDB(t)
	h := &handler{jobService: NewService(db)}

	c, _ := testutils.NewEchoContext(t, http.MethodPost, "/jobs",
		`{"type": "import", "data": {"books": "nope"}}`)
	err := h.create(c)

	var errResp *errcodes.Error
	require.ErrorAs(t, err, &errResp)
	assert.Equal(t, http.StatusUnprocessableEntity, errResp.HTTPCode)
	assert.Equal(t, 0, testutils.CountRows(t, db, (*models.Job)(nil)))
}

func TestHandler_CreateRejectsUnknownType(t *testing.T) {
	t.Parallel()
	db := testutils.NewDB(t)
	h := &handler{jobService: NewService(db)}

	c, _ := testutils.NewEchoContext(t, http.MethodPost, "/jobs",
		`{"type": "scan", "data": {"books": []}}`)
	err := h.create(c)

	var errResp *errcodes.Error
	require.ErrorAs(t, err, &errResp)
	assert.Equal(t, http.StatusUnprocessableEntity, errResp.HTTPCode)
}
