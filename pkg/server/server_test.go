package server

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/segmentio/encoding/json"
	"github.com/shishobooks/circulation/pkg/config"
	"github.com/shishobooks/circulation/pkg/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (http.Handler, *testutils.Fixture) {
	t.Helper()
	db := testutils.NewDB(t)
	f := testutils.NewFixture(t, db)
	srv, err := New(config.NewForTest(), db)
	require.NoError(t, err)
	return srv.Handler, f
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestServer_LoanLifecycle(t *testing.T) {
	h, f := newTestServer(t)

	payload := fmt.Sprintf(`{"book_id": %d, "reader_id": %d, "loan_date": "2024-01-01"}`, f.Book.ID, f.Reader.ID)
	rec := do(t, h, http.MethodPost, "/loans", payload)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var loan struct {
		ID         int    `json:"id"`
		ReturnDate string `json:"return_date"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &loan))
	assert.Equal(t, "2024-01-31", loan.ReturnDate)

	rec = do(t, h, http.MethodPost, "/loans", payload)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(t, h, http.MethodGet, "/books?available=false", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"total":1`)

	rec = do(t, h, http.MethodDelete, fmt.Sprintf("/loans/%d", loan.ID), "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, h, http.MethodGet, fmt.Sprintf("/books/%d", f.Book.ID), "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"available":true`)

	rec = do(t, h, http.MethodGet, "/reports/statistics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"available_books":1`)
}

func TestServer_DeleteReferencedGenreIsConflict(t *testing.T) {
	h, f := newTestServer(t)

	rec := do(t, h, http.MethodDelete, fmt.Sprintf("/genres/%d", f.Genre.ID), "")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "Cannot delete genre. It is likely used by some books.")
}

func TestServer_ConfigAndNotFound(t *testing.T) {
	h, _ := newTestServer(t)

	rec := do(t, h, http.MethodGet, "/config", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"loan_period_days":30`)

	rec = do(t, h, http.MethodGet, "/nowhere", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
