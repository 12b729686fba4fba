package loans

import (
	"fmt"
	"net/http"
	"strconv"
	"testing"

	"github.com/segmentio/encoding/json"
	"github.com/shishobooks/circulation/pkg/errcodes"
	"github.com/shishobooks/circulation/pkg/models"
	"github.com/shishobooks/circulation/pkg/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

func setupTestHandler(t *testing.T) (*handler, *bun.DB, *testutils.Fixture) {
	t.Helper()
	db := testutils.NewDB(t)
	f := testutils.NewFixture(t, db)
	h := &handler{loanService: NewService(db), loanPeriodDays: 30}
	return h, db, f
}

func TestHandler_Create(t *testing.T) {
	t.Parallel()
	h, db, f := setupTestHandler(t)

	payload := fmt.Sprintf(`{"book_id": %d, "reader_id": %d, "loan_date": "2024-01-01", "return_date": "2024-01-15"}`, f.Book.ID, f.Reader.ID)
	c, rec := testutils.NewEchoContext(t, http.MethodPost, "/loans", payload)

	err := h.create(c)
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, rec.Code)

	var loan models.Loan
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &loan))
	assert.NotZero(t, loan.ID)
	assert.Equal(t, "2024-01-15", loan.ReturnDate.String())
	require.NotNil(t, loan.Book)
	assert.False(t, loan.Book.Available)
	assert.False(t, testutils.BookAvailable(t, db, f.Book.ID))
}

func TestHandler_CreateDefaultsReturnDate(t *testing.T) {
	t.Parallel()
	h, _, f := setupTestHandler(t)

	payload := fmt.Sprintf(`{"book_id": %d, "reader_id": %d, "loan_date": "2024-01-01"}`, f.Book.ID, f.Reader.ID)
	c, rec := testutils.NewEchoContext(t, http.MethodPost, "/loans", payload)

	require.NoError(t, h.create(c))

	var loan models.Loan
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &loan))
	assert.Equal(t, "2024-01-31", loan.ReturnDate.String())
}

func TestHandler_CreateRejectsReturnBeforeLoan(t *testing.T) {
	t.Parallel()
	h, db, f := setupTestHandler(t)

	payload := fmt.Sprintf(`{"book_id": %d, "reader_id": %d, "loan_date": "2024-01-10", "return_date": "2024-01-09"}`, f.Book.ID, f.Reader.ID)
	c, _ := testutils.NewEchoContext(t, http.MethodPost, "/loans", payload)

	err := h.create(c)
	var errResp *errcodes.Error
	require.ErrorAs(t, err, &errResp)
	assert.Equal(t, http.StatusUnprocessableEntity, errResp.HTTPCode)
	assert.Equal(t, "Return date cannot be before loan date.", errResp.Message)

	assert.Equal(t, 0, testutils.CountRows(t, db, (*models.Loan)(nil)))
	assert.True(t, testutils.BookAvailable(t, db, f.Book.ID))
}

func TestHandler_CreateRejectsMalformedDate(t *testing.T) {
	t.Parallel()
	h, _, f := setupTestHandler(t)

	payload := fmt.Sprintf(`{"book_id": %d, "reader_id": %d, "loan_date": "01/10/2024"}`, f.Book.ID, f.Reader.ID)
	c, _ := testutils.NewEchoContext(t, http.MethodPost, "/loans", payload)

	err := h.create(c)
	var errResp *errcodes.Error
	require.ErrorAs(t, err, &errResp)
	assert.Equal(t, http.StatusUnprocessableEntity, errResp.HTTPCode)
}

func TestHandler_CreateBookOnLoanIsConflict(t *testing.T) {
	t.Parallel()
	h, _, f := setupTestHandler(t)

	payload := fmt.Sprintf(`{"book_id": %d, "reader_id": %d, "loan_date": "2024-01-01"}`, f.Book.ID, f.Reader.ID)
	c, _ := testutils.NewEchoContext(t, http.MethodPost, "/loans", payload)
	require.NoError(t, h.create(c))

	c, rec := testutils.NewEchoContext(t, http.MethodPost, "/loans", payload)
	err := h.create(c)
	require.Error(t, err)

	c.Echo().HTTPErrorHandler(err, c)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "Book is already on loan.")
}

func TestHandler_Remove(t *testing.T) {
	t.Parallel()
	h, db, f := setupTestHandler(t)

	loan := newLoan(f, "2024-01-01", "2024-01-31")
	require.NoError(t, h.loanService.CreateLoan(t.Context(), loan))

	c, rec := testutils.NewEchoContext(t, http.MethodDelete, "/loans/"+strconv.Itoa(loan.ID), "", "id", strconv.Itoa(loan.ID))
	require.NoError(t, h.remove(c))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.True(t, testutils.BookAvailable(t, db, f.Book.ID))

	c, _ = testutils.NewEchoContext(t, http.MethodDelete, "/loans/"+strconv.Itoa(loan.ID), "", "id", strconv.Itoa(loan.ID))
	err := h.remove(c)
	assert.ErrorIs(t, err, errcodes.NotFound("Loan"))
}

func TestHandler_Update(t *testing.T) {
	t.Parallel()
	h, _, f := setupTestHandler(t)

	loan := newLoan(f, "2024-01-01", "2024-01-31")
	require.NoError(t, h.loanService.CreateLoan(t.Context(), loan))
	id := strconv.Itoa(loan.ID)

	c, rec := testutils.NewEchoContext(t, http.MethodPatch, "/loans/"+id, `{"return_date": "2024-02-10"}`, "id", id)
	require.NoError(t, h.update(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var got models.Loan
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "2024-01-01", got.LoanDate.String())
	assert.Equal(t, "2024-02-10", got.ReturnDate.String())

	c, _ = testutils.NewEchoContext(t, http.MethodPatch, "/loans/"+id, `{"return_date": "2023-12-31"}`, "id", id)
	err := h.update(c)
	var errResp *errcodes.Error
	require.ErrorAs(t, err, &errResp)
	assert.Equal(t, http.StatusUnprocessableEntity, errResp.HTTPCode)
}

func TestHandler_List(t *testing.T) {
	t.Parallel()
	h, db, f := setupTestHandler(t)

	second := testutils.NewBook(t, db, f, "Omer Pasha Latas")
	require.NoError(t, h.loanService.CreateLoan(t.Context(), newLoan(f, "2024-01-01", "2024-01-31")))
	loan := newLoan(f, "2024-01-01", "2024-01-31")
	loan.BookID = second.ID
	require.NoError(t, h.loanService.CreateLoan(t.Context(), loan))

	c, rec := testutils.NewEchoContext(t, http.MethodGet, "/loans?limit=1", "")
	require.NoError(t, h.list(c))

	var resp struct {
		Loans []*models.Loan `json:"loans"`
		Total int            `json:"total"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Total)
	assert.Len(t, resp.Loans, 1)
}
