package reports

import (
	"context"
	"net/http"
	"testing"

	"github.com/segmentio/encoding/json"
	"github.com/shishobooks/circulation/pkg/loans"
	"github.com/shishobooks/circulation/pkg/models"
	"github.com/shishobooks/circulation/pkg/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lend(t *testing.T, svc *loans.Service, book *models.Book, reader *models.Reader, loanDate, returnDate string) *models.Loan {
	t.Helper()
	loan := &models.Loan{
		BookID:     book.ID,
		ReaderID:   reader.ID,
		LoanDate:   models.MustParseDate(loanDate),
		ReturnDate: models.MustParseDate(returnDate),
	}
	require.NoError(t, svc.CreateLoan(context.Background(), loan))
	return loan
}

func TestListActiveLoans_DaysOverdue(t *testing.T) {
	t.Parallel()
	db := testutils.NewDB(t)
	f := testutils.NewFixture(t, db)
	svc := NewService(db)
	ctx := context.Background()

	loan := lend(t, loans.NewService(db), f.Book, f.Reader, "2024-01-01", "2024-01-31")

	asOf := models.MustParseDate("2024-02-05")
	rows, err := svc.ListActiveLoans(ctx, ListActiveLoansOptions{AsOf: &asOf})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, loan.ID, rows[0].LoanID)
	assert.Equal(t, "The Bridge on the Drina", rows[0].BookTitle)
	assert.Equal(t, "Ana Jovanovic", rows[0].ReaderName)
	assert.Equal(t, "2024-01-01", rows[0].LoanDate.String())
	assert.Equal(t, "2024-01-31", rows[0].ReturnDate.String())
	assert.Equal(t, 5, rows[0].DaysOverdue)

	asOf = models.MustParseDate("2024-01-15")
	rows, err = svc.ListActiveLoans(ctx, ListActiveLoansOptions{AsOf: &asOf})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.LessOrEqual(t, rows[0].DaysOverdue, 0)
}

func TestListActiveLoans_OverdueOnly(t *testing.T) {
	t.Parallel()
	db := testutils.NewDB(t)
	f := testutils.NewFixture(t, db)
	svc := NewService(db)
	ctx := context.Background()
	loanService := loans.NewService(db)

	second := testutils.NewBook(t, db, f, "Omer Pasha Latas")
	lend(t, loanService, f.Book, f.Reader, "2024-01-01", "2024-01-31")
	late := lend(t, loanService, second, f.Reader, "2023-12-01", "2023-12-31")

	asOf := models.MustParseDate("2024-01-20")
	rows, total, err := svc.ListActiveLoansWithTotal(ctx, ListActiveLoansOptions{AsOf: &asOf, OverdueOnly: true})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, rows, 1)
	assert.Equal(t, late.ID, rows[0].LoanID)
	assert.Equal(t, 20, rows[0].DaysOverdue)

	rows, total, err = svc.ListActiveLoansWithTotal(ctx, ListActiveLoansOptions{AsOf: &asOf})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, rows, 2)
	assert.Equal(t, late.ID, rows[0].LoanID)
}

func TestRetrieveStatistics(t *testing.T) {
	t.Parallel()
	db := testutils.NewDB(t)
	svc := NewService(db)
	ctx := context.Background()

	stats, err := svc.RetrieveStatistics(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.TotalBooks)
	assert.Equal(t, models.Price(0), stats.TotalInventoryValue)

	f := testutils.NewFixture(t, db)
	testutils.NewBook(t, db, f, "Omer Pasha Latas")
	testutils.Insert(t, db, &models.Reader{FirstName: "Marko", LastName: "Petrovic"})
	// Loans from 2024 are overdue by the time this runs.
	lend(t, loans.NewService(db), f.Book, f.Reader, "2024-01-01", "2024-01-31")

	stats, err = svc.RetrieveStatistics(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalBooks)
	assert.Equal(t, 1, stats.AvailableBooks)
	assert.Equal(t, 2, stats.TotalReaders)
	assert.Equal(t, 1, stats.OverdueLoans)
	assert.Equal(t, models.Price(2500), stats.TotalInventoryValue)
}

func TestHandler_ActiveLoans(t *testing.T) {
	t.Parallel()
	db := testutils.NewDB(t)
	f := testutils.NewFixture(t, db)
	h := &handler{reportService: NewService(db)}

	lend(t, loans.NewService(db), f.Book, f.Reader, "2024-01-01", "2024-01-31")

	c, rec := testutils.NewEchoContext(t, http.MethodGet, "/reports/active-loans?as_of=2024-02-05&overdue=true", "")
	require.NoError(t, h.activeLoans(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Loans []*models.ActiveLoan `json:"loans"`
		Total int                  `json:"total"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Total)
	require.Len(t, resp.Loans, 1)
	assert.Equal(t, 5, resp.Loans[0].DaysOverdue)
}
