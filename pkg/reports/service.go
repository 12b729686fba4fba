package reports

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"
	"github.com/shishobooks/circulation/pkg/database"
	"github.com/shishobooks/circulation/pkg/errcodes"
	"github.com/shishobooks/circulation/pkg/models"
	"github.com/uptrace/bun"
)

type ListActiveLoansOptions struct {
	Limit  *int
	Offset *int
	// AsOf is the day days_overdue is measured against. Defaults to today.
	AsOf *models.Date
	// OverdueOnly keeps loans whose return date is before AsOf.
	OverdueOnly bool

	includeTotal bool
}

// Service reads the reporting views. It never writes.
type Service struct {
	db bun.IDB
}

func NewService(db bun.IDB) *Service {
	return &Service{db}
}

// daysOverdueExpr returns the expression for whole days between the bound
// date and al.return_date in the active dialect.
func (svc *Service) daysOverdueExpr() string {
	if database.IsPostgres(svc.db) {
		return "(CAST(? AS DATE) - al.return_date)"
	}
	return "CAST(julianday(?) - julianday(al.return_date) AS INTEGER)"
}

func (svc *Service) ListActiveLoans(ctx context.Context, opts ListActiveLoansOptions) ([]*models.ActiveLoan, error) {
	l, _, err := svc.listActiveLoansWithTotal(ctx, opts)
	return l, errors.WithStack(err)
}

func (svc *Service) ListActiveLoansWithTotal(ctx context.Context, opts ListActiveLoansOptions) ([]*models.ActiveLoan, int, error) {
	opts.includeTotal = true
	return svc.listActiveLoansWithTotal(ctx, opts)
}

func (svc *Service) listActiveLoansWithTotal(ctx context.Context, opts ListActiveLoansOptions) ([]*models.ActiveLoan, int, error) {
	loans := []*models.ActiveLoan{}
	var total int
	var err error

	asOf := models.Today()
	if opts.AsOf != nil {
		asOf = *opts.AsOf
	}

	q := svc.db.
		NewSelect().
		Model(&loans).
		Column("loan_id", "book_title", "reader_name", "loan_date", "return_date").
		ColumnExpr(svc.daysOverdueExpr()+" AS days_overdue", asOf).
		Order("al.return_date ASC", "al.loan_id ASC")

	if opts.OverdueOnly {
		q = q.Where("al.return_date < ?", asOf)
	}
	if opts.Limit != nil {
		q = q.Limit(*opts.Limit)
	}
	if opts.Offset != nil {
		q = q.Offset(*opts.Offset)
	}

	if opts.includeTotal {
		total, err = q.ScanAndCount(ctx)
	} else {
		err = q.Scan(ctx)
	}
	if err != nil {
		return nil, 0, errors.WithStack(errcodes.Storage("Failed to load active loans.", err))
	}

	return loans, total, nil
}

func (svc *Service) RetrieveStatistics(ctx context.Context) (*models.LibraryStatistics, error) {
	stats := &models.LibraryStatistics{}

	err := svc.db.
		NewSelect().
		Model(stats).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return stats, nil
		}
		return nil, errors.WithStack(errcodes.Storage("Failed to load statistics.", err))
	}

	return stats, nil
}
