package loans

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/shishobooks/circulation/pkg/database"
	"github.com/shishobooks/circulation/pkg/errcodes"
	"github.com/shishobooks/circulation/pkg/models"
	"github.com/uptrace/bun"
)

type RetrieveLoanOptions struct {
	ID *int
}

type ListLoansOptions struct {
	Limit    *int
	Offset   *int
	BookID   *int
	ReaderID *int
	// OverdueAsOf keeps only loans whose return date is before this day.
	OverdueAsOf *models.Date

	includeTotal bool
}

// Service is the loan transaction engine. Creating and deleting a loan change
// the loans table and the book's availability in one transaction, so a book
// is unavailable exactly while a loan for it exists.
type Service struct {
	db bun.IDB
}

func NewService(db bun.IDB) *Service {
	return &Service{db}
}

func errBookOnLoan() error {
	return errcodes.Conflict("Book is already on loan.")
}

// ValidateLoanDates rejects a return date before the loan date. Equal dates
// are allowed.
func ValidateLoanDates(loanDate, returnDate models.Date) error {
	if returnDate.Before(loanDate) {
		return errcodes.ValidationError("Return date cannot be before loan date.")
	}
	return nil
}

// CreateLoan inserts the loan and marks its book unavailable. On success
// loan.ID holds the new id. Nothing is written when any step fails.
func (svc *Service) CreateLoan(ctx context.Context, loan *models.Loan) error {
	err := svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.
			NewInsert().
			Model(loan).
			Returning("id").
			Exec(ctx)
		if err != nil {
			switch {
			case database.IsUniqueViolation(err):
				return errBookOnLoan()
			case database.IsForeignKeyViolation(err):
				return errcodes.NotFound("Book or reader")
			}
			return errcodes.Storage("Failed to save loan.", err)
		}

		// The availability check and the flip are one statement so a
		// concurrent loan of the same book cannot slip in between.
		res, err := tx.
			NewUpdate().
			Model((*models.Book)(nil)).
			Set("available = ?", false).
			Where("id = ?", loan.BookID).
			Where("available = ?", true).
			Exec(ctx)
		if err != nil {
			return errcodes.Storage("Failed to update book availability.", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return errcodes.Storage("Failed to update book availability.", err)
		}
		if n != 1 {
			return errBookOnLoan()
		}

		return nil
	})
	if err != nil {
		loan.ID = 0
		return errors.WithStack(err)
	}

	logger.FromContext(ctx).Info("loan created", logger.Data{
		"loan_id":   loan.ID,
		"book_id":   loan.BookID,
		"reader_id": loan.ReaderID,
	})
	return nil
}

// DeleteLoan removes the loan and marks its book available again. A missing
// loan is reported as not found and nothing changes.
func (svc *Service) DeleteLoan(ctx context.Context, id int) error {
	var bookID int
	err := svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		loan := &models.Loan{}
		err := tx.
			NewSelect().
			Model(loan).
			Column("books_id").
			Where("l.id = ?", id).
			Scan(ctx)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return errcodes.NotFound("Loan")
			}
			return errcodes.Storage("Failed to load loan.", err)
		}
		bookID = loan.BookID

		_, err = tx.
			NewDelete().
			Model((*models.Loan)(nil)).
			Where("id = ?", id).
			Exec(ctx)
		if err != nil {
			return errcodes.Storage("Failed to delete loan.", err)
		}

		_, err = tx.
			NewUpdate().
			Model((*models.Book)(nil)).
			Set("available = ?", true).
			Where("id = ?", bookID).
			Exec(ctx)
		if err != nil {
			return errcodes.Storage("Failed to update book availability.", err)
		}

		return nil
	})
	if err != nil {
		return errors.WithStack(err)
	}

	logger.FromContext(ctx).Info("loan returned", logger.Data{"loan_id": id, "book_id": bookID})
	return nil
}

// UpdateLoan changes the loan and return dates. The book and reader of a loan
// never change, so the book's availability is left alone.
func (svc *Service) UpdateLoan(ctx context.Context, loan *models.Loan) error {
	res, err := svc.db.
		NewUpdate().
		Model(loan).
		Column("loan_date", "return_date").
		WherePK().
		Exec(ctx)
	if err != nil {
		return errors.WithStack(errcodes.Storage("Failed to update loan.", err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.WithStack(errcodes.Storage("Failed to update loan.", err))
	}
	if n == 0 {
		return errcodes.NotFound("Loan")
	}
	return nil
}

func (svc *Service) RetrieveLoan(ctx context.Context, opts RetrieveLoanOptions) (*models.Loan, error) {
	loan := &models.Loan{}

	q := svc.db.
		NewSelect().
		Model(loan).
		Relation("Book").
		Relation("Book.Author").
		Relation("Book.Genre").
		Relation("Reader")

	if opts.ID != nil {
		q = q.Where("l.id = ?", *opts.ID)
	}

	err := q.Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Loan")
		}
		return nil, errors.WithStack(errcodes.Storage("Failed to load loan.", err))
	}

	return loan, nil
}

func (svc *Service) ListLoans(ctx context.Context, opts ListLoansOptions) ([]*models.Loan, error) {
	l, _, err := svc.listLoansWithTotal(ctx, opts)
	return l, errors.WithStack(err)
}

func (svc *Service) ListLoansWithTotal(ctx context.Context, opts ListLoansOptions) ([]*models.Loan, int, error) {
	opts.includeTotal = true
	return svc.listLoansWithTotal(ctx, opts)
}

func (svc *Service) listLoansWithTotal(ctx context.Context, opts ListLoansOptions) ([]*models.Loan, int, error) {
	loans := []*models.Loan{}
	var total int
	var err error

	q := svc.db.
		NewSelect().
		Model(&loans).
		Relation("Book").
		Relation("Book.Author").
		Relation("Book.Genre").
		Relation("Reader").
		Order("l.id ASC")

	if opts.BookID != nil {
		q = q.Where("l.books_id = ?", *opts.BookID)
	}
	if opts.ReaderID != nil {
		q = q.Where("l.readers_id = ?", *opts.ReaderID)
	}
	if opts.OverdueAsOf != nil {
		q = q.Where("l.return_date < ?", *opts.OverdueAsOf)
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
		return nil, 0, errors.WithStack(errcodes.Storage("Failed to load loans.", err))
	}

	return loans, total, nil
}
