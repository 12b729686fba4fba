package books

import (
	"context"
	"database/sql"
	"strings"

	"github.com/pkg/errors"
	"github.com/shishobooks/circulation/pkg/database"
	"github.com/shishobooks/circulation/pkg/errcodes"
	"github.com/shishobooks/circulation/pkg/models"
	"github.com/uptrace/bun"
)

type RetrieveBookOptions struct {
	ID *int
}

type ListBooksOptions struct {
	Limit     *int
	Offset    *int
	Available *bool
	AuthorID  *int
	GenreID   *int
	Condition *models.BookCondition
	// Search matches a substring of the title, ignoring case.
	Search *string

	includeTotal bool
}

type UpdateBookOptions struct {
	Columns []string
}

type Service struct {
	db bun.IDB
}

func NewService(db bun.IDB) *Service {
	return &Service{db}
}

// CreateBook adds a book to the catalog. New books are always available;
// only the loan engine changes that.
func (svc *Service) CreateBook(ctx context.Context, book *models.Book) error {
	book.Available = true

	_, err := svc.db.
		NewInsert().
		Model(book).
		Returning("*").
		Exec(ctx)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return errcodes.NotFound("Author or genre")
		}
		return errors.WithStack(errcodes.Storage("Failed to save book.", err))
	}
	return nil
}

func (svc *Service) RetrieveBook(ctx context.Context, opts RetrieveBookOptions) (*models.Book, error) {
	book := &models.Book{}

	q := svc.db.
		NewSelect().
		Model(book).
		Relation("Author").
		Relation("Genre")

	if opts.ID != nil {
		q = q.Where("b.id = ?", *opts.ID)
	}

	err := q.Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Book")
		}
		return nil, errors.WithStack(errcodes.Storage("Failed to load book.", err))
	}

	return book, nil
}

func (svc *Service) ListBooks(ctx context.Context, opts ListBooksOptions) ([]*models.Book, error) {
	b, _, err := svc.listBooksWithTotal(ctx, opts)
	return b, errors.WithStack(err)
}

func (svc *Service) ListBooksWithTotal(ctx context.Context, opts ListBooksOptions) ([]*models.Book, int, error) {
	opts.includeTotal = true
	return svc.listBooksWithTotal(ctx, opts)
}

func (svc *Service) listBooksWithTotal(ctx context.Context, opts ListBooksOptions) ([]*models.Book, int, error) {
	books := []*models.Book{}
	var total int
	var err error

	q := svc.db.
		NewSelect().
		Model(&books).
		Relation("Author").
		Relation("Genre").
		Order("b.title ASC", "b.id ASC")

	if opts.Available != nil {
		q = q.Where("b.available = ?", *opts.Available)
	}
	if opts.AuthorID != nil {
		q = q.Where("b.author_id = ?", *opts.AuthorID)
	}
	if opts.GenreID != nil {
		q = q.Where("b.genre_id = ?", *opts.GenreID)
	}
	if opts.Condition != nil {
		q = q.Where("b.condition = ?", *opts.Condition)
	}
	if opts.Search != nil && *opts.Search != "" {
		q = q.Where("LOWER(b.title) LIKE ?", "%"+strings.ToLower(*opts.Search)+"%")
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
		return nil, 0, errors.WithStack(errcodes.Storage("Failed to load books.", err))
	}

	return books, total, nil
}

// UpdateBook writes the given columns. The available column is never written
// here since it belongs to the loan engine.
func (svc *Service) UpdateBook(ctx context.Context, book *models.Book, opts UpdateBookOptions) error {
	columns := make([]string, 0, len(opts.Columns))
	for _, col := range opts.Columns {
		if col != "available" {
			columns = append(columns, col)
		}
	}
	if len(columns) == 0 {
		return nil
	}

	res, err := svc.db.
		NewUpdate().
		Model(book).
		Column(columns...).
		WherePK().
		Exec(ctx)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return errcodes.NotFound("Author or genre")
		}
		return errors.WithStack(errcodes.Storage("Failed to update book.", err))
	}
	return database.RequireRows(res, "Failed to update book.", errcodes.NotFound("Book"))
}

// DeleteBook fails with a conflict while the book is on loan.
func (svc *Service) DeleteBook(ctx context.Context, id int) error {
	res, err := svc.db.
		NewDelete().
		Model((*models.Book)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return errcodes.Conflict("Cannot delete book. It is likely linked to existing loans.")
		}
		return errors.WithStack(errcodes.Storage("Failed to delete book.", err))
	}
	return database.RequireRows(res, "Failed to delete book.", errcodes.NotFound("Book"))
}
