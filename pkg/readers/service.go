package readers

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

type RetrieveReaderOptions struct {
	ID *int
}

type ListReadersOptions struct {
	Limit  *int
	Offset *int
	Search *string

	includeTotal bool
}

type UpdateReaderOptions struct {
	Columns []string
}

type Service struct {
	db bun.IDB
}

func NewService(db bun.IDB) *Service {
	return &Service{db}
}

func (svc *Service) CreateReader(ctx context.Context, reader *models.Reader) error {
	_, err := svc.db.
		NewInsert().
		Model(reader).
		Returning("*").
		Exec(ctx)
	if err != nil {
		return errors.WithStack(errcodes.Storage("Failed to save reader.", err))
	}
	return nil
}

func (svc *Service) RetrieveReader(ctx context.Context, opts RetrieveReaderOptions) (*models.Reader, error) {
	reader := &models.Reader{}

	q := svc.db.
		NewSelect().
		Model(reader)

	if opts.ID != nil {
		q = q.Where("r.id = ?", *opts.ID)
	}

	err := q.Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Reader")
		}
		return nil, errors.WithStack(errcodes.Storage("Failed to load reader.", err))
	}

	return reader, nil
}

func (svc *Service) ListReaders(ctx context.Context, opts ListReadersOptions) ([]*models.Reader, error) {
	r, _, err := svc.listReadersWithTotal(ctx, opts)
	return r, errors.WithStack(err)
}

func (svc *Service) ListReadersWithTotal(ctx context.Context, opts ListReadersOptions) ([]*models.Reader, int, error) {
	opts.includeTotal = true
	return svc.listReadersWithTotal(ctx, opts)
}

func (svc *Service) listReadersWithTotal(ctx context.Context, opts ListReadersOptions) ([]*models.Reader, int, error) {
	readers := []*models.Reader{}
	var total int
	var err error

	q := svc.db.
		NewSelect().
		Model(&readers).
		Order("r.last_name ASC", "r.first_name ASC", "r.id ASC")

	if opts.Search != nil && *opts.Search != "" {
		pattern := "%" + strings.ToLower(*opts.Search) + "%"
		q = q.WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.
				Where("LOWER(r.first_name) LIKE ?", pattern).
				WhereOr("LOWER(r.last_name) LIKE ?", pattern).
				WhereOr("r.phone_number LIKE ?", pattern)
		})
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
		return nil, 0, errors.WithStack(errcodes.Storage("Failed to load readers.", err))
	}

	return readers, total, nil
}

func (svc *Service) UpdateReader(ctx context.Context, reader *models.Reader, opts UpdateReaderOptions) error {
	if len(opts.Columns) == 0 {
		return nil
	}

	res, err := svc.db.
		NewUpdate().
		Model(reader).
		Column(opts.Columns...).
		WherePK().
		Exec(ctx)
	if err != nil {
		return errors.WithStack(errcodes.Storage("Failed to update reader.", err))
	}
	return database.RequireRows(res, "Failed to update reader.", errcodes.NotFound("Reader"))
}

// DeleteReader fails with a conflict while the reader has loans.
func (svc *Service) DeleteReader(ctx context.Context, id int) error {
	res, err := svc.db.
		NewDelete().
		Model((*models.Reader)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return errcodes.Conflict("Cannot delete reader. They might have active loans.")
		}
		return errors.WithStack(errcodes.Storage("Failed to delete reader.", err))
	}
	return database.RequireRows(res, "Failed to delete reader.", errcodes.NotFound("Reader"))
}
