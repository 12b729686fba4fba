package authors

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

type RetrieveAuthorOptions struct {
	ID        *int
	FirstName *string
	LastName  *string
}

type ListAuthorsOptions struct {
	Limit  *int
	Offset *int
	Search *string

	includeTotal bool
}

type UpdateAuthorOptions struct {
	Columns []string
}

type Service struct {
	db bun.IDB
}

func NewService(db bun.IDB) *Service {
	return &Service{db}
}

func errDuplicateAuthor() error {
	return errcodes.Conflict("An author with this name already exists.")
}

func (svc *Service) CreateAuthor(ctx context.Context, author *models.Author) error {
	_, err := svc.db.
		NewInsert().
		Model(author).
		Returning("*").
		Exec(ctx)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return errDuplicateAuthor()
		}
		return errors.WithStack(errcodes.Storage("Failed to save author.", err))
	}
	return nil
}

func (svc *Service) RetrieveAuthor(ctx context.Context, opts RetrieveAuthorOptions) (*models.Author, error) {
	author := &models.Author{}

	q := svc.db.
		NewSelect().
		Model(author)

	if opts.ID != nil {
		q = q.Where("a.id = ?", *opts.ID)
	}
	if opts.FirstName != nil && opts.LastName != nil {
		q = q.Where("a.first_name = ? AND a.last_name = ?", *opts.FirstName, *opts.LastName)
	}

	err := q.Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Author")
		}
		return nil, errors.WithStack(errcodes.Storage("Failed to load author.", err))
	}

	return author, nil
}

// FindOrCreateAuthor returns the author with exactly this first and last
// name, creating one when there is none.
func (svc *Service) FindOrCreateAuthor(ctx context.Context, firstName, lastName string) (*models.Author, error) {
	firstName = strings.TrimSpace(firstName)
	lastName = strings.TrimSpace(lastName)
	if firstName == "" {
		return nil, errcodes.ValidationError("Author's first name is missing.")
	}
	if lastName == "" {
		return nil, errcodes.ValidationError("Author's last name is missing.")
	}

	author, err := svc.RetrieveAuthor(ctx, RetrieveAuthorOptions{
		FirstName: &firstName,
		LastName:  &lastName,
	})
	if err == nil {
		return author, nil
	}
	if !errors.Is(err, errcodes.NotFound("Author")) {
		return nil, err
	}

	author = &models.Author{FirstName: firstName, LastName: lastName}
	err = svc.CreateAuthor(ctx, author)
	if err != nil {
		return nil, err
	}
	return author, nil
}

func (svc *Service) ListAuthors(ctx context.Context, opts ListAuthorsOptions) ([]*models.Author, error) {
	a, _, err := svc.listAuthorsWithTotal(ctx, opts)
	return a, errors.WithStack(err)
}

func (svc *Service) ListAuthorsWithTotal(ctx context.Context, opts ListAuthorsOptions) ([]*models.Author, int, error) {
	opts.includeTotal = true
	return svc.listAuthorsWithTotal(ctx, opts)
}

func (svc *Service) listAuthorsWithTotal(ctx context.Context, opts ListAuthorsOptions) ([]*models.Author, int, error) {
	authors := []*models.Author{}
	var total int
	var err error

	q := svc.db.
		NewSelect().
		Model(&authors).
		Order("a.last_name ASC", "a.first_name ASC")

	if opts.Search != nil && *opts.Search != "" {
		pattern := "%" + strings.ToLower(*opts.Search) + "%"
		q = q.WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.
				Where("LOWER(a.first_name) LIKE ?", pattern).
				WhereOr("LOWER(a.last_name) LIKE ?", pattern)
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
		return nil, 0, errors.WithStack(errcodes.Storage("Failed to load authors.", err))
	}

	return authors, total, nil
}

func (svc *Service) UpdateAuthor(ctx context.Context, author *models.Author, opts UpdateAuthorOptions) error {
	if len(opts.Columns) == 0 {
		return nil
	}

	res, err := svc.db.
		NewUpdate().
		Model(author).
		Column(opts.Columns...).
		WherePK().
		Exec(ctx)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return errDuplicateAuthor()
		}
		return errors.WithStack(errcodes.Storage("Failed to update author.", err))
	}
	return database.RequireRows(res, "Failed to update author.", errcodes.NotFound("Author"))
}

// DeleteAuthor fails with a conflict while books still reference the author.
func (svc *Service) DeleteAuthor(ctx context.Context, id int) error {
	res, err := svc.db.
		NewDelete().
		Model((*models.Author)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return errcodes.Conflict("Cannot delete author. They are likely assigned to a book.")
		}
		return errors.WithStack(errcodes.Storage("Failed to delete author.", err))
	}
	return database.RequireRows(res, "Failed to delete author.", errcodes.NotFound("Author"))
}
