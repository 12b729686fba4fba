package genres

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

type RetrieveGenreOptions struct {
	ID   *int
	Name *string
}

type ListGenresOptions struct {
	Limit  *int
	Offset *int
	Search *string

	includeTotal bool
}

type UpdateGenreOptions struct {
	Columns []string
}

type Service struct {
	db bun.IDB
}

func NewService(db bun.IDB) *Service {
	return &Service{db}
}

func (svc *Service) CreateGenre(ctx context.Context, genre *models.Genre) error {
	_, err := svc.db.
		NewInsert().
		Model(genre).
		Returning("*").
		Exec(ctx)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return errcodes.Conflict("A genre with this name already exists.")
		}
		return errors.WithStack(errcodes.Storage("Failed to save genre.", err))
	}
	return nil
}

func (svc *Service) RetrieveGenre(ctx context.Context, opts RetrieveGenreOptions) (*models.Genre, error) {
	genre := &models.Genre{}

	q := svc.db.
		NewSelect().
		Model(genre)

	if opts.ID != nil {
		q = q.Where("g.id = ?", *opts.ID)
	}
	if opts.Name != nil {
		q = q.Where("g.name = ?", *opts.Name)
	}

	err := q.Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Genre")
		}
		return nil, errors.WithStack(errcodes.Storage("Failed to load genre.", err))
	}

	return genre, nil
}

// FindOrCreateGenre returns the genre with exactly this name, creating it
// when there is none.
func (svc *Service) FindOrCreateGenre(ctx context.Context, name string) (*models.Genre, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errcodes.ValidationError("Genre name is missing.")
	}

	genre, err := svc.RetrieveGenre(ctx, RetrieveGenreOptions{Name: &name})
	if err == nil {
		return genre, nil
	}
	if !errors.Is(err, errcodes.NotFound("Genre")) {
		return nil, err
	}

	genre = &models.Genre{Name: name}
	err = svc.CreateGenre(ctx, genre)
	if err != nil {
		return nil, err
	}
	return genre, nil
}

func (svc *Service) ListGenres(ctx context.Context, opts ListGenresOptions) ([]*models.Genre, error) {
	g, _, err := svc.listGenresWithTotal(ctx, opts)
	return g, errors.WithStack(err)
}

func (svc *Service) ListGenresWithTotal(ctx context.Context, opts ListGenresOptions) ([]*models.Genre, int, error) {
	opts.includeTotal = true
	return svc.listGenresWithTotal(ctx, opts)
}

func (svc *Service) listGenresWithTotal(ctx context.Context, opts ListGenresOptions) ([]*models.Genre, int, error) {
	genres := []*models.Genre{}
	var total int
	var err error

	q := svc.db.
		NewSelect().
		Model(&genres).
		Order("g.name ASC")

	if opts.Search != nil && *opts.Search != "" {
		q = q.Where("LOWER(g.name) LIKE ?", "%"+strings.ToLower(*opts.Search)+"%")
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
		return nil, 0, errors.WithStack(errcodes.Storage("Failed to load genres.", err))
	}

	return genres, total, nil
}

func (svc *Service) UpdateGenre(ctx context.Context, genre *models.Genre, opts UpdateGenreOptions) error {
	if len(opts.Columns) == 0 {
		return nil
	}

	res, err := svc.db.
		NewUpdate().
		Model(genre).
		Column(opts.Columns...).
		WherePK().
		Exec(ctx)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return errcodes.Conflict("A genre with this name already exists.")
		}
		return errors.WithStack(errcodes.Storage("Failed to update genre.", err))
	}
	return database.RequireRows(res, "Failed to update genre.", errcodes.NotFound("Genre"))
}

// DeleteGenre fails with a conflict while books still use the genre.
func (svc *Service) DeleteGenre(ctx context.Context, id int) error {
	res, err := svc.db.
		NewDelete().
		Model((*models.Genre)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return errcodes.Conflict("Cannot delete genre. It is likely used by some books.")
		}
		return errors.WithStack(errcodes.Storage("Failed to delete genre.", err))
	}
	return database.RequireRows(res, "Failed to delete genre.", errcodes.NotFound("Genre"))
}

// GetBookCount returns the count of books with this genre.
func (svc *Service) GetBookCount(ctx context.Context, id int) (int, error) {
	count, err := svc.db.
		NewSelect().
		Model((*models.Book)(nil)).
		Where("genre_id = ?", id).
		Count(ctx)
	return count, errors.WithStack(err)
}
