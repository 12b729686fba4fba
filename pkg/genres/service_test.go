package genres

import (
	"context"
	"testing"

	"github.com/shishobooks/circulation/pkg/errcodes"
	"github.com/shishobooks/circulation/pkg/models"
	"github.com/shishobooks/circulation/pkg/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindOrCreateGenre(t *testing.T) {
	t.Parallel()
	db := testutils.NewDB(t)
	svc := NewService(db)
	ctx := context.Background()

	created, err := svc.FindOrCreateGenre(ctx, "  Poetry ")
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.Equal(t, "Poetry", created.Name)

	found, err := svc.FindOrCreateGenre(ctx, "Poetry")
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)

	// Names match exactly, so a different case is a different genre.
	other, err := svc.FindOrCreateGenre(ctx, "poetry")
	require.NoError(t, err)
	assert.NotEqual(t, created.ID, other.ID)

	_, err = svc.FindOrCreateGenre(ctx, "   ")
	assert.ErrorIs(t, err, errcodes.ValidationError("Genre name is missing."))
}

func TestCreateGenre_DuplicateName(t *testing.T) {
	t.Parallel()
	db := testutils.NewDB(t)
	svc := NewService(db)
	ctx := context.Background()

	require.NoError(t, svc.CreateGenre(ctx, &models.Genre{Name: "Drama"}))
	err := svc.CreateGenre(ctx, &models.Genre{Name: "Drama"})
	assert.ErrorIs(t, err, errcodes.Conflict("A genre with this name already exists."))
}

func TestDeleteGenre(t *testing.T) {
	t.Parallel()
	db := testutils.NewDB(t)
	f := testutils.NewFixture(t, db)
	svc := NewService(db)
	ctx := context.Background()

	err := svc.DeleteGenre(ctx, f.Genre.ID)
	assert.ErrorIs(t, err, errcodes.Conflict("Cannot delete genre. It is likely used by some books."))

	unused := &models.Genre{Name: "Essay"}
	require.NoError(t, svc.CreateGenre(ctx, unused))
	require.NoError(t, svc.DeleteGenre(ctx, unused.ID))

	err = svc.DeleteGenre(ctx, unused.ID)
	assert.ErrorIs(t, err, errcodes.NotFound("Genre"))
}

func TestUpdateGenre(t *testing.T) {
	t.Parallel()
	db := testutils.NewDB(t)
	f := testutils.NewFixture(t, db)
	svc := NewService(db)
	ctx := context.Background()

	f.Genre.Name = "Historical Novel"
	require.NoError(t, svc.UpdateGenre(ctx, f.Genre, UpdateGenreOptions{Columns: []string{"name"}}))

	got, err := svc.RetrieveGenre(ctx, RetrieveGenreOptions{ID: &f.Genre.ID})
	require.NoError(t, err)
	assert.Equal(t, "Historical Novel", got.Name)

	missing := &models.Genre{ID: 9999, Name: "Ghost"}
	err = svc.UpdateGenre(ctx, missing, UpdateGenreOptions{Columns: []string{"name"}})
	assert.ErrorIs(t, err, errcodes.NotFound("Genre"))
}

func TestListGenresWithTotal(t *testing.T) {
	t.Parallel()
	db := testutils.NewDB(t)
	svc := NewService(db)
	ctx := context.Background()

	for _, name := range []string{"Science Fiction", "Fantasy", "Fiction"} {
		require.NoError(t, svc.CreateGenre(ctx, &models.Genre{Name: name}))
	}

	search := "fiction"
	genres, total, err := svc.ListGenresWithTotal(ctx, ListGenresOptions{Search: &search})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, genres, 2)
	assert.Equal(t, "Fiction", genres[0].Name)
	assert.Equal(t, "Science Fiction", genres[1].Name)

	limit := 1
	genres, total, err = svc.ListGenresWithTotal(ctx, ListGenresOptions{Limit: &limit})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Len(t, genres, 1)
}
