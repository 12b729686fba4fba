// Package testutils provides database helpers shared by package tests.
package testutils

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/shishobooks/circulation/pkg/binder"
	"github.com/shishobooks/circulation/pkg/config"
	"github.com/shishobooks/circulation/pkg/database"
	"github.com/shishobooks/circulation/pkg/errcodes"
	"github.com/shishobooks/circulation/pkg/migrations"
	"github.com/shishobooks/circulation/pkg/models"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

// NewDB opens a migrated in-memory database that is closed when the test
// ends.
func NewDB(t *testing.T) *bun.DB {
	t.Helper()

	db, err := database.New(config.NewForTest())
	require.NoError(t, err)

	_, err = migrations.BringUpToDate(context.Background(), db)
	require.NoError(t, err)

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

// Insert writes models straight to the database, bypassing the services.
func Insert(t *testing.T, db bun.IDB, values ...interface{}) {
	t.Helper()
	for _, v := range values {
		_, err := db.NewInsert().Model(v).Returning("*").Exec(context.Background())
		require.NoError(t, err)
	}
}

// Fixture is a small catalog: one author, one genre, one available book and
// one reader.
type Fixture struct {
	Author *models.Author
	Genre  *models.Genre
	Book   *models.Book
	Reader *models.Reader
}

func NewFixture(t *testing.T, db bun.IDB) *Fixture {
	t.Helper()

	f := &Fixture{
		Author: &models.Author{FirstName: "Ivo", LastName: "Andric"},
		Genre:  &models.Genre{Name: "Novel"},
		Reader: &models.Reader{FirstName: "Ana", LastName: "Jovanovic"},
	}
	Insert(t, db, f.Author, f.Genre, f.Reader)

	f.Book = NewBook(t, db, f, "The Bridge on the Drina")
	return f
}

// NewBook adds another available book by the fixture's author and genre.
func NewBook(t *testing.T, db bun.IDB, f *Fixture, title string) *models.Book {
	t.Helper()

	book := &models.Book{
		Title:     title,
		Price:     1250,
		Available: true,
		Condition: models.BookConditionNew,
		GenreID:   f.Genre.ID,
		AuthorID:  f.Author.ID,
	}
	Insert(t, db, book)
	return book
}

// BookAvailable reads the availability flag of a book directly.
func BookAvailable(t *testing.T, db bun.IDB, bookID int) bool {
	t.Helper()

	book := &models.Book{}
	err := db.NewSelect().Model(book).Column("available").Where("b.id = ?", bookID).Scan(context.Background())
	require.NoError(t, err)
	return book.Available
}

// CountRows counts the rows of a model's table.
func CountRows(t *testing.T, db bun.IDB, model interface{}) int {
	t.Helper()

	count, err := db.NewSelect().Model(model).Count(context.Background())
	require.NoError(t, err)
	return count
}

// NewEchoContext builds a request context wired with the real binder and
// error handler. Path params are given as name/value pairs.
func NewEchoContext(t *testing.T, method, path, payload string, params ...string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()

	e := echo.New()
	b, err := binder.New()
	require.NoError(t, err)
	e.Binder = b
	e.HTTPErrorHandler = errcodes.NewHandler().Handle

	req := httptest.NewRequest(method, path, strings.NewReader(payload))
	if payload != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rr := httptest.NewRecorder()
	c := e.NewContext(req, rr)

	var names, values []string
	for i := 0; i+1 < len(params); i += 2 {
		names = append(names, params[i])
		values = append(values, params[i+1])
	}
	c.SetParamNames(names...)
	c.SetParamValues(values...)

	return c, rr
}
