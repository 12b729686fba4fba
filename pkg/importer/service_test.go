package importer

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/robinjoseph08/golib/logger"
	"github.com/shishobooks/circulation/pkg/models"
	"github.com/shishobooks/circulation/pkg/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingReporter struct {
	mu    sync.Mutex
	infos []string
	warns []string
}

func (r *recordingReporter) Info(msg string, _ logger.Data) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.infos = append(r.infos, msg)
}

func (r *recordingReporter) Warn(msg string, _ logger.Data) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.warns = append(r.warns, msg)
}

func TestImportFile_SkipsInvalidEntries(t *testing.T) {
	t.Parallel()
	db := testutils.NewDB(t)
	svc := NewService(db)
	reporter := &recordingReporter{}

	result, err := svc.ImportFile(context.Background(), strings.NewReader(`[
		{"title": "Dervish and Death", "price": 15.99, "condition": "NEW",
		 "author": {"firstName": "Mesa", "lastName": "Selimovic"}, "genre": {"name": "Novel"}},
		{"price": 10, "condition": "USED",
		 "author": {"firstName": "Mesa", "lastName": "Selimovic"}, "genre": {"name": "Novel"}}
	]`), reporter)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Imported)
	assert.Equal(t, 1, result.Failed)
	require.Len(t, result.Failures, 1)
	assert.Equal(t, 1, result.Failures[0].Index)
	assert.Equal(t, "UNKNOWN", result.Failures[0].Title)
	assert.Equal(t, []string{"Book title is missing or empty."}, result.Failures[0].Problems)

	assert.Equal(t, 1, testutils.CountRows(t, db, (*models.Book)(nil)))
	assert.Equal(t, []string{"skipping invalid book"}, reporter.warns)
	assert.Contains(t, reporter.infos, "imported book")
}

func TestImportFile_NullEntry(t *testing.T) {
	t.Parallel()
	db := testutils.NewDB(t)
	svc := NewService(db)

	var result *Result
	var err error
	require.NotPanics(t, func() {
		result, err = svc.ImportFile(context.Background(), strings.NewReader(`[
			{"title": "The Fortress", "price": 12, "condition": "USED",
			 "author": {"firstName": "Mesa", "lastName": "Selimovic"}, "genre": {"name": "Novel"}},
			null
		]`), &recordingReporter{})
	})
	require.NoError(t, err)

	assert.Equal(t, 1, result.Imported)
	assert.Equal(t, 1, result.Failed)
	require.Len(t, result.Failures, 1)
	assert.Equal(t, 1, result.Failures[0].Index)
	assert.Equal(t, "UNKNOWN", result.Failures[0].Title)
	assert.Equal(t, []string{"Book entry is null."}, result.Failures[0].Problems)
	assert.Equal(t, 1, testutils.CountRows(t, db, (*models.Book)(nil)))
}

func TestImportBooks_ReusesAuthorsAndGenres(t *testing.T) {
	t.Parallel()
	db := testutils.NewDB(t)
	f := testutils.NewFixture(t, db)
	svc := NewService(db)
	ctx := context.Background()

	records, err := ParseBooks(strings.NewReader(`[
		{"title": "Omer Pasha Latas", "price": 20, "condition": "restored",
		 "author": {"firstName": "Ivo", "lastName": "Andric"}, "genre": {"name": "Novel"}},
		{"title": "Ex Ponto", "price": 7.25, "condition": "Damaged",
		 "author": {"firstName": "Ivo", "lastName": "Andric"}, "genre": {"name": "Poetry"}}
	]`))
	require.NoError(t, err)

	result, err := svc.ImportBooks(ctx, records, &recordingReporter{})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Imported)
	assert.Zero(t, result.Failed)

	assert.Equal(t, 1, testutils.CountRows(t, db, (*models.Author)(nil)))
	assert.Equal(t, 2, testutils.CountRows(t, db, (*models.Genre)(nil)))

	var imported []*models.Book
	err = db.NewSelect().Model(&imported).Where("b.id <> ?", f.Book.ID).Order("b.title ASC").Scan(ctx)
	require.NoError(t, err)
	require.Len(t, imported, 2)
	assert.Equal(t, "Ex Ponto", imported[0].Title)
	assert.Equal(t, models.Price(725), imported[0].Price)
	assert.Equal(t, models.BookConditionDamaged, imported[0].Condition)
	assert.True(t, imported[0].Available)
	assert.Equal(t, f.Author.ID, imported[1].AuthorID)
	assert.Equal(t, f.Genre.ID, imported[1].GenreID)
	assert.Equal(t, models.BookConditionRestored, imported[1].Condition)
}

func TestImportFile_UnreadableDocument(t *testing.T) {
	t.Parallel()
	db := testutils.NewDB(t)
	svc := NewService(db)

	result, err := svc.ImportFile(context.Background(), strings.NewReader(`not json`), &recordingReporter{})
	assert.Error(t, err)
	assert.Nil(t, result)
	assert.Equal(t, 0, testutils.CountRows(t, db, (*models.Book)(nil)))
}

func TestImportBooks_CanceledContext(t *testing.T) {
	t.Parallel()
	db := testutils.NewDB(t)
	svc := NewService(db)

	records, err := ParseBooks(strings.NewReader(`{"title": "Hourglass", "price": 9.5, "condition": "USED",
		"author": {"firstName": "Danilo", "lastName": "Kis"}, "genre": {"name": "Novel"}}`))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := svc.ImportBooks(ctx, records, &recordingReporter{})
	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, result.Imported)
}
