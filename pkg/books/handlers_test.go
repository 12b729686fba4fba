package books

import (
	"fmt"
	"net/http"
	"strconv"
	"testing"

	"github.com/segmentio/encoding/json"
	"github.com/shishobooks/circulation/pkg/errcodes"
	"github.com/shishobooks/circulation/pkg/models"
	"github.com/shishobooks/circulation/pkg/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandler_Create(t *testing.T) {
	t.Parallel()
	db := testutils.NewDB(t)
	f := testutils.NewFixture(t, db)
	h := &handler{bookService: NewService(db)}

	payload := fmt.Sprintf(`{"title": "The Damned Yard", "price": 12.5, "condition": "used", "author_id": %d, "genre_id": %d}`, f.Author.ID, f.Genre.ID)
	c, rec := testutils.NewEchoContext(t, http.MethodPost, "/books", payload)
	require.NoError(t, h.create(c))
	assert.Equal(t, http.StatusCreated, rec.Code)

	var book models.Book
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &book))
	assert.Equal(t, models.Price(1250), book.Price)
	assert.Equal(t, models.BookConditionUsed, book.Condition)
	assert.True(t, book.Available)
	assert.Contains(t, rec.Body.String(), `"price":12.50`)
}

func TestHandler_CreateRejectsZeroPrice(t *testing.T) {
	t.Parallel()
	db := testutils.NewDB(t)
	f := testutils.NewFixture(t, db)
	h := &handler{bookService: NewService(db)}

	payload := fmt.Sprintf(`{"title": "Free", "price": 0, "condition": "NEW", "author_id": %d, "genre_id": %d}`, f.Author.ID, f.Genre.ID)
	c, _ := testutils.NewEchoContext(t, http.MethodPost, "/books", payload)

	err := h.create(c)
	var errResp *errcodes.Error
	require.ErrorAs(t, err, &errResp)
	assert.Equal(t, http.StatusUnprocessableEntity, errResp.HTTPCode)
}

func TestHandler_UpdateRejectsAvailable(t *testing.T) {
	t.Parallel()
	db := testutils.NewDB(t)
	f := testutils.NewFixture(t, db)
	h := &handler{bookService: NewService(db)}
	id := strconv.Itoa(f.Book.ID)

	c, _ := testutils.NewEchoContext(t, http.MethodPatch, "/books/"+id, `{"available": false}`, "id", id)
	err := h.update(c)
	assert.ErrorIs(t, err, errcodes.UnknownParameter("available"))
	assert.True(t, testutils.BookAvailable(t, db, f.Book.ID))
}

func TestHandler_ListAvailable(t *testing.T) {
	t.Parallel()
	db := testutils.NewDB(t)
	f := testutils.NewFixture(t, db)
	h := &handler{bookService: NewService(db)}

	testutils.Insert(t, db, &models.Loan{
		BookID:     f.Book.ID,
		ReaderID:   f.Reader.ID,
		LoanDate:   models.MustParseDate("2024-01-01"),
		ReturnDate: models.MustParseDate("2024-01-31"),
	})
	_, err := db.NewUpdate().Model((*models.Book)(nil)).Set("available = ?", false).Where("id = ?", f.Book.ID).Exec(t.Context())
	require.NoError(t, err)
	testutils.NewBook(t, db, f, "Omer Pasha Latas")

	c, rec := testutils.NewEchoContext(t, http.MethodGet, "/books?available=true", "")
	require.NoError(t, h.list(c))

	var resp struct {
		Books []*models.Book `json:"books"`
		Total int            `json:"total"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Total)
	require.Len(t, resp.Books, 1)
	assert.Equal(t, "Omer Pasha Latas", resp.Books[0].Title)
}
