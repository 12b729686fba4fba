package importer

import (
	"context"
	"database/sql"
	"io"
	"strings"

	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/shishobooks/circulation/pkg/authors"
	"github.com/shishobooks/circulation/pkg/books"
	"github.com/shishobooks/circulation/pkg/genres"
	"github.com/shishobooks/circulation/pkg/models"
	"github.com/uptrace/bun"
)

// Reporter receives progress messages while books are imported.
type Reporter interface {
	Info(msg string, data logger.Data)
	Warn(msg string, data logger.Data)
}

// Failure describes one record that was not imported.
type Failure struct {
	Index    int      `json:"index"`
	Title    string   `json:"title"`
	Problems []string `json:"problems"`
}

type Result struct {
	Imported int        `json:"imported"`
	Failed   int        `json:"failed"`
	Failures []*Failure `json:"failures,omitempty"`
}

type Service struct {
	db bun.IDB
}

func NewService(db bun.IDB) *Service {
	return &Service{db}
}

// ImportFile parses an import document and imports its books. A document
// that cannot be parsed is an error and nothing is imported.
func (svc *Service) ImportFile(ctx context.Context, r io.Reader, reporter Reporter) (*Result, error) {
	records, err := ParseBooks(r)
	if err != nil {
		return nil, err
	}
	return svc.ImportBooks(ctx, records, reporter)
}

// ImportBooks imports each valid record in its own transaction. Invalid
// records and records the database rejects are counted as failures and the
// import moves on. The author and genre of each book are matched by exact
// name and created when missing.
func (svc *Service) ImportBooks(ctx context.Context, records []*BookRecord, reporter Reporter) (*Result, error) {
	result := &Result{}
	reporter.Info("starting import", logger.Data{"records": len(records)})

	for i, record := range records {
		if err := ctx.Err(); err != nil {
			return result, errors.WithStack(err)
		}

		title := record.DisplayTitle()
		if problems := ValidateBook(record); len(problems) > 0 {
			result.fail(i, title, problems)
			reporter.Warn("skipping invalid book", logger.Data{
				"index":    i,
				"title":    title,
				"problems": strings.Join(problems, " "),
			})
			continue
		}

		book, err := svc.importBook(ctx, record)
		if err != nil {
			result.fail(i, title, []string{err.Error()})
			reporter.Warn("failed to import book", logger.Data{
				"index": i,
				"title": title,
				"error": err.Error(),
			})
			continue
		}

		result.Imported++
		reporter.Info("imported book", logger.Data{"book_id": book.ID, "title": book.Title})
	}

	reporter.Info("import finished", logger.Data{
		"imported": result.Imported,
		"failed":   result.Failed,
	})
	return result, nil
}

func (r *Result) fail(index int, title string, problems []string) {
	r.Failed++
	r.Failures = append(r.Failures, &Failure{Index: index, Title: title, Problems: problems})
}

// importBook expects a record that passed ValidateBook.
func (svc *Service) importBook(ctx context.Context, record *BookRecord) (*models.Book, error) {
	price, err := models.ParsePrice(record.Price.String())
	if err != nil {
		return nil, errors.WithStack(err)
	}
	condition, err := models.ParseBookCondition(*record.Condition)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	book := &models.Book{
		Title:     strings.TrimSpace(*record.Title),
		Price:     price,
		Condition: condition,
	}

	err = svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		author, err := authors.NewService(tx).FindOrCreateAuthor(ctx, *record.Author.FirstName, *record.Author.LastName)
		if err != nil {
			return err
		}
		genre, err := genres.NewService(tx).FindOrCreateGenre(ctx, *record.Genre.Name)
		if err != nil {
			return err
		}

		book.AuthorID = author.ID
		book.GenreID = genre.ID
		return books.NewService(tx).CreateBook(ctx, book)
	})
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return book, nil
}
