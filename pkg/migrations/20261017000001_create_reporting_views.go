package migrations

import (
	"context"

	"github.com/shishobooks/circulation/pkg/database"
	"github.com/uptrace/bun"
)

func init() {
	up := func(ctx context.Context, db *bun.DB) error {
		daysOverdue := `CAST(julianday(date('now')) - julianday(l.return_date) AS INTEGER)`
		today := `date('now')`
		if database.IsPostgres(db) {
			daysOverdue = `(CURRENT_DATE - l.return_date)`
			today = `CURRENT_DATE`
		}

		return execAll(ctx, db,
			`CREATE VIEW active_loans AS
			SELECT
				l.id AS loan_id,
				b.title AS book_title,
				r.first_name || ' ' || r.last_name AS reader_name,
				l.loan_date AS loan_date,
				l.return_date AS return_date,
				`+daysOverdue+` AS days_overdue
			FROM loans l
			INNER JOIN books b ON b.id = l.books_id
			INNER JOIN readers r ON r.id = l.readers_id`,
			`CREATE VIEW library_statistics AS
			SELECT
				(SELECT COUNT(*) FROM books) AS total_books,
				(SELECT COUNT(*) FROM books WHERE available = TRUE) AS available_books,
				(SELECT COUNT(*) FROM readers) AS total_readers,
				(SELECT COUNT(*) FROM loans WHERE return_date < `+today+`) AS overdue_loans,
				(SELECT CAST(COALESCE(SUM(price), 0) AS BIGINT) FROM books) AS total_inventory_value`,
		)
	}

	down := func(ctx context.Context, db *bun.DB) error {
		return execAll(ctx, db,
			`DROP VIEW IF EXISTS library_statistics`,
			`DROP VIEW IF EXISTS active_loans`,
		)
	}

	Migrations.MustRegister(up, down)
}
