package migrations

import (
	"context"

	"github.com/uptrace/bun"
)

func init() {
	up := func(ctx context.Context, db *bun.DB) error {
		return execAll(ctx, db,
			`CREATE TABLE authors (
				id $PK,
				first_name TEXT NOT NULL,
				last_name TEXT NOT NULL
			)`,
			`CREATE UNIQUE INDEX ux_authors_first_name_last_name ON authors (first_name, last_name)`,
			`CREATE TABLE genres (
				id $PK,
				name TEXT NOT NULL
			)`,
			`CREATE UNIQUE INDEX ux_genres_name ON genres (name)`,
			`CREATE TABLE books (
				id $PK,
				title TEXT NOT NULL,
				price BIGINT NOT NULL,
				available BOOLEAN NOT NULL DEFAULT TRUE,
				condition TEXT NOT NULL,
				genre_id INTEGER NOT NULL REFERENCES genres (id),
				author_id INTEGER NOT NULL REFERENCES authors (id)
			)`,
			`CREATE INDEX ix_books_genre_id ON books (genre_id)`,
			`CREATE INDEX ix_books_author_id ON books (author_id)`,
			`CREATE TABLE readers (
				id $PK,
				first_name TEXT NOT NULL,
				last_name TEXT NOT NULL,
				phone_number TEXT
			)`,
			`CREATE TABLE loans (
				id $PK,
				books_id INTEGER NOT NULL REFERENCES books (id),
				readers_id INTEGER NOT NULL REFERENCES readers (id),
				loan_date DATE NOT NULL,
				return_date DATE NOT NULL
			)`,
			// A book can be on at most one loan at a time.
			`CREATE UNIQUE INDEX ux_loans_books_id ON loans (books_id)`,
			`CREATE INDEX ix_loans_readers_id ON loans (readers_id)`,
		)
	}

	down := func(ctx context.Context, db *bun.DB) error {
		return execAll(ctx, db,
			`DROP TABLE IF EXISTS loans`,
			`DROP TABLE IF EXISTS readers`,
			`DROP TABLE IF EXISTS books`,
			`DROP TABLE IF EXISTS genres`,
			`DROP TABLE IF EXISTS authors`,
		)
	}

	Migrations.MustRegister(up, down)
}
