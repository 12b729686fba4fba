package models

import (
	"github.com/uptrace/bun"
)

// Loan records that a reader has a book until ReturnDate. While a loan row
// exists its book is unavailable.
type Loan struct {
	bun.BaseModel `bun:"table:loans,alias:l"`

	ID         int     `bun:",pk,nullzero" json:"id"`
	BookID     int     `bun:"books_id,notnull" json:"book_id"`
	Book       *Book   `bun:"rel:belongs-to,join:books_id=id" json:"book,omitempty"`
	ReaderID   int     `bun:"readers_id,notnull" json:"reader_id"`
	Reader     *Reader `bun:"rel:belongs-to,join:readers_id=id" json:"reader,omitempty"`
	LoanDate   Date    `bun:",notnull" json:"loan_date"`
	ReturnDate Date    `bun:",notnull" json:"return_date"`
}
