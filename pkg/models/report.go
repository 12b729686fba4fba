package models

import (
	"github.com/uptrace/bun"
)

// ActiveLoan is a row of the active_loans view. DaysOverdue is positive once
// the return date has passed.
type ActiveLoan struct {
	bun.BaseModel `bun:"table:active_loans,alias:al"`

	LoanID      int    `json:"loan_id"`
	BookTitle   string `json:"book_title"`
	ReaderName  string `json:"reader_name"`
	LoanDate    Date   `json:"loan_date"`
	ReturnDate  Date   `json:"return_date"`
	DaysOverdue int    `json:"days_overdue"`
}

// LibraryStatistics is the single row of the library_statistics view.
type LibraryStatistics struct {
	bun.BaseModel `bun:"table:library_statistics,alias:ls"`

	TotalBooks          int   `json:"total_books"`
	AvailableBooks      int   `json:"available_books"`
	TotalReaders        int   `json:"total_readers"`
	OverdueLoans        int   `json:"overdue_loans"`
	TotalInventoryValue Price `json:"total_inventory_value"`
}
