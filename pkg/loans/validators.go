package loans

type CreateLoanPayload struct {
	BookID   int    `json:"book_id" validate:"required,min=1"`
	ReaderID int    `json:"reader_id" validate:"required,min=1"`
	LoanDate string `json:"loan_date" validate:"date"`
	// Defaults to the loan date plus the configured loan period.
	ReturnDate string `json:"return_date" validate:"date"`
}

type UpdateLoanPayload struct {
	LoanDate   *string `json:"loan_date,omitempty" validate:"omitempty,date,ne="`
	ReturnDate *string `json:"return_date,omitempty" validate:"omitempty,date,ne="`
}

type ListLoansQuery struct {
	Limit    int  `query:"limit" json:"limit,omitempty" default:"50" validate:"min=1,max=200"`
	Offset   int  `query:"offset" json:"offset,omitempty" validate:"min=0"`
	BookID   *int `query:"book_id" json:"book_id,omitempty" validate:"omitempty,min=1"`
	ReaderID *int `query:"reader_id" json:"reader_id,omitempty" validate:"omitempty,min=1"`
	Overdue  bool `query:"overdue" json:"overdue,omitempty"`
}
