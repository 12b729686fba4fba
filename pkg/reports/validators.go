package reports

type ListActiveLoansQuery struct {
	Limit   int    `query:"limit" json:"limit,omitempty" default:"50" validate:"min=1,max=200"`
	Offset  int    `query:"offset" json:"offset,omitempty" validate:"min=0"`
	AsOf    string `query:"as_of" json:"as_of,omitempty" validate:"date"`
	Overdue bool   `query:"overdue" json:"overdue,omitempty"`
}
