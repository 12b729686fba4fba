package models

import (
	"github.com/uptrace/bun"
)

type Reader struct {
	bun.BaseModel `bun:"table:readers,alias:r"`

	ID          int     `bun:",pk,nullzero" json:"id"`
	FirstName   string  `bun:",notnull" json:"first_name"`
	LastName    string  `bun:",notnull" json:"last_name"`
	PhoneNumber *string `json:"phone_number,omitempty"`
}

func (r *Reader) FullName() string {
	return r.FirstName + " " + r.LastName
}
