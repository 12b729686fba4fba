package models

import (
	"github.com/uptrace/bun"
)

type Author struct {
	bun.BaseModel `bun:"table:authors,alias:a"`

	ID        int    `bun:",pk,nullzero" json:"id"`
	FirstName string `bun:",notnull" json:"first_name"`
	LastName  string `bun:",notnull" json:"last_name"`
}

func (a *Author) FullName() string {
	return a.FirstName + " " + a.LastName
}
