package models

import (
	"github.com/uptrace/bun"
)

type Book struct {
	bun.BaseModel `bun:"table:books,alias:b"`

	ID        int           `bun:",pk,nullzero" json:"id"`
	Title     string        `bun:",notnull" json:"title"`
	Price     Price         `bun:",notnull" json:"price"`
	Available bool          `bun:",notnull" json:"available"`
	Condition BookCondition `bun:",notnull" json:"condition"`
	GenreID   int           `bun:",notnull" json:"genre_id"`
	Genre     *Genre        `bun:"rel:belongs-to,join:genre_id=id" json:"genre,omitempty"`
	AuthorID  int           `bun:",notnull" json:"author_id"`
	Author    *Author       `bun:"rel:belongs-to,join:author_id=id" json:"author,omitempty"`
}
