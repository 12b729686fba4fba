package books

import "github.com/shishobooks/circulation/pkg/models"

type CreateBookPayload struct {
	Title     string       `json:"title" mod:"trim" validate:"required,max=255"`
	Price     models.Price `json:"price" validate:"gt=0"`
	Condition string       `json:"condition" mod:"trim,ucase" validate:"required,oneof=NEW USED DAMAGED RESTORED"`
	AuthorID  int          `json:"author_id" validate:"required,min=1"`
	GenreID   int          `json:"genre_id" validate:"required,min=1"`
}

// UpdateBookPayload has no available field; availability follows loans.
type UpdateBookPayload struct {
	Title     *string       `json:"title,omitempty" mod:"trim" validate:"omitempty,ne=,max=255"`
	Price     *models.Price `json:"price,omitempty" validate:"omitempty,gt=0"`
	Condition *string       `json:"condition,omitempty" mod:"trim,ucase" validate:"omitempty,oneof=NEW USED DAMAGED RESTORED"`
	AuthorID  *int          `json:"author_id,omitempty" validate:"omitempty,min=1"`
	GenreID   *int          `json:"genre_id,omitempty" validate:"omitempty,min=1"`
}

type ListBooksQuery struct {
	Limit     int     `query:"limit" json:"limit,omitempty" default:"50" validate:"min=1,max=200"`
	Offset    int     `query:"offset" json:"offset,omitempty" validate:"min=0"`
	Available *bool   `query:"available" json:"available,omitempty"`
	AuthorID  *int    `query:"author_id" json:"author_id,omitempty" validate:"omitempty,min=1"`
	GenreID   *int    `query:"genre_id" json:"genre_id,omitempty" validate:"omitempty,min=1"`
	Condition *string `query:"condition" json:"condition,omitempty" mod:"trim,ucase" validate:"omitempty,oneof=NEW USED DAMAGED RESTORED"`
	Search    *string `query:"search" json:"search,omitempty" mod:"trim"`
}
