package genres

type CreateGenrePayload struct {
	Name string `json:"name" mod:"trim" validate:"required,max=100"`
}

type UpdateGenrePayload struct {
	Name *string `json:"name,omitempty" mod:"trim" validate:"omitempty,ne=,max=100"`
}

type ListGenresQuery struct {
	Limit  int     `query:"limit" json:"limit,omitempty" default:"50" validate:"min=1,max=200"`
	Offset int     `query:"offset" json:"offset,omitempty" validate:"min=0"`
	Search *string `query:"search" json:"search,omitempty" mod:"trim"`
}
