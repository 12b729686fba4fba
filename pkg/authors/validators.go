package authors

type CreateAuthorPayload struct {
	FirstName string `json:"first_name" mod:"trim" validate:"required,max=100"`
	LastName  string `json:"last_name" mod:"trim" validate:"required,max=100"`
}

type UpdateAuthorPayload struct {
	FirstName *string `json:"first_name,omitempty" mod:"trim" validate:"omitempty,ne=,max=100"`
	LastName  *string `json:"last_name,omitempty" mod:"trim" validate:"omitempty,ne=,max=100"`
}

type ListAuthorsQuery struct {
	Limit  int     `query:"limit" json:"limit,omitempty" default:"50" validate:"min=1,max=200"`
	Offset int     `query:"offset" json:"offset,omitempty" validate:"min=0"`
	Search *string `query:"search" json:"search,omitempty" mod:"trim"`
}
