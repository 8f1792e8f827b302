package catalog

type CreateAuthorReq struct {
	FirstName   string `json:"first_name" validate:"required"`
	LastName    string `json:"last_name" validate:"required"`
	DateOfBirth string `json:"date_of_birth,omitempty" validate:"omitempty,datetime=2006-01-02"`
	DateOfDeath string `json:"date_of_death,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

type CreateBookReq struct {
	Title    string   `json:"title"`
	Summary  string   `json:"summary"`
	ISBN     string   `json:"isbn" validate:"required"`
	AuthorID int64    `json:"author_id" validate:"required,gt=0"`
	Language string   `json:"language" validate:"required"`
	Genres   []string `json:"genres" validate:"dive,required"`
}

type CreateInstanceReq struct {
	Imprint string `json:"imprint" validate:"required"`
}
