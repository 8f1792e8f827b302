// model/book.go
package model

type Genre struct {
	ID   int64  `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

type Language struct {
	ID   int64  `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

type Book struct {
	ID         int64  `db:"id" json:"id"`
	Title      string `db:"title" json:"title"`
	Summary    string `db:"summary" json:"summary"`
	ISBN       string `db:"isbn" json:"isbn"`
	AuthorID   int64  `db:"author_id" json:"author_id"`
	LanguageID int64  `db:"language_id" json:"language_id"`

	// Filled by the repository from the book_genres link table.
	GenreIDs []int64 `db:"-" json:"genre_ids,omitempty"`
}
