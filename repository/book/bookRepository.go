package bookrepo

import (
	"context"

	"github.com/jmoiron/sqlx"

	"libcatalog/model"
)

type Repo interface {
	Create(ctx context.Context, b *model.Book) error
	List(ctx context.Context, limit, offset uint64) ([]model.Book, error)
	Count(ctx context.Context) (int64, error)
	Detail(ctx context.Context, id int64) (*model.Book, error)
	EnsureGenre(ctx context.Context, name string) (int64, error)
	EnsureLanguage(ctx context.Context, name string) (int64, error)
}

type repo struct{ db *sqlx.DB }

func New(db *sqlx.DB) Repo { return &repo{db: db} }

// Create inserts the book and its genre links in one transaction.
func (r *repo) Create(ctx context.Context, b *model.Book) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const ins = `
INSERT INTO books (title, summary, isbn, author_id, language_id)
VALUES ($1,$2,$3,$4,$5)
RETURNING id`
	if err = tx.QueryRowContext(ctx, ins,
		b.Title, b.Summary, b.ISBN, b.AuthorID, b.LanguageID,
	).Scan(&b.ID); err != nil {
		return err
	}

	const link = `INSERT INTO book_genres (book_id, genre_id) VALUES ($1,$2)`
	for _, gid := range b.GenreIDs {
		if _, err = tx.ExecContext(ctx, link, b.ID, gid); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (r *repo) List(ctx context.Context, limit, offset uint64) ([]model.Book, error) {
	const q = `
SELECT id, title, summary, isbn, author_id, language_id
FROM books
ORDER BY id
LIMIT $1 OFFSET $2`
	var out []model.Book
	if err := r.db.SelectContext(ctx, &out, q, limit, offset); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *repo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM books`)
	return n, err
}

func (r *repo) Detail(ctx context.Context, id int64) (*model.Book, error) {
	const q = `
SELECT id, title, summary, isbn, author_id, language_id
FROM books
WHERE id = $1`
	var b model.Book
	if err := r.db.GetContext(ctx, &b, q, id); err != nil {
		return nil, err
	}
	const genres = `SELECT genre_id FROM book_genres WHERE book_id = $1 ORDER BY genre_id`
	if err := r.db.SelectContext(ctx, &b.GenreIDs, genres, id); err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *repo) EnsureGenre(ctx context.Context, name string) (int64, error) {
	const q = `
INSERT INTO genres (name) VALUES ($1)
ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
RETURNING id`
	var id int64
	err := r.db.QueryRowContext(ctx, q, name).Scan(&id)
	return id, err
}

func (r *repo) EnsureLanguage(ctx context.Context, name string) (int64, error) {
	const q = `
INSERT INTO languages (name) VALUES ($1)
ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
RETURNING id`
	var id int64
	err := r.db.QueryRowContext(ctx, q, name).Scan(&id)
	return id, err
}
