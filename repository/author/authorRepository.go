package authorrepo

import (
	"context"

	"github.com/jmoiron/sqlx"

	"libcatalog/model"
)

type Repo interface {
	Create(ctx context.Context, a *model.Author) error
	List(ctx context.Context, limit, offset uint64) ([]model.Author, error)
	Count(ctx context.Context) (int64, error)
	Detail(ctx context.Context, id int64) (*model.Author, error)
}

type repo struct{ db *sqlx.DB }

func New(db *sqlx.DB) Repo { return &repo{db: db} }

func (r *repo) Create(ctx context.Context, a *model.Author) error {
	const q = `
INSERT INTO authors (first_name, last_name, date_of_birth, date_of_death)
VALUES ($1,$2,$3,$4)
RETURNING id`
	return r.db.QueryRowContext(ctx, q,
		a.FirstName, a.LastName, a.DateOfBirth, a.DateOfDeath,
	).Scan(&a.ID)
}

func (r *repo) List(ctx context.Context, limit, offset uint64) ([]model.Author, error) {
	const q = `
SELECT id, first_name, last_name, date_of_birth, date_of_death
FROM authors
ORDER BY id
LIMIT $1 OFFSET $2`
	var out []model.Author
	if err := r.db.SelectContext(ctx, &out, q, limit, offset); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *repo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM authors`)
	return n, err
}

func (r *repo) Detail(ctx context.Context, id int64) (*model.Author, error) {
	const q = `
SELECT id, first_name, last_name, date_of_birth, date_of_death
FROM authors
WHERE id = $1`
	var a model.Author
	if err := r.db.GetContext(ctx, &a, q, id); err != nil {
		return nil, err
	}
	return &a, nil
}
