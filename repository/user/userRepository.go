package userrepo

import (
	"context"

	"github.com/jmoiron/sqlx"

	"libcatalog/model"
)

type Repo interface {
	Create(ctx context.Context, u *model.User) error
	ByUsername(ctx context.Context, username string) (*model.User, error)
	HasPermission(ctx context.Context, userID int64, perm string) (bool, error)
	Grant(ctx context.Context, userID int64, perm string) error
}

type repo struct{ db *sqlx.DB }

func New(db *sqlx.DB) Repo { return &repo{db: db} }

func (r *repo) Create(ctx context.Context, u *model.User) error {
	return r.db.QueryRowContext(ctx, `
		INSERT INTO users (username, password_hash)
		VALUES ($1,$2)
		RETURNING id, created_at`,
		u.Username, u.PasswordHash,
	).Scan(&u.ID, &u.CreatedAt)
}

func (r *repo) ByUsername(ctx context.Context, username string) (*model.User, error) {
	u := &model.User{}
	err := r.db.GetContext(ctx, u, `
        SELECT id, username, password_hash, created_at
        FROM users
        WHERE lower(username) = lower($1)`,
		username,
	)
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (r *repo) HasPermission(ctx context.Context, userID int64, perm string) (bool, error) {
	var ok bool
	err := r.db.GetContext(ctx, &ok, `
		SELECT EXISTS (
			SELECT 1 FROM user_permissions
			WHERE user_id = $1 AND permission = $2
		)`,
		userID, perm,
	)
	return ok, err
}

func (r *repo) Grant(ctx context.Context, userID int64, perm string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO user_permissions (user_id, permission)
		VALUES ($1,$2)
		ON CONFLICT DO NOTHING`,
		userID, perm,
	)
	return err
}
