package instancerepo

import (
	"context"
	"database/sql"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"libcatalog/model"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// LoanRow is the listing shape of the borrowed-copy views: the copy
// joined with its book title.
type LoanRow struct {
	ID         uuid.UUID            `db:"id" json:"id"`
	BookID     int64                `db:"book_id" json:"book_id"`
	BookTitle  string               `db:"book_title" json:"book_title"`
	Imprint    string               `db:"imprint" json:"imprint"`
	Status     model.InstanceStatus `db:"status" json:"status"`
	DueBack    time.Time            `db:"due_back" json:"due_back"`
	BorrowerID int64                `db:"borrower_id" json:"borrower_id"`
}

type Repo interface {
	Create(ctx context.Context, inst *model.BookInstance) error
	Get(ctx context.Context, id uuid.UUID) (*model.BookInstance, error)
	UpdateDueBack(ctx context.Context, id uuid.UUID, due time.Time) error
	SetOnLoan(ctx context.Context, id uuid.UUID, borrowerID int64, due time.Time) error
	ListOnLoan(ctx context.Context, borrowerID *int64, limit, offset uint64) ([]LoanRow, error)
	CountOnLoan(ctx context.Context, borrowerID *int64) (int64, error)
}

type repo struct{ db *sqlx.DB }

func New(db *sqlx.DB) Repo { return &repo{db: db} }

func (r *repo) Create(ctx context.Context, inst *model.BookInstance) error {
	const q = `
INSERT INTO book_instances (id, book_id, imprint, status, due_back, borrower_id)
VALUES ($1,$2,$3,$4,$5,$6)`
	_, err := r.db.ExecContext(ctx, q,
		inst.ID, inst.BookID, inst.Imprint, inst.Status, inst.DueBack, inst.BorrowerID,
	)
	return err
}

func (r *repo) Get(ctx context.Context, id uuid.UUID) (*model.BookInstance, error) {
	const q = `
SELECT id, book_id, imprint, status, due_back, borrower_id
FROM book_instances
WHERE id = $1`
	var inst model.BookInstance
	if err := r.db.GetContext(ctx, &inst, q, id); err != nil {
		return nil, err
	}
	return &inst, nil
}

func (r *repo) UpdateDueBack(ctx context.Context, id uuid.UUID, due time.Time) error {
	const q = `
UPDATE book_instances
SET due_back = $2
WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, id, due)
	if err != nil {
		return err
	}
	if aff, _ := res.RowsAffected(); aff == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *repo) SetOnLoan(ctx context.Context, id uuid.UUID, borrowerID int64, due time.Time) error {
	const q = `
UPDATE book_instances
SET status = $2,
    borrower_id = $3,
    due_back = $4
WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, id, model.StatusOnLoan, borrowerID, due)
	if err != nil {
		return err
	}
	if aff, _ := res.RowsAffected(); aff == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ListOnLoan returns on-loan copies ordered by due date, earliest
// first. A nil borrowerID means every borrower (the librarian view).
func (r *repo) ListOnLoan(ctx context.Context, borrowerID *int64, limit, offset uint64) ([]LoanRow, error) {
	q := psql.
		Select("bi.id", "bi.book_id", "b.title AS book_title", "bi.imprint",
			"bi.status", "bi.due_back", "bi.borrower_id").
		From("book_instances bi").
		Join("books b ON b.id = bi.book_id").
		Where(sq.Eq{"bi.status": model.StatusOnLoan}).
		OrderBy("bi.due_back ASC", "bi.id ASC").
		Limit(limit).
		Offset(offset)
	if borrowerID != nil {
		q = q.Where(sq.Eq{"bi.borrower_id": *borrowerID})
	}
	sqlStr, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}
	var out []LoanRow
	if err := r.db.SelectContext(ctx, &out, sqlStr, args...); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *repo) CountOnLoan(ctx context.Context, borrowerID *int64) (int64, error) {
	q := psql.
		Select("COUNT(*)").
		From("book_instances").
		Where(sq.Eq{"status": model.StatusOnLoan})
	if borrowerID != nil {
		q = q.Where(sq.Eq{"borrower_id": *borrowerID})
	}
	sqlStr, args, err := q.ToSql()
	if err != nil {
		return 0, err
	}
	var n int64
	if err := r.db.GetContext(ctx, &n, sqlStr, args...); err != nil {
		return 0, err
	}
	return n, nil
}
