package loansvc

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"libcatalog/model"
	instancerepo "libcatalog/repository/instance"
	"libcatalog/util/paging"
)

// errors used by controllers

type ErrCode string

const (
	ErrNotFound           ErrCode = "NOT_FOUND"
	ErrRenewalInPast      ErrCode = "RENEWAL_IN_PAST"
	ErrRenewalTooFarAhead ErrCode = "RENEWAL_TOO_FAR_AHEAD"
	ErrNotAvailable       ErrCode = "NOT_AVAILABLE"
)

type codedError struct{ code ErrCode }

func (e codedError) Error() string { return string(e.code) }
func (e codedError) Code() ErrCode { return e.code }
func makeErr(c ErrCode) error      { return codedError{code: c} }

// Code extracts error code
func Code(err error) ErrCode {
	var ce interface{ Code() ErrCode }
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return ""
}

// LoanRow = repository shape
type LoanRow = instancerepo.LoanRow

// The renewal form pre-fills three weeks out; ValidateRenewalDate
// never consults this default.
const initialRenewalDays = 21

type BorrowedPage struct {
	Items []LoanRow   `json:"items"`
	Meta  paging.Meta `json:"meta"`
}

// RenewalForm is the GET state of the renewal form.
type RenewalForm struct {
	Instance    model.BookInstance `json:"instance"`
	InitialDate time.Time          `json:"initial_date"`
}

type Repo interface {
	Get(ctx context.Context, id uuid.UUID) (*model.BookInstance, error)
	UpdateDueBack(ctx context.Context, id uuid.UUID, due time.Time) error
	SetOnLoan(ctx context.Context, id uuid.UUID, borrowerID int64, due time.Time) error
	ListOnLoan(ctx context.Context, borrowerID *int64, limit, offset uint64) ([]LoanRow, error)
	CountOnLoan(ctx context.Context, borrowerID *int64) (int64, error)
}

type Service interface {
	// MyBorrowed: the requesting member's on-loan copies, earliest due first.
	MyBorrowed(ctx context.Context, userID int64, page int) (*BorrowedPage, error)

	// AllBorrowed: every on-loan copy, same shape. The route guard owns
	// the permission check.
	AllBorrowed(ctx context.Context, page int) (*BorrowedPage, error)

	// RenewalForm: load the copy and the pre-filled candidate date.
	RenewalForm(ctx context.Context, id uuid.UUID, today time.Time) (*RenewalForm, error)

	// Renew: validate the candidate date and persist it as the new due date.
	Renew(ctx context.Context, id uuid.UUID, candidate, today time.Time) error

	// Checkout: hand an available copy to a borrower.
	Checkout(ctx context.Context, id uuid.UUID, borrowerID int64, due time.Time) error
}

type service struct{ r Repo }

func New(r Repo) Service { return &service{r: r} }

func (s *service) MyBorrowed(ctx context.Context, userID int64, page int) (*BorrowedPage, error) {
	return s.borrowed(ctx, &userID, page)
}

func (s *service) AllBorrowed(ctx context.Context, page int) (*BorrowedPage, error) {
	return s.borrowed(ctx, nil, page)
}

func (s *service) borrowed(ctx context.Context, borrowerID *int64, page int) (*BorrowedPage, error) {
	total, err := s.r.CountOnLoan(ctx, borrowerID)
	if err != nil {
		return nil, err
	}
	limit, offset, meta := paging.Clamp(total, page)
	items, err := s.r.ListOnLoan(ctx, borrowerID, limit, offset)
	if err != nil {
		return nil, err
	}
	return &BorrowedPage{Items: items, Meta: meta}, nil
}

func (s *service) RenewalForm(ctx context.Context, id uuid.UUID, today time.Time) (*RenewalForm, error) {
	inst, err := s.r.Get(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrNotFound)
		}
		return nil, err
	}
	return &RenewalForm{
		Instance:    *inst,
		InitialDate: dateOnly(today).AddDate(0, 0, initialRenewalDays),
	}, nil
}

func (s *service) Renew(ctx context.Context, id uuid.UUID, candidate, today time.Time) error {
	if _, err := s.r.Get(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return makeErr(ErrNotFound)
		}
		return err
	}
	if err := ValidateRenewalDate(candidate, today); err != nil {
		return err
	}
	if err := s.r.UpdateDueBack(ctx, id, dateOnly(candidate)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return makeErr(ErrNotFound)
		}
		return err
	}
	return nil
}

func (s *service) Checkout(ctx context.Context, id uuid.UUID, borrowerID int64, due time.Time) error {
	inst, err := s.r.Get(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return makeErr(ErrNotFound)
		}
		return err
	}
	if inst.Status != model.StatusAvailable {
		return makeErr(ErrNotAvailable)
	}
	return s.r.SetOnLoan(ctx, id, borrowerID, dateOnly(due))
}
