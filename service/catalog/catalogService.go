package catalogsvc

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"libcatalog/model"
	"libcatalog/repository/metadata"
	"libcatalog/util/paging"
)

// errors used by controllers

type ErrCode string

const (
	ErrNotFound ErrCode = "NOT_FOUND"
	ErrBadInput ErrCode = "BAD_INPUT"
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

type AuthorRepo interface {
	Create(ctx context.Context, a *model.Author) error
	List(ctx context.Context, limit, offset uint64) ([]model.Author, error)
	Count(ctx context.Context) (int64, error)
	Detail(ctx context.Context, id int64) (*model.Author, error)
}

type BookRepo interface {
	Create(ctx context.Context, b *model.Book) error
	List(ctx context.Context, limit, offset uint64) ([]model.Book, error)
	Count(ctx context.Context) (int64, error)
	Detail(ctx context.Context, id int64) (*model.Book, error)
	EnsureGenre(ctx context.Context, name string) (int64, error)
	EnsureLanguage(ctx context.Context, name string) (int64, error)
}

type InstanceRepo interface {
	Create(ctx context.Context, inst *model.BookInstance) error
}

type Lookup interface {
	LookupISBN(ctx context.Context, isbn string) (*metadata.BookInfo, error)
}

// CreateBook carries the fields of a book create request. Title and
// summary may be blank when an ISBN lookup source is configured.
type CreateBook struct {
	Title    string
	Summary  string
	ISBN     string
	AuthorID int64
	Language string
	Genres   []string
}

type AuthorPage struct {
	Authors []model.Author `json:"authors"`
	Meta    paging.Meta    `json:"meta"`
}

type BookPage struct {
	Books []model.Book `json:"books"`
	Meta  paging.Meta  `json:"meta"`
}

type Service interface {
	Authors(ctx context.Context, page int) (*AuthorPage, error)
	AuthorDetail(ctx context.Context, id int64) (*model.Author, error)
	CreateAuthor(ctx context.Context, a *model.Author) error

	Books(ctx context.Context, page int) (*BookPage, error)
	BookDetail(ctx context.Context, id int64) (*model.Book, error)
	CreateBook(ctx context.Context, in CreateBook) (*model.Book, error)

	CreateInstance(ctx context.Context, bookID int64, imprint string) (*model.BookInstance, error)
}

type service struct {
	ar     AuthorRepo
	br     BookRepo
	ir     InstanceRepo
	lookup Lookup
	log    *slog.Logger
}

func New(ar AuthorRepo, br BookRepo, ir InstanceRepo, lookup Lookup, log *slog.Logger) Service {
	return &service{ar: ar, br: br, ir: ir, lookup: lookup, log: log}
}

func (s *service) Authors(ctx context.Context, page int) (*AuthorPage, error) {
	total, err := s.ar.Count(ctx)
	if err != nil {
		return nil, err
	}
	limit, offset, meta := paging.Clamp(total, page)
	authors, err := s.ar.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	return &AuthorPage{Authors: authors, Meta: meta}, nil
}

func (s *service) AuthorDetail(ctx context.Context, id int64) (*model.Author, error) {
	a, err := s.ar.Detail(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrNotFound)
		}
		return nil, err
	}
	return a, nil
}

func (s *service) CreateAuthor(ctx context.Context, a *model.Author) error {
	if strings.TrimSpace(a.FirstName) == "" || strings.TrimSpace(a.LastName) == "" {
		return makeErr(ErrBadInput)
	}
	return s.ar.Create(ctx, a)
}

func (s *service) Books(ctx context.Context, page int) (*BookPage, error) {
	total, err := s.br.Count(ctx)
	if err != nil {
		return nil, err
	}
	limit, offset, meta := paging.Clamp(total, page)
	books, err := s.br.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	return &BookPage{Books: books, Meta: meta}, nil
}

func (s *service) BookDetail(ctx context.Context, id int64) (*model.Book, error) {
	b, err := s.br.Detail(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrNotFound)
		}
		return nil, err
	}
	return b, nil
}

func (s *service) CreateBook(ctx context.Context, in CreateBook) (*model.Book, error) {
	if in.ISBN == "" || in.AuthorID <= 0 || in.Language == "" {
		return nil, makeErr(ErrBadInput)
	}
	if _, err := s.ar.Detail(ctx, in.AuthorID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrNotFound)
		}
		return nil, err
	}

	// Best effort: prefill missing fields from the metadata source.
	if (in.Title == "" || in.Summary == "") && s.lookup != nil {
		if info, err := s.lookup.LookupISBN(ctx, in.ISBN); err == nil {
			if in.Title == "" {
				in.Title = info.Title
			}
			if in.Summary == "" {
				in.Summary = info.Summary
			}
		} else {
			s.log.Warn("isbn lookup failed", "isbn", in.ISBN, "err", err)
		}
	}
	if in.Title == "" {
		return nil, makeErr(ErrBadInput)
	}

	langID, err := s.br.EnsureLanguage(ctx, in.Language)
	if err != nil {
		return nil, err
	}
	genreIDs := make([]int64, 0, len(in.Genres))
	for _, g := range in.Genres {
		id, err := s.br.EnsureGenre(ctx, g)
		if err != nil {
			return nil, err
		}
		genreIDs = append(genreIDs, id)
	}

	b := &model.Book{
		Title:      in.Title,
		Summary:    in.Summary,
		ISBN:       in.ISBN,
		AuthorID:   in.AuthorID,
		LanguageID: langID,
		GenreIDs:   genreIDs,
	}
	if err := s.br.Create(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *service) CreateInstance(ctx context.Context, bookID int64, imprint string) (*model.BookInstance, error) {
	if strings.TrimSpace(imprint) == "" {
		return nil, makeErr(ErrBadInput)
	}
	if _, err := s.br.Detail(ctx, bookID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrNotFound)
		}
		return nil, err
	}
	inst := &model.BookInstance{
		ID:      uuid.New(),
		BookID:  bookID,
		Imprint: imprint,
		Status:  model.StatusAvailable,
	}
	if err := s.ir.Create(ctx, inst); err != nil {
		return nil, err
	}
	return inst, nil
}
