package echoServer_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"libcatalog/app/echoServer"
	authctrl "libcatalog/app/echoServer/controller/auth"
	catalogctrl "libcatalog/app/echoServer/controller/catalog"
	loanctrl "libcatalog/app/echoServer/controller/loan"
	"libcatalog/app/echoServer/validation"
	"libcatalog/model"
	authsvc "libcatalog/service/auth"
	catalogsvc "libcatalog/service/catalog"
	loansvc "libcatalog/service/loan"
)

const testSecret = "test-secret"

// --- in-memory stores ---

type memUserRepo struct {
	users map[string]*model.User
	perms map[int64]map[string]bool
	next  int64
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{
		users: map[string]*model.User{},
		perms: map[int64]map[string]bool{},
	}
}

func (m *memUserRepo) Create(_ context.Context, u *model.User) error {
	m.next++
	u.ID = m.next
	u.CreatedAt = time.Now()
	m.users[u.Username] = u
	return nil
}

func (m *memUserRepo) ByUsername(_ context.Context, username string) (*model.User, error) {
	u, ok := m.users[strings.ToLower(username)]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return u, nil
}

func (m *memUserRepo) HasPermission(_ context.Context, userID int64, perm string) (bool, error) {
	return m.perms[userID][perm], nil
}

func (m *memUserRepo) Grant(_ context.Context, userID int64, perm string) error {
	if m.perms[userID] == nil {
		m.perms[userID] = map[string]bool{}
	}
	m.perms[userID][perm] = true
	return nil
}

type memInstanceRepo struct {
	instances map[uuid.UUID]*model.BookInstance
}

func (m *memInstanceRepo) Create(_ context.Context, inst *model.BookInstance) error {
	m.instances[inst.ID] = inst
	return nil
}

func (m *memInstanceRepo) Get(_ context.Context, id uuid.UUID) (*model.BookInstance, error) {
	inst, ok := m.instances[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *inst
	return &cp, nil
}

func (m *memInstanceRepo) UpdateDueBack(_ context.Context, id uuid.UUID, due time.Time) error {
	inst, ok := m.instances[id]
	if !ok {
		return sql.ErrNoRows
	}
	inst.DueBack = &due
	return nil
}

func (m *memInstanceRepo) SetOnLoan(_ context.Context, id uuid.UUID, borrowerID int64, due time.Time) error {
	inst, ok := m.instances[id]
	if !ok {
		return sql.ErrNoRows
	}
	inst.Status = model.StatusOnLoan
	inst.BorrowerID = &borrowerID
	inst.DueBack = &due
	return nil
}

func (m *memInstanceRepo) ListOnLoan(_ context.Context, borrowerID *int64, limit, offset uint64) ([]loansvc.LoanRow, error) {
	var rows []loansvc.LoanRow
	for _, inst := range m.instances {
		if inst.Status != model.StatusOnLoan {
			continue
		}
		if borrowerID != nil && (inst.BorrowerID == nil || *inst.BorrowerID != *borrowerID) {
			continue
		}
		rows = append(rows, loansvc.LoanRow{
			ID: inst.ID, BookID: inst.BookID, BookTitle: "Book Title",
			Imprint: inst.Imprint, Status: inst.Status,
			DueBack: *inst.DueBack, BorrowerID: *inst.BorrowerID,
		})
	}
	if offset >= uint64(len(rows)) {
		return nil, nil
	}
	rows = rows[offset:]
	if uint64(len(rows)) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}

func (m *memInstanceRepo) CountOnLoan(_ context.Context, borrowerID *int64) (int64, error) {
	rows, _ := m.ListOnLoan(nil, borrowerID, 1<<31, 0)
	return int64(len(rows)), nil
}

type memAuthorRepo struct {
	authors []model.Author
}

func (m *memAuthorRepo) Create(_ context.Context, a *model.Author) error {
	a.ID = int64(len(m.authors) + 1)
	m.authors = append(m.authors, *a)
	return nil
}

func (m *memAuthorRepo) List(_ context.Context, limit, offset uint64) ([]model.Author, error) {
	if offset >= uint64(len(m.authors)) {
		return nil, nil
	}
	out := m.authors[offset:]
	if uint64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memAuthorRepo) Count(_ context.Context) (int64, error) { return int64(len(m.authors)), nil }

func (m *memAuthorRepo) Detail(_ context.Context, id int64) (*model.Author, error) {
	for _, a := range m.authors {
		if a.ID == id {
			cp := a
			return &cp, nil
		}
	}
	return nil, sql.ErrNoRows
}

type memBookRepo struct {
	books []model.Book
}

func (m *memBookRepo) Create(_ context.Context, b *model.Book) error {
	b.ID = int64(len(m.books) + 1)
	m.books = append(m.books, *b)
	return nil
}

func (m *memBookRepo) List(_ context.Context, limit, offset uint64) ([]model.Book, error) {
	if offset >= uint64(len(m.books)) {
		return nil, nil
	}
	out := m.books[offset:]
	if uint64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memBookRepo) Count(_ context.Context) (int64, error) { return int64(len(m.books)), nil }

func (m *memBookRepo) Detail(_ context.Context, id int64) (*model.Book, error) {
	for _, b := range m.books {
		if b.ID == id {
			cp := b
			return &cp, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *memBookRepo) EnsureGenre(_ context.Context, _ string) (int64, error)    { return 1, nil }
func (m *memBookRepo) EnsureLanguage(_ context.Context, _ string) (int64, error) { return 1, nil }

// --- fixture ---

type testApp struct {
	e         *echo.Echo
	instances *memInstanceRepo

	memberToken    string
	librarianToken string
	instanceID     uuid.UUID
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	ctx := context.Background()
	log := slog.New(slog.DiscardHandler)

	ur := newMemUserRepo()
	ir := &memInstanceRepo{instances: map[uuid.UUID]*model.BookInstance{}}
	ar := &memAuthorRepo{}
	br := &memBookRepo{}

	as := authsvc.New(ur, testSecret)
	cs := catalogsvc.New(ar, br, ir, nil, log)
	ls := loansvc.New(ir)

	// Two users: a plain member and a librarian with the returner grant.
	member, memberTok, err := as.Register(ctx, model.RegisterReq{Username: "testuser1", Password: "1X<ISRUkw+tuK"})
	require.NoError(t, err)
	librarian, librarianTok, err := as.Register(ctx, model.RegisterReq{Username: "testuser2", Password: "2HJ1vRV0Z&3iD"})
	require.NoError(t, err)
	require.NoError(t, as.Grant(ctx, librarian.ID, model.PermMarkReturned))

	// One copy out on loan to the member.
	due := time.Now().AddDate(0, 0, 5)
	id := uuid.New()
	ir.instances[id] = &model.BookInstance{
		ID:         id,
		BookID:     1,
		Imprint:    "Unlikely Imprint, 2016",
		Status:     model.StatusOnLoan,
		DueBack:    &due,
		BorrowerID: &member.ID,
	}

	v := validator.New()
	e := echo.New()
	e.JSONSerializer = echoServer.JSONSerializer{}
	e.Validator = validation.New()
	echoServer.Register(e, echoServer.C{
		Auth:      &authctrl.Controller{Svc: as, V: v, Log: log},
		Catalog:   &catalogctrl.Controller{Svc: cs, V: v, Log: log},
		Loan:      &loanctrl.Controller{Svc: ls, V: v, Log: log},
		Perms:     as,
		JWTSecret: testSecret,
	})

	return &testApp{
		e:              e,
		instances:      ir,
		memberToken:    memberTok,
		librarianToken: librarianTok,
		instanceID:     id,
	}
}

func (a *testApp) do(method, path, token, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

// --- tests ---

func TestRenew_RedirectsAnonymousToLogin(t *testing.T) {
	app := newTestApp(t)
	path := fmt.Sprintf("/catalog/instances/%s/renew", app.instanceID)

	rec := app.do(http.MethodGet, path, "", "")
	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "/accounts/login/?next="+path, rec.Header().Get(echo.HeaderLocation))
}

func TestRenew_ForbiddenWithoutReturnerPermission(t *testing.T) {
	app := newTestApp(t)
	path := fmt.Sprintf("/catalog/instances/%s/renew", app.instanceID)

	rec := app.do(http.MethodGet, path, app.memberToken, "")
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRenew_UnknownInstanceIs404(t *testing.T) {
	app := newTestApp(t)
	path := fmt.Sprintf("/catalog/instances/%s/renew", uuid.New())

	rec := app.do(http.MethodGet, path, app.librarianToken, "")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRenew_FormInitialDateThreeWeeksOut(t *testing.T) {
	app := newTestApp(t)
	path := fmt.Sprintf("/catalog/instances/%s/renew", app.instanceID)

	rec := app.do(http.MethodGet, path, app.librarianToken, "")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode(t, rec)
	form := body["form"].(map[string]any)
	want := time.Now().AddDate(0, 0, 21).Format("2006-01-02")
	require.Equal(t, want, form["renewal_date"])
}

func TestRenew_ValidDateRedirectsToAllBorrowed(t *testing.T) {
	app := newTestApp(t)
	path := fmt.Sprintf("/catalog/instances/%s/renew", app.instanceID)
	candidate := time.Now().AddDate(0, 0, 14).Format("2006-01-02")

	rec := app.do(http.MethodPost, path, app.librarianToken,
		fmt.Sprintf(`{"renewal_date":%q}`, candidate))
	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, loanctrl.AllBorrowedPath, rec.Header().Get(echo.HeaderLocation))

	got := app.instances.instances[app.instanceID].DueBack
	require.Equal(t, candidate, got.Format("2006-01-02"))
}

func TestRenew_PastDateRerendersWithMessage(t *testing.T) {
	app := newTestApp(t)
	path := fmt.Sprintf("/catalog/instances/%s/renew", app.instanceID)
	candidate := time.Now().AddDate(0, 0, -7).Format("2006-01-02")

	rec := app.do(http.MethodPost, path, app.librarianToken,
		fmt.Sprintf(`{"renewal_date":%q}`, candidate))
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode(t, rec)
	errs := body["errors"].(map[string]any)
	require.Equal(t, "Invalid date - renewal in past", errs["renewal_date"])
}

func TestRenew_TooFarAheadRerendersWithMessage(t *testing.T) {
	app := newTestApp(t)
	path := fmt.Sprintf("/catalog/instances/%s/renew", app.instanceID)
	candidate := time.Now().AddDate(0, 0, 35).Format("2006-01-02")

	rec := app.do(http.MethodPost, path, app.librarianToken,
		fmt.Sprintf(`{"renewal_date":%q}`, candidate))
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode(t, rec)
	errs := body["errors"].(map[string]any)
	require.Equal(t, "Invalid date - renewal more than 4 weeks ahead", errs["renewal_date"])
}

func TestMyBooks_RedirectsAnonymousToLogin(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(http.MethodGet, "/catalog/mybooks", "", "")
	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "/accounts/login/?next=/catalog/mybooks", rec.Header().Get(echo.HeaderLocation))
}

func TestMyBooks_AcceptsSessionCookie(t *testing.T) {
	app := newTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/catalog/mybooks", nil)
	req.AddCookie(&http.Cookie{Name: "session", Value: app.memberToken})
	rec := httptest.NewRecorder()
	app.e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	require.Len(t, body["data"].([]any), 1)
}

func TestAllBorrowed_RequiresReturnerPermission(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(http.MethodGet, "/catalog/borrowed", app.memberToken, "")
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = app.do(http.MethodGet, "/catalog/borrowed", app.librarianToken, "")
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthorCreate_GatingAndRedirect(t *testing.T) {
	app := newTestApp(t)
	body := `{"first_name":"Chit Ko","last_name":"Ko Oo"}`

	rec := app.do(http.MethodPost, "/catalog/authors", "", body)
	require.Equal(t, http.StatusFound, rec.Code)
	require.True(t, strings.HasPrefix(rec.Header().Get(echo.HeaderLocation), "/accounts/login/"))

	rec = app.do(http.MethodPost, "/catalog/authors", app.memberToken, body)
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = app.do(http.MethodPost, "/catalog/authors", app.librarianToken, body)
	require.Equal(t, http.StatusFound, rec.Code)
	require.True(t, strings.HasPrefix(rec.Header().Get(echo.HeaderLocation), "/catalog/authors/"))
}

func TestAuthorsList_Public(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(http.MethodGet, "/catalog/authors", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestLogin_SetsSessionCookie(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(http.MethodPost, "/accounts/login?next=/catalog/mybooks", "",
		`{"username":"testuser1","password":"1X<ISRUkw+tuK"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)
	require.Equal(t, "session", cookies[0].Name)

	body := decode(t, rec)
	require.Equal(t, "/catalog/mybooks", body["next"])
	require.NotEmpty(t, body["token"])
}

func TestLogin_WrongPassword(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(http.MethodPost, "/accounts/login", "",
		`{"username":"testuser1","password":"wrong"}`)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}
