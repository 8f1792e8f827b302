package catalog

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/samber/lo"

	"libcatalog/model"
	catalogsvc "libcatalog/service/catalog"
	"libcatalog/util/paging"
)

type Controller struct {
	Svc catalogsvc.Service
	V   *validator.Validate
	Log *slog.Logger
}

type authorItem struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// GET /catalog/authors
func (h *Controller) Authors(c echo.Context) error {
	page, err := h.Svc.Authors(c.Request().Context(), paging.ParsePage(c.QueryParam("page")))
	if err != nil {
		h.Log.Error("author list", "err", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	items := lo.Map(page.Authors, func(a model.Author, _ int) authorItem {
		return authorItem{ID: a.ID, Name: a.FirstName + " " + a.LastName}
	})
	return c.JSON(http.StatusOK, echo.Map{"data": items, "meta": page.Meta})
}

// GET /catalog/authors/:id
func (h *Controller) AuthorDetail(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return echo.NewHTTPError(http.StatusNotFound, "not found")
	}
	a, err := h.Svc.AuthorDetail(c.Request().Context(), id)
	if err != nil {
		if catalogsvc.Code(err) == catalogsvc.ErrNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "not found")
		}
		h.Log.Error("author detail", "err", err, "id", id)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	return c.JSON(http.StatusOK, a)
}

// POST /catalog/authors  (librarian)
func (h *Controller) CreateAuthor(c echo.Context) error {
	var req CreateAuthorReq
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := h.V.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "validation error")
	}

	a := &model.Author{FirstName: req.FirstName, LastName: req.LastName}
	if d := parseDate(req.DateOfBirth); d != nil {
		a.DateOfBirth = d
	}
	if d := parseDate(req.DateOfDeath); d != nil {
		a.DateOfDeath = d
	}

	if err := h.Svc.CreateAuthor(c.Request().Context(), a); err != nil {
		if catalogsvc.Code(err) == catalogsvc.ErrBadInput {
			return echo.NewHTTPError(http.StatusBadRequest, "bad input")
		}
		h.Log.Error("author create", "err", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	return c.Redirect(http.StatusFound, fmt.Sprintf("/catalog/authors/%d", a.ID))
}

// GET /catalog/books
func (h *Controller) Books(c echo.Context) error {
	page, err := h.Svc.Books(c.Request().Context(), paging.ParsePage(c.QueryParam("page")))
	if err != nil {
		h.Log.Error("book list", "err", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	return c.JSON(http.StatusOK, echo.Map{"data": page.Books, "meta": page.Meta})
}

// GET /catalog/books/:id
func (h *Controller) BookDetail(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return echo.NewHTTPError(http.StatusNotFound, "not found")
	}
	b, err := h.Svc.BookDetail(c.Request().Context(), id)
	if err != nil {
		if catalogsvc.Code(err) == catalogsvc.ErrNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "not found")
		}
		h.Log.Error("book detail", "err", err, "id", id)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	return c.JSON(http.StatusOK, b)
}

// POST /catalog/books  (librarian)
func (h *Controller) CreateBook(c echo.Context) error {
	var req CreateBookReq
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := h.V.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "validation error")
	}

	b, err := h.Svc.CreateBook(c.Request().Context(), catalogsvc.CreateBook{
		Title:    req.Title,
		Summary:  req.Summary,
		ISBN:     req.ISBN,
		AuthorID: req.AuthorID,
		Language: req.Language,
		Genres:   req.Genres,
	})
	if err != nil {
		switch catalogsvc.Code(err) {
		case catalogsvc.ErrNotFound:
			return echo.NewHTTPError(http.StatusNotFound, "author not found")
		case catalogsvc.ErrBadInput:
			return echo.NewHTTPError(http.StatusBadRequest, "bad input")
		default:
			h.Log.Error("book create", "err", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
		}
	}
	return c.JSON(http.StatusCreated, b)
}

// POST /catalog/books/:id/instances  (librarian)
func (h *Controller) CreateInstance(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return echo.NewHTTPError(http.StatusNotFound, "not found")
	}
	var req CreateInstanceReq
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := h.V.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "validation error")
	}

	inst, err := h.Svc.CreateInstance(c.Request().Context(), id, req.Imprint)
	if err != nil {
		switch catalogsvc.Code(err) {
		case catalogsvc.ErrNotFound:
			return echo.NewHTTPError(http.StatusNotFound, "book not found")
		case catalogsvc.ErrBadInput:
			return echo.NewHTTPError(http.StatusBadRequest, "bad input")
		default:
			h.Log.Error("instance create", "err", err, "book_id", id)
			return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
		}
	}
	return c.JSON(http.StatusCreated, inst)
}

func parseDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil
	}
	return &t
}
