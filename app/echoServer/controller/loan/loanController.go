package loan

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	loansvc "libcatalog/service/loan"
	"libcatalog/util/paging"
)

// AllBorrowedPath is where a successful renewal redirects.
const AllBorrowedPath = "/catalog/borrowed"

const dateLayout = "2006-01-02"

type Controller struct {
	Svc loansvc.Service
	V   *validator.Validate
	Log *slog.Logger
}

// GET /catalog/mybooks
func (h *Controller) MyBooks(c echo.Context) error {
	uid, _ := c.Get("user_id").(int64)
	page, err := h.Svc.MyBorrowed(c.Request().Context(), uid, paging.ParsePage(c.QueryParam("page")))
	if err != nil {
		h.Log.Error("my borrowed", "err", err, "user_id", uid)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	return c.JSON(http.StatusOK, echo.Map{"data": page.Items, "meta": page.Meta})
}

// GET /catalog/borrowed  (librarian)
func (h *Controller) AllBorrowed(c echo.Context) error {
	page, err := h.Svc.AllBorrowed(c.Request().Context(), paging.ParsePage(c.QueryParam("page")))
	if err != nil {
		h.Log.Error("all borrowed", "err", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	return c.JSON(http.StatusOK, echo.Map{"data": page.Items, "meta": page.Meta})
}

// GET /catalog/instances/:id/renew  (librarian)
func (h *Controller) RenewForm(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "not found")
	}
	form, err := h.Svc.RenewalForm(c.Request().Context(), id, time.Now())
	if err != nil {
		if loansvc.Code(err) == loansvc.ErrNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "not found")
		}
		h.Log.Error("renewal form", "err", err, "id", id)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	return c.JSON(http.StatusOK, echo.Map{
		"instance": form.Instance,
		"form": echo.Map{
			"renewal_date": form.InitialDate.Format(dateLayout),
		},
	})
}

// POST /catalog/instances/:id/renew  (librarian)
func (h *Controller) Renew(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "not found")
	}
	var req RenewReq
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := h.V.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "validation error")
	}
	candidate, err := time.Parse(dateLayout, req.RenewalDate)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid date format, want YYYY-MM-DD")
	}

	if err := h.Svc.Renew(c.Request().Context(), id, candidate, time.Now()); err != nil {
		switch loansvc.Code(err) {
		case loansvc.ErrNotFound:
			return echo.NewHTTPError(http.StatusNotFound, "not found")
		case loansvc.ErrRenewalInPast:
			return h.rerenderForm(c, req, loansvc.MsgRenewalInPast)
		case loansvc.ErrRenewalTooFarAhead:
			return h.rerenderForm(c, req, loansvc.MsgRenewalTooFar)
		default:
			h.Log.Error("renew", "err", err, "id", id)
			return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
		}
	}
	return c.Redirect(http.StatusFound, AllBorrowedPath)
}

// rerenderForm answers a rejected submission the way the form view
// does: 200 with the submitted value and the field-level message.
func (h *Controller) rerenderForm(c echo.Context, req RenewReq, msg string) error {
	return c.JSON(http.StatusOK, echo.Map{
		"form":   echo.Map{"renewal_date": req.RenewalDate},
		"errors": echo.Map{"renewal_date": msg},
	})
}

// POST /catalog/instances/:id/checkout  (librarian)
func (h *Controller) Checkout(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "not found")
	}
	var req CheckoutReq
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := h.V.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "validation error")
	}
	due, err := time.Parse(dateLayout, req.DueBack)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid date format, want YYYY-MM-DD")
	}

	if err := h.Svc.Checkout(c.Request().Context(), id, req.BorrowerID, due); err != nil {
		switch loansvc.Code(err) {
		case loansvc.ErrNotFound:
			return echo.NewHTTPError(http.StatusNotFound, "not found")
		case loansvc.ErrNotAvailable:
			return echo.NewHTTPError(http.StatusConflict, "copy not available")
		default:
			h.Log.Error("checkout", "err", err, "id", id)
			return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "checked out"})
}
