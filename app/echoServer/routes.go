package echoServer

import (
	"github.com/labstack/echo/v4"

	authctrl "libcatalog/app/echoServer/controller/auth"
	catalogctrl "libcatalog/app/echoServer/controller/catalog"
	loanctrl "libcatalog/app/echoServer/controller/loan"
	"libcatalog/model"
)

type C struct {
	Auth    *authctrl.Controller
	Catalog *catalogctrl.Controller
	Loan    *loanctrl.Controller

	Perms     PermissionChecker
	JWTSecret string
}

func Register(e *echo.Echo, c C) {
	// Accounts (public)
	acc := e.Group("/accounts")
	acc.POST("/register", c.Auth.Register)
	acc.POST("/login", c.Auth.Login)
	acc.GET("/login/", c.Auth.LoginForm)

	// Catalog listings (public)
	pub := e.Group("/catalog")
	pub.GET("/authors", c.Catalog.Authors)
	pub.GET("/authors/:id", c.Catalog.AuthorDetail)
	pub.GET("/books", c.Catalog.Books)
	pub.GET("/books/:id", c.Catalog.BookDetail)

	// Member views
	member := e.Group("/catalog", LoginRequired(c.JWTSecret), ExtractUser())
	member.GET("/mybooks", c.Loan.MyBooks)

	// Librarian views
	staff := e.Group("/catalog",
		LoginRequired(c.JWTSecret),
		ExtractUser(),
		RequirePermission(c.Perms, model.PermMarkReturned),
	)
	staff.POST("/authors", c.Catalog.CreateAuthor)
	staff.POST("/books", c.Catalog.CreateBook)
	staff.POST("/books/:id/instances", c.Catalog.CreateInstance)
	staff.GET("/borrowed", c.Loan.AllBorrowed)
	staff.GET("/instances/:id/renew", c.Loan.RenewForm)
	staff.POST("/instances/:id/renew", c.Loan.Renew)
	staff.POST("/instances/:id/checkout", c.Loan.Checkout)
	staff.POST("/users/:id/permissions", c.Auth.Grant)
}
