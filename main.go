// Package main library catalog API.
//
// @title           Library Catalog API
// @version         1.0
// @description     library catalog service (authors, books, copies, loans).
// @BasePath        /
// @schemes         http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description  Use:  Bearer <JWT>
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"

	"libcatalog/app/echoServer"
	authctrl "libcatalog/app/echoServer/controller/auth"
	catalogctrl "libcatalog/app/echoServer/controller/catalog"
	loanctrl "libcatalog/app/echoServer/controller/loan"
	"libcatalog/app/echoServer/validation"
	"libcatalog/config"
	authorrepo "libcatalog/repository/author"
	bookrepo "libcatalog/repository/book"
	instancerepo "libcatalog/repository/instance"
	"libcatalog/repository/metadata"
	userrepo "libcatalog/repository/user"
	authsvc "libcatalog/service/auth"
	catalogsvc "libcatalog/service/catalog"
	loansvc "libcatalog/service/loan"
	"libcatalog/util/database"
)

func main() {

	cfg := config.Load()
	ctx := context.Background()

	// logger
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	// DB: pgx-backed sqlx
	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("db connect failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	// repos
	ar := authorrepo.New(db)
	br := bookrepo.New(db)
	ir := instancerepo.New(db)
	ur := userrepo.New(db)
	mr := metadata.NewHTTP(cfg.BookLookupURL)

	// services
	as := authsvc.New(ur, cfg.JWTSecret)
	cs := catalogsvc.New(ar, br, ir, mr, log)
	ls := loansvc.New(ir)

	// controllers
	v := validator.New()
	authC := &authctrl.Controller{Svc: as, V: v, Log: log}
	catalogC := &catalogctrl.Controller{Svc: cs, V: v, Log: log}
	loanC := &loanctrl.Controller{Svc: ls, V: v, Log: log}

	// echo
	e := echo.New()
	e.JSONSerializer = echoServer.JSONSerializer{}
	e.Validator = validation.New()
	echoServer.RegisterMiddlewares(e)

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]any{
			"status":  "ok",
			"message": "Service is healthy and connected",
		})
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	echoServer.Register(e, echoServer.C{
		Auth:    authC,
		Catalog: catalogC,
		Loan:    loanC,

		Perms:     as,
		JWTSecret: cfg.JWTSecret,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.Port
	}

	slog.Info("starting server", "port", port, "env", cfg.Env)

	e.Logger.Fatal(e.Start(":" + port))
}
