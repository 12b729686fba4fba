package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/echo/v4/health"
	"github.com/robinjoseph08/golib/echo/v4/middleware/logger"
	"github.com/robinjoseph08/golib/echo/v4/middleware/recovery"
	"github.com/shishobooks/circulation/pkg/authors"
	"github.com/shishobooks/circulation/pkg/binder"
	"github.com/shishobooks/circulation/pkg/books"
	"github.com/shishobooks/circulation/pkg/config"
	"github.com/shishobooks/circulation/pkg/errcodes"
	"github.com/shishobooks/circulation/pkg/genres"
	"github.com/shishobooks/circulation/pkg/joblogs"
	"github.com/shishobooks/circulation/pkg/jobs"
	"github.com/shishobooks/circulation/pkg/loans"
	"github.com/shishobooks/circulation/pkg/readers"
	"github.com/shishobooks/circulation/pkg/reports"
	"github.com/uptrace/bun"
)

func New(cfg *config.Config, db *bun.DB) (*http.Server, error) {
	e := echo.New()

	b, err := binder.New()
	if err != nil {
		return nil, errors.WithStack(err)
	}
	e.Binder = b

	e.Use(logger.Middleware())
	e.Use(recovery.Middleware())
	e.Use(middleware.CORS())

	health.RegisterRoutes(e)
	config.RegisterRoutes(e, cfg)

	registerRoutes(e, db, cfg)

	echo.NotFoundHandler = notFoundHandler
	e.HTTPErrorHandler = errcodes.NewHandler().Handle

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.ServerHost, cfg.ServerPort),
		Handler:           e,
		ReadHeaderTimeout: 3 * time.Second,
	}

	return srv, nil
}

func registerRoutes(e *echo.Echo, db *bun.DB, cfg *config.Config) {
	books.RegisterRoutesWithGroup(e.Group("/books"), db)
	authors.RegisterRoutesWithGroup(e.Group("/authors"), db)
	genres.RegisterRoutesWithGroup(e.Group("/genres"), db)
	readers.RegisterRoutesWithGroup(e.Group("/readers"), db)
	loans.RegisterRoutesWithGroup(e.Group("/loans"), db, cfg)
	reports.RegisterRoutesWithGroup(e.Group("/reports"), db)

	jobsGroup := e.Group("/jobs")
	jobs.RegisterRoutesWithGroup(jobsGroup, db)
	joblogs.RegisterRoutes(jobsGroup, db)
}

func notFoundHandler(c echo.Context) error {
	c.SetPath("/:path")
	return errcodes.NotFound("Page")
}
