package reports

import (
	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"
)

func RegisterRoutesWithGroup(g *echo.Group, db *bun.DB) {
	h := &handler{
		reportService: NewService(db),
	}

	g.GET("/active-loans", h.activeLoans)
	g.GET("/statistics", h.statistics)
}
