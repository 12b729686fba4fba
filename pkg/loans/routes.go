package loans

import (
	"github.com/labstack/echo/v4"
	"github.com/shishobooks/circulation/pkg/config"
	"github.com/uptrace/bun"
)

func RegisterRoutesWithGroup(g *echo.Group, db *bun.DB, cfg *config.Config) {
	h := &handler{
		loanService:    NewService(db),
		loanPeriodDays: cfg.LoanPeriodDays,
	}

	g.GET("", h.list)
	g.GET("/:id", h.retrieve)
	g.POST("", h.create)
	g.PATCH("/:id", h.update)
	g.DELETE("/:id", h.remove)
}
