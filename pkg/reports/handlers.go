package reports

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/shishobooks/circulation/pkg/errcodes"
	"github.com/shishobooks/circulation/pkg/models"
)

type handler struct {
	reportService *Service
}

func (h *handler) activeLoans(c echo.Context) error {
	ctx := c.Request().Context()

	params := ListActiveLoansQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	opts := ListActiveLoansOptions{
		Limit:       &params.Limit,
		Offset:      &params.Offset,
		OverdueOnly: params.Overdue,
	}
	if params.AsOf != "" {
		asOf, err := models.ParseDate(params.AsOf)
		if err != nil {
			return errcodes.ValidationError(`"as_of" should be in the format of YYYY-MM-DD`)
		}
		opts.AsOf = &asOf
	}

	loans, total, err := h.reportService.ListActiveLoansWithTotal(ctx, opts)
	if err != nil {
		return errors.WithStack(err)
	}

	resp := struct {
		Loans []*models.ActiveLoan `json:"loans"`
		Total int                  `json:"total"`
	}{loans, total}

	return errors.WithStack(c.JSON(http.StatusOK, resp))
}

func (h *handler) statistics(c echo.Context) error {
	ctx := c.Request().Context()

	stats, err := h.reportService.RetrieveStatistics(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, stats))
}
