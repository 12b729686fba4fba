package loans

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/shishobooks/circulation/pkg/errcodes"
	"github.com/shishobooks/circulation/pkg/models"
)

type handler struct {
	loanService    *Service
	loanPeriodDays int
}

func (h *handler) create(c echo.Context) error {
	ctx := c.Request().Context()

	params := CreateLoanPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	loanDate := models.Today()
	if params.LoanDate != "" {
		d, err := models.ParseDate(params.LoanDate)
		if err != nil {
			return errcodes.ValidationError(`"loan_date" should be in the format of YYYY-MM-DD`)
		}
		loanDate = d
	}
	returnDate := loanDate.AddDays(h.loanPeriodDays)
	if params.ReturnDate != "" {
		d, err := models.ParseDate(params.ReturnDate)
		if err != nil {
			return errcodes.ValidationError(`"return_date" should be in the format of YYYY-MM-DD`)
		}
		returnDate = d
	}
	if err := ValidateLoanDates(loanDate, returnDate); err != nil {
		return err
	}

	loan := &models.Loan{
		BookID:     params.BookID,
		ReaderID:   params.ReaderID,
		LoanDate:   loanDate,
		ReturnDate: returnDate,
	}
	if err := h.loanService.CreateLoan(ctx, loan); err != nil {
		return errors.WithStack(err)
	}

	loan, err := h.loanService.RetrieveLoan(ctx, RetrieveLoanOptions{ID: &loan.ID})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusCreated, loan))
}

func (h *handler) retrieve(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Loan")
	}

	loan, err := h.loanService.RetrieveLoan(ctx, RetrieveLoanOptions{ID: &id})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, loan))
}

func (h *handler) list(c echo.Context) error {
	ctx := c.Request().Context()

	params := ListLoansQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	opts := ListLoansOptions{
		Limit:    &params.Limit,
		Offset:   &params.Offset,
		BookID:   params.BookID,
		ReaderID: params.ReaderID,
	}
	if params.Overdue {
		today := models.Today()
		opts.OverdueAsOf = &today
	}

	loans, total, err := h.loanService.ListLoansWithTotal(ctx, opts)
	if err != nil {
		return errors.WithStack(err)
	}

	resp := struct {
		Loans []*models.Loan `json:"loans"`
		Total int            `json:"total"`
	}{loans, total}

	return errors.WithStack(c.JSON(http.StatusOK, resp))
}

func (h *handler) update(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Loan")
	}

	params := UpdateLoanPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	loan, err := h.loanService.RetrieveLoan(ctx, RetrieveLoanOptions{ID: &id})
	if err != nil {
		return errors.WithStack(err)
	}

	if params.LoanDate != nil {
		loan.LoanDate, err = models.ParseDate(*params.LoanDate)
		if err != nil {
			return errcodes.ValidationError(`"loan_date" should be in the format of YYYY-MM-DD`)
		}
	}
	if params.ReturnDate != nil {
		loan.ReturnDate, err = models.ParseDate(*params.ReturnDate)
		if err != nil {
			return errcodes.ValidationError(`"return_date" should be in the format of YYYY-MM-DD`)
		}
	}
	if err := ValidateLoanDates(loan.LoanDate, loan.ReturnDate); err != nil {
		return err
	}

	if err := h.loanService.UpdateLoan(ctx, loan); err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, loan))
}

// remove returns the book: the loan is deleted and the book is available
// again.
func (h *handler) remove(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Loan")
	}

	if err := h.loanService.DeleteLoan(ctx, id); err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.NoContent(http.StatusNoContent))
}
