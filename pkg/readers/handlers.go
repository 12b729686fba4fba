package readers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/shishobooks/circulation/pkg/errcodes"
	"github.com/shishobooks/circulation/pkg/models"
)

type handler struct {
	readerService *Service
}

func nilIfEmpty(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}

func (h *handler) create(c echo.Context) error {
	ctx := c.Request().Context()

	params := CreateReaderPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	reader := &models.Reader{
		FirstName:   params.FirstName,
		LastName:    params.LastName,
		PhoneNumber: nilIfEmpty(params.PhoneNumber),
	}
	if err := h.readerService.CreateReader(ctx, reader); err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusCreated, reader))
}

func (h *handler) retrieve(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Reader")
	}

	reader, err := h.readerService.RetrieveReader(ctx, RetrieveReaderOptions{
		ID: &id,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, reader))
}

func (h *handler) list(c echo.Context) error {
	ctx := c.Request().Context()

	params := ListReadersQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	readers, total, err := h.readerService.ListReadersWithTotal(ctx, ListReadersOptions{
		Limit:  &params.Limit,
		Offset: &params.Offset,
		Search: params.Search,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	response := map[string]any{
		"readers": readers,
		"total":   total,
	}

	return errors.WithStack(c.JSON(http.StatusOK, response))
}

func (h *handler) update(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Reader")
	}

	params := UpdateReaderPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	reader, err := h.readerService.RetrieveReader(ctx, RetrieveReaderOptions{
		ID: &id,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	opts := UpdateReaderOptions{}
	if params.FirstName != nil && *params.FirstName != reader.FirstName {
		reader.FirstName = *params.FirstName
		opts.Columns = append(opts.Columns, "first_name")
	}
	if params.LastName != nil && *params.LastName != reader.LastName {
		reader.LastName = *params.LastName
		opts.Columns = append(opts.Columns, "last_name")
	}
	if params.PhoneNumber != nil {
		reader.PhoneNumber = nilIfEmpty(params.PhoneNumber)
		opts.Columns = append(opts.Columns, "phone_number")
	}

	if err := h.readerService.UpdateReader(ctx, reader, opts); err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, reader))
}

func (h *handler) remove(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Reader")
	}

	if err := h.readerService.DeleteReader(ctx, id); err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.NoContent(http.StatusNoContent))
}
