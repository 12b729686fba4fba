package config

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// PublicConfig is the subset of the configuration clients need to prefill
// forms. Nothing secret goes in here.
type PublicConfig struct {
	Database        string `json:"database"`
	LoanPeriodDays  int    `json:"loan_period_days"`
	WorkerProcesses int    `json:"worker_processes"`
}

type handler struct {
	config *Config
}

func (h *handler) retrieve(c echo.Context) error {
	database := "sqlite"
	if h.config.UsesPostgres() {
		database = "postgres"
	}

	return errors.WithStack(c.JSON(http.StatusOK, PublicConfig{
		Database:        database,
		LoanPeriodDays:  h.config.LoanPeriodDays,
		WorkerProcesses: h.config.WorkerProcesses,
	}))
}
