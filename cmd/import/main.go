package main

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/shishobooks/circulation/pkg/config"
	"github.com/shishobooks/circulation/pkg/database"
	"github.com/shishobooks/circulation/pkg/importer"
	"github.com/shishobooks/circulation/pkg/migrations"
	"github.com/urfave/cli/v2"
)

type logReporter struct {
	log logger.Logger
}

func (r logReporter) Info(msg string, data logger.Data) {
	r.log.Info(msg, data)
}

func (r logReporter) Warn(msg string, data logger.Data) {
	r.log.Warn(msg, data)
}

func main() {
	log := logger.New()

	app := &cli.App{
		Name:      "import",
		Usage:     "import books from a JSON file",
		ArgsUsage: "<file>",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "migrate",
				Usage: "run pending migrations before importing",
				Value: true,
			},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return cli.ShowAppHelp(c)
			}

			cfg, err := config.New()
			if err != nil {
				return err
			}

			db, err := database.New(cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			if c.Bool("migrate") {
				if _, err := migrations.BringUpToDate(c.Context, db); err != nil {
					return err
				}
			}

			f, err := os.Open(c.Args().First())
			if err != nil {
				return errors.WithStack(err)
			}
			defer f.Close()

			result, err := importer.NewService(db).ImportFile(c.Context, f, logReporter{log})
			if err != nil {
				return err
			}

			fmt.Printf("Imported %d books, %d failed\n", result.Imported, result.Failed)
			for _, failure := range result.Failures {
				fmt.Printf("  #%d %s: %v\n", failure.Index, failure.Title, failure.Problems)
			}
			return nil
		},
	}
	if err := app.Run(os.Args); err != nil {
		log.Err(err).Fatal("app run error")
	}
}
