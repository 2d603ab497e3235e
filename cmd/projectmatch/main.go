package main

import (
	"context"
	"database/sql"
	"log"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/jask/projectmatch/internal/config"
	"github.com/jask/projectmatch/internal/database"
	"github.com/jask/projectmatch/internal/database/repository"
	"github.com/jask/projectmatch/internal/service"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	a := newApp()
	err := newRootCmd(a).ExecuteContext(ctx)
	a.close()
	stop()
	if err != nil {
		os.Exit(1)
	}
}

// app bundles what the subcommands need once config and db are ready.
type app struct {
	cfg    config.Config
	db     *sql.DB
	logger *log.Logger

	logs     *repository.LogEntryRepo
	projects *repository.ProjectRepo
	mappings *repository.MappingRepo
	runs     *repository.RunRepo
}

func newApp() *app {
	return &app{logger: log.New(os.Stderr, "projectmatch: ", log.LstdFlags)}
}

// close releases the database handle. Cobra skips post-run hooks when a
// command fails, so this runs after Execute returns.
func (a *app) close() {
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Printf("close database: %v", err)
		}
	}
}

func (a *app) ingester() *service.IngestService {
	return &service.IngestService{Log: a.logs, Projects: a.projects}
}

func (a *app) reconciler() *service.ReconcileService {
	return &service.ReconcileService{Log: a.logs, Projects: a.projects, Mappings: a.mappings, Runs: a.runs, Logger: a.logger}
}

type rootFlags struct {
	dbPath string
}

func newRootCmd(a *app) *cobra.Command {
	var flags rootFlags

	root := &cobra.Command{
		Use:           "projectmatch",
		Short:         "Fill in missing projects on a time log by matching comments to known projects",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if flags.dbPath != "" {
				cfg.Database.Path = flags.dbPath
			}
			a.cfg = cfg
			if cmd.Annotations["db"] == "none" {
				return nil
			}
			db, err := database.OpenAndMigrate(cfg.Database.Path)
			if err != nil {
				return err
			}
			a.db = db
			a.logs = repository.NewLogEntryRepo(db)
			a.projects = repository.NewProjectRepo(db)
			a.mappings = repository.NewMappingRepo(db)
			a.runs = repository.NewRunRepo(db)
			return nil
		},
	}
	root.PersistentFlags().StringVar(&flags.dbPath, "db", "", "sqlite database path (overrides database.path)")

	root.AddCommand(
		newImportProjectsCmd(a),
		newImportLogCmd(a),
		newExportCmd(a),
		newReconcileCmd(a),
		newReconcileCSVCmd(a),
		newMapCmd(a),
		newRunsCmd(a),
		newResetCmd(a),
		newSeedDemoCmd(a),
	)
	return root
}
