package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/jask/projectmatch/internal/config"
	"github.com/jask/projectmatch/internal/database/repository"
	"github.com/jask/projectmatch/internal/prefs"
	"github.com/jask/projectmatch/internal/sampledata"
	"github.com/jask/projectmatch/internal/service"
)

func newImportProjectsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import-projects FILE",
		Short: "Add project names from a CSV export to the catalog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			res, err := a.ingester().ImportProjects(cmd.Context(), f)
			if err != nil {
				return fmt.Errorf("import projects: %w", err)
			}
			for _, e := range res.Errors {
				a.logger.Printf("warn: %v", e)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Loaded %d projects (%d skipped)\n", res.Imported, res.Skipped)
			return nil
		},
	}
}

func newImportLogCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import-log FILE",
		Short: "Replace the stored time log with a CSV export",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			res, err := a.ingester().ImportLog(cmd.Context(), f)
			if err != nil {
				return fmt.Errorf("import log: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Loaded %d log entries\n", res.Imported)
			return nil
		},
	}
}

func newExportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "export [FILE]",
		Short: "Write the stored time log as CSV (stdout when FILE is omitted)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var w io.Writer = cmd.OutOrStdout()
			if len(args) == 1 {
				f, err := os.Create(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}
			return a.ingester().ExportLog(cmd.Context(), w)
		},
	}
}

type reconcileFlags struct {
	apply     bool
	dryRun    bool
	threshold float64
	batchSize int
	delay     time.Duration
	samples   int
}

func (f *reconcileFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.BoolVar(&f.apply, "apply", false, "write proposed projects (overrides reconcile.dry_run)")
	fs.BoolVar(&f.dryRun, "dry-run", false, "only report proposed projects")
	fs.Float64Var(&f.threshold, "threshold", 0, "fuzzy match threshold in [0,1] (default from config)")
	fs.IntVar(&f.batchSize, "batch-size", 0, "writes per batch (default from config)")
	fs.DurationVar(&f.delay, "delay", 0, "pause between batches (default from config)")
	fs.IntVar(&f.samples, "samples", -1, "sample updates to print (default from config)")
	cmd.MarkFlagsMutuallyExclusive("apply", "dry-run")
}

func (f *reconcileFlags) options(cmd *cobra.Command, cfg config.Config) (service.RunOptions, error) {
	opts := service.RunOptions{
		Threshold:  cfg.Matching.Threshold,
		DryRun:     cfg.Reconcile.DryRun,
		BatchSize:  cfg.Reconcile.BatchSize,
		BatchDelay: cfg.Reconcile.BatchDelay,
		SampleSize: cfg.Reconcile.SampleSize,
		Report:     cmd.OutOrStdout(),
		OnProgress: func(p service.Progress) {
			fmt.Fprintf(cmd.OutOrStdout(), "  Progress: %d/%d entries updated\n", p.Applied, p.Total)
		},
	}
	fs := cmd.Flags()
	if fs.Changed("threshold") {
		opts.Threshold = f.threshold
	}
	if f.apply {
		opts.DryRun = false
	}
	if f.dryRun {
		opts.DryRun = true
	}
	if fs.Changed("batch-size") {
		if f.batchSize < 1 {
			return opts, fmt.Errorf("--batch-size must be at least 1, got %d", f.batchSize)
		}
		opts.BatchSize = f.batchSize
	}
	if fs.Changed("delay") {
		if f.delay < 0 {
			return opts, fmt.Errorf("--delay must not be negative, got %s", f.delay)
		}
		opts.BatchDelay = f.delay
	}
	if fs.Changed("samples") {
		opts.SampleSize = f.samples
	}
	return opts, nil
}

func newReconcileCmd(a *app) *cobra.Command {
	var flags reconcileFlags
	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Propose (and with --apply, write) projects for unattributed log entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts, err := flags.options(cmd, a.cfg)
			if err != nil {
				return err
			}
			res, err := a.reconciler().Run(cmd.Context(), opts)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "\nRun %s: scanned %d, proposed %d\n", res.RunID, res.Plan.Scanned, len(res.Plan.Proposals))
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func newReconcileCSVCmd(a *app) *cobra.Command {
	var (
		flags        reconcileFlags
		logPath      string
		projectsPath string
		outPath      string
		mappingsPath string
	)
	cmd := &cobra.Command{
		Use:         "reconcile-csv",
		Short:       "Reconcile a CSV log against a CSV project list without touching the database",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{"db": "none"},
		RunE: func(cmd *cobra.Command, _ []string) error {
			lf, err := os.Open(logPath)
			if err != nil {
				return err
			}
			defer lf.Close()
			sheet, err := service.ReadSheet(lf)
			if err != nil {
				return fmt.Errorf("read log: %w", err)
			}

			pf, err := os.Open(projectsPath)
			if err != nil {
				return err
			}
			defer pf.Close()
			names, err := service.ReadProjectNames(pf)
			if err != nil {
				return fmt.Errorf("read projects: %w", err)
			}

			if mappingsPath == "" {
				mappingsPath = a.cfg.Mappings.Path
			}
			var mappings service.Mappings
			if mappingsPath != "" {
				saved, err := prefs.LoadMappings(mappingsPath)
				if err != nil {
					return fmt.Errorf("load mappings: %w", err)
				}
				mappings = service.NewMappingSet(saved)
			}

			opts, err := flags.options(cmd, a.cfg)
			if err != nil {
				return err
			}
			if _, err := service.ReconcileRecords(cmd.Context(), sheet.Records(), names, mappings, sheet, opts, a.logger); err != nil {
				return err
			}
			if opts.DryRun {
				return nil
			}
			out, err := os.Create(outPath)
			if err != nil {
				return err
			}
			defer out.Close()
			return sheet.WriteCSV(out)
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVar(&logPath, "log", "", "time log CSV")
	cmd.Flags().StringVar(&projectsPath, "projects", "", "project list CSV")
	cmd.Flags().StringVar(&outPath, "out", "", "where to write the updated log")
	cmd.Flags().StringVar(&mappingsPath, "mappings", "", "JSON mappings file (default mappings.path)")
	_ = cmd.MarkFlagRequired("log")
	_ = cmd.MarkFlagRequired("projects")
	_ = cmd.MarkFlagRequired("out")
	return cmd
}

func newMapCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "map",
		Short: "Manage saved comment to project decisions",
	}

	var category string
	set := &cobra.Command{
		Use:   "set COMMENT [PROJECT]",
		Short: "Map a comment to a project; omit PROJECT to keep such entries blank",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			m := repository.Mapping{Comment: args[0], Category: category}
			if len(args) == 2 {
				m.Project = args[1]
			}
			return a.mappings.Set(cmd.Context(), m)
		},
	}
	set.Flags().StringVar(&category, "category", "", "restrict the mapping to one category")

	list := &cobra.Command{
		Use:   "list",
		Short: "List saved mappings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ms, err := a.mappings.List(cmd.Context())
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "COMMENT\tCATEGORY\tPROJECT")
			for _, m := range ms {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", m.Comment, m.Category, m.Project)
			}
			return tw.Flush()
		},
	}

	export := &cobra.Command{
		Use:   "export [FILE]",
		Short: "Write saved mappings to a JSON file (default mappings.path)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := mappingsFile(a.cfg, args)
			if err != nil {
				return err
			}
			ms, err := a.mappings.List(cmd.Context())
			if err != nil {
				return err
			}
			if err := prefs.SaveMappings(path, ms); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved %d mappings to %s\n", len(ms), path)
			return nil
		},
	}

	imp := &cobra.Command{
		Use:   "import [FILE]",
		Short: "Load mappings from a JSON file (default mappings.path)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := mappingsFile(a.cfg, args)
			if err != nil {
				return err
			}
			ms, err := prefs.LoadMappings(path)
			if err != nil {
				return err
			}
			for _, m := range ms {
				if err := a.mappings.Set(cmd.Context(), m); err != nil {
					return err
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Loaded %d mappings\n", len(ms))
			return nil
		},
	}

	var delCategory string
	del := &cobra.Command{
		Use:   "delete COMMENT",
		Short: "Forget a saved mapping",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			removed, err := a.mappings.Delete(cmd.Context(), args[0], delCategory)
			if err != nil {
				return err
			}
			if !removed {
				return fmt.Errorf("no mapping for %q", args[0])
			}
			return nil
		},
	}
	del.Flags().StringVar(&delCategory, "category", "", "category the mapping was saved under")

	cmd.AddCommand(set, list, del, export, imp)
	return cmd
}

func mappingsFile(cfg config.Config, args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	if cfg.Mappings.Path != "" {
		return cfg.Mappings.Path, nil
	}
	return prefs.DefaultMappingsPath()
}

func newRunsCmd(a *app) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recent reconciliation runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			runs, err := a.runs.ListRecent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tWHEN\tMODE\tTHRESHOLD\tSCANNED\tPROPOSED\tAPPLIED\tFAILED")
			for _, r := range runs {
				mode := "apply"
				if r.DryRun {
					mode = "dry-run"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%.2f\t%d\t%d\t%d\t%d\n", r.ID, r.CreatedAt.Format(time.DateTime), mode,
					r.Threshold, r.Scanned, r.Proposed, r.Applied, r.Failed)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "number of runs to show")
	return cmd
}

func newResetCmd(a *app) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete all stored projects, log entries, mappings and runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !yes {
				return fmt.Errorf("refusing to reset without --yes")
			}
			return (&service.MaintenanceService{DB: a.db}).Reset(cmd.Context())
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm the reset")
	return cmd
}

func newSeedDemoCmd(a *app) *cobra.Command {
	var (
		seed int64
		n    int
	)
	cmd := &cobra.Command{
		Use:   "seed-demo",
		Short: "Replace the stored log with generated sample data",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			repos := sampledata.Repos{Projects: a.projects, Log: a.logs}
			if err := sampledata.Seed(cmd.Context(), repos, seed, n); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d projects and %d log entries\n", len(sampledata.Projects), n)
			return nil
		},
	}
	cmd.Flags().Int64Var(&seed, "seed", 1, "random seed")
	cmd.Flags().IntVar(&n, "entries", 100, "number of log entries")
	return cmd
}
