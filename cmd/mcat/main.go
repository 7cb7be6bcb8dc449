package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"mcat-go/internal/app"
	"mcat-go/internal/config"
	"mcat-go/internal/mcat"
)

func main() {
	if err := app.LoadEnv(".env"); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// readConfig loads the config file named by the defaults.
func readConfig() (*config.Config, error) {
	defaults, err := app.GetDefaults()
	if err != nil {
		return nil, fmt.Errorf("getting defaults: %w", err)
	}

	cfg, err := config.ReadFromFile(defaults["config_path"])
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return cfg, nil
}

// newApp reads the config and creates an App. The caller must defer a.Close().
// operation identifies the CLI command being run (e.g. "Ingest", "Rebuild").
func newApp(operation string, opts ...app.Option) (*app.App, error) {
	cfg, err := readConfig()
	if err != nil {
		return nil, err
	}

	a, err := app.NewApp(cfg, operation, opts...)
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}
	return a, nil
}

// closeApp closes a and reports a close failure unless the command already failed.
func closeApp(a *app.App, err *error) {
	if cerr := a.Close(); cerr != nil && *err == nil {
		*err = cerr
	}
}

var rootCmd = &cobra.Command{
	Use:          "mcat",
	Short:        "Maser source catalog and observation archive",
	SilenceUsage: true,
}

// config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg := config.NewConfig(defaults["base_dir"])
		if err := config.Init(defaults["config_path"], cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		fmt.Printf("Configuration initialized at %s\n", defaults["config_path"])
		fmt.Printf("Base Dir: %s\n", defaults["base_dir"])
		fmt.Printf("Place the reference catalog at %s\n", cfg.CatalogFile)
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg, err := config.ReadFromFile(defaults["config_path"])
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}

		fmt.Printf("Configuration from %s:\n\n", defaults["config_path"])
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintf(w, "Archive root:\t%s\n", cfg.ArchiveRoot)
		fmt.Fprintf(w, "Catalog file:\t%s\n", cfg.CatalogFile)
		fmt.Fprintf(w, "Log dir:\t%s\n", cfg.LogDir)
		fmt.Fprintf(w, "Database:\t%s %s\n", cfg.Database.Type, cfg.Database.Path)
		fmt.Fprintf(w, "Skip codes:\t%v\n", cfg.Ingest.SkipCodes)
		fmt.Fprintf(w, "Snapshots:\t%s\n", describeSnapshot(cfg.Snapshot))
		return w.Flush()
	},
}

func describeSnapshot(s config.SnapshotConfig) string {
	var where string
	switch s.Type {
	case "filesystem":
		where = s.Dir
	case "s3":
		where = fmt.Sprintf("s3://%s/%s", s.S3Bucket, s.S3Prefix)
	case "", "none":
		return "disabled"
	}
	if s.Recipient != "" {
		where += " (encrypted)"
	}
	return s.Type + " " + where
}

// source command
var sourceCmd = &cobra.Command{
	Use:   "source",
	Short: "Manage catalog sources",
}

var sourceListCmd = &cobra.Command{
	Use:   "list",
	Short: "List catalog sources",
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		folders, _ := cmd.Flags().GetBool("folders")

		a, err := newApp("ListSources")
		if err != nil {
			return err
		}
		defer closeApp(a, &err)

		if folders {
			names, err := a.ArchiveFolders()
			if err != nil {
				return err
			}
			for _, n := range names {
				fmt.Println(n)
			}
			return nil
		}

		recs, err := a.ListSources()
		if err != nil {
			return err
		}
		if len(recs) == 0 {
			fmt.Println("No sources in catalog.")
			return nil
		}
		printRecords(os.Stdout, recs)
		return nil
	},
}

func printRecords(out io.Writer, recs []*mcat.SourceRecord) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tSHORT\tRA\tDEC\tV_LSR\tFIRST\tLATEST\tN\tCADENCE")
	for _, r := range recs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%g\t%s\t%s\t%d\t%g\n",
			r.FullName, r.ShortCode, r.RA, r.Dec, r.SystemicVelocity,
			r.FirstObservation, r.LastObservation, r.ObservationCount, r.MeanCadencePerMonth)
	}
	w.Flush()
}

var sourceShowCmd = &cobra.Command{
	Use:   "show NAME",
	Short: "Show one source",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		a, err := newApp("ShowSource")
		if err != nil {
			return err
		}
		defer closeApp(a, &err)

		rec, err := a.ShowSource(args[0])
		if err != nil {
			return err
		}
		if rec == nil {
			return fmt.Errorf("source %s: %w", args[0], mcat.ErrNotFound)
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		for _, kv := range rec.Sheet() {
			fmt.Fprintf(w, "%s\t%s\n", kv[0], kv[1])
		}
		return w.Flush()
	},
}

var sourceAddCmd = &cobra.Command{
	Use:   "add NAME [SHORT_CODE]",
	Short: "Add a source from the reference catalog",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		shortCode := ""
		if len(args) > 1 {
			shortCode = args[1]
		}

		a, err := newApp("AddSource")
		if err != nil {
			return err
		}
		defer closeApp(a, &err)

		rec, err := a.AddSource(args[0], shortCode)
		if err != nil {
			return err
		}
		fmt.Printf("Added %s (%s %s)\n", rec.FullName, rec.RA, rec.Dec)
		return nil
	},
}

var sourceDeleteCmd = &cobra.Command{
	Use:   "delete NAME",
	Short: "Remove a source from the catalog",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		purge, _ := cmd.Flags().GetBool("purge")

		a, err := newApp("DeleteSource")
		if err != nil {
			return err
		}
		defer closeApp(a, &err)

		if err := a.DeleteSource(args[0], purge); err != nil {
			return err
		}
		fmt.Printf("Deleted %s\n", args[0])
		return nil
	},
}

var sourceRefreshCmd = &cobra.Command{
	Use:   "refresh NAME",
	Short: "Recompute a source's statistics from its archive folder",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		a, err := newApp("RefreshSource")
		if err != nil {
			return err
		}
		defer closeApp(a, &err)

		rec, err := a.RefreshSource(args[0])
		if err != nil {
			return err
		}
		fmt.Printf("%s: %d observation(s), %s to %s\n",
			rec.FullName, rec.ObservationCount, rec.FirstObservation, rec.LastObservation)
		return nil
	},
}

// ingest command
var ingestCmd = &cobra.Command{
	Use:   "ingest [PATH...]",
	Short: "Copy new observation files into the archive",
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		recursive, _ := cmd.Flags().GetBool("recursive")
		tarPath, _ := cmd.Flags().GetString("tar")

		if tarPath != "" && len(args) > 0 {
			return fmt.Errorf("--tar cannot be combined with paths")
		}

		// Answers come from the terminal; reading a tar from stdin leaves none.
		resolver := mcat.SkipUnknown
		if tarPath != "-" {
			resolver = app.NewPromptResolver(os.Stdin, os.Stderr)
		}

		a, err := newApp("Ingest", app.WithResolver(resolver))
		if err != nil {
			return err
		}
		defer closeApp(a, &err)

		var report *mcat.IngestReport
		switch tarPath {
		case "":
			paths := args
			if len(paths) == 0 {
				paths = []string{"."}
			}
			report, err = a.Ingest(paths, recursive)
		case "-":
			report, err = a.IngestTar(os.Stdin, "stdin")
		default:
			f, ferr := os.Open(tarPath)
			if ferr != nil {
				return fmt.Errorf("opening tar file: %w", ferr)
			}
			defer f.Close()
			report, err = a.IngestTar(f, tarPath)
		}
		if report != nil {
			printReport(os.Stdout, report)
		}
		return err
	},
}

func printReport(out io.Writer, report *mcat.IngestReport) {
	for _, g := range report.Groups {
		switch g.Status {
		case mcat.GroupIngested:
			suffix := ""
			if g.Created {
				suffix = " (new source)"
			}
			fmt.Fprintf(out, "%-10s %d file(s) -> %s%s\n", g.ShortCode, g.Files, g.FullName, suffix)
		case mcat.GroupSkipped:
			fmt.Fprintf(out, "%-10s %d file(s) skipped: %s\n", g.ShortCode, g.Files, g.Reason)
		case mcat.GroupFailed:
			fmt.Fprintf(out, "%-10s %d file(s) failed: %v\n", g.ShortCode, g.Files, g.Err)
		}
	}
	fmt.Fprintf(out, "Ingested %d group(s), skipped %d, failed %d\n",
		report.Count(mcat.GroupIngested), report.Count(mcat.GroupSkipped), report.Count(mcat.GroupFailed))
}

// rebuild command
var rebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Recreate the catalog from the archive folders",
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		a, err := newApp("Rebuild")
		if err != nil {
			return err
		}
		defer closeApp(a, &err)

		n, err := a.Rebuild()
		if err != nil {
			return fmt.Errorf("rebuild failed: %w", err)
		}
		fmt.Printf("Rebuilt catalog with %d source(s)\n", n)
		return nil
	},
}

// history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "View operation history",
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		limit, _ := cmd.Flags().GetInt("limit")

		a, err := newApp("History")
		if err != nil {
			return err
		}
		defer closeApp(a, &err)

		ops, err := a.History(limit)
		if err != nil {
			return err
		}
		if len(ops) == 0 {
			fmt.Println("No operations recorded.")
			return nil
		}

		for _, op := range ops {
			duration := ""
			if op.FinishedAt != nil {
				duration = op.FinishedAt.Sub(op.StartedAt).Truncate(time.Millisecond).String()
			}
			fmt.Printf("#%d  %-14s  %s  %-8s  %-8s  %s\n",
				op.ID,
				op.Operation,
				op.StartedAt.Format("2006-01-02 15:04:05"),
				op.Status,
				duration,
				op.Parameters,
			)
		}
		return nil
	},
}

// db command
var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Inspect and migrate the catalog database",
}

var dbStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the schema version",
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		a, err := newApp("DBStatus")
		if err != nil {
			return err
		}
		defer closeApp(a, &err)

		st, err := a.DBStatus()
		if err != nil {
			return err
		}
		fmt.Printf("Schema %s\n", st)
		return nil
	},
}

var dbMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending schema migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := readConfig()
		if err != nil {
			return err
		}
		st, err := app.MigrateDatabase(cfg)
		if err != nil {
			return err
		}
		fmt.Printf("Schema %s\n", st)
		return nil
	},
}

func init() {
	// config subcommands
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)

	// source subcommands
	sourceCmd.AddCommand(sourceListCmd)
	sourceListCmd.Flags().Bool("folders", false, "List archive folders instead of catalog records")
	sourceCmd.AddCommand(sourceShowCmd)
	sourceCmd.AddCommand(sourceAddCmd)
	sourceCmd.AddCommand(sourceDeleteCmd)
	sourceDeleteCmd.Flags().Bool("purge", false, "Also delete the source's archive folder")
	sourceCmd.AddCommand(sourceRefreshCmd)

	// db subcommands
	dbCmd.AddCommand(dbStatusCmd)
	dbCmd.AddCommand(dbMigrateCmd)

	// root commands
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(sourceCmd)
	rootCmd.AddCommand(ingestCmd)
	ingestCmd.Flags().BoolP("recursive", "r", false, "Recurse into subdirectories")
	ingestCmd.Flags().String("tar", "", "Read observation files from a tar archive (- for stdin)")
	rootCmd.AddCommand(rebuildCmd)
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntP("limit", "n", 50, "Maximum number of operations to show")
	rootCmd.AddCommand(dbCmd)
}
