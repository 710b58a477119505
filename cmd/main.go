package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/bryan-cox/metricsledger/internal/clipboard"
	"github.com/bryan-cox/metricsledger/internal/config"
	"github.com/bryan-cox/metricsledger/internal/dataset"
	"github.com/bryan-cox/metricsledger/internal/detail"
	"github.com/bryan-cox/metricsledger/internal/export"
	"github.com/bryan-cox/metricsledger/internal/metrics"
	"github.com/bryan-cox/metricsledger/internal/model"
	"github.com/bryan-cox/metricsledger/internal/report"
	"github.com/bryan-cox/metricsledger/internal/store"
)

// --- Cobra Command Definitions ---

var (
	// Used for flags.
	cfgFile     string
	filePath    string
	useDB       bool
	periodFlag  string
	dateFlag    string
	formatFlag  string
	copyFlag    bool
	outDir      string
	detailsFile string

	// rootCmd represents the base command when called without any subcommands
	rootCmd = &cobra.Command{
		Use:           "metricsledger",
		Short:         "Aggregate per-user work metrics into reports and spreadsheet exports.",
		Long:          `MetricsLedger reads per-user work records for a reporting period, normalizes their counts per work category and produces a totals table or a flat spreadsheet export joined with the detailed work item listing.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// summaryCmd represents the summary command
	summaryCmd = &cobra.Command{
		Use:   "summary",
		Short: "Print completed/skipped counts per user and category.",
		Long:  `Aggregates the work records of every roster user for the period and prints one row per user followed by column totals.`,
		RunE:  runSummaryCommand,
	}

	// exportCmd represents the export command
	exportCmd = &cobra.Command{
		Use:   "export",
		Short: "Write the spreadsheet export for a period.",
		Long:  `Aggregates the work records, joins them with the detailed work items fetched from the metrics API and writes Metrics_<period>_<date>.csv.`,
		RunE:  runExportCommand,
	}
)

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	// Add persistent flags to the root command (available to all subcommands)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default is $HOME/.metricsledger/config.yaml).")
	rootCmd.PersistentFlags().StringVar(&filePath, "file", "metrics.yml", "Path to the YAML or JSON metrics dataset.")
	rootCmd.PersistentFlags().BoolVar(&useDB, "db", false, "Read inputs from Postgres instead of --file.")
	rootCmd.PersistentFlags().StringVar(&periodFlag, "period", "", "Reporting period: daily, weekly or monthly.")
	rootCmd.PersistentFlags().StringVar(&dateFlag, "date", "", "Reporting date (YYYY-MM-DD).")

	summaryCmd.Flags().StringVar(&formatFlag, "format", "table", "Output format: table, tsv or json.")
	summaryCmd.Flags().BoolVar(&copyFlag, "copy", false, "Copy the summary to the clipboard as tab separated text.")

	exportCmd.Flags().StringVar(&outDir, "out", "", "Export directory (default export.dir from config).")
	exportCmd.Flags().StringVar(&detailsFile, "details-file", "", "Read detailed work items from a JSON file instead of the API.")

	// Add subcommands to the root command
	rootCmd.AddCommand(summaryCmd)
	rootCmd.AddCommand(exportCmd)
}

func initConfig() {
	cobra.CheckErr(config.Init(viper.GetViper(), cfgFile))
}

// --- Main Application Entry Point ---

func main() {
	// Setup structured JSON logger.
	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))
	slog.SetDefault(logger)
	Execute()
}

// --- Command Execution Logic ---

func runSummaryCommand(cmd *cobra.Command, args []string) error {
	in, date, err := loadInput(cmd.Context())
	if err != nil {
		return err
	}

	rep := newAssembler().Display(in)
	out := cmd.OutOrStdout()
	switch formatFlag {
	case "table":
		report.RenderTable(out, rep, model.FormatDate(date))
	case "tsv":
		fmt.Fprint(out, report.TSV(rep))
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(rep); err != nil {
			return fmt.Errorf("failed to encode report: %w", err)
		}
	default:
		return fmt.Errorf("unknown format %q, use table, tsv or json", formatFlag)
	}

	if copyFlag {
		if err := clipboard.CopyText(report.TSV(rep)); err != nil {
			slog.Warn("failed to copy summary to clipboard", "error", err)
		} else {
			fmt.Fprintln(cmd.ErrOrStderr(), "Summary copied to clipboard.")
		}
	}
	return nil
}

func runExportCommand(cmd *cobra.Command, args []string) error {
	in, date, err := loadInput(cmd.Context())
	if err != nil {
		return err
	}

	res, err := newAssembler().Export(cmd.Context(), in, date)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Exported %d rows to %s\n", len(res.Rows), res.Path)
	return nil
}

// --- Helper Functions ---

// newAssembler wires the report assembler to the configured detail source
// and export directory.
func newAssembler() *metrics.Assembler {
	cfg := config.Load(viper.GetViper())
	var source metrics.DetailSource = detail.NewClient(cfg.APIBaseURL, cfg.APIToken, cfg.APITimeout)
	if detailsFile != "" {
		source = detail.FileSource{Path: detailsFile}
	}
	dir := outDir
	if dir == "" {
		dir = cfg.ExportDir
	}
	return metrics.NewAssembler(source, export.CSVWriter{Dir: dir})
}

// loadInput reads the report inputs from the dataset file or Postgres and
// resolves the period and date. Flags win over values in the dataset.
func loadInput(ctx context.Context) (metrics.Input, time.Time, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	date := time.Now()
	if dateFlag != "" {
		d, err := time.Parse(model.DateLayout, dateFlag)
		if err != nil {
			return metrics.Input{}, date, fmt.Errorf("invalid date format, use YYYY-MM-DD: %w", err)
		}
		date = d
	}
	period := model.Daily
	if periodFlag != "" {
		p, err := model.ParsePeriod(periodFlag)
		if err != nil {
			return metrics.Input{}, date, err
		}
		period = p
	}

	if useDB {
		cfg := config.Load(viper.GetViper())
		st, err := store.Open(ctx, cfg.DatabaseURL, cfg.DatabaseSchema)
		if err != nil {
			return metrics.Input{}, date, err
		}
		defer st.Close()
		ds, err := st.Load(ctx, period, date)
		if err != nil {
			return metrics.Input{}, date, err
		}
		return inputFrom(ds, period), date, nil
	}

	ds, err := dataset.Load(filePath)
	if err != nil {
		return metrics.Input{}, date, err
	}
	if periodFlag == "" && ds.Period != "" {
		period = ds.Period
	}
	filterDate := dateFlag
	if filterDate == "" && ds.Date != "" {
		d, err := time.Parse(model.DateLayout, ds.Date)
		if err != nil {
			return metrics.Input{}, date, fmt.Errorf("invalid dataset date %q: %w", ds.Date, err)
		}
		date = d
		filterDate = ds.Date
	}
	if filterDate != "" {
		ds.Metrics = metrics.FilterPeriod(ds.Metrics, period, date)
	}
	return inputFrom(ds, period), date, nil
}

func inputFrom(ds model.Dataset, period model.Period) metrics.Input {
	return metrics.Input{
		Users:       ds.Users,
		Metrics:     ds.Metrics,
		BlockTotals: ds.BlockTotals,
		Period:      period,
	}
}
