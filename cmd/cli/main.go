package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	_ "net/http/pprof"
	"os"

	"gokinet/adapters/export"
	"gokinet/adapters/memstore"
	"gokinet/adapters/plot"
	"gokinet/adapters/postgres"
	"gokinet/app"
	"gokinet/internal/config"
	"gokinet/internal/migration"
	"gokinet/internal/report"
	"gokinet/internal/testkit"
	"gokinet/ports"
	"gokinet/ui"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "gokinet",
		Short: "GoKinet CLI for kinetic model fitting",
	}

	rootCmd.AddCommand(
		newServeCmd(),
		newAnalyzeCmd(),
		newSampleCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the kinetic modeling web UI",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := godotenv.Load(); err != nil {
				log.Println("No .env file found, using system environment variables")
			}

			appConfig, err := config.Load()
			if err != nil {
				return err
			}

			store, closeStore, err := openStore(cmd.Context(), appConfig)
			if err != nil {
				return err
			}
			defer closeStore()

			service := app.NewAnalysisService(store, appConfig.Fitting)
			server, err := ui.NewServer(service, export.NewExporter(), plot.NewRenderer(), appConfig)
			if err != nil {
				return err
			}

			if appConfig.Profiling.Enabled {
				go func() {
					log.Printf("Performance profiling server starting on :%s", appConfig.Profiling.Port)
					if err := http.ListenAndServe(":"+appConfig.Profiling.Port, nil); err != nil {
						log.Printf("pprof server failed: %v", err)
					}
				}()
			}

			log.Printf("Starting GoKinet server on port %s", appConfig.Server.Port)
			return server.Run(":" + appConfig.Server.Port)
		},
	}
}

func newAnalyzeCmd() *cobra.Command {
	var sheet string
	var out string

	cmd := &cobra.Command{
		Use:   "analyze [file]",
		Short: "Fit PFO and PSO models to a data file",
		Long: `Run the full analysis pipeline on an Excel workbook or CSV file
and print the model comparison table.

Example: gokinet analyze data.xlsx --sheet "pH 10" --out results.xlsx`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd.Context(), args[0], sheet, out)
		},
	}

	cmd.Flags().StringVar(&sheet, "sheet", "", "Worksheet to analyze (default: first non-empty)")
	cmd.Flags().StringVar(&out, "out", "", "Write the results workbook to this path")

	return cmd
}

func newSampleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sample [file]",
		Short: "Write a synthetic multi-sheet sample workbook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := testkit.WriteSampleWorkbook(args[0]); err != nil {
				return err
			}
			fmt.Printf("Sample workbook written to %s\n", args[0])
			return nil
		},
	}
}

func runAnalyze(ctx context.Context, filePath, sheet, out string) error {
	cfg := config.DefaultFittingConfig()
	service := app.NewAnalysisService(memstore.New(), cfg)

	analysis, err := service.AnalyzeFile(ctx, filePath, sheet)
	if err != nil {
		return err
	}

	selStart, selEnd := analysis.SelectedTimeRange()
	fmt.Printf("Source: %s (%d points, %d selected, t = %g..%g min)\n\n",
		analysis.SourceName, analysis.Series.Len(), len(analysis.SelectedIndices), selStart, selEnd)

	fmt.Printf("%-6s %-28s %10s %10s\n", "Model", "Parameters", "R²", "MAPE %")
	for _, row := range report.Summary(analysis) {
		fmt.Printf("%-6s %-28s %10.4f %10.2f\n", row.Model, row.Parameters, row.R2, row.MAPE)
	}
	fmt.Printf("\nBetter fit: %s\n", analysis.BetterModel())

	if out != "" {
		data, err := export.NewExporter().Workbook(analysis)
		if err != nil {
			return err
		}
		if err := os.WriteFile(out, data, 0o644); err != nil {
			return err
		}
		fmt.Printf("Results workbook written to %s\n", out)
	}

	return nil
}

// openStore selects the analysis store the same way the server binaries do
func openStore(ctx context.Context, appConfig *config.Config) (ports.AnalysisStore, func(), error) {
	if appConfig.Database.URL == "" {
		return memstore.New(), func() {}, nil
	}

	db, err := sqlx.Connect("postgres", appConfig.Database.URL)
	if err != nil {
		return nil, nil, err
	}

	migrator := migration.NewRunner()
	if err := migrator.Run(ctx, db); err != nil {
		db.Close()
		return nil, nil, err
	}

	return postgres.NewAnalysisRepository(db), func() { db.Close() }, nil
}
