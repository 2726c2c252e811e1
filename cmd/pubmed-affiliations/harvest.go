// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/pubmed-affiliations/internal/eutils"
	"github.com/pdiddy/pubmed-affiliations/internal/export"
	"github.com/pdiddy/pubmed-affiliations/internal/harvest"
	"github.com/pdiddy/pubmed-affiliations/internal/metrics"
	"github.com/pdiddy/pubmed-affiliations/internal/secrets"
	"github.com/pdiddy/pubmed-affiliations/pkg/types"
)

var harvestCmd = &cobra.Command{
	Use:   "harvest",
	Short: "Search PubMed and aggregate authors with their affiliations",
	Long: `Harvest runs the full pipeline: it pages through esearch results for the
configured query, fetches article records in batches with efetch, keeps the
articles whose title contains a keyword, and aggregates every author's
affiliations and "title (year)" strings.

The summary table is printed to stdout. Use --out-yaml, --out-json,
--out-xlsx, or --out-db to save the aggregate, and --metrics-file to write run counters in
Prometheus text format.`,
	RunE: runHarvest,
}

func init() {
	addHarvestFlags(harvestCmd, viper.GetViper())
	harvestCmd.Flags().String("env-file", ".env", "dotenv file to load credentials from")
	harvestCmd.Flags().String("secrets-dir", ".secrets/", "directory of credential files")
	addOutputFlags(harvestCmd)
	harvestCmd.Flags().String("metrics-file", "", "write Prometheus metrics to this file")
	harvestCmd.Flags().Int("show", 25, "authors to list in the summary (0 for all)")

	rootCmd.AddCommand(harvestCmd)
}

func runHarvest(cmd *cobra.Command, args []string) error {
	envFile, _ := cmd.Flags().GetString("env-file")
	secretsDir, _ := cmd.Flags().GetString("secrets-dir")

	cfg, err := loadHarvestConfig(viper.GetViper(), secrets.Sources{EnvFile: envFile, SecretsDir: secretsDir})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	client := &http.Client{Timeout: cfg.Timeout}
	m := metrics.New()
	p := harvest.New(eutils.NewClient(cfg, client, logger), m, logger, os.Stdout)

	res, err := p.Run(ctx)
	if metricsFile, _ := cmd.Flags().GetString("metrics-file"); metricsFile != "" {
		if werr := m.WriteTextfile(metricsFile); werr != nil {
			logger.Error("writing metrics", "path", metricsFile, "error", werr)
		}
	}
	if err != nil {
		return err
	}

	report := res.Report()
	show, _ := cmd.Flags().GetInt("show")
	harvest.PrintSummary(os.Stdout, report, show)

	return writeOutputs(ctx, cmd, report)
}

func addOutputFlags(cmd *cobra.Command) {
	cmd.Flags().String("out-yaml", "", "write the report as YAML")
	cmd.Flags().String("out-json", "", "write the report as JSON")
	cmd.Flags().String("out-xlsx", "", "write the report as an Excel workbook")
	cmd.Flags().String("out-db", "", "save the report to a SQLite database")
}

// writeOutputs writes report to every destination named by the output flags.
func writeOutputs(ctx context.Context, cmd *cobra.Command, report *types.Report) error {
	if path, _ := cmd.Flags().GetString("out-yaml"); path != "" {
		if err := export.WriteYAML(path, report); err != nil {
			return fmt.Errorf("writing YAML: %w", err)
		}
		fmt.Fprintf(os.Stdout, "Wrote %s\n", path)
	}
	if path, _ := cmd.Flags().GetString("out-json"); path != "" {
		if err := export.WriteJSON(path, report); err != nil {
			return fmt.Errorf("writing JSON: %w", err)
		}
		fmt.Fprintf(os.Stdout, "Wrote %s\n", path)
	}
	if path, _ := cmd.Flags().GetString("out-xlsx"); path != "" {
		if err := export.WriteXLSX(path, report); err != nil {
			return fmt.Errorf("writing workbook: %w", err)
		}
		fmt.Fprintf(os.Stdout, "Wrote %s\n", path)
	}
	if path, _ := cmd.Flags().GetString("out-db"); path != "" {
		store, err := export.OpenStore(path)
		if err != nil {
			return err
		}
		defer store.Close()
		if err := store.SaveReport(ctx, report); err != nil {
			return fmt.Errorf("saving report: %w", err)
		}
		fmt.Fprintf(os.Stdout, "Saved run %s to %s\n", report.RunID, path)
	}
	return nil
}
