// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/pubmed-affiliations/internal/export"
	"github.com/pdiddy/pubmed-affiliations/internal/harvest"
	"github.com/pdiddy/pubmed-affiliations/pkg/types"
)

// --- export subcommand ---

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Convert a saved report to another format",
	Long: `Export reads a report saved by harvest, from a YAML file (--from-yaml),
a JSON file checked against the report schema (--from-json), or a run in a
SQLite database (--from-db, latest run unless --run is given), and writes it
to the requested outputs.`,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().String("from-yaml", "", "read the report from this YAML file")
	exportCmd.Flags().String("from-json", "", "read the report from this JSON file")
	exportCmd.Flags().String("from-db", "", "read the report from this SQLite database")
	exportCmd.Flags().String("run", "", "run id to read from --from-db (default: latest)")
	exportCmd.MarkFlagsMutuallyExclusive("from-yaml", "from-json", "from-db")
	exportCmd.MarkFlagsOneRequired("from-yaml", "from-json", "from-db")
	addOutputFlags(exportCmd)

	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	var (
		report *types.Report
		err    error
	)
	yamlPath, _ := cmd.Flags().GetString("from-yaml")
	jsonPath, _ := cmd.Flags().GetString("from-json")
	switch {
	case yamlPath != "":
		report, err = export.ReadYAML(yamlPath)
	case jsonPath != "":
		report, err = export.ReadJSON(jsonPath)
	default:
		dbPath, _ := cmd.Flags().GetString("from-db")
		runID, _ := cmd.Flags().GetString("run")
		report, err = loadRun(ctx, dbPath, runID)
	}
	if err != nil {
		return err
	}

	harvest.PrintSummary(os.Stdout, report, 0)
	return writeOutputs(ctx, cmd, report)
}

func loadRun(ctx context.Context, dbPath, runID string) (*types.Report, error) {
	store, err := export.OpenStore(dbPath)
	if err != nil {
		return nil, err
	}
	defer store.Close()

	runID, err = resolveRun(ctx, store, runID)
	if err != nil {
		return nil, err
	}
	return store.LoadReport(ctx, runID)
}

// resolveRun returns runID, or the most recent run when runID is empty.
func resolveRun(ctx context.Context, store *export.Store, runID string) (string, error) {
	if runID != "" {
		return runID, nil
	}
	ids, err := store.RunIDs(ctx)
	if err != nil {
		return "", err
	}
	if len(ids) == 0 {
		return "", fmt.Errorf("no runs stored")
	}
	return ids[0], nil
}

// --- authors subcommand ---

var authorsCmd = &cobra.Command{
	Use:   "authors [affiliation]",
	Short: "List authors of a saved run whose affiliation contains a string",
	Args:  cobra.ExactArgs(1),
	RunE:  runAuthors,
}

func init() {
	authorsCmd.Flags().String("db", "", "SQLite database written by harvest --out-db")
	authorsCmd.Flags().String("run", "", "run id (default: latest)")
	authorsCmd.MarkFlagRequired("db")

	rootCmd.AddCommand(authorsCmd)
}

func runAuthors(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	dbPath, _ := cmd.Flags().GetString("db")
	runID, _ := cmd.Flags().GetString("run")

	store, err := export.OpenStore(dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	runID, err = resolveRun(ctx, store, runID)
	if err != nil {
		return err
	}
	names, err := store.AuthorsByAffiliation(ctx, runID, args[0])
	if err != nil {
		return err
	}
	if len(names) == 0 {
		fmt.Println("No authors found.")
		return nil
	}
	for _, name := range names {
		fmt.Println(name)
	}
	return nil
}
