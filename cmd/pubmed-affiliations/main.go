// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the pubmed-affiliations CLI.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// version is set at build time via ldflags.
var version = "dev"

// logger is configured in PersistentPreRunE once flags are parsed.
var logger = slog.Default()

// rootCmd is the base command for the pubmed-affiliations CLI.
var rootCmd = &cobra.Command{
	Use:   "pubmed-affiliations",
	Short: "Harvest PubMed authors and their affiliations",
	Long: `pubmed-affiliations searches PubMed through the NCBI E-utilities, fetches
the matching article records in batches, keeps the articles whose title
contains one of the configured keywords, and maps every author to the
affiliations and titles seen for them.

The NCBI API key is read from NCBI_API_KEY, a .env file, or
.secrets/ncbi-api-key. It is never read from the config file.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		verbose, _ := cmd.Flags().GetBool("verbose")
		logger = newLogger(verbose)
		slog.SetDefault(logger)
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./pubmed-affiliations.yaml or ~/.config/pubmed-affiliations/pubmed-affiliations.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable debug logging")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("pubmed-affiliations")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "pubmed-affiliations"))
		}
	}

	viper.SetEnvPrefix("PUBMED_AFFILIATIONS")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
