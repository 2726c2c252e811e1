// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/pubmed-affiliations/internal/secrets"
	"github.com/pdiddy/pubmed-affiliations/pkg/types"
)

// harvestFlags maps harvest flag names to their config keys.
var harvestFlags = map[string]string{
	"base-url":     "base_url",
	"email":        "email",
	"timeout":      "timeout",
	"query":        "query.terms",
	"keywords":     "query.keywords",
	"pub-types":    "query.publication_types",
	"from-year":    "query.year_from",
	"to-year":      "query.year_to",
	"batch-size":   "batch_size",
	"delay":        "delay",
	"max-results":  "max_results",
	"retmax":       "retmax",
	"max-attempts": "retry.max_attempts",
	"retry-delay":  "retry.delay",
}

// addHarvestFlags registers the query and paging flags with defaults taken
// from types.DefaultHarvestConfig, and binds each one to its config key.
func addHarvestFlags(cmd *cobra.Command, v *viper.Viper) {
	def := types.DefaultHarvestConfig()
	f := cmd.Flags()

	f.String("base-url", def.BaseURL, "E-utilities base URL")
	f.String("email", def.Email, "contact email sent to NCBI")
	f.Duration("timeout", def.Timeout, "HTTP request timeout")
	f.String("query", def.Query.Terms, "free-text PubMed query")
	f.StringSlice("keywords", def.Query.Keywords, "title keywords; an article is kept if any matches (comma-separated)")
	f.StringSlice("pub-types", def.Query.PublicationTypes, "publication types to include (comma-separated)")
	f.Int("from-year", def.Query.YearFrom, "first publication year")
	f.Int("to-year", def.Query.YearTo, "last publication year")
	f.Int("batch-size", def.BatchSize, "ids per efetch request")
	f.Duration("delay", def.Delay, "pause between search pages and fetch batches")
	f.Int("max-results", def.MaxResults, "stop paging once the offset reaches this value")
	f.Int("retmax", def.RetMax, "ids per search page")
	f.Int("max-attempts", def.Retry.MaxAttempts, "attempts per request, first included")
	f.Duration("retry-delay", def.Retry.Delay, "pause before each retry")

	for name, key := range harvestFlags {
		v.BindPFlag(key, f.Lookup(name))
	}
}

// loadHarvestConfig layers the config file, environment, and flags held by
// v over the defaults, then adds credentials from src and validates.
func loadHarvestConfig(v *viper.Viper, src secrets.Sources) (types.HarvestConfig, error) {
	cfg := types.DefaultHarvestConfig()
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	creds, err := secrets.Resolve(src)
	if err != nil {
		return cfg, err
	}
	cfg.APIKey = creds.APIKey
	if cfg.Email == "" {
		cfg.Email = creds.Email
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}
