// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the pubmed-affiliations
// pipeline: configuration, decoded PubMed records, and the author report.
package types

import "time"

// AuthorSummary is the exported form of one aggregate entry. Affiliations
// and Titles are sorted and hold no duplicates.
type AuthorSummary struct {
	// Name is the formatted author name and the aggregate key.
	Name string `json:"name" yaml:"name"`

	// Affiliations are the distinct affiliation strings seen for the author.
	Affiliations []string `json:"affiliations" yaml:"affiliations"`

	// Titles are the distinct "title (year)" strings the author appears on.
	Titles []string `json:"titles" yaml:"titles"`
}

// RunStats counts what a harvest run saw at each stage.
type RunStats struct {
	IDsCollected     int `json:"ids_collected" yaml:"ids_collected"`
	ArticlesFetched  int `json:"articles_fetched" yaml:"articles_fetched"`
	ArticlesAccepted int `json:"articles_accepted" yaml:"articles_accepted"`
	ArticlesRejected int `json:"articles_rejected" yaml:"articles_rejected"`
	Authors          int `json:"authors" yaml:"authors"`
}

// Report is the result of a harvest run as handed to output writers.
type Report struct {
	// RunID identifies the run that produced the report.
	RunID string `json:"run_id" yaml:"run_id"`

	// Term is the composed PubMed search term.
	Term string `json:"term" yaml:"term"`

	// Keywords are the title keywords used for filtering.
	Keywords []string `json:"keywords" yaml:"keywords"`

	// StartedAt and FinishedAt bracket the run.
	StartedAt  time.Time `json:"started_at" yaml:"started_at"`
	FinishedAt time.Time `json:"finished_at" yaml:"finished_at"`

	Stats RunStats `json:"stats" yaml:"stats"`

	// Authors is sorted by name.
	Authors []AuthorSummary `json:"authors" yaml:"authors"`
}
