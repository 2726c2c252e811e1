// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package harvest runs one end-to-end harvest: search for ids, fetch their
// records in batches, and aggregate authors from articles whose title
// matches a keyword.
package harvest

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pdiddy/pubmed-affiliations/internal/aggregate"
	"github.com/pdiddy/pubmed-affiliations/internal/eutils"
	"github.com/pdiddy/pubmed-affiliations/internal/metrics"
	"github.com/pdiddy/pubmed-affiliations/pkg/types"
)

// Pipeline wires the stages of a run together. Metrics may be nil.
type Pipeline struct {
	Client  *eutils.Client
	Metrics *metrics.Collector
	Logger  *slog.Logger
	Out     io.Writer
}

// New returns a Pipeline around client. When m is non-nil it also observes
// every request attempt the client makes.
func New(client *eutils.Client, m *metrics.Collector, logger *slog.Logger, out io.Writer) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	if out == nil {
		out = io.Discard
	}
	if m != nil && client.HTTP != nil {
		client.HTTP.Observer = m
	}
	return &Pipeline{Client: client, Metrics: m, Logger: logger, Out: out}
}

// Result is the outcome of a completed run.
type Result struct {
	RunID      string
	Term       string
	Keywords   []string
	IDs        int
	Fetched    int
	Aggregate  *aggregate.Aggregate
	StartedAt  time.Time
	FinishedAt time.Time
}

// Report converts the result for output writers.
func (r *Result) Report() *types.Report {
	stats := r.Aggregate.Stats()
	return &types.Report{
		RunID:      r.RunID,
		Term:       r.Term,
		Keywords:   r.Keywords,
		StartedAt:  r.StartedAt,
		FinishedAt: r.FinishedAt,
		Stats: types.RunStats{
			IDsCollected:     r.IDs,
			ArticlesFetched:  r.Fetched,
			ArticlesAccepted: stats.Accepted,
			ArticlesRejected: stats.Rejected,
			Authors:          r.Aggregate.Len(),
		},
		Authors: r.Aggregate.Snapshot(),
	}
}

// Run executes the pipeline for the query in the client's configuration.
// Search and fetch failures end the run; validation problems only produce
// warnings.
func (p *Pipeline) Run(ctx context.Context) (res *Result, err error) {
	cfg := p.Client.Config
	res = &Result{
		RunID:     uuid.NewString(),
		Keywords:  cfg.Query.Keywords,
		StartedAt: time.Now().UTC(),
	}
	log := p.Logger.With("run_id", res.RunID)
	defer func() {
		res.FinishedAt = time.Now().UTC()
		p.Metrics.Finish(res.FinishedAt.Sub(res.StartedAt), err)
	}()

	filter := eutils.NewSearchFilter(cfg.Query)
	res.Term = filter.String()
	log.Info("harvest started", "term", res.Term, "keywords", cfg.Query.Keywords)
	fmt.Fprintf(p.Out, "Searching PubMed: %s\n", res.Term)

	ids, err := p.Client.Search(ctx, filter)
	if err != nil {
		return res, fmt.Errorf("searching: %w", err)
	}
	res.IDs = len(ids)
	p.Metrics.AddIDs(len(ids))
	fmt.Fprintf(p.Out, "Collected %d article id(s)\n", len(ids))

	articles, err := p.Client.FetchDetails(ctx, ids)
	if err != nil {
		return res, fmt.Errorf("fetching details: %w", err)
	}
	res.Fetched = len(articles)
	p.Metrics.AddFetched(len(articles))
	fmt.Fprintf(p.Out, "Fetched %d article record(s)\n", len(articles))

	agg := aggregate.New(cfg.Query.Keywords, log)
	res.Aggregate = agg
	for _, article := range articles {
		out := agg.Add(article)
		if out.Accepted {
			p.Metrics.Accepted()
			continue
		}
		p.Metrics.Rejected(rejectReason(out.Warnings))
	}
	p.Metrics.SetAuthors(agg.Len())

	stats := agg.Stats()
	log.Info("harvest finished",
		"ids", res.IDs, "fetched", res.Fetched,
		"accepted", stats.Accepted, "rejected", stats.Rejected, "authors", agg.Len())
	return res, nil
}

// rejectReason picks the warning that caused a rejection. A complex-title
// warning never rejects on its own, so the last warning is the cause.
func rejectReason(ws []aggregate.Warning) string {
	if len(ws) == 0 {
		return "unknown"
	}
	return string(ws[len(ws)-1].Kind)
}

// PrintSummary writes a table of authors with their affiliation and title
// counts, truncated to limit rows when limit > 0.
func PrintSummary(w io.Writer, r *types.Report, limit int) {
	fmt.Fprintf(w, "\nRun %s: %d ids, %d fetched, %d accepted, %d rejected, %d authors\n",
		r.RunID, r.Stats.IDsCollected, r.Stats.ArticlesFetched,
		r.Stats.ArticlesAccepted, r.Stats.ArticlesRejected, r.Stats.Authors)
	if len(r.Authors) == 0 {
		fmt.Fprintln(w, "No authors matched.")
		return
	}

	fmt.Fprintf(w, "%-40s  %5s  %6s  %s\n", "Author", "Affil", "Titles", "First affiliation")
	fmt.Fprintln(w, strings.Repeat("-", 100))

	for i, a := range r.Authors {
		if limit > 0 && i == limit {
			fmt.Fprintf(w, "... %d more\n", len(r.Authors)-limit)
			break
		}
		first := ""
		if len(a.Affiliations) > 0 {
			first = a.Affiliations[0]
		}
		fmt.Fprintf(w, "%-40s  %5d  %6d  %s\n",
			truncate(a.Name, 40), len(a.Affiliations), len(a.Titles), truncate(first, 48))
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
