// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package harvest

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/pubmed-affiliations/internal/eutils"
	"github.com/pdiddy/pubmed-affiliations/internal/metrics"
	"github.com/pdiddy/pubmed-affiliations/pkg/types"
)

const searchXML = `<eSearchResult><Count>3</Count><IdList><Id>1</Id><Id>2</Id><Id>3</Id></IdList></eSearchResult>`

const fetchXML = `<PubmedArticleSet>
<PubmedArticle><MedlineCitation><PMID>1</PMID><Article>
  <Journal><JournalIssue><PubDate><Year>2020</Year></PubDate></JournalIssue></Journal>
  <ArticleTitle>A Study of Gene X Regulation</ArticleTitle>
  <AuthorList>
    <Author><LastName>Smith</LastName><ForeName>Jane</ForeName>
      <AffiliationInfo><Affiliation>MIT</Affiliation></AffiliationInfo></Author>
  </AuthorList>
</Article></MedlineCitation></PubmedArticle>
<PubmedArticle><MedlineCitation><PMID>2</PMID><Article>
  <ArticleTitle>Protein folding dynamics</ArticleTitle>
  <AuthorList><Author><LastName>Lee</LastName></Author></AuthorList>
</Article></MedlineCitation></PubmedArticle>
<PubmedArticle><MedlineCitation><PMID>3</PMID><Article>
  <AuthorList><Author><LastName>Kim</LastName></Author></AuthorList>
</Article></MedlineCitation></PubmedArticle>
</PubmedArticleSet>`

type fakeServer struct {
	searchXML string
	searches  atomic.Int32
	fetches   atomic.Int32
}

func (s *fakeServer) handler(w http.ResponseWriter, r *http.Request) {
	switch {
	case strings.HasSuffix(r.URL.Path, "esearch.fcgi"):
		s.searches.Add(1)
		io.WriteString(w, s.searchXML)
	case strings.HasSuffix(r.URL.Path, "efetch.fcgi"):
		s.fetches.Add(1)
		io.WriteString(w, fetchXML)
	default:
		http.NotFound(w, r)
	}
}

func newTestPipeline(t *testing.T, srv *fakeServer, m *metrics.Collector) (*Pipeline, *bytes.Buffer) {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(srv.handler))
	t.Cleanup(ts.Close)

	cfg := types.DefaultHarvestConfig()
	cfg.BaseURL = ts.URL
	cfg.APIKey = "test-key"
	cfg.Delay = 0
	cfg.Retry.Delay = 0

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	var out bytes.Buffer
	return New(eutils.NewClient(cfg, ts.Client(), logger), m, logger, &out), &out
}

func TestRun_EndToEnd(t *testing.T) {
	srv := &fakeServer{searchXML: searchXML}
	m := metrics.New()
	p, out := newTestPipeline(t, srv, m)

	res, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.NotEmpty(t, res.RunID)
	assert.Equal(t, 3, res.IDs)
	assert.Equal(t, 3, res.Fetched)
	assert.Equal(t, int32(1), srv.searches.Load())
	assert.Equal(t, int32(1), srv.fetches.Load())
	assert.False(t, res.FinishedAt.Before(res.StartedAt))

	report := res.Report()
	assert.Equal(t, types.RunStats{
		IDsCollected:     3,
		ArticlesFetched:  3,
		ArticlesAccepted: 1,
		ArticlesRejected: 2,
		Authors:          1,
	}, report.Stats)
	require.Len(t, report.Authors, 1)
	assert.Equal(t, types.AuthorSummary{
		Name:         "Jane Smith",
		Affiliations: []string{"MIT"},
		Titles:       []string{"a study of gene x regulation (2020)"},
	}, report.Authors[0])

	assert.Contains(t, out.String(), "Collected 3 article id(s)")

	expected := `
# HELP pubmed_affiliations_articles_rejected_total Articles excluded from the aggregate, by reason.
# TYPE pubmed_affiliations_articles_rejected_total counter
pubmed_affiliations_articles_rejected_total{reason="keyword_mismatch"} 1
pubmed_affiliations_articles_rejected_total{reason="missing_title"} 1
`
	assert.NoError(t, testutil.GatherAndCompare(m.Gatherer(), strings.NewReader(expected),
		"pubmed_affiliations_articles_rejected_total"))

	expected = `
# HELP pubmed_affiliations_requests_total E-utilities request attempts by endpoint and outcome.
# TYPE pubmed_affiliations_requests_total counter
pubmed_affiliations_requests_total{endpoint="efetch.fcgi",outcome="success"} 1
pubmed_affiliations_requests_total{endpoint="esearch.fcgi",outcome="success"} 1
`
	assert.NoError(t, testutil.GatherAndCompare(m.Gatherer(), strings.NewReader(expected),
		"pubmed_affiliations_requests_total"))
}

func TestRun_NoResultsSkipsFetch(t *testing.T) {
	srv := &fakeServer{searchXML: `<eSearchResult><Count>0</Count></eSearchResult>`}
	p, _ := newTestPipeline(t, srv, nil)

	res, err := p.Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, eutils.ErrNoResults)
	assert.Equal(t, int32(0), srv.fetches.Load(), "no efetch after an empty search")
	assert.Nil(t, res.Aggregate)
}

func TestRun_RecordsFailedRun(t *testing.T) {
	srv := &fakeServer{searchXML: `<eSearchResult><Count>0</Count></eSearchResult>`}
	m := metrics.New()
	p, _ := newTestPipeline(t, srv, m)

	_, err := p.Run(context.Background())
	require.Error(t, err)

	expected := `
# HELP pubmed_affiliations_last_run_success 1 if the last run finished without error, else 0.
# TYPE pubmed_affiliations_last_run_success gauge
pubmed_affiliations_last_run_success 0
`
	assert.NoError(t, testutil.GatherAndCompare(m.Gatherer(), strings.NewReader(expected),
		"pubmed_affiliations_last_run_success"))
}

func TestPrintSummary(t *testing.T) {
	r := &types.Report{
		RunID: "run-1",
		Stats: types.RunStats{IDsCollected: 2, ArticlesFetched: 2, ArticlesAccepted: 2, Authors: 2},
		Authors: []types.AuthorSummary{
			{Name: "Jane Smith", Affiliations: []string{"MIT"}, Titles: []string{"t (2020)"}},
			{Name: "Tom Lee", Titles: []string{"t (2020)"}},
		},
	}

	var buf bytes.Buffer
	PrintSummary(&buf, r, 1)
	got := buf.String()

	assert.Contains(t, got, "Run run-1: 2 ids, 2 fetched, 2 accepted, 0 rejected, 2 authors")
	assert.Contains(t, got, "Jane Smith")
	assert.NotContains(t, got, "Tom Lee")
	assert.Contains(t, got, "... 1 more")
}

func TestPrintSummary_Empty(t *testing.T) {
	var buf bytes.Buffer
	PrintSummary(&buf, &types.Report{RunID: "run-1"}, 0)
	assert.Contains(t, buf.String(), "No authors matched.")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "Universi...", truncate("University of Somewhere", 11))
	assert.Equal(t, "Zürich ...", truncate("Zürich Institute", 10))
}
