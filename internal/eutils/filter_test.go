// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package eutils

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pdiddy/pubmed-affiliations/pkg/types"
)

func TestNewSearchFilter(t *testing.T) {
	tests := []struct {
		name string
		q    types.QueryConfig
		want string
	}{
		{
			name: "all parts",
			q: types.QueryConfig{
				Terms:            "gene regulation",
				PublicationTypes: []string{"Journal Article", "Review"},
				YearFrom:         2015,
				YearTo:           2024,
			},
			want: `(gene regulation) AND ("Journal Article"[Publication Type] OR "Review"[Publication Type]) AND ("2015"[Date - Publication] : "2024"[Date - Publication])`,
		},
		{
			name: "terms only",
			q:    types.QueryConfig{Terms: "crispr"},
			want: "(crispr)",
		},
		{
			name: "blank publication types skipped",
			q:    types.QueryConfig{Terms: "crispr", PublicationTypes: []string{" ", "Review"}},
			want: `(crispr) AND ("Review"[Publication Type])`,
		},
		{
			name: "single bound year",
			q:    types.QueryConfig{Terms: "crispr", YearFrom: 2020},
			want: `(crispr) AND ("2020"[Date - Publication] : "2020"[Date - Publication])`,
		},
		{
			name: "empty",
			q:    types.QueryConfig{},
			want: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewSearchFilter(tt.q)
			assert.Equal(t, tt.want, f.String())
			assert.Equal(t, tt.want == "", f.IsEmpty())
		})
	}
}

func TestClientURLs(t *testing.T) {
	cfg := types.DefaultHarvestConfig()
	cfg.BaseURL = "https://example.org/entrez/eutils/"
	cfg.APIKey = "k"
	cfg.Email = "me@example.org"
	cfg.RetMax = 500
	c := NewClient(cfg, nil, nil)

	search := c.searchURL(NewSearchFilter(types.QueryConfig{Terms: "x"}), 1000)
	assert.Contains(t, search, "https://example.org/entrez/eutils/esearch.fcgi?")
	assert.Contains(t, search, "retmax=500")
	assert.Contains(t, search, "retstart=1000")
	assert.Contains(t, search, "api_key=k")
	assert.Contains(t, search, "db=pubmed")
	assert.Contains(t, search, "email=me%40example.org")

	fetch := c.fetchURL([]string{"1", "2", "3"})
	assert.Contains(t, fetch, "https://example.org/entrez/eutils/efetch.fcgi?")
	assert.Contains(t, fetch, "id=1%2C2%2C3")
	assert.Contains(t, fetch, "retmode=xml")
	assert.Contains(t, fetch, "api_key=k")
}
