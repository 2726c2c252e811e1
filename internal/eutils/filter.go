// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package eutils

import (
	"fmt"
	"strings"

	"github.com/pdiddy/pubmed-affiliations/pkg/types"
)

// SearchFilter is a composed PubMed search term. It is built once from a
// QueryConfig and never changes afterwards.
type SearchFilter struct {
	term string
}

// NewSearchFilter combines the free-text terms, the publication types
// (OR-combined), and the inclusive publication-year range with AND.
// Empty parts are left out.
func NewSearchFilter(q types.QueryConfig) SearchFilter {
	var parts []string

	if terms := strings.TrimSpace(q.Terms); terms != "" {
		parts = append(parts, "("+terms+")")
	}

	var pubTypes []string
	for _, pt := range q.PublicationTypes {
		if pt = strings.TrimSpace(pt); pt != "" {
			pubTypes = append(pubTypes, fmt.Sprintf("%q[Publication Type]", pt))
		}
	}
	if len(pubTypes) > 0 {
		parts = append(parts, "("+strings.Join(pubTypes, " OR ")+")")
	}

	if q.YearFrom > 0 || q.YearTo > 0 {
		from, to := q.YearFrom, q.YearTo
		if from == 0 {
			from = to
		}
		if to == 0 {
			to = from
		}
		parts = append(parts, fmt.Sprintf(`("%d"[Date - Publication] : "%d"[Date - Publication])`, from, to))
	}

	return SearchFilter{term: strings.Join(parts, " AND ")}
}

// String returns the term as sent in the esearch "term" parameter.
func (f SearchFilter) String() string { return f.term }

// IsEmpty reports whether the filter has no constraints at all.
func (f SearchFilter) IsEmpty() bool { return f.term == "" }
