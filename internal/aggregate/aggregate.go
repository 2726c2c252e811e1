// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package aggregate filters articles by title keyword and builds the
// author → {affiliations, titles} mapping.
package aggregate

import (
	"log/slog"
	"sort"

	"github.com/pdiddy/pubmed-affiliations/pkg/types"
)

type set map[string]struct{}

func (s set) add(v string) { s[v] = struct{}{} }

func (s set) sorted() []string {
	out := make([]string, 0, len(s))
	for v := range s {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// Entry holds the distinct affiliations and "title (year)" strings of one
// author.
type Entry struct {
	affiliations set
	titles       set
}

// Affiliations returns the author's affiliations, sorted.
func (e *Entry) Affiliations() []string { return e.affiliations.sorted() }

// Titles returns the author's "title (year)" strings, sorted.
func (e *Entry) Titles() []string { return e.titles.sorted() }

// HasAffiliation reports whether aff has been recorded for the author.
func (e *Entry) HasAffiliation(aff string) bool {
	_, ok := e.affiliations[aff]
	return ok
}

// HasTitle reports whether titleYear has been recorded for the author.
func (e *Entry) HasTitle(titleYear string) bool {
	_, ok := e.titles[titleYear]
	return ok
}

// Outcome describes what Add did with one article.
type Outcome struct {
	Accepted bool
	Warnings []Warning
}

// Stats counts articles seen by an Aggregate.
type Stats struct {
	Accepted int
	Rejected int
}

// Aggregate maps formatted author names to their entries. Entries are only
// ever created and grown. It is not safe for concurrent use.
type Aggregate struct {
	keywords []string
	entries  map[string]*Entry
	stats    Stats
	logger   *slog.Logger
}

// New returns an empty Aggregate that keeps articles whose title contains
// any of keywords.
func New(keywords []string, logger *slog.Logger) *Aggregate {
	if logger == nil {
		logger = slog.Default()
	}
	return &Aggregate{
		keywords: keywords,
		entries:  make(map[string]*Entry),
		logger:   logger,
	}
}

// Add validates article and, when it passes, records its title and each
// named author's affiliations. Adding the same article twice changes
// nothing the second time except Stats.
func (a *Aggregate) Add(article types.Article) Outcome {
	var out Outcome

	title, flattened := NormalizeTitle(article.Title)
	if flattened {
		out.Warnings = append(out.Warnings, a.warn(WarnComplexTitle, article, article.Title.String()))
	}
	if title == "" {
		out.Warnings = append(out.Warnings, a.warn(WarnMissingTitle, article, ""))
		a.stats.Rejected++
		return out
	}
	if !ValidateTitle(title, a.keywords) {
		out.Warnings = append(out.Warnings, a.warn(WarnKeywordMismatch, article, title))
		a.stats.Rejected++
		return out
	}

	titleYear := TitleYear(title, article.Year)
	for _, author := range article.Authors {
		name := FormatAuthorName(author)
		if name == "" {
			continue
		}
		e, ok := a.entries[name]
		if !ok {
			e = &Entry{affiliations: set{}, titles: set{}}
			a.entries[name] = e
		}
		e.titles.add(titleYear)
		for _, aff := range author.Affiliations {
			e.affiliations.add(aff)
		}
	}

	a.stats.Accepted++
	out.Accepted = true
	return out
}

// AddAll adds every article in order.
func (a *Aggregate) AddAll(articles []types.Article) {
	for _, art := range articles {
		a.Add(art)
	}
}

func (a *Aggregate) warn(kind WarningKind, article types.Article, title string) Warning {
	w := Warning{Kind: kind, PMID: article.PMID, Title: title}
	a.logger.Warn("article validation", "kind", string(kind), "pmid", article.PMID, "title", title)
	return w
}

// Len returns the number of authors.
func (a *Aggregate) Len() int { return len(a.entries) }

// Stats returns accepted and rejected article counts.
func (a *Aggregate) Stats() Stats { return a.stats }

// Entry returns the entry for name.
func (a *Aggregate) Entry(name string) (*Entry, bool) {
	e, ok := a.entries[name]
	return e, ok
}

// Names returns every author name, sorted.
func (a *Aggregate) Names() []string {
	names := make([]string, 0, len(a.entries))
	for name := range a.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Snapshot returns the aggregate as sorted summaries for output writers.
func (a *Aggregate) Snapshot() []types.AuthorSummary {
	names := a.Names()
	out := make([]types.AuthorSummary, 0, len(names))
	for _, name := range names {
		e := a.entries[name]
		out = append(out, types.AuthorSummary{
			Name:         name,
			Affiliations: e.Affiliations(),
			Titles:       e.Titles(),
		})
	}
	return out
}
