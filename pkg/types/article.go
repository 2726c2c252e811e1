// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "strings"

// TitleKind discriminates the two shapes an article title arrives in.
type TitleKind int

const (
	// TitlePlain is a title made only of text.
	TitlePlain TitleKind = iota
	// TitleStructured is a title carrying inline markup such as <i> or <sup>.
	TitleStructured
)

// Markup is one inline element inside a structured title.
type Markup struct {
	Tag  string `json:"tag" yaml:"tag"`
	Text string `json:"text" yaml:"text"`
}

// Title is an article title as decoded from PubMed XML.
//
// For a plain title Text holds the whole title. For a structured title Text
// holds only the character data that sits directly in the title element
// (empty when the element has none), Markup lists the inline children, and
// Full is every piece of text in document order.
type Title struct {
	Kind   TitleKind `json:"kind" yaml:"kind"`
	Text   string    `json:"text" yaml:"text"`
	Full   string    `json:"full,omitempty" yaml:"full,omitempty"`
	Markup []Markup  `json:"markup,omitempty" yaml:"markup,omitempty"`
}

// PlainTitle returns a title without markup.
func PlainTitle(text string) Title {
	return Title{Kind: TitlePlain, Text: text}
}

// StructuredTitle returns a title with inline markup. text is the primary
// character data and may be empty.
func StructuredTitle(text, full string, markup ...Markup) Title {
	return Title{Kind: TitleStructured, Text: text, Full: full, Markup: markup}
}

// IsStructured reports whether the title carries inline markup.
func (t Title) IsStructured() bool { return t.Kind == TitleStructured }

// String returns the full title text in document order.
func (t Title) String() string {
	if t.Kind == TitleStructured {
		if t.Full != "" {
			return t.Full
		}
		var b strings.Builder
		b.WriteString(t.Text)
		for _, m := range t.Markup {
			b.WriteString(m.Text)
		}
		return b.String()
	}
	return t.Text
}

// Author is one entry of an article's author list.
type Author struct {
	// LastName is the family name.
	LastName string `json:"last_name,omitempty" yaml:"last_name,omitempty"`

	// ForeName is the given name.
	ForeName string `json:"fore_name,omitempty" yaml:"fore_name,omitempty"`

	// Initials as printed by PubMed.
	Initials string `json:"initials,omitempty" yaml:"initials,omitempty"`

	// CollectiveName is set for group or consortium authors.
	CollectiveName string `json:"collective_name,omitempty" yaml:"collective_name,omitempty"`

	// Affiliations lists every AffiliationInfo entry, possibly none.
	Affiliations []string `json:"affiliations,omitempty" yaml:"affiliations,omitempty"`
}

// Article holds the fields of a PubmedArticle record this tool consumes.
type Article struct {
	// PMID is the PubMed identifier.
	PMID string `json:"pmid" yaml:"pmid"`

	// Title is the ArticleTitle, plain or structured.
	Title Title `json:"title" yaml:"title"`

	// Journal is the full journal title.
	Journal string `json:"journal,omitempty" yaml:"journal,omitempty"`

	// Year is the journal issue publication year, empty when absent.
	Year string `json:"year" yaml:"year"`

	// Authors lists the article authors in source order.
	Authors []Author `json:"authors" yaml:"authors"`
}
