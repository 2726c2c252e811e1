// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package aggregate

import (
	"fmt"
	"strings"

	"github.com/pdiddy/pubmed-affiliations/pkg/types"
)

// WarningKind names a non-fatal validation finding.
type WarningKind string

const (
	// WarnMissingTitle: the article has no usable title and is skipped.
	WarnMissingTitle WarningKind = "missing_title"
	// WarnKeywordMismatch: no keyword occurs in the title; the article is skipped.
	WarnKeywordMismatch WarningKind = "keyword_mismatch"
	// WarnComplexTitle: a structured title has no primary text. The article
	// is still validated against the flattened title text.
	WarnComplexTitle WarningKind = "complex_title"
)

// Warning is a validation finding for one article. Warnings are logged and
// never abort a run.
type Warning struct {
	Kind  WarningKind
	PMID  string
	Title string
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: pmid=%s title=%q", w.Kind, w.PMID, w.Title)
}

// NormalizeTitle returns the trimmed, lowercased title text. A structured
// title contributes its primary text; when that is empty the full text is
// used instead and flattened is true.
func NormalizeTitle(t types.Title) (normalized string, flattened bool) {
	text := t.Text
	if t.IsStructured() && strings.TrimSpace(text) == "" {
		text = t.String()
		flattened = true
	}
	return strings.ToLower(strings.TrimSpace(text)), flattened
}

// ValidateTitle reports whether normalized is non-empty and contains at
// least one keyword, compared case-insensitively.
func ValidateTitle(normalized string, keywords []string) bool {
	if normalized == "" {
		return false
	}
	normalized = strings.ToLower(normalized)
	for _, kw := range keywords {
		if strings.Contains(normalized, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

// FormatAuthorName returns the aggregate key for an author:
// "<given> <last>" when both are present, else the last name, else the
// collective name, else "".
func FormatAuthorName(a types.Author) string {
	last := strings.TrimSpace(a.LastName)
	given := strings.TrimSpace(a.ForeName)
	switch {
	case last != "" && given != "":
		return given + " " + last
	case last != "":
		return last
	default:
		return strings.TrimSpace(a.CollectiveName)
	}
}

// TitleYear renders the "title (year)" string stored per author. A blank
// year yields "title ()".
func TitleYear(title, year string) string {
	return fmt.Sprintf("%s (%s)", title, year)
}
