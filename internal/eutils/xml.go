// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package eutils

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/pdiddy/pubmed-affiliations/pkg/types"
)

// esearch response XML structures.
type eSearchResult struct {
	XMLName xml.Name `xml:"eSearchResult"`
	Count   string   `xml:"Count"`
	IDList  *idList  `xml:"IdList"`
	Error   string   `xml:"ERROR"`
}

type idList struct {
	IDs []string `xml:"Id"`
}

// efetch response XML structures.
type pubmedArticleSet struct {
	XMLName  xml.Name        `xml:"PubmedArticleSet"`
	Articles []pubmedArticle `xml:"PubmedArticle"`
}

type pubmedArticle struct {
	Citation medlineCitation `xml:"MedlineCitation"`
}

type medlineCitation struct {
	PMID    string        `xml:"PMID"`
	Article medlineRecord `xml:"Article"`
}

type medlineRecord struct {
	Journal journal         `xml:"Journal"`
	Title   articleTitle    `xml:"ArticleTitle"`
	Authors []medlineAuthor `xml:"AuthorList>Author"`
}

type journal struct {
	Title string `xml:"Title"`
	Year  string `xml:"JournalIssue>PubDate>Year"`
}

type medlineAuthor struct {
	LastName       string   `xml:"LastName"`
	ForeName       string   `xml:"ForeName"`
	Initials       string   `xml:"Initials"`
	CollectiveName string   `xml:"CollectiveName"`
	Affiliations   []string `xml:"AffiliationInfo>Affiliation"`
}

// articleTitle decodes ArticleTitle into either a plain or a structured
// types.Title depending on whether the element has child elements.
type articleTitle struct {
	value types.Title
}

func (t *articleTitle) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	var own, full strings.Builder
	var markup []types.Markup

	for {
		tok, err := d.Token()
		if err != nil {
			return fmt.Errorf("reading %s: %w", start.Name.Local, err)
		}
		switch tok := tok.(type) {
		case xml.CharData:
			own.Write(tok)
			full.Write(tok)
		case xml.StartElement:
			text, err := elementText(d)
			if err != nil {
				return err
			}
			markup = append(markup, types.Markup{Tag: tok.Name.Local, Text: text})
			full.WriteString(text)
		case xml.EndElement:
			if len(markup) == 0 {
				t.value = types.PlainTitle(own.String())
				return nil
			}
			text := own.String()
			if strings.TrimSpace(text) == "" {
				text = ""
			}
			t.value = types.StructuredTitle(text, full.String(), markup...)
			return nil
		}
	}
}

// elementText collects the character data of the element whose start tag
// was just read, descending into nested elements.
func elementText(d *xml.Decoder) (string, error) {
	var b strings.Builder
	depth := 1
	for depth > 0 {
		tok, err := d.Token()
		if err != nil {
			return "", err
		}
		switch tok := tok.(type) {
		case xml.CharData:
			b.Write(tok)
		case xml.StartElement:
			depth++
		case xml.EndElement:
			depth--
		}
	}
	return b.String(), nil
}

func decodeSearch(body []byte) (*eSearchResult, error) {
	var res eSearchResult
	if err := newDecoder(body).Decode(&res); err != nil {
		return nil, fmt.Errorf("parsing esearch response: %w", err)
	}
	return &res, nil
}

func decodeArticles(body []byte) ([]types.Article, error) {
	var set pubmedArticleSet
	if err := newDecoder(body).Decode(&set); err != nil {
		return nil, fmt.Errorf("parsing efetch response: %w", err)
	}

	articles := make([]types.Article, 0, len(set.Articles))
	for _, pa := range set.Articles {
		rec := pa.Citation.Article
		a := types.Article{
			PMID:    strings.TrimSpace(pa.Citation.PMID),
			Title:   rec.Title.value,
			Journal: strings.TrimSpace(rec.Journal.Title),
			Year:    strings.TrimSpace(rec.Journal.Year),
		}
		for _, au := range rec.Authors {
			a.Authors = append(a.Authors, types.Author{
				LastName:       strings.TrimSpace(au.LastName),
				ForeName:       strings.TrimSpace(au.ForeName),
				Initials:       strings.TrimSpace(au.Initials),
				CollectiveName: strings.TrimSpace(au.CollectiveName),
				Affiliations:   trimAll(au.Affiliations),
			})
		}
		articles = append(articles, a)
	}
	return articles, nil
}

func trimAll(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// newDecoder returns a decoder that tolerates the PubMed DOCTYPE and the
// HTML entities NCBI sometimes leaves in titles.
func newDecoder(body []byte) *xml.Decoder {
	d := xml.NewDecoder(bytes.NewReader(body))
	d.Strict = false
	d.Entity = xml.HTMLEntity
	return d
}
