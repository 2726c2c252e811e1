// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package eutils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/pubmed-affiliations/pkg/types"
)

const sampleEfetchXML = `<?xml version="1.0" ?>
<!DOCTYPE PubmedArticleSet PUBLIC "-//NLM//DTD PubMedArticle, 1st January 2024//EN" "https://dtd.nlm.nih.gov/ncbi/pubmed/out/pubmed_240101.dtd">
<PubmedArticleSet>
<PubmedArticle>
  <MedlineCitation Status="MEDLINE" Owner="NLM">
    <PMID Version="1">31000001</PMID>
    <Article PubModel="Print">
      <Journal>
        <JournalIssue CitedMedium="Internet">
          <PubDate><Year>2020</Year><Month>Mar</Month></PubDate>
        </JournalIssue>
        <Title>Nature genetics</Title>
      </Journal>
      <ArticleTitle>A Study of Gene X Regulation</ArticleTitle>
      <AuthorList CompleteYN="Y">
        <Author ValidYN="Y">
          <LastName>Smith</LastName>
          <ForeName>Jane</ForeName>
          <Initials>J</Initials>
          <AffiliationInfo><Affiliation>MIT</Affiliation></AffiliationInfo>
        </Author>
        <Author ValidYN="Y">
          <LastName>Doe</LastName>
          <AffiliationInfo><Affiliation> Harvard </Affiliation></AffiliationInfo>
          <AffiliationInfo><Affiliation>Broad Institute</Affiliation></AffiliationInfo>
        </Author>
        <Author ValidYN="Y">
          <CollectiveName>Gene Consortium</CollectiveName>
        </Author>
      </AuthorList>
    </Article>
  </MedlineCitation>
</PubmedArticle>
<PubmedArticle>
  <MedlineCitation>
    <PMID Version="1">31000002</PMID>
    <Article>
      <Journal><JournalIssue><PubDate><MedlineDate>2019 Dec-2020 Jan</MedlineDate></PubDate></JournalIssue></Journal>
      <ArticleTitle>Role of <i>BRCA1</i> in gene repair</ArticleTitle>
    </Article>
  </MedlineCitation>
</PubmedArticle>
<PubmedArticle>
  <MedlineCitation>
    <PMID Version="1">31000003</PMID>
    <Article>
      <ArticleTitle><i>In vivo</i></ArticleTitle>
    </Article>
  </MedlineCitation>
</PubmedArticle>
<PubmedArticle>
  <MedlineCitation>
    <PMID Version="1">31000004</PMID>
    <Article></Article>
  </MedlineCitation>
</PubmedArticle>
</PubmedArticleSet>`

func TestDecodeArticles(t *testing.T) {
	articles, err := decodeArticles([]byte(sampleEfetchXML))
	require.NoError(t, err)
	require.Len(t, articles, 4)

	first := articles[0]
	assert.Equal(t, "31000001", first.PMID)
	assert.Equal(t, "2020", first.Year)
	assert.Equal(t, "Nature genetics", first.Journal)
	assert.Equal(t, types.PlainTitle("A Study of Gene X Regulation"), first.Title)
	require.Len(t, first.Authors, 3)
	assert.Equal(t, types.Author{LastName: "Smith", ForeName: "Jane", Initials: "J", Affiliations: []string{"MIT"}}, first.Authors[0])
	assert.Equal(t, []string{"Harvard", "Broad Institute"}, first.Authors[1].Affiliations)
	assert.Equal(t, "Gene Consortium", first.Authors[2].CollectiveName)
	assert.Empty(t, first.Authors[2].Affiliations)
}

func TestDecodeArticles_StructuredTitle(t *testing.T) {
	articles, err := decodeArticles([]byte(sampleEfetchXML))
	require.NoError(t, err)

	title := articles[1].Title
	assert.True(t, title.IsStructured())
	assert.Equal(t, "Role of  in gene repair", title.Text)
	assert.Equal(t, "Role of BRCA1 in gene repair", title.Full)
	assert.Equal(t, []types.Markup{{Tag: "i", Text: "BRCA1"}}, title.Markup)
	assert.Equal(t, "", articles[1].Year, "MedlineDate is not a Year")
}

func TestDecodeArticles_TitleWithoutPrimaryText(t *testing.T) {
	articles, err := decodeArticles([]byte(sampleEfetchXML))
	require.NoError(t, err)

	title := articles[2].Title
	assert.True(t, title.IsStructured())
	assert.Equal(t, "", title.Text)
	assert.Equal(t, "In vivo", title.String())
}

func TestDecodeArticles_MissingTitle(t *testing.T) {
	articles, err := decodeArticles([]byte(sampleEfetchXML))
	require.NoError(t, err)

	missing := articles[3]
	assert.False(t, missing.Title.IsStructured())
	assert.Equal(t, "", missing.Title.String())
	assert.Empty(t, missing.Authors)
}

func TestDecodeArticles_EmptySet(t *testing.T) {
	articles, err := decodeArticles([]byte(`<PubmedArticleSet></PubmedArticleSet>`))
	require.NoError(t, err)
	assert.Empty(t, articles)
}

func TestDecodeArticles_HTMLEntity(t *testing.T) {
	body := `<PubmedArticleSet><PubmedArticle><MedlineCitation><PMID>1</PMID><Article>
<ArticleTitle>&beta;-catenin gene therapy &amp; repair</ArticleTitle></Article></MedlineCitation></PubmedArticle></PubmedArticleSet>`
	articles, err := decodeArticles([]byte(body))
	require.NoError(t, err)
	require.Len(t, articles, 1)
	assert.Equal(t, "β-catenin gene therapy & repair", articles[0].Title.String())
}

func TestDecodeSearch(t *testing.T) {
	res, err := decodeSearch([]byte(searchPageXML(10, 3, 42)))
	require.NoError(t, err)
	assert.Equal(t, "42", res.Count)
	require.NotNil(t, res.IDList)
	assert.Equal(t, []string{"10", "11", "12"}, res.IDList.IDs)

	res, err = decodeSearch([]byte(`<eSearchResult><Count>0</Count></eSearchResult>`))
	require.NoError(t, err)
	assert.Nil(t, res.IDList)
}
