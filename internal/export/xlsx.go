// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/pdiddy/pubmed-affiliations/pkg/types"
)

const (
	summarySheet      = "Summary"
	authorsSheet      = "Authors"
	affiliationsSheet = "Affiliations"

	// maxCellChars is the Excel limit on text in one cell.
	maxCellChars = 32767
)

// WriteXLSX writes report as a workbook with a run summary sheet, one row
// per author, and one row per author/affiliation pair.
func WriteXLSX(path string, report *types.Report) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return err
	}
	summary := [][]any{
		{"Run ID", report.RunID},
		{"Term", report.Term},
		{"Keywords", strings.Join(report.Keywords, ", ")},
		{"Started At", formatCellTime(report.StartedAt)},
		{"Finished At", formatCellTime(report.FinishedAt)},
		{"IDs Collected", report.Stats.IDsCollected},
		{"Articles Fetched", report.Stats.ArticlesFetched},
		{"Articles Accepted", report.Stats.ArticlesAccepted},
		{"Articles Rejected", report.Stats.ArticlesRejected},
		{"Authors", report.Stats.Authors},
	}
	if err := writeRows(f, summarySheet, summary); err != nil {
		return err
	}

	authorRows := [][]any{{"Name", "Affiliation Count", "Title Count", "Affiliations", "Titles"}}
	pairRows := [][]any{{"Name", "Affiliation"}}
	for _, a := range report.Authors {
		authorRows = append(authorRows, []any{
			a.Name,
			len(a.Affiliations),
			len(a.Titles),
			cellText(strings.Join(a.Affiliations, "; ")),
			cellText(strings.Join(a.Titles, "; ")),
		})
		for _, aff := range a.Affiliations {
			pairRows = append(pairRows, []any{a.Name, cellText(aff)})
		}
	}
	sheets := []struct {
		name string
		rows [][]any
	}{
		{authorsSheet, authorRows},
		{affiliationsSheet, pairRows},
	}
	for _, sh := range sheets {
		if _, err := f.NewSheet(sh.name); err != nil {
			return err
		}
		if err := writeRows(f, sh.name, sh.rows); err != nil {
			return err
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving workbook: %w", err)
	}
	return nil
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("writing %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}

func cellText(s string) string {
	r := []rune(s)
	if len(r) <= maxCellChars {
		return s
	}
	return string(r[:maxCellChars-3]) + "..."
}

func formatCellTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
