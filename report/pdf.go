// Copyright 2025 Complia
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package report renders finished audit data into deliverable formats.
// It performs no model calls and no I/O beyond the writer it is given.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"complia/platform/shared/types"
)

// severityColors maps overall severity to the report accent color.
var severityColors = map[types.Severity][3]int{
	types.SeverityHigh:   {192, 57, 43},
	types.SeverityMedium: {211, 132, 0},
	types.SeverityLow:    {41, 128, 185},
	types.SeverityNone:   {39, 135, 80},
}

// WritePDF renders an audit report as a PDF document.
func WritePDF(w io.Writer, score int, overall types.Severity, issues []types.Issue, sections []types.ReportSection) error {
	pdf := gofpdf.New("P", "mm", "Letter", "")
	pdf.SetAutoPageBreak(true, 20)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 10, "Audit Report", "", 1, "L", false, 0, "")
	pdf.Ln(2)

	color := severityColors[overall]
	pdf.SetTextColor(color[0], color[1], color[2])
	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(0, 8, fmt.Sprintf("Compliance Score: %d/100", score), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 8, fmt.Sprintf("Overall Severity: %s", overall), "", 1, "L", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(0, 8, "Summary of Findings", "", 1, "L", false, 0, "")
	pdf.Ln(1)
	for _, section := range sections {
		marker := "[OK]"
		if section.Flagged {
			marker = "[FLAG]"
		}
		pdf.SetFont("Helvetica", "B", 11)
		pdf.MultiCell(0, 6, fmt.Sprintf("%s %s", marker, section.Title), "", "L", false)
		pdf.SetFont("Helvetica", "", 10)
		pdf.MultiCell(0, 5, section.Content, "", "L", false)
		pdf.Ln(3)
	}

	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(0, 8, "Detailed Issues and Recommendations", "", 1, "L", false, 0, "")
	pdf.Ln(1)
	if len(issues) == 0 {
		pdf.SetFont("Helvetica", "", 10)
		pdf.MultiCell(0, 5, "No significant issues were identified.", "", "L", false)
	}
	for _, issue := range issues {
		pdf.SetFont("Helvetica", "B", 11)
		pdf.MultiCell(0, 6, fmt.Sprintf("Severity: %s", issue.Severity), "", "L", false)
		pdf.SetFont("Helvetica", "", 10)
		pdf.MultiCell(0, 5, fmt.Sprintf("Description: %s", issue.Description), "", "L", false)
		recommendation := issue.Recommendation
		if recommendation == "" {
			recommendation = "N/A"
		}
		pdf.MultiCell(0, 5, fmt.Sprintf("Recommendation: %s", recommendation), "", "L", false)
		pdf.Ln(3)
	}

	return pdf.Output(w)
}

// WriteMarkdown renders an audit report as Markdown.
func WriteMarkdown(w io.Writer, score int, issues []types.Issue, sections []types.ReportSection) error {
	var b strings.Builder

	b.WriteString("# Audit Report\n\n")
	fmt.Fprintf(&b, "**Overall Compliance Score:** %d/100\n\n", score)

	b.WriteString("## Summary of Findings\n\n")
	for _, section := range sections {
		flag := "✅"
		if section.Flagged {
			flag = "❌"
		}
		fmt.Fprintf(&b, "### %s %s\n", flag, section.Title)
		fmt.Fprintf(&b, "%s\n\n", section.Content)
	}

	b.WriteString("## Detailed Issues and Recommendations\n\n")
	if len(issues) == 0 {
		b.WriteString("No significant issues were identified.\n")
	}
	for _, issue := range issues {
		fmt.Fprintf(&b, "### Severity: %s\n", issue.Severity)
		fmt.Fprintf(&b, "**Description:** %s\n\n", issue.Description)
		fmt.Fprintf(&b, "**Recommendation:** %s\n\n", issue.Recommendation)
		b.WriteString("---\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}
