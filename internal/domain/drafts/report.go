package drafts

import (
	"fmt"
	"io"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"ems/internal/domain/profile"
)

const reportValueWidth = 90

// WriteReport renders a review as a PDF document.
func WriteReport(w io.Writer, review *Review) error {
	if review == nil || review.Employee == nil || review.Draft == nil {
		return ErrMissingDraft
	}
	cmp := review.Comparison

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(fmt.Sprintf("Profile review %d", review.Employee.ID), true)
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, "Profile change review")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 7, fmt.Sprintf("Employee: %s (#%d)", review.Employee.FullName, review.Employee.ID))
	pdf.Ln(6)
	pdf.Cell(0, 7, fmt.Sprintf("Draft status: %s", review.Draft.Status))
	pdf.Ln(6)
	pdf.Cell(0, 7, fmt.Sprintf("Last edited: %s", review.Draft.UpdatedAt.Format("2006-01-02 15:04")))
	pdf.Ln(6)
	pdf.Cell(0, 7, fmt.Sprintf("Changed sections: %d", cmp.Total))
	pdf.Ln(10)

	if len(cmp.FieldChanges) > 0 {
		pdf.SetFont("Helvetica", "B", 13)
		pdf.Cell(0, 8, "Fields")
		pdf.Ln(9)
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(40, 7, "Field", "1", 0, "", false, 0, "")
		pdf.CellFormat(75, 7, "Current", "1", 0, "", false, 0, "")
		pdf.CellFormat(75, 7, "Proposed", "1", 1, "", false, 0, "")
		pdf.SetFont("Helvetica", "", 9)
		for _, change := range cmp.FieldChanges {
			pdf.CellFormat(40, 7, change.Section, "1", 0, "", false, 0, "")
			pdf.CellFormat(75, 7, reportValue(change.Before), "1", 0, "", false, 0, "")
			pdf.CellFormat(75, 7, reportValue(change.After), "1", 1, "", false, 0, "")
		}
		pdf.Ln(6)
	}

	sections := []struct {
		name  string
		items []reportItem
	}{
		{"contacts", reportItems(cmp.Items.Contacts)},
		{"educations", reportItems(cmp.Items.Educations)},
		{"certifications", reportItems(cmp.Items.Certifications)},
		{"languages", reportItems(cmp.Items.Languages)},
		{"technical_skills", reportItems(cmp.Items.TechnicalSkills)},
		{"projects", reportItems(cmp.Items.Projects)},
		{"children", reportItems(cmp.Items.Children)},
	}
	for _, section := range sections {
		if !hasChanges(section.items) {
			continue
		}
		pdf.SetFont("Helvetica", "B", 13)
		pdf.Cell(0, 8, section.name)
		pdf.Ln(9)
		pdf.SetFont("Helvetica", "", 9)
		for _, item := range section.items {
			if item.status == profile.StatusUnchanged {
				continue
			}
			pdf.CellFormat(25, 6, item.status, "1", 0, "", false, 0, "")
			pdf.CellFormat(165, 6, item.text, "1", 1, "", false, 0, "")
		}
		pdf.Ln(4)
	}

	if review.Draft.ReviewComment != "" {
		pdf.SetFont("Helvetica", "I", 10)
		pdf.MultiCell(0, 6, "Reviewer comment: "+review.Draft.ReviewComment, "", "", false)
	}

	return pdf.Output(w)
}

type reportItem struct {
	status string
	text   string
}

func reportItems[T any](items []profile.MatchedItem[T]) []reportItem {
	out := make([]reportItem, 0, len(items))
	for _, item := range items {
		var value any
		switch {
		case item.Draft != nil:
			value = *item.Draft
		case item.Original != nil:
			value = *item.Original
		}
		out = append(out, reportItem{status: item.Status, text: reportValue(value)})
	}
	return out
}

func hasChanges(items []reportItem) bool {
	for _, item := range items {
		if item.status != profile.StatusUnchanged {
			return true
		}
	}
	return false
}

func reportValue(v any) string {
	text, err := profile.Canonical(v)
	if err != nil {
		return "(unreadable)"
	}
	text = strings.Trim(text, `"`)
	if text == "null" {
		return "-"
	}
	if len(text) > reportValueWidth {
		return text[:reportValueWidth-3] + "..."
	}
	return text
}
