package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"ems/internal/domain/profile"
)

var diffCmd = &cobra.Command{
	Use:   "diff <original.json> <draft.json>",
	Short: "Show the changes a draft makes to a profile",
	Long: `Compare two profile documents offline. Scalar and singleton fields are
shown before and after; repeated sections are matched record by record.`,
	Args: cobra.ExactArgs(2),
	Run:  runDiff,
}

var diffStat bool

func init() {
	diffCmd.Flags().BoolVar(&diffStat, "stat", false, "Show changed sections and item counts only")
}

func runDiff(cmd *cobra.Command, args []string) {
	original, err := loadProfile(args[0])
	if err != nil {
		exitError("%v", err)
	}
	draft, err := loadProfile(args[1])
	if err != nil {
		exitError("%v", err)
	}
	renderDiff(cmd.OutOrStdout(), profile.Compare(original, draft), diffStat)
}

// loadProfile accepts a bare profile document or an employee/draft record
// with the profile fields at the top level.
func loadProfile(path string) (*profile.Profile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var p profile.Profile
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &p, nil
}

type itemLine struct {
	status string
	text   string
}

func itemLines[T any](items []profile.MatchedItem[T]) []itemLine {
	out := make([]itemLine, 0, len(items))
	for _, item := range items {
		if item.Status == profile.StatusUnchanged {
			continue
		}
		var value any
		if item.Draft != nil {
			value = *item.Draft
		} else if item.Original != nil {
			value = *item.Original
		}
		out = append(out, itemLine{status: item.Status, text: valueText(value)})
	}
	return out
}

func valueText(v any) string {
	text, err := profile.Canonical(v)
	if err != nil {
		return "(unreadable)"
	}
	return text
}

func renderDiff(w io.Writer, cmp profile.Comparison, stat bool) {
	green := color.New(color.FgGreen)
	red := color.New(color.FgRed)
	yellow := color.New(color.FgYellow)

	if cmp.Total == 0 {
		fmt.Fprintln(w, "No changes")
		return
	}

	if stat {
		for _, name := range cmp.ChangedSections {
			yellow.Fprintf(w, " ~ %s\n", name)
		}
		counts := cmp.Summary()
		if n := counts[profile.StatusAdded]; n > 0 {
			green.Fprintf(w, " %d items added(+)\n", n)
		}
		if n := counts[profile.StatusModified]; n > 0 {
			yellow.Fprintf(w, " %d items modified(~)\n", n)
		}
		if n := counts[profile.StatusDeleted]; n > 0 {
			red.Fprintf(w, " %d items deleted(-)\n", n)
		}
		fmt.Fprintf(w, " %d sections changed\n", cmp.Total)
		return
	}

	for _, change := range cmp.FieldChanges {
		yellow.Fprintf(w, "~~~ %s\n", change.Section)
		red.Fprintf(w, "    - %s\n", valueText(change.Before))
		green.Fprintf(w, "    + %s\n", valueText(change.After))
	}

	sections := []struct {
		name  string
		lines []itemLine
	}{
		{"contacts", itemLines(cmp.Items.Contacts)},
		{"educations", itemLines(cmp.Items.Educations)},
		{"certifications", itemLines(cmp.Items.Certifications)},
		{"languages", itemLines(cmp.Items.Languages)},
		{"technical_skills", itemLines(cmp.Items.TechnicalSkills)},
		{"projects", itemLines(cmp.Items.Projects)},
		{"children", itemLines(cmp.Items.Children)},
	}
	for _, section := range sections {
		if len(section.lines) == 0 {
			continue
		}
		yellow.Fprintf(w, "~~~ %s\n", section.name)
		for _, line := range section.lines {
			switch line.status {
			case profile.StatusAdded:
				green.Fprintf(w, "    +++ %s\n", line.text)
			case profile.StatusDeleted:
				red.Fprintf(w, "    --- %s\n", line.text)
			default:
				yellow.Fprintf(w, "    ~~~ %s\n", line.text)
			}
		}
	}
	fmt.Fprintf(w, "\n%d sections changed\n", cmp.Total)
}
