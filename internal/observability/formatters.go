// Package observability renders CLI output: boxed summaries for single
// results and tables for lists.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"github.com/jonathan/careermatch/internal/dashboard"
	"github.com/jonathan/careermatch/internal/presentation"
	"github.com/jonathan/careermatch/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// barWidth is the number of cells in a score bar
	barWidth = 20
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Score dimension labels, as the web front end shows them.
const (
	LabelSkill         = "기술 적합도"
	LabelAccessibility = "환경 적합도"
	LabelWorkType      = "근무 형태 적합도"
)

// Printer handles formatted output for the CLI
type Printer struct {
	out    io.Writer
	colors bool
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// WithColor enables or disables ANSI colors in tables.
func (p *Printer) WithColor(enabled bool) *Printer {
	p.colors = enabled
	return p
}

// printBox prints a formatted box with a title and content. Widths are
// measured in terminal cells so Hangul lines stay aligned.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	inner := boxWidth - 4
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %s │\n", fit(title, inner))
	fmt.Fprintf(p.out, "├%s┤\n", border)
	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %s │\n", fit(line, inner))
	}
	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// fit truncates or pads s to exactly width cells.
func fit(s string, width int) string {
	if runewidth.StringWidth(s) > width {
		s = runewidth.Truncate(s, width, "...")
	}
	return runewidth.FillRight(s, width)
}

// Bar renders value (0-100) as a fixed-width bar.
func Bar(value int) string {
	filled := max(0, min(barWidth, value*barWidth/100))
	return strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)
}

func scoreLines(sb *strings.Builder, s presentation.Score) {
	for _, row := range []struct {
		label string
		value int
	}{
		{LabelSkill, s.Skill},
		{LabelAccessibility, s.Accessibility},
		{LabelWorkType, s.WorkType},
	} {
		fmt.Fprintf(sb, "%s %s %3d%%\n", runewidth.FillRight(row.label, 16), Bar(row.value), row.value)
	}
}

// PrintScore outputs the presentable score for a job title.
func (p *Printer) PrintScore(jobTitle string, mode presentation.Mode, s presentation.Score) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Job:  %s\n", jobTitle)
	fmt.Fprintf(&sb, "Mode: %s\n\n", mode)
	scoreLines(&sb, s)
	p.printBox("PRESENTATION SCORE", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintExplain outputs the detailed analysis of one match.
func (p *Printer) PrintExplain(v *dashboard.ExplainView) {
	if v == nil {
		return
	}

	var sb strings.Builder
	if v.Company != "" {
		fmt.Fprintf(&sb, "Company: %s\n", v.Company)
	}
	if v.CompanyAddress != "" {
		fmt.Fprintf(&sb, "Address: %s\n", v.CompanyAddress)
	}
	if v.ImpossibleReason != "" {
		fmt.Fprintf(&sb, "지원 불가 사유: %s\n", v.ImpossibleReason)
	}
	sb.WriteString("\n")
	scoreLines(&sb, v.Scores)
	sb.WriteString("\n부족한 기술\n")
	if len(v.MissingSkills) == 0 {
		sb.WriteString("  모든 핵심 기술을 충족했습니다\n")
	} else {
		for _, s := range v.MissingSkills {
			fmt.Fprintf(&sb, "  • %s\n", s)
		}
	}
	if v.SourceURL != "" {
		fmt.Fprintf(&sb, "\nApply: %s\n", v.SourceURL)
	}

	p.printBox(v.Title, strings.TrimSuffix(sb.String(), "\n"))
}

// PrintProfile outputs the user's profile.
func (p *Printer) PrintProfile(profile *types.UserProfile, imageURL string) {
	if profile == nil {
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Name:      %s\n", profile.Name)
	fmt.Fprintf(&sb, "Major:     %s\n", orDash(profile.Major))
	fmt.Fprintf(&sb, "GPA:       %s\n", orDash(profile.GPA))
	fmt.Fprintf(&sb, "Role:      %s\n", orDash(profile.PreferredRole))
	location := ""
	if profile.Location != nil {
		location = *profile.Location
	}
	fmt.Fprintf(&sb, "Location:  %s\n", orDash(location))
	fmt.Fprintf(&sb, "Image:     %s", imageURL)

	p.printBox("PROFILE", sb.String())
}

// PrintDashboard outputs the dashboard summary: match status, skills and
// recommended courses. Matches themselves are printed with Matches.
func (p *Printer) PrintDashboard(d *dashboard.Dashboard) {
	if d == nil {
		return
	}

	var sb strings.Builder
	if d.Profile != nil {
		fmt.Fprintf(&sb, "Hello, %s\n\n", d.Profile.Name)
	}
	fmt.Fprintf(&sb, "Matching: %s (%d jobs)\n", d.Status, len(d.Matches))

	if len(d.Skills) > 0 {
		sb.WriteString("\nSkills to grow:\n")
		count := min(len(d.Skills), maxItemsToShow)
		for _, s := range d.Skills[:count] {
			fmt.Fprintf(&sb, "  • %s\n", s)
		}
		if len(d.Skills) > maxItemsToShow {
			fmt.Fprintf(&sb, "  ... and %d more\n", len(d.Skills)-maxItemsToShow)
		}
	}

	if len(d.Courses) > 0 {
		sb.WriteString("\nRecommended courses:\n")
		for _, c := range d.Courses {
			fmt.Fprintf(&sb, "  • %s (%s)\n", c.Title, c.Skill)
		}
	}

	p.printBox("DASHBOARD", strings.TrimSuffix(sb.String(), "\n"))
}

// Success prints a one-line confirmation.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) Success(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if p.colors {
		msg = color.New(color.FgGreen).Sprint(msg)
	}
	fmt.Fprintln(p.out, msg)
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
