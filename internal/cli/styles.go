package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ppiankov/wastewise/internal/model"
)

var (
	PrimaryColor = lipgloss.Color("#4ECDC4")
	SubtleColor  = lipgloss.Color("#666666")
	ErrorColor   = lipgloss.Color("#FF6B6B")

	// categoryColors tints the outward category badge
	categoryColors = map[model.OutwardCategory]lipgloss.Color{
		model.OutwardRecyclable:   lipgloss.Color("#4D96FF"),
		model.OutwardOrganic:      lipgloss.Color("#6BCB77"),
		model.OutwardHazardous:    lipgloss.Color("#FF6B6B"),
		model.OutwardGeneralWaste: lipgloss.Color("#A0A0A0"),
	}

	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(PrimaryColor)

	SubtleStyle = lipgloss.NewStyle().
			Foreground(SubtleColor)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ErrorColor)

	BoldStyle = lipgloss.NewStyle().
			Bold(true)

	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#333")).
			Padding(0, 1)

	TableHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				BorderStyle(lipgloss.NormalBorder()).
				BorderBottom(true).
				BorderForeground(lipgloss.Color("#333"))
)

const (
	SuccessIcon = "✓"
	ErrorIcon   = "✗"
)

// FormatError formats an error line
func FormatError(message string) string {
	return ErrorStyle.Render(ErrorIcon + " " + message)
}

func categoryBadge(c model.OutwardCategory) string {
	color, ok := categoryColors[c]
	if !ok {
		color = SubtleColor
	}
	return lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#000")).Background(color).Padding(0, 1).Render(string(c))
}

// renderVerdict prints a verdict as a bordered summary
func renderVerdict(w io.Writer, label string, v *model.Verdict, showAll bool) {
	var b strings.Builder

	b.WriteString(TitleStyle.Render(v.Primary.Name))
	b.WriteString("  ")
	b.WriteString(categoryBadge(v.Outward))
	if v.Cached {
		b.WriteString(SubtleStyle.Render("  (cached)"))
	}
	b.WriteString("\n")
	if label != "" {
		b.WriteString(SubtleStyle.Render(label) + "\n")
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "%s %d%%   %s %d   %s %d%%   %s %s\n",
		BoldStyle.Render("Confidence"), v.Primary.Confidence,
		BoldStyle.Render("Points"), v.Points,
		BoldStyle.Render("Recyclable"), v.RecyclableRate,
		BoldStyle.Render("Source"), v.SourceTag)

	if v.DisposalMethod != "" {
		fmt.Fprintf(&b, "\n%s %s\n", BoldStyle.Render("Disposal:"), v.DisposalMethod)
	}

	if showAll && len(v.AllDetections) > 1 {
		b.WriteString("\n" + BoldStyle.Render("Detected items") + "\n")
		for _, d := range v.AllDetections {
			fmt.Fprintf(&b, "  %-24s %-10s %3d%%\n", d.Name, d.Category, d.Confidence)
		}
	}

	if len(v.Tips) > 0 {
		b.WriteString("\n")
		for _, tip := range v.Tips {
			b.WriteString(SubtleStyle.Render("• "+tip) + "\n")
		}
	}

	fmt.Fprintln(w, BoxStyle.Render(strings.TrimRight(b.String(), "\n")))
}

// renderStats prints ledger statistics
func renderStats(w io.Writer, s *model.ClassificationStats) {
	fmt.Fprintln(w, TitleStyle.Render("Recycling statistics"))
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  Classifications   %d\n", s.TotalClassifications)
	fmt.Fprintf(w, "  Points            %d\n", s.TotalPoints)
	fmt.Fprintf(w, "  Avg recyclable    %.1f%%\n", s.AverageRecyclableRate)
	fmt.Fprintln(w)

	for _, c := range model.OutwardCategories {
		fmt.Fprintf(w, "  %s %d\n", categoryBadge(c), s.CategoryBreakdown[c])
	}
	fmt.Fprintln(w)

	if len(s.TopItems) > 0 {
		fmt.Fprintln(w, TableHeaderStyle.Render(fmt.Sprintf("  %-28s %6s %7s", "Top items", "Count", "Points")))
		for _, it := range s.TopItems {
			fmt.Fprintf(w, "  %-28s %6d %7d\n", it.Name, it.Count, it.Points)
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, TableHeaderStyle.Render(fmt.Sprintf("  %-28s %6s %7s", "Week", "Count", "Points")))
	for _, wk := range s.WeeklyStats {
		fmt.Fprintf(w, "  %-28s %6d %7d\n", wk.Label, wk.Count, wk.Points)
	}
	fmt.Fprintln(w)

	e := s.EnvironmentalImpact
	fmt.Fprintln(w, BoldStyle.Render("Estimated impact"))
	fmt.Fprintf(w, "  %d recycled, %d composted, %.2f kg waste diverted, %.2f kg CO2 saved\n",
		e.ItemsRecycled, e.ItemsComposted, e.WasteReducedKg, e.CO2SavedKg)
}

// renderRecords prints history rows, newest first
func renderRecords(w io.Writer, records []model.ClassificationRecord) {
	if len(records) == 0 {
		fmt.Fprintln(w, SubtleStyle.Render("No classifications yet"))
		return
	}

	fmt.Fprintln(w, TableHeaderStyle.Render(fmt.Sprintf("%-16s  %-24s  %-14s  %4s  %6s  %s", "When", "Item", "Category", "Conf", "Points", "File")))
	for _, r := range records {
		fmt.Fprintf(w, "%-16s  %-24s  %-14s  %3d%%  %6d  %s\n",
			r.Timestamp.Local().Format("2006-01-02 15:04"),
			truncate(r.ItemName, 24), r.Category, r.Confidence, r.Points, truncate(r.Filename, 40))
	}
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-1]) + "…"
}
