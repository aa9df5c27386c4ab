package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ppiankov/wastewise/internal/model"
)

// Renderer writes verdicts and statistics to files
type Renderer struct {
	IncludeFooter bool
}

// RenderJSON writes v as indented JSON
func (r *Renderer) RenderJSON(v any, path string) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	return writeFile(path, append(data, '\n'))
}

// RenderVerdictMarkdown writes a human-readable verdict report
func (r *Renderer) RenderVerdictMarkdown(v *model.Verdict, filename, path string) error {
	return writeFile(path, []byte(r.VerdictMarkdown(v, filename)))
}

// RenderStatsMarkdown writes a statistics report
func (r *Renderer) RenderStatsMarkdown(s *model.ClassificationStats, path string) error {
	return writeFile(path, []byte(r.StatsMarkdown(s)))
}

// VerdictMarkdown formats a verdict
func (r *Renderer) VerdictMarkdown(v *model.Verdict, filename string) string {
	var b strings.Builder

	title := v.Primary.Name
	if filename != "" {
		title = fmt.Sprintf("%s (%s)", v.Primary.Name, filename)
	}
	fmt.Fprintf(&b, "# %s\n\n", title)

	fmt.Fprintf(&b, "| | |\n|---|---|\n")
	fmt.Fprintf(&b, "| Category | %s (%s) |\n", v.Outward, v.Primary.Category)
	fmt.Fprintf(&b, "| Confidence | %d%% |\n", v.Primary.Confidence)
	fmt.Fprintf(&b, "| Points | %d |\n", v.Points)
	fmt.Fprintf(&b, "| Recyclable rate | %d%% |\n", v.RecyclableRate)
	fmt.Fprintf(&b, "| Source | %s |\n\n", v.SourceTag)

	if v.Description != "" {
		fmt.Fprintf(&b, "%s\n\n", v.Description)
	}
	if v.DisposalMethod != "" {
		fmt.Fprintf(&b, "**Disposal:** %s\n\n", v.DisposalMethod)
	}

	if len(v.AllDetections) > 1 {
		b.WriteString("## Detected items\n\n")
		for _, d := range v.AllDetections {
			fmt.Fprintf(&b, "- %s: %s, %d%% (%s)\n", d.Name, d.Category, d.Confidence, d.Source)
		}
		b.WriteString("\n")
	}

	if len(v.Tips) > 0 {
		b.WriteString("## Tips\n\n")
		for _, tip := range v.Tips {
			fmt.Fprintf(&b, "- %s\n", tip)
		}
		b.WriteString("\n")
	}

	r.footer(&b)
	return b.String()
}

// StatsMarkdown formats ledger statistics
func (r *Renderer) StatsMarkdown(s *model.ClassificationStats) string {
	var b strings.Builder

	b.WriteString("# Recycling statistics\n\n")
	fmt.Fprintf(&b, "- Classifications: %d\n", s.TotalClassifications)
	fmt.Fprintf(&b, "- Points: %d\n", s.TotalPoints)
	fmt.Fprintf(&b, "- Average recyclable rate: %.1f%%\n\n", s.AverageRecyclableRate)

	if len(s.CategoryBreakdown) > 0 {
		b.WriteString("## By category\n\n")
		for _, c := range model.OutwardCategories {
			if n := s.CategoryBreakdown[c]; n > 0 {
				fmt.Fprintf(&b, "- %s: %d\n", c, n)
			}
		}
		b.WriteString("\n")
	}

	if len(s.TopItems) > 0 {
		b.WriteString("## Top items\n\n| Item | Count | Points |\n|---|---|---|\n")
		for _, it := range s.TopItems {
			fmt.Fprintf(&b, "| %s | %d | %d |\n", it.Name, it.Count, it.Points)
		}
		b.WriteString("\n")
	}

	if len(s.WeeklyStats) > 0 {
		b.WriteString("## Last weeks\n\n| Week | Count | Points |\n|---|---|---|\n")
		for _, w := range s.WeeklyStats {
			fmt.Fprintf(&b, "| %s | %d | %d |\n", w.Label, w.Count, w.Points)
		}
		b.WriteString("\n")
	}

	e := s.EnvironmentalImpact
	b.WriteString("## Estimated impact\n\n")
	fmt.Fprintf(&b, "- Items recycled: %d\n", e.ItemsRecycled)
	fmt.Fprintf(&b, "- Items composted: %d\n", e.ItemsComposted)
	fmt.Fprintf(&b, "- Waste diverted: %.2f kg\n", e.WasteReducedKg)
	fmt.Fprintf(&b, "- CO2 saved: %.2f kg\n\n", e.CO2SavedKg)

	r.footer(&b)
	return b.String()
}

func (r *Renderer) footer(b *strings.Builder) {
	if r.IncludeFooter {
		b.WriteString("---\n_Impact figures are estimates from fixed per-item constants._\n")
	}
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
