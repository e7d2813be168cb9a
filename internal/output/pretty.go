package output

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/bgricker/verdict/internal/report"
	"github.com/bgricker/verdict/internal/status"
)

// PrettyRenderer renders results in a human-friendly format. Styling is
// dropped automatically when out is not a terminal.
type PrettyRenderer struct {
	out io.Writer

	passed lipgloss.Style
	failed lipgloss.Style
	warn   lipgloss.Style
	muted  lipgloss.Style
	header lipgloss.Style
}

// NewPretty creates a PrettyRenderer writing to the provided writer.
func NewPretty(out io.Writer) *PrettyRenderer {
	r := lipgloss.NewRenderer(out)
	return &PrettyRenderer{
		out:    out,
		passed: r.NewStyle().Foreground(lipgloss.Color("2")),
		failed: r.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
		warn:   r.NewStyle().Foreground(lipgloss.Color("3")),
		muted:  r.NewStyle().Foreground(lipgloss.Color("8")),
		header: r.NewStyle().Bold(true),
	}
}

// RenderList prints the feature and scenario tree with tags.
func (p *PrettyRenderer) RenderList(features []*report.Feature) error {
	for _, feature := range features {
		if _, err := fmt.Fprintf(p.out, "%s%s\n", p.header.Render(featureLabel(feature)), p.tags(slices.Collect(feature.TagNames()))); err != nil {
			return err
		}
		for _, el := range feature.Elements() {
			if _, err := fmt.Fprintf(p.out, "  • %s%s\n", elementLabel(el), p.tags(slices.Collect(el.TagNames()))); err != nil {
				return err
			}
		}
	}
	return nil
}

// RenderReport prints each feature with its verdict, each scenario with its
// glyph, and the steps responsible for a non-passing verdict, followed by a
// summary line.
func (p *PrettyRenderer) RenderReport(features []*report.Feature, summary report.Summary, policy status.Policy) error {
	var b strings.Builder

	for _, feature := range features {
		verdict := feature.Status(policy)
		fmt.Fprintf(&b, "%s %s%s\n", p.glyph(verdict), p.header.Render(featureLabel(feature)), p.tags(slices.Collect(feature.TagNames())))

		for _, el := range feature.Elements() {
			p.writeElement(&b, el, policy)
		}
	}

	if b.Len() > 0 {
		b.WriteString("\n")
	}
	b.WriteString(p.summaryLine(summary))
	b.WriteString("\n")

	_, err := io.WriteString(p.out, b.String())
	return err
}

func (p *PrettyRenderer) writeElement(b *strings.Builder, el *report.Element, policy status.Policy) {
	verdict := el.Status(policy)
	fmt.Fprintf(b, "  %s %s%s", p.glyph(verdict), elementLabel(el), p.tags(slices.Collect(el.TagNames())))
	if worst := el.Worst(); worst != verdict {
		fmt.Fprintf(b, " %s", p.muted.Render("(worst: "+worst.String()+")"))
	}
	b.WriteString("\n")

	for _, step := range el.Steps() {
		if !policy.Escalates(step.Outcome) {
			continue
		}
		fmt.Fprintf(b, "      %s %s %s (%s)\n", p.glyph(step.Outcome), strings.TrimSpace(step.Keyword), step.Name, step.Outcome)
		if msg := strings.TrimSpace(step.ErrorMessage); msg != "" {
			b.WriteString(p.failed.Render(indent(msg, "        ")))
			b.WriteString("\n")
		}
	}

	if verdict == status.Failed {
		if image := el.ImagePath(); image != "" {
			fmt.Fprintf(b, "      evidence: %s\n", image)
		}
	}
}

func (p *PrettyRenderer) summaryLine(s report.Summary) string {
	counts := make([]string, 0, len(status.All()))
	for _, o := range status.All() {
		counts = append(counts, fmt.Sprintf("%d %s", s.Count(o), o))
	}
	return fmt.Sprintf("SUMMARY: %s; features %d passed, %d failed; scenarios %d passed, %d failed; steps %d (%s) (%s)",
		p.verdict(s.Verdict),
		s.PassedFeatures(), s.FailedFeatures,
		s.PassedScenarios(), s.FailedScenarios,
		s.TotalSteps, strings.Join(counts, ", "),
		formatDuration(s.Duration),
	)
}

func (p *PrettyRenderer) verdict(o status.Outcome) string {
	return p.style(o).Render(strings.ToUpper(o.String()))
}

func (p *PrettyRenderer) glyph(o status.Outcome) string {
	return p.style(o).Render(statusGlyph(o))
}

func (p *PrettyRenderer) style(o status.Outcome) lipgloss.Style {
	switch o {
	case status.Passed:
		return p.passed
	case status.Failed:
		return p.failed
	default:
		return p.warn
	}
}

func (p *PrettyRenderer) tags(names []string) string {
	if len(names) == 0 {
		return ""
	}
	return " " + p.muted.Render(strings.Join(names, " "))
}

func featureLabel(f *report.Feature) string {
	keyword := f.Keyword
	if keyword == "" {
		keyword = "Feature"
	}
	label := fmt.Sprintf("%s: %s", keyword, f.Name)
	if f.URI != "" && f.URI != f.Name {
		label += fmt.Sprintf(" (%s)", f.URI)
	}
	return label
}

func elementLabel(el *report.Element) string {
	keyword := el.Keyword()
	if keyword == "" {
		keyword = "Scenario"
	}
	return fmt.Sprintf("%s: %s", keyword, el.Name())
}

func statusGlyph(o status.Outcome) string {
	switch o {
	case status.Passed:
		return "✓"
	case status.Failed:
		return "✗"
	case status.Skipped:
		return "-"
	case status.Pending:
		return "~"
	case status.Undefined:
		return "?"
	case status.Missing:
		return "!"
	default:
		return "?"
	}
}

func indent(s, pad string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	lines := strings.Split(s, "\n")
	for i := range lines {
		lines[i] = pad + lines[i]
	}
	return strings.Join(lines, "\n")
}

func formatDuration(d time.Duration) string {
	if d <= 0 {
		return "0s"
	}
	if d < time.Second {
		return d.Round(time.Millisecond).String()
	}
	return d.Truncate(time.Millisecond).String()
}
