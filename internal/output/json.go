package output

import (
	"encoding/json"
	"io"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/bgricker/verdict/internal/report"
	"github.com/bgricker/verdict/internal/runner"
	"github.com/bgricker/verdict/internal/status"
)

// JSONRenderer emits structured verdict data.
type JSONRenderer struct {
	out io.Writer
}

// NewJSON creates a JSON renderer writing to out.
func NewJSON(out io.Writer) *JSONRenderer {
	return &JSONRenderer{out: out}
}

// Report captures JSON output schema.
type Report struct {
	Verdict  *status.Outcome `json:"verdict,omitempty"`
	Policy   *status.Policy  `json:"policy,omitempty"`
	Features []Feature       `json:"features"`
	Summary  *report.Summary `json:"summary,omitempty"`
	Command  *runner.Result  `json:"command,omitempty"`
	Warnings []string        `json:"warnings,omitempty"`
}

// Feature is the JSON view of a report.Feature.
type Feature struct {
	URI      string          `json:"uri,omitempty"`
	ID       string          `json:"id,omitempty"`
	Name     string          `json:"name"`
	Line     int             `json:"line,omitempty"`
	Status   *status.Outcome `json:"status,omitempty"`
	Tags     []Tag           `json:"tags"`
	Elements []Element       `json:"elements"`
}

// Element is the JSON view of a scenario or background.
type Element struct {
	ID         string          `json:"id,omitempty"`
	Keyword    string          `json:"keyword"`
	Name       string          `json:"name"`
	Line       int             `json:"line,omitempty"`
	Background bool            `json:"background"`
	Status     *status.Outcome `json:"status,omitempty"`
	Worst      *status.Outcome `json:"worst,omitempty"`
	Tags       []Tag           `json:"tags"`
	Steps      []Step          `json:"steps"`
	Image      string          `json:"image,omitempty"`
}

// Step is the JSON view of a step result.
type Step struct {
	Keyword      string         `json:"keyword"`
	Name         string         `json:"name"`
	Line         int            `json:"line,omitempty"`
	Status       status.Outcome `json:"status"`
	DurationMS   int64          `json:"duration_ms"`
	ErrorMessage string         `json:"error_message,omitempty"`
}

// Tag carries a tag and the page it links to.
type Tag struct {
	Name string `json:"name"`
	Link string `json:"link"`
}

// Render encodes the report as JSON.
func (j *JSONRenderer) Render(report Report) error {
	enc := json.NewEncoder(j.out)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

// ListReport builds a report of the feature tree without verdicts.
func ListReport(features []*report.Feature, warnings []string) Report {
	return Report{
		Features: convertFeatures(features, nil),
		Warnings: warnings,
	}
}

// VerdictReport builds a report with every verdict computed under policy.
func VerdictReport(features []*report.Feature, summary report.Summary, policy status.Policy, warnings []string) Report {
	verdict := summary.Verdict
	return Report{
		Verdict:  &verdict,
		Policy:   &policy,
		Features: convertFeatures(features, &policy),
		Summary:  &summary,
		Warnings: warnings,
	}
}

func convertFeatures(features []*report.Feature, policy *status.Policy) []Feature {
	out := make([]Feature, 0, len(features))
	for _, f := range features {
		view := Feature{
			URI:      f.URI,
			ID:       f.ID,
			Name:     f.Name,
			Line:     f.Line,
			Tags:     convertTags(f.Tags()),
			Elements: make([]Element, 0, len(f.Elements())),
		}
		if policy != nil {
			s := f.Status(*policy)
			view.Status = &s
		}
		for _, el := range f.Elements() {
			view.Elements = append(view.Elements, convertElement(el, policy))
		}
		out = append(out, view)
	}
	return out
}

func convertElement(el *report.Element, policy *status.Policy) Element {
	view := Element{
		ID:         el.ID(),
		Keyword:    el.Keyword(),
		Name:       el.Name(),
		Line:       el.Line(),
		Background: el.IsBackground(),
		Tags:       convertTags(el.Tags()),
		Steps:      make([]Step, 0, len(el.Steps())),
		Image:      el.ImagePath(),
	}
	if policy != nil {
		s := el.Status(*policy)
		w := el.Worst()
		view.Status = &s
		view.Worst = &w
	}
	for _, step := range el.Steps() {
		view.Steps = append(view.Steps, Step{
			Keyword:      strings.TrimSpace(step.Keyword),
			Name:         step.Name,
			Line:         step.Line,
			Status:       step.Outcome,
			DurationMS:   step.Duration.Milliseconds(),
			ErrorMessage: step.ErrorMessage,
		})
	}
	return view
}

func convertTags(tags []report.Tag) []Tag {
	out := make([]Tag, 0, len(tags))
	for _, tag := range tags {
		out = append(out, Tag{Name: tag.Name, Link: TagLink(tag.Name)})
	}
	return out
}

// TagLink returns the page name for a tag: "@Smoke" links to "smoke.html".
func TagLink(name string) string {
	name = strings.TrimSpace(strings.ReplaceAll(name, "@", ""))
	return cases.Lower(language.Und).String(name) + ".html"
}
