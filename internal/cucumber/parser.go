package cucumber

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/bgricker/verdict/internal/report"
	"github.com/bgricker/verdict/internal/status"
)

// Warning captures non-fatal issues encountered while decoding results.
type Warning struct {
	File     string `json:"file"`
	Scenario string `json:"scenario"`
	Message  string `json:"message"`
}

// Results is the feature tree decoded from one or more cucumber JSON files.
type Results struct {
	Features []*report.Feature
	Warnings []Warning
}

// Parser loads cucumber JSON result files from disk.
type Parser struct {
	Root string
}

// NewParser constructs a Parser that resolves result paths relative to root.
func NewParser(root string) *Parser {
	return &Parser{Root: root}
}

// Parse reads the supplied result files in order.
func (p *Parser) Parse(paths []string) (Results, error) {
	var results Results
	for _, relPath := range paths {
		full := relPath
		if !filepath.IsAbs(full) {
			full = filepath.Join(p.Root, relPath)
		}
		parsed, err := parseFile(full, relPath)
		if err != nil {
			return Results{}, err
		}
		results.Features = append(results.Features, parsed.Features...)
		results.Warnings = append(results.Warnings, parsed.Warnings...)
	}
	return results, nil
}

func parseFile(fullPath, displayPath string) (Results, error) {
	f, err := os.Open(fullPath)
	if err != nil {
		return Results{}, fmt.Errorf("open results %q: %w", displayPath, err)
	}
	defer f.Close()
	return Decode(f, displayPath)
}

// Decode reads one cucumber JSON document. ANSI colour codes and runner log
// lines printed before the document are discarded. A step without a result
// is Missing; any step status outside the known outcomes fails the decode.
func Decode(r io.Reader, displayPath string) (Results, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Results{}, fmt.Errorf("read results %q: %w", displayPath, err)
	}
	data = bytes.TrimSpace(stripANSICodes(data))
	if len(data) == 0 {
		return Results{}, nil
	}

	docs, err := locateDocuments(data)
	if err != nil {
		return Results{}, fmt.Errorf("parse results %q: %w", displayPath, err)
	}

	var results Results
	for _, doc := range docs {
		feature, warnings, err := convertFeature(doc, displayPath)
		if err != nil {
			return Results{}, err
		}
		results.Features = append(results.Features, feature)
		results.Warnings = append(results.Warnings, warnings...)
	}
	return results, nil
}

func convertFeature(doc featureDocument, displayPath string) (*report.Feature, []Warning, error) {
	header := report.FeatureHeader{
		URI:         doc.URI,
		ID:          doc.ID,
		Name:        doc.Name,
		Keyword:     doc.Keyword,
		Description: doc.Description,
		Line:        doc.Line,
	}
	if header.Name == "" {
		header.Name = filepath.Base(firstNonEmpty(doc.URI, displayPath))
	}

	warnings := make([]Warning, 0)
	if len(doc.Elements) == 0 {
		warnings = append(warnings, Warning{File: displayPath, Message: fmt.Sprintf("feature %q has no scenarios", header.Name)})
	}

	seen := make(map[string]struct{}, len(doc.Elements))
	elements := make([]*report.Element, 0, len(doc.Elements))
	for _, elDoc := range doc.Elements {
		label := firstNonEmpty(elDoc.Name, elDoc.Keyword, fmt.Sprintf("line %d", elDoc.Line))

		steps := make([]report.Step, 0, len(elDoc.Steps))
		for idx, stepDoc := range elDoc.Steps {
			if stepDoc.Result == nil {
				warnings = append(warnings, Warning{File: displayPath, Scenario: label, Message: fmt.Sprintf("step %q has no result", stepLabel(stepDoc, idx))})
			}
			step, err := convertStep(stepDoc, idx)
			if err != nil {
				return nil, nil, fmt.Errorf("parse results %q: feature %q: scenario %q: %w", displayPath, header.Name, label, err)
			}
			steps = append(steps, step)
		}

		if len(steps) == 0 {
			warnings = append(warnings, Warning{File: displayPath, Scenario: label, Message: "scenario has no steps"})
		}
		if len(elDoc.Before) > 0 || len(elDoc.After) > 0 {
			warnings = append(warnings, Warning{File: displayPath, Scenario: label, Message: "hook results are not part of the verdict"})
		}
		if elDoc.ID != "" {
			if _, dup := seen[elDoc.ID]; dup {
				warnings = append(warnings, Warning{File: displayPath, Scenario: label, Message: fmt.Sprintf("duplicate scenario id %q", elDoc.ID)})
			}
			seen[elDoc.ID] = struct{}{}
		}

		elements = append(elements, report.NewElement(report.Header{
			ID:          elDoc.ID,
			Name:        elDoc.Name,
			Keyword:     elDoc.Keyword,
			Description: elDoc.Description,
			Line:        elDoc.Line,
		}, steps, convertTags(elDoc.Tags)))
	}

	return report.NewFeature(header, elements, convertTags(doc.Tags)), warnings, nil
}

func convertStep(doc stepDocument, idx int) (report.Step, error) {
	name := stepLabel(doc, idx)
	if doc.Result == nil {
		return report.Step{Keyword: doc.Keyword, Name: name, Line: doc.Line, Outcome: status.Missing}, nil
	}
	outcome, err := status.Parse(doc.Result.Status)
	if err != nil {
		return report.Step{}, fmt.Errorf("step %q: %w", name, err)
	}
	return report.Step{
		Keyword:      doc.Keyword,
		Name:         name,
		Line:         doc.Line,
		Outcome:      outcome,
		Duration:     time.Duration(doc.Result.Duration),
		ErrorMessage: doc.Result.ErrorMessage,
	}, nil
}

func stepLabel(doc stepDocument, idx int) string {
	if doc.Name == "" {
		return fmt.Sprintf("step %d", idx+1)
	}
	return doc.Name
}

func convertTags(docs []tagDocument) []report.Tag {
	if len(docs) == 0 {
		return nil
	}
	tags := make([]report.Tag, 0, len(docs))
	for _, doc := range docs {
		if doc.Name == "" {
			continue
		}
		tags = append(tags, report.Tag{Name: doc.Name, Line: doc.Line})
	}
	return tags
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// locateDocuments finds the feature array in runner output. Build tools
// print log lines such as "[INFO] Running" before the report, so every line
// that opens with '[' is tried until one decodes. Output that is a single
// feature object is accepted as a one-feature report. The error from the first
// candidate is returned when none decodes.
func locateDocuments(data []byte) ([]featureDocument, error) {
	var firstErr error
	if data[0] == '{' {
		var doc featureDocument
		err := json.NewDecoder(bytes.NewReader(data)).Decode(&doc)
		if err == nil && (doc.URI != "" || doc.Keyword != "" || doc.Elements != nil) {
			return []featureDocument{doc}, nil
		}
		firstErr = err
	}

	for rest := data; len(rest) > 0; {
		line := bytes.TrimLeft(rest, " \t\r")
		if len(line) > 0 && line[0] == '[' {
			var docs []featureDocument
			err := json.NewDecoder(bytes.NewReader(line)).Decode(&docs)
			if err == nil {
				return docs, nil
			}
			if firstErr == nil {
				firstErr = err
			}
		}
		next := bytes.IndexByte(rest, '\n')
		if next < 0 {
			break
		}
		rest = rest[next+1:]
	}
	if firstErr == nil {
		firstErr = errors.New("no cucumber JSON array found")
	}
	return nil, firstErr
}

func stripANSICodes(data []byte) []byte {
	out := make([]byte, 0, len(data))
	for i := 0; i < len(data); {
		if data[i] == 0x1b && i+1 < len(data) && data[i+1] == '[' {
			i += 2
			for i < len(data) {
				ch := data[i]
				i++
				if ch >= 0x40 && ch <= 0x7e {
					break
				}
			}
			continue
		}
		out = append(out, data[i])
		i++
	}
	return out
}

type featureDocument struct {
	URI         string            `json:"uri"`
	ID          string            `json:"id"`
	Keyword     string            `json:"keyword"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Line        int               `json:"line"`
	Tags        []tagDocument     `json:"tags"`
	Elements    []elementDocument `json:"elements"`
}

type elementDocument struct {
	ID          string            `json:"id"`
	Keyword     string            `json:"keyword"`
	Type        string            `json:"type"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Line        int               `json:"line"`
	Tags        []tagDocument     `json:"tags"`
	Steps       []stepDocument    `json:"steps"`
	Before      []json.RawMessage `json:"before"`
	After       []json.RawMessage `json:"after"`
}

type stepDocument struct {
	Keyword string          `json:"keyword"`
	Name    string          `json:"name"`
	Line    int             `json:"line"`
	Result  *resultDocument `json:"result"`
}

type resultDocument struct {
	Status       string `json:"status"`
	Duration     int64  `json:"duration"`
	ErrorMessage string `json:"error_message"`
}

type tagDocument struct {
	Name string `json:"name"`
	Line int    `json:"line"`
}
