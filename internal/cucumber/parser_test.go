package cucumber

import (
	"errors"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/bgricker/verdict/internal/status"
)

func TestParserParseBasic(t *testing.T) {
	parser := NewParser("testdata")
	results, err := parser.Parse([]string{"login.json", "cart.json"})
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}

	if len(results.Features) != 2 {
		t.Fatalf("expected 2 features, got %d", len(results.Features))
	}

	login := results.Features[0]
	if login.Name != "Login" || login.URI != "features/login.feature" {
		t.Fatalf("unexpected feature header: %+v", login.FeatureHeader)
	}
	if got := slices.Collect(login.TagNames()); len(got) != 1 || got[0] != "@auth" {
		t.Fatalf("unexpected feature tags: %v", got)
	}

	elements := login.Elements()
	if len(elements) != 3 {
		t.Fatalf("expected 3 elements, got %d", len(elements))
	}
	if !elements[0].IsBackground() {
		t.Fatalf("expected first element to be a background")
	}
	if elements[1].IsBackground() {
		t.Fatalf("scenario classified as background")
	}

	wrong := elements[2]
	if wrong.Name() != "Wrong password" || wrong.ID() != "login;wrong-password" || wrong.Line() != 13 {
		t.Fatalf("unexpected element header: %+v", wrong.Header())
	}
	steps := wrong.Steps()
	if len(steps) != 3 {
		t.Fatalf("expected 3 steps, got %d", len(steps))
	}
	if steps[1].Outcome != status.Failed {
		t.Fatalf("expected failed step, got %s", steps[1].Outcome)
	}
	if steps[1].ErrorMessage != "expected error banner" {
		t.Fatalf("error message not preserved: %q", steps[1].ErrorMessage)
	}
	if steps[1].Duration != 2*time.Millisecond {
		t.Fatalf("duration not decoded as nanoseconds: %s", steps[1].Duration)
	}
	if steps[0].Keyword != "When " {
		t.Fatalf("keyword not preserved: %q", steps[0].Keyword)
	}
	if wrong.Status(status.Policy{}) != status.Failed {
		t.Fatalf("expected failed verdict")
	}

	cart := results.Features[1]
	if cart.HasTags() {
		t.Fatalf("cart feature should have no tags")
	}
	if got := cart.Status(status.Policy{}); got != status.Passed {
		t.Fatalf("cart should pass without escalation, got %s", got)
	}
	if got := cart.Status(status.Policy{PendingFailsBuild: true}); got != status.Failed {
		t.Fatalf("cart should fail with pending escalated, got %s", got)
	}
}

func TestParserUnknownStatus(t *testing.T) {
	parser := NewParser("testdata")
	_, err := parser.Parse([]string{"unknown_status.json"})
	if err == nil {
		t.Fatalf("expected error for unknown status")
	}
	if !errors.Is(err, status.ErrUnknownOutcome) {
		t.Fatalf("expected ErrUnknownOutcome, got %v", err)
	}
	for _, want := range []string{"unknown_status.json", "Search", "Ambiguous match", "a query"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("error %q does not mention %q", err, want)
		}
	}
}

func TestParserMissingFile(t *testing.T) {
	parser := NewParser("testdata")
	_, err := parser.Parse([]string{"missing.json"})
	if err == nil {
		t.Fatalf("expected error for missing results file")
	}
	if !strings.Contains(err.Error(), "open results") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestDecodeMissingResult(t *testing.T) {
	input := `[{"name":"F","elements":[{"keyword":"Scenario","name":"S","steps":[` +
		`{"keyword":"Given ","name":"a","result":{"status":"passed"}},` +
		`{"keyword":"When ","name":"b"}]}]}]`
	results, err := Decode(strings.NewReader(input), "inline.json")
	if err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}

	el := results.Features[0].Elements()[0]
	steps := el.Steps()
	if len(steps) != 2 {
		t.Fatalf("expected 2 steps, got %d", len(steps))
	}
	if steps[1].Outcome != status.Missing || steps[1].Name != "b" || steps[1].Keyword != "When " {
		t.Fatalf("expected missing step b, got %+v", steps[1])
	}
	if got := el.Status(status.Policy{}); got != status.Passed {
		t.Fatalf("missing passes without escalation, got %s", got)
	}
	if got := el.Status(status.Policy{MissingFailsBuild: true}); got != status.Failed {
		t.Fatalf("missing fails when escalated, got %s", got)
	}

	if len(results.Warnings) != 1 {
		t.Fatalf("expected 1 warning, got %+v", results.Warnings)
	}
	w := results.Warnings[0]
	if w.File != "inline.json" || w.Scenario != "S" || w.Message != `step "b" has no result` {
		t.Fatalf("unexpected warning %+v", w)
	}
}

func TestDecodeRejectsEmptyStatus(t *testing.T) {
	input := `[{"name":"F","elements":[{"keyword":"Scenario","name":"S","steps":[{"name":"a","result":{}}]}]}]`
	_, err := Decode(strings.NewReader(input), "inline.json")
	if !errors.Is(err, status.ErrUnknownOutcome) {
		t.Fatalf("expected ErrUnknownOutcome for a result without status, got %v", err)
	}
}

func TestDecodeStripsNoise(t *testing.T) {
	input := "\x1b[32mRunning features...\x1b[0m\n" +
		`[{"uri":"features/a.feature","elements":[{"keyword":"Scenario","name":"A","steps":[{"keyword":"Given ","result":{"status":"passed"}}]}]}]`

	results, err := Decode(strings.NewReader(input), "stdout")
	if err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}
	if len(results.Features) != 1 {
		t.Fatalf("expected 1 feature, got %d", len(results.Features))
	}
	feature := results.Features[0]
	if feature.Name != "a.feature" {
		t.Fatalf("expected feature name fallback to file name, got %q", feature.Name)
	}
	steps := feature.Elements()[0].Steps()
	if steps[0].Name != "step 1" {
		t.Fatalf("expected step name fallback, got %q", steps[0].Name)
	}
}

func TestDecodeSkipsBuildToolLogLines(t *testing.T) {
	cases := map[string]string{
		"maven banner": "[INFO] Running cucumber\n[INFO] Tests run: 1\n" +
			`[{"name":"F","elements":[{"keyword":"Scenario","name":"S","steps":[{"name":"a","result":{"status":"passed"}}]}]}]` +
			"\n[INFO] BUILD SUCCESS\n",
		"coloured banner": "\x1b[1m[INFO]\x1b[0m Running cucumber\n" +
			`  [{"name":"F","elements":[{"keyword":"Scenario","name":"S","steps":[{"name":"a","result":{"status":"passed"}}]}]}]`,
		"json log line": `{"level":"info","msg":"starting"}` + "\n" +
			`[{"name":"F","elements":[{"keyword":"Scenario","name":"S","steps":[{"name":"a","result":{"status":"passed"}}]}]}]`,
		"single feature object": `{"uri":"features/f.feature","name":"F","elements":[{"keyword":"Scenario","name":"S","steps":[{"name":"a","result":{"status":"passed"}}]}]}`,
	}
	for name, input := range cases {
		results, err := Decode(strings.NewReader(input), "stdout")
		if err != nil {
			t.Fatalf("%s: Decode returned error: %v", name, err)
		}
		if len(results.Features) != 1 || results.Features[0].Name != "F" {
			t.Fatalf("%s: expected feature F, got %+v", name, results.Features)
		}
		if n := len(results.Features[0].Elements()); n != 1 {
			t.Fatalf("%s: expected 1 scenario, got %d", name, n)
		}
	}
}

func TestDecodeWithoutDocument(t *testing.T) {
	for _, input := range []string{"[INFO] BUILD FAILURE", "no json here", `[{"name": }]`} {
		_, err := Decode(strings.NewReader(input), "stdout")
		if err == nil || !strings.Contains(err.Error(), `parse results "stdout"`) {
			t.Fatalf("expected parse error for %q, got %v", input, err)
		}
	}
}

func TestDecodeEmptyInput(t *testing.T) {
	results, err := Decode(strings.NewReader("  \n"), "empty.json")
	if err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}
	if len(results.Features) != 0 || len(results.Warnings) != 0 {
		t.Fatalf("expected empty results, got %+v", results)
	}
}

func TestDecodeWarnings(t *testing.T) {
	input := `[
		{"name":"Empty","elements":[]},
		{"name":"Hooks","elements":[
			{"id":"h;a","keyword":"Scenario","name":"A","before":[{"result":{"status":"passed"}}],"steps":[]},
			{"id":"h;a","keyword":"Scenario","name":"A again","steps":[{"keyword":"Given ","name":"x","result":{"status":"passed"}}]}
		]}
	]`
	results, err := Decode(strings.NewReader(input), "warn.json")
	if err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}

	messages := make([]string, 0, len(results.Warnings))
	for _, w := range results.Warnings {
		if w.File != "warn.json" {
			t.Fatalf("warning missing file: %+v", w)
		}
		messages = append(messages, w.Message)
	}
	if len(messages) != 4 {
		t.Fatalf("expected 4 warnings, got %d: %v", len(messages), messages)
	}
	mustContain(t, messages, "has no scenarios")
	mustContain(t, messages, "scenario has no steps")
	mustContain(t, messages, "hook results are not part of the verdict")
	mustContain(t, messages, "duplicate scenario id")
}

func mustContain(t *testing.T, values []string, substr string) {
	t.Helper()
	for _, v := range values {
		if strings.Contains(v, substr) {
			return
		}
	}
	t.Fatalf("expected %q in %v", substr, values)
}
