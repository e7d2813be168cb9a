package output

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/bgricker/verdict/internal/report"
	"github.com/bgricker/verdict/internal/status"
)

func sampleFeatures(t *testing.T) []*report.Feature {
	t.Helper()
	background := report.NewElement(
		report.Header{ID: "login;", Keyword: report.BackgroundKeyword, Name: "Signed out"},
		[]report.Step{{Keyword: "Given ", Name: "I am signed out", Outcome: status.Passed, Duration: time.Millisecond}},
		nil,
	)
	wrong := report.NewElement(
		report.Header{ID: "login;wrong-password", Keyword: "Scenario", Name: "Wrong password"},
		[]report.Step{
			{Keyword: "When ", Name: "I sign in", Outcome: status.Passed, Duration: 8 * time.Millisecond},
			{Keyword: "Then ", Name: "I see an error", Outcome: status.Failed, Duration: 2 * time.Millisecond, ErrorMessage: "expected error banner"},
			{Keyword: "And ", Name: "I stay put", Outcome: status.Skipped},
		},
		[]report.Tag{{Name: "@Negative"}},
	)
	if err := wrong.SetImagePath("shots/login-wrong-password.png"); err != nil {
		t.Fatalf("set image: %v", err)
	}
	pending := report.NewElement(
		report.Header{ID: "login;reset", Keyword: "Scenario", Name: "Reset password"},
		[]report.Step{
			{Keyword: "Given ", Name: "a reset link", Outcome: status.Passed},
			{Keyword: "Then ", Name: "I can reset", Outcome: status.Pending},
		},
		nil,
	)
	feature := report.NewFeature(
		report.FeatureHeader{URI: "features/login.feature", Keyword: "Feature", Name: "Login"},
		[]*report.Element{background, wrong, pending},
		[]report.Tag{{Name: "@auth"}},
	)
	return []*report.Feature{feature}
}

func TestPrettyRenderList(t *testing.T) {
	buf := &bytes.Buffer{}
	renderer := NewPretty(buf)
	if err := renderer.RenderList(sampleFeatures(t)); err != nil {
		t.Fatalf("render list: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "Feature: Login (features/login.feature) @auth") {
		t.Fatalf("expected feature header, got %q", out)
	}
	if !strings.Contains(out, "• Scenario: Wrong password @Negative") {
		t.Fatalf("expected scenario bullet, got %q", out)
	}
	if !strings.Contains(out, "• Background: Signed out") {
		t.Fatalf("expected background bullet, got %q", out)
	}
}

func TestPrettyRenderReport(t *testing.T) {
	features := sampleFeatures(t)
	policy := status.Policy{}
	summary := report.Summarize(features, policy)

	buf := &bytes.Buffer{}
	renderer := NewPretty(buf)
	if err := renderer.RenderReport(features, summary, policy); err != nil {
		t.Fatalf("render report: %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		"✗ Feature: Login",
		"✗ Scenario: Wrong password @Negative",
		"✗ Then I see an error (failed)",
		"expected error banner",
		"evidence: shots/login-wrong-password.png",
		"✓ Scenario: Reset password (worst: pending)",
		"SUMMARY: FAILED; features 0 passed, 1 failed; scenarios 1 passed, 1 failed",
		"steps 6 (3 passed, 1 skipped, 1 pending, 0 undefined, 0 missing, 1 failed)",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output, got %q", want, out)
		}
	}
	if strings.Contains(out, "I can reset") {
		t.Fatalf("pending step should not be listed without escalation, got %q", out)
	}
	if strings.Contains(out, "I stay put") {
		t.Fatalf("skipped step should not be listed without escalation, got %q", out)
	}
}

func TestPrettyRenderReportEscalated(t *testing.T) {
	features := sampleFeatures(t)
	policy := status.Policy{PendingFailsBuild: true}
	summary := report.Summarize(features, policy)

	buf := &bytes.Buffer{}
	if err := NewPretty(buf).RenderReport(features, summary, policy); err != nil {
		t.Fatalf("render report: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "✗ Scenario: Reset password (worst: pending)") {
		t.Fatalf("expected escalated scenario, got %q", out)
	}
	if !strings.Contains(out, "~ Then I can reset (pending)") {
		t.Fatalf("expected escalated step, got %q", out)
	}
}

func TestPrettyRenderReportEmpty(t *testing.T) {
	buf := &bytes.Buffer{}
	summary := report.Summarize(nil, status.Policy{})
	if err := NewPretty(buf).RenderReport(nil, summary, status.Policy{}); err != nil {
		t.Fatalf("render report: %v", err)
	}
	if !strings.HasPrefix(buf.String(), "SUMMARY: PASSED;") {
		t.Fatalf("expected vacuous pass, got %q", buf.String())
	}
}

func TestPrettyRenderKeywordlessScenario(t *testing.T) {
	el := report.NewElement(
		report.Header{ID: "orders;refund", Name: "Refund"},
		[]report.Step{{Keyword: "Then ", Name: "money returns", Outcome: status.Passed}},
		nil,
	)
	features := []*report.Feature{report.NewFeature(report.FeatureHeader{Name: "Orders"}, []*report.Element{el}, nil)}

	list := &bytes.Buffer{}
	if err := NewPretty(list).RenderList(features); err != nil {
		t.Fatalf("render list: %v", err)
	}
	if !strings.Contains(list.String(), "• Scenario: Refund") {
		t.Fatalf("expected fallback keyword in list, got %q", list.String())
	}

	policy := status.Policy{}
	out := &bytes.Buffer{}
	if err := NewPretty(out).RenderReport(features, report.Summarize(features, policy), policy); err != nil {
		t.Fatalf("render report: %v", err)
	}
	if !strings.Contains(out.String(), "✓ Scenario: Refund") {
		t.Fatalf("expected fallback keyword in report, got %q", out.String())
	}
	for _, got := range []string{list.String(), out.String()} {
		if strings.Contains(got, " : Refund") {
			t.Fatalf("label rendered without keyword: %q", got)
		}
	}
}
