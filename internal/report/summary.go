package report

import (
	"time"

	"github.com/bgricker/verdict/internal/status"
)

// Summary aggregates a run's results.
type Summary struct {
	TotalFeatures   int            `json:"total_features"`
	FailedFeatures  int            `json:"failed_features"`
	TotalScenarios  int            `json:"total_scenarios"`
	FailedScenarios int            `json:"failed_scenarios"`
	TotalSteps      int            `json:"total_steps"`
	Passed          int            `json:"passed"`
	Failed          int            `json:"failed"`
	Skipped         int            `json:"skipped"`
	Pending         int            `json:"pending"`
	Undefined       int            `json:"undefined"`
	Missing         int            `json:"missing"`
	Duration        time.Duration  `json:"-"`
	DurationMS      int64          `json:"duration_ms"`
	Verdict         status.Outcome `json:"verdict"`
	ExitCode        int            `json:"exit_code"`
}

// PassedFeatures returns the number of features with a passing verdict.
func (s Summary) PassedFeatures() int {
	return s.TotalFeatures - s.FailedFeatures
}

// PassedScenarios returns the number of scenarios with a passing verdict.
func (s Summary) PassedScenarios() int {
	return s.TotalScenarios - s.FailedScenarios
}

// Count returns the number of steps with outcome o.
func (s Summary) Count(o status.Outcome) int {
	switch o {
	case status.Passed:
		return s.Passed
	case status.Failed:
		return s.Failed
	case status.Skipped:
		return s.Skipped
	case status.Pending:
		return s.Pending
	case status.Undefined:
		return s.Undefined
	case status.Missing:
		return s.Missing
	default:
		return 0
	}
}

// Summarize counts features, scenarios and steps and computes the run verdict
// by folding feature verdicts under p. Backgrounds contribute steps but are
// not counted as scenarios.
func Summarize(features []*Feature, p status.Policy) Summary {
	summary := Summary{TotalFeatures: len(features)}
	verdicts := make([]status.Outcome, 0, len(features))

	for _, feature := range features {
		verdict := feature.Status(p)
		verdicts = append(verdicts, verdict)
		if verdict == status.Failed {
			summary.FailedFeatures++
		}

		for _, el := range feature.elements {
			if !el.IsBackground() {
				summary.TotalScenarios++
				if el.Status(p) == status.Failed {
					summary.FailedScenarios++
				}
			}
			for _, step := range el.steps {
				summary.TotalSteps++
				summary.Duration += step.Duration
				summary.addStep(step.Outcome)
			}
		}
	}

	summary.DurationMS = summary.Duration.Milliseconds()
	summary.Verdict = status.Aggregate(verdicts, p)
	if summary.Verdict == status.Failed {
		summary.ExitCode = 1
	}
	return summary
}

func (s *Summary) addStep(o status.Outcome) {
	switch o {
	case status.Passed:
		s.Passed++
	case status.Failed:
		s.Failed++
	case status.Skipped:
		s.Skipped++
	case status.Pending:
		s.Pending++
	case status.Undefined:
		s.Undefined++
	case status.Missing:
		s.Missing++
	}
}
