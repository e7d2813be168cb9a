package status

import "fmt"

// Policy decides which non-failure outcomes break the build. The zero value
// escalates nothing but Failed.
type Policy struct {
	SkippedFailsBuild   bool `json:"skipped_fails_build" yaml:"skipped"`
	PendingFailsBuild   bool `json:"pending_fails_build" yaml:"pending"`
	UndefinedFailsBuild bool `json:"undefined_fails_build" yaml:"undefined"`
	MissingFailsBuild   bool `json:"missing_fails_build" yaml:"missing"`
}

// Escalates reports whether the presence of o among children forces a Failed
// verdict under p.
func (p Policy) Escalates(o Outcome) bool {
	switch o {
	case Failed:
		return true
	case Skipped:
		return p.SkippedFailsBuild
	case Pending:
		return p.PendingFailsBuild
	case Undefined:
		return p.UndefinedFailsBuild
	case Missing:
		return p.MissingFailsBuild
	default:
		return false
	}
}

// Aggregate computes the verdict for a collection of child outcomes. The
// result is Failed when any child is Failed or when any child's kind is
// escalated by p, and Passed otherwise, including for an empty collection.
//
// This is not a severity maximum: a collection made only of Skipped outcomes
// passes unless p escalates Skipped. Aggregate applies unchanged at every
// level, so scenario verdicts can be folded into a feature verdict and
// feature verdicts into a run verdict.
//
// Aggregate panics on an outcome outside the known set; such values must be
// rejected when results are decoded.
func Aggregate(outcomes []Outcome, p Policy) Outcome {
	var present [Failed + 1]bool
	for _, o := range outcomes {
		if !o.Valid() {
			panic(fmt.Sprintf("status: aggregate over invalid outcome %d", int(o)))
		}
		present[o] = true
	}
	if present[Failed] {
		return Failed
	}
	for _, o := range []Outcome{Skipped, Pending, Undefined, Missing} {
		if present[o] && p.Escalates(o) {
			return Failed
		}
	}
	return Passed
}

// Worst returns the most severe outcome in outcomes, or Passed when empty. It
// is meant for display; verdicts come from Aggregate.
func Worst(outcomes []Outcome) Outcome {
	worst := Passed
	for _, o := range outcomes {
		if o > worst {
			worst = o
		}
	}
	return worst
}
