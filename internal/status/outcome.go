package status

import (
	"errors"
	"fmt"
	"strings"
)

// Outcome is the result of executing a step, or the verdict computed for a
// scenario, feature or run. Values are ordered by severity.
type Outcome int

const (
	// Passed indicates success.
	Passed Outcome = iota
	// Skipped indicates the step was not executed because an earlier one did not pass.
	Skipped
	// Pending indicates the step definition is marked as not yet implemented.
	Pending
	// Undefined indicates no step definition matched.
	Undefined
	// Missing indicates the step has no recorded result.
	Missing
	// Failed indicates a failure. Failed always escalates.
	Failed
)

// ErrUnknownOutcome reports a status string outside the known set.
var ErrUnknownOutcome = errors.New("unknown outcome")

var names = [...]string{
	Passed:    "passed",
	Skipped:   "skipped",
	Pending:   "pending",
	Undefined: "undefined",
	Missing:   "missing",
	Failed:    "failed",
}

// All returns every outcome in severity order.
func All() []Outcome {
	return []Outcome{Passed, Skipped, Pending, Undefined, Missing, Failed}
}

// Valid reports whether o is one of the known outcomes.
func (o Outcome) Valid() bool {
	return o >= Passed && o <= Failed
}

func (o Outcome) String() string {
	if !o.Valid() {
		return fmt.Sprintf("outcome(%d)", int(o))
	}
	return names[o]
}

// Parse converts a cucumber status string such as "passed" into an Outcome.
func Parse(s string) (Outcome, error) {
	value := strings.ToLower(strings.TrimSpace(s))
	for i, name := range names {
		if name == value {
			return Outcome(i), nil
		}
	}
	return Passed, fmt.Errorf("%w %q", ErrUnknownOutcome, s)
}

// MarshalText encodes the outcome as its name.
func (o Outcome) MarshalText() ([]byte, error) {
	if !o.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownOutcome, int(o))
	}
	return []byte(names[o]), nil
}

// UnmarshalText decodes an outcome name.
func (o *Outcome) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*o = parsed
	return nil
}
