package report

import (
	"errors"
	"time"

	"github.com/bgricker/verdict/internal/status"
)

// BackgroundKeyword marks an element as a feature background.
const BackgroundKeyword = "Background"

// ErrImagePathSet is returned when an element's image path is assigned twice.
var ErrImagePathSet = errors.New("image path already set")

// Step captures the outcome of a single step.
type Step struct {
	Keyword      string
	Name         string
	Line         int
	Outcome      status.Outcome
	Duration     time.Duration
	ErrorMessage string
}

// Tag is a tag attached to a feature or scenario, including its leading "@".
type Tag struct {
	Name string
	Line int
}

func outcomes(steps []Step) []status.Outcome {
	out := make([]status.Outcome, 0, len(steps))
	for _, step := range steps {
		out = append(out, step.Outcome)
	}
	return out
}

func cloneSteps(steps []Step) []Step {
	if len(steps) == 0 {
		return []Step{}
	}
	return append([]Step{}, steps...)
}

func cloneTags(tags []Tag) []Tag {
	if len(tags) == 0 {
		return []Tag{}
	}
	return append([]Tag{}, tags...)
}
