package report

import (
	"iter"
	"sync/atomic"

	"github.com/bgricker/verdict/internal/status"
)

// Header holds the descriptive fields of an element.
type Header struct {
	ID          string
	Name        string
	Keyword     string
	Description string
	Line        int
}

// Element is a scenario (or background) with its steps and tags. It is
// read-only after construction apart from a single image path assignment.
type Element struct {
	header Header

	steps     []Step
	tags      []Tag
	imagePath atomic.Pointer[string]
}

// NewElement builds an element. Nil steps or tags become empty collections.
func NewElement(h Header, steps []Step, tags []Tag) *Element {
	return &Element{
		header: h,
		steps:  cloneSteps(steps),
		tags:   cloneTags(tags),
	}
}

// Header returns a copy of the element's descriptive fields.
func (e *Element) Header() Header {
	return e.header
}

func (e *Element) ID() string {
	return e.header.ID
}

func (e *Element) Name() string {
	return e.header.Name
}

// Keyword returns the Gherkin keyword, such as "Scenario" or "Background".
func (e *Element) Keyword() string {
	return e.header.Keyword
}

func (e *Element) Description() string {
	return e.header.Description
}

func (e *Element) Line() int {
	return e.header.Line
}

// Status aggregates the step outcomes under p. It is recomputed on every call.
func (e *Element) Status(p status.Policy) status.Outcome {
	return status.Aggregate(outcomes(e.steps), p)
}

// Worst returns the most severe step outcome.
func (e *Element) Worst() status.Outcome {
	return status.Worst(outcomes(e.steps))
}

// Steps returns a copy of the element's steps.
func (e *Element) Steps() []Step {
	return cloneSteps(e.steps)
}

// Tags returns a copy of the element's tags.
func (e *Element) Tags() []Tag {
	return cloneTags(e.tags)
}

// TagNames yields tag names in insertion order.
func (e *Element) TagNames() iter.Seq[string] {
	return tagNames(e.tags)
}

func (e *Element) HasTags() bool {
	return len(e.tags) > 0
}

func (e *Element) HasSteps() bool {
	return len(e.steps) > 0
}

// IsBackground reports whether the element is a feature background. An unset
// keyword is the empty string and never matches.
func (e *Element) IsBackground() bool {
	return e.header.Keyword == BackgroundKeyword
}

// SetImagePath attaches captured evidence to the element. It may be called
// once; later calls return ErrImagePathSet.
func (e *Element) SetImagePath(path string) error {
	if !e.imagePath.CompareAndSwap(nil, &path) {
		return ErrImagePathSet
	}
	return nil
}

// ImagePath returns the attached evidence path, or "" when none was set.
func (e *Element) ImagePath() string {
	if p := e.imagePath.Load(); p != nil {
		return *p
	}
	return ""
}

func tagNames(tags []Tag) iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, tag := range tags {
			if !yield(tag.Name) {
				return
			}
		}
	}
}
