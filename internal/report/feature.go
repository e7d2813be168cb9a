package report

import (
	"iter"

	"github.com/bgricker/verdict/internal/status"
)

// FeatureHeader holds the descriptive fields of a feature.
type FeatureHeader struct {
	URI         string
	ID          string
	Name        string
	Keyword     string
	Description string
	Line        int
}

// Feature is a suite of elements loaded from one feature file.
type Feature struct {
	FeatureHeader

	elements []*Element
	tags     []Tag
}

// NewFeature builds a feature. Nil elements are dropped and nil collections
// become empty ones.
func NewFeature(h FeatureHeader, elements []*Element, tags []Tag) *Feature {
	kept := make([]*Element, 0, len(elements))
	for _, el := range elements {
		if el != nil {
			kept = append(kept, el)
		}
	}
	return &Feature{FeatureHeader: h, elements: kept, tags: cloneTags(tags)}
}

// Status folds element verdicts under p with the same rule used for steps.
func (f *Feature) Status(p status.Policy) status.Outcome {
	verdicts := make([]status.Outcome, 0, len(f.elements))
	for _, el := range f.elements {
		verdicts = append(verdicts, el.Status(p))
	}
	return status.Aggregate(verdicts, p)
}

// Elements returns the feature's elements, backgrounds included.
func (f *Feature) Elements() []*Element {
	return append([]*Element{}, f.elements...)
}

// Scenarios returns the elements that are not backgrounds.
func (f *Feature) Scenarios() []*Element {
	out := make([]*Element, 0, len(f.elements))
	for _, el := range f.elements {
		if !el.IsBackground() {
			out = append(out, el)
		}
	}
	return out
}

func (f *Feature) Tags() []Tag {
	return cloneTags(f.tags)
}

// TagNames yields feature-level tag names in insertion order.
func (f *Feature) TagNames() iter.Seq[string] {
	return tagNames(f.tags)
}

func (f *Feature) HasTags() bool {
	return len(f.tags) > 0
}

func (f *Feature) HasElements() bool {
	return len(f.elements) > 0
}
