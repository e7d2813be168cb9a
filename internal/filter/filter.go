package filter

import (
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/bgricker/verdict/internal/report"
)

// Pattern represents a compiled filter condition supporting substring and regex matching.
type Pattern struct {
	raw   string
	regex *regexp.Regexp
	lower string
}

// Compile transforms raw pattern strings into Pattern values.
func Compile(patterns []string) ([]Pattern, error) {
	result := make([]Pattern, 0, len(patterns))
	for _, raw := range patterns {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		if strings.HasPrefix(raw, "/") && strings.HasSuffix(raw, "/") && len(raw) >= 2 {
			expr := raw[1 : len(raw)-1]
			re, err := regexp.Compile(expr)
			if err != nil {
				return nil, fmt.Errorf("compile regexp %q: %w", raw, err)
			}
			result = append(result, Pattern{raw: raw, regex: re})
			continue
		}
		result = append(result, Pattern{raw: raw, lower: strings.ToLower(raw)})
	}
	return result, nil
}

// Match reports whether the pattern matches the supplied string.
func (p Pattern) Match(s string) bool {
	if s == "" {
		return false
	}
	if p.regex != nil {
		return p.regex.MatchString(s)
	}
	return strings.Contains(strings.ToLower(s), p.lower)
}

func (p Pattern) String() string {
	return p.raw
}

// FilterFeatures applies tag and scenario filters, returning new features that
// share the surviving elements. Backgrounds are kept only alongside at least one
// surviving scenario, and features left without scenarios are dropped.
func FilterFeatures(features []*report.Feature, tagPatterns, onlyPatterns, skipPatterns []Pattern) []*report.Feature {
	if len(features) == 0 {
		return nil
	}

	result := make([]*report.Feature, 0, len(features))
	for _, feature := range features {
		featureTags := slices.Collect(feature.TagNames())
		elements := feature.Elements()
		kept := make([]*report.Element, 0, len(elements))
		scenarios := 0
		for _, el := range elements {
			if el.IsBackground() {
				kept = append(kept, el)
				continue
			}
			if len(tagPatterns) > 0 && !matchesTags(featureTags, slices.Collect(el.TagNames()), tagPatterns) {
				continue
			}
			if len(onlyPatterns) > 0 && !matchesAny(el.Name(), onlyPatterns) {
				continue
			}
			if len(skipPatterns) > 0 && matchesAny(el.Name(), skipPatterns) {
				continue
			}
			kept = append(kept, el)
			scenarios++
		}
		if scenarios == 0 {
			continue
		}
		result = append(result, report.NewFeature(feature.FeatureHeader, kept, feature.Tags()))
	}
	return result
}

func matchesTags(featureTags, elementTags []string, patterns []Pattern) bool {
	for _, pattern := range patterns {
		for _, tag := range featureTags {
			if pattern.Match(tag) {
				return true
			}
		}
		for _, tag := range elementTags {
			if pattern.Match(tag) {
				return true
			}
		}
	}
	return false
}

func matchesAny(s string, patterns []Pattern) bool {
	for _, pattern := range patterns {
		if pattern.Match(s) {
			return true
		}
	}
	return false
}
