package diff

import (
	"fmt"
	"sort"
	"strings"

	"promptpress/internal/spec"
)

// AllSections is the pseudo-heading reported when the old snapshot has no
// sections to compare against.
const AllSections = "All sections"

// Result is a section-level summary of what changed between two snapshots.
type Result struct {
	HasChanges       bool
	ModifiedSections []string
	Summary          string
	OldText          string
	NewText          string
}

// Compare computes the section-level difference between two document
// snapshots. A heading counts as modified when its body differs
// byte-for-byte, or when it exists in exactly one of the two snapshots.
func Compare(oldText, newText string) *Result {
	res := &Result{OldText: oldText, NewText: newText}
	if oldText == newText {
		return res
	}
	res.HasChanges = true

	oldSections := spec.Parse(oldText).SectionMap()
	newSections := spec.Parse(newText).SectionMap()

	if len(oldSections) == 0 {
		res.ModifiedSections = []string{AllSections}
	} else {
		modified := make(map[string]bool)
		for heading, body := range newSections {
			if oldBody, ok := oldSections[heading]; !ok || oldBody != body {
				modified[heading] = true
			}
		}
		for heading := range oldSections {
			if _, ok := newSections[heading]; !ok {
				modified[heading] = true
			}
		}
		for heading := range modified {
			res.ModifiedSections = append(res.ModifiedSections, heading)
		}
		sort.Strings(res.ModifiedSections)
	}

	res.Summary = summarize(len(res.ModifiedSections), oldText, newText)
	return res
}

func summarize(sectionCount int, oldText, newText string) string {
	summary := fmt.Sprintf("Modified %d section(s)", sectionCount)
	delta := strings.Count(newText, "\n") - strings.Count(oldText, "\n")
	if delta > 0 {
		summary += fmt.Sprintf(", added %d line(s)", delta)
	} else if delta < 0 {
		summary += fmt.Sprintf(", removed %d line(s)", -delta)
	}
	return summary
}
