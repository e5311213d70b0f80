package editor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"promptpress/internal/spec"
)

const frDoc = `## Overview

Intro.

## Functional Requirements

- FR-8: X.

- FR-9: Y.

## Notes

Unrelated.
`

func TestResolveTarget(t *testing.T) {
	tests := []struct {
		section string
		want    Target
	}{
		{"Functional Requirements", Target{Heading: "Functional Requirements"}},
		{"Functional Requirements FR-8", Target{Heading: "Functional Requirements", Label: "FR-8"}},
		{"AI-CLARIFY section", Target{Heading: ClarificationsHeading}},
		{"Open Items", Target{Heading: "Open Items"}},
		{"Design Constraints DC-12", Target{Heading: "Design Constraints", Label: "DC-12"}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ResolveTarget(tt.section), tt.section)
	}
}

func TestApply_RemoveLabeledItem(t *testing.T) {
	edit := spec.Edit{
		Type:    spec.EditRemove,
		Section: "Functional Requirements FR-8",
		Content: "FR-8: X.",
	}

	out, warnings := Apply(frDoc, edit)

	assert.Empty(t, warnings)
	assert.NotContains(t, out, "FR-8:")
	assert.Contains(t, out, "- FR-9: Y.")
	assert.Contains(t, out, "Unrelated.")
	assert.Contains(t, out, "Intro.")
}

func TestApply_RemoveSurvivesWhitespaceDrift(t *testing.T) {
	// The instruction's recollection of the text differs in spacing and
	// trailing punctuation; normalized matching still finds it.
	edit := spec.Edit{
		Type:    spec.EditRemove,
		Section: "Functional Requirements FR-8",
		Content: "FR-8:   X",
	}

	out, warnings := Apply(frDoc, edit)

	assert.Empty(t, warnings)
	assert.NotContains(t, out, "FR-8:")
	assert.Contains(t, out, "FR-9: Y.")
}

func TestApply_RemoveMissingContentWarns(t *testing.T) {
	edit := spec.Edit{
		Type:    spec.EditRemove,
		Section: "Functional Requirements",
		Content: "FR-99: never existed",
	}

	out, warnings := Apply(frDoc, edit)

	assert.Equal(t, frDoc, out)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "removal skipped")
}

func TestApply_RemoveMissingSectionWarns(t *testing.T) {
	edit := spec.Edit{Type: spec.EditRemove, Section: "No Such Section", Content: "x"}

	out, warnings := Apply(frDoc, edit)

	assert.Equal(t, frDoc, out)
	require.Len(t, warnings, 1)
}

func TestApply_AddToExistingSection(t *testing.T) {
	edit := spec.Edit{
		Type:    spec.EditAdd,
		Section: "Notes",
		Content: "- Added line.",
	}

	out, warnings := Apply(frDoc, edit)

	assert.Empty(t, warnings)
	assert.Contains(t, out, "Unrelated.\n- Added line.\n")
}

func TestApply_AddCreatesMissingSection(t *testing.T) {
	doc := "## Overview\n\nOnly section.\n"
	edit := spec.Edit{
		Type:    spec.EditAdd,
		Section: "AI-CLARIFY section",
		Content: "Why?",
	}

	out, warnings := Apply(doc, edit)

	assert.Empty(t, warnings)
	assert.Contains(t, out, "## Questions & Clarifications")
	assert.Contains(t, out, "Why?")

	parsed := spec.Parse(out)
	body, ok := parsed.SectionBody(ClarificationsHeading)
	require.True(t, ok)
	assert.Contains(t, body, "Why?")
}

func TestApply_None(t *testing.T) {
	out, warnings := Apply(frDoc, spec.Edit{Type: spec.EditNone})

	assert.Equal(t, frDoc, out)
	assert.Empty(t, warnings)
}

func TestApply_RemoveWholeSectionContent(t *testing.T) {
	edit := spec.Edit{
		Type:    spec.EditRemove,
		Section: "Notes",
		Content: "Unrelated.",
	}

	out, warnings := Apply(frDoc, edit)

	assert.Empty(t, warnings)
	assert.NotContains(t, out, "Unrelated.")
	assert.Contains(t, out, "## Notes")
	assert.Contains(t, out, "FR-8: X.")
}
