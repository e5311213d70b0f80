package graph

import (
	"fmt"

	"promptpress/internal/spec"
)

// Diagnostic is one validation finding. Validation never fails hard; it
// accumulates diagnostics and leaves severity to the caller.
type Diagnostic struct {
	Message string
	Where   string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s", d.Where, d.Message)
}

// Validate checks a document's declared edges and body mentions against the
// store: self-references, over-specified forms, missing targets, dependency
// cycles, concept-document restrictions, and metadata/mention agreement.
// Each occurrence is checked independently.
func (g *Graph) Validate(doc *spec.Document) []Diagnostic {
	if doc.Meta == nil {
		return nil
	}

	var diags []Diagnostic
	subject := doc.Ref()
	isConcept := doc.IsConcept()

	mentioned := make(map[spec.Ref]bool)
	for _, m := range doc.Mentions {
		mentioned[m.Ref] = true
	}

	if isConcept && len(doc.Meta.DependsOn) > 0 {
		diags = append(diags, Diagnostic{
			Message: "the concept document must not declare dependencies",
			Where:   "depends-on",
		})
	}

	for _, raw := range doc.Meta.DependsOn {
		where := "depends-on: " + raw
		ref, ok := g.checkEntry(raw, subject, isConcept, where, &diags)
		if !ok {
			continue
		}
		if g.DependenciesOf(ref)[subject] {
			diags = append(diags, Diagnostic{
				Message: fmt.Sprintf("circular dependency: %s transitively depends on %s", ref, subject),
				Where:   where,
			})
		}
		if !mentioned[ref] {
			diags = append(diags, Diagnostic{
				Message: fmt.Sprintf("declared dependency %s is never mentioned in the body", ref),
				Where:   where,
			})
		}
	}

	for _, raw := range doc.Meta.References {
		where := "references: " + raw
		ref, ok := g.checkEntry(raw, subject, isConcept, where, &diags)
		if !ok {
			continue
		}
		if g.DependenciesOf(ref)[subject] {
			diags = append(diags, Diagnostic{
				Message: fmt.Sprintf("reference target %s transitively depends back on %s", ref, subject),
				Where:   where,
			})
		}
		if !mentioned[ref] {
			diags = append(diags, Diagnostic{
				Message: fmt.Sprintf("declared reference %s is never mentioned in the body", ref),
				Where:   where,
			})
		}
	}

	declared := make(map[spec.Ref]bool)
	for _, raw := range append(append([]string{}, doc.Meta.DependsOn...), doc.Meta.References...) {
		if ref, _, ok := spec.ParseRef(raw); ok {
			declared[ref] = true
		}
	}

	for _, m := range doc.Mentions {
		where := "mention " + m.Raw
		if !isConcept && m.Ref == subject {
			diags = append(diags, Diagnostic{
				Message: "a document must not mention itself",
				Where:   where,
			})
		}
		if m.Trailer != "" {
			diags = append(diags, Diagnostic{
				Message: fmt.Sprintf("over-specified reference: drop the trailing %q", m.Trailer),
				Where:   where,
			})
		}
		if isConcept && m.Ref.Phase != spec.PhaseRequirement {
			diags = append(diags, Diagnostic{
				Message: "the concept document may only reference requirement documents",
				Where:   where,
			})
		}
		if !g.store.Exists(m.Ref) {
			diags = append(diags, Diagnostic{
				Message: fmt.Sprintf("target %s does not exist", m.Ref),
				Where:   where,
			})
		}
		if !declared[m.Ref] && !(m.Ref == subject) {
			diags = append(diags, Diagnostic{
				Message: fmt.Sprintf("mention %s has no matching depends-on or references entry", m.Ref),
				Where:   where,
			})
		}
	}

	return diags
}

// checkEntry runs the per-entry rules shared by depends-on and references:
// parseability/over-specification, self-reference, concept-phase restriction,
// and target existence. ok is false when the entry could not resolve.
func (g *Graph) checkEntry(raw string, subject spec.Ref, isConcept bool, where string, diags *[]Diagnostic) (spec.Ref, bool) {
	ref, trailer, ok := spec.ParseRef(raw)
	if !ok {
		*diags = append(*diags, Diagnostic{
			Message: fmt.Sprintf("invalid reference %q: expected artifact.{req|design|impl}", raw),
			Where:   where,
		})
		return spec.Ref{}, false
	}
	if trailer != "" {
		*diags = append(*diags, Diagnostic{
			Message: fmt.Sprintf("over-specified reference: drop the trailing %q", trailer),
			Where:   where,
		})
	}
	if ref == subject {
		*diags = append(*diags, Diagnostic{
			Message: "a document must not reference itself",
			Where:   where,
		})
		return ref, false
	}
	if isConcept && ref.Phase != spec.PhaseRequirement {
		*diags = append(*diags, Diagnostic{
			Message: "the concept document may only reference requirement documents",
			Where:   where,
		})
	}
	if !g.store.Exists(ref) {
		*diags = append(*diags, Diagnostic{
			Message: fmt.Sprintf("target %s does not exist", ref),
			Where:   where,
		})
		return ref, false
	}
	return ref, true
}
