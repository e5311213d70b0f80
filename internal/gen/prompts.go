package gen

import (
	"fmt"
	"strings"

	"promptpress/internal/spec"
)

// ContextDoc is a referenced document handed to a prompt as extra context.
type ContextDoc struct {
	Name string
	Text string
}

// PromptBuilder constructs the prompts for refinement, propagation, and
// tersification. The role templates are plain strings supplied by the
// caller's configuration; there is no global template state.
type PromptBuilder struct {
	RefineRequirement        string
	RefineDesign             string
	RefineImplementation     string
	RegenerateDesign         string
	RegenerateImplementation string
	Tersify                  string
}

// DefaultPrompts returns the built-in role templates.
func DefaultPrompts() *PromptBuilder {
	return &PromptBuilder{
		RefineRequirement: "Role: Requirements Analyst. The requirement document below was just edited. " +
			"Extract any loose prose in the modified sections into well-formed, labeled requirement items, " +
			"and turn open questions into [AI-CLARIFY: ...] markers. " +
			"Return the complete revised document, or a brief note if no refinement is needed.",
		RefineDesign: "Role: Software Architect. The design document below was just edited. " +
			"Normalize loose prose in the modified sections into structured design statements, " +
			"and turn open questions into [AI-CLARIFY: ...] markers. " +
			"Return the complete revised document, or a brief note if no refinement is needed.",
		RefineImplementation: "Role: Senior Engineer. The implementation document below was just edited. " +
			"Normalize loose prose in the modified sections into concrete implementation notes, " +
			"and turn open questions into [AI-CLARIFY: ...] markers. " +
			"Return the complete revised document, or a brief note if no refinement is needed.",
		RegenerateDesign: "Role: Software Architect. A requirement document this design depends on has changed. " +
			"Regenerate the design document so it is consistent with the requirement. " +
			"Preserve the frontmatter block and every section heading; return the complete document.",
		RegenerateImplementation: "Role: Senior Engineer. The requirement and design documents below have changed. " +
			"Regenerate the implementation document so it is consistent with both. " +
			"Preserve the frontmatter block and every section heading; return the complete document.",
		Tersify: "Role: Technical Editor. The documents below restate overlapping information. " +
			"Propose edits that keep each fact in exactly one authoritative document. " +
			"Respond with a Markdown table with columns Document | Action | Details, where Action is " +
			"\"Remove from <section>\", \"Add to <section>\", or \"None\", and Details is the exact text to remove or add.",
	}
}

func (pb *PromptBuilder) refineTemplate(phase spec.Phase) string {
	switch phase {
	case spec.PhaseDesign:
		return pb.RefineDesign
	case spec.PhaseImplementation:
		return pb.RefineImplementation
	}
	return pb.RefineRequirement
}

// BuildRefinePrompt asks the generator to extract structured content out of
// the freshly edited document.
func (pb *PromptBuilder) BuildRefinePrompt(phase spec.Phase, docText, summary string, sections []string, context []ContextDoc) string {
	var sb strings.Builder
	sb.WriteString(pb.refineTemplate(phase))
	sb.WriteString("\n\n")
	fmt.Fprintf(&sb, "Change summary: %s\n", summary)
	fmt.Fprintf(&sb, "Modified sections: %s\n", strings.Join(sections, ", "))
	writeContextDocs(&sb, context)
	sb.WriteString("\n--- DOCUMENT ---\n")
	sb.WriteString(docText)
	return sb.String()
}

// BuildDesignPrompt regenerates a design document downstream of a changed
// requirement.
func (pb *PromptBuilder) BuildDesignPrompt(reqText, currentDesign, summary string, sections []string) string {
	var sb strings.Builder
	sb.WriteString(pb.RegenerateDesign)
	sb.WriteString("\n\n")
	fmt.Fprintf(&sb, "Change summary: %s\n", summary)
	fmt.Fprintf(&sb, "Modified sections: %s\n", strings.Join(sections, ", "))
	sb.WriteString("\n--- REQUIREMENT ---\n")
	sb.WriteString(reqText)
	sb.WriteString("\n--- CURRENT DESIGN ---\n")
	sb.WriteString(currentDesign)
	return sb.String()
}

// BuildImplementationPrompt regenerates an implementation document from its
// requirement and (possibly just-regenerated) design siblings.
func (pb *PromptBuilder) BuildImplementationPrompt(reqText, designText, currentImpl, summary string) string {
	var sb strings.Builder
	sb.WriteString(pb.RegenerateImplementation)
	sb.WriteString("\n\n")
	fmt.Fprintf(&sb, "Change summary: %s\n", summary)
	sb.WriteString("\n--- REQUIREMENT ---\n")
	sb.WriteString(reqText)
	sb.WriteString("\n--- DESIGN ---\n")
	sb.WriteString(designText)
	sb.WriteString("\n--- CURRENT IMPLEMENTATION ---\n")
	sb.WriteString(currentImpl)
	return sb.String()
}

// BuildTersifyPrompt asks for a change table redistributing duplicated
// content between a document, its references, and its dependents.
func (pb *PromptBuilder) BuildTersifyPrompt(sourceName, sourceText string, references, dependents []ContextDoc) string {
	var sb strings.Builder
	sb.WriteString(pb.Tersify)
	sb.WriteString("\n\n")
	fmt.Fprintf(&sb, "--- SOURCE: %s ---\n%s\n", sourceName, sourceText)
	for _, ref := range references {
		fmt.Fprintf(&sb, "\n--- REFERENCE: %s ---\n%s\n", ref.Name, ref.Text)
	}
	for _, dep := range dependents {
		fmt.Fprintf(&sb, "\n--- DEPENDENT: %s ---\n%s\n", dep.Name, dep.Text)
	}
	return sb.String()
}

func writeContextDocs(sb *strings.Builder, context []ContextDoc) {
	for _, doc := range context {
		fmt.Fprintf(sb, "\n--- CONTEXT: %s ---\n%s\n", doc.Name, doc.Text)
	}
}
