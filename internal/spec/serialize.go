package spec

import (
	"fmt"
	"strings"
)

// Serialize renders a Document back to raw text: a frontmatter block (when
// metadata is present) followed by the content verbatim. Parsing the output
// yields an equivalent Document.
func Serialize(doc *Document) string {
	if doc.Meta == nil {
		return doc.Content
	}

	var sb strings.Builder
	sb.WriteString("---\n")
	fmt.Fprintf(&sb, "artifact: %s\n", doc.Meta.Artifact)
	if doc.Meta.Phase != PhaseNone {
		fmt.Fprintf(&sb, "phase: %s\n", doc.Meta.Phase)
	}
	if len(doc.Meta.DependsOn) > 0 {
		fmt.Fprintf(&sb, "depends-on: %s\n", formatRefList(doc.Meta.DependsOn))
	}
	if len(doc.Meta.References) > 0 {
		fmt.Fprintf(&sb, "references: %s\n", formatRefList(doc.Meta.References))
	}
	if doc.Meta.Version != "" {
		fmt.Fprintf(&sb, "version: %s\n", doc.Meta.Version)
	}
	if doc.Meta.LastUpdated != "" {
		fmt.Fprintf(&sb, "last-updated: %s\n", doc.Meta.LastUpdated)
	}
	sb.WriteString("---\n")
	sb.WriteString(doc.Content)
	return sb.String()
}

func formatRefList(items []string) string {
	quoted := make([]string, len(items))
	for i, item := range items {
		quoted[i] = fmt.Sprintf("%q", item)
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}
