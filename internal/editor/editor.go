package editor

import (
	"fmt"
	"regexp"
	"strings"

	"promptpress/internal/spec"
)

// ClarificationsHeading is the section the "AI-CLARIFY section" sentinel
// resolves to.
const ClarificationsHeading = "Questions & Clarifications"

const clarifySentinel = "AI-CLARIFY section"

var labelRe = regexp.MustCompile(`^[A-Z]+-\d+$`)

// Target is a resolved edit destination: a second-level heading, optionally
// narrowed to one labeled sub-item within it (e.g. "FR-8").
type Target struct {
	Heading string
	Label   string
}

// ResolveTarget interprets an edit's section string. The sentinel
// "AI-CLARIFY section" maps to the clarifications heading; a trailing
// LABEL-N token splits off as the sub-item label.
func ResolveTarget(section string) Target {
	s := strings.TrimSpace(section)
	if s == clarifySentinel {
		return Target{Heading: ClarificationsHeading}
	}
	if idx := strings.LastIndex(s, " "); idx > 0 {
		last := s[idx+1:]
		if labelRe.MatchString(last) {
			return Target{Heading: s[:idx], Label: last}
		}
	}
	return Target{Heading: s}
}

// Apply executes one structured edit against raw document text and returns
// the edited text plus any warnings. Edits are best-effort: an unmatched
// removal leaves the text unchanged and surfaces a warning instead of
// failing.
func Apply(text string, edit spec.Edit) (string, []string) {
	switch edit.Type {
	case spec.EditNone:
		return text, nil
	case spec.EditRemove:
		return applyRemove(text, edit)
	case spec.EditAdd:
		return applyAdd(text, edit)
	}
	return text, []string{fmt.Sprintf("unknown edit type %q ignored", edit.Type)}
}

func applyRemove(text string, edit spec.Edit) (string, []string) {
	target := ResolveTarget(edit.Section)
	start, end, found := sectionBounds(text, target.Heading)
	if !found {
		return text, []string{fmt.Sprintf("section %q not found, removal skipped", target.Heading)}
	}

	body := text[start:end]
	scopeStart, scopeEnd := 0, len(body)
	if target.Label != "" {
		s, e, ok := itemBounds(body, target.Label)
		if !ok {
			return text, []string{fmt.Sprintf("item %q not found in section %q, removal skipped", target.Label, target.Heading)}
		}
		scopeStart, scopeEnd = s, e
	}
	scope := body[scopeStart:scopeEnd]

	// Normalization is for matching only; the removal itself is literal.
	if !strings.Contains(normalize(scope), normalize(edit.Content)) {
		return text, []string{fmt.Sprintf("content not found in section %q, removal skipped", edit.Section)}
	}

	edited, ok := removeLiteral(scope, edit.Content)
	if !ok {
		// The normalized forms matched but the literal text differs; drop the
		// whole matched scope rather than leave stale content behind.
		if target.Label != "" {
			edited = ""
		} else {
			return text, []string{fmt.Sprintf("content in section %q matched only after normalization, removal skipped", edit.Section)}
		}
	}

	newBody := body[:scopeStart] + edited + body[scopeEnd:]
	return text[:start] + newBody + text[end:], nil
}

func applyAdd(text string, edit spec.Edit) (string, []string) {
	target := ResolveTarget(edit.Section)
	start, end, found := sectionBounds(text, target.Heading)
	if !found {
		// Create the section at the end of the document.
		out := text
		if out != "" && !strings.HasSuffix(out, "\n") {
			out += "\n"
		}
		out += fmt.Sprintf("\n## %s\n\n%s\n", target.Heading, edit.Content)
		return out, nil
	}

	body := text[start:end]
	trimmed := strings.TrimRight(body, "\n")
	newBody := trimmed + "\n" + edit.Content + "\n"
	if trimmed == "" {
		newBody = "\n" + edit.Content + "\n"
	}
	return text[:start] + newBody + text[end:], nil
}

// sectionBounds locates the body of the named section in raw text: the byte
// range from the end of the heading line to the start of the next
// second-level heading (or end of text).
func sectionBounds(text, heading string) (start, end int, found bool) {
	lines := strings.SplitAfter(text, "\n")
	offset := 0
	for i, line := range lines {
		stripped := strings.TrimRight(line, "\n")
		if strings.HasPrefix(stripped, "##") && !strings.HasPrefix(stripped, "###") {
			if strings.TrimSpace(strings.TrimPrefix(stripped, "##")) == heading {
				start = offset + len(line)
				end = len(text)
				pos := start
				for _, rest := range lines[i+1:] {
					restStripped := strings.TrimRight(rest, "\n")
					if strings.HasPrefix(restStripped, "##") && !strings.HasPrefix(restStripped, "###") {
						end = pos
						break
					}
					pos += len(rest)
				}
				return start, end, true
			}
		}
		offset += len(line)
	}
	return 0, 0, false
}

// itemBounds narrows a section body to the block belonging to one labeled
// sub-item: from the line containing "<LABEL>:" up to the next labeled line
// or end of body.
func itemBounds(body, label string) (start, end int, ok bool) {
	lines := strings.SplitAfter(body, "\n")
	offset := 0
	start = -1
	for _, line := range lines {
		isLabeled := labelLineRe.MatchString(line)
		if start == -1 {
			if isLabeled && strings.Contains(line, label+":") {
				start = offset
			}
		} else if isLabeled {
			return start, offset, true
		}
		offset += len(line)
	}
	if start == -1 {
		return 0, 0, false
	}
	return start, len(body), true
}

var labelLineRe = regexp.MustCompile(`^\s*(?:[-*]\s*)?[A-Z]+-\d+:`)

// removeLiteral deletes the literal instruction text from scope, tolerating
// leading list markers and the surrounding blank line.
func removeLiteral(scope, content string) (string, bool) {
	needle := strings.TrimSpace(content)
	idx := strings.Index(scope, needle)
	if idx == -1 {
		return scope, false
	}
	before, after := scope[:idx], scope[idx+len(needle):]
	// Absorb a list marker directly before the removed text.
	before = strings.TrimRight(before, "-* \t")
	// Collapse the blank line the removal leaves behind.
	if strings.HasSuffix(before, "\n") && strings.HasPrefix(after, "\n") {
		after = strings.TrimPrefix(after, "\n")
	}
	return before + after, true
}

// normalize trims, collapses internal whitespace, and strips one trailing
// separator so near-identical recollections of the same text still match.
func normalize(s string) string {
	out := strings.Join(strings.Fields(s), " ")
	out = strings.TrimSuffix(out, ";")
	out = strings.TrimSuffix(out, ",")
	out = strings.TrimSuffix(out, ".")
	return strings.TrimSpace(out)
}
