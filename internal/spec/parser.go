package spec

import (
	"regexp"
	"strings"
)

var (
	mentionRe = regexp.MustCompile(`@([a-z0-9-]+)\.(req|design)(\.md)?`)
	clarifyRe = regexp.MustCompile(`\[AI-CLARIFY:\s*([^\]]*)\]`)
)

// Parse turns raw text into a Document. It is total: malformed input never
// produces an error, only a Document with Meta == nil.
func Parse(text string) *Document {
	doc := &Document{}

	meta, content := splitFrontmatter(text)
	doc.Meta = meta
	doc.Content = content

	doc.Sections = parseSections(content)
	doc.Mentions = parseMentions(content)
	doc.Clarifications = parseClarifications(content)

	return doc
}

// splitFrontmatter extracts the metadata block between the first and second
// lines equal to exactly "---". Anything else yields (nil, text).
func splitFrontmatter(text string) (*Metadata, string) {
	lines := strings.Split(text, "\n")

	open := -1
	for i, line := range lines {
		if line == "---" {
			open = i
			break
		}
	}
	if open == -1 {
		return nil, text
	}

	closing := -1
	for i := open + 1; i < len(lines); i++ {
		if lines[i] == "---" {
			closing = i
			break
		}
	}
	if closing == -1 {
		return nil, text
	}

	meta := parseMetadataLines(lines[open+1 : closing])
	if meta == nil {
		return nil, text
	}
	content := strings.Join(lines[closing+1:], "\n")
	return meta, content
}

func parseMetadataLines(lines []string) *Metadata {
	meta := &Metadata{}
	seen := false

	for _, line := range lines {
		switch {
		case strings.HasPrefix(line, "artifact:"):
			meta.Artifact = strings.TrimSpace(strings.TrimPrefix(line, "artifact:"))
			seen = true
		case strings.HasPrefix(line, "phase:"):
			if p, ok := ParsePhase(strings.TrimPrefix(line, "phase:")); ok {
				meta.Phase = p
			}
			seen = true
		case strings.HasPrefix(line, "depends-on:"):
			meta.DependsOn = parseRefList(strings.TrimPrefix(line, "depends-on:"))
			seen = true
		case strings.HasPrefix(line, "references:"):
			meta.References = parseRefList(strings.TrimPrefix(line, "references:"))
			seen = true
		case strings.HasPrefix(line, "version:"):
			meta.Version = strings.TrimSpace(strings.TrimPrefix(line, "version:"))
			seen = true
		case strings.HasPrefix(line, "last-updated:"):
			meta.LastUpdated = strings.TrimSpace(strings.TrimPrefix(line, "last-updated:"))
			seen = true
		}
	}

	if !seen || meta.Artifact == "" {
		return nil
	}
	return meta
}

// parseRefList parses a bracketed, comma-separated, optionally quoted list:
//
//	["auth.req", 'db.design', plain.req]
func parseRefList(raw string) []string {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "[")
	s = strings.TrimSuffix(s, "]")

	var out []string
	for _, part := range strings.Split(s, ",") {
		item := strings.TrimSpace(part)
		item = strings.Trim(item, `"'`)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}

// parseSections scans for lines starting with exactly two '#' characters.
// Each section's body is every line up to the next such line, verbatim.
func parseSections(content string) []Section {
	lines := strings.Split(content, "\n")
	var sections []Section
	var current *Section
	var body []string

	flush := func() {
		if current != nil {
			current.Body = strings.Join(body, "\n")
			sections = append(sections, *current)
		}
		body = nil
	}

	for _, line := range lines {
		if strings.HasPrefix(line, "##") && !strings.HasPrefix(line, "###") {
			flush()
			heading := strings.TrimSpace(strings.TrimPrefix(line, "##"))
			current = &Section{Heading: heading}
			continue
		}
		if current != nil {
			body = append(body, line)
		}
	}
	flush()

	return sections
}

// parseMentions finds @artifact.phase tokens in first-occurrence order,
// duplicates included. A token immediately followed by a letter is rejected
// so that "@foo.requirement" does not match as "@foo.req".
func parseMentions(content string) []Mention {
	var mentions []Mention
	for _, idx := range mentionRe.FindAllStringSubmatchIndex(content, -1) {
		end := idx[1]
		if end < len(content) {
			next := content[end]
			if (next >= 'a' && next <= 'z') || (next >= 'A' && next <= 'Z') {
				continue
			}
		}
		artifact := content[idx[2]:idx[3]]
		phase, _ := PhaseForSuffix(content[idx[4]:idx[5]])
		trailer := ""
		if idx[6] != -1 {
			trailer = content[idx[6]:idx[7]]
		}
		mentions = append(mentions, Mention{
			Ref:     Ref{Artifact: artifact, Phase: phase},
			Raw:     content[idx[0]:idx[1]],
			Trailer: trailer,
		})
	}
	return mentions
}

func parseClarifications(content string) []string {
	var out []string
	for _, m := range clarifyRe.FindAllStringSubmatch(content, -1) {
		out = append(out, strings.TrimSpace(m[1]))
	}
	return out
}
