package spec

import "strings"

// Phase identifies which stage of the workflow a document belongs to.
// The root concept document carries no phase (zero value).
type Phase string

const (
	PhaseNone           Phase = ""
	PhaseRequirement    Phase = "requirement"
	PhaseDesign         Phase = "design"
	PhaseImplementation Phase = "implementation"
)

// Suffix returns the file-name suffix for the phase ("req", "design", "impl").
func (p Phase) Suffix() string {
	switch p {
	case PhaseRequirement:
		return "req"
	case PhaseDesign:
		return "design"
	case PhaseImplementation:
		return "impl"
	}
	return ""
}

// Dir returns the directory name under specs/ that holds documents of this phase.
func (p Phase) Dir() string {
	switch p {
	case PhaseRequirement:
		return "requirements"
	case PhaseDesign:
		return "design"
	case PhaseImplementation:
		return "implementation"
	}
	return ""
}

// ParsePhase maps a frontmatter phase value to a Phase.
func ParsePhase(s string) (Phase, bool) {
	switch strings.TrimSpace(s) {
	case "requirement":
		return PhaseRequirement, true
	case "design":
		return PhaseDesign, true
	case "implementation":
		return PhaseImplementation, true
	}
	return PhaseNone, false
}

// PhaseForSuffix maps a reference suffix ("req", "design", "impl") to a Phase.
func PhaseForSuffix(s string) (Phase, bool) {
	switch s {
	case "req":
		return PhaseRequirement, true
	case "design":
		return PhaseDesign, true
	case "impl":
		return PhaseImplementation, true
	}
	return PhaseNone, false
}

// Ref is a lookup key into the document store: an artifact name plus a phase.
type Ref struct {
	Artifact string
	Phase    Phase
}

func (r Ref) String() string {
	return r.Artifact + "." + r.Phase.Suffix()
}

// Filename returns the on-disk file name for the referenced document.
func (r Ref) Filename() string {
	return r.Artifact + "." + r.Phase.Suffix() + ".md"
}

// ParseRef parses a raw reference string ("artifact.req"). It tolerates an
// over-specified trailing ".md": the reference still resolves, and the
// trailer is reported so validation can flag it.
func ParseRef(raw string) (ref Ref, trailer string, ok bool) {
	s := strings.TrimSpace(raw)
	if rest, found := strings.CutSuffix(s, ".md"); found {
		trailer = ".md"
		s = rest
	}
	dot := strings.LastIndex(s, ".")
	if dot <= 0 || dot == len(s)-1 {
		return Ref{}, trailer, false
	}
	phase, valid := PhaseForSuffix(s[dot+1:])
	if !valid {
		return Ref{}, trailer, false
	}
	return Ref{Artifact: s[:dot], Phase: phase}, trailer, true
}

// Metadata is the parsed frontmatter block. DependsOn and References keep the
// raw entry strings so validation can report over-specified forms verbatim.
type Metadata struct {
	Artifact    string
	Phase       Phase
	DependsOn   []string
	References  []string
	Version     string
	LastUpdated string
}

// Section is one second-level heading and the verbatim text beneath it.
type Section struct {
	Heading string
	Body    string
}

// Mention is one @artifact.phase token found in the document body.
type Mention struct {
	Ref     Ref
	Raw     string
	Trailer string // non-word characters trailing the token, e.g. ".md"
}

// Document is a parsed spec document. Meta is nil when the text carries no
// parseable frontmatter block; callers must treat that as "not managed".
type Document struct {
	Meta           *Metadata
	Content        string
	Sections       []Section
	Mentions       []Mention
	Clarifications []string
}

// IsConcept reports whether this is the phase-less root concept document.
func (d *Document) IsConcept() bool {
	return d.Meta != nil && d.Meta.Phase == PhaseNone
}

// Ref returns the document's own reference. Only meaningful for managed,
// phased documents.
func (d *Document) Ref() Ref {
	if d.Meta == nil {
		return Ref{}
	}
	return Ref{Artifact: d.Meta.Artifact, Phase: d.Meta.Phase}
}

// SectionBody returns the body of the named section. When the same heading
// appears more than once the last occurrence wins.
func (d *Document) SectionBody(heading string) (string, bool) {
	body, found := "", false
	for _, s := range d.Sections {
		if s.Heading == heading {
			body, found = s.Body, true
		}
	}
	return body, found
}

// SectionMap flattens Sections into a heading → body map, last-one-wins.
func (d *Document) SectionMap() map[string]string {
	m := make(map[string]string, len(d.Sections))
	for _, s := range d.Sections {
		m[s.Heading] = s.Body
	}
	return m
}
