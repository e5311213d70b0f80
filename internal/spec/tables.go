package spec

import "strings"

// EditType classifies a structured edit instruction.
type EditType string

const (
	EditRemove EditType = "Remove from"
	EditAdd    EditType = "Add to"
	EditNone   EditType = "None"
)

// Edit is one machine-proposed change to a named section of a document.
// Edits are produced as rows of a Markdown change table and consumed
// transiently by the content editor.
type Edit struct {
	Type     EditType
	Document string
	Section  string
	Content  string
}

// ParseTable parses a pipe-delimited Markdown table (header row, separator
// row, data rows) into ordered row maps keyed by header cell. Text outside
// the first table is ignored.
func ParseTable(text string) []map[string]string {
	lines := strings.Split(text, "\n")

	var headers []string
	var rows []map[string]string
	inTable := false

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, "|") {
			if inTable {
				break
			}
			continue
		}

		cells := splitTableRow(trimmed)
		if headers == nil {
			headers = cells
			inTable = true
			continue
		}
		if isSeparatorRow(cells) {
			continue
		}

		row := make(map[string]string, len(headers))
		for i, h := range headers {
			if i < len(cells) {
				row[h] = cells[i]
			} else {
				row[h] = ""
			}
		}
		rows = append(rows, row)
	}

	return rows
}

func splitTableRow(line string) []string {
	line = strings.TrimPrefix(line, "|")
	line = strings.TrimSuffix(line, "|")
	parts := strings.Split(line, "|")
	cells := make([]string, len(parts))
	for i, p := range parts {
		cells[i] = strings.TrimSpace(p)
	}
	return cells
}

func isSeparatorRow(cells []string) bool {
	for _, c := range cells {
		if strings.Trim(c, "-: ") != "" {
			return false
		}
	}
	return true
}

// ParseChangeTable recognizes the three-column change table
// (Document | Action | Details) and classifies each Action cell into an
// Edit via the action-prefix grammar. Rows with an unrecognized action are
// skipped.
func ParseChangeTable(text string) []Edit {
	var edits []Edit
	for _, row := range ParseTable(text) {
		action, ok := row["Action"]
		if !ok {
			continue
		}
		edit := Edit{
			Document: row["Document"],
			Content:  row["Details"],
		}
		switch {
		case strings.HasPrefix(action, string(EditRemove)+" "):
			edit.Type = EditRemove
			edit.Section = strings.TrimSpace(strings.TrimPrefix(action, string(EditRemove)))
		case strings.HasPrefix(action, string(EditAdd)+" "):
			edit.Type = EditAdd
			edit.Section = strings.TrimSpace(strings.TrimPrefix(action, string(EditAdd)))
		case strings.TrimSpace(action) == string(EditNone):
			edit.Type = EditNone
		default:
			continue
		}
		edits = append(edits, edit)
	}
	return edits
}
