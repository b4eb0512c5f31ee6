package importer

import "strings"

// ParsedCSV is the result of splitting an upload into header and row maps.
type ParsedCSV struct {
	Headers []string
	Rows    []map[string]string
}

// ParseCSV splits CSV text into a header row and one map per data row,
// keyed by header. Blank lines are dropped and surrounding quotes are
// stripped from each cell.
//
// This is deliberately not a full RFC 4180 parser: embedded delimiters
// inside quoted fields are not honored. Exports from the tools this
// importer targets do not produce them.
func ParseCSV(text string) *ParsedCSV {
	lines := make([]string, 0)
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) < 2 {
		headers := []string{}
		if len(lines) == 1 {
			headers = splitLine(lines[0])
		}
		return &ParsedCSV{Headers: headers, Rows: nil}
	}

	headers := splitLine(lines[0])
	rows := make([]map[string]string, 0, len(lines)-1)
	for _, line := range lines[1:] {
		values := splitLine(line)
		row := make(map[string]string, len(headers))
		for i, h := range headers {
			if i < len(values) {
				row[h] = values[i]
			} else {
				row[h] = ""
			}
		}
		rows = append(rows, row)
	}

	return &ParsedCSV{Headers: headers, Rows: rows}
}

func splitLine(line string) []string {
	parts := strings.Split(line, ",")
	out := make([]string, len(parts))
	for i, p := range parts {
		p = strings.TrimSpace(p)
		p = strings.TrimPrefix(p, `"`)
		p = strings.TrimSuffix(p, `"`)
		out[i] = p
	}
	return out
}
