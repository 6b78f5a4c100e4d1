package loader

import (
	"fmt"
	"strings"
)

// csvDelimiters are the candidate field separators, most common first.
var csvDelimiters = []rune{',', ';', '\t', '|'}

// delimiterSampleLines bounds how many lines the delimiter sniffer compares.
const delimiterSampleLines = 5

// DetectDelimiter picks the delimiter whose per-line counts are highest and
// steadiest across the first few non-empty lines.
func DetectDelimiter(text string) rune {
	sample := make([]string, 0, delimiterSampleLines)
	for _, line := range splitLines(text) {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			sample = append(sample, trimmed)
			if len(sample) == delimiterSampleLines {
				break
			}
		}
	}
	if len(sample) == 0 {
		return ','
	}

	best := ','
	bestScore := 0.0
	for _, delim := range csvDelimiters {
		counts := make([]int, 0, len(sample))
		sum := 0
		for _, line := range sample {
			n := strings.Count(line, string(delim))
			counts = append(counts, n)
			sum += n
		}
		avg := float64(sum) / float64(len(counts))
		if avg == 0 {
			continue
		}

		variance := 0.0
		for _, n := range counts {
			diff := float64(n) - avg
			variance += diff * diff
		}
		variance /= float64(len(counts))

		score := avg / (1.0 + variance)
		if score > bestScore {
			bestScore = score
			best = delim
		}
	}
	return best
}

// parseCSV reads a delimited text catalog. The first non-empty line is the
// header; warnings carry 1-based file line numbers.
func parseCSV(data []byte, opts Options) ([]row, error) {
	enc := opts.Encoding
	if enc == "" {
		enc = DetectEncoding(data)
	}
	text, err := DecodeText(data, enc)
	if err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	delim := opts.Delimiter
	if delim == 0 {
		delim = DetectDelimiter(text)
	}

	lines := splitLines(text)
	headerAt := -1
	for i, line := range lines {
		if strings.TrimSpace(line) != "" {
			headerAt = i
			break
		}
	}
	if headerAt == -1 {
		return nil, fmt.Errorf("catalog is empty")
	}

	cols, err := resolveColumns(splitQuoted(lines[headerAt], delim))
	if err != nil {
		return nil, err
	}

	var rows []row
	for i := headerAt + 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "" {
			continue
		}
		number := i + 1
		doc, warns := mapFields(splitQuoted(lines[i], delim), cols, number)
		rows = append(rows, row{number: number, doc: doc, warnings: warns})
	}
	return rows, nil
}

// splitLines splits text into lines regardless of the line ending convention.
func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return strings.Split(text, "\n")
}

// splitQuoted splits one delimited line, honoring double-quoted fields with
// doubled-quote escapes.
func splitQuoted(line string, delim rune) []string {
	fields := make([]string, 0, 8)
	var current strings.Builder
	inQuotes := false

	runes := []rune(line)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case inQuotes && r == '"':
			if i+1 < len(runes) && runes[i+1] == '"' {
				current.WriteRune('"')
				i++
				continue
			}
			inQuotes = false
		case r == '"':
			inQuotes = true
		case r == delim && !inQuotes:
			fields = append(fields, current.String())
			current.Reset()
		default:
			current.WriteRune(r)
		}
	}
	fields = append(fields, current.String())
	return fields
}
