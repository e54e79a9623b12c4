package parser

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

type csvParser struct{}

func (csvParser) CanParse(filename string) bool {
	name := strings.ToLower(filename)
	return strings.HasSuffix(name, ".csv") || strings.HasSuffix(name, ".tsv") || strings.HasSuffix(name, ".txt")
}

func (csvParser) Parse(content []byte, opt Options) (*Sheet, error) {
	content = bytes.TrimPrefix(content, []byte("\xef\xbb\xbf"))
	sh := &Sheet{Type: "CSV"}
	delim := opt.Delimiter
	if delim == 0 {
		delim = sniffDelimiter(content)
	}
	if delim == '\t' {
		sh.Type = "TSV"
	}
	r := csv.NewReader(bytes.NewReader(content))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	r.LazyQuotes = true
	r.Comma = delim

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return sh, nil
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	sh.Header = append([]string(nil), header...)
	for {
		rec, err := r.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("read row %d: %w", len(sh.Rows)+1, err)
		}
		sh.Rows = append(sh.Rows, rec)
	}
	return sh, nil
}

// sniffDelimiter picks the most frequent candidate in the first line.
func sniffDelimiter(content []byte) rune {
	line := content
	if i := bytes.IndexByte(content, '\n'); i >= 0 {
		line = content[:i]
	}
	best, bestN := ',', 0
	for _, d := range []rune{',', ';', '\t', '|'} {
		if n := bytes.Count(line, []byte(string(d))); n > bestN {
			best, bestN = d, n
		}
	}
	return best
}

// ParseDelimiter maps a user-facing delimiter name to its rune; "" means sniff.
func ParseDelimiter(s string) (rune, error) {
	switch strings.ToLower(s) {
	case "", "auto":
		return 0, nil
	case ",", "comma":
		return ',', nil
	case ";", "semicolon":
		return ';', nil
	case "\t", "tab":
		return '\t', nil
	case "|", "pipe":
		return '|', nil
	}
	return 0, fmt.Errorf("unsupported delimiter: %q (use comma, semicolon, tab or pipe)", s)
}
