// Package issues collects free-text diagnostics from every stage of a run.
package issues

import (
	"encoding/json"
	"fmt"
)

// Log is an ordered list of diagnostics. A nil *Log reads as empty.
type Log struct {
	entries []string
}

func New() *Log { return &Log{entries: []string{}} }

// Add appends msg verbatim.
func (l *Log) Add(msg string) {
	l.entries = append(l.entries, msg)
}

// Addf appends a formatted diagnostic.
func (l *Log) Addf(format string, args ...any) {
	l.Add(fmt.Sprintf(format, args...))
}

// Merge appends the entries of the other logs, in order.
func (l *Log) Merge(others ...*Log) *Log {
	for _, o := range others {
		if o == nil {
			continue
		}
		l.entries = append(l.entries, o.entries...)
	}
	return l
}

func (l *Log) Entries() []string {
	if l == nil {
		return nil
	}
	out := make([]string, len(l.entries))
	copy(out, l.entries)
	return out
}

func (l *Log) Len() int {
	if l == nil {
		return 0
	}
	return len(l.entries)
}

func (l *Log) Empty() bool { return l.Len() == 0 }

func (l *Log) MarshalJSON() ([]byte, error) {
	if l == nil || l.entries == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(l.entries)
}

func (l *Log) UnmarshalJSON(b []byte) error {
	l.entries = []string{}
	return json.Unmarshal(b, &l.entries)
}

func (l *Log) MarshalYAML() (any, error) {
	if l == nil {
		return []string{}, nil
	}
	return l.Entries(), nil
}
