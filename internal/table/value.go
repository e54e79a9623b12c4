package table

import (
	"fmt"
	"strconv"
	"time"
)

// Kind is the semantic type tag of a column.
type Kind int

const (
	Numeric Kind = iota
	Categorical
	Temporal
)

func (k Kind) String() string {
	switch k {
	case Numeric:
		return "numeric"
	case Categorical:
		return "categorical"
	case Temporal:
		return "temporal"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// MarshalText lets kinds appear as plain strings in JSON and YAML.
func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// ParseKind is the inverse of Kind.String.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "numeric":
		return Numeric, nil
	case "categorical":
		return Categorical, nil
	case "temporal", "datetime":
		return Temporal, nil
	}
	return 0, fmt.Errorf("unknown column kind %q", s)
}

type valueTag uint8

const (
	tagMissing valueTag = iota
	tagNum
	tagStr
	tagTime
)

// Value is a single cell. The zero Value is missing.
type Value struct {
	tag valueTag
	num float64
	str string
	ts  time.Time
}

// Num returns a numeric cell.
func Num(f float64) Value { return Value{tag: tagNum, num: f} }

// Str returns a text cell.
func Str(s string) Value { return Value{tag: tagStr, str: s} }

// Time returns a timestamp cell.
func Time(t time.Time) Value { return Value{tag: tagTime, ts: t} }

// Null returns the missing marker.
func Null() Value { return Value{} }

func (v Value) IsNull() bool { return v.tag == tagMissing }
func (v Value) IsNum() bool  { return v.tag == tagNum }
func (v Value) IsStr() bool  { return v.tag == tagStr }
func (v Value) IsTime() bool { return v.tag == tagTime }

// Float returns the numeric payload; ok is false for non-numeric cells.
func (v Value) Float() (float64, bool) { return v.num, v.tag == tagNum }

// Text returns the string payload; ok is false for non-text cells.
func (v Value) Text() (string, bool) { return v.str, v.tag == tagStr }

// Timestamp returns the time payload; ok is false for non-temporal cells.
func (v Value) Timestamp() (time.Time, bool) { return v.ts, v.tag == tagTime }

// TimeLayout is the rendering used for timestamps everywhere in reports.
const TimeLayout = "2006-01-02 15:04:05"

// String renders the cell for reports. Missing renders as the empty string.
func (v Value) String() string {
	switch v.tag {
	case tagNum:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case tagStr:
		return v.str
	case tagTime:
		return v.ts.Format(TimeLayout)
	default:
		return ""
	}
}

// Key identifies a cell for equality checks. Two missing cells share a key.
func (v Value) Key() string {
	switch v.tag {
	case tagNum:
		return "n" + strconv.FormatFloat(v.num, 'g', -1, 64)
	case tagStr:
		return "s" + v.str
	case tagTime:
		return "t" + strconv.FormatInt(v.ts.UnixNano(), 10)
	default:
		return "\x00"
	}
}

// Equal reports whether two cells hold the same value.
func (v Value) Equal(o Value) bool { return v.Key() == o.Key() }
