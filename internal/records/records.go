// Package records parses the line-oriented Name|Type|Value data format.
package records

import (
	"errors"
	"fmt"
	"strings"
)

// Record types. TypeDebug records are only visible in the generator
// context and are never emitted as constants.
const (
	TypeString = "string"
	TypeInt    = "int"
	TypeBool   = "bool"
	TypeDebug  = "debug"
)

const (
	// DefaultName is used for a line whose name field is empty.
	DefaultName = "Unknown"
	// TagName is the record the version is derived from.
	TagName = "Tag"
)

var ErrMissingTag = errors.New("missing required Tag record")

type Record struct {
	Name  string
	Type  string
	Value string
}

// IsDebug reports whether the record stays out of the emitted constants.
func (r Record) IsDebug() bool {
	return r.Type == TypeDebug
}

func (r Record) String() string {
	return r.Name + "|" + r.Type + "|" + r.Value
}

// Parse reads one record per non-empty line. Lines split on the first two
// pipes only, so values may contain pipes themselves.
func Parse(raw string) []Record {
	lines := strings.FieldsFunc(raw, func(r rune) bool {
		return r == '\n' || r == '\r'
	})

	parsed := make([]Record, 0, len(lines))

	for _, line := range lines {
		parsed = append(parsed, parseLine(line))
	}

	return parsed
}

func parseLine(line string) Record {
	fields := strings.SplitN(line, "|", 3)

	record := Record{Name: DefaultName, Type: TypeString}

	if name := strings.TrimSpace(fields[0]); name != "" {
		record.Name = name
	}

	if len(fields) > 1 {
		if typ := strings.TrimSpace(fields[1]); typ != "" {
			record.Type = typ
		}
	}

	if len(fields) > 2 {
		record.Value = fields[2]
	}

	return record
}

// Find returns the record named name. A missing Tag record is reported as
// ErrMissingTag because no version can be derived without it.
func Find(list []Record, name string) (Record, error) {
	for _, record := range list {
		if record.Name == name {
			return record, nil
		}
	}

	if name == TagName {
		return Record{}, ErrMissingTag
	}

	return Record{}, fmt.Errorf("record %q not found", name)
}

// Merge appends overrides to base. A record whose name already exists
// replaces the earlier one in its original position.
func Merge(base []Record, overrides ...Record) []Record {
	merged := make([]Record, 0, len(base)+len(overrides))
	index := map[string]int{}

	for _, record := range append(append([]Record{}, base...), overrides...) {
		if i, ok := index[record.Name]; ok {
			merged[i] = record
			continue
		}

		index[record.Name] = len(merged)
		merged = append(merged, record)
	}

	return merged
}

// Format writes records back out in the text format, one per line.
func Format(list []Record) string {
	var sb strings.Builder

	for _, record := range list {
		sb.WriteString(record.String())
		sb.WriteByte('\n')
	}

	return sb.String()
}
