package bib

import (
	"fmt"
	"strings"
	"unicode"
)

// Entry is one parsed bibliographic record. Fields preserve the order
// they appeared in the source; field names are stored lowercased.
type Entry struct {
	Type   string
	Key    string
	Fields []Field
}

// Field is a single name/value pair within an entry.
type Field struct {
	Name  string
	Value string
}

// Get returns the value of the named field, or "" if absent.
func (e *Entry) Get(name string) string {
	name = strings.ToLower(name)
	for _, f := range e.Fields {
		if f.Name == name {
			return f.Value
		}
	}
	return ""
}

// Has reports whether the named field is present.
func (e *Entry) Has(name string) bool {
	name = strings.ToLower(name)
	for _, f := range e.Fields {
		if f.Name == name {
			return true
		}
	}
	return false
}

// Set replaces the named field's value, appending the field if absent.
func (e *Entry) Set(name, value string) {
	name = strings.ToLower(name)
	for i, f := range e.Fields {
		if f.Name == name {
			e.Fields[i].Value = value
			return
		}
	}
	e.Fields = append(e.Fields, Field{Name: name, Value: value})
}

// Delete removes the named field if present.
func (e *Entry) Delete(name string) {
	name = strings.ToLower(name)
	for i, f := range e.Fields {
		if f.Name == name {
			e.Fields = append(e.Fields[:i], e.Fields[i+1:]...)
			return
		}
	}
}

// Rename moves the value of one field name to another, keeping position.
func (e *Entry) Rename(from, to string) bool {
	from = strings.ToLower(from)
	for i, f := range e.Fields {
		if f.Name == from {
			e.Fields[i].Name = strings.ToLower(to)
			return true
		}
	}
	return false
}

// ParseEntry parses one entry block into a structured Entry using a
// brace-depth-aware scan. Unlike the tolerant extractors, this parser
// reports malformed blocks (unbalanced delimiters, missing header) as
// errors so callers can flag them instead of silently repairing.
func ParseEntry(block string) (*Entry, error) {
	s := strings.TrimSpace(block)
	if !strings.HasPrefix(s, "@") {
		return nil, fmt.Errorf("entry does not start with @")
	}

	open := strings.IndexByte(s, '{')
	if open == -1 {
		return nil, fmt.Errorf("entry has no opening brace")
	}
	entryType := strings.ToLower(strings.TrimSpace(s[1:open]))
	if entryType == "" {
		return nil, fmt.Errorf("entry has no type")
	}

	body, err := braceBody(s[open:])
	if err != nil {
		return nil, err
	}

	comma := strings.IndexByte(body, ',')
	if comma == -1 {
		// Entry with a key and no fields.
		key := strings.TrimSpace(body)
		if key == "" {
			return nil, fmt.Errorf("entry has no key")
		}
		return &Entry{Type: entryType, Key: key}, nil
	}

	entry := &Entry{
		Type: entryType,
		Key:  strings.TrimSpace(body[:comma]),
	}
	if entry.Key == "" {
		return nil, fmt.Errorf("entry has no key")
	}

	if err := parseFieldList(body[comma+1:], entry); err != nil {
		return nil, fmt.Errorf("entry %s: %w", entry.Key, err)
	}
	return entry, nil
}

// braceBody returns the content between the outermost balanced braces.
// s must begin with '{'.
func braceBody(s string) (string, error) {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[1:i], nil
			}
		}
	}
	return "", fmt.Errorf("unbalanced braces")
}

// parseFieldList scans "name = value, name = value, ..." with values
// delimited by balanced braces, double quotes, or left bare (numbers).
func parseFieldList(s string, entry *Entry) error {
	i := 0
	for i < len(s) {
		// Field name.
		start := i
		for i < len(s) && s[i] != '=' && s[i] != ',' {
			i++
		}
		name := strings.ToLower(strings.TrimSpace(s[start:i]))
		if i >= len(s) || s[i] == ',' {
			// Trailing comma or stray text with no assignment.
			if name != "" && s[start:i] != "" && strings.TrimSpace(s[start:i]) != "" {
				return fmt.Errorf("field %q has no value", name)
			}
			i++
			continue
		}
		i++ // skip '='
		for i < len(s) && unicode.IsSpace(rune(s[i])) {
			i++
		}
		if i >= len(s) {
			return fmt.Errorf("field %q has no value", name)
		}

		var value string
		switch s[i] {
		case '{':
			body, n, err := scanBraced(s[i:])
			if err != nil {
				return fmt.Errorf("field %q: %w", name, err)
			}
			value = body
			i += n
		case '"':
			end := strings.IndexByte(s[i+1:], '"')
			if end == -1 {
				return fmt.Errorf("field %q: unterminated quote", name)
			}
			value = s[i+1 : i+1+end]
			i += end + 2
		default:
			start := i
			for i < len(s) && s[i] != ',' {
				i++
			}
			value = strings.TrimSpace(s[start:i])
		}

		if name != "" {
			entry.Fields = append(entry.Fields, Field{Name: name, Value: value})
		}

		// Skip to the next field.
		for i < len(s) && s[i] != ',' {
			if !unicode.IsSpace(rune(s[i])) {
				return fmt.Errorf("field %q: trailing text after value", name)
			}
			i++
		}
		if i < len(s) {
			i++ // skip ','
		}
	}
	return nil
}

// scanBraced reads a balanced {...} value starting at s[0]=='{' and
// returns the inner text and the number of bytes consumed.
func scanBraced(s string) (string, int, error) {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[1:i], i + 1, nil
			}
		}
	}
	return "", 0, fmt.Errorf("unbalanced braces in value")
}

// NormalizeValue flattens newlines and collapses repeated spaces inside
// a field value.
func NormalizeValue(v string) string {
	v = strings.ReplaceAll(v, "\n", " ")
	v = strings.TrimSpace(v)
	for strings.Contains(v, "  ") {
		v = strings.ReplaceAll(v, "  ", " ")
	}
	return v
}
