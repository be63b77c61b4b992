// Facultypulse - Review Analytics and Statistical Enrichment
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/facultypulse

package review

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

type valueKind uint8

const (
	kindNull valueKind = iota
	kindNumber
	kindString
	kindBool
)

// Value is a loosely typed scalar decoded from a scraped JSON field.
// Scrapers emit the same field as a number in one file and a string in the
// next, so Value keeps the literal text and whether it was numeric.
type Value struct {
	kind valueKind
	text string
	num  float64
}

// Null returns an absent Value.
func Null() Value { return Value{} }

// Number returns a numeric Value.
func Number(f float64) Value {
	return Value{kind: kindNumber, num: f, text: strconv.FormatFloat(f, 'f', -1, 64)}
}

// String returns a textual Value.
func String(s string) Value { return Value{kind: kindString, text: s} }

// IsNull reports whether the field was missing or JSON null.
func (v Value) IsNull() bool { return v.kind == kindNull }

// IsNumber reports whether the field was a JSON number.
func (v Value) IsNumber() bool { return v.kind == kindNumber }

// Text returns the field as text; numbers keep their literal form and null
// is the empty string.
func (v Value) Text() string { return v.text }

// Float parses the field as a real number. Strings are trimmed before
// parsing. The boolean is false for null, booleans and unparseable text.
func (v Value) Float() (float64, bool) {
	switch v.kind {
	case kindNumber:
		return v.num, true
	case kindString:
		f, err := strconv.ParseFloat(strings.TrimSpace(v.text), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// UnmarshalJSON accepts null, numbers, strings and booleans.
func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		*v = Value{}
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("decode string value: %w", err)
		}
		*v = String(s)
	case bytes.Equal(data, []byte("true")) || bytes.Equal(data, []byte("false")):
		*v = Value{kind: kindBool, text: string(data)}
	default:
		f, err := strconv.ParseFloat(string(data), 64)
		if err != nil {
			return fmt.Errorf("decode numeric value %q: %w", data, err)
		}
		*v = Value{kind: kindNumber, num: f, text: string(data)}
	}
	return nil
}

// MarshalJSON writes the value back in its original JSON kind.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case kindNumber, kindBool:
		return []byte(v.text), nil
	case kindString:
		return json.Marshal(v.text)
	default:
		return []byte("null"), nil
	}
}
