// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package meta reads and writes provenance markers, the line comments of the
// form //[key1:value1,key2:value2] that the Typst emitter attaches to
// converted constructs so the TeX source can be rebuilt. A marker holding a
// single bare token is shorthand for type:<token>.
package meta

import (
	"regexp"
	"strings"
)

// TypeKey is the key a bare token is stored under.
const TypeKey = "type"

// markerPattern matches one marker anywhere in a line.
var markerPattern = regexp.MustCompile(`//\[([^\]\n]*)\]`)

// Attr is one key/value pair of a marker.
type Attr struct {
	Key   string
	Value string
}

// Marker is an ordered list of attributes. Order is preserved so output is
// deterministic.
type Marker []Attr

// New builds a marker from alternating keys and values. A trailing key
// without a value is ignored.
func New(kv ...string) Marker {
	m := make(Marker, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		m = append(m, Attr{kv[i], kv[i+1]})
	}
	return m
}

// Bare returns the marker for a bare token.
func Bare(token string) Marker {
	return Marker{{TypeKey, token}}
}

// Get returns the value stored under key.
func (m Marker) Get(key string) (string, bool) {
	for _, a := range m {
		if a.Key == key {
			return a.Value, true
		}
	}
	return "", false
}

// Value returns the value under key or "" when absent.
func (m Marker) Value(key string) string {
	v, _ := m.Get(key)
	return v
}

// With returns m with key set to value, appending when absent. Empty
// values are skipped.
func (m Marker) With(key, value string) Marker {
	if value == "" {
		return m
	}
	out := make(Marker, 0, len(m)+1)
	replaced := false
	for _, a := range m {
		if a.Key == key {
			a.Value = value
			replaced = true
		}
		out = append(out, a)
	}
	if !replaced {
		out = append(out, Attr{key, value})
	}
	return out
}

// String formats the marker as a comment.
func (m Marker) String() string {
	return Format(m)
}

// Format renders m as //[k:v,...]. A marker whose only attribute is the
// type key is rendered as a bare token.
func Format(m Marker) string {
	if len(m) == 0 {
		return ""
	}
	if len(m) == 1 && m[0].Key == TypeKey {
		return "//[" + sanitize(m[0].Value) + "]"
	}
	parts := make([]string, len(m))
	for i, a := range m {
		parts[i] = a.Key + ":" + sanitize(a.Value)
	}
	return "//[" + strings.Join(parts, ",") + "]"
}

// sanitize drops the characters that would break the micro-syntax.
func sanitize(v string) string {
	return strings.NewReplacer(",", "", "]", "", "\n", " ").Replace(v)
}

// Parse decodes the body of a marker, either "//[...]" or the text between
// the brackets. Each comma-separated item is split at its first colon; an
// item without a colon is a bare token stored under the type key.
func Parse(s string) (Marker, bool) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "//[") {
		if !strings.HasSuffix(s, "]") {
			return nil, false
		}
		s = s[3 : len(s)-1]
	}
	if strings.TrimSpace(s) == "" {
		return nil, false
	}
	var m Marker
	for _, item := range strings.Split(s, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		if k, v, ok := strings.Cut(item, ":"); ok {
			m = append(m, Attr{strings.TrimSpace(k), strings.TrimSpace(v)})
		} else {
			m = append(m, Attr{TypeKey, item})
		}
	}
	return m, len(m) > 0
}

// Trailing splits a line into the text before a marker that ends the line
// and the decoded marker. ok is false when the line does not end in a
// marker.
func Trailing(line string) (before string, m Marker, ok bool) {
	trimmed := strings.TrimRight(line, " \t")
	locs := markerPattern.FindAllStringSubmatchIndex(trimmed, -1)
	if len(locs) == 0 {
		return line, nil, false
	}
	last := locs[len(locs)-1]
	if last[1] != len(trimmed) {
		return line, nil, false
	}
	m, ok = Parse(trimmed[last[2]:last[3]])
	if !ok {
		return line, nil, false
	}
	return strings.TrimRight(trimmed[:last[0]], " \t"), m, true
}

// Strip removes every marker from text.
func Strip(text string) string {
	return markerPattern.ReplaceAllString(text, "")
}
