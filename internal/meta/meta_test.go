// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package meta

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		name string
		m    Marker
		want string
	}{
		{"bare token", Bare("Lemma"), "//[Lemma]"},
		{"single pair", New("ref", "cite"), "//[ref:cite]"},
		{"several pairs keep order", New("formula", "align*", "labels", "a b"), "//[formula:align*,labels:a b]"},
		{"commas dropped from values", New("formula", "display", "labels", "a,b"), "//[formula:display,labels:ab]"},
		{"empty", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Format(tt.m))
		})
	}
}

func TestParse(t *testing.T) {
	m, ok := Parse("//[formula:display,labels:eq1 eq2]")
	require.True(t, ok)
	assert.Equal(t, "display", m.Value("formula"))
	assert.Equal(t, "eq1 eq2", m.Value("labels"))

	m, ok = Parse("//[Lemma]")
	require.True(t, ok)
	assert.Equal(t, "Lemma", m.Value(TypeKey))

	m, ok = Parse("command:left")
	require.True(t, ok)
	assert.Equal(t, "left", m.Value("command"))

	_, ok = Parse("//[]")
	assert.False(t, ok)
	_, ok = Parse("//[unterminated")
	assert.False(t, ok)
}

func TestParseFormatAgree(t *testing.T) {
	for _, m := range []Marker{Bare("Theorem"), New("ref", "eqref"), New("formula", "inline", "sizes", "- bigg")} {
		got, ok := Parse(Format(m))
		require.True(t, ok)
		assert.Equal(t, m, got)
	}
}

func TestTrailing(t *testing.T) {
	before, m, ok := Trailing("] //[Lemma]")
	require.True(t, ok)
	assert.Equal(t, "]", before)
	assert.Equal(t, "Lemma", m.Value(TypeKey))

	before, m, ok = Trailing("$ <eq1> //[formula:display,labels:eq1]  ")
	require.True(t, ok)
	assert.Equal(t, "$ <eq1>", before)
	assert.Equal(t, "display", m.Value("formula"))

	_, _, ok = Trailing("( //[command:left] x")
	assert.False(t, ok)
	_, _, ok = Trailing("plain text")
	assert.False(t, ok)
}

func TestWithAndStrip(t *testing.T) {
	m := New("formula", "inline").With("sizes", "bigg").With("labels", "")
	assert.Equal(t, "//[formula:inline,sizes:bigg]", Format(m))
	assert.Equal(t, "//[formula:display]", Format(New("formula", "inline").With("formula", "display")))

	assert.Equal(t, "a  b\n", Strip("a //[ref:cite] b//[x]\n"))
}
