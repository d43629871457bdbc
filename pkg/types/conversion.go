// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines the configuration and record types shared between
// the tyx CLI, the conversion pipeline and the history store.
package types

import "time"

// Direction names a conversion direction.
type Direction string

const (
	TeXToTypst Direction = "tex2typst"
	TypstToTeX Direction = "typst2tex"
)

// Valid reports whether d is a supported direction.
func (d Direction) Valid() bool {
	return d == TeXToTypst || d == TypstToTeX
}

// Reverse returns the opposite direction.
func (d Direction) Reverse() Direction {
	if d == TeXToTypst {
		return TypstToTeX
	}
	return TeXToTypst
}

// SourceExt is the file extension of the input format for d.
func (d Direction) SourceExt() string {
	if d == TypstToTeX {
		return ".typ"
	}
	return ".tex"
}

// TargetExt is the file extension of the output format for d.
func (d Direction) TargetExt() string {
	return d.Reverse().SourceExt()
}

// ConversionStatus indicates the outcome of converting a single file.
type ConversionStatus string

const (
	ConversionNone   ConversionStatus = "none"
	ConversionDone   ConversionStatus = "converted"
	ConversionFailed ConversionStatus = "failed"
)

// ConversionRecord is one row of the conversion history.
type ConversionRecord struct {
	ID int64 `json:"id" yaml:"id"`

	// SourcePath is the path of the converted input file.
	SourcePath string `json:"source_path" yaml:"source_path"`

	Direction Direction `json:"direction" yaml:"direction"`

	// SourceHash is the hex SHA-256 of the input bytes.
	SourceHash string `json:"source_hash" yaml:"source_hash"`

	OutputPath string `json:"output_path" yaml:"output_path"`
	OutputHash string `json:"output_hash" yaml:"output_hash"`

	// Diagnostics is the number of diagnostics the conversion produced.
	Diagnostics int `json:"diagnostics" yaml:"diagnostics"`

	ConvertedAt time.Time `json:"converted_at" yaml:"converted_at"`

	// Labels lists the labels defined by the document.
	Labels []LabelRecord `json:"labels,omitempty" yaml:"labels,omitempty"`

	// Issues holds the diagnostics themselves.
	Issues []DiagnosticRecord `json:"issues,omitempty" yaml:"issues,omitempty"`
}

// LabelRecord is a label defined by a converted document.
type LabelRecord struct {
	Label string `json:"label" yaml:"label"`
	Kind  string `json:"kind" yaml:"kind"`
	Title string `json:"title,omitempty" yaml:"title,omitempty"`
}

// DiagnosticRecord is a stored diagnostic.
type DiagnosticRecord struct {
	Kind    string `json:"kind" yaml:"kind"`
	Message string `json:"message" yaml:"message"`
	From    int    `json:"from" yaml:"from"`
	To      int    `json:"to" yaml:"to"`
}
