// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package labels tracks label definitions, references and citations for a
// single conversion. A Registry is created per conversion call and passed
// explicitly to the parsers; it is not safe for concurrent use.
package labels

import (
	"sort"

	"github.com/pdiddy/tyx/internal/diag"
)

// Info describes a defined label.
type Info struct {
	Label string
	// Kind is the environment name for theorem-like labels, "section" or
	// "equation" otherwise.
	Kind  string
	Title string
}

// Registry records label definitions and uses.
type Registry struct {
	defs      map[string]Info
	order     []string
	refs      map[string]bool
	refOrder  []string
	cites     map[string]bool
	citeOrder []string
	conflicts diag.List
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{
		defs:  make(map[string]Info),
		refs:  make(map[string]bool),
		cites: make(map[string]bool),
	}
}

// Define records a label. Redefining an existing label keeps the first
// definition and returns a LabelConflict diagnostic, which is also kept for
// Diagnostics.
func (r *Registry) Define(label, kind, title string) error {
	if prev, ok := r.defs[label]; ok {
		r.conflicts.Add(diag.LabelConflict, diag.Ranging{},
			"label %q already defined as %s; %s definition ignored", label, prev.Kind, kind)
		d := r.conflicts[len(r.conflicts)-1]
		return &d
	}
	r.defs[label] = Info{Label: label, Kind: kind, Title: title}
	r.order = append(r.order, label)
	return nil
}

// Reference records a use of label. It never fails; dangling references
// surface through UndefinedReferences.
func (r *Registry) Reference(label string) {
	if !r.refs[label] {
		r.refs[label] = true
		r.refOrder = append(r.refOrder, label)
	}
}

// Cite records a bibliography key. Citations are tracked apart from labels
// because their targets live outside the document.
func (r *Registry) Cite(key string) {
	if !r.cites[key] {
		r.cites[key] = true
		r.citeOrder = append(r.citeOrder, key)
	}
}

// Lookup returns the definition of label.
func (r *Registry) Lookup(label string) (Info, bool) {
	info, ok := r.defs[label]
	return info, ok
}

// Labels returns all definitions in definition order.
func (r *Registry) Labels() []Info {
	out := make([]Info, len(r.order))
	for i, l := range r.order {
		out[i] = r.defs[l]
	}
	return out
}

// Citations returns the cited keys in first-use order.
func (r *Registry) Citations() []string {
	return append([]string(nil), r.citeOrder...)
}

// UndefinedReferences returns the referenced labels that were never
// defined, sorted.
func (r *Registry) UndefinedReferences() []string {
	var out []string
	for l := range r.refs {
		if _, ok := r.defs[l]; !ok {
			out = append(out, l)
		}
	}
	sort.Strings(out)
	return out
}

// UnusedLabels returns the defined labels that were never referenced,
// sorted.
func (r *Registry) UnusedLabels() []string {
	var out []string
	for l := range r.defs {
		if !r.refs[l] {
			out = append(out, l)
		}
	}
	sort.Strings(out)
	return out
}

// Diagnostics returns the label conflicts followed by one
// UnresolvedReference per undefined reference.
func (r *Registry) Diagnostics() diag.List {
	out := append(diag.List(nil), r.conflicts...)
	for _, l := range r.UndefinedReferences() {
		out.Add(diag.UnresolvedReference, diag.Ranging{}, "reference to undefined label %q", l)
	}
	return out
}
