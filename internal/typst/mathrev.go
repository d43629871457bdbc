// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package typst

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/pdiddy/tyx/internal/meta"
	"github.com/pdiddy/tyx/internal/symbols"
	"github.com/pdiddy/tyx/internal/tex"
)

type mkind int

const (
	mIdent mkind = iota
	mNumber
	mString
	mOpen
	mClose
	mSub
	mSup
	mComma
	mSemi
	mAlign
	// mEscape is a backslash escape of one rune; text is the rune.
	mEscape
	// mCommand is a TeX command carried verbatim; text is the name.
	mCommand
	mBreak
	mComment
	mHash
	mSpace
	mChar
	// mTeX is already-converted TeX, produced from markers.
	mTeX
)

type mtok struct {
	kind mkind
	text string
	// size is the sizing command recorded for a delimiter.
	size string
}

// tokenizeMath splits Typst math into tokens.
func tokenizeMath(s string) []mtok {
	var toks []mtok
	for i := 0; i < len(s); {
		r, n := utf8.DecodeRuneInString(s[i:])
		switch {
		case unicode.IsSpace(r):
			j := i
			for j < len(s) {
				r2, n2 := utf8.DecodeRuneInString(s[j:])
				if !unicode.IsSpace(r2) {
					break
				}
				j += n2
			}
			toks = append(toks, mtok{kind: mSpace, text: s[i:j]})
			i = j
		case r == '/' && strings.HasPrefix(s[i:], "//"):
			end := strings.IndexByte(s[i:], '\n')
			if end < 0 {
				end = len(s) - i
			}
			toks = append(toks, mtok{kind: mComment, text: s[i : i+end]})
			i += end
		case r == '\\':
			if i+1 >= len(s) {
				toks = append(toks, mtok{kind: mBreak})
				i++
				continue
			}
			next, m := utf8.DecodeRuneInString(s[i+1:])
			switch {
			case unicode.IsSpace(next):
				toks = append(toks, mtok{kind: mBreak})
				i++
			case next < utf8.RuneSelf && isASCIILetter(byte(next)):
				j := i + 1
				for j < len(s) && isASCIILetter(s[j]) {
					j++
				}
				toks = append(toks, mtok{kind: mCommand, text: s[i+1 : j]})
				i = j
			default:
				toks = append(toks, mtok{kind: mEscape, text: string(next)})
				i += 1 + m
			}
		case r == '"':
			j := i + 1
			for j < len(s) && s[j] != '"' {
				if s[j] == '\\' {
					j++
				}
				j++
			}
			end := min(j, len(s))
			toks = append(toks, mtok{kind: mString, text: unescapeString(s[i+1 : end])})
			i = min(j+1, len(s))
		case r == '#':
			j := i + 1
			for j < len(s) && isASCIILetter(s[j]) {
				j++
			}
			toks = append(toks, mtok{kind: mHash, text: s[i+1 : j]})
			i = j
		case unicode.IsLetter(r):
			j := i + n
			for j < len(s) {
				r2, n2 := utf8.DecodeRuneInString(s[j:])
				if !unicode.IsLetter(r2) {
					break
				}
				j += n2
			}
			if utf8.RuneCountInString(s[i:j]) > 1 {
				for j+1 < len(s) && s[j] == '.' && isASCIILetter(s[j+1]) {
					j++
					for j < len(s) && isASCIILetter(s[j]) {
						j++
					}
				}
			}
			toks = append(toks, mtok{kind: mIdent, text: s[i:j]})
			i = j
		case unicode.IsDigit(r):
			j := i
			for j < len(s) && s[j] >= '0' && s[j] <= '9' {
				j++
			}
			if j+1 < len(s) && s[j] == '.' && s[j+1] >= '0' && s[j+1] <= '9' {
				j++
				for j < len(s) && s[j] >= '0' && s[j] <= '9' {
					j++
				}
			}
			toks = append(toks, mtok{kind: mNumber, text: s[i:j]})
			i = j
		default:
			k := mChar
			switch r {
			case '(':
				k = mOpen
			case ')':
				k = mClose
			case '_':
				k = mSub
			case '^':
				k = mSup
			case ',':
				k = mComma
			case ';':
				k = mSemi
			case '&':
				k = mAlign
			}
			toks = append(toks, mtok{kind: k, text: s[i : i+n]})
			i += n
		}
	}
	return toks
}

func isASCIILetter(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

// resolveMarkers folds command markers into the tokens they annotate.
// A sizing marker attaches to the delimiter before it, which then no
// longer groups; silent commands and empty delimiters become TeX tokens.
func resolveMarkers(toks []mtok) []mtok {
	out := make([]mtok, 0, len(toks))
	for _, t := range toks {
		if t.kind != mComment {
			out = append(out, t)
			continue
		}
		m, ok := meta.Parse(t.text)
		if !ok {
			continue
		}
		name := m.Value("command")
		switch {
		case name == "":
		case symbols.IsSizing(name) && m.Value("delim") == "none":
			out = append(out, mtok{kind: mTeX, text: `\` + name + "."})
		case symbols.IsSizing(name):
			p := len(out) - 1
			for p >= 0 && out[p].kind == mSpace {
				p--
			}
			if p < 0 {
				out = append(out, mtok{kind: mTeX, text: `\` + name})
				continue
			}
			out[p].size = name
			if out[p].kind == mOpen || out[p].kind == mClose {
				out[p].kind = mChar
			}
		default:
			out = append(out, mtok{kind: mTeX, text: `\` + name})
		}
	}
	return out
}

// mnode is a token or a parenthesized group.
type mnode struct {
	tok      mtok
	group    bool
	closed   bool
	children []*mnode
}

func parseMath(toks []mtok) []*mnode {
	root := &mnode{group: true}
	stack := []*mnode{root}
	for _, t := range toks {
		top := stack[len(stack)-1]
		switch t.kind {
		case mOpen:
			g := &mnode{group: true, tok: t}
			top.children = append(top.children, g)
			stack = append(stack, g)
		case mClose:
			if len(stack) == 1 {
				top.children = append(top.children, &mnode{tok: mtok{kind: mChar, text: ")"}})
				continue
			}
			top.closed = true
			stack = stack[:len(stack)-1]
		default:
			top.children = append(top.children, &mnode{tok: t})
		}
	}
	return root.children
}

// texWriter accumulates TeX and keeps a command from running into a
// following letter.
type texWriter struct {
	b strings.Builder
	// word is set when the output ends in a control word.
	word bool
	last rune
}

func (w *texWriter) write(s string) {
	if s == "" {
		return
	}
	first, _ := utf8.DecodeRuneInString(s)
	if w.word && unicode.IsLetter(first) {
		w.b.WriteByte(' ')
	}
	w.b.WriteString(s)
	w.last, _ = utf8.DecodeLastRuneInString(s)
	w.word = false
}

func (w *texWriter) command(s string) {
	w.write(s)
	w.word = isASCIILetter(s[len(s)-1])
}

func (w *texWriter) space() {
	if w.last == 0 || w.last == ' ' {
		return
	}
	w.b.WriteByte(' ')
	w.last = ' '
	w.word = false
}

// reverser converts a parsed Typst math tree to TeX.
type reverser struct {
	sizes []string
	next  int
}

// nextSizes returns the opening and closing sizing commands of the next
// norm or abs call.
func (r *reverser) nextSizes() (string, string) {
	if r.next >= len(r.sizes) {
		return "", ""
	}
	entry := r.sizes[r.next]
	r.next++
	return tex.ParseSizes(entry)
}

// MathToTeX converts Typst math into preprocessed TeX math. sizes lists
// the sizing entries of each norm and abs call in order, "-" for none.
func MathToTeX(s string, sizes []string) string {
	r := &reverser{sizes: sizes}
	return r.render(parseMath(resolveMarkers(tokenizeMath(s))))
}

func (r *reverser) render(ns []*mnode) string {
	w := &texWriter{}
	r.nodes(w, ns)
	return strings.TrimSpace(w.b.String())
}

func (r *reverser) nodes(w *texWriter, ns []*mnode) {
	for i := 0; i < len(ns); i++ {
		i = r.node(w, ns, i)
	}
}

func (r *reverser) node(w *texWriter, ns []*mnode, i int) int {
	n := ns[i]
	if n.group {
		w.write("(")
		r.nodes(w, n.children)
		if n.closed {
			w.write(")")
		}
		return i
	}
	t := n.tok
	switch t.kind {
	case mSpace:
		w.space()
	case mIdent:
		if i+1 < len(ns) && ns[i+1].group {
			if r.call(w, t.text, ns[i+1]) {
				return i + 1
			}
		}
		r.ident(w, t.text)
	case mNumber:
		w.write(t.text)
	case mString:
		w.write(`\text{` + t.text + "}")
	case mSub, mSup:
		return r.script(w, ns, i)
	case mComma:
		w.write(",")
	case mSemi:
		w.write(";")
	case mAlign:
		w.write("&")
	case mEscape:
		w.write(sized(t.size, escapeTeX(t.text)))
	case mCommand:
		w.command(`\` + t.text)
	case mBreak:
		w.space()
		w.write(`\\`)
	case mTeX:
		w.command(t.text)
	case mHash:
		w.write("#" + t.text)
	case mChar:
		w.write(sized(t.size, charTeX(t.text)))
	}
	return i
}

func sized(size, delim string) string {
	if size == "" {
		return delim
	}
	if d, ok := symbols.DelimiterTeX(delim); ok {
		delim = d
	}
	return `\` + size + delim
}

// escapeTeX converts a Typst escape. Argument separators and characters
// that are plain in TeX lose the backslash.
func escapeTeX(c string) string {
	switch c {
	case ",", ";", "/", `"`:
		return c
	}
	return `\` + c
}

func charTeX(c string) string {
	switch c {
	case "‖":
		return `\|`
	case "%":
		return `\%`
	}
	return c
}

func (r *reverser) ident(w *texWriter, name string) {
	switch {
	case symbols.IsFunction(name):
		w.command(`\` + name)
	case name == "space":
		w.write(`\ `)
	default:
		if cmd, ok := symbols.SpacingCommand(name); ok {
			w.command(`\` + cmd)
			return
		}
		w.write(name)
	}
}

func (r *reverser) script(w *texWriter, ns []*mnode, i int) int {
	op := ns[i].tok.text
	j := i + 1
	for j < len(ns) && !ns[j].group && ns[j].tok.kind == mSpace {
		j++
	}
	if j >= len(ns) {
		w.write(op)
		return i
	}
	if ns[j].group {
		w.write(op + "{" + r.render(ns[j].children) + "}")
		return j
	}
	sub := &texWriter{}
	k := r.node(sub, ns, j)
	s := strings.TrimSpace(sub.b.String())
	if utf8.RuneCountInString(s) == 1 {
		w.write(op + s)
	} else {
		w.write(op + "{" + s + "}")
	}
	return k
}

// splitNodes cuts a call's children at top-level separators.
func splitNodes(ns []*mnode, sep mkind) [][]*mnode {
	parts := [][]*mnode{nil}
	for _, n := range ns {
		if !n.group && n.tok.kind == sep {
			parts = append(parts, nil)
			continue
		}
		parts[len(parts)-1] = append(parts[len(parts)-1], n)
	}
	return parts
}

// stringArg returns the content of an argument that is a single string.
func stringArg(ns []*mnode) (string, bool) {
	var found *mnode
	for _, n := range ns {
		if !n.group && n.tok.kind == mSpace {
			continue
		}
		if found != nil || n.group || n.tok.kind != mString {
			return "", false
		}
		found = n
	}
	if found == nil {
		return "", false
	}
	return found.tok.text, true
}

// call converts a function call. It reports false for functions it does
// not know, which are then written as identifier plus group.
func (r *reverser) call(w *texWriter, name string, g *mnode) bool {
	args := splitNodes(g.children, mComma)
	switch name {
	case "norm", "abs":
		openSize, closeSize := r.nextSizes()
		delim := "|"
		if name == "norm" {
			delim = `\|`
		}
		open, close := tex.SizedDelimiters(openSize, closeSize, delim)
		w.write(open + r.render(g.children) + close)
		return true
	case "frac":
		if len(args) != 2 {
			return false
		}
		w.write(`\frac{` + r.render(args[0]) + "}{" + r.render(args[1]) + "}")
		return true
	case "sqrt":
		w.write(`\sqrt{` + r.render(g.children) + "}")
		return true
	case "root":
		if len(args) != 2 {
			return false
		}
		w.write(`\sqrt[` + r.render(args[0]) + "]{" + r.render(args[1]) + "}")
		return true
	case "op":
		s, ok := stringArg(g.children)
		if !ok {
			return false
		}
		w.write(`\operatorname{` + s + "}")
		return true
	case "cases":
		rows := make([]string, 0, len(args))
		for _, a := range args {
			rows = append(rows, r.render(a))
		}
		w.write(`\begin{cases}` + strings.Join(rows, ` \\ `) + `\end{cases}`)
		return true
	case "mat":
		return r.matrix(w, g)
	}
	if cmd, ok := symbols.AccentCommand(name); ok {
		w.write(`\` + cmd + "{" + r.render(g.children) + "}")
		return true
	}
	if cmd, ok := symbols.FontCommand(name); ok {
		if s, ok := stringArg(g.children); ok {
			w.write(`\` + cmd + "{" + s + "}")
		} else {
			w.write(`\` + cmd + "{" + r.render(g.children) + "}")
		}
		return true
	}
	return false
}

var matrixEnvs = map[string]string{
	"#none": "matrix",
	`"("`:   "pmatrix",
	`"["`:   "bmatrix",
	`"{"`:   "Bmatrix",
	`"|"`:   "vmatrix",
	`"‖"`:   "Vmatrix",
}

func (r *reverser) matrix(w *texWriter, g *mnode) bool {
	env := "pmatrix"
	var rows []string
	for ri, row := range splitNodes(g.children, mSemi) {
		cells := splitNodes(row, mComma)
		if ri == 0 && len(cells) > 0 {
			if d, ok := delimArg(cells[0]); ok {
				if e, ok := matrixEnvs[d]; ok {
					env = e
				}
				cells = cells[1:]
			}
		}
		out := make([]string, len(cells))
		for i, c := range cells {
			out[i] = r.render(c)
		}
		rows = append(rows, strings.Join(out, " & "))
	}
	w.write(`\begin{` + env + "}" + strings.Join(rows, ` \\ `) + `\end{` + env + "}")
	return true
}

// delimArg recognizes the named argument delim: <value> and returns the
// value as written.
func delimArg(ns []*mnode) (string, bool) {
	var toks []mtok
	for _, n := range ns {
		if n.group {
			return "", false
		}
		if n.tok.kind != mSpace {
			toks = append(toks, n.tok)
		}
	}
	if len(toks) != 3 || toks[0].kind != mIdent || toks[0].text != "delim" || toks[1].text != ":" {
		return "", false
	}
	switch toks[2].kind {
	case mString:
		return `"` + toks[2].text + `"`, true
	case mHash:
		return "#" + toks[2].text, true
	}
	return "", false
}
