// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package typst

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/pdiddy/tyx/internal/meta"
	"github.com/pdiddy/tyx/internal/symbols"
	"github.com/pdiddy/tyx/internal/texmath"
)

// slotBase is the first private-use code point standing in for a rendered
// Norm or Abs node while the surrounding math is transformed.
const slotBase = 0xE000

func slot(i int) rune { return rune(slotBase + i) }

func isSlot(r rune) bool { return r >= slotBase && r < slotBase+0x1000 }

// fillSlots replaces slot runes by their rendered nodes.
func fillSlots(s string, rendered []string) string {
	if len(rendered) == 0 {
		return s
	}
	var b strings.Builder
	for _, r := range s {
		if isSlot(r) && int(r-slotBase) < len(rendered) {
			b.WriteString(rendered[r-slotBase])
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// matrixDelims maps matrix environments to the delim argument of mat.
var matrixDelims = map[string]string{
	"matrix":  "#none",
	"pmatrix": `"("`,
	"bmatrix": `"["`,
	"Bmatrix": `"{"`,
	"vmatrix": `"|"`,
	"Vmatrix": `"‖"`,
}

// mathWriter accumulates Typst math. It separates tokens that would
// otherwise fuse into a single identifier.
type mathWriter struct {
	b    strings.Builder
	last rune
	// script is set after a bare single-rune sub/superscript.
	script bool
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || isSlot(r)
}

func (w *mathWriter) needsSpace(next rune) bool {
	switch {
	case w.last == 0 || w.last == ' ' || w.last == '\n':
		return false
	case w.script:
		return isWordRune(next)
	case unicode.IsLetter(w.last):
		return isWordRune(next)
	case w.last == '/' && next == '/':
		return true
	}
	return false
}

func (w *mathWriter) write(s string) {
	if s == "" {
		return
	}
	first, _ := utf8.DecodeRuneInString(s)
	if w.needsSpace(first) {
		w.b.WriteByte(' ')
	}
	w.b.WriteString(s)
	w.last, _ = utf8.DecodeLastRuneInString(s)
	w.script = false
}

func (w *mathWriter) space() {
	if w.last == 0 || w.last == ' ' || w.last == '\n' {
		return
	}
	w.b.WriteByte(' ')
	w.last = ' '
	w.script = false
}

// comment writes a marker and ends the line.
func (w *mathWriter) comment(m meta.Marker) {
	if w.last != 0 && w.last != ' ' && w.last != '\n' {
		w.b.WriteByte(' ')
	}
	w.b.WriteString(m.String())
	w.b.WriteByte('\n')
	w.last = '\n'
	w.script = false
}

func (w *mathWriter) String() string {
	return strings.TrimRight(strings.TrimLeft(w.b.String(), " "), " ")
}

// Transform converts preprocessed TeX math into Typst math.
func Transform(tex string) string {
	w := &mathWriter{}
	transformNodes(w, texmath.ParseString(tex))
	return w.String()
}

// transformAlign converts align content: rows on their own lines ending in
// a line break, cells joined by alignment points.
func transformAlign(tex string) string {
	var rows []string
	for _, row := range splitRows(texmath.ParseString(tex)) {
		cells := texmath.Split(row, isAlignTok)
		out := make([]string, len(cells))
		for i, c := range cells {
			out[i] = strings.TrimSpace(render(c))
		}
		rows = append(rows, strings.Join(out, " & "))
	}
	return strings.Join(rows, " \\\n")
}

func render(ns []*texmath.Node) string {
	w := &mathWriter{}
	transformNodes(w, ns)
	return w.String()
}

func isAlignTok(n *texmath.Node) bool { return !n.Group && n.Tok.Kind == texmath.Align }

func isRowBreak(n *texmath.Node) bool { return !n.Group && n.Tok.Is(`\`) }

// splitRows cuts content at top-level \\ and drops a trailing empty row.
func splitRows(ns []*texmath.Node) [][]*texmath.Node {
	rows := texmath.Split(ns, isRowBreak)
	if len(rows) > 1 && len(texmath.Trim(rows[len(rows)-1])) == 0 {
		rows = rows[:len(rows)-1]
	}
	return rows
}

func transformNodes(w *mathWriter, ns []*texmath.Node) {
	for i := 0; i < len(ns); i++ {
		i = transformOne(w, ns, i)
	}
}

// transformOne writes ns[i] and returns the index of the last node it
// consumed.
func transformOne(w *mathWriter, ns []*texmath.Node, i int) int {
	n := ns[i]
	if n.Group {
		transformNodes(w, n.Children)
		return i
	}
	switch n.Tok.Kind {
	case texmath.Space:
		w.space()
	case texmath.Char:
		w.write(escapeChar(n.Tok.Text))
	case texmath.Sub, texmath.Sup:
		return script(w, ns, i)
	case texmath.Align:
		w.write("&")
	case texmath.Command:
		return command(w, ns, i)
	default:
		w.write(n.Tok.Source())
	}
	return i
}

func escapeChar(c string) string {
	switch c {
	case "#", `"`, "$", "/", `\`:
		return `\` + c
	}
	return c
}

func nextNonSpace(ns []*texmath.Node, i int) int {
	for i < len(ns) && ns[i].IsSpace() {
		i++
	}
	return i
}

// argument renders the argument starting at or after ns[i]: a group's
// contents or a single token with its own arguments.
func argument(ns []*texmath.Node, i int) (out string, raw string, last int, ok bool) {
	j := nextNonSpace(ns, i)
	if j >= len(ns) {
		return "", "", i - 1, false
	}
	if ns[j].Group {
		return render(ns[j].Children), texmath.SourceOf(ns[j].Children), j, true
	}
	w := &mathWriter{}
	k := transformOne(w, ns, j)
	return w.String(), texmath.SourceOf(ns[j : k+1]), k, true
}

func isBareScript(s string) bool {
	if utf8.RuneCountInString(s) != 1 {
		return false
	}
	r, _ := utf8.DecodeRuneInString(s)
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '*' || r == '′'
}

func script(w *mathWriter, ns []*texmath.Node, i int) int {
	op := ns[i].Tok.Source()
	content, _, last, ok := argument(ns, i+1)
	if !ok {
		w.write(op)
		return i
	}
	content = strings.TrimSpace(content)
	if isBareScript(content) {
		w.write(op + content)
		w.script = true
		return last
	}
	w.write(op + "(" + content + ")")
	return last
}

func command(w *mathWriter, ns []*texmath.Node, i int) int {
	name := ns[i].Tok.Text
	if name == `\` {
		w.space()
		w.write(`\`)
		w.b.WriteByte('\n')
		w.last = '\n'
		return i
	}
	if name == "begin" {
		return environment(w, ns, i)
	}
	if s, ok := symbols.Spacing(name); ok {
		w.write(s)
		return i
	}
	if symbols.IsSizing(name) {
		return sizing(w, ns, i, name)
	}
	if symbols.IsSilent(name) {
		w.comment(meta.New("command", name))
		return i
	}
	switch name {
	case "frac", "dfrac", "tfrac":
		num, _, j, ok1 := argument(ns, i+1)
		den, _, k, ok2 := argument(ns, j+1)
		if !ok1 || !ok2 {
			break
		}
		w.write("frac(" + escapeArg(num) + ", " + escapeArg(den) + ")")
		return k
	case "sqrt":
		return root(w, ns, i)
	case "operatorname":
		_, raw, j, ok := argument(ns, i+1)
		if !ok {
			break
		}
		w.write(`op("` + escapeString(strings.TrimSpace(raw)) + `")`)
		return j
	}
	if acc, ok := symbols.Accent(name); ok {
		if arg, _, j, ok := argument(ns, i+1); ok {
			w.write(acc + "(" + escapeArg(arg) + ")")
			return j
		}
	}
	if font, ok := symbols.Font(name); ok {
		if arg, raw, j, ok := argument(ns, i+1); ok {
			raw = strings.TrimSpace(raw)
			if isWord(raw) && len(raw) > 1 {
				w.write(font + `("` + raw + `")`)
			} else {
				w.write(font + "(" + escapeArg(arg) + ")")
			}
			return j
		}
	}
	if symbols.IsTextCommand(name) {
		if _, raw, j, ok := argument(ns, i+1); ok {
			w.write(`"` + escapeString(raw) + `"`)
			return j
		}
	}
	if symbols.IsFunction(name) {
		w.write(name)
		return i
	}
	switch name {
	case "{", "}", "#", "$", "&", "_":
		w.write(`\` + name)
	case "|":
		w.write("‖")
	case "%":
		w.write("%")
	case " ":
		w.write("space")
	default:
		w.write(`\` + name)
	}
	return i
}

func isWord(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !(c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z') {
			return false
		}
	}
	return true
}

// root handles \sqrt{x} and \sqrt[n]{x}.
func root(w *mathWriter, ns []*texmath.Node, i int) int {
	j := nextNonSpace(ns, i+1)
	if j < len(ns) && !ns[j].Group && ns[j].Tok.IsChar("[") {
		depth := 0
		for k := j + 1; k < len(ns); k++ {
			if ns[k].Group {
				continue
			}
			switch {
			case ns[k].Tok.IsChar("["):
				depth++
			case ns[k].Tok.IsChar("]") && depth > 0:
				depth--
			case ns[k].Tok.IsChar("]"):
				index := strings.TrimSpace(render(ns[j+1 : k]))
				arg, _, last, ok := argument(ns, k+1)
				if !ok {
					w.write(`\sqrt`)
					return i
				}
				w.write("root(" + escapeArg(index) + ", " + escapeArg(arg) + ")")
				return last
			}
		}
	}
	arg, _, last, ok := argument(ns, i+1)
	if !ok {
		w.write(`\sqrt`)
		return i
	}
	w.write("sqrt(" + escapeArg(arg) + ")")
	return last
}

// sizing writes the bare delimiter followed by a marker naming the sizing
// command, then breaks the line.
func sizing(w *mathWriter, ns []*texmath.Node, i int, name string) int {
	j := nextNonSpace(ns, i+1)
	if j >= len(ns) || ns[j].Group {
		w.write(`\` + name)
		return i
	}
	src := ns[j].Tok.Source()
	delim, ok := symbols.Delimiter(src)
	if !ok {
		delim = escapeChar(src)
	}
	m := meta.New("command", name)
	if delim == "" {
		m = m.With("delim", "none")
	}
	w.write(delim)
	w.comment(m)
	return j
}

// environment handles \begin{..}...\end{..} inside math.
func environment(w *mathWriter, ns []*texmath.Node, i int) int {
	if i+1 >= len(ns) || !ns[i+1].Group {
		w.write(`\begin`)
		return i
	}
	env := texmath.SourceOf(ns[i+1].Children)
	end := matchEnd(ns, i+2, env)
	if end < 0 {
		w.write(`\begin{` + env + "}")
		return i + 1
	}
	body := ns[i+2 : end]
	switch {
	case env == "cases":
		w.write(casesOf(body))
	case matrixDelims[env] != "":
		w.write(matrixOf(env, body))
	default:
		w.write(texmath.SourceOf(ns[i : end+2]))
	}
	return end + 1
}

// matchEnd returns the index of the \end command closing env, honoring
// nested environments of the same name.
func matchEnd(ns []*texmath.Node, from int, env string) int {
	depth := 0
	for k := from; k+1 < len(ns); k++ {
		n := ns[k]
		if n.Group || n.Tok.Kind != texmath.Command {
			continue
		}
		if (n.Tok.Text == "begin" || n.Tok.Text == "end") && ns[k+1].Group &&
			texmath.SourceOf(ns[k+1].Children) == env {
			if n.Tok.Text == "begin" {
				depth++
			} else if depth == 0 {
				return k
			} else {
				depth--
			}
		}
	}
	return -1
}

func casesOf(body []*texmath.Node) string {
	var rows []string
	for _, row := range splitRows(body) {
		cells := texmath.Split(row, isAlignTok)
		out := make([]string, len(cells))
		for i, c := range cells {
			out[i] = escapeArg(strings.TrimSpace(render(c)))
		}
		rows = append(rows, strings.Join(out, " & "))
	}
	return "cases(\n" + strings.Join(rows, ",\n") + "\n)"
}

func matrixOf(env string, body []*texmath.Node) string {
	var rows []string
	for _, row := range splitRows(body) {
		cells := texmath.Split(row, isAlignTok)
		out := make([]string, len(cells))
		for i, c := range cells {
			out[i] = escapeArg(strings.TrimSpace(render(c)))
		}
		rows = append(rows, strings.Join(out, ", "))
	}
	return "mat(delim: " + matrixDelims[env] + ", " + strings.Join(rows, "; ") + ")"
}

// escapeArg escapes commas and semicolons that would otherwise split a
// function argument. Commas inside parentheses, strings and escapes are
// left alone.
func escapeArg(s string) string {
	if !strings.ContainsAny(s, ",;") {
		return s
	}
	var b strings.Builder
	depth := 0
	inString := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '\\' && i+1 < len(s):
			b.WriteByte(c)
			i++
			b.WriteByte(s[i])
			continue
		case c == '"':
			inString = !inString
		case inString:
		case c == '/' && i+1 < len(s) && s[i+1] == '/':
			end := strings.IndexByte(s[i:], '\n')
			if end < 0 {
				end = len(s) - i
			}
			b.WriteString(s[i : i+end])
			i += end - 1
			continue
		case c == '(':
			depth++
		case c == ')' && depth > 0:
			depth--
		case (c == ',' || c == ';') && depth == 0:
			b.WriteByte('\\')
		}
		b.WriteByte(c)
	}
	return b.String()
}

// escapeString quotes s for a Typst string literal.
func escapeString(s string) string {
	return strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(s)
}

func unescapeString(s string) string {
	return strings.NewReplacer(`\\`, `\`, `\"`, `"`).Replace(s)
}
