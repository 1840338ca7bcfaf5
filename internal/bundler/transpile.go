// Package bundler provides the built-in emitters: per-module
// passthrough emission with conservative TypeScript type stripping,
// and classic/module bundles assembled from pongo2 wrapper templates.
package bundler

import (
	"sort"
	"strings"
	"unicode"

	"github.com/goliatone/go-emit/pkg/graph"
	"github.com/goliatone/go-emit/pkg/module"
)

// Transpile converts module source into emittable JavaScript.
// JavaScript passes through untouched; TypeScript has its erasable
// syntax stripped. The stripper is deliberately conservative: it
// handles type-only imports/exports, interface and type-alias
// declarations, and annotations in function signatures and variable
// declarations. Constructs outside that set pass through unchanged.
func Transpile(m module.Module) string {
	switch m.MediaType {
	case module.MediaTypeTypeScript, module.MediaTypeTSX:
		return StripTypes(m.Source)
	default:
		return m.Source
	}
}

type cut struct{ start, end int }

// StripTypes removes erasable TypeScript syntax from source text.
func StripTypes(source string) string {
	cuts := collectTypeOnlyImports(source)
	cuts = append(cuts, collectTypeDeclarations(source)...)
	cuts = append(cuts, collectAnnotations(source)...)
	return applyCuts(source, cuts)
}

func collectTypeOnlyImports(source string) []cut {
	var cuts []cut
	for _, imp := range graph.ScanImports(source) {
		if imp.TypeOnly && !imp.Dynamic {
			cuts = append(cuts, cut{start: imp.Start, end: imp.End})
		}
	}
	return cuts
}

// collectTypeDeclarations finds interface, type-alias, and declare
// statements (with an optional export prefix) and marks the whole
// statement for removal.
func collectTypeDeclarations(source string) []cut {
	var cuts []cut
	w := newWalker(source)
	for !w.eof() {
		if w.skipTrivia() {
			continue
		}
		start := w.pos
		word := w.readWord()
		if word == "" {
			w.advance()
			continue
		}

		exported := false
		if word == "export" {
			save := w.pos
			w.skipSpace()
			next := w.readWord()
			if next == "interface" || next == "declare" || (next == "type" && w.peeksTypeAlias()) {
				exported = true
				word = next
			} else {
				w.pos = save
				continue
			}
		}

		switch {
		case word == "interface":
			w.skipToMatchingBrace()
			cuts = append(cuts, cut{start: start, end: w.statementEnd()})
		case word == "type" && !exported && w.peeksTypeAlias():
			w.skipToSemicolon()
			cuts = append(cuts, cut{start: start, end: w.pos})
		case word == "type" && exported:
			w.skipToSemicolon()
			cuts = append(cuts, cut{start: start, end: w.pos})
		case word == "declare":
			w.skipDeclareBody()
			cuts = append(cuts, cut{start: start, end: w.statementEnd()})
		}
	}
	return cuts
}

// collectAnnotations marks `: T` annotations for removal in three
// places: parameter lists of function declarations and arrow
// functions, return-type position, and let/const/var declarations.
func collectAnnotations(source string) []cut {
	var cuts []cut
	w := newWalker(source)
	for !w.eof() {
		if w.skipTrivia() {
			continue
		}
		word := w.readWord()
		if word == "" {
			if w.peek() == '(' {
				if c, ok := w.tryParamList(false); ok {
					cuts = append(cuts, c...)
					continue
				}
			}
			w.advance()
			continue
		}
		switch word {
		case "function":
			w.skipSpace()
			w.readWord() // optional name
			w.skipSpace()
			if w.peek() == '(' {
				if c, ok := w.tryParamList(true); ok {
					cuts = append(cuts, c...)
				}
			}
		case "let", "const", "var":
			if c, ok := w.tryVarAnnotation(); ok {
				cuts = append(cuts, c)
			}
		}
	}
	return cuts
}

func applyCuts(source string, cuts []cut) string {
	if len(cuts) == 0 {
		return source
	}
	sort.Slice(cuts, func(i, j int) bool { return cuts[i].start < cuts[j].start })

	var b strings.Builder
	b.Grow(len(source))
	pos := 0
	for _, c := range cuts {
		if c.start < pos {
			continue
		}
		b.WriteString(source[pos:c.start])
		// Preserve line structure so diagnostics keep their numbers.
		for _, r := range source[c.start:c.end] {
			if r == '\n' {
				b.WriteByte('\n')
			}
		}
		pos = c.end
	}
	b.WriteString(source[pos:])
	return cleanEmptyStatements(b.String())
}

// cleanEmptyStatements drops whitespace-only lines introduced by cuts
// when they end with a dangling semicolon.
func cleanEmptyStatements(source string) string {
	lines := strings.Split(source, "\n")
	for i, line := range lines {
		if strings.TrimSpace(line) == ";" {
			lines[i] = ""
		}
	}
	return strings.Join(lines, "\n")
}

// walker is a string/comment aware cursor over source text.
type walker struct {
	src string
	pos int
}

func newWalker(src string) *walker { return &walker{src: src} }

func (w *walker) eof() bool  { return w.pos >= len(w.src) }
func (w *walker) advance()   { w.pos++ }
func (w *walker) peek() byte {
	if w.eof() {
		return 0
	}
	return w.src[w.pos]
}

func (w *walker) skipTrivia() bool {
	c := w.peek()
	switch {
	case c == ' ' || c == '\t' || c == '\r' || c == '\n' || c == ';':
		w.advance()
		return true
	case c == '/' && w.pos+1 < len(w.src) && w.src[w.pos+1] == '/':
		for !w.eof() && w.peek() != '\n' {
			w.advance()
		}
		return true
	case c == '/' && w.pos+1 < len(w.src) && w.src[w.pos+1] == '*':
		w.pos += 2
		for !w.eof() {
			if w.peek() == '*' && w.pos+1 < len(w.src) && w.src[w.pos+1] == '/' {
				w.pos += 2
				break
			}
			w.advance()
		}
		return true
	case c == '\'' || c == '"' || c == '`':
		w.skipString()
		return true
	}
	return false
}

func (w *walker) skipString() {
	quote := w.src[w.pos]
	w.advance()
	for !w.eof() {
		c := w.src[w.pos]
		w.advance()
		if c == '\\' && !w.eof() {
			w.advance()
			continue
		}
		if c == quote {
			return
		}
	}
}

func (w *walker) skipSpace() {
	for !w.eof() {
		c := w.peek()
		if c == ' ' || c == '\t' || c == '\r' || c == '\n' {
			w.advance()
			continue
		}
		if c == '/' && w.pos+1 < len(w.src) && (w.src[w.pos+1] == '/' || w.src[w.pos+1] == '*') {
			w.skipTrivia()
			continue
		}
		break
	}
}

func (w *walker) readWord() string {
	start := w.pos
	for !w.eof() {
		r := rune(w.peek())
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '$' {
			w.advance()
			continue
		}
		break
	}
	word := w.src[start:w.pos]
	if start > 0 {
		prev := rune(w.src[start-1])
		if unicode.IsLetter(prev) || unicode.IsDigit(prev) || prev == '_' || prev == '$' || prev == '.' {
			return ""
		}
	}
	return word
}

// peeksTypeAlias reports whether the cursor sits before `Name =`,
// i.e. a type alias rather than the identifier "type" used as a name.
func (w *walker) peeksTypeAlias() bool {
	save := w.pos
	defer func() { w.pos = save }()
	w.skipSpace()
	if w.readWord() == "" {
		return false
	}
	// Optional generic parameter list.
	w.skipSpace()
	if w.peek() == '<' {
		depth := 0
		for !w.eof() {
			switch w.peek() {
			case '<':
				depth++
			case '>':
				depth--
			}
			w.advance()
			if depth == 0 {
				break
			}
		}
	}
	w.skipSpace()
	return w.peek() == '='
}

func (w *walker) skipToMatchingBrace() {
	for !w.eof() && w.peek() != '{' {
		if w.skipTrivia() {
			continue
		}
		w.advance()
	}
	depth := 0
	for !w.eof() {
		if c := w.peek(); c == '\'' || c == '"' || c == '`' {
			w.skipString()
			continue
		}
		switch w.peek() {
		case '{':
			depth++
		case '}':
			depth--
		}
		w.advance()
		if depth == 0 {
			return
		}
	}
}

func (w *walker) skipToSemicolon() {
	depth := 0
	for !w.eof() {
		if c := w.peek(); c == '\'' || c == '"' || c == '`' {
			w.skipString()
			continue
		}
		switch w.peek() {
		case '{', '(', '[':
			depth++
		case '}', ')', ']':
			depth--
		case ';':
			if depth == 0 {
				w.advance()
				return
			}
		case '\n':
			// An alias usually ends at the line break when no
			// semicolon follows and nothing is open.
			if depth == 0 {
				return
			}
		}
		w.advance()
	}
}

func (w *walker) skipDeclareBody() {
	// declare statements either end at a semicolon or carry a braced
	// body (namespace, module, global).
	save := w.pos
	for !w.eof() {
		if c := w.peek(); c == '\'' || c == '"' || c == '`' {
			w.skipString()
			continue
		}
		switch w.peek() {
		case '{':
			w.pos = save
			w.skipToMatchingBrace()
			return
		case ';', '\n':
			return
		}
		w.advance()
	}
}

func (w *walker) statementEnd() int {
	save := w.pos
	w.skipSpace()
	if w.peek() == ';' {
		w.advance()
		return w.pos
	}
	w.pos = save
	return w.pos
}

// tryParamList inspects a paren group. Annotations inside are cut when
// the group is a known parameter list: either it follows the function
// keyword, or its closing paren is followed by `=>`. The cursor always
// ends past the group when true is returned.
func (w *walker) tryParamList(afterFunction bool) ([]cut, bool) {
	openPos := w.pos
	closePos, ok := w.matchParen(openPos)
	if !ok {
		return nil, false
	}

	isParams := afterFunction
	if !isParams {
		rest := w.src[closePos+1:]
		trimmed := strings.TrimLeft(rest, " \t\r\n")
		if strings.HasPrefix(trimmed, "=>") {
			isParams = true
		}
		// A return annotation between `)` and `=>` also marks params.
		if !isParams && strings.HasPrefix(trimmed, ":") {
			if _, arrowEnd, found := w.returnAnnotation(closePos); found && arrowEnd {
				isParams = true
			}
		}
	}
	if !isParams {
		w.pos = openPos + 1
		return nil, false
	}

	cuts := w.annotationsInParens(openPos, closePos)
	if ann, _, found := w.returnAnnotation(closePos); found {
		cuts = append(cuts, ann)
	}
	w.pos = closePos + 1
	return cuts, true
}

func (w *walker) matchParen(openPos int) (int, bool) {
	inner := &walker{src: w.src, pos: openPos}
	depth := 0
	for !inner.eof() {
		if c := inner.peek(); c == '\'' || c == '"' || c == '`' {
			inner.skipString()
			continue
		}
		switch inner.peek() {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return inner.pos, true
			}
		}
		inner.advance()
	}
	return 0, false
}

// annotationsInParens cuts `?: T` / `: T` runs at the top level of the
// group, stopping each cut at a comma, default value, or the closing
// paren.
func (w *walker) annotationsInParens(openPos, closePos int) []cut {
	var cuts []cut
	inner := &walker{src: w.src, pos: openPos + 1}
	depth := 0
	for inner.pos < closePos {
		if c := inner.peek(); c == '\'' || c == '"' || c == '`' {
			inner.skipString()
			continue
		}
		c := inner.peek()
		switch c {
		case '(', '{', '[', '<':
			depth++
			inner.advance()
		case ')', '}', ']', '>':
			depth--
			inner.advance()
		case '?', ':':
			if depth != 0 {
				inner.advance()
				continue
			}
			start := inner.pos
			if c == '?' {
				inner.advance()
				inner.skipSpace()
				if inner.peek() != ':' {
					continue
				}
			}
			end := inner.annotationRun(closePos)
			cuts = append(cuts, cut{start: start, end: end})
		default:
			inner.advance()
		}
	}
	return cuts
}

// annotationRun consumes from a `:` to the end of its type expression:
// a top-level comma, `=`, or the enclosing close paren.
func (w *walker) annotationRun(closePos int) int {
	depth := 0
	for w.pos < closePos {
		if c := w.peek(); c == '\'' || c == '"' || c == '`' {
			w.skipString()
			continue
		}
		switch w.peek() {
		case '(', '{', '[', '<':
			depth++
		case ')', '}', ']', '>':
			depth--
		case ',', '=':
			if depth == 0 {
				return w.pos
			}
		}
		w.advance()
	}
	return closePos
}

// returnAnnotation cuts the `: T` between a close paren and the body
// opener. The second result reports whether the body is an arrow.
func (w *walker) returnAnnotation(closePos int) (cut, bool, bool) {
	inner := &walker{src: w.src, pos: closePos + 1}
	inner.skipSpace()
	if inner.peek() != ':' {
		return cut{}, false, false
	}
	start := inner.pos
	inner.advance()
	depth := 0
	for !inner.eof() {
		if c := inner.peek(); c == '\'' || c == '"' || c == '`' {
			inner.skipString()
			continue
		}
		c := inner.peek()
		switch c {
		case '(', '[', '<':
			depth++
		case ')', ']', '>':
			depth--
		case '{':
			if depth == 0 {
				return cut{start: start, end: inner.pos}, false, true
			}
			depth++
		case '}':
			depth--
		case '=':
			if depth == 0 && inner.pos+1 < len(inner.src) && inner.src[inner.pos+1] == '>' {
				return cut{start: start, end: inner.pos}, true, true
			}
		case ';', '\n':
			if depth == 0 {
				return cut{start: start, end: inner.pos}, false, true
			}
		}
		inner.advance()
	}
	return cut{start: start, end: inner.pos}, false, true
}

// tryVarAnnotation cuts the annotation of a let/const/var declaration:
// `let x: T = v` loses `: T`.
func (w *walker) tryVarAnnotation() (cut, bool) {
	w.skipSpace()
	if w.readWord() == "" {
		return cut{}, false
	}
	w.skipSpace()
	if w.peek() != ':' {
		return cut{}, false
	}
	start := w.pos
	w.advance()
	depth := 0
	for !w.eof() {
		if c := w.peek(); c == '\'' || c == '"' || c == '`' {
			w.skipString()
			continue
		}
		switch w.peek() {
		case '(', '{', '[', '<':
			depth++
		case ')', '}', ']', '>':
			depth--
		case '=', ';', '\n':
			if depth == 0 {
				return cut{start: start, end: w.pos}, true
			}
		}
		w.advance()
	}
	return cut{start: start, end: w.pos}, true
}
