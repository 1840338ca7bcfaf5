package graph

import (
	"strings"
	"unicode"
)

// Import records one dependency reference discovered in module source.
type Import struct {
	Specifier string
	Dynamic   bool
	TypeOnly  bool
	// Start and End are byte offsets of the full statement for static
	// imports, letting bundlers strip them; dynamic imports report the
	// offsets of the call's specifier literal only.
	Start int
	End   int
	Line  int
}

// ScanImports walks module source and collects import and re-export
// references. The scanner is comment- and string-aware but does not
// parse the language; it recognises the statement forms resolvers care
// about: import declarations, export-from declarations, and dynamic
// import() calls with literal specifiers.
func ScanImports(source string) []Import {
	s := &scanner{src: source, line: 1}
	var out []Import
	for !s.eof() {
		if s.skipTrivia() {
			continue
		}
		start := s.pos
		line := s.line
		word := s.readWord()
		if word == "" {
			s.next()
			continue
		}
		switch word {
		case "import":
			if imp, ok := s.scanImport(start, line); ok {
				out = append(out, imp)
			}
		case "export":
			if imp, ok := s.scanExportFrom(start, line); ok {
				out = append(out, imp)
			}
		}
	}
	return out
}

type scanner struct {
	src  string
	pos  int
	line int
}

func (s *scanner) eof() bool { return s.pos >= len(s.src) }

func (s *scanner) peek() byte {
	if s.eof() {
		return 0
	}
	return s.src[s.pos]
}

func (s *scanner) next() byte {
	c := s.src[s.pos]
	s.pos++
	if c == '\n' {
		s.line++
	}
	return c
}

// skipTrivia consumes one run of whitespace, comment, string literal,
// or other non-keyword content. Returns true when anything was
// consumed so the caller restarts keyword detection.
func (s *scanner) skipTrivia() bool {
	c := s.peek()
	switch {
	case c == ' ' || c == '\t' || c == '\r' || c == '\n' || c == ';':
		s.next()
		return true
	case c == '/' && s.pos+1 < len(s.src) && s.src[s.pos+1] == '/':
		for !s.eof() && s.peek() != '\n' {
			s.next()
		}
		return true
	case c == '/' && s.pos+1 < len(s.src) && s.src[s.pos+1] == '*':
		s.next()
		s.next()
		for !s.eof() {
			if s.peek() == '*' && s.pos+1 < len(s.src) && s.src[s.pos+1] == '/' {
				s.next()
				s.next()
				break
			}
			s.next()
		}
		return true
	case c == '\'' || c == '"' || c == '`':
		s.readString()
		return true
	}
	return false
}

// readString consumes a string or template literal and returns its
// contents (without quotes). Escapes are honoured; template
// substitutions are skipped without interpretation.
func (s *scanner) readString() string {
	quote := s.next()
	var b strings.Builder
	for !s.eof() {
		c := s.next()
		if c == '\\' && !s.eof() {
			b.WriteByte(s.next())
			continue
		}
		if c == quote {
			break
		}
		b.WriteByte(c)
	}
	return b.String()
}

func (s *scanner) readWord() string {
	start := s.pos
	for !s.eof() {
		c := rune(s.peek())
		if unicode.IsLetter(c) || unicode.IsDigit(c) || c == '_' || c == '$' {
			s.next()
			continue
		}
		break
	}
	word := s.src[start:s.pos]
	// A keyword glued to a preceding identifier character is part of a
	// longer name, not a statement.
	if start > 0 {
		prev := rune(s.src[start-1])
		if unicode.IsLetter(prev) || unicode.IsDigit(prev) || prev == '_' || prev == '$' || prev == '.' {
			return ""
		}
	}
	return word
}

func (s *scanner) skipSpace() {
	for !s.eof() {
		c := s.peek()
		if c == ' ' || c == '\t' || c == '\r' || c == '\n' {
			s.next()
			continue
		}
		if c == '/' && s.pos+1 < len(s.src) && (s.src[s.pos+1] == '/' || s.src[s.pos+1] == '*') {
			s.skipTrivia()
			continue
		}
		break
	}
}

func (s *scanner) scanImport(start, line int) (Import, bool) {
	s.skipSpace()
	switch s.peek() {
	case '(':
		// Dynamic import call. Only literal specifiers are recordable.
		s.next()
		s.skipSpace()
		if c := s.peek(); c == '\'' || c == '"' {
			litStart := s.pos
			spec := s.readString()
			return Import{Specifier: spec, Dynamic: true, Start: litStart, End: s.pos, Line: line}, true
		}
		return Import{}, false
	case '.':
		// import.meta
		return Import{}, false
	case '\'', '"':
		spec := s.readString()
		end := s.statementEnd()
		return Import{Specifier: spec, Start: start, End: end, Line: line}, true
	}

	typeOnly := false
	save := s.pos
	if word := s.readWord(); word == "type" {
		s.skipSpace()
		if c := s.peek(); c == '{' || c == '*' || isIdentStart(c) {
			typeOnly = true
		} else {
			s.pos = save
		}
	} else {
		s.pos = save
	}

	spec, ok := s.scanFromClause()
	if !ok {
		return Import{}, false
	}
	end := s.statementEnd()
	return Import{Specifier: spec, TypeOnly: typeOnly, Start: start, End: end, Line: line}, true
}

func (s *scanner) scanExportFrom(start, line int) (Import, bool) {
	s.skipSpace()
	typeOnly := false
	if s.peek() == 't' {
		save := s.pos
		if s.readWord() == "type" {
			s.skipSpace()
			if c := s.peek(); c == '{' || c == '*' {
				typeOnly = true
			} else {
				s.pos = save
				return Import{}, false
			}
		} else {
			s.pos = save
		}
	}
	// Only brace or star clauses can re-export from another module;
	// everything else is a plain declaration.
	if c := s.peek(); c != '{' && c != '*' {
		return Import{}, false
	}
	spec, ok := s.scanFromClause()
	if !ok {
		return Import{}, false
	}
	end := s.statementEnd()
	return Import{Specifier: spec, TypeOnly: typeOnly, Start: start, End: end, Line: line}, true
}

// scanFromClause walks the binding clause until a `from "specifier"`
// pair or the end of the statement.
func (s *scanner) scanFromClause() (string, bool) {
	depth := 0
	for !s.eof() {
		s.skipSpace()
		c := s.peek()
		switch {
		case c == '{':
			depth++
			s.next()
		case c == '}':
			depth--
			s.next()
		case c == ';':
			return "", false
		case c == '\'' || c == '"':
			// A bare string here without `from` is malformed; skip it.
			s.readString()
		case c == ',' || c == '*':
			s.next()
		case isIdentStart(c):
			word := s.readWord()
			if word == "" {
				s.next()
				continue
			}
			if word == "from" && depth == 0 {
				s.skipSpace()
				if q := s.peek(); q == '\'' || q == '"' {
					return s.readString(), true
				}
				return "", false
			}
		default:
			return "", false
		}
	}
	return "", false
}

// statementEnd consumes an optional trailing semicolon and returns the
// byte offset just past the statement.
func (s *scanner) statementEnd() int {
	for !s.eof() {
		c := s.peek()
		if c == ' ' || c == '\t' {
			s.next()
			continue
		}
		if c == ';' {
			s.next()
			return s.pos
		}
		break
	}
	return s.pos
}

func isIdentStart(c byte) bool {
	r := rune(c)
	return unicode.IsLetter(r) || r == '_' || r == '$'
}
