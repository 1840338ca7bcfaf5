package graph

import "fmt"

// checkModules runs the scanner-level validation pass over every
// module: balanced delimiters and terminated string literals. This is
// the non-fatal "check" half of emission; findings become diagnostics,
// never errors.
func (g *Graph) checkModules() Diagnostics {
	var out Diagnostics
	for _, specifier := range g.order {
		m := g.modules[specifier]
		if !m.MediaType.Emittable() {
			continue
		}
		out = append(out, checkSource(specifier, m.Source)...)
	}
	return out
}

func checkSource(specifier, source string) Diagnostics {
	var out Diagnostics
	type open struct {
		char byte
		line int
	}
	var stack []open
	line := 1

	for i := 0; i < len(source); i++ {
		c := source[i]
		switch c {
		case '\n':
			line++
		case '/':
			if i+1 < len(source) && source[i+1] == '/' {
				for i < len(source) && source[i] != '\n' {
					i++
				}
				line++
			} else if i+1 < len(source) && source[i+1] == '*' {
				i += 2
				for i+1 < len(source) && !(source[i] == '*' && source[i+1] == '/') {
					if source[i] == '\n' {
						line++
					}
					i++
				}
				i++
			}
		case '\'', '"', '`':
			quote := c
			start := line
			terminated := false
			for i++; i < len(source); i++ {
				if source[i] == '\\' {
					i++
					continue
				}
				if source[i] == '\n' {
					line++
					if quote != '`' {
						break
					}
					continue
				}
				if source[i] == quote {
					terminated = true
					break
				}
			}
			if !terminated && i >= len(source) {
				out = append(out, Diagnostic{
					Specifier: specifier,
					Line:      start,
					Message:   "unterminated string literal",
					Category:  CategoryError,
				})
			}
		case '(', '[', '{':
			stack = append(stack, open{char: c, line: line})
		case ')', ']', '}':
			if len(stack) == 0 {
				out = append(out, Diagnostic{
					Specifier: specifier,
					Line:      line,
					Message:   fmt.Sprintf("unexpected %q", string(c)),
					Category:  CategoryError,
				})
				continue
			}
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if closerFor(top.char) != c {
				out = append(out, Diagnostic{
					Specifier: specifier,
					Line:      line,
					Message:   fmt.Sprintf("expected %q to close %q opened on line %d", string(closerFor(top.char)), string(top.char), top.line),
					Category:  CategoryError,
				})
			}
		}
	}

	for _, o := range stack {
		out = append(out, Diagnostic{
			Specifier: specifier,
			Line:      o.line,
			Message:   fmt.Sprintf("unclosed %q", string(o.char)),
			Category:  CategoryError,
		})
	}
	return out
}

func closerFor(opener byte) byte {
	switch opener {
	case '(':
		return ')'
	case '[':
		return ']'
	default:
		return '}'
	}
}
