package mysqlschema

import (
	"fmt"
	"strings"
)

// readQuoted decodes the single-quoted SQL literal starting at s[start].
// Doubled quotes and backslash escapes are unescaped. It returns the decoded
// value and the index just past the closing quote.
func readQuoted(s string, start int) (string, int, error) {
	if start >= len(s) || s[start] != '\'' {
		return "", start, fmt.Errorf("expected quoted literal at offset %d", start)
	}

	var b strings.Builder
	i := start + 1
	for i < len(s) {
		c := s[i]
		if c == '\\' {
			if i+1 >= len(s) {
				return "", i, fmt.Errorf("dangling escape at offset %d", i)
			}
			b.WriteByte(unescapeByte(s[i+1]))
			i += 2
			continue
		}
		if c == '\'' {
			if i+1 < len(s) && s[i+1] == '\'' {
				b.WriteByte('\'')
				i += 2
				continue
			}
			return b.String(), i + 1, nil
		}
		b.WriteByte(c)
		i++
	}
	return "", i, fmt.Errorf("unterminated quoted literal")
}

func unescapeByte(c byte) byte {
	switch c {
	case 'n':
		return '\n'
	case 'r':
		return '\r'
	case 't':
		return '\t'
	case '0':
		return 0
	}
	return c
}

// skipQuoted returns the index just past the quoted literal at s[start],
// or len(s) when the literal is unterminated.
func skipQuoted(s string, start int) int {
	_, next, err := readQuoted(s, start)
	if err != nil {
		return len(s)
	}
	return next
}

// blankQuoted replaces the contents of every quoted literal with spaces so
// keyword searches cannot match text inside COMMENT or DEFAULT strings.
// Offsets in the result line up with the input.
func blankQuoted(s string) string {
	b := []byte(s)
	for i := 0; i < len(b); i++ {
		if b[i] != '\'' {
			continue
		}
		end := skipQuoted(s, i)
		for j := i + 1; j < end-1 && j < len(b); j++ {
			b[j] = ' '
		}
		i = end - 1
	}
	return string(b)
}

// parseEnumSetValues extracts the value list of an enum(...) or set(...)
// type descriptor.
func parseEnumSetValues(typeDef string) ([]string, error) {
	open := strings.IndexByte(typeDef, '(')
	close := strings.LastIndexByte(typeDef, ')')
	if open < 0 || close <= open {
		return nil, fmt.Errorf("invalid enum/set definition %q", typeDef)
	}

	inside := typeDef[open+1 : close]
	values := []string{}
	i := 0
	for i < len(inside) {
		for i < len(inside) && (inside[i] == ' ' || inside[i] == ',') {
			i++
		}
		if i >= len(inside) {
			break
		}
		if inside[i] != '\'' {
			return nil, fmt.Errorf("invalid enum/set value list in %q", typeDef)
		}
		v, next, err := readQuoted(inside, i)
		if err != nil {
			return nil, fmt.Errorf("invalid enum/set value list in %q: %w", typeDef, err)
		}
		values = append(values, v)
		i = next
	}

	return values, nil
}
