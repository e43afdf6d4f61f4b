package mysqlschema

import (
	"regexp"
	"strings"
	"sync"
)

// Index kinds.
const (
	IndexPrimary = "PRIMARY"
	IndexUnique  = "UNIQUE"
	IndexKey     = "KEY"
)

// Index is a PRIMARY KEY, UNIQUE KEY or KEY definition.
type Index struct {
	Name        string // empty for the primary key
	Kind        string // IndexPrimary, IndexUnique or IndexKey
	Table       *Table
	ColumnNames []string // in key order
	Descending  []bool   // parallel to ColumnNames
	Using       string   // BTREE or HASH when declared
	HasPrefix   bool     // at least one key part is a prefix, e.g. `name`(10)
	Definition  string

	resolveOnce sync.Once
	columns     []*Column
	resolveErr  error
}

var (
	indexHeaderRe = regexp.MustCompile(`^((?:PRIMARY|UNIQUE) )?KEY (?:` + "`" + `((?:[^` + "`" + `]|` + "``" + `)*)` + "`" + ` )?\(`)
	usingRe       = regexp.MustCompile(`USING (BTREE|HASH)`)
	keyPartRe     = regexp.MustCompile(`\(\d+\)$`)
)

func isIndexLine(line string) bool {
	return strings.HasPrefix(line, "PRIMARY KEY") ||
		strings.HasPrefix(line, "UNIQUE KEY") ||
		strings.HasPrefix(line, "KEY")
}

// parseIndex decodes one key line such as
// "UNIQUE KEY `email` (`email`,`tenant_id`),". Functional key parts
// (MySQL 8 "KEY `f` ((lower(`n`)))") cannot be expressed as columns, so an
// index holding one is skipped and parseIndex returns nil without error.
func parseIndex(line string, table *Table) (*Index, error) {
	def := strings.TrimSpace(line)

	m := indexHeaderRe.FindStringSubmatch(def)
	if m == nil {
		return nil, parseErrorf(def, "cannot parse index definition")
	}
	open := len(m[0]) - 1
	end, err := matchParen(def, open)
	if err != nil {
		return nil, &ParseError{Line: def, Reason: "cannot parse index definition", Err: err}
	}

	idx := &Index{
		Kind:       strings.TrimSpace(m[1]),
		Name:       unquoteIdent(m[2]),
		Table:      table,
		Definition: def,
	}
	if idx.Kind == "" {
		idx.Kind = IndexKey
	}

	for _, part := range splitKeyParts(def[open+1 : end-1]) {
		part = strings.TrimSpace(part)
		if strings.HasPrefix(part, "(") {
			return nil, nil
		}

		desc := false
		if p, ok := strings.CutSuffix(part, " DESC"); ok {
			part, desc = p, true
		} else {
			part = strings.TrimSuffix(part, " ASC")
		}
		if keyPartRe.MatchString(part) {
			idx.HasPrefix = true
			part = keyPartRe.ReplaceAllString(part, "")
		}

		part = strings.TrimSpace(part)
		part = strings.TrimPrefix(part, "`")
		part = strings.TrimSuffix(part, "`")
		if part == "" {
			return nil, parseErrorf(def, "empty column in index definition")
		}
		idx.ColumnNames = append(idx.ColumnNames, unquoteIdent(part))
		idx.Descending = append(idx.Descending, desc)
	}

	if u := usingRe.FindStringSubmatch(def[end:]); u != nil {
		idx.Using = u[1]
	}

	return idx, nil
}

// splitKeyParts splits a key part list on the commas that are outside
// identifiers, string literals and nested parentheses.
func splitKeyParts(s string) []string {
	var parts []string
	depth, last := 0, 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '`':
			i = skipIdent(s, i) - 1
		case '\'':
			i = skipQuoted(s, i) - 1
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				parts = append(parts, s[last:i])
				last = i + 1
			}
		}
	}
	return append(parts, s[last:])
}

// skipIdent returns the index just past the backtick identifier at s[start].
// A doubled backtick inside the identifier is part of the name.
func skipIdent(s string, start int) int {
	for i := start + 1; i < len(s); i++ {
		if s[i] != '`' {
			continue
		}
		if i+1 < len(s) && s[i+1] == '`' {
			i++
			continue
		}
		return i + 1
	}
	return len(s)
}

// Columns resolves the index column names against the owning table. The
// lookup runs once; later calls return the cached result.
func (i *Index) Columns() ([]*Column, error) {
	i.resolveOnce.Do(func() {
		cols := make([]*Column, 0, len(i.ColumnNames))
		for _, name := range i.ColumnNames {
			col, err := i.Table.ColumnByName(name)
			if err != nil {
				i.resolveErr = err
				return
			}
			cols = append(cols, col)
		}
		i.columns = cols
	})
	return i.columns, i.resolveErr
}
