// Package mysqlschema decodes the CREATE TABLE and CREATE VIEW statements
// MySQL returns from SHOW CREATE TABLE into a queryable table model, and
// renders the statements back with the rewrites needed for schema dumps.
//
// Only MySQL's own canonical rendering is supported; this is not a general
// SQL parser.
package mysqlschema

import (
	"fmt"
	"regexp"
	"strings"
)

// Kind distinguishes tables from views.
type Kind string

const (
	KindNone  Kind = ""
	KindTable Kind = "table"
	KindView  Kind = "view"
)

// Table is one parsed table or view. It is built once by Parse and is safe
// for concurrent reads afterwards.
type Table struct {
	name      string
	kind      Kind
	statement string

	columns      []*Column
	columnByName map[string]*Column

	indexes     []*Index
	indexByName map[string]*Index

	constraints      []*Constraint
	constraintByName map[string]*Constraint
}

var (
	tableHeaderRe = regexp.MustCompile("CREATE TABLE (?:IF NOT EXISTS )?`((?:[^`]|``)*)`")
	viewHeaderRe  = regexp.MustCompile("(?i)VIEW `((?:[^`]|``)*)` AS ")
	autoIncrRe    = regexp.MustCompile(`(AUTO_INCREMENT=)[0-9]+`)
	ifNotExistsRe = regexp.MustCompile(`^CREATE TABLE IF NOT EXISTS `)
	orReplaceRe   = regexp.MustCompile(`^CREATE OR REPLACE `)
)

// Parse decodes a raw SHOW CREATE TABLE / SHOW CREATE VIEW statement. Any
// line that cannot be decoded fails the whole table.
func Parse(statement string) (*Table, error) {
	t := &Table{
		statement:        statement,
		columnByName:     map[string]*Column{},
		indexByName:      map[string]*Index{},
		constraintByName: map[string]*Constraint{},
	}

	lines := strings.Split(statement, "\n")
	header := strings.TrimSpace(lines[0])

	if m := tableHeaderRe.FindStringSubmatch(header); m != nil {
		t.name = unquoteIdent(m[1])
		t.kind = KindTable
	} else if m := viewHeaderRe.FindStringSubmatch(header); m != nil {
		t.name = unquoteIdent(m[1])
		t.kind = KindView
		return t, nil
	} else {
		return nil, parseErrorf(header, "not a CREATE TABLE or CREATE VIEW statement")
	}

	for _, line := range lines[1:] {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "`"):
			col, err := parseColumn(line, len(t.columns), t)
			if err != nil {
				return nil, fmt.Errorf("table %s: %w", t.name, err)
			}
			t.addColumn(col)

		case isIndexLine(line):
			idx, err := parseIndex(line, t)
			if err != nil {
				return nil, fmt.Errorf("table %s: %w", t.name, err)
			}
			if idx == nil {
				continue
			}
			if err := t.addIndex(idx); err != nil {
				return nil, fmt.Errorf("table %s: %w", t.name, err)
			}

		case isConstraintLine(line):
			c, err := parseConstraint(line, t)
			if err != nil {
				return nil, fmt.Errorf("table %s: %w", t.name, err)
			}
			t.addConstraint(c)
		}
	}

	return t, nil
}

func (t *Table) addColumn(col *Column) {
	if _, ok := t.columnByName[col.Name]; !ok {
		t.columns = append(t.columns, col)
	} else {
		for i, c := range t.columns {
			if c.Name == col.Name {
				col.Position = i
				t.columns[i] = col
			}
		}
	}
	t.columnByName[col.Name] = col
}

func (t *Table) addIndex(idx *Index) error {
	if _, ok := t.indexByName[idx.Name]; !ok {
		t.indexes = append(t.indexes, idx)
	} else {
		for i, x := range t.indexes {
			if x.Name == idx.Name {
				t.indexes[i] = idx
			}
		}
	}
	t.indexByName[idx.Name] = idx

	if idx.Kind != IndexPrimary {
		return nil
	}
	cols, err := idx.Columns()
	if err != nil {
		return err
	}
	for _, col := range cols {
		col.PartOfPK = true
	}
	return nil
}

func (t *Table) addConstraint(c *Constraint) {
	if _, ok := t.constraintByName[c.Name]; !ok {
		t.constraints = append(t.constraints, c)
	} else {
		for i, x := range t.constraints {
			if x.Name == c.Name {
				t.constraints[i] = c
			}
		}
	}
	t.constraintByName[c.Name] = c
}

// Name returns the table or view name.
func (t *Table) Name() string { return t.name }

// Kind returns KindTable or KindView.
func (t *Table) Kind() Kind { return t.kind }

// Statement returns the create statement exactly as it was parsed.
func (t *Table) Statement() string { return t.statement }

// Columns returns the columns in definition order.
func (t *Table) Columns() []*Column { return t.columns }

// ColumnNames returns the column names in definition order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.columns))
	for i, c := range t.columns {
		names[i] = c.Name
	}
	return names
}

// ColumnByName returns the named column or a *LookupError.
func (t *Table) ColumnByName(name string) (*Column, error) {
	col, ok := t.columnByName[name]
	if !ok {
		return nil, &LookupError{Table: t.name, Kind: "column", Name: name}
	}
	return col, nil
}

// Indexes returns the indexes in definition order.
func (t *Table) Indexes() []*Index { return t.indexes }

// IndexNames returns the index names in definition order. The primary key
// is listed under the empty name.
func (t *Table) IndexNames() []string {
	names := make([]string, len(t.indexes))
	for i, idx := range t.indexes {
		names[i] = idx.Name
	}
	return names
}

// IndexByName returns the named index or a *LookupError. The primary key is
// registered under the empty name.
func (t *Table) IndexByName(name string) (*Index, error) {
	idx, ok := t.indexByName[name]
	if !ok {
		return nil, &LookupError{Table: t.name, Kind: "index", Name: name}
	}
	return idx, nil
}

// Constraints returns the foreign key constraints in definition order.
func (t *Table) Constraints() []*Constraint { return t.constraints }

// ConstraintNames returns the constraint names in definition order.
func (t *Table) ConstraintNames() []string {
	names := make([]string, len(t.constraints))
	for i, c := range t.constraints {
		names[i] = c.Name
	}
	return names
}

// PrimaryKey returns the primary key index, or nil when the table has none.
func (t *Table) PrimaryKey() *Index {
	idx := t.indexByName[""]
	if idx == nil || idx.Kind != IndexPrimary {
		return nil
	}
	return idx
}

// CreateStatement renders the create statement for a dump: it always ends
// with a semicolon and AUTO_INCREMENT counters are reset to 1. With
// addIfNotExists, tables get IF NOT EXISTS and views get OR REPLACE.
func (t *Table) CreateStatement(addIfNotExists bool) string {
	stmt := strings.TrimSpace(t.statement)
	if !strings.HasSuffix(stmt, ";") {
		stmt += ";"
	}

	switch t.kind {
	case KindTable:
		stmt = autoIncrRe.ReplaceAllString(stmt, "${1}1")
		if addIfNotExists && !ifNotExistsRe.MatchString(stmt) {
			stmt = strings.Replace(stmt, "CREATE TABLE", "CREATE TABLE IF NOT EXISTS", 1)
		}
	case KindView:
		if addIfNotExists && !orReplaceRe.MatchString(stmt) {
			stmt = strings.Replace(stmt, "CREATE", "CREATE OR REPLACE", 1)
		}
	default:
		return ""
	}
	return stmt
}

// DropStatement renders DROP TABLE IF EXISTS or DROP VIEW IF EXISTS.
func (t *Table) DropStatement() string {
	ident := "`" + strings.ReplaceAll(t.name, "`", "``") + "`"
	switch t.kind {
	case KindTable:
		return "DROP TABLE IF EXISTS " + ident + ";"
	case KindView:
		return "DROP VIEW IF EXISTS " + ident + ";"
	}
	return ""
}
