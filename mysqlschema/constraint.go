package mysqlschema

import (
	"errors"
	"regexp"
	"strings"
)

// Constraint is a FOREIGN KEY constraint.
type Constraint struct {
	Name           string
	Table          *Table
	LocalColumns   []string
	ForeignTable   string
	ForeignColumns []string
	OnDelete       string // e.g. CASCADE, SET NULL; empty when not declared
	OnUpdate       string
	Definition     string
}

var (
	constraintLineRe = regexp.MustCompile("^CONSTRAINT `((?:[^`]|``)*)` FOREIGN KEY \\(([^)]*)\\) REFERENCES `((?:[^`]|``)*)` \\(([^)]*)\\)(.*)$")
	onDeleteRe       = regexp.MustCompile(`ON DELETE (RESTRICT|CASCADE|SET NULL|SET DEFAULT|NO ACTION)`)
	onUpdateRe       = regexp.MustCompile(`ON UPDATE (RESTRICT|CASCADE|SET NULL|SET DEFAULT|NO ACTION)`)
	checkRe          = regexp.MustCompile("^CONSTRAINT `(?:[^`]|``)*` CHECK ")
)

// isConstraintLine reports whether the line is a foreign key constraint.
// CHECK constraints are table options and are not matched.
func isConstraintLine(line string) bool {
	return strings.HasPrefix(line, "CONSTRAINT") && !checkRe.MatchString(line)
}

// parseConstraint decodes a line such as
// "CONSTRAINT `f1_c` FOREIGN KEY (`f1`) REFERENCES `table2` (`id`) ON UPDATE CASCADE,".
func parseConstraint(line string, table *Table) (*Constraint, error) {
	def := strings.TrimSpace(line)

	m := constraintLineRe.FindStringSubmatch(def)
	if len(m) != 6 {
		return nil, parseErrorf(def, "cannot parse index constraint")
	}

	c := &Constraint{
		Name:           unquoteIdent(m[1]),
		Table:          table,
		LocalColumns:   splitIdentList(m[2]),
		ForeignTable:   unquoteIdent(m[3]),
		ForeignColumns: splitIdentList(m[4]),
		Definition:     def,
	}
	if len(c.LocalColumns) == 0 || len(c.ForeignColumns) == 0 {
		return nil, parseErrorf(def, "cannot parse index constraint")
	}
	if a := onDeleteRe.FindStringSubmatch(m[5]); a != nil {
		c.OnDelete = a[1]
	}
	if a := onUpdateRe.FindStringSubmatch(m[5]); a != nil {
		c.OnUpdate = a[1]
	}
	return c, nil
}

// LocalColumn returns the first referencing column.
func (c *Constraint) LocalColumn() string { return c.LocalColumns[0] }

// ForeignColumn returns the first referenced column.
func (c *Constraint) ForeignColumn() string { return c.ForeignColumns[0] }

// Index returns the index backing the constraint on the owning table. MySQL
// names that index after the constraint unless one already existed on the
// local column, so both names are tried in that order.
func (c *Constraint) Index() (*Index, error) {
	idx, err := c.Table.IndexByName(c.Name)
	if err == nil {
		return idx, nil
	}
	var lookupErr *LookupError
	if !errors.As(err, &lookupErr) {
		return nil, err
	}
	return c.Table.IndexByName(c.LocalColumn())
}

func unquoteIdent(s string) string {
	return strings.ReplaceAll(s, "``", "`")
}

func splitIdentList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		part = strings.TrimPrefix(part, "`")
		part = strings.TrimSuffix(part, "`")
		if part == "" {
			continue
		}
		out = append(out, unquoteIdent(part))
	}
	return out
}
