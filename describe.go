package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/Limetric/schemadump/mysqlschema"
)

// describeTable prints the parsed model of a table or view: columns with
// their semantic type and limits, then indexes and foreign keys.
func describeTable(w io.Writer, t *mysqlschema.Table) error {
	fmt.Fprintf(w, "%s %s\n", t.Kind(), t.Name())
	if t.Kind() == mysqlschema.KindView {
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintln(tw)
	fmt.Fprintln(tw, "COLUMN\tTYPE\tVALUE\tNULL\tDEFAULT\tLIMITS\tEXTRA")
	for _, col := range t.Columns() {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			col.Name, col.TypeDef, col.ValueType, yesNo(col.Nullable),
			describeDefault(col), describeLimits(col), describeExtra(col))
	}

	if idxs := t.Indexes(); len(idxs) > 0 {
		fmt.Fprintln(tw)
		fmt.Fprintln(tw, "INDEX\tKIND\tCOLUMNS\tUSING")
		for _, idx := range idxs {
			name := idx.Name
			if name == "" {
				name = "(primary)"
			}
			cols := strings.Join(idx.ColumnNames, ", ")
			if idx.HasPrefix {
				cols += " (prefix)"
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", name, idx.Kind, cols, dash(idx.Using))
		}
	}

	if cons := t.Constraints(); len(cons) > 0 {
		fmt.Fprintln(tw)
		fmt.Fprintln(tw, "FOREIGN KEY\tCOLUMNS\tREFERENCES\tON DELETE\tON UPDATE")
		for _, c := range cons {
			fmt.Fprintf(tw, "%s\t%s\t%s(%s)\t%s\t%s\n",
				c.Name, strings.Join(c.LocalColumns, ", "),
				c.ForeignTable, strings.Join(c.ForeignColumns, ", "),
				dash(c.OnDelete), dash(c.OnUpdate))
		}
	}

	return tw.Flush()
}

func describeDefault(col *mysqlschema.Column) string {
	if !col.HasDefault {
		return "-"
	}
	if col.Default == nil {
		return "NULL"
	}
	if s, ok := col.Default.(string); ok {
		return fmt.Sprintf("%q", s)
	}
	return fmt.Sprint(col.Default)
}

func describeLimits(col *mysqlschema.Column) string {
	switch {
	case col.ValidValues != nil:
		return "{" + strings.Join(col.ValidValues, ", ") + "}"
	case col.MaxLength != nil:
		return fmt.Sprintf("len %d..%d", *col.MinLength, *col.MaxLength)
	case col.MinValue != nil && col.MaxValue != nil:
		return fmt.Sprintf("%v..%v", col.MinValue, col.MaxValue)
	case col.MinValue != nil:
		return fmt.Sprintf(">= %v", col.MinValue)
	}
	return "-"
}

func describeExtra(col *mysqlschema.Column) string {
	var parts []string
	if col.PartOfPK {
		parts = append(parts, "PK")
	}
	if col.AutoIncrement {
		parts = append(parts, "AUTO_INCREMENT")
	}
	if col.Unsigned {
		parts = append(parts, "unsigned")
	}
	if col.Zerofill {
		parts = append(parts, "zerofill")
	}
	if col.OnUpdate != "" {
		parts = append(parts, "ON UPDATE "+col.OnUpdate)
	}
	if col.Comment != "" {
		parts = append(parts, fmt.Sprintf("comment %q", col.Comment))
	}
	return dash(strings.Join(parts, " "))
}

func yesNo(b bool) string {
	if b {
		return "YES"
	}
	return "NO"
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
