package mysqlschema

import (
	"errors"
	"reflect"
	"testing"
)

func TestParseConstraint(t *testing.T) {
	c, err := parseConstraint("CONSTRAINT `f1_c` FOREIGN KEY (`f1`) REFERENCES `table2` (`id`) ON UPDATE CASCADE,", nil)
	if err != nil {
		t.Fatalf("parseConstraint() error: %v", err)
	}
	if c.Name != "f1_c" || c.LocalColumn() != "f1" || c.ForeignTable != "table2" || c.ForeignColumn() != "id" {
		t.Fatalf("parseConstraint() = %+v", c)
	}
	if c.OnUpdate != "CASCADE" || c.OnDelete != "" {
		t.Fatalf("actions = delete %q update %q, want \"\"/CASCADE", c.OnDelete, c.OnUpdate)
	}
}

func TestParseConstraintMultiColumn(t *testing.T) {
	line := "CONSTRAINT `fk_ab` FOREIGN KEY (`a`, `b`) REFERENCES `other` (`x`, `y`) ON DELETE SET NULL ON UPDATE NO ACTION"
	c, err := parseConstraint(line, nil)
	if err != nil {
		t.Fatalf("parseConstraint() error: %v", err)
	}
	if !reflect.DeepEqual(c.LocalColumns, []string{"a", "b"}) {
		t.Fatalf("LocalColumns = %#v", c.LocalColumns)
	}
	if !reflect.DeepEqual(c.ForeignColumns, []string{"x", "y"}) {
		t.Fatalf("ForeignColumns = %#v", c.ForeignColumns)
	}
	if c.OnDelete != "SET NULL" || c.OnUpdate != "NO ACTION" {
		t.Fatalf("actions = delete %q update %q", c.OnDelete, c.OnUpdate)
	}
	if c.Definition != line {
		t.Fatalf("Definition = %q", c.Definition)
	}
}

func TestParseConstraintErrors(t *testing.T) {
	for _, line := range []string{
		"CONSTRAINT `x` FOREIGN KEY `f1` REFERENCES `t` (`id`)",
		"CONSTRAINT `x` FOREIGN KEY () REFERENCES `t` ()",
		"CONSTRAINT",
	} {
		_, err := parseConstraint(line, nil)
		var perr *ParseError
		if !errors.As(err, &perr) {
			t.Fatalf("parseConstraint(%q) err = %v, want *ParseError", line, err)
		}
		if perr.Line != line {
			t.Fatalf("parseConstraint(%q) error line = %q", line, perr.Line)
		}
	}
}

func TestIsConstraintLine(t *testing.T) {
	if !isConstraintLine("CONSTRAINT `f1_c` FOREIGN KEY (`f1`) REFERENCES `table2` (`id`)") {
		t.Fatal("foreign key line not recognized")
	}
	if isConstraintLine("CONSTRAINT `chk_qty` CHECK ((`qty` > 0))") {
		t.Fatal("check constraint treated as foreign key")
	}
}
