package main

import (
	"context"
	"fmt"

	"github.com/Limetric/schemadump/mysqlschema"
)

// Dump is the parsed schema of one database, in listing order.
type Dump struct {
	Database string
	Tables   []*mysqlschema.Table
	Skipped  []SkippedObject
}

// SkippedObject is a table or view left out of the dump because its create
// statement could not be parsed.
type SkippedObject struct {
	Name string
	Kind mysqlschema.Kind
	Err  error
}

type namedStatement struct {
	Name string
	SQL  string
}

// dumpSchema fetches and parses every table and view the source lists. With
// onParseError "skip" a failing object is recorded in Skipped; otherwise the
// first parse failure aborts the dump.
func dumpSchema(ctx context.Context, src SchemaSource, onParseError string) (*Dump, error) {
	objs, err := src.ListObjects(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}

	dump := &Dump{Database: src.Database()}
	for _, obj := range objs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		stmt, err := src.CreateStatement(ctx, obj.Name)
		if err != nil {
			return nil, fmt.Errorf("show create %s %s: %w", obj.Kind, obj.Name, err)
		}

		table, err := mysqlschema.Parse(stmt)
		if err != nil {
			if onParseError == onParseErrorSkip {
				dump.Skipped = append(dump.Skipped, SkippedObject{Name: obj.Name, Kind: obj.Kind, Err: err})
				continue
			}
			return nil, fmt.Errorf("parse %s %s: %w", obj.Kind, obj.Name, err)
		}
		dump.Tables = append(dump.Tables, table)
	}

	return dump, nil
}

// Statements renders the create statement of every object. With
// dropBeforeCreate each entry is the DROP statement, a newline, then the
// create statement.
func (d *Dump) Statements(addIfNotExists, dropBeforeCreate bool) []namedStatement {
	out := make([]namedStatement, 0, len(d.Tables))
	for _, t := range d.Tables {
		sql := t.CreateStatement(addIfNotExists)
		if dropBeforeCreate {
			sql = t.DropStatement() + "\n" + sql
		}
		out = append(out, namedStatement{Name: t.Name(), SQL: sql})
	}
	return out
}

func (d *Dump) counts() (tables, views int) {
	for _, t := range d.Tables {
		switch t.Kind() {
		case mysqlschema.KindTable:
			tables++
		case mysqlschema.KindView:
			views++
		}
	}
	return tables, views
}
