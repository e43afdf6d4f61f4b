package main

import (
	"context"
	"fmt"

	"github.com/Limetric/schemadump/mysqlschema"
)

// SourceObject is one table or view as listed by the source.
type SourceObject struct {
	Name string
	Kind mysqlschema.Kind
}

// SchemaSource reads table and view definitions from a database.
type SchemaSource interface {
	// Database returns the name of the database being read.
	Database() string

	// ListObjects returns every base table and view, in server order.
	ListObjects(ctx context.Context) ([]SourceObject, error)

	// CreateStatement returns the raw SHOW CREATE output for a table or view.
	CreateStatement(ctx context.Context, name string) (string, error)

	// ListUnexportedObjects discovers routines, triggers and events, which
	// the dump does not include.
	ListUnexportedObjects(ctx context.Context) (*UnexportedObjects, error)

	Close() error
}

// openSource connects the SchemaSource for the configured driver.
func openSource(ctx context.Context, conn ConnectionConfig) (SchemaSource, error) {
	switch conn.Driver {
	case "", "mysql":
		src, err := openMySQLSource(ctx, conn)
		if err != nil {
			return nil, err
		}
		return src, nil
	default:
		return nil, fmt.Errorf("unsupported connection driver %q (must be mysql)", conn.Driver)
	}
}
