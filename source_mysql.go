package main

import (
	"context"
	"fmt"
	"log"
	"strings"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"

	"github.com/Limetric/schemadump/mysqlschema"
)

type mysqlSource struct {
	db     *sqlx.DB
	dbName string
	debug  bool
}

func openMySQLSource(ctx context.Context, conn ConnectionConfig) (*mysqlSource, error) {
	dsn, err := buildMySQLDSN(conn)
	if err != nil {
		return nil, err
	}
	dbName, err := extractMySQLDBName(dsn)
	if err != nil {
		return nil, err
	}

	db, err := sqlx.ConnectContext(ctx, "mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect mysql: %w", err)
	}
	// SHOW statements are issued one at a time.
	db.SetMaxOpenConns(1)

	return &mysqlSource{db: db, dbName: dbName, debug: conn.Debug}, nil
}

func (m *mysqlSource) Database() string { return m.dbName }

func (m *mysqlSource) Close() error { return m.db.Close() }

func (m *mysqlSource) logQuery(query string, args ...any) {
	if !m.debug {
		return
	}
	if len(args) == 0 {
		log.Printf("  query: %s", query)
		return
	}
	log.Printf("  query: %s %v", strings.Join(strings.Fields(query), " "), args)
}

func (m *mysqlSource) ListObjects(ctx context.Context) ([]SourceObject, error) {
	query := "SHOW FULL TABLES FROM " + quoteMySQLIdent(m.dbName)
	m.logQuery(query)

	rows, err := m.db.QueryxContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var objs []SourceObject
	for rows.Next() {
		var name, tableType string
		if err := rows.Scan(&name, &tableType); err != nil {
			return nil, fmt.Errorf("scan tables: %w", err)
		}
		kind, ok := objectKindFromTableType(tableType)
		if !ok {
			if m.debug {
				log.Printf("  skipping %s (%s)", name, tableType)
			}
			continue
		}
		objs = append(objs, SourceObject{Name: name, Kind: kind})
	}
	return objs, rows.Err()
}

func (m *mysqlSource) CreateStatement(ctx context.Context, name string) (string, error) {
	query := "SHOW CREATE TABLE " + quoteMySQLIdent(name)
	m.logQuery(query)

	row := map[string]any{}
	if err := m.db.QueryRowxContext(ctx, query).MapScan(row); err != nil {
		return "", err
	}
	stmt, ok := createStatementFromRow(row)
	if !ok {
		return "", fmt.Errorf("%s returned neither a Create Table nor a Create View column", query)
	}
	return stmt, nil
}

type mysqlRoutine struct {
	Type string `db:"ROUTINE_TYPE"`
	Name string `db:"ROUTINE_NAME"`
}

func (m *mysqlSource) ListUnexportedObjects(ctx context.Context) (*UnexportedObjects, error) {
	objs := &UnexportedObjects{}

	const routinesQuery = `
		SELECT ROUTINE_TYPE, ROUTINE_NAME
		FROM INFORMATION_SCHEMA.ROUTINES
		WHERE ROUTINE_SCHEMA = ?
		ORDER BY ROUTINE_TYPE, ROUTINE_NAME`
	m.logQuery(routinesQuery, m.dbName)
	var routines []mysqlRoutine
	if err := m.db.SelectContext(ctx, &routines, routinesQuery, m.dbName); err != nil {
		return nil, fmt.Errorf("list routines: %w", err)
	}
	for _, r := range routines {
		objs.Routines = append(objs.Routines, fmt.Sprintf("%s %s", strings.ToUpper(r.Type), r.Name))
	}

	const triggersQuery = `
		SELECT TRIGGER_NAME
		FROM INFORMATION_SCHEMA.TRIGGERS
		WHERE TRIGGER_SCHEMA = ?
		ORDER BY TRIGGER_NAME`
	m.logQuery(triggersQuery, m.dbName)
	if err := m.db.SelectContext(ctx, &objs.Triggers, triggersQuery, m.dbName); err != nil {
		return nil, fmt.Errorf("list triggers: %w", err)
	}

	const eventsQuery = `
		SELECT EVENT_NAME
		FROM INFORMATION_SCHEMA.EVENTS
		WHERE EVENT_SCHEMA = ?
		ORDER BY EVENT_NAME`
	m.logQuery(eventsQuery, m.dbName)
	if err := m.db.SelectContext(ctx, &objs.Events, eventsQuery, m.dbName); err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}

	return objs, nil
}

// createStatementFromRow picks the statement out of a SHOW CREATE TABLE row,
// which names its column "Create Table" or "Create View" depending on the
// object.
func createStatementFromRow(row map[string]any) (string, bool) {
	for _, col := range []string{"Create Table", "Create View"} {
		switch v := row[col].(type) {
		case []byte:
			return string(v), true
		case string:
			return v, true
		}
	}
	return "", false
}

// objectKindFromTableType maps the Table_type column of SHOW FULL TABLES.
// System views and sequences are not dumped.
func objectKindFromTableType(tableType string) (mysqlschema.Kind, bool) {
	switch strings.ToUpper(tableType) {
	case "BASE TABLE":
		return mysqlschema.KindTable, true
	case "VIEW":
		return mysqlschema.KindView, true
	}
	return mysqlschema.KindNone, false
}

func quoteMySQLIdent(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}
