package main

import (
	"testing"

	"github.com/Limetric/schemadump/mysqlschema"
)

func TestCreateStatementFromRow(t *testing.T) {
	tests := []struct {
		name string
		row  map[string]any
		want string
		ok   bool
	}{
		{"table bytes", map[string]any{"Table": []byte("t"), "Create Table": []byte("CREATE TABLE `t` (...)")}, "CREATE TABLE `t` (...)", true},
		{"view string", map[string]any{"View": "v", "Create View": "CREATE VIEW `v` AS select 1", "character_set_client": "utf8mb4"}, "CREATE VIEW `v` AS select 1", true},
		{"neither", map[string]any{"Table": []byte("t")}, "", false},
		{"null column", map[string]any{"Create Table": nil}, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := createStatementFromRow(tt.row)
			if got != tt.want || ok != tt.ok {
				t.Fatalf("createStatementFromRow() = (%q, %t), want (%q, %t)", got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestObjectKindFromTableType(t *testing.T) {
	tests := []struct {
		in   string
		want mysqlschema.Kind
		ok   bool
	}{
		{"BASE TABLE", mysqlschema.KindTable, true},
		{"VIEW", mysqlschema.KindView, true},
		{"SYSTEM VIEW", mysqlschema.KindNone, false},
		{"SEQUENCE", mysqlschema.KindNone, false},
	}
	for _, tt := range tests {
		got, ok := objectKindFromTableType(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("objectKindFromTableType(%q) = (%q, %t), want (%q, %t)", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestQuoteMySQLIdent(t *testing.T) {
	got := quoteMySQLIdent("my`table")
	want := "`my``table`"
	if got != want {
		t.Errorf("quoteMySQLIdent() = %q, want %q", got, want)
	}
}

func TestOpenSource_UnsupportedDriver(t *testing.T) {
	_, err := openSource(t.Context(), ConnectionConfig{Driver: "sqlite"})
	if err == nil {
		t.Fatal("expected error for unsupported driver")
	}
}
