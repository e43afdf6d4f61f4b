package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/pflag"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	cfgFile := filepath.Join(dir, "schemadump.toml")
	if err := os.WriteFile(cfgFile, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return cfgFile
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	cfgFile := writeConfig(t, dir, `
format = "yaml"
add_if_not_exists = true
drop_before_create = true
output_file = "out/schema.yaml"
on_parse_error = "skip"
go_package = "dbschema"

[connection]
driver = "mysql"
host = "db.local"
port = 3307
username = "dumper"
password = "secret"
database = "shop"
timezone = "Europe/Amsterdam"
debug = true
`)

	cfg, err := loadConfig(cfgFile)
	if err != nil {
		t.Fatalf("loadConfig() error: %v", err)
	}

	if cfg.Format != FormatYAML {
		t.Errorf("Format = %q, want yaml", cfg.Format)
	}
	if !cfg.AddIfNotExists || !cfg.DropBeforeCreate {
		t.Errorf("AddIfNotExists=%t DropBeforeCreate=%t, want true", cfg.AddIfNotExists, cfg.DropBeforeCreate)
	}
	if cfg.OutputFile != "out/schema.yaml" {
		t.Errorf("OutputFile = %q", cfg.OutputFile)
	}
	if cfg.OnParseError != "skip" {
		t.Errorf("OnParseError = %q, want skip", cfg.OnParseError)
	}
	if cfg.GoPackage != "dbschema" {
		t.Errorf("GoPackage = %q", cfg.GoPackage)
	}
	want := ConnectionConfig{
		Driver:   "mysql",
		Host:     "db.local",
		Port:     3307,
		Username: "dumper",
		Password: "secret",
		Database: "shop",
		Timezone: "Europe/Amsterdam",
		Debug:    true,
	}
	if cfg.Connection != want {
		t.Errorf("Connection = %+v, want %+v", cfg.Connection, want)
	}
	if cfg.configDir != dir {
		t.Errorf("configDir = %q, want %q", cfg.configDir, dir)
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	dir := t.TempDir()
	cfgFile := writeConfig(t, dir, `
[connection]
username = "root"
database = "shop"
`)

	cfg, err := loadConfig(cfgFile)
	if err != nil {
		t.Fatalf("loadConfig() error: %v", err)
	}
	if err := cfg.validate(); err != nil {
		t.Fatalf("validate() error: %v", err)
	}

	if cfg.Format != FormatSQL {
		t.Errorf("default Format = %q, want sql", cfg.Format)
	}
	if cfg.OnParseError != "error" {
		t.Errorf("default OnParseError = %q, want error", cfg.OnParseError)
	}
	if cfg.AddIfNotExists || cfg.DropBeforeCreate {
		t.Errorf("default AddIfNotExists=%t DropBeforeCreate=%t, want false", cfg.AddIfNotExists, cfg.DropBeforeCreate)
	}
	if cfg.GoPackage != "schema" {
		t.Errorf("default GoPackage = %q, want schema", cfg.GoPackage)
	}
	if cfg.Connection.Driver != "mysql" || cfg.Connection.Host != defaultHost || cfg.Connection.Port != defaultPort {
		t.Errorf("default connection = %+v", cfg.Connection)
	}
}

func TestLoadConfig_UnknownKeys(t *testing.T) {
	dir := t.TempDir()
	cfgFile := writeConfig(t, dir, `
export_format = "sql"

[connection]
database = "shop"
hostname = "db"
`)

	_, err := loadConfig(cfgFile)
	if err == nil {
		t.Fatal("expected error for unknown keys")
	}
	if !strings.Contains(err.Error(), "export_format") || !strings.Contains(err.Error(), "connection.hostname") {
		t.Fatalf("error %q does not list the unknown keys", err)
	}
}

func TestLoadConfig_NoFile(t *testing.T) {
	cfg, err := loadConfig("")
	if err != nil {
		t.Fatalf("loadConfig(\"\") error: %v", err)
	}
	wd, _ := os.Getwd()
	if cfg.configDir != wd {
		t.Errorf("configDir = %q, want working directory %q", cfg.configDir, wd)
	}
}

func TestLoadConfig_Missing(t *testing.T) {
	_, err := loadConfig(filepath.Join(t.TempDir(), "nope.toml"))
	if err == nil || !strings.Contains(err.Error(), "read config") {
		t.Fatalf("loadConfig(missing) err = %v", err)
	}
}

func TestValidate(t *testing.T) {
	valid := func() DumpConfig {
		cfg := defaultDumpConfig()
		cfg.Connection.Username = "root"
		cfg.Connection.Database = "shop"
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*DumpConfig)
		wantErr string
	}{
		{"valid", func(c *DumpConfig) {}, ""},
		{"format case-insensitive", func(c *DumpConfig) { c.Format = " YAML " }, ""},
		{"bad format", func(c *DumpConfig) { c.Format = "php_array" }, "format must be one of"},
		{"bad on_parse_error", func(c *DumpConfig) { c.OnParseError = "ignore" }, "on_parse_error must be one of"},
		{"bad driver", func(c *DumpConfig) { c.Connection.Driver = "pgsql" }, "unsupported connection.driver"},
		{"missing database", func(c *DumpConfig) { c.Connection.Database = "" }, "connection.database is required"},
		{"missing username", func(c *DumpConfig) { c.Connection.Username = "" }, "connection.username is required"},
		{"bad port", func(c *DumpConfig) { c.Connection.Port = 70000 }, "connection.port"},
		{"dsn replaces discrete fields", func(c *DumpConfig) {
			c.Connection = ConnectionConfig{DSN: "root@tcp(db:3306)/shop"}
		}, ""},
		{"bad timezone", func(c *DumpConfig) { c.Connection.Timezone = "Mars/Olympus" }, "connection.timezone"},
		{"bad go package", func(c *DumpConfig) { c.Format = FormatGo; c.GoPackage = "my-schema" }, "go_package"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("validate() error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("validate() err = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidate_HostDefaults(t *testing.T) {
	cfg := defaultDumpConfig()
	cfg.Connection.Username = "root"
	cfg.Connection.Database = "shop"
	if err := cfg.validate(); err != nil {
		t.Fatalf("validate() error: %v", err)
	}
	if cfg.Connection.Host != "127.0.0.1" || cfg.Connection.Port != 3306 {
		t.Errorf("connection = %s:%d, want 127.0.0.1:3306", cfg.Connection.Host, cfg.Connection.Port)
	}

	// With a DSN, an unset host or port must stay unset so the DSN address wins.
	cfg = defaultDumpConfig()
	cfg.Connection.DSN = "root@tcp(db.internal:3307)/shop"
	if err := cfg.validate(); err != nil {
		t.Fatalf("validate() error: %v", err)
	}
	if cfg.Connection.Host != "" || cfg.Connection.Port != 0 {
		t.Errorf("connection = %s:%d, want unset", cfg.Connection.Host, cfg.Connection.Port)
	}
}

func TestApplyOverrides(t *testing.T) {
	dir := t.TempDir()
	cfgFile := writeConfig(t, dir, `
format = "sql"
drop_before_create = true

[connection]
host = "db.local"
username = "root"
password = "from-file"
database = "shop"
`)
	cfg, err := loadConfig(cfgFile)
	if err != nil {
		t.Fatalf("loadConfig() error: %v", err)
	}

	t.Setenv("SCHEMADUMP_CONNECTION_PASSWORD", "from-env")
	t.Setenv("SCHEMADUMP_FORMAT", "yaml")

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("host", "", "")
	fs.Int("port", 0, "")
	fs.String("database", "", "")
	fs.Bool("add-if-not-exists", false, "")
	fs.Bool("drop-before-create", false, "")
	if err := fs.Parse([]string{"--host", "replica.local", "--add-if-not-exists"}); err != nil {
		t.Fatal(err)
	}

	v, err := newOverrides(fs)
	if err != nil {
		t.Fatalf("newOverrides() error: %v", err)
	}
	cfg.applyOverrides(v)

	if cfg.Connection.Host != "replica.local" {
		t.Errorf("Host = %q, want flag value", cfg.Connection.Host)
	}
	if cfg.Connection.Password != "from-env" {
		t.Errorf("Password = %q, want env value", cfg.Connection.Password)
	}
	if cfg.Format != "yaml" {
		t.Errorf("Format = %q, want env value", cfg.Format)
	}
	if !cfg.AddIfNotExists {
		t.Error("AddIfNotExists = false, want flag value")
	}
	if !cfg.DropBeforeCreate {
		t.Error("DropBeforeCreate = false, unset flag must not override the file")
	}
	if cfg.Connection.Port != 0 || cfg.Connection.Database != "shop" {
		t.Errorf("unset flags changed connection: %+v", cfg.Connection)
	}
}

func TestLoadDotEnv(t *testing.T) {
	const key = "SCHEMADUMP_TEST_DOTENV_USER"
	os.Unsetenv(key)
	t.Cleanup(func() { os.Unsetenv(key) })

	dir := t.TempDir()
	if err := loadDotEnv(dir); err != nil {
		t.Fatalf("loadDotEnv(no file) error: %v", err)
	}

	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte(key+"=dumper\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := loadDotEnv(dir); err != nil {
		t.Fatalf("loadDotEnv() error: %v", err)
	}
	if got := os.Getenv(key); got != "dumper" {
		t.Fatalf("%s = %q, want dumper", key, got)
	}
}

func TestOutputPath(t *testing.T) {
	dir := t.TempDir()
	cfg := defaultDumpConfig()
	cfg.configDir = dir

	cfg.OutputFile = "schema.sql"
	got, err := cfg.outputPath()
	if err != nil {
		t.Fatalf("outputPath() error: %v", err)
	}
	if got != filepath.Join(dir, "schema.sql") {
		t.Errorf("outputPath() = %q", got)
	}

	abs := filepath.Join(t.TempDir(), "abs.sql")
	cfg.OutputFile = abs
	if got, _ := cfg.outputPath(); got != abs {
		t.Errorf("outputPath(abs) = %q, want %q", got, abs)
	}

	cfg.OutputFile = "-"
	if got, _ := cfg.outputPath(); got != "-" {
		t.Errorf("outputPath(-) = %q", got)
	}

	cfg.OutputFile = ""
	cfg.Format = FormatYAML
	if got, _ := cfg.outputPath(); got != filepath.Join(dir, "schema.yaml") {
		t.Errorf("outputPath(default yaml) = %q", got)
	}

	cfg.OutputFile = "missing/schema.sql"
	if _, err := cfg.outputPath(); err == nil {
		t.Error("outputPath() expected error for missing directory")
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("outputPath() left files behind: %v", entries)
	}
}
