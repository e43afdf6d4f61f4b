package main

import (
	"errors"
	"fmt"
	"go/token"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	onParseErrorFail = "error"
	onParseErrorSkip = "skip"

	defaultHost = "127.0.0.1"
	defaultPort = 3306
)

// DumpConfig holds the TOML-driven dump configuration.
type DumpConfig struct {
	Format           Format           `toml:"format"`
	AddIfNotExists   bool             `toml:"add_if_not_exists"`
	DropBeforeCreate bool             `toml:"drop_before_create"`
	OutputFile       string           `toml:"output_file"`    // relative to the config file; "-" for stdout
	OnParseError     string           `toml:"on_parse_error"` // error|skip
	GoPackage        string           `toml:"go_package"`
	Connection       ConnectionConfig `toml:"connection"`

	// configDir is the directory containing the TOML file, used to resolve relative paths.
	configDir string
}

// ConnectionConfig identifies the MySQL server and database to dump. When DSN
// is set it is used as the base and the discrete fields only override the
// parts they name. Host and port default to 127.0.0.1:3306 only without a DSN.
type ConnectionConfig struct {
	Driver   string `toml:"driver"`
	DSN      string `toml:"dsn"`
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	Username string `toml:"username"`
	Password string `toml:"password"`
	Database string `toml:"database"`
	Timezone string `toml:"timezone"`
	Debug    bool   `toml:"debug"`
}

func defaultDumpConfig() DumpConfig {
	return DumpConfig{
		Format:       FormatSQL,
		OnParseError: onParseErrorFail,
		GoPackage:    "schema",
		Connection: ConnectionConfig{
			Driver: "mysql",
		},
	}
}

// loadConfig reads a TOML config file and returns a DumpConfig with defaults
// applied. An empty path yields the defaults rooted at the working directory.
func loadConfig(path string) (*DumpConfig, error) {
	cfg := defaultDumpConfig()

	if path == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("resolve working directory: %w", err)
		}
		cfg.configDir = wd
		return &cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if unknown := md.Undecoded(); len(unknown) > 0 {
		keys := make([]string, len(unknown))
		for i, k := range unknown {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("unknown config keys: %s", strings.Join(keys, ", "))
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve config path: %w", err)
	}
	cfg.configDir = filepath.Dir(absPath)

	return &cfg, nil
}

// loadDotEnv loads a .env file next to the config file, if there is one.
// Variables already present in the environment win.
func loadDotEnv(dir string) error {
	p := filepath.Join(dir, ".env")
	if _, err := os.Stat(p); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(p); err != nil {
		return fmt.Errorf("load %s: %w", p, err)
	}
	return nil
}

// overrideFlags maps config keys to the CLI flags that override them.
var overrideFlags = map[string]string{
	"format":              "format",
	"output_file":         "output",
	"add_if_not_exists":   "add-if-not-exists",
	"drop_before_create":  "drop-before-create",
	"on_parse_error":      "on-parse-error",
	"go_package":          "go-package",
	"connection.dsn":      "dsn",
	"connection.host":     "host",
	"connection.port":     "port",
	"connection.username": "user",
	"connection.password": "password",
	"connection.database": "database",
	"connection.timezone": "timezone",
	"connection.debug":    "debug",
}

// newOverrides returns a viper instance that resolves SCHEMADUMP_* environment
// variables and the flags in overrideFlags that exist on the given set.
func newOverrides(flags *pflag.FlagSet) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix("SCHEMADUMP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, name := range overrideFlags {
		f := flags.Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return nil, fmt.Errorf("bind flag --%s: %w", name, err)
		}
	}
	return v, nil
}

// applyOverrides copies every key that is set in the environment or on the
// command line over the file values. Unset keys leave the file untouched.
func (c *DumpConfig) applyOverrides(v *viper.Viper) {
	strs := map[string]*string{
		"output_file":         &c.OutputFile,
		"on_parse_error":      &c.OnParseError,
		"go_package":          &c.GoPackage,
		"connection.driver":   &c.Connection.Driver,
		"connection.dsn":      &c.Connection.DSN,
		"connection.host":     &c.Connection.Host,
		"connection.username": &c.Connection.Username,
		"connection.password": &c.Connection.Password,
		"connection.database": &c.Connection.Database,
		"connection.timezone": &c.Connection.Timezone,
	}
	for key, dst := range strs {
		if v.IsSet(key) {
			*dst = v.GetString(key)
		}
	}

	bools := map[string]*bool{
		"add_if_not_exists":  &c.AddIfNotExists,
		"drop_before_create": &c.DropBeforeCreate,
		"connection.debug":   &c.Connection.Debug,
	}
	for key, dst := range bools {
		if v.IsSet(key) {
			*dst = v.GetBool(key)
		}
	}

	if v.IsSet("format") {
		c.Format = Format(v.GetString("format"))
	}
	if v.IsSet("connection.port") {
		c.Connection.Port = v.GetInt("connection.port")
	}
}

// validate normalizes enumerated values and checks the settings needed to
// connect. Output location checks are left to outputPath.
func (c *DumpConfig) validate() error {
	format, err := parseFormat(string(c.Format))
	if err != nil {
		return err
	}
	c.Format = format

	c.OnParseError = strings.ToLower(strings.TrimSpace(c.OnParseError))
	if c.OnParseError == "" {
		c.OnParseError = onParseErrorFail
	}
	switch c.OnParseError {
	case onParseErrorFail, onParseErrorSkip:
	default:
		return fmt.Errorf("on_parse_error must be one of: error, skip")
	}

	if c.Format == FormatGo && !token.IsIdentifier(c.GoPackage) {
		return fmt.Errorf("go_package %q is not a valid Go package name", c.GoPackage)
	}

	conn := &c.Connection
	if conn.Driver == "" {
		conn.Driver = "mysql"
	}
	if conn.Driver != "mysql" {
		return fmt.Errorf("unsupported connection.driver %q (must be mysql)", conn.Driver)
	}
	if conn.Port < 0 || conn.Port > 65535 {
		return fmt.Errorf("connection.port must be between 1 and 65535")
	}
	if conn.DSN == "" {
		if conn.Host == "" {
			conn.Host = defaultHost
		}
		if conn.Port == 0 {
			conn.Port = defaultPort
		}
		if conn.Username == "" {
			return fmt.Errorf("connection.username is required")
		}
		if conn.Database == "" {
			return fmt.Errorf("connection.database is required")
		}
	}
	if conn.Timezone != "" {
		if _, err := time.LoadLocation(conn.Timezone); err != nil {
			return fmt.Errorf("connection.timezone: %w", err)
		}
	}

	return nil
}

// resolvePath resolves a path relative to the config file directory.
func (c *DumpConfig) resolvePath(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.configDir, p)
}

// outputPath resolves output_file and checks that its directory exists and
// is writable. "-" selects standard output.
func (c *DumpConfig) outputPath() (string, error) {
	name := strings.TrimSpace(c.OutputFile)
	if name == "-" {
		return "-", nil
	}
	if name == "" {
		name = c.Format.defaultOutputFile()
	}

	p := c.resolvePath(name)
	dir := filepath.Dir(p)
	info, err := os.Stat(dir)
	if err != nil {
		return "", fmt.Errorf("output directory: %w", err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("output directory %s is not a directory", dir)
	}

	probe, err := os.CreateTemp(dir, ".schemadump-*")
	if err != nil {
		return "", fmt.Errorf("output directory %s is not writable: %w", dir, err)
	}
	probe.Close()
	os.Remove(probe.Name())

	return p, nil
}
