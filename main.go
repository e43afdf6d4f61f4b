package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/Limetric/schemadump/mysqlschema"
)

var (
	configPath  string
	askPassword bool
)

var rootCmd = &cobra.Command{
	Use:          "schemadump [config.toml]",
	Short:        "Dump MySQL table and view definitions",
	Args:         cobra.MaximumNArgs(1),
	SilenceUsage: true,
	RunE:         runExport,
}

var describeCmd = &cobra.Command{
	Use:   "describe <table> [config.toml]",
	Short: "Print the parsed definition of one table or view",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runDescribe,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the schemadump version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), "schemadump "+versionString())
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "path to TOML config file")
	pf.String("dsn", "", "MySQL DSN, e.g. user:pass@tcp(host:3306)/db")
	pf.String("host", "", "MySQL host; replaces the host of --dsn when both are given")
	pf.Int("port", 0, "MySQL port (default 3306)")
	pf.String("user", "", "MySQL username")
	pf.String("password", "", "MySQL password")
	pf.String("database", "", "database to dump")
	pf.String("timezone", "", "connection time zone, e.g. UTC")
	pf.Bool("debug", false, "log every query sent to MySQL")
	pf.BoolVar(&askPassword, "ask-password", false, "prompt for the MySQL password")

	f := rootCmd.Flags()
	f.String("format", "", "output format: map, go, sql or yaml")
	f.StringP("output", "o", "", "output file, relative to the config file; - for stdout")
	f.Bool("add-if-not-exists", false, "guard tables with IF NOT EXISTS and views with OR REPLACE")
	f.Bool("drop-before-create", false, "precede every create statement with a DROP ... IF EXISTS")
	f.String("on-parse-error", "", "what to do with a table that cannot be parsed: error or skip")
	f.String("go-package", "", "package name for the go format")

	rootCmd.AddCommand(describeCmd, versionCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

// resolveConfig loads the config file and layers .env, SCHEMADUMP_*
// environment variables, flags and the password prompt on top.
func resolveConfig(cmd *cobra.Command, pathArg string) (*DumpConfig, error) {
	// Resolve config path: positional arg takes precedence over --config flag
	cfgPath := configPath
	if pathArg != "" {
		cfgPath = pathArg
	}

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		return nil, err
	}
	if err := loadDotEnv(cfg.configDir); err != nil {
		return nil, err
	}

	v, err := newOverrides(cmd.Flags())
	if err != nil {
		return nil, err
	}
	cfg.applyOverrides(v)

	if askPassword {
		pw, err := promptPassword(os.Stdin, os.Stderr)
		if err != nil {
			return nil, err
		}
		cfg.Connection.Password = pw
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runExport(cmd *cobra.Command, args []string) error {
	var pathArg string
	if len(args) > 0 {
		pathArg = args[0]
	}
	cfg, err := resolveConfig(cmd, pathArg)
	if err != nil {
		return err
	}
	outPath, err := cfg.outputPath()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	start := time.Now()

	log.Printf("schemadump %s", versionString())
	log.Printf(
		"config: format=%s add_if_not_exists=%t drop_before_create=%t on_parse_error=%s output=%s",
		cfg.Format,
		cfg.AddIfNotExists,
		cfg.DropBeforeCreate,
		cfg.OnParseError,
		outPath,
	)

	log.Printf("connecting to MySQL...")
	src, err := openSource(ctx, cfg.Connection)
	if err != nil {
		return err
	}
	defer src.Close()

	log.Printf("reading schema '%s'...", src.Database())
	dump, err := dumpSchema(ctx, src, cfg.OnParseError)
	if err != nil {
		return fmt.Errorf("dump schema: %w", err)
	}

	tables, views := dump.counts()
	log.Printf("found %d tables, %d views", tables, views)
	for _, t := range dump.Tables {
		if t.Kind() == mysqlschema.KindView {
			log.Printf("  %s (view)", t.Name())
			continue
		}
		log.Printf("  %s (%d cols, %d indexes, %d fks)",
			t.Name(), len(t.Columns()), len(t.Indexes()), len(t.Constraints()))
	}
	if len(dump.Skipped) > 0 {
		log.Printf("skipped %d object(s) that could not be parsed", len(dump.Skipped))
		for _, s := range dump.Skipped {
			log.Printf("  WARN: %s %s: %v", s.Kind, s.Name, s.Err)
		}
		if types := collectUnsupportedTypes(dump); len(types) > 0 {
			log.Printf("  WARN: unsupported column types: %s", strings.Join(types, ", "))
		}
	}

	objs, err := src.ListUnexportedObjects(ctx)
	if err != nil {
		log.Printf("  WARN: cannot list routines, triggers and events: %v", err)
	}
	for _, w := range unexportedObjectWarnings(objs) {
		log.Printf("  WARN: %s", w)
	}

	data, err := renderStatements(dump.Statements(cfg.AddIfNotExists, cfg.DropBeforeCreate), cfg.Format, cfg.GoPackage)
	if err != nil {
		return err
	}
	if err := writeOutput(cmd.OutOrStdout(), outPath, data); err != nil {
		return err
	}

	log.Printf("wrote %s (%s) in %s", outPath, humanize.Bytes(uint64(len(data))), time.Since(start).Round(time.Millisecond))
	return nil
}

func runDescribe(cmd *cobra.Command, args []string) error {
	var pathArg string
	if len(args) > 1 {
		pathArg = args[1]
	}
	cfg, err := resolveConfig(cmd, pathArg)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	src, err := openSource(ctx, cfg.Connection)
	if err != nil {
		return err
	}
	defer src.Close()

	stmt, err := src.CreateStatement(ctx, args[0])
	if err != nil {
		return fmt.Errorf("show create %s: %w", args[0], err)
	}
	table, err := mysqlschema.Parse(stmt)
	if err != nil {
		return err
	}
	return describeTable(cmd.OutOrStdout(), table)
}
