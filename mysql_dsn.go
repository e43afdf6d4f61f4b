package main

import (
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/go-sql-driver/mysql"
)

// buildMySQLDSN assembles the driver DSN from the connection settings. A
// configured DSN is the base; host, port, username, password and database
// override it when set.
func buildMySQLDSN(conn ConnectionConfig) (string, error) {
	var cfg *mysql.Config
	if conn.DSN != "" {
		parsed, err := mysql.ParseDSN(conn.DSN)
		if err != nil {
			return "", fmt.Errorf("parse mysql dsn: %w", err)
		}
		cfg = parsed
		if conn.Host != "" || conn.Port != 0 {
			host, port, err := net.SplitHostPort(cfg.Addr)
			if err != nil || cfg.Net != "tcp" {
				host, port = defaultHost, strconv.Itoa(defaultPort)
			}
			if conn.Host != "" {
				host = conn.Host
			}
			if conn.Port != 0 {
				port = strconv.Itoa(conn.Port)
			}
			cfg.Net = "tcp"
			cfg.Addr = net.JoinHostPort(host, port)
		}
		if conn.Username != "" {
			cfg.User = conn.Username
		}
		if conn.Password != "" {
			cfg.Passwd = conn.Password
		}
		if conn.Database != "" {
			cfg.DBName = conn.Database
		}
	} else {
		cfg = mysql.NewConfig()
		cfg.Net = "tcp"
		cfg.Addr = net.JoinHostPort(conn.Host, strconv.Itoa(conn.Port))
		cfg.User = conn.Username
		cfg.Passwd = conn.Password
		cfg.DBName = conn.Database
	}

	if cfg.DBName == "" {
		return "", fmt.Errorf("mysql dsn has no database name")
	}

	cfg.InterpolateParams = true
	cfg.Loc = time.UTC
	if conn.Timezone != "" {
		loc, err := time.LoadLocation(conn.Timezone)
		if err != nil {
			return "", fmt.Errorf("load timezone %q: %w", conn.Timezone, err)
		}
		cfg.Loc = loc
	}
	return cfg.FormatDSN(), nil
}

// extractMySQLDBName pulls the database name from a MySQL DSN.
func extractMySQLDBName(dsn string) (string, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return "", fmt.Errorf("parse mysql dsn: %w", err)
	}
	if cfg.DBName == "" {
		return "", fmt.Errorf("cannot extract database name from DSN: empty name")
	}
	return cfg.DBName, nil
}
