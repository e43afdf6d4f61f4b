package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"go/format"
	"io"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format selects how the statement map is serialized.
type Format string

const (
	FormatMap  Format = "map"  // JSON object, name -> statement
	FormatGo   Format = "go"   // Go source declaring the map as a variable
	FormatSQL  Format = "sql"  // plain script
	FormatYAML Format = "yaml" // YAML mapping with literal block scalars
)

func parseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatMap, FormatGo, FormatSQL, FormatYAML:
		return f, nil
	case "":
		return FormatSQL, nil
	}
	return "", fmt.Errorf("format must be one of: map, go, sql, yaml (got %q)", s)
}

func (f Format) defaultOutputFile() string {
	switch f {
	case FormatMap:
		return "schema.json"
	case FormatGo:
		return "schema.go"
	case FormatYAML:
		return "schema.yaml"
	}
	return "schema.sql"
}

// renderStatements serializes the statements in the given format. Every
// format keeps dump order.
func renderStatements(stmts []namedStatement, f Format, goPackage string) ([]byte, error) {
	switch f {
	case FormatMap:
		return renderMap(stmts)
	case FormatGo:
		return renderGoSource(stmts, goPackage)
	case FormatSQL:
		return renderSQL(stmts), nil
	case FormatYAML:
		return renderYAML(stmts)
	}
	return nil, fmt.Errorf("unsupported format %q", f)
}

func renderSQL(stmts []namedStatement) []byte {
	parts := make([]string, len(stmts))
	for i, s := range stmts {
		parts[i] = s.SQL
	}
	return []byte(strings.Join(parts, "\n\n") + "\n")
}

// renderMap writes a JSON object by hand because encoding/json sorts map keys.
func renderMap(stmts []namedStatement) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString("{")
	for i, s := range stmts {
		if i > 0 {
			buf.WriteString(",")
		}
		k, err := marshalJSONString(s.Name)
		if err != nil {
			return nil, err
		}
		v, err := marshalJSONString(s.SQL)
		if err != nil {
			return nil, err
		}
		buf.WriteString("\n  ")
		buf.Write(k)
		buf.WriteString(": ")
		buf.Write(v)
	}
	if len(stmts) > 0 {
		buf.WriteString("\n")
	}
	buf.WriteString("}\n")
	return buf.Bytes(), nil
}

func marshalJSONString(s string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return nil, fmt.Errorf("encode json string: %w", err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func renderGoSource(stmts []namedStatement, pkg string) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString("// Code generated by schemadump. DO NOT EDIT.\n\n")
	fmt.Fprintf(&buf, "package %s\n\n", pkg)

	buf.WriteString("// CreateStatements maps table and view names to their create statements.\n")
	buf.WriteString("var CreateStatements = map[string]string{\n")
	for _, s := range stmts {
		fmt.Fprintf(&buf, "%s: %s,\n", strconv.Quote(s.Name), strconv.Quote(s.SQL))
	}
	buf.WriteString("}\n\n")

	buf.WriteString("// CreateOrder lists the keys of CreateStatements in dump order.\n")
	buf.WriteString("var CreateOrder = []string{\n")
	for _, s := range stmts {
		fmt.Fprintf(&buf, "%s,\n", strconv.Quote(s.Name))
	}
	buf.WriteString("}\n")

	out, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("format go source: %w", err)
	}
	return out, nil
}

func renderYAML(stmts []namedStatement) ([]byte, error) {
	doc := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, s := range stmts {
		doc.Content = append(doc.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s.Name},
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s.SQL, Style: yaml.LiteralStyle},
		)
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("encode yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode yaml: %w", err)
	}
	return buf.Bytes(), nil
}

// writeOutput writes data to path, or to stdout when path is "-".
func writeOutput(stdout io.Writer, path string, data []byte) error {
	if path == "-" {
		if _, err := stdout.Write(data); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		return nil
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}
