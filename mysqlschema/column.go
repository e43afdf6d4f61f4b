package mysqlschema

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Column is one column definition parsed from a CREATE TABLE body.
//
// Exactly one family of limits is populated, chosen by the value type:
// MinValue/MaxValue for numeric and temporal types, MinLength/MaxLength for
// string and binary types, ValidValues for enum and set. The others stay nil.
type Column struct {
	Name     string
	Position int // zero-based ordinal within the table
	Table    *Table

	DBType    string    // MySQL type keyword, e.g. "int", "varchar"
	TypeDef   string    // full type descriptor, e.g. "int(11)", "enum('a','b')"
	ValueType ValueType // semantic type

	Unsigned      bool
	Zerofill      bool
	Nullable      bool
	AutoIncrement bool
	PartOfPK      bool

	// HasDefault is true when the definition carries a DEFAULT clause. Default
	// holds the cast literal: int64, uint64, float64, bool, string or nil.
	HasDefault bool
	Default    any

	OnUpdate string
	Comment  string

	MinValue    any
	MaxValue    any
	MinLength   *int64
	MaxLength   *int64
	ValidValues []string

	// Definition is the trimmed source line.
	Definition string
}

var columnHeadRe = regexp.MustCompile("^`((?:[^`]|``)+)`\\s+([A-Za-z]+)")

type literalKind int

const (
	literalBare literalKind = iota
	literalQuoted
	literalBit
	literalHex
	literalExpr
)

type defaultLiteral struct {
	kind literalKind
	text string
	null bool
}

// parseColumn decodes one column line such as
// "`id` int(11) unsigned NOT NULL AUTO_INCREMENT,".
func parseColumn(line string, position int, table *Table) (*Column, error) {
	def := strings.TrimSpace(line)

	m := columnHeadRe.FindStringSubmatchIndex(def)
	if m == nil {
		return nil, parseErrorf(def, "could not parse column type")
	}

	col := &Column{
		Name:       strings.ReplaceAll(def[m[2]:m[3]], "``", "`"),
		Position:   position,
		Table:      table,
		DBType:     strings.ToLower(def[m[4]:m[5]]),
		Nullable:   true,
		Definition: def,
	}

	typeEnd := m[5]
	if typeEnd < len(def) && def[typeEnd] == '(' {
		end, err := matchParen(def, typeEnd)
		if err != nil {
			return nil, &ParseError{Line: def, Reason: "could not parse column type", Err: err}
		}
		typeEnd = end
	}
	col.TypeDef = def[m[4]:typeEnd]

	vt, err := LookupValueType(col.DBType)
	if err != nil {
		return nil, &ParseError{Line: def, Err: err}
	}
	col.ValueType = vt

	extra := strings.TrimSpace(def[typeEnd:])
	extra = strings.TrimSpace(strings.TrimSuffix(extra, ","))

	if err := col.parseExtra(extra); err != nil {
		return nil, err
	}
	if err := col.setLengthsAndValidValues(); err != nil {
		return nil, err
	}
	col.setTypeBounds()

	return col, nil
}

// parseExtra reads the modifiers following the type descriptor. Keywords are
// matched anywhere in the text, outside of quoted literals.
func (c *Column) parseExtra(extra string) error {
	bare := blankQuoted(extra)

	if IsNumericType(c.DBType) {
		c.Unsigned = c.DBType == TypeYear || strings.Contains(bare, "unsigned")
		c.Zerofill = strings.Contains(bare, "zerofill")
	}
	if strings.Contains(bare, "NOT NULL") {
		c.Nullable = false
	}
	if strings.Contains(bare, "AUTO_INCREMENT") {
		c.AutoIncrement = true
	}

	if i := strings.Index(bare, "DEFAULT"); i >= 0 {
		if !strings.HasPrefix(bare[i:], "DEFAULT ") {
			return parseErrorf(c.Definition, "could not decipher DEFAULT in %q", extra)
		}
		lit, err := readDefaultLiteral(extra, i+len("DEFAULT "))
		if err != nil {
			return &ParseError{Line: c.Definition, Reason: "could not decipher DEFAULT", Err: err}
		}
		v, err := c.castDefault(lit)
		if err != nil {
			return &ParseError{Line: c.Definition, Reason: "invalid DEFAULT", Err: err}
		}
		c.HasDefault = true
		c.Default = v
	}

	if i := strings.Index(bare, "ON UPDATE "); i >= 0 {
		c.OnUpdate = nextToken(extra, i+len("ON UPDATE "))
	}

	if i := strings.Index(bare, "COMMENT '"); i >= 0 {
		comment, _, err := readQuoted(extra, i+len("COMMENT "))
		if err != nil {
			return &ParseError{Line: c.Definition, Reason: "could not decipher COMMENT", Err: err}
		}
		c.Comment = comment
	}

	return nil
}

// readDefaultLiteral reads the literal following DEFAULT: a quoted string,
// a b'..' or x'..' literal, a parenthesized expression or a bare token.
func readDefaultLiteral(s string, start int) (defaultLiteral, error) {
	for start < len(s) && s[start] == ' ' {
		start++
	}
	if start >= len(s) {
		return defaultLiteral{}, fmt.Errorf("missing value")
	}

	switch {
	case s[start] == '\'':
		v, _, err := readQuoted(s, start)
		if err != nil {
			return defaultLiteral{}, err
		}
		return defaultLiteral{kind: literalQuoted, text: v}, nil

	case (s[start] == 'b' || s[start] == 'x') && start+1 < len(s) && s[start+1] == '\'':
		v, _, err := readQuoted(s, start+1)
		if err != nil {
			return defaultLiteral{}, err
		}
		kind := literalBit
		if s[start] == 'x' {
			kind = literalHex
		}
		return defaultLiteral{kind: kind, text: v}, nil

	case s[start] == '(':
		end, err := matchParen(s, start)
		if err != nil {
			return defaultLiteral{}, err
		}
		return defaultLiteral{kind: literalExpr, text: s[start:end]}, nil
	}

	tok := nextToken(s, start)
	if tok == "" {
		return defaultLiteral{}, fmt.Errorf("missing value")
	}
	if strings.EqualFold(tok, "NULL") {
		return defaultLiteral{null: true}, nil
	}
	return defaultLiteral{kind: literalBare, text: tok}, nil
}

// nextToken returns the run of characters at s[start] up to whitespace or a
// comma. Parentheses are kept balanced so CURRENT_TIMESTAMP(6) stays whole.
func nextToken(s string, start int) string {
	depth := 0
	i := start
	for i < len(s) {
		c := s[i]
		if c == '(' {
			depth++
		} else if c == ')' && depth > 0 {
			depth--
		} else if depth == 0 && (c == ' ' || c == ',' || c == '\t') {
			break
		}
		i++
	}
	return s[start:i]
}

// matchParen returns the index just past the parenthesis that closes the one
// at s[open]. Quoted literals and backtick identifiers are skipped.
func matchParen(s string, open int) (int, error) {
	depth := 0
	for i := open; i < len(s); i++ {
		switch s[i] {
		case '`':
			i = skipIdent(s, i) - 1
		case '\'':
			i = skipQuoted(s, i) - 1
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i + 1, nil
			}
		}
	}
	return 0, fmt.Errorf("unbalanced parentheses")
}

// castDefault converts a DEFAULT literal to the Go type matching the
// column's value type.
func (c *Column) castDefault(lit defaultLiteral) (any, error) {
	if lit.null {
		if c.ValueType == ValueBool {
			return false, nil
		}
		return nil, nil
	}
	// Expression defaults, e.g. DEFAULT (uuid()), are evaluated by the server.
	if lit.kind == literalExpr {
		return lit.text, nil
	}

	switch c.ValueType {
	case ValueInt, ValueYear:
		return castInteger(c.DBType, lit)

	case ValueFloat:
		f, err := strconv.ParseFloat(lit.text, 64)
		if err != nil {
			return nil, fmt.Errorf("%s default %q is not a number", c.DBType, lit.text)
		}
		return f, nil

	case ValueBool:
		return castBool(lit), nil

	case ValueString, ValueBinary, ValueDate, ValueDatetime, ValueTimestamp, ValueTime:
		return lit.text, nil
	}
	return nil, fmt.Errorf("no default conversion for value type %q", c.ValueType)
}

func castInteger(dbType string, lit defaultLiteral) (any, error) {
	switch lit.kind {
	case literalBit:
		n, err := strconv.ParseUint(lit.text, 2, 64)
		if err != nil {
			return nil, fmt.Errorf("%s default b'%s' is not a bit literal", dbType, lit.text)
		}
		return narrowUint(n), nil
	case literalHex:
		n, err := strconv.ParseUint(lit.text, 16, 64)
		if err != nil {
			return nil, fmt.Errorf("%s default x'%s' is not a hex literal", dbType, lit.text)
		}
		return narrowUint(n), nil
	}

	if dbType == TypeDecimal {
		d, err := decimal.NewFromString(lit.text)
		if err != nil {
			return nil, fmt.Errorf("%s default %q is not a number", dbType, lit.text)
		}
		return d.IntPart(), nil
	}

	if n, err := strconv.ParseInt(lit.text, 10, 64); err == nil {
		return n, nil
	}
	if n, err := strconv.ParseUint(lit.text, 10, 64); err == nil {
		return n, nil
	}
	return nil, fmt.Errorf("%s default %q is not an integer", dbType, lit.text)
}

func narrowUint(n uint64) any {
	if n <= 1<<63-1 {
		return int64(n)
	}
	return n
}

// castBool follows MySQL bit truthiness: empty, zero and b'0...' are false.
func castBool(lit defaultLiteral) bool {
	switch lit.kind {
	case literalBit:
		n, err := strconv.ParseUint(lit.text, 2, 64)
		return err == nil && n != 0
	case literalHex:
		n, err := strconv.ParseUint(lit.text, 16, 64)
		return err == nil && n != 0
	}
	if lit.text == "" {
		return false
	}
	if f, err := strconv.ParseFloat(lit.text, 64); err == nil {
		return f != 0
	}
	return true
}

func (c *Column) setLengthsAndValidValues() error {
	if c.DBType == TypeEnum || c.DBType == TypeSet {
		values, err := parseEnumSetValues(c.TypeDef)
		if err != nil {
			return &ParseError{Line: c.Definition, Err: err}
		}
		c.ValidValues = values
		return nil
	}

	if IsNumericType(c.DBType) || isTemporalType(c.DBType) {
		return nil
	}

	open := strings.IndexByte(c.TypeDef, '(')
	if open < 0 {
		return nil
	}
	inside := strings.TrimSpace(c.TypeDef[open+1 : len(c.TypeDef)-1])
	n, err := strconv.ParseInt(inside, 10, 64)
	if err != nil {
		return parseErrorf(c.Definition, "invalid length %q for %s", inside, c.DBType)
	}
	var lo int64
	c.MinLength = &lo
	c.MaxLength = &n
	return nil
}

func (c *Column) setTypeBounds() {
	b := TypeBounds(c.DBType, c.Unsigned)
	if b.MinValue != nil || b.MaxValue != nil {
		c.MinValue = b.MinValue
		c.MaxValue = b.MaxValue
	}
	if c.MinLength == nil && b.MinLength != nil {
		c.MinLength = b.MinLength
		c.MaxLength = b.MaxLength
	}
}
