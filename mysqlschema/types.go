package mysqlschema

import "math"

// MySQL column type keywords as they appear in SHOW CREATE TABLE output.
const (
	TypeTinyInt   = "tinyint"
	TypeSmallInt  = "smallint"
	TypeMediumInt = "mediumint"
	TypeInt       = "int"
	TypeBigInt    = "bigint"
	TypeDecimal   = "decimal"

	TypeBit       = "bit"
	TypeBinary    = "binary"
	TypeVarBinary = "varbinary"

	TypeChar       = "char"
	TypeVarChar    = "varchar"
	TypeTinyText   = "tinytext"
	TypeText       = "text"
	TypeMediumText = "mediumtext"
	TypeLongText   = "longtext"
	TypeJSON       = "json"

	TypeTinyBlob   = "tinyblob"
	TypeBlob       = "blob"
	TypeMediumBlob = "mediumblob"
	TypeLongBlob   = "longblob"

	TypeFloat  = "float"
	TypeDouble = "double"

	TypeEnum = "enum"
	TypeSet  = "set"

	TypeTimestamp = "timestamp"
	TypeDatetime  = "datetime"
	TypeDate      = "date"
	TypeTime      = "time"
	TypeYear      = "year"
)

// ValueType is the semantic category a column's values belong to,
// independent of the concrete MySQL type keyword.
type ValueType string

const (
	ValueInt       ValueType = "int"
	ValueString    ValueType = "string"
	ValueFloat     ValueType = "float"
	ValueBool      ValueType = "bool"
	ValueBinary    ValueType = "binary"
	ValueDate      ValueType = "date"
	ValueDatetime  ValueType = "datetime"
	ValueTimestamp ValueType = "timestamp"
	ValueTime      ValueType = "time"
	ValueYear      ValueType = "year"
)

var valueTypes = map[string]ValueType{
	TypeTinyInt:   ValueInt,
	TypeSmallInt:  ValueInt,
	TypeMediumInt: ValueInt,
	TypeInt:       ValueInt,
	TypeBigInt:    ValueInt,
	TypeDecimal:   ValueInt,
	TypeBit:       ValueBool,

	TypeBinary:     ValueBinary,
	TypeVarBinary:  ValueBinary,
	TypeTinyBlob:   ValueBinary,
	TypeBlob:       ValueBinary,
	TypeMediumBlob: ValueBinary,
	TypeLongBlob:   ValueBinary,

	TypeChar:       ValueString,
	TypeVarChar:    ValueString,
	TypeTinyText:   ValueString,
	TypeText:       ValueString,
	TypeMediumText: ValueString,
	TypeLongText:   ValueString,
	TypeJSON:       ValueString,
	TypeEnum:       ValueString,
	TypeSet:        ValueString,

	TypeFloat:  ValueFloat,
	TypeDouble: ValueFloat,

	TypeTimestamp: ValueTimestamp,
	TypeDatetime:  ValueDatetime,
	TypeDate:      ValueDate,
	TypeTime:      ValueTime,
	TypeYear:      ValueYear,
}

// LookupValueType maps a bare MySQL type keyword to its semantic value type.
// Unknown keywords return an *UnsupportedTypeError.
func LookupValueType(dbType string) (ValueType, error) {
	vt, ok := valueTypes[dbType]
	if !ok {
		return "", &UnsupportedTypeError{Type: dbType}
	}
	return vt, nil
}

// IsNumericType reports whether the type carries numeric bounds rather than
// length bounds. The unsigned modifier is only honoured for these types.
func IsNumericType(dbType string) bool {
	switch dbType {
	case TypeTinyInt, TypeSmallInt, TypeMediumInt, TypeInt, TypeBigInt,
		TypeFloat, TypeDouble, TypeDecimal, TypeYear, TypeBit:
		return true
	}
	return false
}

// isTemporalType reports whether a parenthesized modifier on the type is a
// fractional seconds precision rather than a length.
func isTemporalType(dbType string) bool {
	switch dbType {
	case TypeTimestamp, TypeDatetime, TypeDate, TypeTime:
		return true
	}
	return false
}

// Bounds holds the limits a type imposes on its values. Numeric limits are
// int64, uint64 or string (temporal types); length limits are byte counts.
// Unset limits are nil.
type Bounds struct {
	MinValue  any
	MaxValue  any
	MinLength *int64
	MaxLength *int64
}

func valueBounds(lo, hi any) Bounds { return Bounds{MinValue: lo, MaxValue: hi} }

func lengthBounds(hi int64) Bounds {
	var lo int64
	return Bounds{MinLength: &lo, MaxLength: &hi}
}

// TypeBounds returns the fixed bounds implied by the type keyword alone.
// Types whose limits come from an explicit (N) modifier, or that are
// unbounded, return empty Bounds.
func TypeBounds(dbType string, unsigned bool) Bounds {
	switch dbType {
	case TypeTinyInt:
		if unsigned {
			return valueBounds(int64(0), int64(math.MaxUint8))
		}
		return valueBounds(int64(math.MinInt8), int64(math.MaxInt8))
	case TypeSmallInt:
		if unsigned {
			return valueBounds(int64(0), int64(math.MaxUint16))
		}
		return valueBounds(int64(math.MinInt16), int64(math.MaxInt16))
	case TypeMediumInt:
		if unsigned {
			return valueBounds(int64(0), int64(1<<24-1))
		}
		return valueBounds(int64(-1<<23), int64(1<<23-1))
	case TypeInt:
		if unsigned {
			return valueBounds(int64(0), int64(math.MaxUint32))
		}
		return valueBounds(int64(math.MinInt32), int64(math.MaxInt32))
	case TypeBigInt:
		if unsigned {
			return valueBounds(int64(0), uint64(math.MaxUint64))
		}
		return valueBounds(int64(math.MinInt64), int64(math.MaxInt64))

	case TypeDecimal, TypeFloat, TypeDouble:
		if unsigned {
			return Bounds{MinValue: int64(0)}
		}
		return Bounds{}

	case TypeTinyText, TypeTinyBlob:
		return lengthBounds(math.MaxUint8)
	case TypeText, TypeBlob:
		return lengthBounds(math.MaxUint16)
	case TypeMediumText, TypeMediumBlob:
		return lengthBounds(1<<24 - 1)
	case TypeLongText, TypeLongBlob:
		return lengthBounds(math.MaxUint32)

	case TypeTimestamp:
		return valueBounds(int64(0), int64(math.MaxInt32))
	case TypeDate:
		return valueBounds("1000-01-01", "9999-12-31")
	case TypeDatetime:
		return valueBounds("1000-01-01 00:00:00", "9999-12-31 23:59:59")
	case TypeTime:
		return valueBounds("00:00:00", "23:59:59")
	case TypeYear:
		return valueBounds(int64(1901), int64(2155))
	}
	return Bounds{}
}
