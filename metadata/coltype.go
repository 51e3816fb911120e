package metadata

import (
	"strings"

	"github.com/shopspring/decimal"
)

// MapColumnType maps an Oracle data type name to its PostgreSQL
// equivalent per the LOB policy in spec §3/testable property 7:
// BLOB/CLOB/NCLOB -> oid, BFILE -> text, LONG -> text,
// LONG RAW -> bytea, everything else a direct scalar mapping.
//
// length/precision/scale are passed through verbatim for types that
// carry them in both dialects (VARCHAR2(n) -> varchar(n), NUMBER(p,s)
// -> numeric(p,s)); they are ignored for the fixed-width/LOB cases.
func MapColumnType(oracleType string, length, precision, scale int) string {
	name := strings.ToUpper(strings.TrimSpace(oracleType))
	switch name {
	case "BLOB", "CLOB", "NCLOB":
		return "oid"
	case "BFILE":
		return "text"
	case "LONG":
		return "text"
	case "LONG RAW":
		return "bytea"
	case "VARCHAR2", "NVARCHAR2":
		if length > 0 {
			return "varchar(" + itoa(length) + ")"
		}
		return "varchar"
	case "CHAR", "NCHAR":
		if length > 0 {
			return "char(" + itoa(length) + ")"
		}
		return "char(1)"
	case "NUMBER":
		switch {
		case precision > 0 && scale > 0:
			return "numeric(" + itoa(precision) + "," + itoa(scale) + ")"
		case precision > 0:
			return "numeric(" + itoa(precision) + ")"
		default:
			return "numeric"
		}
	case "INTEGER", "INT", "SMALLINT":
		return "integer"
	case "PLS_INTEGER", "BINARY_INTEGER":
		return "integer"
	case "FLOAT", "BINARY_FLOAT":
		return "real"
	case "DOUBLE PRECISION", "BINARY_DOUBLE":
		return "double precision"
	case "DATE":
		return "timestamp"
	case "TIMESTAMP":
		return "timestamp"
	case "TIMESTAMP WITH TIME ZONE":
		return "timestamptz"
	case "RAW":
		return "bytea"
	case "BOOLEAN":
		return "boolean"
	case "XMLTYPE":
		return "xml"
	default:
		return strings.ToLower(name)
	}
}

// IsLOBOIDType reports whether the mapped PostgreSQL type is the
// large-object "oid" column type (testable property 7's closure:
// "no other mapping produces oid").
func IsLOBOIDType(oracleType string) bool {
	switch strings.ToUpper(strings.TrimSpace(oracleType)) {
	case "BLOB", "CLOB", "NCLOB":
		return true
	default:
		return false
	}
}

// FormatNumericDefault renders a NUMBER column's DATA_DEFAULT text as
// the emitted DDL default PostgreSQL accepts, rounding it to the
// column's declared scale (Oracle allows a DEFAULT literal with more
// fractional digits than the column's own scale retains). Non-numeric
// defaults (oracleType not NUMBER, or a non-literal expression such as
// SYSDATE) pass through unchanged, since decimal can't parse them.
func FormatNumericDefault(oracleType, dataDefault string, scale int) string {
	dataDefault = strings.TrimSpace(dataDefault)
	if dataDefault == "" || strings.ToUpper(strings.TrimSpace(oracleType)) != "NUMBER" {
		return dataDefault
	}
	d, err := decimal.NewFromString(dataDefault)
	if err != nil {
		return dataDefault
	}
	if scale > 0 {
		return d.StringFixed(int32(scale))
	}
	return d.String()
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}
