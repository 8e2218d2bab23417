package scan

import (
	"encoding/hex"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

// NullLiteral is how a null value, and the unset primary key, render in text.
const NullLiteral = "NULL"

// sqliteTimeLayout is SQLite's canonical text form for date/time values.
const sqliteTimeLayout = "2006-01-02 15:04:05.999999999-07:00"

// Kind tags the dynamic type of a column value.
type Kind int

const (
	KindNull Kind = iota
	KindText
	KindInteger
	KindReal
	KindBlob
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindText:
		return "text"
	case KindInteger:
		return "integer"
	case KindReal:
		return "real"
	case KindBlob:
		return "blob"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Value is one column value of one row. Only text values are searched.
type Value struct {
	kind Kind
	text string
	i    int64
	f    float64
	b    []byte
}

// Null, Text, Integer, Real and Blob build values of the matching kind.
func Null() Value { return Value{kind: KindNull} }

func Text(s string) Value { return Value{kind: KindText, text: s} }

func Integer(i int64) Value { return Value{kind: KindInteger, i: i} }

func Real(f float64) Value { return Value{kind: KindReal, f: f} }

func Blob(b []byte) Value { return Value{kind: KindBlob, b: append([]byte(nil), b...)} }

// Kind returns the dynamic type of v.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is a SQL NULL.
func (v Value) IsNull() bool { return v.kind == KindNull }

// Searchable returns the text to run the pattern against. ok is false for
// every non-text value; those are skipped, not reported.
func (v Value) Searchable() (s string, ok bool) {
	if v.kind != KindText {
		return "", false
	}
	return v.text, true
}

// String renders the value the way it appears in reports and lookup queries.
// Text is not quoted or escaped.
func (v Value) String() string {
	switch v.kind {
	case KindText:
		return v.text
	case KindInteger:
		return strconv.FormatInt(v.i, 10)
	case KindReal:
		return formatReal(v.f)
	case KindBlob:
		return "X'" + strings.ToUpper(hex.EncodeToString(v.b)) + "'"
	}
	return NullLiteral
}

// Equal reports whether v and o hold the same kind and value.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindText:
		return v.text == o.text
	case KindInteger:
		return v.i == o.i
	case KindReal:
		return v.f == o.f || (math.IsNaN(v.f) && math.IsNaN(o.f))
	case KindBlob:
		return string(v.b) == string(o.b)
	}
	return true
}

// formatReal uses the shortest representation and keeps a trailing ".0" on
// integral values so reals stay distinguishable from integers.
func formatReal(f float64) string {
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !math.IsInf(f, 0) && !math.IsNaN(f) && !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

// FromDriver converts a value scanned into *any by database/sql. dbType is the
// column's DatabaseTypeName and decides how raw bytes are read: drivers such as
// go-sql-driver/mysql hand back text and numbers as []byte.
func FromDriver(src any, dbType string) Value {
	switch x := src.(type) {
	case nil:
		return Null()
	case string:
		return Text(x)
	case int64:
		return Integer(x)
	case int32:
		return Integer(int64(x))
	case int:
		return Integer(int64(x))
	case int16:
		return Integer(int64(x))
	case int8:
		return Integer(int64(x))
	case uint64:
		if x > math.MaxInt64 {
			return Real(float64(x))
		}
		return Integer(int64(x))
	case uint32:
		return Integer(int64(x))
	case float64:
		return Real(x)
	case float32:
		return Real(float64(x))
	case bool:
		if x {
			return Integer(1)
		}
		return Integer(0)
	case time.Time:
		return Text(x.Format(sqliteTimeLayout))
	case []byte:
		return fromBytes(x, dbType)
	case fmt.Stringer:
		return Text(x.String())
	}
	return Text(fmt.Sprint(src))
}

// FromStorage converts a value from a driver that returns each value in its
// storage class, as modernc.org/sqlite does: []byte is always a blob.
func FromStorage(src any) Value {
	if b, ok := src.([]byte); ok {
		return Blob(b)
	}
	return FromDriver(src, "")
}

func fromBytes(b []byte, dbType string) Value {
	switch classifyType(dbType) {
	case KindBlob:
		return Blob(b)
	case KindInteger:
		if i, err := strconv.ParseInt(string(b), 10, 64); err == nil {
			return Integer(i)
		}
	case KindReal:
		if f, err := strconv.ParseFloat(string(b), 64); err == nil {
			return Real(f)
		}
	}
	if !utf8.Valid(b) {
		return Blob(b)
	}
	return Text(string(b))
}

// classifyType guesses a Kind from a driver's database type name. KindText
// means "no opinion".
func classifyType(dbType string) Kind {
	t := strings.ToUpper(strings.TrimSpace(dbType))
	switch {
	case t == "":
		return KindText
	case strings.Contains(t, "BLOB"), strings.Contains(t, "BINARY"), t == "BYTEA",
		t == "IMAGE", t == "RAW", t == "LONG RAW", t == "BIT":
		return KindBlob
	case strings.Contains(t, "INT"):
		return KindInteger
	case strings.Contains(t, "DECIMAL"), strings.Contains(t, "NUMERIC"), t == "NUMBER",
		strings.Contains(t, "FLOAT"), strings.Contains(t, "DOUBLE"), t == "REAL":
		return KindReal
	}
	return KindText
}
