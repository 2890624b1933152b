package interp

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/akrennmair/pseudo/parser"
)

// Value is a runtime value: int64 (INTEGER), float64 (REAL), string
// (STRING), rune (CHAR), bool (BOOLEAN), time.Time (DATE), *Array or
// *Record.
type Value interface{}

// DateLayout is the display and input format of DATE values.
const DateLayout = "02/01/2006"

// Array is an array value with a fixed shape. Elements are stored in
// row-major order.
type Array struct {
	Type  *parser.ArrayType
	Elems []Value
}

// Offset converts per-dimension indexes into an element offset, or returns
// false if an index is outside its dimension's bounds.
func (a *Array) Offset(indexes []int64) (int, bool) {
	offset := 0
	for dim, idx := range indexes {
		b := a.Type.Dims[dim]
		if idx < b.Lower || idx > b.Upper {
			return 0, false
		}
		offset = offset*b.Len() + int(idx-b.Lower)
	}
	return offset, true
}

// Record is a value of a TYPE ... ENDTYPE record type.
type Record struct {
	Type   *parser.RecordType
	Fields []Value
}

// ZeroValue returns the initial value of a variable of type dt.
func ZeroValue(dt parser.DataType) Value {
	switch t := parser.Underlying(dt).(type) {
	case *parser.IntegerType:
		return int64(0)
	case *parser.RealType:
		return float64(0)
	case *parser.StringType:
		return ""
	case *parser.CharType:
		return rune(' ')
	case *parser.BooleanType:
		return false
	case *parser.DateType:
		return time.Time{}
	case *parser.ArrayType:
		arr := &Array{Type: t, Elems: make([]Value, t.Size())}
		for idx := range arr.Elems {
			arr.Elems[idx] = ZeroValue(t.ElementType)
		}
		return arr
	case *parser.RecordType:
		rec := &Record{Type: t, Fields: make([]Value, len(t.Fields))}
		for idx, f := range t.Fields {
			rec.Fields[idx] = ZeroValue(f.Type)
		}
		return rec
	}
	panic(fmt.Sprintf("interp: no zero value for type %v", dt))
}

// clone deep-copies arrays and records; scalars are returned as is.
func clone(v Value) Value {
	switch x := v.(type) {
	case *Array:
		c := &Array{Type: x.Type, Elems: make([]Value, len(x.Elems))}
		for idx, e := range x.Elems {
			c.Elems[idx] = clone(e)
		}
		return c
	case *Record:
		c := &Record{Type: x.Type, Fields: make([]Value, len(x.Fields))}
		for idx, f := range x.Fields {
			c.Fields[idx] = clone(f)
		}
		return c
	}
	return v
}

// store writes v through ref. Arrays and records are copied into the
// existing object so that references to their elements stay valid.
func store(ref Ref, v Value) {
	switch old := ref.Load().(type) {
	case *Array:
		copyArray(old, v.(*Array))
		return
	case *Record:
		copyRecord(old, v.(*Record))
		return
	}
	ref.Store(v)
}

func copyArray(dst, src *Array) {
	if dst == src {
		return
	}
	for idx := range dst.Elems {
		dst.Elems[idx] = copyElem(dst.Elems[idx], src.Elems[idx])
	}
}

func copyRecord(dst, src *Record) {
	if dst == src {
		return
	}
	for idx := range dst.Fields {
		dst.Fields[idx] = copyElem(dst.Fields[idx], src.Fields[idx])
	}
}

func copyElem(dst, src Value) Value {
	switch d := dst.(type) {
	case *Array:
		copyArray(d, src.(*Array))
		return d
	case *Record:
		copyRecord(d, src.(*Record))
		return d
	}
	return src
}

// convert widens an INTEGER value stored into a REAL location.
func convert(v Value, to parser.DataType) Value {
	if i, ok := v.(int64); ok && parser.IsRealType(to) {
		return float64(i)
	}
	return v
}

// Format renders a scalar value for OUTPUT and WRITEFILE.
func Format(v Value) string {
	switch x := v.(type) {
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case string:
		return x
	case rune:
		return string(x)
	case bool:
		if x {
			return "TRUE"
		}
		return "FALSE"
	case time.Time:
		return x.Format(DateLayout)
	}
	return fmt.Sprintf("%v", v)
}

// Parse converts input text into a value of the scalar type dt.
func Parse(text string, dt parser.DataType) (Value, error) {
	switch parser.Underlying(dt).(type) {
	case *parser.IntegerType:
		return strconv.ParseInt(strings.TrimSpace(text), 10, 64)
	case *parser.RealType:
		return strconv.ParseFloat(strings.TrimSpace(text), 64)
	case *parser.StringType:
		return text, nil
	case *parser.CharType:
		if utf8.RuneCountInString(text) != 1 {
			return nil, fmt.Errorf("expected a single character, got %q", text)
		}
		r, _ := utf8.DecodeRuneInString(text)
		return r, nil
	case *parser.BooleanType:
		switch strings.ToUpper(strings.TrimSpace(text)) {
		case "TRUE":
			return true, nil
		case "FALSE":
			return false, nil
		}
		return nil, fmt.Errorf("expected TRUE or FALSE, got %q", text)
	case *parser.DateType:
		return time.Parse(DateLayout, strings.TrimSpace(text))
	}
	return nil, fmt.Errorf("cannot read a value of type %s", dt.Type())
}

