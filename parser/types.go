package parser

import (
	"fmt"
	"strings"
)

// DataType describes a declared type.
type DataType interface {
	Type() string
	Equals(dt DataType) bool
}

type IntegerType struct{}

func (t *IntegerType) Type() string { return "INTEGER" }

func (t *IntegerType) Equals(dt DataType) bool {
	_, ok := Underlying(dt).(*IntegerType)
	return ok
}

type RealType struct{}

func (t *RealType) Type() string { return "REAL" }

func (t *RealType) Equals(dt DataType) bool {
	_, ok := Underlying(dt).(*RealType)
	return ok
}

type StringType struct{}

func (t *StringType) Type() string { return "STRING" }

func (t *StringType) Equals(dt DataType) bool {
	_, ok := Underlying(dt).(*StringType)
	return ok
}

type CharType struct{}

func (t *CharType) Type() string { return "CHAR" }

func (t *CharType) Equals(dt DataType) bool {
	_, ok := Underlying(dt).(*CharType)
	return ok
}

type BooleanType struct{}

func (t *BooleanType) Type() string { return "BOOLEAN" }

func (t *BooleanType) Equals(dt DataType) bool {
	_, ok := Underlying(dt).(*BooleanType)
	return ok
}

type DateType struct{}

func (t *DateType) Type() string { return "DATE" }

func (t *DateType) Equals(dt DataType) bool {
	_, ok := Underlying(dt).(*DateType)
	return ok
}

// MaxArrayElements limits the number of elements of an array type, counting
// every dimension and directly nested array element types.
const MaxArrayElements = 1 << 24

// Bound is the inclusive index range of one array dimension.
type Bound struct {
	Lower int64
	Upper int64
}

// Len returns the number of elements in the dimension.
func (b Bound) Len() int {
	return int(b.Upper - b.Lower + 1)
}

// ArrayType describes an array type. Dims holds the bounds of each dimension,
// ElementType the type of an individual element. The shape is fixed at
// declaration.
type ArrayType struct {
	Dims        []Bound
	ElementType DataType
}

func (t *ArrayType) Type() string {
	var buf strings.Builder
	buf.WriteString("ARRAY[")
	for idx, d := range t.Dims {
		if idx > 0 {
			buf.WriteString(", ")
		}
		fmt.Fprintf(&buf, "%d:%d", d.Lower, d.Upper)
	}
	buf.WriteString("] OF ")
	buf.WriteString(t.ElementType.Type())
	return buf.String()
}

func (t *ArrayType) Equals(dt DataType) bool {
	o, ok := Underlying(dt).(*ArrayType)
	if !ok {
		return false
	}
	if len(t.Dims) != len(o.Dims) {
		return false
	}
	for idx := range t.Dims {
		if t.Dims[idx] != o.Dims[idx] {
			return false
		}
	}
	return t.ElementType.Equals(o.ElementType)
}

// Size returns the total number of elements.
func (t *ArrayType) Size() int {
	n := 1
	for _, d := range t.Dims {
		n *= d.Len()
	}
	return n
}

type RecordField struct {
	Name string
	Type DataType
	At   Position
}

// RecordType is a composite type declared with TYPE ... ENDTYPE. Record types
// are nominal: two record types are equal only if they stem from the same
// declaration.
type RecordType struct {
	Name   string
	Fields []*RecordField
}

func (t *RecordType) Type() string {
	return t.Name
}

func (t *RecordType) Equals(dt DataType) bool {
	o, ok := Underlying(dt).(*RecordType)
	return ok && o == t
}

// FindField returns the field called name and its index, or nil and -1.
func (t *RecordType) FindField(name string) (*RecordField, int) {
	for idx, f := range t.Fields {
		if f.Name == name {
			return f, idx
		}
	}
	return nil, -1
}

// NamedType is a reference to a user-defined type by name. The parser cannot
// know what a name denotes, so the resolver fills in Resolved once it has
// found the declaration.
type NamedType struct {
	Name     string
	At       Position
	Resolved DataType
}

func (t *NamedType) Type() string {
	return t.Name
}

func (t *NamedType) Equals(dt DataType) bool {
	if t.Resolved == nil {
		o, ok := dt.(*NamedType)
		return ok && o.Name == t.Name
	}
	return t.Resolved.Equals(dt)
}

// Underlying strips NamedType indirections.
func Underlying(dt DataType) DataType {
	for {
		nt, ok := dt.(*NamedType)
		if !ok || nt.Resolved == nil {
			return dt
		}
		dt = nt.Resolved
	}
}

var (
	Integer = &IntegerType{}
	Real    = &RealType{}
	String  = &StringType{}
	Char    = &CharType{}
	Boolean = &BooleanType{}
	Date    = &DateType{}
)

func IsIntegerType(dt DataType) bool {
	_, ok := Underlying(dt).(*IntegerType)
	return ok
}

func IsRealType(dt DataType) bool {
	_, ok := Underlying(dt).(*RealType)
	return ok
}

func IsNumericType(dt DataType) bool {
	return IsIntegerType(dt) || IsRealType(dt)
}

// IsScalarType reports whether dt is one of the six built-in scalar types.
func IsScalarType(dt DataType) bool {
	switch Underlying(dt).(type) {
	case *IntegerType, *RealType, *StringType, *CharType, *BooleanType, *DateType:
		return true
	}
	return false
}

// AssignmentCompatible reports whether a value of type src may be stored in
// a target declared as dst: identical types, or INTEGER widened to REAL.
func AssignmentCompatible(dst, src DataType) bool {
	if dst == nil || src == nil {
		return false
	}
	if dst.Equals(src) {
		return true
	}
	return IsRealType(dst) && IsIntegerType(src)
}
