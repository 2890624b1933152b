package parser

import "strings"

// Builtin describes a predeclared function. Builtins live outside every
// scope and are only found when a name is not declared anywhere.
type Builtin struct {
	Name    string
	Params  []DataType
	Returns DataType
}

// FindBuiltin looks up a builtin function; builtin names are matched
// case-insensitively like keywords.
func FindBuiltin(name string) *Builtin {
	upper := strings.ToUpper(name)
	for _, b := range builtins {
		if b.Name == upper {
			return b
		}
	}
	return nil
}

// Builtins returns all builtin functions.
func Builtins() []*Builtin {
	return builtins
}

var builtins = []*Builtin{
	{Name: "LENGTH", Params: []DataType{String}, Returns: Integer},
	{Name: "LEFT", Params: []DataType{String, Integer}, Returns: String},
	{Name: "RIGHT", Params: []DataType{String, Integer}, Returns: String},
	{Name: "MID", Params: []DataType{String, Integer, Integer}, Returns: String},
	{Name: "UCASE", Params: []DataType{Char}, Returns: Char},
	{Name: "LCASE", Params: []DataType{Char}, Returns: Char},
	{Name: "TO_UPPER", Params: []DataType{String}, Returns: String},
	{Name: "TO_LOWER", Params: []DataType{String}, Returns: String},
	{Name: "INT", Params: []DataType{Real}, Returns: Integer},
	{Name: "ASC", Params: []DataType{Char}, Returns: Integer},
	{Name: "CHR", Params: []DataType{Integer}, Returns: Char},
	{Name: "INTTOSTRING", Params: []DataType{Integer}, Returns: String},
	{Name: "REALTOSTRING", Params: []DataType{Real}, Returns: String},
	{Name: "STRINGTOINT", Params: []DataType{String}, Returns: Integer},
	{Name: "STRINGTOREAL", Params: []DataType{String}, Returns: Real},
	{Name: "RND", Returns: Real},
	{Name: "RANDOMBETWEEN", Params: []DataType{Integer, Integer}, Returns: Integer},
	{Name: "EOF", Params: []DataType{String}, Returns: Boolean},
}
