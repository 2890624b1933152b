package interp

import (
	"math"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

type builtinFunc func(in *Interpreter, args []Value) (Value, error)

var builtinFuncs map[string]builtinFunc

func init() {
	builtinFuncs = map[string]builtinFunc{
		"LENGTH":        builtinLength,
		"LEFT":          builtinLeft,
		"RIGHT":         builtinRight,
		"MID":           builtinMid,
		"UCASE":         builtinUCase,
		"LCASE":         builtinLCase,
		"TO_UPPER":      builtinToUpper,
		"TO_LOWER":      builtinToLower,
		"INT":           builtinInt,
		"ASC":           builtinAsc,
		"CHR":           builtinChr,
		"INTTOSTRING":   builtinIntToString,
		"REALTOSTRING":  builtinRealToString,
		"STRINGTOINT":   builtinStringToInt,
		"STRINGTOREAL":  builtinStringToReal,
		"RND":           builtinRnd,
		"RANDOMBETWEEN": builtinRandomBetween,
		"EOF":           builtinEOF,
	}
}

func builtinLength(_ *Interpreter, args []Value) (Value, error) {
	return int64(utf8.RuneCountInString(args[0].(string))), nil
}

// substring returns n characters of s starting at the 1-based position start.
func substring(name string, s string, start, n int64) (Value, error) {
	runes := []rune(s)
	length := int64(len(runes))
	if n < 0 || start < 1 || start-1 > length || n > length-(start-1) {
		return nil, runtimeErrorf(BuiltinError, "%s: cannot take %d characters from position %d of a string of length %d", name, n, start, len(runes))
	}
	return string(runes[start-1 : start-1+n]), nil
}

func builtinLeft(_ *Interpreter, args []Value) (Value, error) {
	return substring("LEFT", args[0].(string), 1, args[1].(int64))
}

func builtinRight(_ *Interpreter, args []Value) (Value, error) {
	s := args[0].(string)
	n := args[1].(int64)
	length := int64(utf8.RuneCountInString(s))
	if n > length {
		return nil, runtimeErrorf(BuiltinError, "RIGHT: cannot take %d characters from a string of length %d", n, length)
	}
	return substring("RIGHT", s, length-n+1, n)
}

func builtinMid(_ *Interpreter, args []Value) (Value, error) {
	return substring("MID", args[0].(string), args[1].(int64), args[2].(int64))
}

func builtinUCase(_ *Interpreter, args []Value) (Value, error) {
	return unicode.ToUpper(args[0].(rune)), nil
}

func builtinLCase(_ *Interpreter, args []Value) (Value, error) {
	return unicode.ToLower(args[0].(rune)), nil
}

func builtinToUpper(_ *Interpreter, args []Value) (Value, error) {
	return strings.ToUpper(args[0].(string)), nil
}

func builtinToLower(_ *Interpreter, args []Value) (Value, error) {
	return strings.ToLower(args[0].(string)), nil
}

func builtinInt(_ *Interpreter, args []Value) (Value, error) {
	return int64(args[0].(float64)), nil
}

func builtinAsc(_ *Interpreter, args []Value) (Value, error) {
	return int64(args[0].(rune)), nil
}

func builtinChr(_ *Interpreter, args []Value) (Value, error) {
	code := args[0].(int64)
	if code < 0 || code > unicode.MaxRune || !utf8.ValidRune(rune(code)) {
		return nil, runtimeErrorf(BuiltinError, "CHR: %d is not a valid character code", code)
	}
	return rune(code), nil
}

func builtinIntToString(_ *Interpreter, args []Value) (Value, error) {
	return Format(args[0]), nil
}

func builtinRealToString(_ *Interpreter, args []Value) (Value, error) {
	return Format(args[0]), nil
}

func builtinStringToInt(_ *Interpreter, args []Value) (Value, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(args[0].(string)), 10, 64)
	if err != nil {
		return nil, runtimeErrorf(BuiltinError, "STRINGTOINT: %q is not an integer", args[0])
	}
	return v, nil
}

func builtinStringToReal(_ *Interpreter, args []Value) (Value, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(args[0].(string)), 64)
	if err != nil {
		return nil, runtimeErrorf(BuiltinError, "STRINGTOREAL: %q is not a number", args[0])
	}
	return v, nil
}

func builtinRnd(in *Interpreter, _ []Value) (Value, error) {
	return in.rand.Float64(), nil
}

func builtinRandomBetween(in *Interpreter, args []Value) (Value, error) {
	low, high := args[0].(int64), args[1].(int64)
	if low > high {
		return nil, runtimeErrorf(BuiltinError, "RANDOMBETWEEN: lower bound %d is greater than upper bound %d", low, high)
	}
	span := uint64(high-low) + 1
	if span == 0 || span > math.MaxInt64 {
		// the range is wider than Int63n can serve
		for {
			v := in.rand.Uint64()
			if span == 0 || v < span {
				return low + int64(v), nil
			}
		}
	}
	return low + in.rand.Int63n(int64(span)), nil
}

func builtinEOF(in *Interpreter, args []Value) (Value, error) {
	return in.files.eof(args[0].(string))
}
