package process_codec

import (
	"strconv"
)

// Value is a decoded field. Type reports which accessor carries the value;
// the other accessors return zero values.
type Value struct {
	typ  SemanticType
	num  uint32
	text string
}

// Type returns the SemanticType the value was decoded as
func (v Value) Type() SemanticType {
	return v.typ
}

func (v Value) Uint32() uint32 {
	if v.typ != Int32 {
		return 0
	}
	return v.num
}

func (v Value) Uint16() uint16 {
	if v.typ != Word {
		return 0
	}
	return uint16(v.num)
}

func (v Value) Int8() int8 {
	if v.typ != Byte {
		return 0
	}
	return int8(uint8(v.num))
}

func (v Value) Bool() bool {
	return v.typ == Bool && v.num != 0
}

func (v Value) Text() string {
	if v.typ != FixedText {
		return ""
	}
	return v.text
}

// Int returns any integer or boolean value widened to int64 (bools are 0 or 1).
// FixedText values return 0.
func (v Value) Int() int64 {
	switch v.typ {
	case Int32, Word, Bool:
		return int64(v.num)
	case Byte:
		return int64(v.Int8())
	}
	return 0
}

// Interface returns the value as uint32, uint16, int8, bool or string
func (v Value) Interface() any {
	switch v.typ {
	case Int32:
		return v.Uint32()
	case Word:
		return v.Uint16()
	case Byte:
		return v.Int8()
	case Bool:
		return v.Bool()
	case FixedText:
		return v.Text()
	}
	return nil
}

func (v Value) String() string {
	switch v.typ {
	case Bool:
		return strconv.FormatBool(v.Bool())
	case FixedText:
		return strconv.Quote(v.text)
	}
	return strconv.FormatInt(v.Int(), 10)
}

// Uint32Value builds an Int32 value
func Uint32Value(n uint32) Value { return Value{typ: Int32, num: n} }

// Uint16Value builds a Word value
func Uint16Value(n uint16) Value { return Value{typ: Word, num: uint32(n)} }

// Int8Value builds a Byte value
func Int8Value(n int8) Value { return Value{typ: Byte, num: uint32(uint8(n))} }

// BoolValue builds a Bool value
func BoolValue(b bool) Value {
	if b {
		return Value{typ: Bool, num: 1}
	}
	return Value{typ: Bool}
}

// TextValue builds a FixedText value
func TextValue(s string) Value { return Value{typ: FixedText, text: s} }
