package profile

import "fmt"

// KeyTypes summarizes the key shape of a monotype-candidate array: either
// it has no entries yet, every key seen so far is one kind, or it has seen
// a mix and can no longer specialize on key shape.
type KeyTypes uint8

const (
	KeyTypesEmpty KeyTypes = iota
	KeyTypesInt
	KeyTypesStr
	KeyTypesMixed
)

func (k KeyTypes) String() string {
	switch k {
	case KeyTypesEmpty:
		return "Empty"
	case KeyTypesInt:
		return "Int"
	case KeyTypesStr:
		return "Str"
	default:
		return "Mixed"
	}
}

// ValueTypes summarizes the value shape: empty, every value so far shares
// one DataType ("monotype", the profitable case for a specialized
// layout), or values vary.
type ValueTypes uint8

const (
	ValueTypesEmpty ValueTypes = iota
	ValueTypesMonotype
	ValueTypesAny
)

// EntryTypes is the 16-bit-packable summary of an array's entries that the
// monotype-escalation trace keys on. Before/after pairs of this type,
// packed via AsInt16, form the key of LoggingProfile's monotypeEvents map.
type EntryTypes struct {
	Keys          KeyTypes
	Values        ValueTypes
	ValueDatatype DataType
}

// AsInt16 packs EntryTypes into the 16-bit form used as a map key: bits
// 0-2 the key summary, bits 3-4 the value summary, bits 5-12 the value
// datatype (meaningful only when Values == ValueTypesMonotype).
func (e EntryTypes) AsInt16() uint16 {
	return uint16(e.Keys) | uint16(e.Values)<<3 | uint16(e.ValueDatatype)<<5
}

// EntryTypesFromInt16 is AsInt16's inverse.
func EntryTypesFromInt16(v uint16) EntryTypes {
	return EntryTypes{
		Keys:          KeyTypes(v & 0x7),
		Values:        ValueTypes((v >> 3) & 0x3),
		ValueDatatype: DataType((v >> 5) & 0xff),
	}
}

func (e EntryTypes) String() string {
	switch e.Values {
	case ValueTypesEmpty:
		return fmt.Sprintf("keys=%s vals=Empty", e.Keys)
	case ValueTypesMonotype:
		return fmt.Sprintf("keys=%s vals=Monotype(%s)", e.Keys, e.ValueDatatype)
	default:
		return fmt.Sprintf("keys=%s vals=Any", e.Keys)
	}
}
