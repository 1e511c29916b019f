package profile

import (
	"fmt"
	"math"
	"strings"
)

// ArrayOp names one of the ~35 operations the layout vtable exposes.
// Profiling only needs the name and whether the operation reads or
// mutates; the vtable itself lives in the layout package.
type ArrayOp uint8

const (
	OpGet ArrayOp = iota
	OpLval
	OpElem
	OpSet
	OpSetMove
	OpAppend
	OpAppendMove
	OpRemove
	OpPop
	OpIterBegin
	OpIterLast
	OpIterEnd
	OpIterAdvance
	OpIterRewind
	OpIsVectorData
	OpScan
	OpHeapSize
	OpEscalateToVanilla
	OpConvertToUncounted
	OpReleaseUncounted
	OpRelease
	OpToDVArray
	OpToHackArr
	OpPreSort
	OpPostSort
	OpSetLegacyArray
)

var arrayOpNames = map[ArrayOp]string{
	OpGet:                "Get",
	OpLval:                "Lval",
	OpElem:                "Elem",
	OpSet:                 "Set",
	OpSetMove:             "SetMove",
	OpAppend:              "Append",
	OpAppendMove:          "AppendMove",
	OpRemove:              "Remove",
	OpPop:                 "Pop",
	OpIterBegin:           "IterBegin",
	OpIterLast:            "IterLast",
	OpIterEnd:             "IterEnd",
	OpIterAdvance:         "IterAdvance",
	OpIterRewind:          "IterRewind",
	OpIsVectorData:        "IsVectorData",
	OpScan:                "Scan",
	OpHeapSize:            "HeapSize",
	OpEscalateToVanilla:   "EscalateToVanilla",
	OpConvertToUncounted:  "ConvertToUncounted",
	OpReleaseUncounted:    "ReleaseUncounted",
	OpRelease:             "Release",
	OpToDVArray:           "ToDVArray",
	OpToHackArr:           "ToHackArr",
	OpPreSort:             "PreSort",
	OpPostSort:            "PostSort",
	OpSetLegacyArray:      "SetLegacyArray",
}

// readOps is the set of operations that only observe an array. Everything
// else is a write for the purposes of the report's "reads"/"writes" split.
var readOps = map[ArrayOp]bool{
	OpGet: true, OpElem: true, OpIsVectorData: true, OpScan: true,
	OpHeapSize: true, OpIterBegin: true, OpIterLast: true, OpIterEnd: true,
	OpIterAdvance: true, OpIterRewind: true, OpToDVArray: true,
	OpToHackArr: true,
}

func (op ArrayOp) String() string {
	if name, ok := arrayOpNames[op]; ok {
		return name
	}
	return fmt.Sprintf("ArrayOp(%d)", op)
}

// IsRead reports whether op only observes the array, as opposed to
// mutating it.
func (op ArrayOp) IsRead() bool { return readOps[op] }

// DataType is a persistence-stripped value kind, i.e. the datatype domain
// with the "this is an interned/static variant" bit already removed,
// which is all the EventKey encoding needs to distinguish.
type DataType uint8

const (
	DTInvalid DataType = iota
	DTNull
	DTBoolean
	DTInt64
	DTDouble
	DTString
	DTVec
	DTDict
	DTKeyset
	DTObject
	DTResource
)

var dataTypeNames = map[DataType]string{
	DTInvalid: "Invalid", DTNull: "Null", DTBoolean: "Boolean",
	DTInt64: "Int64", DTDouble: "Double", DTString: "String",
	DTVec: "Vec", DTDict: "Dict", DTKeyset: "Keyset",
	DTObject: "Object", DTResource: "Resource",
}

func (d DataType) String() string {
	if name, ok := dataTypeNames[d]; ok {
		return name
	}
	return fmt.Sprintf("DataType(%d)", d)
}

// StaticStrings resolves the interned pointer ids this package packs
// inline for Str32-spec keys back to their contents, standing in for
// dereferencing a real StringData* in the host runtime.
type StaticStrings interface {
	Resolve(id uint64) (string, bool)
}

// StringRef is a key or value string argument. Static, interned strings
// whose conceptual pointer fits in 32 bits get packed inline (spec Str32);
// everything else is recorded at category granularity only.
type StringRef struct {
	Data   string
	Static bool
	PtrID  uint64
}

// TypedValue is the minimal value shape EventKey needs: enough to classify
// it into a Spec and, for ints and strings, to pack it inline when it is
// small enough.
type TypedValue struct {
	Type DataType
	Int  int64
	Str  StringRef
}

// Spec is EventKey's per-slot classification, strictly finer than DataType
// because it additionally separates integers and static strings by how
// small their value is.
type Spec uint8

const (
	SpecNone Spec = iota
	SpecInt8
	SpecInt16
	SpecInt32
	SpecInt64
	SpecStr32
	SpecStr
)

var specNames = map[Spec]string{
	SpecNone: "none", SpecInt8: "i8", SpecInt16: "i16", SpecInt32: "i32",
	SpecInt64: "i64", SpecStr32: "s32", SpecStr: "str",
}

func (s Spec) String() string { return specNames[s] }

const int8Min = -128

func classifyInt(k int64) Spec {
	switch {
	case k >= int64(math.MinInt8) && k <= int64(math.MaxInt8):
		return SpecInt8
	case k >= int64(math.MinInt16) && k <= int64(math.MaxInt16):
		return SpecInt16
	case k >= int64(math.MinInt32) && k <= int64(math.MaxInt32):
		return SpecInt32
	default:
		return SpecInt64
	}
}

func classifyStr(s StringRef) Spec {
	if !s.Static {
		return SpecStr
	}
	if s.PtrID <= uint64(math.MaxUint32) {
		return SpecStr32
	}
	return SpecStr
}

func classifyValue(v TypedValue) Spec {
	switch v.Type {
	case DTInt64:
		return classifyInt(v.Int)
	case DTString:
		return classifyStr(v.Str)
	default:
		return SpecNone
	}
}

// EventKey is the packed 64-bit record of one logged event: operation
// tag, key-spec, value-spec, value-datatype, and an optional inline 32-bit
// payload valid only for Int8 keys (biased by int8Min) and Str32 keys
// (the interned pointer id).
type EventKey struct {
	Op      ArrayOp
	KeySpec Spec
	ValSpec Spec
	ValType DataType
	Payload uint32
}

func NewEventKey(op ArrayOp) EventKey {
	return EventKey{Op: op}
}

func NewEventKeyIntKey(op ArrayOp, k int64) EventKey {
	ek := EventKey{Op: op, KeySpec: classifyInt(k)}
	if ek.KeySpec == SpecInt8 {
		ek.Payload = uint32(k - int8Min)
	}
	return ek
}

func NewEventKeyStrKey(op ArrayOp, k StringRef) EventKey {
	ek := EventKey{Op: op, KeySpec: classifyStr(k)}
	if ek.KeySpec == SpecStr32 {
		ek.Payload = uint32(k.PtrID)
	}
	return ek
}

func NewEventKeyValue(op ArrayOp, v TypedValue) EventKey {
	return EventKey{Op: op, ValSpec: classifyValue(v), ValType: v.Type}
}

func NewEventKeyIntKeyValue(op ArrayOp, k int64, v TypedValue) EventKey {
	ek := NewEventKeyIntKey(op, k)
	ek.ValSpec = classifyValue(v)
	ek.ValType = v.Type
	return ek
}

func NewEventKeyStrKeyValue(op ArrayOp, k StringRef, v TypedValue) EventKey {
	ek := NewEventKeyStrKey(op, k)
	ek.ValSpec = classifyValue(v)
	ek.ValType = v.Type
	return ek
}

// ToUint64 packs the key into the wire form used as a map key: byte 0 the
// op, byte 1 the key spec, byte 2 the value spec, byte 3 the value type,
// and the high 32 bits the inline payload.
func (k EventKey) ToUint64() uint64 {
	return uint64(k.Op) |
		uint64(k.KeySpec)<<8 |
		uint64(k.ValSpec)<<16 |
		uint64(k.ValType)<<24 |
		uint64(k.Payload)<<32
}

// EventKeyFromUint64 is ToUint64's inverse.
func EventKeyFromUint64(v uint64) EventKey {
	return EventKey{
		Op:      ArrayOp(v & 0xff),
		KeySpec: Spec((v >> 8) & 0xff),
		ValSpec: Spec((v >> 16) & 0xff),
		ValType: DataType((v >> 24) & 0xff),
		Payload: uint32(v >> 32),
	}
}

// String renders the key the way the text report does. statics may be nil;
// a nil resolver (or a miss) falls back to rendering the Str32 slot at
// category granularity, same as a key with Spec==Str.
func (k EventKey) String(statics StaticStrings) string {
	var b strings.Builder
	b.WriteString(k.Op.String())

	switch k.KeySpec {
	case SpecNone:
	case SpecInt8:
		i := int8(int16(k.Payload) + int8Min)
		fmt.Fprintf(&b, " key=[i8:%d]", i)
	case SpecStr32:
		if statics != nil {
			if s, ok := statics.Resolve(uint64(k.Payload)); ok {
				fmt.Fprintf(&b, " key=[s32:%q]", s)
				break
			}
		}
		b.WriteString(" key=[s32]")
	default:
		fmt.Fprintf(&b, " key=[%s]", k.KeySpec)
	}

	if k.ValType != DTInvalid {
		if k.ValSpec == SpecNone {
			fmt.Fprintf(&b, " val=[%s]", k.ValType)
		} else {
			fmt.Fprintf(&b, " val=[%s]", k.ValSpec)
		}
	}
	return b.String()
}
