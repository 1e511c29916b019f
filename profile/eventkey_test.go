package profile

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEventKeyRoundTripSmallInt(t *testing.T) {
	ek := NewEventKeyIntKey(OpGet, 5)
	require.Equal(t, SpecInt8, ek.KeySpec)

	rendered := ek.String(nil)
	require.Equal(t, "Get key=[i8:5]", rendered)

	round := EventKeyFromUint64(ek.ToUint64())
	require.Equal(t, ek, round)
	require.Equal(t, "Get key=[i8:5]", round.String(nil))
}

func TestEventKeyRoundTripLargeInt(t *testing.T) {
	ek := NewEventKeyIntKey(OpGet, 1<<40)
	require.Equal(t, SpecInt64, ek.KeySpec)
	require.Equal(t, "Get key=[i64]", ek.String(nil))

	round := EventKeyFromUint64(ek.ToUint64())
	require.Equal(t, ek, round)
}

func TestEventKeyInt8BoundaryValues(t *testing.T) {
	for _, k := range []int64{-128, -1, 0, 1, 127} {
		ek := NewEventKeyIntKey(OpSet, k)
		require.Equal(t, SpecInt8, ek.KeySpec, "k=%d", k)

		round := EventKeyFromUint64(ek.ToUint64())
		i := int8(int16(round.Payload) + int8Min)
		require.Equal(t, k, int64(i), "k=%d", k)
	}
}

type fakeStatics struct {
	m map[uint64]string
}

func (f fakeStatics) Resolve(id uint64) (string, bool) {
	s, ok := f.m[id]
	return s, ok
}

func TestEventKeyStr32Rendering(t *testing.T) {
	ref := StringRef{Data: "hello", Static: true, PtrID: 42}
	ek := NewEventKeyStrKey(OpGet, ref)
	require.Equal(t, SpecStr32, ek.KeySpec)

	statics := fakeStatics{m: map[uint64]string{42: "hello"}}
	require.Equal(t, `Get key=[s32:"hello"]`, ek.String(statics))

	// Without a resolver we fall back to category-only rendering.
	require.Equal(t, "Get key=[s32]", ek.String(nil))
}

func TestEventKeyNonStaticStringIsCategoryOnly(t *testing.T) {
	ref := StringRef{Data: "dynamic", Static: false}
	ek := NewEventKeyStrKey(OpGet, ref)
	require.Equal(t, SpecStr, ek.KeySpec)
	require.Equal(t, "Get key=[str]", ek.String(nil))
}

func TestEventKeyValueRendering(t *testing.T) {
	ek := NewEventKeyValue(OpSet, TypedValue{Type: DTString, Str: StringRef{Data: "x", Static: false}})
	require.Equal(t, "Set val=[str]", ek.String(nil))

	ek2 := NewEventKeyValue(OpSet, TypedValue{Type: DTObject})
	require.Equal(t, "Set val=[Object]", ek2.String(nil))
}

func TestEntryTypesRoundTrip(t *testing.T) {
	et := EntryTypes{Keys: KeyTypesInt, Values: ValueTypesMonotype, ValueDatatype: DTInt64}
	round := EntryTypesFromInt16(et.AsInt16())
	require.Equal(t, et, round)
}
