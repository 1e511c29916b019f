package profile

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeSinkArray struct {
	vanilla    bool
	sampled    bool
	shim       bool
	kind       int
	entryTypes EntryTypes
	source     *LoggingProfile
}

func (a fakeSinkArray) IsVanilla() bool           { return a.vanilla }
func (a fakeSinkArray) IsSampled() bool           { return a.sampled }
func (a fakeSinkArray) IsLoggingShim() bool       { return a.shim }
func (a fakeSinkArray) Kind() int                 { return a.kind }
func (a fakeSinkArray) EntryTypes() EntryTypes    { return a.entryTypes }
func (a fakeSinkArray) SourceProfile() *LoggingProfile { return a.source }

func TestSinkProfileUpdateScenario(t *testing.T) {
	tables := NewTables()
	source := tables.GetLoggingProfile(testSrcKey{fn: "alloc", offset: 1})
	sink := tables.GetSinkProfile(7, testSrcKey{fn: "consume", offset: 2})

	for i := 0; i < 300; i++ {
		sink.Update(fakeSinkArray{vanilla: true, kind: 0})
	}
	for i := 0; i < 200; i++ {
		sink.Update(fakeSinkArray{
			shim: true,
			kind: 1,
			entryTypes: EntryTypes{
				Keys:          KeyTypesInt,
				Values:        ValueTypesMonotype,
				ValueDatatype: DTString,
			},
			source: source,
		})
	}
	for i := 0; i < 100; i++ {
		sink.Update(fakeSinkArray{kind: 2})
	}

	require.Equal(t, uint64(200), sink.SampledCount())
	require.Equal(t, uint64(400), sink.UnsampledCount())

	var keyTotal, valTotal uint64
	sink.RangeKeyCounts(func(slot int, count uint64) { keyTotal += count })
	sink.RangeValCounts(func(slot int, count uint64) { valTotal += count })
	require.Equal(t, uint64(200), keyTotal)
	require.Equal(t, uint64(200), valTotal)

	var arrTotal uint64
	sink.RangeArrCounts(func(slot int, count uint64) { arrTotal += count })
	require.Equal(t, uint64(600), arrTotal)

	var sourceTotal uint64
	sink.RangeSources(func(_ string, count uint64) { sourceTotal += count })
	require.Equal(t, uint64(200), sourceTotal)
}

func TestSinkProfileReduce(t *testing.T) {
	a := newSinkProfile(1, testSrcKey{fn: "a"}, &Gate{})
	b := newSinkProfile(1, testSrcKey{fn: "a"}, &Gate{})

	a.Update(fakeSinkArray{vanilla: true, kind: 0})
	b.Update(fakeSinkArray{vanilla: true, kind: 0})
	b.Update(fakeSinkArray{vanilla: true, kind: 0})

	a.Reduce(b)
	require.Equal(t, uint64(3), a.UnsampledCount())
}
