package profile

import "sync/atomic"

// Histogram widths. ArrTypes covers the generic array-kind categories a
// sink can see (vanilla vector/dict/keyset plus bespoke groupings);
// KeyTypes mirrors the KeyTypes enum; ValTypes covers the two sentinel
// slots (no entries / mixed types) plus one slot per DataType.
const (
	NumArrTypes = 8
	NumKeyTypes = int(KeyTypesMixed) + 1
	NoValType   = 0
	AnyValType  = 1
	NumValTypes = 2 + int(DTResource) + 1
)

// SinkArray is the minimal view this package needs of an array consumed
// at a sink, to classify it for SinkProfile.Update without depending on
// the layout package's registry (a sink array already knows its own
// classification; profile just tallies it).
type SinkArray interface {
	// IsVanilla reports whether this array uses the canonical
	// representation rather than any bespoke layout.
	IsVanilla() bool
	// IsSampled reports whether this array is a lightweight sampled
	// array (carries the sampled bit but not the full logging shim).
	IsSampled() bool
	// IsLoggingShim reports whether this array's layout is the logging
	// shim: the only bespoke layout whose traffic this sink profile
	// can attribute back to a source LoggingProfile.
	IsLoggingShim() bool
	// Kind returns the generic array-kind histogram slot, already
	// reduced into [0, NumArrTypes).
	Kind() int
	// EntryTypes is valid only when IsLoggingShim is true.
	EntryTypes() EntryTypes
	// SourceProfile is the logging shim's back-reference to the source
	// that allocated it. Valid only when IsLoggingShim is true.
	SourceProfile() *LoggingProfile
}

// SinkProfile is the per-(translation-id, canonical-SrcKey) record of what
// kinds of arrays a JIT-compiled consumption site has observed.
type SinkProfile struct {
	gate   *Gate
	transID uint64
	sink   SrcKey

	arrCounts [NumArrTypes]atomic.Uint64
	keyCounts [NumKeyTypes]atomic.Uint64
	valCounts [NumValTypes]atomic.Uint64

	sampledCount   atomic.Uint64
	unsampledCount atomic.Uint64

	sources *shardedMap[string, uint64]
}

func newSinkProfile(transID uint64, sink SrcKey, gate *Gate) *SinkProfile {
	return &SinkProfile{
		gate:    gate,
		transID: transID,
		sink:    sink,
		sources: newShardedMap[string, uint64](),
	}
}

func (s *SinkProfile) TransID() uint64  { return s.transID }
func (s *SinkProfile) Sink() SrcKey     { return s.sink }
func (s *SinkProfile) SampledCount() uint64   { return s.sampledCount.Load() }
func (s *SinkProfile) UnsampledCount() uint64 { return s.unsampledCount.Load() }

// Update classifies one observed array: vanilla and merely-sampled arrays
// only move the generic counters; only logging-shim arrays contribute to
// the key/value histograms and the source attribution map, since every
// other bespoke layout has already won its specialization and need not be
// retraced.
func (s *SinkProfile) Update(ad SinkArray) bool {
	return s.gate.Guard(func() {
		isShim := !ad.IsVanilla() && ad.IsLoggingShim()

		if isShim || ad.IsSampled() {
			s.sampledCount.Add(1)
		} else {
			s.unsampledCount.Add(1)
		}

		if kind := ad.Kind(); kind >= 0 && kind < NumArrTypes {
			s.arrCounts[kind].Add(1)
		}

		if !isShim {
			return
		}

		et := ad.EntryTypes()
		if int(et.Keys) < NumKeyTypes {
			s.keyCounts[et.Keys].Add(1)
		}
		valSlot := valueHistogramSlot(et)
		if valSlot >= 0 && valSlot < NumValTypes {
			s.valCounts[valSlot].Add(1)
		}

		if src := ad.SourceProfile(); src != nil {
			key := sourceKey(src.Source())
			s.sources.Update(key, func(old uint64, existed bool) uint64 {
				if !existed {
					return 1
				}
				return old + 1
			})
		}
	})
}

func valueHistogramSlot(et EntryTypes) int {
	switch et.Values {
	case ValueTypesEmpty:
		return NoValType
	case ValueTypesMonotype:
		return 2 + int(et.ValueDatatype)
	default:
		return AnyValType
	}
}

// Reduce merges other into s, for accumulating per-thread profiles into a
// master copy before export.
func (s *SinkProfile) Reduce(other *SinkProfile) {
	for i := range s.arrCounts {
		s.arrCounts[i].Add(other.arrCounts[i].Load())
	}
	for i := range s.keyCounts {
		s.keyCounts[i].Add(other.keyCounts[i].Load())
	}
	for i := range s.valCounts {
		s.valCounts[i].Add(other.valCounts[i].Load())
	}
	s.sampledCount.Add(other.sampledCount.Load())
	s.unsampledCount.Add(other.unsampledCount.Load())

	other.sources.Range(func(k string, count uint64) {
		s.sources.Update(k, func(old uint64, existed bool) uint64 {
			if !existed {
				return count
			}
			return old + count
		})
	})
}

// RangeArrCounts, RangeKeyCounts, RangeValCounts, and RangeSources let
// export/report.go read the frozen histograms without this package
// needing to know anything about text formatting.
func (s *SinkProfile) RangeArrCounts(fn func(slot int, count uint64)) {
	for i := range s.arrCounts {
		if c := s.arrCounts[i].Load(); c > 0 {
			fn(i, c)
		}
	}
}

func (s *SinkProfile) RangeKeyCounts(fn func(slot int, count uint64)) {
	for i := range s.keyCounts {
		if c := s.keyCounts[i].Load(); c > 0 {
			fn(i, c)
		}
	}
}

func (s *SinkProfile) RangeValCounts(fn func(slot int, count uint64)) {
	for i := range s.valCounts {
		if c := s.valCounts[i].Load(); c > 0 {
			fn(i, c)
		}
	}
}

func (s *SinkProfile) RangeSources(fn func(sourceSymbol string, count uint64)) {
	s.sources.Range(fn)
}
