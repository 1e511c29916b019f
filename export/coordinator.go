package export

import (
	"sort"

	"github.com/forestrie/go-bespoke-array/profile"
)

// NamedCount is a single row of a rendered histogram: a display name and
// the count observed for it.
type NamedCount struct {
	Name  string
	Count uint64
}

// EventOutputData is one (sink, EventKey) row collapsed across every sink
// that observed it, matching logging-profile.cpp's sortProfileData, which
// only keeps sink identity around long enough to count distinct sinks.
type EventOutputData struct {
	Event profile.EventKey
	Count uint64
}

// OperationOutputData groups every EventOutputData sharing an ArrayOp.
type OperationOutputData struct {
	Operation  profile.ArrayOp
	Events     []EventOutputData
	TotalCount uint64
}

// EscalationOutputData and UseOutputData are the two kinds of entry-type
// transition a source profile records: an escalation moves from one
// EntryTypes to a strictly less specific one, a use repeats the same
// EntryTypes on both sides of a read.
type EscalationOutputData struct {
	Before, After profile.EntryTypes
	Count         uint64
}

type UseOutputData struct {
	Types profile.EntryTypes
	Count uint64
}

// SourceOutputData is the sorted, report-ready view of one LoggingProfile.
type SourceOutputData struct {
	Profile          *profile.LoggingProfile
	NumDistinctSinks int
	ReadOperations   []OperationOutputData
	WriteOperations  []OperationOutputData
	Escalations      []EscalationOutputData
	Uses             []UseOutputData
	ReadCount        uint64
	WriteCount       uint64
	Weight           float64
}

// SinkOutputData is the sorted, report-ready view of one SinkProfile.
type SinkOutputData struct {
	Profile        *profile.SinkProfile
	ArrCounts      []NamedCount
	KeyCounts      []NamedCount
	ValCounts      []NamedCount
	Sources        []NamedCount
	SampledCount   uint64
	UnsampledCount uint64
	Weight         uint64
}

func byCountDesc(counts []NamedCount) {
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].Count != counts[j].Count {
			return counts[i].Count > counts[j].Count
		}
		return counts[i].Name < counts[j].Name
	})
}

// sortSourceData aggregates one LoggingProfile's raw event and monotype
// tables into report-ready form, following logging-profile.cpp's
// sortProfileData: events aggregate across every sink that logged them,
// sink identity surviving only as a distinct-sink count.
func sortSourceData(p *profile.LoggingProfile, statics profile.StaticStrings) SourceOutputData {
	eventCounts := map[uint64]uint64{}
	distinctSinks := map[string]struct{}{}

	p.RangeEvents(func(sinkSymbol string, key profile.EventKey, count uint64) {
		eventCounts[key.ToUint64()] += count
		distinctSinks[sinkSymbol] = struct{}{}
	})

	opsGrouped := map[profile.ArrayOp]*OperationOutputData{}
	for raw, count := range eventCounts {
		key := profile.EventKeyFromUint64(raw)
		op := opsGrouped[key.Op]
		if op == nil {
			op = &OperationOutputData{Operation: key.Op}
			opsGrouped[key.Op] = op
		}
		op.Events = append(op.Events, EventOutputData{Event: key, Count: count})
		op.TotalCount += count
	}

	var reads, writes []OperationOutputData
	var readCount, writeCount uint64
	for _, op := range opsGrouped {
		sort.Slice(op.Events, func(i, j int) bool {
			if op.Events[i].Count != op.Events[j].Count {
				return op.Events[i].Count > op.Events[j].Count
			}
			return op.Events[i].Event.ToUint64() < op.Events[j].Event.ToUint64()
		})
		if op.Operation.IsRead() {
			reads = append(reads, *op)
			readCount += op.TotalCount
		} else {
			writes = append(writes, *op)
			writeCount += op.TotalCount
		}
	}
	sortOpsDesc := func(ops []OperationOutputData) {
		sort.Slice(ops, func(i, j int) bool {
			if ops[i].TotalCount != ops[j].TotalCount {
				return ops[i].TotalCount > ops[j].TotalCount
			}
			return ops[i].Operation < ops[j].Operation
		})
	}
	sortOpsDesc(reads)
	sortOpsDesc(writes)

	var escalations []EscalationOutputData
	var uses []UseOutputData
	p.RangeMonotypeEvents(func(before, after profile.EntryTypes, count uint64) {
		if before == after {
			uses = append(uses, UseOutputData{Types: before, Count: count})
		} else {
			escalations = append(escalations, EscalationOutputData{Before: before, After: after, Count: count})
		}
	})
	sort.Slice(escalations, func(i, j int) bool { return escalations[i].Count > escalations[j].Count })
	sort.Slice(uses, func(i, j int) bool { return uses[i].Count > uses[j].Count })

	total := readCount + writeCount
	weight := float64(total) * p.GetSampleCountMultiplier()

	return SourceOutputData{
		Profile:          p,
		NumDistinctSinks: len(distinctSinks),
		ReadOperations:   reads,
		WriteOperations:  writes,
		Escalations:      escalations,
		Uses:             uses,
		ReadCount:        readCount,
		WriteCount:       writeCount,
		Weight:           weight,
	}
}

// sortProfileData walks every source profile in tables and returns them
// ordered most-significant first, the order exportSortedProfiles walks
// logging-profile.cpp lines 584-676.
func sortProfileData(tables *profile.Tables, statics profile.StaticStrings) []SourceOutputData {
	var out []SourceOutputData
	tables.RangeSources(func(p *profile.LoggingProfile) {
		out = append(out, sortSourceData(p, statics))
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Weight > out[j].Weight })
	return out
}

func arrTypeName(slot int) string {
	if slot == 0 {
		return "Vanilla"
	}
	return "Bespoke" + string(rune('A'+slot-1))
}

func keyTypeName(slot int) string {
	return profile.KeyTypes(slot).String()
}

func valTypeName(slot int) string {
	switch slot {
	case profile.NoValType:
		return "Empty"
	case profile.AnyValType:
		return "Any"
	default:
		return profile.DataType(slot - 2).String()
	}
}

// sortSinkData walks every sink profile in tables, reducing each atomic
// histogram into a display-ready, descending NamedCount slice, mirroring
// logging-profile.cpp's exportSortedSinks.
func sortSinkData(tables *profile.Tables) []SinkOutputData {
	var out []SinkOutputData
	tables.RangeSinks(func(s *profile.SinkProfile) {
		var arr, keys, vals, srcs []NamedCount
		s.RangeArrCounts(func(slot int, c uint64) { arr = append(arr, NamedCount{arrTypeName(slot), c}) })
		s.RangeKeyCounts(func(slot int, c uint64) { keys = append(keys, NamedCount{keyTypeName(slot), c}) })
		s.RangeValCounts(func(slot int, c uint64) { vals = append(vals, NamedCount{valTypeName(slot), c}) })
		s.RangeSources(func(sym string, c uint64) { srcs = append(srcs, NamedCount{sym, c}) })
		byCountDesc(arr)
		byCountDesc(keys)
		byCountDesc(vals)
		byCountDesc(srcs)

		sampled, unsampled := s.SampledCount(), s.UnsampledCount()
		out = append(out, SinkOutputData{
			Profile:        s,
			ArrCounts:      arr,
			KeyCounts:      keys,
			ValCounts:      vals,
			Sources:        srcs,
			SampledCount:   sampled,
			UnsampledCount: unsampled,
			Weight:         sampled + unsampled,
		})
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Weight > out[j].Weight })
	return out
}
