package profile

import "sync/atomic"

type eventMapKey struct {
	sink  string
	event uint64
}

type entryTransition struct {
	before uint16
	after  uint16
}

// LoggingProfile is the per-canonical-SrcKey record of everything observed
// at one allocation site: every (sink, EventKey) pair seen and its count,
// every entry-type transition seen and its count, and the counters needed
// to compute the source's export weight.
type LoggingProfile struct {
	gate   *Gate
	source SrcKey

	events         *shardedMap[eventMapKey, uint64]
	monotypeEvents *shardedMap[entryTransition, uint64]

	loggingArraysEmitted atomic.Uint64
	sampleCount          atomic.Uint64
}

func newLoggingProfile(source SrcKey, gate *Gate) *LoggingProfile {
	return &LoggingProfile{
		gate:           gate,
		source:         source,
		events:         newShardedMap[eventMapKey, uint64](),
		monotypeEvents: newShardedMap[entryTransition, uint64](),
	}
}

func (p *LoggingProfile) Source() SrcKey { return p.source }

// IncrementLoggingArraysEmitted records that one more logging-shim array
// was materialized for this source. Callers decide sampling policy; this
// package only tallies what it is told.
func (p *LoggingProfile) IncrementLoggingArraysEmitted() {
	p.loggingArraysEmitted.Add(1)
}

// IncrementSampleCount records that one more of this source's arrays was
// chosen for full sampling (as opposed to the lighter "sampled" bit some
// arrays carry without going through the logging shim).
func (p *LoggingProfile) IncrementSampleCount() {
	p.sampleCount.Add(1)
}

func (p *LoggingProfile) LoggingArraysEmitted() uint64 { return p.loggingArraysEmitted.Load() }
func (p *LoggingProfile) SampleCount() uint64           { return p.sampleCount.Load() }

// GetSampleCountMultiplier is sampleCount divided by loggingArraysEmitted
// (0 when no logging array has been emitted); the source's weight is its
// raw event total multiplied by this value.
func (p *LoggingProfile) GetSampleCountMultiplier() float64 {
	emitted := p.loggingArraysEmitted.Load()
	if emitted == 0 {
		return 0
	}
	return float64(p.sampleCount.Load()) / float64(emitted)
}

// GetTotalEvents sums every event count this source has recorded.
func (p *LoggingProfile) GetTotalEvents() uint64 {
	var total uint64
	p.events.Range(func(_ eventMapKey, count uint64) { total += count })
	return total
}

// GetProfileWeight is the score export sorts sources by: raw activity
// scaled by how representative the sampled subset is of the whole.
func (p *LoggingProfile) GetProfileWeight() float64 {
	return float64(p.GetTotalEvents()) * p.GetSampleCountMultiplier()
}

func (p *LoggingProfile) logEvent(sink SrcKey, key EventKey) bool {
	effectiveSink := sink
	if key.Op == OpReleaseUncounted {
		// Release-specific operations may execute outside any frame, so
		// they are always recorded against an empty sink rather than
		// whatever the VM register state happens to say.
		effectiveSink = EmptySrcKey{}
	}
	if effectiveSink == nil {
		effectiveSink = EmptySrcKey{}
	}
	mapKey := eventMapKey{sink: sourceKey(effectiveSink), event: key.ToUint64()}
	return p.gate.Guard(func() {
		p.events.Update(mapKey, func(old uint64, existed bool) uint64 {
			if !existed {
				return 1
			}
			return old + 1
		})
	})
}

func (p *LoggingProfile) LogEvent(sink SrcKey, op ArrayOp) bool {
	return p.logEvent(sink, NewEventKey(op))
}

func (p *LoggingProfile) LogEventIntKey(sink SrcKey, op ArrayOp, k int64) bool {
	return p.logEvent(sink, NewEventKeyIntKey(op, k))
}

func (p *LoggingProfile) LogEventStrKey(sink SrcKey, op ArrayOp, k StringRef) bool {
	return p.logEvent(sink, NewEventKeyStrKey(op, k))
}

func (p *LoggingProfile) LogEventValue(sink SrcKey, op ArrayOp, v TypedValue) bool {
	return p.logEvent(sink, NewEventKeyValue(op, v))
}

func (p *LoggingProfile) LogEventIntKeyValue(sink SrcKey, op ArrayOp, k int64, v TypedValue) bool {
	return p.logEvent(sink, NewEventKeyIntKeyValue(op, k, v))
}

func (p *LoggingProfile) LogEventStrKeyValue(sink SrcKey, op ArrayOp, k StringRef, v TypedValue) bool {
	return p.logEvent(sink, NewEventKeyStrKeyValue(op, k, v))
}

// LogEntryTypes records one entry-type transition (the array's summary
// before and after an operation escalated its monotype tracking).
func (p *LoggingProfile) LogEntryTypes(before, after EntryTypes) bool {
	key := entryTransition{before: before.AsInt16(), after: after.AsInt16()}
	return p.gate.Guard(func() {
		p.monotypeEvents.Update(key, func(old uint64, existed bool) uint64 {
			if !existed {
				return 1
			}
			return old + 1
		})
	})
}

// RangeEvents calls fn once per distinct (sink symbol, EventKey) pair this
// source has recorded, along with its count. The sink is reported as the
// string Tables keys it by (sourceKey: Symbol and ShowInst joined by a NUL
// byte), not as the original SrcKey; export uses it only to count distinct
// sinks.
func (p *LoggingProfile) RangeEvents(fn func(sinkSymbol string, key EventKey, count uint64)) {
	p.events.Range(func(k eventMapKey, count uint64) {
		fn(k.sink, EventKeyFromUint64(k.event), count)
	})
}

// RangeMonotypeEvents calls fn once per distinct (before, after) pair.
func (p *LoggingProfile) RangeMonotypeEvents(fn func(before, after EntryTypes, count uint64)) {
	p.monotypeEvents.Range(func(k entryTransition, count uint64) {
		fn(EntryTypesFromInt16(k.before), EntryTypesFromInt16(k.after), count)
	})
}
