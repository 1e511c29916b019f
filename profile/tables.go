package profile

import (
	"fmt"
	"hash/maphash"
	"sync"
	"sync/atomic"
)

// shardedMap is a concurrent map with per-bucket mutual exclusion, the Go
// stand-in for an accessor-based concurrent hash map: insert-or-get is
// atomic per key, and counts within a bucket are plain integers because
// the bucket's mutex is already held.
type shardedMap[K comparable, V any] struct {
	shards []*shard[K, V]
	seed   maphash.Seed
}

type shard[K comparable, V any] struct {
	mu sync.Mutex
	m  map[K]V
}

const defaultShardCount = 32

func newShardedMap[K comparable, V any]() *shardedMap[K, V] {
	sm := &shardedMap[K, V]{
		shards: make([]*shard[K, V], defaultShardCount),
		seed:   maphash.MakeSeed(),
	}
	for i := range sm.shards {
		sm.shards[i] = &shard[K, V]{m: make(map[K]V)}
	}
	return sm
}

func (sm *shardedMap[K, V]) shardFor(k K) *shard[K, V] {
	var h maphash.Hash
	h.SetSeed(sm.seed)
	fmt.Fprintf(&h, "%v", k)
	return sm.shards[h.Sum64()%uint64(len(sm.shards))]
}

// GetOrInsert returns the existing value for k, or calls create and stores
// its result if k is absent. The returned bool is true iff create ran.
func (sm *shardedMap[K, V]) GetOrInsert(k K, create func() V) (V, bool) {
	sh := sm.shardFor(k)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	if v, ok := sh.m[k]; ok {
		return v, false
	}
	v := create()
	sh.m[k] = v
	return v, true
}

func (sm *shardedMap[K, V]) Get(k K) (V, bool) {
	sh := sm.shardFor(k)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	v, ok := sh.m[k]
	return v, ok
}

// Update applies fn to the current value for k (the zero value and
// existed=false if k is absent) and stores the result, all under the
// bucket's lock.
func (sm *shardedMap[K, V]) Update(k K, fn func(old V, existed bool) V) {
	sh := sm.shardFor(k)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	old, existed := sh.m[k]
	sh.m[k] = fn(old, existed)
}

// Range calls fn once per entry. It takes each bucket's lock in turn, so a
// concurrent writer may be briefly blocked, but Range never holds more
// than one bucket's lock at a time.
func (sm *shardedMap[K, V]) Range(fn func(k K, v V)) {
	for _, sh := range sm.shards {
		sh.mu.Lock()
		for k, v := range sh.m {
			fn(k, v)
		}
		sh.mu.Unlock()
	}
}

func (sm *shardedMap[K, V]) Len() int {
	total := 0
	for _, sh := range sm.shards {
		sh.mu.Lock()
		total += len(sh.m)
		sh.mu.Unlock()
	}
	return total
}

// Gate is the process-wide shared mutex plus atomic flag that separates
// the profiling phase from the export phase. Every table mutation takes
// the read side via Guard; BeginExport takes the write side exactly once
// to flip the flag, then releases it before the export worker starts
// iterating the now-frozen tables.
type Gate struct {
	mu      sync.RWMutex
	started atomic.Bool
}

// Guard runs fn while holding the gate's read side, unless export has
// already started, in which case fn does not run. It returns whether fn
// ran.
func (g *Gate) Guard(fn func()) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.started.Load() {
		return false
	}
	fn()
	return true
}

// Started reports whether export has begun, without taking the read side.
// Safe for the optimistic-lookup fast path that doesn't need to hold the
// gate for a read-only hit.
func (g *Gate) Started() bool {
	return g.started.Load()
}

// BeginExport flips the gate exactly once. It returns false if export had
// already started. Taking the write side here guarantees every writer
// that was mid-Guard has finished (and released the read side) before
// this call returns, and that no new Guard call will run its fn.
func (g *Gate) BeginExport() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.started.Load() {
		return false
	}
	g.started.Store(true)
	log.Infof("profile: export gate flipped, profiling calls now silently dropped")
	return true
}

// Tables owns the source and sink profile maps and the gate guarding both.
// It is the top-level object a runtime instantiates once at startup.
type Tables struct {
	Gate *Gate

	sources *shardedMap[string, *LoggingProfile]
	sinks   *shardedMap[sinkMapKey, *SinkProfile]
}

func NewTables() *Tables {
	return &Tables{
		Gate:    &Gate{},
		sources: newShardedMap[string, *LoggingProfile](),
		sinks:   newShardedMap[sinkMapKey, *SinkProfile](),
	}
}

// sourceKey renders a SrcKey to the string this package uses as its map
// key. SrcKey implementations are expected to render distinct locations to
// distinct strings; Symbol()+ShowInst() is sufficient for any real SrcKey
// and keeps Tables from needing SrcKey to be a comparable type itself.
func sourceKey(sk SrcKey) string {
	return sk.Symbol() + "\x00" + sk.ShowInst()
}

// GetLoggingProfile returns the profile for skRaw's canonical SrcKey,
// creating it if this is the first time this location has been seen.
// Returns nil if skRaw is invalid, if ShouldLog rejects it, or if export
// has started and this location has never been seen before; a profile
// created before export is still returned afterwards.
func (t *Tables) GetLoggingProfile(skRaw SrcKey) *LoggingProfile {
	if skRaw == nil || !skRaw.Valid() {
		return nil
	}
	sk := canonicalize(skRaw)
	if ShouldLog != nil && !ShouldLog(sk) {
		return nil
	}
	key := sourceKey(sk)

	if p, ok := t.sources.Get(key); ok {
		return p
	}

	var result *LoggingProfile
	t.Gate.Guard(func() {
		p, _ := t.sources.GetOrInsert(key, func() *LoggingProfile {
			return newLoggingProfile(sk, t.Gate)
		})
		result = p
	})
	return result
}

type sinkMapKey struct {
	transID uint64
	source  string
}

// GetSinkProfile returns the profile for (id, skRaw's canonical SrcKey),
// creating it on first use. Returns nil only if export has started and
// this sink has never been seen before.
func (t *Tables) GetSinkProfile(id uint64, skRaw SrcKey) *SinkProfile {
	sk := canonicalize(skRaw)
	key := sinkMapKey{transID: id, source: sourceKey(sk)}

	if p, ok := t.sinks.Get(key); ok {
		return p
	}

	var result *SinkProfile
	t.Gate.Guard(func() {
		p, _ := t.sinks.GetOrInsert(key, func() *SinkProfile {
			return newSinkProfile(id, sk, t.Gate)
		})
		result = p
	})
	return result
}

// RangeSources calls fn once per registered source profile.
func (t *Tables) RangeSources(fn func(*LoggingProfile)) {
	t.sources.Range(func(_ string, p *LoggingProfile) { fn(p) })
}

// RangeSinks calls fn once per registered sink profile.
func (t *Tables) RangeSinks(fn func(*SinkProfile)) {
	t.sinks.Range(func(_ sinkMapKey, p *SinkProfile) { fn(p) })
}

func (t *Tables) SourceCount() int { return t.sources.Len() }
func (t *Tables) SinkCount() int   { return t.sinks.Len() }
