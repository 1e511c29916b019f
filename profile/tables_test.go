package profile

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

type testSrcKey struct {
	fn     string
	offset int
	resume string
}

func (k testSrcKey) Valid() bool { return k.fn != "" }
func (k testSrcKey) Canonical() SrcKey {
	k.resume = "None"
	return k
}
func (k testSrcKey) Symbol() string   { return fmt.Sprintf("%s@%d", k.fn, k.offset) }
func (k testSrcKey) ShowInst() string { return fmt.Sprintf("instruction at %s:%d", k.fn, k.offset) }

func TestGetLoggingProfileIsStableAcrossCalls(t *testing.T) {
	tables := NewTables()
	sk := testSrcKey{fn: "foo", offset: 10, resume: "Eager"}

	p1 := tables.GetLoggingProfile(sk)
	p2 := tables.GetLoggingProfile(sk)
	require.NotNil(t, p1)
	require.Same(t, p1, p2)
	require.Equal(t, 1, tables.SourceCount())
}

func TestGetLoggingProfileCanonicalizesResumeMode(t *testing.T) {
	tables := NewTables()
	a := testSrcKey{fn: "foo", offset: 10, resume: "Eager"}
	b := testSrcKey{fn: "foo", offset: 10, resume: "AsyncEagerRet"}

	pa := tables.GetLoggingProfile(a)
	pb := tables.GetLoggingProfile(b)
	require.Same(t, pa, pb)
}

func TestGetLoggingProfileRejectsInvalidSrcKey(t *testing.T) {
	tables := NewTables()
	require.Nil(t, tables.GetLoggingProfile(testSrcKey{}))
}

func TestGetLoggingProfileReturnsNilAfterExportStarted(t *testing.T) {
	tables := NewTables()
	require.True(t, tables.Gate.BeginExport())

	sk := testSrcKey{fn: "new", offset: 1}
	require.Nil(t, tables.GetLoggingProfile(sk))
	require.Equal(t, 0, tables.SourceCount())
}

func TestLogEventConcurrency(t *testing.T) {
	tables := NewTables()
	source := testSrcKey{fn: "src", offset: 1}
	sink := testSrcKey{fn: "sink", offset: 2}
	p := tables.GetLoggingProfile(source)
	require.NotNil(t, p)

	const goroutines = 20
	const perGoroutine = 500

	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perGoroutine; j++ {
				ok := p.LogEventIntKey(sink, OpGet, int64(j%5))
				require.True(t, ok)
			}
		}()
	}
	wg.Wait()

	require.Equal(t, uint64(goroutines*perGoroutine), p.GetTotalEvents())
}

func TestLogEventStopsAfterExportStarted(t *testing.T) {
	tables := NewTables()
	source := testSrcKey{fn: "src", offset: 1}
	p := tables.GetLoggingProfile(source)
	require.NotNil(t, p)

	require.True(t, p.LogEvent(testSrcKey{fn: "sink"}, OpGet))
	require.True(t, tables.Gate.BeginExport())
	require.False(t, p.LogEvent(testSrcKey{fn: "sink"}, OpGet))
	require.Equal(t, uint64(1), p.GetTotalEvents())
}

func TestReleaseUncountedUsesEmptySink(t *testing.T) {
	tables := NewTables()
	source := testSrcKey{fn: "src", offset: 1}
	p := tables.GetLoggingProfile(source)

	p.LogEvent(testSrcKey{fn: "somewhere"}, OpReleaseUncounted)

	var sawEmpty bool
	p.RangeEvents(func(sinkSymbol string, key EventKey, count uint64) {
		if sinkSymbol == sourceKey(EmptySrcKey{}) {
			sawEmpty = true
		}
	})
	require.True(t, sawEmpty)
}
