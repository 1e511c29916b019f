package export

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/forestrie/go-bespoke-array/internal/testshim"
	"github.com/forestrie/go-bespoke-array/profile"
)

func TestExportReportSingleRepeatedEvent(t *testing.T) {
	tables := profile.NewTables()
	source := testshim.SrcKey{Fn: "X"}
	sink := testshim.SrcKey{Fn: "Y"}

	p := tables.GetLoggingProfile(source)
	require.NotNil(t, p)
	p.IncrementLoggingArraysEmitted()
	p.IncrementSampleCount()

	const goroutines = 10
	const perGoroutine = 100
	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perGoroutine; j++ {
				p.LogEventIntKey(sink, profile.OpGet, 1)
			}
		}()
	}
	wg.Wait()
	require.Equal(t, uint64(1000), p.GetTotalEvents())

	dir := t.TempDir()
	path := filepath.Join(dir, "report.txt")

	c := NewCoordinator(tables, nil, nil, nil)
	c.ExportProfiles(context.Background(), path)
	require.NoError(t, c.WaitOnExportProfiles())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	report := string(data)

	require.True(t, strings.Contains(report, "X@0 ["))
	require.True(t, strings.Contains(report, "1000x Get key=[i8:1]"))
}

func TestExportReturnsNilAfterExportStarted(t *testing.T) {
	tables := profile.NewTables()
	source := testshim.SrcKey{Fn: "X"}
	p := tables.GetLoggingProfile(source)
	require.NotNil(t, p)

	dir := t.TempDir()
	path := filepath.Join(dir, "report.txt")

	c := NewCoordinator(tables, nil, nil, nil)
	c.ExportProfiles(context.Background(), path)
	require.NoError(t, c.WaitOnExportProfiles())

	require.Nil(t, tables.GetLoggingProfile(testshim.SrcKey{Fn: "new"}))
	require.Equal(t, 1, tables.SourceCount())
}

func TestExportWithNoDestinationIsNoop(t *testing.T) {
	tables := profile.NewTables()
	c := NewCoordinator(tables, nil, nil, nil)
	c.ExportProfiles(context.Background(), "")
	require.NoError(t, c.WaitOnExportProfiles())
	require.False(t, tables.Gate.Started())
}

func TestSinkHistogramScenario(t *testing.T) {
	tables := profile.NewTables()
	source := tables.GetLoggingProfile(testshim.SrcKey{Fn: "alloc"})
	sink := tables.GetSinkProfile(1, testshim.SrcKey{Fn: "consume"})

	for i := 0; i < 300; i++ {
		sink.Update(testshim.Array{Vanilla: true, ArrKind: 0})
	}
	for i := 0; i < 200; i++ {
		sink.Update(testshim.Array{
			Shim:    true,
			ArrKind: 1,
			Entries: profile.EntryTypes{
				Keys:          profile.KeyTypesInt,
				Values:        profile.ValueTypesMonotype,
				ValueDatatype: profile.DTString,
			},
			Source: source,
		})
	}
	for i := 0; i < 100; i++ {
		sink.Update(testshim.Array{ArrKind: 2})
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "report.txt")
	c := NewCoordinator(tables, nil, nil, nil)
	c.ExportProfiles(context.Background(), path)
	require.NoError(t, c.WaitOnExportProfiles())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	report := string(data)
	require.True(t, strings.Contains(report, "200/600 sampled"))
}
