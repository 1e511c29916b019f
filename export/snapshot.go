package export

import (
	"github.com/fxamacker/cbor/v2"

	"github.com/forestrie/go-bespoke-array/profile"
)

// SourceSnapshot and SinkSnapshot are the CBOR-serializable shadow of
// SourceOutputData/SinkOutputData: plain structs with no profile package
// pointers, so a snapshot can be decoded by a process that never ran the
// profiling pipeline itself.
type SourceSnapshot struct {
	Symbol           string  `cbor:"1,keyasint"`
	ShowInst         string  `cbor:"2,keyasint"`
	LoggingEmitted   uint64  `cbor:"3,keyasint"`
	SampleCount      uint64  `cbor:"4,keyasint"`
	Weight           float64 `cbor:"5,keyasint"`
	ReadCount        uint64  `cbor:"6,keyasint"`
	WriteCount       uint64  `cbor:"7,keyasint"`
	NumDistinctSinks int     `cbor:"8,keyasint"`
}

type SinkSnapshot struct {
	Symbol         string       `cbor:"1,keyasint"`
	ShowInst       string       `cbor:"2,keyasint"`
	SampledCount   uint64       `cbor:"3,keyasint"`
	UnsampledCount uint64       `cbor:"4,keyasint"`
	ArrCounts      []NamedCount `cbor:"5,keyasint"`
	KeyCounts      []NamedCount `cbor:"6,keyasint"`
	ValCounts      []NamedCount `cbor:"7,keyasint"`
}

// TablesSnapshot is the full machine-readable export artifact: the same
// data the text report renders, without the formatting.
type TablesSnapshot struct {
	Sources []SourceSnapshot `cbor:"1,keyasint"`
	Sinks   []SinkSnapshot   `cbor:"2,keyasint"`
}

func buildSnapshot(tables *profile.Tables, statics profile.StaticStrings) TablesSnapshot {
	sources := sortProfileData(tables, statics)
	sinks := sortSinkData(tables)

	snap := TablesSnapshot{
		Sources: make([]SourceSnapshot, 0, len(sources)),
		Sinks:   make([]SinkSnapshot, 0, len(sinks)),
	}
	for _, s := range sources {
		sk := s.Profile.Source()
		snap.Sources = append(snap.Sources, SourceSnapshot{
			Symbol:           sk.Symbol(),
			ShowInst:         sk.ShowInst(),
			LoggingEmitted:   s.Profile.LoggingArraysEmitted(),
			SampleCount:      s.Profile.SampleCount(),
			Weight:           s.Weight,
			ReadCount:        s.ReadCount,
			WriteCount:       s.WriteCount,
			NumDistinctSinks: s.NumDistinctSinks,
		})
	}
	for _, s := range sinks {
		sk := s.Profile.Sink()
		snap.Sinks = append(snap.Sinks, SinkSnapshot{
			Symbol:         sk.Symbol(),
			ShowInst:       sk.ShowInst(),
			SampledCount:   s.SampledCount,
			UnsampledCount: s.UnsampledCount,
			ArrCounts:      s.ArrCounts,
			KeyCounts:      s.KeyCounts,
			ValCounts:      s.ValCounts,
		})
	}
	return snap
}

// MarshalSnapshot encodes tables' current state as CBOR, using the same
// deterministic encoding options a log commitment would need: canonical
// map key ordering and encoding. Sources and sinks appear in descending
// weight order; entries of equal weight keep the tables' iteration order,
// which is not fixed across processes.
func MarshalSnapshot(tables *profile.Tables, statics profile.StaticStrings) ([]byte, error) {
	opts := cbor.CanonicalEncOptions()
	mode, err := opts.EncMode()
	if err != nil {
		return nil, err
	}
	return mode.Marshal(buildSnapshot(tables, statics))
}
