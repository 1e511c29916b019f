package export

import (
	"testing"

	"github.com/fxamacker/cbor/v2"
	"github.com/stretchr/testify/require"

	"github.com/forestrie/go-bespoke-array/internal/testshim"
	"github.com/forestrie/go-bespoke-array/profile"
)

func TestMarshalSnapshotRoundTrips(t *testing.T) {
	tables := profile.NewTables()
	p := tables.GetLoggingProfile(testshim.SrcKey{Fn: "alloc"})
	require.NotNil(t, p)
	p.LogEvent(testshim.SrcKey{Fn: "consume"}, profile.OpGet)

	data, err := MarshalSnapshot(tables, nil)
	require.NoError(t, err)

	var snap TablesSnapshot
	require.NoError(t, cbor.Unmarshal(data, &snap))
	require.Len(t, snap.Sources, 1)
	require.Equal(t, "alloc@0", snap.Sources[0].Symbol)
}
