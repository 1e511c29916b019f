// Package export implements the export coordinator: the one-way
// transition from "profiling" to "frozen, sorted, written".
package export

import "github.com/forestrie/go-bespoke-array/profile"

// beginExport performs the write-side handshake: take the tables' gate
// write lock, flip the started flag, release. Taking the write lock first
// guarantees every in-flight Guard call in profile has either completed or
// will see the flag and bail, before this function returns — which is why
// it is safe to start the export worker immediately after, with no lock
// held.
//
// The mutex and flag themselves live in profile.Gate, next to the data
// they protect; this function is the export-side choreography of using
// them exactly once per coordinator.
func beginExport(tables *profile.Tables) bool {
	return tables.Gate.BeginExport()
}
