package export

import "github.com/google/uuid"

// runID identifies one export run, so the text report and its optional
// CBOR snapshot and signature can be correlated even when the destination
// is a shared Azure Blob container rather than a single local directory.
type runID uuid.UUID

func newRunID() runID {
	return runID(uuid.New())
}

func (id runID) String() string {
	return uuid.UUID(id).String()
}

// withRunSuffix inserts "-<runID>" before path's final extension, or
// appends it if path has none.
func withRunSuffix(path string, id runID) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '.' {
			return path[:i] + "-" + id.String() + path[i:]
		}
		if path[i] == '/' {
			break
		}
	}
	return path + "-" + id.String()
}
