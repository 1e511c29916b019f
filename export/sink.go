package export

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/datatrails/go-datatrails-common/azblob"
)

// blobContainer is the minimal surface this package needs from a blob
// store to publish an export artifact, mirroring the Put-only dependency
// massifs.MassifCommitter has on its store.
type blobContainer interface {
	Put(ctx context.Context, identity string, reader io.ReadSeekCloser, opts ...azblob.Option) (*azblob.WriteResponse, error)
}

// isAzureDestination reports whether path names an Azure Blob container
// rather than a local filesystem path.
func isAzureDestination(path string) bool {
	return strings.HasPrefix(path, "https://") && strings.Contains(path, ".blob.core.windows.net")
}

// writeArtifact writes data to path's destination: a local file if path
// doesn't look like a blob URL, otherwise the blob container named by it.
// blobPath is the name the artifact takes inside the container; it is
// ignored for local destinations.
func writeArtifact(ctx context.Context, store blobContainer, path, blobPath string, data []byte) error {
	if !isAzureDestination(path) {
		return os.WriteFile(path, data, 0o644)
	}
	_, err := store.Put(ctx, blobPath, azblob.NewBytesReaderCloser(data), azblob.WithEtagNoneMatch("*"))
	return err
}
