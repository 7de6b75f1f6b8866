package interfaces

import "context"

// BlobStore is the content-addressable store holding site sources, images,
// and generated derivatives. Keys are site scoped; implementations must keep
// blobs from different sites fully isolated.
type BlobStore interface {
	// GetBlob returns the raw bytes stored for the site under path.
	GetBlob(ctx context.Context, siteID, path string) ([]byte, error)
	// PutBlob stores bytes for the site under path, replacing any prior value.
	PutBlob(ctx context.Context, siteID, path string, data []byte) error
	// DeleteBlob removes the blob stored under path, if present.
	DeleteBlob(ctx context.Context, siteID, path string) error
	// ListBlobs returns every stored path for the site with the given prefix,
	// in lexical order.
	ListBlobs(ctx context.Context, siteID, prefix string) ([]string, error)
}
