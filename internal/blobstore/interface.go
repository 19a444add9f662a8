// Package blobstore is the artifact boundary interface (spec.md §6 Blob
// store): upload to a virtual path, list by directory/extension/name
// pattern, download with a duplicate policy, delete, and fetch raw
// content (rejecting *.json blobs that are not valid JSON).
//
// Grounded on the teacher's connector split (interface.go / types.go /
// impl_mock); the real SDK-backed client lives outside this module
// (spec.md §1: "the... blob SDK... client; their interfaces are
// summarized in §6").
package blobstore

import "context"

// DuplicatePolicy governs Download's behavior when the local destination
// already exists (spec.md §6: "download to local path with duplicate-policy
// ∈ {raise, copy, overwrite}").
type DuplicatePolicy string

const (
	DuplicateRaise     DuplicatePolicy = "raise"
	DuplicateCopy      DuplicatePolicy = "copy"
	DuplicateOverwrite DuplicatePolicy = "overwrite"
)

// BlobInfo describes one stored object, returned by List.
type BlobInfo struct {
	Path string
	Size int64
}

// Store is the seam between pipeline components and the blob backend.
type Store interface {
	// Upload stores data at virtualPath; overwrite controls whether an
	// existing object at that path is replaced.
	Upload(ctx context.Context, virtualPath string, data []byte, overwrite bool) error

	// List returns blobs under dir whose name matches ext (file
	// extension, empty = any) and nameRegex (empty = any).
	List(ctx context.Context, dir, ext, nameRegex string) ([]BlobInfo, error)

	// Download fetches virtualPath to localPath, honoring policy when
	// localPath already exists.
	Download(ctx context.Context, virtualPath, localPath string, policy DuplicatePolicy) error

	// Delete removes virtualPath.
	Delete(ctx context.Context, virtualPath string) error

	// FetchContent returns the raw bytes at virtualPath; if the blob is
	// named *.json its content is validated as JSON before returning
	// (spec.md §6: "fetch content (auto-decode JSON)").
	FetchContent(ctx context.Context, virtualPath string) ([]byte, error)
}
