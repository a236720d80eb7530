// Package listing provides the polymorphic directory-listing capability
// set of spec.md §4.4, implemented by local filesystem, SSH/SFTP, S3, and
// Google Drive backends. The selector and validator packages are agnostic
// to which backend is installed: they only see the Backend interface.
package listing

import (
	"context"
	"sort"

	"github.com/neuroinformatics-unit/datashuttle-go/internal/dserr"
)

// Backend is the capability set every listing implementation exposes.
// Errors use the taxonomy codes NotFound, AuthFailed, NetworkError,
// BackendError.
type Backend interface {
	// List returns the immediate child folder and file names of dir,
	// sorted ascending by code point (spec.md §4.3 determinism).
	List(ctx context.Context, dir string) (folders, files []string, err error)
	// Exists reports whether path exists (file or folder).
	Exists(ctx context.Context, path string) (bool, error)
	// Delete removes path (file or empty folder).
	Delete(ctx context.Context, path string) error
}

func sortedUnique(items []string) []string {
	sort.Strings(items)
	return items
}

// NotFound builds the standard "no such path" error for a backend.
func NotFound(path string) error {
	return dserr.NewWithPath(dserr.CodeNotFound, "path does not exist", path)
}

// AuthFailed builds the standard authentication-failure error.
func AuthFailed(detail string) error {
	return dserr.New(dserr.CodeAuthFailed, detail)
}

// NetworkError builds the standard network-failure error.
func NetworkError(detail string) error {
	return dserr.New(dserr.CodeNetworkError, detail)
}

// BackendErr builds a generic backend-specific error.
func BackendErr(detail string) error {
	return dserr.New(dserr.CodeBackendError, detail)
}
