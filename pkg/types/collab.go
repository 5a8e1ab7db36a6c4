// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// FileService is the external collaborator that turns downloaded files
// into durably stored ones. The pipeline never initiates writes to the
// record store itself; it hands the finished draft over through this
// interface.
type FileService interface {
	// Access resolves a URL to a local path, downloading when download is
	// true and the file is remote.
	Access(url string, download bool) (string, error)

	// Move relocates the draft's files into managed storage and returns
	// the updated draft, or nil when the move failed.
	Move(draft *Draft) *Draft

	// Remove deletes the draft's files from managed storage.
	Remove(draft *Draft) bool
}

// Notifier surfaces per-adapter failures without aborting a batch.
type Notifier interface {
	Warn(msg string)
	Error(msg string)
}
