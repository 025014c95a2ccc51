package modcut

import "sync"

// Classification describes whether an Archive carries a module descriptor.
type Classification int

const (
	// ClassificationUnknown means the archive hasn't been classified yet.
	ClassificationUnknown Classification = iota
	// Modular archives have a module-info.class at their root or under a
	// META-INF/versions/<N>/ prefix.
	Modular
	// NonModular archives have no module descriptor anywhere.
	NonModular
)

// Archive is an immutable handle to a ZIP-format file on disk (spec §3).
//
// Its classification is computed once (by whatever opens it, typically
// package archive's Reader) and cached here so every analyzer that needs to
// know "is this modular?" doesn't re-scan the archive's entries.
type Archive struct {
	// Path is the absolute path to the archive on disk.
	Path string

	mu    sync.Mutex
	class Classification
}

// NewArchive returns a handle for the archive at path. The classification is
// ClassificationUnknown until SetClassification is called.
func NewArchive(path string) *Archive {
	return &Archive{Path: path}
}

// Classification returns the cached classification.
func (a *Archive) Classification() Classification {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.class
}

// SetClassification caches c. Idempotent: callers may call this more than
// once (e.g. re-deriving the same value concurrently), but it's a
// programmer error to disagree with a previously-cached non-unknown value.
func (a *Archive) SetClassification(c Classification) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.class = c
}

// String implements fmt.Stringer.
func (a *Archive) String() string { return a.Path }
