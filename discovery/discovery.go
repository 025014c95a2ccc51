// Package discovery turns a directory or a single archive path into the set
// of archives an analysis run should examine, grounded on
// indexer/layerscanner.go's errgroup-with-SetLimit concurrency pattern for the
// parallel nested-archive extraction step (spec.md §4.3, §5).
package discovery

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/modcut/modcut"
	"github.com/modcut/modcut/archive"
)

// Result is the output of a Discovery run: the archives to analyze, an
// optional temporary directory holding extracted nested archives, and
// advisory warnings collected along the way (spec.md §3 DiscoveryResult).
type Result struct {
	Archives []string
	TempDir  string
	Warnings []string

	mu       sync.Mutex
	disposed bool
}

// addWarning appends a warning under lock; Discovery's concurrent extraction
// goroutines all share one Result.
func (r *Result) addWarning(format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

func (r *Result) addArchive(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Archives = append(r.Archives, path)
}

// Dispose recursively removes the temporary directory, if any. Idempotent.
func (r *Result) Dispose() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.disposed || r.TempDir == "" {
		r.disposed = true
		return nil
	}
	r.disposed = true
	return os.RemoveAll(r.TempDir)
}

// concurrency caps the number of simultaneous nested-archive extractions,
// the same role indexer/layerscanner.go's errgroup.SetLimit plays for
// per-layer scanner fan-out.
const concurrency = 8

var libPathPattern = regexp.MustCompile(`(^|/)lib/[^/]+\.jar$`)

// isLibraryEntry reports whether a zip entry name matches one of the
// recognized bundled-library locations (spec.md §4.3 archive mode):
// BOOT-INF/lib/, WEB-INF/lib/, lib/, or any */lib/*.jar path.
func isLibraryEntry(name string) bool {
	if !strings.HasSuffix(strings.ToLower(name), ".jar") {
		return false
	}
	switch {
	case strings.HasPrefix(name, "BOOT-INF/lib/"):
		return true
	case strings.HasPrefix(name, "WEB-INF/lib/"):
		return true
	case strings.HasPrefix(name, "lib/"):
		return true
	}
	return libPathPattern.MatchString(name)
}

// Discover runs directory-mode or archive-mode discovery depending on
// whether input is a directory or a file, per spec.md §4.3.
func Discover(ctx context.Context, input string) (*Result, error) {
	fi, err := os.Stat(input)
	if err != nil {
		return nil, &modcut.Error{
			Kind:    modcut.ErrInputNotFound,
			Inner:   err,
			Message: input,
			Op:      "discovery.Discover",
		}
	}
	if fi.IsDir() {
		return discoverDir(input)
	}
	return discoverArchive(ctx, input)
}

// discoverDir walks a directory recursively, collecting *.jar files
// (case-insensitive) and guarding against symlink loops by tracking the
// canonical (symlink-resolved) form of every directory visited.
func discoverDir(root string) (*Result, error) {
	res := &Result{}
	seen := make(map[string]struct{})

	var walk func(dir string) error
	walk = func(dir string) error {
		real, err := filepath.EvalSymlinks(dir)
		if err != nil {
			res.addWarning("resolving %s: %v", dir, err)
			return nil
		}
		if _, ok := seen[real]; ok {
			res.addWarning("symlink loop detected at %s, skipping", dir)
			return nil
		}
		seen[real] = struct{}{}

		entries, err := os.ReadDir(dir)
		if err != nil {
			res.addWarning("reading %s: %v", dir, err)
			return nil
		}
		for _, e := range entries {
			full := filepath.Join(dir, e.Name())
			switch {
			case e.IsDir():
				if err := walk(full); err != nil {
					return err
				}
			case e.Type()&fs.ModeSymlink != 0:
				info, err := os.Stat(full)
				if err != nil {
					res.addWarning("resolving symlink %s: %v", full, err)
					continue
				}
				if info.IsDir() {
					if err := walk(full); err != nil {
						return err
					}
					continue
				}
				if strings.HasSuffix(strings.ToLower(e.Name()), ".jar") {
					res.addArchive(full)
				}
			default:
				if strings.HasSuffix(strings.ToLower(e.Name()), ".jar") {
					res.addArchive(full)
				}
			}
		}
		return nil
	}

	if err := walk(root); err != nil {
		return nil, err
	}
	sort.Strings(res.Archives)
	return res, nil
}

// discoverArchive includes the root archive itself, extracts any bundled
// libraries in parallel to a fresh temp directory, and chases manifest
// classpath references.
func discoverArchive(ctx context.Context, input string) (*Result, error) {
	res := &Result{Archives: []string{input}}

	f, err := os.Open(input)
	if err != nil {
		return nil, &modcut.Error{Kind: modcut.ErrInputNotFound, Inner: err, Message: input, Op: "discovery.discoverArchive"}
	}
	defer f.Close()
	fi, err := f.Stat()
	if err != nil {
		return nil, &modcut.Error{Kind: modcut.ErrCorruptArchive, Inner: err, Message: input, Op: "discovery.discoverArchive"}
	}

	ar, err := archive.Open(input, f, fi.Size())
	if err != nil {
		res.addWarning("opening %s: %v", input, err)
		return res, nil
	}

	var matched []string
	for _, name := range ar.Entries() {
		if isLibraryEntry(name) {
			matched = append(matched, name)
		}
	}

	if len(matched) > 0 {
		tmp, err := os.MkdirTemp("", "modcut-discovery-")
		if err != nil {
			return nil, &modcut.Error{Kind: modcut.ErrAnalysisFailure, Inner: err, Message: "creating temp directory", Op: "discovery.discoverArchive"}
		}
		res.TempDir = tmp

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(concurrency)
		for _, name := range matched {
			name := name
			g.Go(func() error {
				select {
				case <-gctx.Done():
					return context.Cause(gctx)
				default:
				}
				if err := extractEntry(ar, name, tmp, res); err != nil {
					res.addWarning("extracting %s: %v", name, err)
				}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	}

	classpath, err := ar.ManifestClasspath()
	if err == nil {
		chaseManifestClasspath(input, classpath, res)
	}

	sort.Strings(res.Archives[1:])
	return res, nil
}

// extractEntry writes one matched library entry to a uniquely named file
// under destDir, resolving collisions with a short random suffix per
// spec.md §4.3.
func extractEntry(ar *archive.Reader, name, destDir string, res *Result) error {
	rc, err := ar.OpenEntry(name)
	if err != nil {
		return err
	}
	defer rc.Close()

	base := filepath.Base(name)
	destPath := filepath.Join(destDir, base)
	const flags = os.O_WRONLY | os.O_CREATE | os.O_EXCL
	out, err := os.OpenFile(destPath, flags, 0o666)
	if os.IsExist(err) {
		destPath = filepath.Join(destDir, uniqueSuffix(base))
		out, err = os.OpenFile(destPath, flags, 0o666)
	}
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, rc); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	res.addArchive(destPath)
	return nil
}

// uniqueSuffix appends a short random suffix before the extension of base,
// resolving extraction filename collisions (spec.md §4.3: "a short random
// suffix").
func uniqueSuffix(base string) string {
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	return fmt.Sprintf("%s-%s%s", stem, uuid.NewString()[:8], ext)
}

// chaseManifestClasspath resolves each Class-Path token relative to the
// archive's parent directory, adding existing regular files and warning
// about missing ones (spec.md §4.3).
func chaseManifestClasspath(archivePath string, tokens []string, res *Result) {
	parent := filepath.Dir(archivePath)
	for _, tok := range tokens {
		full := filepath.Join(parent, tok)
		info, err := os.Stat(full)
		switch {
		case err != nil:
			res.addWarning("manifest Class-Path entry %s: %v", tok, err)
		case !info.Mode().IsRegular():
			res.addWarning("manifest Class-Path entry %s: not a regular file", tok)
		default:
			res.addArchive(full)
		}
	}
}
