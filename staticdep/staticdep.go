// Package staticdep implements the StaticDepAnalyzer: for non-modular
// archives it shells out to the platform's external static-dependency tool;
// for modular archives it parses the module descriptor directly instead,
// avoiding the external tool's "every transitive modular dependency must be
// on the module path" failure mode (spec.md §4.5). Grounded on
// java/packagescanner.go's external-call shape (an in-process call against
// a possibly-degraded collaborator), adapted from net/http to os/exec, and
// throttled with golang.org/x/time/rate the way that file throttles its own
// Maven Central lookups — here against concurrent process spawns instead of
// concurrent HTTP requests.
package staticdep

import (
	"context"
	"io"
	"os"

	"golang.org/x/time/rate"

	"github.com/modcut/modcut"
	"github.com/modcut/modcut/archive"
	"github.com/modcut/modcut/classfile"
	"github.com/modcut/modcut/platform"
)

// Analyzer runs StaticDepAnalyzer over a set of archives.
type Analyzer struct {
	plat    platform.Platform
	limiter *rate.Limiter
}

// New builds an Analyzer that throttles process spawns to maxConcurrent
// per-second bursts against plat's external static-dependency tool.
func New(plat platform.Platform, maxConcurrent int) *Analyzer {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	return &Analyzer{
		plat:    plat,
		limiter: rate.NewLimiter(rate.Limit(maxConcurrent), maxConcurrent),
	}
}

// Analyze partitions archivePaths into modular and non-modular, resolves
// the non-modular ones via the external tool (all paths passed as
// classpath, only non-modular ones as analysis targets), and the modular
// ones by reading their descriptor's requires list directly.
func (a *Analyzer) Analyze(ctx context.Context, archivePaths []string) (modcut.ModuleSet, error) {
	var modular, nonModular []string

	for _, p := range archivePaths {
		isModular, err := isModularArchive(p)
		if err != nil {
			// Unreadable archive: recoverable, skip (Discovery already
			// warned about corrupt archives upstream; this analyzer just
			// excludes it from its own accounting).
			continue
		}
		if isModular {
			modular = append(modular, p)
		} else {
			nonModular = append(nonModular, p)
		}
	}

	result := modcut.NewModuleSet()

	for _, p := range modular {
		mods, err := modularRequires(p, a.plat)
		if err != nil {
			continue // per-archive descriptor read failure is recoverable
		}
		result = result.Union(mods)
	}

	if len(nonModular) > 0 {
		if err := a.limiter.Wait(ctx); err != nil {
			return nil, err
		}
		mods, err := a.plat.StaticDeps(ctx, archivePaths, nonModular)
		if err != nil {
			return nil, err
		}
		result = result.Union(mods)
	}

	return result, nil
}

// AnalyzePerArchive runs the same classification sequentially, recording
// each archive's own module set for AnalysisResult.PerArchive (spec.md
// §4.5: "analyze_per_archive ... sequential over archives").
func (a *Analyzer) AnalyzePerArchive(ctx context.Context, archivePaths []string) (map[string]modcut.ModuleSet, error) {
	out := make(map[string]modcut.ModuleSet, len(archivePaths))
	for _, p := range archivePaths {
		isModular, err := isModularArchive(p)
		if err != nil {
			continue
		}
		if isModular {
			mods, err := modularRequires(p, a.plat)
			if err != nil {
				continue
			}
			out[p] = mods
			continue
		}
		if err := a.limiter.Wait(ctx); err != nil {
			return nil, err
		}
		mods, err := a.plat.StaticDeps(ctx, archivePaths, []string{p})
		if err != nil {
			return nil, err
		}
		out[p] = mods
	}
	return out, nil
}

func isModularArchive(path string) (bool, error) {
	r, closer, err := openReader(path)
	if err != nil {
		return false, err
	}
	defer closer.Close()
	return r.HasModuleDescriptor(), nil
}

// modularRequires parses a modular archive's module-info.class directly,
// preferring the highest-versioned multi-release descriptor if present, and
// keeps only requires whose names the platform actually has available
// (spec.md §4.5: "keep only those whose names are in the platform's
// available-module set").
func modularRequires(path string, plat platform.Platform) (modcut.ModuleSet, error) {
	r, closer, err := openReader(path)
	if err != nil {
		return nil, err
	}
	defer closer.Close()

	entry := "module-info.class"
	if v, ok := r.HighestVersionedDescriptor(); ok {
		entry = v
	}
	rc, err := r.OpenEntry(entry)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	info, err := classfile.ReadModuleInfo(rc)
	if err != nil {
		return nil, err
	}

	available := plat.AvailableModules()
	out := modcut.NewModuleSet()
	for _, req := range info.Requires {
		n := modcut.ModuleName(req.Name)
		if available.Has(n) {
			out.Add(n)
		}
	}
	return out, nil
}

// openReader opens path and returns a Reader over it alongside the
// underlying file, which the caller must keep open (and close) for as long
// as it reads from the Reader: klauspost/compress/zip.File.Open (the same
// io.ReaderAt contract archive/zip uses) performs a lazy read through that
// file at Open-entry time, the same reason discovery.go and orchestrator.go
// both keep their own archive files open for the lifetime of every reader
// built over them.
func openReader(path string) (*archive.Reader, io.Closer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	r, err := archive.Open(path, f, fi.Size())
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	return r, f, nil
}
