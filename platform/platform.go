// Package platform defines the ambient-platform collaborator spec.md §6
// names: something that knows the running JVM's set of modules and their
// requires graph, can enumerate a module's resources (for
// ReflectionScanner's class index), and can invoke the external
// static-dependency and image-linker tools. The core analyzers depend on
// this interface, never on a concrete JDK installation, the same boundary
// claircore draws between indexer/ and its per-ecosystem implementations.
package platform

import (
	"context"

	"github.com/modcut/modcut"
)

// LinkOptions mirrors the image-linker tool's documented flags (spec.md §6).
type LinkOptions struct {
	AddModules []string
	Output     string
	StripDebug bool
	Compress   string // e.g. "zip-6"
	NoHeaders  bool
	NoManPages bool
	ModulePath []string
}

// Platform is the ambient collaborator the core inference engine depends on.
// A concrete adapter (platform/jdk) supplies it by reading a JDK
// installation's jmods and shelling out to jdeps/jlink-shaped binaries.
type Platform interface {
	// AvailableModules returns every module the running platform ships.
	AvailableModules() modcut.ModuleSet

	// Requires returns the direct requires set of module m, and whether m
	// is a known platform module at all.
	Requires(m modcut.ModuleName) (modcut.ModuleSet, bool)

	// Resources enumerates every resource path inside module m, in the
	// slash-separated internal form used throughout this codebase
	// ("java/lang/Object.class"). Used once, at ReflectionScanner index
	// construction.
	Resources(m modcut.ModuleName) ([]string, error)

	// StaticDeps invokes the external static-dependency tool: classpath is
	// every archive (modular and non-modular) available for symbol
	// resolution, targets are the non-modular archives to analyze. Returns
	// the modules the tool reports.
	StaticDeps(ctx context.Context, classpath, targets []string) (modcut.ModuleSet, error)

	// Link invokes the external image-linker tool.
	Link(ctx context.Context, opts LinkOptions) error

	// Info returns the running platform's version/vendor, used by
	// ModuleResolver to gate class-file-format-version compatibility.
	Info() modcut.PlatformInfo
}
