// Package resolver closes a raw module set over the running platform's
// requires graph, grounded directly on spec.md §4.14's own worklist
// algorithm.
package resolver

import (
	"fmt"

	"github.com/Masterminds/semver"

	"github.com/modcut/modcut"
	"github.com/modcut/modcut/platform"
)

// MinClassFileMajorVersion is the lowest class-file format major version
// this engine accepts (spec.md §6: "version ≥ 9" — major version 53
// corresponds to Java 9).
const MinClassFileMajorVersion = 53

// Resolver closes module sets over a platform's requires graph.
type Resolver struct {
	graph    *modcut.ModuleGraph
	platform platform.Platform
}

// New builds a Resolver by enumerating plat's available modules and their
// requires lists (spec.md §4.14: "on construction, enumerates").
func New(plat platform.Platform) *Resolver {
	available := plat.AvailableModules()
	requires := make(map[modcut.ModuleName]modcut.ModuleSet, len(available))
	for m := range available {
		if rs, ok := plat.Requires(m); ok {
			requires[m] = rs
		}
	}
	return &Resolver{
		graph:    modcut.NewModuleGraph(available, requires),
		platform: plat,
	}
}

// Resolve computes the transitive closure of initial over the platform's
// requires graph (spec.md §4.14, steps 1–6): a worklist over a stack, fatal
// on any missing platform-prefixed module, silently skipping unknown
// application modules, and unconditionally including the base module.
func (r *Resolver) Resolve(initial modcut.ModuleSet) (modcut.ModuleSet, error) {
	result := modcut.NewModuleSet()
	stack := initial.Sorted() // deterministic traversal order, though the result is a set

	for len(stack) > 0 {
		m := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if result.Has(m) {
			continue
		}
		if !r.graph.Available.Has(m) {
			if m.IsPlatform() {
				return nil, &modcut.Error{
					Kind:    modcut.ErrMissingModule,
					Message: fmt.Sprintf("module %s required but not present on the running platform", m),
					Op:      "resolver.Resolve",
				}
			}
			// Application module unknown to the platform: skip silently.
			continue
		}

		result.Add(m)
		for req := range r.graph.Requires[m] {
			if !result.Has(req) {
				stack = append(stack, req)
			}
		}
	}

	result.Add(modcut.BaseModule)
	return result, nil
}

// FilterAvailable drops any module name not present in the platform's
// available set, used for modules discovered via a modular archive's
// descriptor (spec.md §4.14: "any module whose name is not in available is
// silently dropped... handles platforms where legacy modules have been
// removed").
func (r *Resolver) FilterAvailable(names modcut.ModuleSet) modcut.ModuleSet {
	out := modcut.NewModuleSet()
	for n := range names {
		if r.graph.Available.Has(n) {
			out.Add(n)
		}
	}
	return out
}

// CheckPlatformVersion validates that the running platform's release
// supports the given class-file major version, using semver to parse the
// platform's release string.
func CheckPlatformVersion(info modcut.PlatformInfo, classFileMajor int) error {
	if classFileMajor < MinClassFileMajorVersion {
		return &modcut.Error{
			Kind:    modcut.ErrMalformedClass,
			Message: fmt.Sprintf("class-file major version %d predates the minimum supported version %d", classFileMajor, MinClassFileMajorVersion),
			Op:      "resolver.CheckPlatformVersion",
		}
	}
	if info.Release == "" {
		return nil
	}
	v, err := semver.NewVersion(info.Release)
	if err != nil {
		return nil // informational only; an unparsable release string isn't fatal
	}
	wantFeature := int64(classFileMajor - 44) // class-file major version = feature release + 44
	if v.Major() < wantFeature {
		return &modcut.Error{
			Kind:    modcut.ErrMissingModule,
			Message: fmt.Sprintf("running platform %s predates feature release %d required by a class file", info.Release, wantFeature),
			Op:      "resolver.CheckPlatformVersion",
		}
	}
	return nil
}
