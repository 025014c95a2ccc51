package modcut

// ModuleGraph is the running platform's module-requires graph, built once
// from its module descriptors (spec §3, §4.14). It's immutable after
// construction.
type ModuleGraph struct {
	Available ModuleSet
	Requires  map[ModuleName]ModuleSet
}

// NewModuleGraph builds a ModuleGraph from the given available set and
// requires edges. The requires map is copied defensively; callers may
// continue to mutate whatever map they passed in.
func NewModuleGraph(available ModuleSet, requires map[ModuleName]ModuleSet) *ModuleGraph {
	g := &ModuleGraph{
		Available: make(ModuleSet, len(available)),
		Requires:  make(map[ModuleName]ModuleSet, len(requires)),
	}
	for n := range available {
		g.Available[n] = struct{}{}
	}
	for n, rs := range requires {
		cp := make(ModuleSet, len(rs))
		for r := range rs {
			cp[r] = struct{}{}
		}
		g.Requires[n] = cp
	}
	return g
}

// PlatformInfo describes the running platform's release, used by the
// resolver to gate class-file versions (spec §6: "version ≥ 9").
type PlatformInfo struct {
	// Vendor is an informational string (e.g. "Temurin", "OpenJDK").
	Vendor string
	// Release is the platform's semantic-version-shaped release string
	// (e.g. "21.0.3"), parsed with github.com/Masterminds/semver by the
	// resolver and platform adapter.
	Release string
}
