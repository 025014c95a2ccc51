package modcut

import (
	"sort"
	"strings"
)

// ModuleName is an opaque platform module identifier, e.g. "java.sql" or
// "jdk.crypto.ec".
//
// Two reserved prefixes mark "platform" modules: "java." and "jdk.", plus
// platform-specific families such as "javafx." and "oracle.". Names outside
// those families are treated as application modules and are ignored by
// downstream resolution (spec §3).
type ModuleName string

// BaseModule is always present in a resolved module set (spec §3 invariant).
const BaseModule ModuleName = "java.base"

// platformPrefixes lists the reserved family prefixes a ModuleName may carry.
// Order doesn't matter; membership does.
var platformPrefixes = []string{
	"java.",
	"jdk.",
	"javafx.",
	"oracle.",
}

// IsPlatform reports whether n carries one of the reserved platform-module
// prefixes.
func (n ModuleName) IsPlatform() bool {
	s := string(n)
	for _, p := range platformPrefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

// String implements fmt.Stringer.
func (n ModuleName) String() string { return string(n) }

// ModuleSet is a set of ModuleNames, used throughout the scanner outputs.
type ModuleSet map[ModuleName]struct{}

// NewModuleSet builds a ModuleSet from the given names.
func NewModuleSet(names ...ModuleName) ModuleSet {
	s := make(ModuleSet, len(names))
	for _, n := range names {
		s[n] = struct{}{}
	}
	return s
}

// Add inserts n into the set.
func (s ModuleSet) Add(n ModuleName) { s[n] = struct{}{} }

// Has reports whether n is a member of the set.
func (s ModuleSet) Has(n ModuleName) bool {
	_, ok := s[n]
	return ok
}

// Union returns a new set containing every member of s and every other set
// passed in.
func (s ModuleSet) Union(others ...ModuleSet) ModuleSet {
	out := make(ModuleSet, len(s))
	for n := range s {
		out[n] = struct{}{}
	}
	for _, o := range others {
		for n := range o {
			out[n] = struct{}{}
		}
	}
	return out
}

// Subtract returns a new set containing every member of s not present in o.
func (s ModuleSet) Subtract(o ModuleSet) ModuleSet {
	out := make(ModuleSet, len(s))
	for n := range s {
		if !o.Has(n) {
			out[n] = struct{}{}
		}
	}
	return out
}

// Sorted returns the set's members as a lexicographically sorted slice, for
// deterministic output (spec §3, §4.14).
func (s ModuleSet) Sorted() []ModuleName {
	out := make([]ModuleName, 0, len(s))
	for n := range s {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
