// Package reflectscan implements ReflectionScanner: a one-time process-wide
// class_fqcn -> module index built by walking every module a platform ships
// and enumerating its .class resources, then a per-class-entry scan of
// ldc-loaded string constants against that index for strings shaped like a
// reflectively-loaded class name (spec.md §4.8). Grounded on spec.md §4.8's
// own description and on the lazy-singleton-behind-a-lock idiom used
// elsewhere in this codebase for one-time initialization.
package reflectscan

import (
	"strings"
	"sync"

	"github.com/modcut/modcut"
	"github.com/modcut/modcut/archive"
	"github.com/modcut/modcut/classfile"
	"github.com/modcut/modcut/platform"
)

// reflectivePrefixes are the first dotted segments a candidate FQCN must
// start with to even be considered (spec.md §4.8: "whose first segment is
// one of java, javax, jdk, sun, com.sun").
var reflectivePrefixes = []string{"java.", "javax.", "jdk.", "sun.", "com.sun."}

// Index is the lazily-built class_fqcn -> module map. Build it once per
// process and reuse it across archives; the first Lookup builds it under a
// sync.Once, and Lookup is safe for concurrent use (spec.md §5: "lazily initialized
// under one lock; thereafter read-only").
type Index struct {
	once     sync.Once
	buildFn  func() (map[string]modcut.ModuleName, error)
	entries  map[string]modcut.ModuleName
	buildErr error
}

// NewIndex builds an Index that lazily enumerates every module plat ships.
func NewIndex(plat platform.Platform) *Index {
	idx := &Index{}
	idx.buildFn = func() (map[string]modcut.ModuleName, error) {
		out := make(map[string]modcut.ModuleName)
		for m := range plat.AvailableModules() {
			resources, err := plat.Resources(m)
			if err != nil {
				continue // a single unreadable module doesn't invalidate the whole index
			}
			for _, r := range resources {
				if !strings.HasSuffix(r, ".class") {
					continue
				}
				fqcn := strings.ReplaceAll(strings.TrimSuffix(r, ".class"), "/", ".")
				out[fqcn] = m
			}
		}
		return out, nil
	}
	return idx
}

func (idx *Index) ensure() {
	idx.once.Do(func() {
		idx.entries, idx.buildErr = idx.buildFn()
	})
}

// Lookup resolves a fully-qualified class name to its owning module.
func (idx *Index) Lookup(fqcn string) (modcut.ModuleName, bool) {
	idx.ensure()
	m, ok := idx.entries[fqcn]
	return m, ok
}

// Result is ReflectionScanner's per-run output.
type Result struct {
	Modules modcut.ModuleSet
}

// Scan walks every non-descriptor class entry in every archive, feeding
// ldc-loaded string constants through the validity filter and the index.
func Scan(archives []*archive.Reader, idx *Index) Result {
	res := Result{Modules: modcut.NewModuleSet()}

	for _, ar := range archives {
		for _, name := range ar.ClassEntries() {
			scanEntry(ar, name, idx, &res)
		}
	}
	return res
}

func scanEntry(ar *archive.Reader, name string, idx *Index, res *Result) {
	rc, err := ar.OpenEntry(name)
	if err != nil {
		return
	}
	defer rc.Close()

	v := classfile.Visitor{
		String: func(value string) {
			if !looksLikeClassName(value) {
				return
			}
			if m, ok := idx.Lookup(value); ok {
				res.Modules.Add(m)
			}
		},
	}
	_ = classfile.Walk(rc, v) // malformed class files are per-entry recoverable
}

// looksLikeClassName applies spec.md §4.8's validity filter: at least one
// dot, no whitespace/=/ / \, every segment non-empty and identifier-start,
// and the first segment among the reflective prefixes.
func looksLikeClassName(s string) bool {
	if !hasReflectivePrefix(s) {
		return false
	}
	if !strings.Contains(s, ".") {
		return false
	}
	for _, r := range s {
		switch {
		case r == ' ', r == '\t', r == '\n', r == '\r':
			return false
		case r == '=', r == '/', r == '\\':
			return false
		}
	}
	segments := strings.Split(s, ".")
	for _, seg := range segments {
		if seg == "" {
			return false
		}
		if !isIdentifierStart(rune(seg[0])) {
			return false
		}
	}
	return true
}

func hasReflectivePrefix(s string) bool {
	for _, p := range reflectivePrefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

func isIdentifierStart(r rune) bool {
	return r == '_' || r == '$' ||
		(r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}
