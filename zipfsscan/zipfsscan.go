// Package zipfsscan implements ZipFsScanner: evidence of ZIP-filesystem
// usage via two concrete class references and three string-constant shapes
// (spec.md §4.12). Grounded on the fixed-pattern-matching approach used
// throughout this codebase's archive-identification heuristics.
package zipfsscan

import (
	"sort"
	"strings"

	"github.com/modcut/modcut"
	"github.com/modcut/modcut/archive"
	"github.com/modcut/modcut/classfile"
)

// ZipFilesystemModule is the platform module providing the ZIP/JAR
// filesystem provider (spec.md §4.12's "zip-filesystem-module").
const ZipFilesystemModule modcut.ModuleName = "jdk.zipfs"

const (
	factoryClass  = "java/nio/file/FileSystems"
	providerClass = "jdk/nio/zipfs/ZipFileSystemProvider"
)

// Result is ZipFsScanner's output, shaped to feed modcut.ZipFsResult
// directly.
type Result struct {
	Matched  bool
	Patterns []string
	Archives []string
}

// Modules returns this scan's module contribution.
func (r Result) Modules() modcut.ModuleSet {
	if !r.Matched {
		return modcut.NewModuleSet()
	}
	return modcut.NewModuleSet(ZipFilesystemModule)
}

// Scan walks every non-descriptor class entry in every archive.
func Scan(archives []*archive.Reader) Result {
	patterns := make(map[string]struct{})
	implicated := make(map[string]struct{})

	for _, ar := range archives {
		for _, name := range ar.ClassEntries() {
			for _, hit := range entryEvidence(ar, name) {
				patterns[hit] = struct{}{}
				implicated[ar.Path()] = struct{}{}
			}
		}
	}

	res := Result{Matched: len(patterns) > 0}
	for p := range patterns {
		res.Patterns = append(res.Patterns, p)
	}
	for a := range implicated {
		res.Archives = append(res.Archives, a)
	}
	sort.Strings(res.Patterns)
	sort.Strings(res.Archives)
	return res
}

func entryEvidence(ar *archive.Reader, name string) []string {
	rc, err := ar.OpenEntry(name)
	if err != nil {
		return nil
	}
	defer rc.Close()

	var hits []string
	v := classfile.Visitor{
		TypeRef: func(typeName string) {
			if typeName == factoryClass || typeName == providerClass {
				hits = append(hits, typeName)
			}
		},
		String: func(value string) {
			switch {
			case value == "jar", value == "zip":
				hits = append(hits, value)
			case strings.HasPrefix(value, "jar:"):
				hits = append(hits, "jar:")
			}
		},
	}
	_ = classfile.Walk(rc, v)
	return hits
}
