// Package apiscan implements ApiUsageScanner: it walks every non-descriptor
// class entry of every archive with classfile.Walk and looks up each type
// reference encountered (superclass, interfaces, descriptors, instruction
// operand owners, exception handler types — everything classfile.Visitor's
// TypeRef callback reports) in modulemap, emitting the matching modules
// (spec.md §4.7). Grounded on classfile's Visitor callbacks.
package apiscan

import (
	"github.com/modcut/modcut"
	"github.com/modcut/modcut/archive"
	"github.com/modcut/modcut/classfile"
	"github.com/modcut/modcut/modulemap"
)

// Result is ApiUsageScanner's output.
type Result struct {
	Modules modcut.ModuleSet
	// Warnings collects per-entry decode failures (malformed class files are
	// recoverable: spec.md's ErrMalformedClass is per-entry, not fatal to
	// the whole scan).
	Warnings []string
}

// Scan walks every non-descriptor .class entry in every archive.
func Scan(archives []*archive.Reader) Result {
	res := Result{Modules: modcut.NewModuleSet()}

	for _, ar := range archives {
		for _, name := range ar.ClassEntries() {
			if err := scanEntry(ar, name, &res); err != nil {
				res.Warnings = append(res.Warnings, ar.Path()+"!"+name+": "+err.Error())
			}
		}
	}
	return res
}

func scanEntry(ar *archive.Reader, name string, res *Result) error {
	rc, err := ar.OpenEntry(name)
	if err != nil {
		return err
	}
	defer rc.Close()

	v := classfile.Visitor{
		TypeRef: func(typeName string) {
			if m, ok := modulemap.Lookup(typeName); ok {
				res.Modules.Add(m)
			}
		},
	}
	return classfile.Walk(rc, v)
}
