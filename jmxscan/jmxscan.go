// Package jmxscan implements JmxScanner: evidence of remote JMX management
// usage via a fixed set of internal-form class names plus the whole
// javax/management/remote/ package prefix. Local management API
// (javax/management/ without /remote/) is deliberately excluded (spec.md
// §4.13). Grounded on the fixed-pattern-matching approach used throughout
// this codebase's archive-identification heuristics.
package jmxscan

import (
	"sort"
	"strings"

	"github.com/modcut/modcut"
	"github.com/modcut/modcut/archive"
	"github.com/modcut/modcut/classfile"
)

// RemoteManagementModule is the platform module providing the JMX remote
// management agent (spec.md §4.13's "remote-management-module").
const RemoteManagementModule modcut.ModuleName = "jdk.management.agent"

var fixedClasses = map[string]struct{}{
	"javax/management/remote/JMXConnectorFactory":       {},
	"javax/management/remote/JMXServiceURL":             {},
	"javax/management/remote/JMXConnector":              {},
	"javax/management/remote/JMXConnectorServer":        {},
	"javax/management/remote/JMXConnectorServerFactory": {},
	"javax/management/remote/JMXAuthenticator":          {},
	"javax/management/remote/JMXPrincipal":              {},
	"javax/management/remote/rmi/RMIConnector":          {},
	"javax/management/remote/rmi/RMIConnectorServer":    {},
}

const remotePrefix = "javax/management/remote/"

// Result is JmxScanner's output, shaped to feed modcut.JmxResult directly.
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
	return modcut.NewModuleSet(RemoteManagementModule)
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
			if isEvidence(typeName) {
				hits = append(hits, typeName)
			}
		},
	}
	_ = classfile.Walk(rc, v)
	return hits
}

func isEvidence(typeName string) bool {
	if _, ok := fixedClasses[typeName]; ok {
		return true
	}
	return strings.HasPrefix(typeName, remotePrefix)
}
