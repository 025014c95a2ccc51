// Package cryptoscan implements CryptoScanner: a fixed-pattern scan for
// TLS/crypto API usage. A match in any archive emits the platform's crypto
// provider module; Orchestrator applies the crypto_mode override afterward
// (spec.md §4.10). Grounded on the fixed-pattern-matching approach used
// throughout this codebase's archive-identification heuristics, generalized
// from file-extension matching to class-reference matching.
package cryptoscan

import (
	"sort"
	"strings"

	"github.com/modcut/modcut"
	"github.com/modcut/modcut/archive"
	"github.com/modcut/modcut/classfile"
)

// CryptoProviderModule is the platform module supplying the non-base crypto
// providers this scanner's evidence implies (spec.md §4.10's
// "the-crypto-provider-module").
const CryptoProviderModule modcut.ModuleName = "jdk.crypto.ec"

// fixedClasses is the internal-form class name set whose presence as any
// kind of type reference is itself crypto/TLS evidence.
var fixedClasses = map[string]struct{}{
	"javax/net/ssl/SSLContext":          {},
	"javax/net/ssl/SSLSocketFactory":    {},
	"javax/net/ssl/SSLEngine":           {},
	"javax/net/ssl/TrustManagerFactory": {},
	"javax/net/ssl/KeyManagerFactory":   {},
	"javax/crypto/Cipher":               {},
	"javax/crypto/KeyGenerator":         {},
	"javax/crypto/Mac":                  {},
	"javax/crypto/KeyAgreement":         {},
	"java/net/http/HttpClient":          {},
}

var packagePrefixes = []string{
	"javax/net/ssl/",
	"java/net/http/",
	"javax/crypto/",
}

// Result is CryptoScanner's output, shaped to feed modcut.CryptoResult
// directly.
type Result struct {
	Matched            bool
	PatternsMatched    []string
	ArchivesImplicated []string
}

// Modules returns this scan's module contribution before any crypto_mode
// override is applied.
func (r Result) Modules() modcut.ModuleSet {
	if !r.Matched {
		return modcut.NewModuleSet()
	}
	return modcut.NewModuleSet(CryptoProviderModule)
}

// Scan walks every non-descriptor class entry in every archive looking for
// crypto/TLS evidence.
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
		res.PatternsMatched = append(res.PatternsMatched, p)
	}
	for a := range implicated {
		res.ArchivesImplicated = append(res.ArchivesImplicated, a)
	}
	sort.Strings(res.PatternsMatched)
	sort.Strings(res.ArchivesImplicated)
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
	for _, p := range packagePrefixes {
		if strings.HasPrefix(typeName, p) {
			return true
		}
	}
	return false
}
