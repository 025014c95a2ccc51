// Package serviceprovider implements ServiceProviderScanner: it enumerates
// META-INF/services/* entries, which declare Java's ServiceLoader provider
// interfaces by filename, and maps known service interfaces to the platform
// modules that define them (spec.md §4.6). Grounded on archive.Reader's
// entry-enumeration API.
package serviceprovider

import (
	"strings"

	"github.com/modcut/modcut"
	"github.com/modcut/modcut/archive"
)

const servicesDir = "META-INF/services/"

// knownServices is the explicit service-interface FQCN -> module table
// (spec.md §4.6(a)). Not exhaustive: unlisted interfaces fall through to the
// package-prefix table below, and anything matching neither is advisory
// only.
var knownServices = map[string]modcut.ModuleName{
	"java.sql.Driver":                            "java.sql",
	"javax.sql.DataSource":                       "java.sql",
	"javax.xml.parsers.SAXParserFactory":         "java.xml",
	"javax.xml.parsers.DocumentBuilderFactory":   "java.xml",
	"javax.xml.stream.XMLInputFactory":           "java.xml",
	"javax.xml.stream.XMLOutputFactory":          "java.xml",
	"javax.xml.transform.TransformerFactory":     "java.xml",
	"javax.xml.validation.SchemaFactory":         "java.xml",
	"javax.xml.xpath.XPathFactory":               "java.xml",
	"java.nio.file.spi.FileSystemProvider":       "java.base",
	"java.nio.file.spi.FileTypeDetector":         "java.base",
	"java.security.Provider":                     "java.base",
	"javax.security.auth.spi.LoginModule":        "java.base",
	"java.net.spi.URLStreamHandlerProvider":      "java.base",
	"javax.management.remote.JMXConnectorProvider": "java.management",
	"javax.management.remote.JMXConnectorServerProvider": "java.management",
	"javax.naming.spi.InitialContextFactory":     "java.naming",
	"java.time.chrono.Chronology":                "java.base",
	"javax.script.ScriptEngineFactory":           "java.scripting",
}

// packagePrefixes is the fallback (spec.md §4.6(b)): any service interface
// under one of these packages maps to the paired module even if it isn't in
// knownServices.
var packagePrefixes = []struct {
	prefix string
	module modcut.ModuleName
}{
	{"javax.xml.", "java.xml"},
	{"javax.sql.", "java.sql"},
	{"java.sql.", "java.sql"},
	{"javax.naming.", "java.naming"},
	{"javax.management.", "java.management"},
	{"javax.smartcardio.", "java.smartcardio"},
	{"javax.script.", "java.scripting"},
	{"javax.security.sasl.", "java.security.sasl"},
}

// Result is ServiceProviderScanner's per-run output.
type Result struct {
	Modules modcut.ModuleSet
	// Unknown collects service-interface FQCNs that matched neither the
	// explicit table nor a package prefix, as advisory data (spec.md §4.6:
	// "do not contribute to the module set").
	Unknown []string
}

// Scan enumerates every archive's META-INF/services/ direct entries and
// resolves each declared service interface to a module.
func Scan(archives []*archive.Reader) Result {
	res := Result{Modules: modcut.NewModuleSet()}
	seenUnknown := make(map[string]struct{})

	for _, ar := range archives {
		for _, name := range ar.Entries() {
			iface, ok := serviceInterface(name)
			if !ok {
				continue
			}
			if m, ok := knownServices[iface]; ok {
				res.Modules.Add(m)
				continue
			}
			if m, ok := lookupPrefix(iface); ok {
				res.Modules.Add(m)
				continue
			}
			if _, dup := seenUnknown[iface]; !dup {
				seenUnknown[iface] = struct{}{}
				res.Unknown = append(res.Unknown, iface)
			}
		}
	}
	return res
}

// serviceInterface reports whether name is a direct META-INF/services/ entry
// (not a nested subpath) and, if so, returns the service interface FQCN its
// filename declares.
func serviceInterface(name string) (string, bool) {
	if !strings.HasPrefix(name, servicesDir) {
		return "", false
	}
	rest := name[len(servicesDir):]
	if rest == "" || strings.Contains(rest, "/") {
		return "", false
	}
	return rest, true
}

func lookupPrefix(iface string) (modcut.ModuleName, bool) {
	for _, p := range packagePrefixes {
		if strings.HasPrefix(iface, p.prefix) {
			return p.module, true
		}
	}
	return "", false
}
