// Package sbom turns an Orchestrator's resolved modcut.AnalysisResult into a
// purl-annotated SPDX v2.3 document, the way claircore's own sbom/spdx
// encoder turns an IndexReport into one (grounded directly on
// sbom/spdx/encoder.go's Encoder/parseIndexReport/newSpdxPackageFrom*
// shapes). Every resolved platform module gets a "pkg:generic/openjdk-module"
// purl — spec.md §9.7 supplements what the distillation dropped, an SBOM
// listing the modules that end up in the produced runtime image — and every
// informational Maven coordinate AotMetadataScanner recovered along the way
// rides along as its own "pkg:maven" package.
package sbom

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	purl "github.com/package-url/packageurl-go"
	spdxjson "github.com/spdx/tools-golang/json"
	v2common "github.com/spdx/tools-golang/spdx/v2/common"
	"github.com/spdx/tools-golang/spdx/v2/v2_3"

	"github.com/modcut/modcut"
)

// ModulePurlType is the purl "type" component minted for platform modules.
// The purl spec has no registered type for JDK platform modules, so this
// follows the generic type's documented convention of a vendor-ish namespace
// segment standing in for one.
const ModulePurlType = "generic"

// ModulePurlNamespace namespaces every module purl this package mints.
const ModulePurlNamespace = "openjdk-module"

// ModulePurl builds the purl identifying platform module name on platform
// release version, e.g. "pkg:generic/openjdk-module/java.sql@21.0.3".
func ModulePurl(name modcut.ModuleName, version string) string {
	p := purl.PackageURL{
		Type:      ModulePurlType,
		Namespace: ModulePurlNamespace,
		Name:      string(name),
		Version:   version,
	}
	return p.ToString()
}

// Creator mirrors sbom/spdx/encoder.go's Creator: an SPDX CreationInfo
// creator entry, tagged "Person", "Organization", or "Tool".
type Creator struct {
	Creator     string
	CreatorType string
}

// Encoder assembles an SPDX v2.3 JSON document describing the modules a
// resolved AnalysisResult requires, plus any Maven coordinates recovered
// along the way. The zero value has no creators or document identity; set
// the fields below before calling Encode.
type Encoder struct {
	Creators          []Creator
	DocumentName      string
	DocumentNamespace string
	DocumentComment   string
}

// Encode renders res, resolved against a platform whose release is
// platformVersion, as an SPDX v2.3 document in JSON form.
func (e *Encoder) Encode(ctx context.Context, res modcut.AnalysisResult, platformVersion string) (io.Reader, error) {
	doc, err := e.document(ctx, res, platformVersion)
	if err != nil {
		return nil, err
	}
	buf := &bytes.Buffer{}
	if err := spdxjson.Write(doc, buf); err != nil {
		return nil, fmt.Errorf("sbom: write spdx json: %w", err)
	}
	return buf, nil
}

func (e *Encoder) document(ctx context.Context, res modcut.AnalysisResult, platformVersion string) (*v2_3.Document, error) {
	creators := make([]v2common.Creator, len(e.Creators))
	for i, c := range e.Creators {
		creators[i] = v2common.Creator{Creator: c.Creator, CreatorType: c.CreatorType}
	}

	doc := &v2_3.Document{
		SPDXVersion:       v2_3.Version,
		DataLicense:       v2_3.DataLicense,
		SPDXIdentifier:    "DOCUMENT",
		DocumentName:      e.DocumentName,
		DocumentNamespace: e.DocumentNamespace,
		CreationInfo: &v2_3.CreationInfo{
			Creators: creators,
			Created:  time.Now().UTC().Format("2006-01-02T15:04:05Z"),
		},
		DocumentComment: e.DocumentComment,
	}

	names := res.AllModules.Sorted()
	doc.Packages = make([]*v2_3.Package, 0, len(names)+len(res.Coordinates))
	for _, n := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		doc.Packages = append(doc.Packages, newModulePackage(n, platformVersion))
	}

	for _, c := range res.Coordinates {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		doc.Packages = append(doc.Packages, newCoordinatePackage(c))
	}

	return doc, nil
}

func newModulePackage(name modcut.ModuleName, platformVersion string) *v2_3.Package {
	return &v2_3.Package{
		PackageName:             string(name),
		PackageSPDXIdentifier:   v2common.ElementID("Module-" + sanitizeID(string(name))),
		PackageVersion:          platformVersion,
		PackageDownloadLocation: "NOASSERTION",
		PrimaryPackagePurpose:   "APPLICATION",
		PackageExternalReferences: []*v2_3.PackageExternalReference{
			{Category: "PACKAGE-MANAGER", RefType: "purl", Locator: ModulePurl(name, platformVersion)},
		},
	}
}

func newCoordinatePackage(c modcut.MavenCoordinate) *v2_3.Package {
	id := sanitizeID(c.GroupID + "-" + c.ArtifactID + "-" + c.Version)
	pkg := &v2_3.Package{
		PackageName:             c.ArtifactID,
		PackageSPDXIdentifier:   v2common.ElementID("Coordinate-" + id),
		PackageVersion:          c.Version,
		PackageDownloadLocation: "NOASSERTION",
		PrimaryPackagePurpose:   "SOURCE",
	}
	if c.Purl != "" {
		pkg.PackageExternalReferences = []*v2_3.PackageExternalReference{
			{Category: "PACKAGE-MANAGER", RefType: "purl", Locator: c.Purl},
		}
	}
	return pkg
}

// sanitizeID replaces characters SPDX element IDs disallow (everything but
// letters, digits, '.', and '-') with '-'.
func sanitizeID(s string) string {
	out := make([]byte, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '.', c == '-':
			out[i] = c
		default:
			out[i] = '-'
		}
	}
	return string(out)
}
