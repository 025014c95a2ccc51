package sbom

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/modcut/modcut"
)

func testEncoder() *Encoder {
	return &Encoder{
		Creators:          []Creator{{Creator: "modcut", CreatorType: "Tool"}},
		DocumentName:      "test-document",
		DocumentNamespace: "https://example.invalid/modcut/test-document",
		DocumentComment:   "generated by a test",
	}
}

type spdxDoc struct {
	Packages []struct {
		Name                  string `json:"name"`
		VersionInfo           string `json:"versionInfo"`
		PrimaryPackagePurpose string `json:"primaryPackagePurpose"`
		ExternalRefs          []struct {
			ReferenceCategory string `json:"referenceCategory"`
			ReferenceType     string `json:"referenceType"`
			ReferenceLocator  string `json:"referenceLocator"`
		} `json:"externalRefs"`
	} `json:"packages"`
}

func decode(t *testing.T, r interface{ Read([]byte) (int, error) }) spdxDoc {
	t.Helper()
	var doc spdxDoc
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		t.Fatalf("decode spdx json: %v", err)
	}
	return doc
}

func TestEncodeEmitsOneModulePackagePerResolvedModule(t *testing.T) {
	res := modcut.AnalysisResult{
		AllModules: modcut.NewModuleSet("java.base", "java.sql"),
	}
	r, err := testEncoder().Encode(context.Background(), res, "21.0.3")
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	doc := decode(t, r)
	if len(doc.Packages) != 2 {
		t.Fatalf("Packages = %d, want 2", len(doc.Packages))
	}
	names := map[string]bool{}
	for _, p := range doc.Packages {
		names[p.Name] = true
		if p.VersionInfo != "21.0.3" {
			t.Errorf("package %s versionInfo = %q, want 21.0.3", p.Name, p.VersionInfo)
		}
		if len(p.ExternalRefs) != 1 || !strings.HasPrefix(p.ExternalRefs[0].ReferenceLocator, "pkg:generic/openjdk-module/") {
			t.Errorf("package %s external refs = %v, want one openjdk-module purl", p.Name, p.ExternalRefs)
		}
	}
	if !names["java.base"] || !names["java.sql"] {
		t.Errorf("package names = %v, want java.base and java.sql", names)
	}
}

func TestEncodeIncludesMavenCoordinates(t *testing.T) {
	res := modcut.AnalysisResult{
		AllModules: modcut.NewModuleSet("java.base"),
		Coordinates: []modcut.MavenCoordinate{
			{GroupID: "com.example", ArtifactID: "widget", Version: "1.2.3", Purl: "pkg:maven/com.example/widget@1.2.3", Source: "META-INF/maven/com.example/widget/pom.properties"},
		},
	}
	r, err := testEncoder().Encode(context.Background(), res, "21.0.3")
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	doc := decode(t, r)
	if len(doc.Packages) != 2 {
		t.Fatalf("Packages = %d, want 2 (1 module + 1 coordinate)", len(doc.Packages))
	}
	var found bool
	for _, p := range doc.Packages {
		if p.Name != "widget" {
			continue
		}
		found = true
		if p.PrimaryPackagePurpose != "SOURCE" {
			t.Errorf("widget purpose = %q, want SOURCE", p.PrimaryPackagePurpose)
		}
		if len(p.ExternalRefs) != 1 || p.ExternalRefs[0].ReferenceLocator != "pkg:maven/com.example/widget@1.2.3" {
			t.Errorf("widget external refs = %v, want the recovered maven purl", p.ExternalRefs)
		}
	}
	if !found {
		t.Error("widget coordinate package missing from document")
	}
}

func TestEncodeWithNoModulesOrCoordinatesProducesEmptyPackageList(t *testing.T) {
	res := modcut.AnalysisResult{AllModules: modcut.NewModuleSet()}
	r, err := testEncoder().Encode(context.Background(), res, "21.0.3")
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	doc := decode(t, r)
	if len(doc.Packages) != 0 {
		t.Errorf("Packages = %d, want 0", len(doc.Packages))
	}
}

func TestModulePurlFormat(t *testing.T) {
	got := ModulePurl("java.sql", "21.0.3")
	want := "pkg:generic/openjdk-module/java.sql@21.0.3"
	if got != want {
		t.Errorf("ModulePurl() = %q, want %q", got, want)
	}
}
