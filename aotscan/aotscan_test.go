package aotscan

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zip"

	"github.com/modcut/modcut"
	"github.com/modcut/modcut/archive"
	"github.com/modcut/modcut/platform"
	"github.com/modcut/modcut/reflectscan"
)

type fakePlatform struct {
	available modcut.ModuleSet
	resources map[modcut.ModuleName][]string
}

var _ platform.Platform = (*fakePlatform)(nil)

func (p *fakePlatform) AvailableModules() modcut.ModuleSet { return p.available.Union() }
func (p *fakePlatform) Requires(modcut.ModuleName) (modcut.ModuleSet, bool) {
	return nil, false
}
func (p *fakePlatform) Resources(m modcut.ModuleName) ([]string, error) {
	return p.resources[m], nil
}
func (p *fakePlatform) StaticDeps(context.Context, []string, []string) (modcut.ModuleSet, error) {
	return modcut.NewModuleSet(), nil
}
func (p *fakePlatform) Link(context.Context, platform.LinkOptions) error { return nil }
func (p *fakePlatform) Info() modcut.PlatformInfo                       { return modcut.PlatformInfo{} }

func newIndex() *reflectscan.Index {
	return reflectscan.NewIndex(&fakePlatform{
		available: modcut.NewModuleSet("java.xml"),
		resources: map[modcut.ModuleName][]string{
			"java.xml": {"javax/xml/parsers/SAXParserFactory.class"},
		},
	})
}

func writeTestJar(t *testing.T, entries map[string]string) *archive.Reader {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "test.jar")

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range entries {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		w.Write([]byte(content))
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { f.Close() })
	fi, err := f.Stat()
	if err != nil {
		t.Fatal(err)
	}
	r, err := archive.Open(path, f, fi.Size())
	if err != nil {
		t.Fatal(err)
	}
	return r
}

func TestScanReflectConfig(t *testing.T) {
	ar := writeTestJar(t, map[string]string{
		"META-INF/native-image/com.example/widget/reflect-config.json": `[{"name":"javax.xml.parsers.SAXParserFactory"}]`,
	})
	res := Scan([]*archive.Reader{ar}, newIndex())
	if !res.Modules.Has("java.xml") {
		t.Errorf("Scan() modules = %v, want java.xml", res.Modules.Sorted())
	}
	if len(res.Warnings) != 0 {
		t.Errorf("Scan() warnings = %v, want none", res.Warnings)
	}
}

func TestScanResourceConfig(t *testing.T) {
	ar := writeTestJar(t, map[string]string{
		"META-INF/native-image/com.example/widget/resource-config.json": `{"resources":{"includes":[{"pattern":"javax/xml/parsers/SAXParserFactory.class"}]}}`,
	})
	res := Scan([]*archive.Reader{ar}, newIndex())
	if !res.Modules.Has("java.xml") {
		t.Errorf("Scan() modules = %v, want java.xml", res.Modules.Sorted())
	}
}

func TestScanMalformedJSONIsWarningNotFatal(t *testing.T) {
	ar := writeTestJar(t, map[string]string{
		"META-INF/native-image/com.example/widget/jni-config.json": `{not valid json`,
	})
	res := Scan([]*archive.Reader{ar}, newIndex())
	if len(res.Modules) != 0 {
		t.Errorf("Scan() modules = %v, want empty", res.Modules.Sorted())
	}
	if len(res.Warnings) != 1 {
		t.Fatalf("Scan() warnings = %v, want exactly one", res.Warnings)
	}
}

func TestScanPomProperties(t *testing.T) {
	ar := writeTestJar(t, map[string]string{
		"META-INF/maven/com.example/widget/pom.properties": "groupId=com.example\nartifactId=widget\nversion=1.2.3\n",
	})
	res := Scan([]*archive.Reader{ar}, newIndex())
	if len(res.Coordinates) != 1 {
		t.Fatalf("Scan() coordinates = %v, want exactly one", res.Coordinates)
	}
	c := res.Coordinates[0]
	if c.GroupID != "com.example" || c.ArtifactID != "widget" || c.Version != "1.2.3" {
		t.Errorf("Scan() coordinate = %+v, want com.example/widget/1.2.3", c)
	}
	if c.Purl == "" {
		t.Error("Scan() coordinate has no purl")
	}
	if len(res.Modules) != 0 {
		t.Errorf("Scan() modules = %v, want empty (coordinates are informational only)", res.Modules.Sorted())
	}
}
