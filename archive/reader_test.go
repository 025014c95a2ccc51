package archive

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/klauspost/compress/zip"

	"github.com/modcut/modcut"
)

// buildZip writes a zip archive in memory containing the given name/content
// pairs and returns the bytes.
func buildZip(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range files {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("Create(%q): %v", name, err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatalf("Write(%q): %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zip.Close: %v", err)
	}
	return buf.Bytes()
}

func openTest(t *testing.T, files map[string]string) *Reader {
	t.Helper()
	b := buildZip(t, files)
	r, err := Open("test.jar", bytes.NewReader(b), int64(len(b)))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return r
}

func TestOpenTooSmall(t *testing.T) {
	_, err := Open("tiny.jar", bytes.NewReader([]byte("x")), 1)
	if err == nil {
		t.Fatal("Open: expected error for undersized archive, got nil")
	}
	var me *modcut.Error
	if !errors.As(err, &me) || me.Kind != modcut.ErrCorruptArchive {
		t.Errorf("Open error = %v, want *modcut.Error with Kind ErrCorruptArchive", err)
	}
}

func TestEntriesListsEveryEntry(t *testing.T) {
	r := openTest(t, map[string]string{
		"a/First.class":  "x",
		"a/Second.class": "y",
		"META-INF/MANIFEST.MF": "Manifest-Version: 1.0\r\n",
	})
	entries := r.Entries()
	if len(entries) != 3 {
		t.Fatalf("Entries() = %v, want 3 entries", entries)
	}
}

func TestHasModuleDescriptorRoot(t *testing.T) {
	r := openTest(t, map[string]string{"module-info.class": "x"})
	if !r.HasModuleDescriptor() {
		t.Error("HasModuleDescriptor() = false, want true for root module-info.class")
	}
}

func TestHasModuleDescriptorVersioned(t *testing.T) {
	r := openTest(t, map[string]string{
		"META-INF/versions/11/module-info.class": "x",
	})
	if !r.HasModuleDescriptor() {
		t.Error("HasModuleDescriptor() = false, want true for versioned module-info.class")
	}
}

func TestHasModuleDescriptorAbsent(t *testing.T) {
	r := openTest(t, map[string]string{"com/example/Widget.class": "x"})
	if r.HasModuleDescriptor() {
		t.Error("HasModuleDescriptor() = true, want false")
	}
}

func TestHighestVersionedDescriptor(t *testing.T) {
	r := openTest(t, map[string]string{
		"META-INF/versions/9/module-info.class":  "a",
		"META-INF/versions/17/module-info.class": "b",
		"META-INF/versions/11/module-info.class": "c",
	})
	name, ok := r.HighestVersionedDescriptor()
	if !ok {
		t.Fatal("HighestVersionedDescriptor: ok = false, want true")
	}
	want := "META-INF/versions/17/module-info.class"
	if name != want {
		t.Errorf("HighestVersionedDescriptor() = %q, want %q", name, want)
	}
}

func TestHighestVersionedDescriptorNone(t *testing.T) {
	r := openTest(t, map[string]string{"com/example/Widget.class": "x"})
	if _, ok := r.HighestVersionedDescriptor(); ok {
		t.Error("HighestVersionedDescriptor: ok = true, want false")
	}
}

func TestManifestClasspath(t *testing.T) {
	r := openTest(t, map[string]string{
		"META-INF/MANIFEST.MF": "Manifest-Version: 1.0\r\nClass-Path: lib/a.jar lib/b.jar\r\n\r\n",
	})
	cp, err := r.ManifestClasspath()
	if err != nil {
		t.Fatalf("ManifestClasspath: %v", err)
	}
	want := []string{"lib/a.jar", "lib/b.jar"}
	if len(cp) != len(want) || cp[0] != want[0] || cp[1] != want[1] {
		t.Errorf("ManifestClasspath() = %v, want %v", cp, want)
	}
}

func TestManifestClasspathAbsent(t *testing.T) {
	r := openTest(t, map[string]string{"com/example/Widget.class": "x"})
	cp, err := r.ManifestClasspath()
	if err != nil {
		t.Fatalf("ManifestClasspath: %v", err)
	}
	if cp != nil {
		t.Errorf("ManifestClasspath() = %v, want nil", cp)
	}
}

func TestClassEntriesExcludesModuleInfo(t *testing.T) {
	r := openTest(t, map[string]string{
		"module-info.class":                    "x",
		"META-INF/versions/11/module-info.class": "x",
		"com/example/Widget.class":              "x",
		"META-INF/MANIFEST.MF":                  "Manifest-Version: 1.0\r\n",
	})
	entries := r.ClassEntries()
	if len(entries) != 1 || entries[0] != "com/example/Widget.class" {
		t.Errorf("ClassEntries() = %v, want [com/example/Widget.class]", entries)
	}
}

func TestOpenEntryNotFound(t *testing.T) {
	r := openTest(t, map[string]string{"com/example/Widget.class": "x"})
	_, err := r.OpenEntry("com/example/Missing.class")
	if err == nil {
		t.Fatal("OpenEntry: expected error for missing entry, got nil")
	}
	var me *modcut.Error
	if !errors.As(err, &me) || me.Kind != modcut.ErrInputNotFound {
		t.Errorf("OpenEntry error = %v, want *modcut.Error with Kind ErrInputNotFound", err)
	}
}

func TestOpenEntryReadsContent(t *testing.T) {
	r := openTest(t, map[string]string{"com/example/Widget.class": "bytecode"})
	rc, err := r.OpenEntry("com/example/Widget.class")
	if err != nil {
		t.Fatalf("OpenEntry: %v", err)
	}
	defer rc.Close()
	b, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if string(b) != "bytecode" {
		t.Errorf("entry content = %q, want %q", b, "bytecode")
	}
}

func TestNormNameStripsTraversal(t *testing.T) {
	if got := normName("../../etc/passwd"); got == "../../etc/passwd" {
		t.Errorf("normName did not strip traversal: %q", got)
	}
}
