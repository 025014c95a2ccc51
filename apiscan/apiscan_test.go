package apiscan

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zip"

	"github.com/modcut/modcut/archive"
)

// buildClassFile hand-assembles a minimal class file: this_class extends
// superclass, no fields/methods/interfaces/attributes beyond that.
func buildClassFile(t *testing.T, thisClass, superClass string) []byte {
	t.Helper()

	var pool [][]byte
	add := func(e []byte) uint16 {
		pool = append(pool, e)
		return uint16(len(pool))
	}
	utf8 := func(s string) uint16 {
		b := []byte{1, 0, 0}
		b[1] = byte(len(s) >> 8)
		b[2] = byte(len(s))
		b = append(b, []byte(s)...)
		return add(b)
	}
	class := func(name string) uint16 {
		ni := utf8(name)
		return add([]byte{7, byte(ni >> 8), byte(ni)})
	}

	thisIdx := class(thisClass)
	superIdx := class(superClass)

	var out bytes.Buffer
	out.Write([]byte{0xCA, 0xFE, 0xBA, 0xBE})
	out.Write([]byte{0, 0, 0, 61}) // minor, major (Java 17)
	cpCount := uint16(len(pool) + 1)
	out.Write([]byte{byte(cpCount >> 8), byte(cpCount)})
	for _, e := range pool {
		out.Write(e)
	}
	out.Write([]byte{0x00, 0x21})                             // access_flags (public super)
	out.Write([]byte{byte(thisIdx >> 8), byte(thisIdx)})       // this_class
	out.Write([]byte{byte(superIdx >> 8), byte(superIdx)})     // super_class
	out.Write([]byte{0, 0})                                   // interfaces_count
	out.Write([]byte{0, 0})                                   // fields_count
	out.Write([]byte{0, 0})                                   // methods_count
	out.Write([]byte{0, 0})                                   // attributes_count
	return out.Bytes()
}

func openTestJar(t *testing.T, entries map[string][]byte) *archive.Reader {
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
		w.Write(content)
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

func TestScanFindsModuleViaSuperclass(t *testing.T) {
	class := buildClassFile(t, "com/example/MyDriver", "java/sql/Connection")
	ar := openTestJar(t, map[string][]byte{"com/example/MyDriver.class": class})

	res := Scan([]*archive.Reader{ar})
	if !res.Modules.Has("java.sql") {
		t.Errorf("Scan() modules = %v, want java.sql", res.Modules.Sorted())
	}
	if len(res.Warnings) != 0 {
		t.Errorf("Scan() warnings = %v, want none", res.Warnings)
	}
}

func TestScanIgnoresNonPlatformSuperclass(t *testing.T) {
	class := buildClassFile(t, "com/example/Widget", "com/example/Base")
	ar := openTestJar(t, map[string][]byte{"com/example/Widget.class": class})

	res := Scan([]*archive.Reader{ar})
	if len(res.Modules) != 0 {
		t.Errorf("Scan() modules = %v, want empty for application-only superclass", res.Modules.Sorted())
	}
}

func TestScanSkipsModuleInfoEntries(t *testing.T) {
	class := buildClassFile(t, "com/example/Widget", "java/lang/Object")
	ar := openTestJar(t, map[string][]byte{
		"com/example/Widget.class": class,
		"module-info.class":        []byte("not a real descriptor, should never be decoded here"),
	})

	res := Scan([]*archive.Reader{ar})
	if len(res.Warnings) != 0 {
		t.Errorf("Scan() warnings = %v, want module-info.class skipped rather than failing to decode", res.Warnings)
	}
}
