package zipfsscan

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zip"

	"github.com/modcut/modcut/archive"
)

func buildClassFile(t *testing.T, thisClass, superClass string, strConst string) []byte {
	t.Helper()
	var pool [][]byte
	add := func(e []byte) uint16 { pool = append(pool, e); return uint16(len(pool)) }
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
	strRef := func(s string) uint16 {
		ni := utf8(s)
		return add([]byte{8, byte(ni >> 8), byte(ni)})
	}

	thisIdx := class(thisClass)
	superIdx := class(superClass)

	var codeAttrName, methodName, methodDesc uint16
	var code []byte
	if strConst != "" {
		sIdx := strRef(strConst)
		codeAttrName = utf8("Code")
		methodName = utf8("<clinit>")
		methodDesc = utf8("()V")
		code = []byte{0x12, byte(sIdx), 0xb1} // ldc #sIdx; return
	}

	var out bytes.Buffer
	u2 := func(v uint16) { out.WriteByte(byte(v >> 8)); out.WriteByte(byte(v)) }

	out.Write([]byte{0xCA, 0xFE, 0xBA, 0xBE})
	out.Write([]byte{0, 0, 0, 61})
	u2(uint16(len(pool) + 1))
	for _, e := range pool {
		out.Write(e)
	}
	u2(0x0021) // access_flags
	u2(thisIdx)
	u2(superIdx)
	u2(0) // interfaces_count
	u2(0) // fields_count

	if strConst == "" {
		u2(0) // methods_count
		u2(0) // attributes_count
		return out.Bytes()
	}

	u2(1) // methods_count
	u2(0x0008) // access_flags (static)
	u2(methodName)
	u2(methodDesc)
	u2(1) // attributes_count (Code)
	u2(codeAttrName)

	var codeBody bytes.Buffer
	cu2 := func(v uint16) { codeBody.WriteByte(byte(v >> 8)); codeBody.WriteByte(byte(v)) }
	cu2(2) // max_stack
	cu2(0) // max_locals
	codeLen := uint32(len(code))
	codeBody.Write([]byte{byte(codeLen >> 24), byte(codeLen >> 16), byte(codeLen >> 8), byte(codeLen)})
	codeBody.Write(code)
	cu2(0) // exception_table_length
	cu2(0) // attributes_count

	length := uint32(codeBody.Len())
	out.Write([]byte{byte(length >> 24), byte(length >> 16), byte(length >> 8), byte(length)})
	out.Write(codeBody.Bytes())
	u2(0) // class attributes_count
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

func TestScanMatchesProviderClass(t *testing.T) {
	class := buildClassFile(t, "com/example/Widget", providerClass, "")
	ar := openTestJar(t, map[string][]byte{"com/example/Widget.class": class})
	res := Scan([]*archive.Reader{ar})
	if !res.Matched {
		t.Error("Scan() = not matched, want matched")
	}
}

func TestScanMatchesJarPrefixString(t *testing.T) {
	class := buildClassFile(t, "com/example/Widget", "java/lang/Object", "jar:file:/x.jar!/y")
	ar := openTestJar(t, map[string][]byte{"com/example/Widget.class": class})
	res := Scan([]*archive.Reader{ar})
	if !res.Matched {
		t.Error("Scan() = not matched, want matched on jar: prefix string")
	}
	if !res.Modules().Has(ZipFilesystemModule) {
		t.Errorf("Modules() = %v, want %s", res.Modules().Sorted(), ZipFilesystemModule)
	}
	if len(res.Patterns) == 0 {
		t.Error("Patterns is empty, want a jar: hit")
	}
	if len(res.Archives) != 1 {
		t.Errorf("Archives = %v, want exactly one archive", res.Archives)
	}
}

func TestScanNoEvidence(t *testing.T) {
	class := buildClassFile(t, "com/example/Widget", "java/lang/Object", "")
	ar := openTestJar(t, map[string][]byte{"com/example/Widget.class": class})
	res := Scan([]*archive.Reader{ar})
	if res.Matched {
		t.Error("Scan() = matched, want not matched")
	}
}
