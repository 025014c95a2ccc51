package localescan

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zip"

	"github.com/modcut/modcut"
	"github.com/modcut/modcut/archive"
)

// buildClassFile assembles a minimal class file whose <clinit> optionally
// contains a getstatic of localeClass.field, and whose constant pool always
// carries a reference to extraType (used to exercise Tier-2 TypeRef hits via
// the superclass slot when field == "").
func buildClassFile(t *testing.T, thisClass, extraType, field string) []byte {
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
	fieldref := func(owner, name, desc string) uint16 {
		ci := class(owner)
		ni := utf8(name)
		di := utf8(desc)
		nt := add([]byte{12, byte(ni >> 8), byte(ni), byte(di >> 8), byte(di)})
		return add([]byte{9, byte(ci >> 8), byte(ci), byte(nt >> 8), byte(nt)})
	}

	thisIdx := class(thisClass)
	superIdx := class(extraType)

	var methodName, methodDesc, codeAttrName uint16
	var code []byte
	if field != "" {
		frIdx := fieldref(localeClass, field, "Ljava/util/Locale;")
		methodName = utf8("<clinit>")
		methodDesc = utf8("()V")
		codeAttrName = utf8("Code")
		code = []byte{0xb2, byte(frIdx >> 8), byte(frIdx), 0xb1} // getstatic #frIdx; return
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

	if field == "" {
		u2(0) // methods_count
		u2(0) // attributes_count
		return out.Bytes()
	}

	u2(1)      // methods_count
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

func TestTriggerSetExcludesEnglishAndRoot(t *testing.T) {
	for _, field := range []string{"ENGLISH", "UK", "US", "CANADA", "ROOT"} {
		if _, ok := tier1TriggerFields[field]; ok {
			t.Errorf("tier1TriggerFields contains %s, want excluded", field)
		}
	}
	for _, field := range []string{"FRENCH", "GERMANY", "JAPAN", "SIMPLIFIED_CHINESE", "CANADA_FRENCH"} {
		if _, ok := tier1TriggerFields[field]; !ok {
			t.Errorf("tier1TriggerFields missing %s, want included", field)
		}
	}
}

func TestScanTier1DefiniteEmitsModule(t *testing.T) {
	class := buildClassFile(t, "com/example/Widget", "java/lang/Object", "FRENCH")
	ar := openTestJar(t, map[string][]byte{"com/example/Widget.class": class})
	res := Scan([]*archive.Reader{ar})
	if res.Confidence != modcut.ConfidenceDefinite {
		t.Errorf("Confidence = %v, want %v", res.Confidence, modcut.ConfidenceDefinite)
	}
	if !res.Modules().Has(LocaleDataModule) {
		t.Errorf("Modules() = %v, want %s", res.Modules().Sorted(), LocaleDataModule)
	}
	if len(res.Tier1Hits) == 0 {
		t.Error("Tier1Hits is empty, want a FRENCH hit")
	}
	if len(res.ArchivesImplicated) != 1 {
		t.Errorf("ArchivesImplicated = %v, want exactly one archive", res.ArchivesImplicated)
	}
}

func TestScanTier2StrongIsAdvisoryOnly(t *testing.T) {
	class := buildClassFile(t, "com/example/Widget", "java/text/Collator", "")
	ar := openTestJar(t, map[string][]byte{"com/example/Widget.class": class})
	res := Scan([]*archive.Reader{ar})
	if res.Confidence != modcut.ConfidenceStrong {
		t.Errorf("Confidence = %v, want %v", res.Confidence, modcut.ConfidenceStrong)
	}
	if res.Modules().Has(LocaleDataModule) {
		t.Error("Modules() contains LocaleDataModule, want advisory-only Tier 2 to not emit it")
	}
	if len(res.Tier2Hits) == 0 {
		t.Error("Tier2Hits is empty, want a Collator hit")
	}
}

func TestScanTier3PossibleFromBareLocaleReference(t *testing.T) {
	class := buildClassFile(t, "com/example/Widget", localeClass, "")
	ar := openTestJar(t, map[string][]byte{"com/example/Widget.class": class})
	res := Scan([]*archive.Reader{ar})
	if res.Confidence != modcut.ConfidencePossible {
		t.Errorf("Confidence = %v, want %v", res.Confidence, modcut.ConfidencePossible)
	}
	if res.Modules().Has(LocaleDataModule) {
		t.Error("Modules() contains LocaleDataModule, want Tier 3 to not emit it")
	}
	if len(res.Tier3Hits) == 0 {
		t.Error("Tier3Hits is empty, want a bare Locale reference hit")
	}
}

func TestScanNoEvidence(t *testing.T) {
	class := buildClassFile(t, "com/example/Widget", "java/lang/Object", "")
	ar := openTestJar(t, map[string][]byte{"com/example/Widget.class": class})
	res := Scan([]*archive.Reader{ar})
	if res.Confidence != modcut.ConfidenceNone {
		t.Errorf("Confidence = %v, want %v", res.Confidence, modcut.ConfidenceNone)
	}
	if len(res.ArchivesImplicated) != 0 {
		t.Errorf("ArchivesImplicated = %v, want none", res.ArchivesImplicated)
	}
}

func TestScanHighestTierAcrossArchives(t *testing.T) {
	weak := buildClassFile(t, "com/example/A", localeClass, "")
	strong := buildClassFile(t, "com/example/B", "java/lang/Object", "GERMAN")
	ar1 := openTestJar(t, map[string][]byte{"com/example/A.class": weak})
	ar2 := openTestJar(t, map[string][]byte{"com/example/B.class": strong})
	res := Scan([]*archive.Reader{ar1, ar2})
	if res.Confidence != modcut.ConfidenceDefinite {
		t.Errorf("Confidence = %v, want %v (highest tier across archives)", res.Confidence, modcut.ConfidenceDefinite)
	}
	if len(res.ArchivesImplicated) != 2 {
		t.Errorf("ArchivesImplicated = %v, want both archives", res.ArchivesImplicated)
	}
}
