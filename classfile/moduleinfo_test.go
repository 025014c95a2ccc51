package classfile

import (
	"bytes"
	"encoding/binary"
	"testing"
)

// buildModuleInfo assembles a minimal module-info.class declaring the given
// module name and requires list.
func buildModuleInfo(t *testing.T, name string, requires []string) []byte {
	t.Helper()
	cp := newCPBuilder()
	moduleSelf := cp.module(name)
	reqIdx := make([]uint16, len(requires))
	for i, r := range requires {
		reqIdx[i] = cp.module(r)
	}
	attrName := cp.utf8("Module")

	var attr bytes.Buffer
	binary.Write(&attr, binary.BigEndian, moduleSelf)
	binary.Write(&attr, binary.BigEndian, uint16(0)) // module_flags
	binary.Write(&attr, binary.BigEndian, uint16(0)) // module_version_index
	binary.Write(&attr, binary.BigEndian, uint16(len(requires)))
	for _, idx := range reqIdx {
		binary.Write(&attr, binary.BigEndian, idx)
		binary.Write(&attr, binary.BigEndian, uint16(0x8000)) // ACC_MANDATED, arbitrary
		binary.Write(&attr, binary.BigEndian, uint16(0))
	}
	// exports/opens/uses/provides counts, all zero.
	for i := 0; i < 4; i++ {
		binary.Write(&attr, binary.BigEndian, uint16(0))
	}

	var buf bytes.Buffer
	binary.Write(&buf, binary.BigEndian, uint32(magic))
	binary.Write(&buf, binary.BigEndian, uint16(0))
	binary.Write(&buf, binary.BigEndian, uint16(53))
	buf.Write(cp.bytes())
	binary.Write(&buf, binary.BigEndian, uint16(0x8000)) // access_flags: ACC_MODULE
	binary.Write(&buf, binary.BigEndian, uint16(0))       // this_class: 0 for module-info
	binary.Write(&buf, binary.BigEndian, uint16(0))       // super_class
	binary.Write(&buf, binary.BigEndian, uint16(0))       // interfaces_count
	binary.Write(&buf, binary.BigEndian, uint16(0))       // fields_count
	binary.Write(&buf, binary.BigEndian, uint16(0))       // methods_count
	binary.Write(&buf, binary.BigEndian, uint16(1))       // attributes_count
	binary.Write(&buf, binary.BigEndian, attrName)
	binary.Write(&buf, binary.BigEndian, uint32(attr.Len()))
	buf.Write(attr.Bytes())

	return buf.Bytes()
}

func (b *cpBuilder) module(name string) uint16 {
	nameIdx := b.utf8(name)
	entry := []byte{tagModule}
	entry = binary.BigEndian.AppendUint16(entry, nameIdx)
	return b.add(entry)
}

func TestReadModuleInfo(t *testing.T) {
	data := buildModuleInfo(t, "com.example.widget", []string{"java.base", "java.sql"})
	info, err := ReadModuleInfo(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("ReadModuleInfo: %v", err)
	}
	if info.Name != "com.example.widget" {
		t.Errorf("Name = %q, want com.example.widget", info.Name)
	}
	if len(info.Requires) != 2 {
		t.Fatalf("Requires = %v, want 2 entries", info.Requires)
	}
	if info.Requires[0].Name != "java.base" || info.Requires[1].Name != "java.sql" {
		t.Errorf("Requires = %v, want [java.base java.sql]", info.Requires)
	}
}

func TestReadModuleInfoNoModuleAttribute(t *testing.T) {
	cf := newClassFileBuilder()
	_, err := ReadModuleInfo(bytes.NewReader(cf.build()))
	if err == nil {
		t.Fatal("ReadModuleInfo: expected error for class file with no Module attribute, got nil")
	}
}
