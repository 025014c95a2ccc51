package classfile

// Constant pool tags, JVM class file format (magic 0xCAFEBABE), constant
// pool section.
const (
	tagUtf8               = 1
	tagInteger            = 3
	tagFloat              = 4
	tagLong               = 5
	tagDouble             = 6
	tagClass              = 7
	tagString             = 8
	tagFieldref           = 9
	tagMethodref          = 10
	tagInterfaceMethodref = 11
	tagNameAndType        = 12
	tagMethodHandle       = 15
	tagMethodType         = 16
	tagDynamic            = 17
	tagInvokeDynamic      = 18
	tagModule             = 19
	tagPackage            = 20
)

// cpEntry is one constant pool slot. Only the fields relevant to the tag are
// populated; the rest are zero.
type cpEntry struct {
	tag uint8

	utf8 string // tagUtf8

	classNameIndex uint16 // tagClass, tagModule, tagPackage (name_index)

	refClassIndex       uint16 // tagFieldref/Methodref/InterfaceMethodref
	refNameAndTypeIndex uint16

	ntNameIndex uint16 // tagNameAndType
	ntDescIndex uint16

	stringIndex uint16 // tagString

	// present but unresolved further: Integer/Float/Long/Double,
	// MethodHandle, MethodType, Dynamic/InvokeDynamic. The walker doesn't
	// need their values, only correct pool-slot accounting (Long/Double
	// occupy two slots).
}

// constantPool holds the parsed entries, 1-indexed per the class file format
// (index 0 is unused).
type constantPool struct {
	entries []cpEntry
}

func (cp *constantPool) get(idx uint16) (cpEntry, bool) {
	if int(idx) <= 0 || int(idx) >= len(cp.entries) {
		return cpEntry{}, false
	}
	return cp.entries[idx], true
}

// utf8At resolves a CP index that must point at a Utf8 entry.
func (cp *constantPool) utf8At(idx uint16) (string, error) {
	e, ok := cp.get(idx)
	if !ok {
		return "", malformedf("constant pool index %d out of range", idx)
	}
	if e.tag != tagUtf8 {
		return "", malformedf("constant pool index %d is not Utf8 (tag %d)", idx, e.tag)
	}
	return e.utf8, nil
}

// classNameAt resolves a CP index that must point at a Class entry, and
// returns the class's internal-form (slash-separated) name.
func (cp *constantPool) classNameAt(idx uint16) (string, error) {
	e, ok := cp.get(idx)
	if !ok {
		return "", malformedf("constant pool index %d out of range", idx)
	}
	if e.tag != tagClass {
		return "", malformedf("constant pool index %d is not Class (tag %d)", idx, e.tag)
	}
	return cp.utf8At(e.classNameIndex)
}

// read parses the constant_pool_count-1 entries of a class file into cp.
func (cp *constantPool) read(r *byteReader) error {
	count, err := r.u2()
	if err != nil {
		return err
	}
	if count == 0 {
		return malformed("constant_pool_count must be >= 1")
	}
	// Index 0 is unused; entries run 1..count-1.
	cp.entries = make([]cpEntry, count)
	for i := 1; i < int(count); i++ {
		tag, err := r.u1()
		if err != nil {
			return err
		}
		e := cpEntry{tag: tag}
		switch tag {
		case tagUtf8:
			length, err := r.u2()
			if err != nil {
				return err
			}
			b, err := r.bytes(int(length))
			if err != nil {
				return err
			}
			e.utf8 = string(b)
		case tagInteger, tagFloat:
			if _, err := r.bytes(4); err != nil {
				return err
			}
		case tagLong, tagDouble:
			if _, err := r.bytes(8); err != nil {
				return err
			}
		case tagClass, tagModule, tagPackage:
			idx, err := r.u2()
			if err != nil {
				return err
			}
			e.classNameIndex = idx
		case tagString:
			idx, err := r.u2()
			if err != nil {
				return err
			}
			e.stringIndex = idx
		case tagFieldref, tagMethodref, tagInterfaceMethodref:
			ci, err := r.u2()
			if err != nil {
				return err
			}
			nt, err := r.u2()
			if err != nil {
				return err
			}
			e.refClassIndex, e.refNameAndTypeIndex = ci, nt
		case tagNameAndType:
			ni, err := r.u2()
			if err != nil {
				return err
			}
			di, err := r.u2()
			if err != nil {
				return err
			}
			e.ntNameIndex, e.ntDescIndex = ni, di
		case tagMethodHandle:
			if _, err := r.u1(); err != nil {
				return err
			}
			if _, err := r.u2(); err != nil {
				return err
			}
		case tagMethodType:
			if _, err := r.u2(); err != nil {
				return err
			}
		case tagDynamic, tagInvokeDynamic:
			if _, err := r.u2(); err != nil {
				return err
			}
			if _, err := r.u2(); err != nil {
				return err
			}
		default:
			return malformedf("unknown constant pool tag %d at index %d", tag, i)
		}
		cp.entries[i] = e
		// Long and Double entries occupy two consecutive pool slots; the
		// slot after is unusable (JVMS 4.4.5).
		if tag == tagLong || tag == tagDouble {
			i++
		}
	}
	return nil
}
