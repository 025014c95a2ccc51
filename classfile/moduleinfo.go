package classfile

import "io"

// ModuleInfo is the subset of a module-info.class's Module attribute
// (JVMS 4.7.25) the platform adapter needs: the module's own name and its
// requires list. Exports/opens/uses/provides are parsed past but discarded;
// nothing downstream needs them.
type ModuleInfo struct {
	Name     string
	Requires []RequiredModule
}

// RequiredModule is one entry of a Module attribute's requires table.
type RequiredModule struct {
	Name  string
	Flags uint16
}

const attrModule = "Module"

// ReadModuleInfo parses just enough of a module-info.class to recover its
// name and requires list, skipping bytecode entirely (module-info classes
// have no methods with bodies).
func ReadModuleInfo(r io.Reader) (info *ModuleInfo, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = malformedf("panic decoding module-info.class: %v", p)
		}
	}()

	buf, readErr := io.ReadAll(r)
	if readErr != nil {
		return nil, malformedf("reading module-info.class: %w", readErr)
	}
	br := newByteReader(buf)

	got, err := br.u4()
	if err != nil {
		return nil, err
	}
	if got != magic {
		return nil, malformedf("bad magic %#x", got)
	}
	if err := br.skip(4); err != nil {
		return nil, err
	}

	var cp constantPool
	if err := cp.read(br); err != nil {
		return nil, err
	}

	if err := br.skip(2); err != nil { // access_flags
		return nil, err
	}
	if err := br.skip(4); err != nil { // this_class, super_class
		return nil, err
	}

	for _, count := range []string{"interfaces", "fields", "methods"} {
		n, err := br.u2()
		if err != nil {
			return nil, err
		}
		switch count {
		case "interfaces":
			if err := br.skip(int(n) * 2); err != nil {
				return nil, err
			}
		case "fields", "methods":
			for i := 0; i < int(n); i++ {
				if err := skipMember(br); err != nil {
					return nil, err
				}
			}
		}
	}

	attrCount, err := br.u2()
	if err != nil {
		return nil, err
	}
	for i := 0; i < int(attrCount); i++ {
		nameIdx, err := br.u2()
		if err != nil {
			return nil, err
		}
		length, err := br.u4()
		if err != nil {
			return nil, err
		}
		body, err := br.bytes(int(length))
		if err != nil {
			return nil, err
		}
		name, _ := cp.utf8At(nameIdx)
		if name != attrModule {
			continue
		}
		info, err = parseModuleAttr(body, &cp)
		if err != nil {
			return nil, err
		}
	}
	if info == nil {
		return nil, malformed("no Module attribute found")
	}
	return info, nil
}

// skipMember reads past one field_info or method_info structure (identical
// shape) without interpreting descriptors or attributes.
func skipMember(br *byteReader) error {
	if err := br.skip(6); err != nil { // access_flags, name_index, descriptor_index
		return err
	}
	attrCount, err := br.u2()
	if err != nil {
		return err
	}
	for i := 0; i < int(attrCount); i++ {
		if _, err := br.u2(); err != nil {
			return err
		}
		length, err := br.u4()
		if err != nil {
			return err
		}
		if err := br.skip(int(length)); err != nil {
			return err
		}
	}
	return nil
}

func parseModuleAttr(body []byte, cp *constantPool) (*ModuleInfo, error) {
	br := newByteReader(body)
	moduleNameIdx, err := br.u2()
	if err != nil {
		return nil, err
	}
	e, ok := cp.get(moduleNameIdx)
	if !ok || e.tag != tagModule {
		return nil, malformed("Module attribute module_name_index is not a Module constant")
	}
	name, err := cp.utf8At(e.classNameIndex)
	if err != nil {
		return nil, err
	}

	if err := br.skip(4); err != nil { // module_flags, module_version_index
		return nil, err
	}

	reqCount, err := br.u2()
	if err != nil {
		return nil, err
	}
	info := &ModuleInfo{Name: name}
	for i := 0; i < int(reqCount); i++ {
		reqIdx, err := br.u2()
		if err != nil {
			return nil, err
		}
		flags, err := br.u2()
		if err != nil {
			return nil, err
		}
		if err := br.skip(2); err != nil { // requires_version_index
			return nil, err
		}
		re, ok := cp.get(reqIdx)
		if !ok || re.tag != tagModule {
			return nil, malformed("requires entry does not reference a Module constant")
		}
		reqName, err := cp.utf8At(re.classNameIndex)
		if err != nil {
			return nil, err
		}
		info.Requires = append(info.Requires, RequiredModule{Name: reqName, Flags: flags})
	}
	// exports/opens/uses/provides follow but are irrelevant here; the
	// attribute's recorded length already let the caller skip past them.
	return info, nil
}
