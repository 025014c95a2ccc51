// Package classfile decodes JVM class files (JVMS chapter 4) far enough to
// report every class name and string literal a class references, without
// building a full parse tree. Callers interested in more structure than the
// Visitor callbacks provide should reach for a dedicated bytecode library;
// this package exists only to feed the module-requirement analyzers upstream.
package classfile

import (
	"encoding/binary"
	"io"
)

const (
	magic = 0xCAFEBABE

	attrCode          = "Code"
	attrConstantValue = "ConstantValue"
	attrExceptions    = "Exceptions"
)

// Visitor receives callbacks as Walk decodes a class file. Any field may be
// left nil; Walk skips the corresponding callback.
type Visitor struct {
	// TypeRef is called once per class name referenced anywhere in the
	// class: the superclass, interfaces, field and method descriptors,
	// bytecode operands (new, checkcast, instanceof, invoke*, get/put
	// field, multianewarray), and exception handler catch types. Names
	// are internal form ("java/lang/Object"), never array or primitive
	// descriptors.
	TypeRef func(name string)

	// String is called once per String constant loaded by an ldc/ldc_w
	// instruction and per Utf8 constant otherwise reachable as a loaded
	// value. It is not called for every Utf8 entry in the constant pool,
	// only ones actually used as a loadable constant.
	String func(value string)

	// StaticFieldGet is called once per getstatic instruction with the
	// owning class (internal form) and the field's name. TypeRef already
	// reports the owner separately; this callback exists for analyzers
	// that need the field name too (e.g. distinguishing
	// Locale.FRENCH from Locale.ENGLISH).
	StaticFieldGet func(owner, name string)
}

func (v Visitor) typeRef(name string) {
	if v.TypeRef == nil || name == "" {
		return
	}
	if name[0] == '[' {
		// Array class constants (anewarray, checkcast, ldc of an array
		// class) carry a descriptor; report its element class, if any.
		for _, n := range typeRefsInDescriptor(name) {
			v.TypeRef(n)
		}
		return
	}
	v.TypeRef(name)
}

func (v Visitor) str(value string) {
	if v.String != nil {
		v.String(value)
	}
}

func (v Visitor) staticFieldGet(owner, name string) {
	if v.StaticFieldGet != nil && owner != "" {
		v.StaticFieldGet(owner, name)
	}
}

// Walk parses the class file read from r, invoking v's callbacks for every
// type and string constant it encounters. It never panics: adversarial or
// truncated input surfaces as an error wrapping ErrMalformed, and the caller
// is expected to skip the entry and continue.
func Walk(r io.Reader, v Visitor) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = malformedf("panic decoding class file: %v", p)
		}
	}()

	buf, readErr := io.ReadAll(r)
	if readErr != nil {
		return malformedf("reading class file: %w", readErr)
	}
	br := newByteReader(buf)

	got, err := br.u4()
	if err != nil {
		return err
	}
	if got != magic {
		return malformedf("bad magic %#x", got)
	}
	if err := br.skip(4); err != nil { // minor_version, major_version
		return err
	}

	var cp constantPool
	if err := cp.read(br); err != nil {
		return err
	}

	if err := br.skip(2); err != nil { // access_flags
		return err
	}
	thisClass, err := br.u2()
	if err != nil {
		return err
	}
	if name, err := cp.classNameAt(thisClass); err == nil {
		v.typeRef(name)
	}
	superClass, err := br.u2()
	if err != nil {
		return err
	}
	if superClass != 0 {
		if name, err := cp.classNameAt(superClass); err == nil {
			v.typeRef(name)
		}
	}

	ifaceCount, err := br.u2()
	if err != nil {
		return err
	}
	for i := 0; i < int(ifaceCount); i++ {
		idx, err := br.u2()
		if err != nil {
			return err
		}
		if name, err := cp.classNameAt(idx); err == nil {
			v.typeRef(name)
		}
	}

	fieldCount, err := br.u2()
	if err != nil {
		return err
	}
	for i := 0; i < int(fieldCount); i++ {
		if err := walkMember(br, &cp, v, true); err != nil {
			return err
		}
	}

	methodCount, err := br.u2()
	if err != nil {
		return err
	}
	for i := 0; i < int(methodCount); i++ {
		if err := walkMember(br, &cp, v, false); err != nil {
			return err
		}
	}

	// Class-level attributes (SourceFile, InnerClasses, etc.) carry nothing
	// the analyzers need; skip them wholesale.
	return skipAttributes(br, &cp, v)
}

// walkMember parses one field_info or method_info structure; the shapes are
// identical up to attribute interpretation (JVMS 4.5, 4.6).
func walkMember(br *byteReader, cp *constantPool, v Visitor, isField bool) error {
	if err := br.skip(2); err != nil { // access_flags
		return err
	}
	if _, err := br.u2(); err != nil { // name_index
		return err
	}
	descIdx, err := br.u2()
	if err != nil {
		return err
	}
	desc, err := cp.utf8At(descIdx)
	if err == nil {
		for _, name := range typeRefsInDescriptor(desc) {
			v.typeRef(name)
		}
	}

	attrCount, err := br.u2()
	if err != nil {
		return err
	}
	for i := 0; i < int(attrCount); i++ {
		nameIdx, err := br.u2()
		if err != nil {
			return err
		}
		length, err := br.u4()
		if err != nil {
			return err
		}
		body, err := br.bytes(int(length))
		if err != nil {
			return err
		}
		attrName, _ := cp.utf8At(nameIdx)

		switch {
		case isField && attrName == attrConstantValue:
			if len(body) >= 2 {
				idx := binary.BigEndian.Uint16(body)
				if e, ok := cp.get(idx); ok && e.tag == tagString {
					if s, err := cp.utf8At(e.stringIndex); err == nil {
						v.str(s)
					}
				}
			}
		case !isField && attrName == attrExceptions:
			walkExceptionsAttr(body, cp, v)
		case !isField && attrName == attrCode:
			if err := walkCodeAttr(body, cp, v); err != nil {
				return err
			}
		}
	}
	return nil
}

func walkExceptionsAttr(body []byte, cp *constantPool, v Visitor) {
	if len(body) < 2 {
		return
	}
	n := binary.BigEndian.Uint16(body)
	body = body[2:]
	for i := 0; i < int(n) && len(body) >= 2; i++ {
		idx := binary.BigEndian.Uint16(body)
		body = body[2:]
		if name, err := cp.classNameAt(idx); err == nil {
			v.typeRef(name)
		}
	}
}

// walkCodeAttr parses a Code attribute body: max_stack, max_locals,
// code_length, code[], exception_table, then nested attributes (JVMS 4.7.3).
// Nested attributes (LineNumberTable etc.) carry nothing of interest and are
// skipped via skipAttributes.
func walkCodeAttr(body []byte, cp *constantPool, v Visitor) error {
	br := newByteReader(body)
	if err := br.skip(4); err != nil { // max_stack, max_locals
		return err
	}
	codeLen, err := br.u4()
	if err != nil {
		return err
	}
	code, err := br.bytes(int(codeLen))
	if err != nil {
		return err
	}
	if err := walkInstructions(code, cp, v); err != nil {
		return err
	}

	excCount, err := br.u2()
	if err != nil {
		return err
	}
	for i := 0; i < int(excCount); i++ {
		if err := br.skip(4); err != nil { // start_pc, end_pc
			return err
		}
		if err := br.skip(2); err != nil { // handler_pc
			return err
		}
		catchType, err := br.u2()
		if err != nil {
			return err
		}
		if catchType != 0 { // 0 means "any" (finally block)
			if name, err := cp.classNameAt(catchType); err == nil {
				v.typeRef(name)
			}
		}
	}

	return skipAttributes(br, cp, v)
}

// skipAttributes reads and discards a trailing attributes_count + attributes
// section; nothing in these is relevant once the specific attributes this
// package cares about (Code, ConstantValue, Exceptions) have been consumed.
func skipAttributes(br *byteReader, cp *constantPool, v Visitor) error {
	count, err := br.u2()
	if err != nil {
		return err
	}
	for i := 0; i < int(count); i++ {
		if _, err := br.u2(); err != nil { // attribute_name_index
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

// walkInstructions decodes the bytecode array of a single method, emitting
// Visitor callbacks for every instruction that carries a class or string
// reference. Offsets are tracked from the start of the code array because
// tableswitch/lookupswitch padding is computed relative to it.
func walkInstructions(code []byte, cp *constantPool, v Visitor) error {
	pos := 0
	for pos < len(code) {
		op := code[pos]

		switch op {
		case opTableswitch, opLookupswitch:
			n, err := walkSwitch(code, pos, op)
			if err != nil {
				return err
			}
			pos += n
			continue
		case opWide:
			n, err := widenedLen(code, pos)
			if err != nil {
				return err
			}
			pos += n
			continue
		}

		length, ok := fixedInstrLen[op]
		if !ok {
			return malformedf("unknown opcode %#x at offset %d", op, pos)
		}
		if pos+length > len(code) {
			return malformed("instruction runs past end of code array")
		}
		operand := code[pos+1 : pos+length]

		switch op {
		case opLdc:
			if len(operand) >= 1 {
				resolveLoadableConstant(cp, uint16(operand[0]), v)
			}
		case opLdcW:
			if len(operand) >= 2 {
				resolveLoadableConstant(cp, binary.BigEndian.Uint16(operand), v)
			}
		case opGetstatic:
			resolveStaticFieldGet(cp, be16(operand), v)
		case opPutstatic, opGetfield, opPutfield:
			resolveMemberOwner(cp, be16(operand), v)
		case opInvokevirtual, opInvokespecial, opInvokestatic:
			resolveMemberOwner(cp, be16(operand), v)
		case opInvokeinterface:
			if len(operand) >= 2 {
				resolveMemberOwner(cp, be16(operand[:2]), v)
			}
		case opNew, opAnewarray, opCheckcast, opInstanceof:
			if name, err := cp.classNameAt(be16(operand)); err == nil {
				v.typeRef(name)
			}
		case opMultianewarray:
			if len(operand) >= 2 {
				if name, err := cp.classNameAt(be16(operand[:2])); err == nil {
					v.typeRef(name)
				}
			}
		}

		pos += length
	}
	return nil
}

func be16(b []byte) uint16 {
	if len(b) < 2 {
		return 0
	}
	return binary.BigEndian.Uint16(b[:2])
}

// resolveLoadableConstant handles ldc/ldc_w operands, which may name a
// String or a Class literal (JVMS 4.4.1, ldc since Java 5 permits Class,
// MethodType, and MethodHandle constants too; only String and Class carry
// information this package reports).
func resolveLoadableConstant(cp *constantPool, idx uint16, v Visitor) {
	e, ok := cp.get(idx)
	if !ok {
		return
	}
	switch e.tag {
	case tagString:
		if s, err := cp.utf8At(e.stringIndex); err == nil {
			v.str(s)
		}
	case tagClass:
		if name, err := cp.utf8At(e.classNameIndex); err == nil {
			v.typeRef(name)
		}
	}
}

// resolveStaticFieldGet resolves a getstatic operand's Fieldref: reports the
// owning class as a type reference (as resolveMemberOwner does for every
// other member instruction) and additionally resolves the field's own name
// for StaticFieldGet.
func resolveStaticFieldGet(cp *constantPool, idx uint16, v Visitor) {
	e, ok := cp.get(idx)
	if !ok || e.tag != tagFieldref {
		return
	}
	owner, err := cp.classNameAt(e.refClassIndex)
	if err != nil {
		return
	}
	v.typeRef(owner)
	nt, ok := cp.get(e.refNameAndTypeIndex)
	if !ok || nt.tag != tagNameAndType {
		return
	}
	if name, err := cp.utf8At(nt.ntNameIndex); err == nil {
		v.staticFieldGet(owner, name)
	}
}

// resolveMemberOwner resolves a Fieldref/Methodref/InterfaceMethodref CP
// index to its owning class and reports that class as a type reference.
func resolveMemberOwner(cp *constantPool, idx uint16, v Visitor) {
	e, ok := cp.get(idx)
	if !ok {
		return
	}
	switch e.tag {
	case tagFieldref, tagMethodref, tagInterfaceMethodref:
		if name, err := cp.classNameAt(e.refClassIndex); err == nil {
			v.typeRef(name)
		}
	}
}

// walkSwitch returns the total instruction length (including padding) of a
// tableswitch or lookupswitch starting at code[pos] (JVMS 6.5 tableswitch,
// lookupswitch). Neither instruction carries a class or string reference;
// only correct length matters so later instructions decode at the right
// offset.
func walkSwitch(code []byte, pos int, op byte) (int, error) {
	padEnd := pos + 1
	for padEnd%4 != 0 {
		padEnd++
	}
	if padEnd+4 > len(code) {
		return 0, malformed("truncated switch instruction")
	}
	cursor := padEnd + 4 // skip default offset

	switch op {
	case opTableswitch:
		if cursor+8 > len(code) {
			return 0, malformed("truncated tableswitch bounds")
		}
		low := int32(binary.BigEndian.Uint32(code[cursor:]))
		high := int32(binary.BigEndian.Uint32(code[cursor+4:]))
		cursor += 8
		if high < low {
			return 0, malformed("tableswitch high < low")
		}
		n := int(high-low) + 1
		cursor += n * 4
	case opLookupswitch:
		if cursor+4 > len(code) {
			return 0, malformed("truncated lookupswitch npairs")
		}
		npairs := int32(binary.BigEndian.Uint32(code[cursor:]))
		if npairs < 0 {
			return 0, malformed("negative lookupswitch npairs")
		}
		cursor += 4
		cursor += int(npairs) * 8
	}
	if cursor > len(code) {
		return 0, malformed("switch instruction runs past end of code array")
	}
	return cursor - pos, nil
}

// widenedLen returns the total length of a wide-prefixed instruction (JVMS
// 6.5 wide). wide doubles the index operand of a local-variable instruction
// to 2 bytes, or, prefixing iinc, a 2-byte index plus a 2-byte constant.
func widenedLen(code []byte, pos int) (int, error) {
	if pos+2 > len(code) {
		return 0, malformed("truncated wide instruction")
	}
	inner := code[pos+1]
	if inner == 0x84 { // iinc
		if pos+6 > len(code) {
			return 0, malformed("truncated wide iinc")
		}
		return 6, nil
	}
	if pos+4 > len(code) {
		return 0, malformed("truncated wide instruction")
	}
	return 4, nil
}
