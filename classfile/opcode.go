package classfile

// Fixed-length JVM instructions, keyed by opcode, total length including the
// opcode byte itself. tableswitch (0xAA), lookupswitch (0xAB), and wide
// (0xC4) have variable length and are handled separately in walkInstructions.
//
// This table is the standard JVM instruction set (JVMS chapter 6); it hasn't
// changed shape since invokedynamic was added in Java 7.
var fixedInstrLen = map[byte]int{
	0x00: 1, // nop
	0x01: 1, // aconst_null
	0x02: 1, 0x03: 1, 0x04: 1, 0x05: 1, 0x06: 1, 0x07: 1, 0x08: 1, // iconst_m1..5
	0x09: 1, 0x0a: 1, // lconst_0,1
	0x0b: 1, 0x0c: 1, 0x0d: 1, // fconst_0,1,2
	0x0e: 1, 0x0f: 1, // dconst_0,1
	0x10: 2, // bipush
	0x11: 3, // sipush
	0x12: 2, // ldc
	0x13: 3, // ldc_w
	0x14: 3, // ldc2_w
	0x15: 2, // iload
	0x16: 2, // lload
	0x17: 2, // fload
	0x18: 2, // dload
	0x19: 2, // aload
	0x1a: 1, 0x1b: 1, 0x1c: 1, 0x1d: 1, // iload_0..3
	0x1e: 1, 0x1f: 1, 0x20: 1, 0x21: 1, // lload_0..3
	0x22: 1, 0x23: 1, 0x24: 1, 0x25: 1, // fload_0..3
	0x26: 1, 0x27: 1, 0x28: 1, 0x29: 1, // dload_0..3
	0x2a: 1, 0x2b: 1, 0x2c: 1, 0x2d: 1, // aload_0..3
	0x2e: 1, 0x2f: 1, 0x30: 1, 0x31: 1, 0x32: 1, 0x33: 1, 0x34: 1, 0x35: 1, // *aload
	0x36: 2, // istore
	0x37: 2, // lstore
	0x38: 2, // fstore
	0x39: 2, // dstore
	0x3a: 2, // astore
	0x3b: 1, 0x3c: 1, 0x3d: 1, 0x3e: 1, // istore_0..3
	0x3f: 1, 0x40: 1, 0x41: 1, 0x42: 1, // lstore_0..3
	0x43: 1, 0x44: 1, 0x45: 1, 0x46: 1, // fstore_0..3
	0x47: 1, 0x48: 1, 0x49: 1, 0x4a: 1, // dstore_0..3
	0x4b: 1, 0x4c: 1, 0x4d: 1, 0x4e: 1, // astore_0..3
	0x4f: 1, 0x50: 1, 0x51: 1, 0x52: 1, 0x53: 1, 0x54: 1, 0x55: 1, 0x56: 1, // *astore
	0x57: 1, 0x58: 1, // pop, pop2
	0x59: 1, 0x5a: 1, 0x5b: 1, 0x5c: 1, 0x5d: 1, 0x5e: 1, // dup variants
	0x5f: 1,                                                                         // swap
	0x60: 1, 0x61: 1, 0x62: 1, 0x63: 1, 0x64: 1, 0x65: 1, 0x66: 1, 0x67: 1, 0x68: 1, // add/sub/mul
	0x69: 1, 0x6a: 1, 0x6b: 1, 0x6c: 1, 0x6d: 1, 0x6e: 1, 0x6f: 1,
	0x70: 1, 0x71: 1, 0x72: 1, 0x73: 1, 0x74: 1, 0x75: 1, 0x76: 1, 0x77: 1,
	0x78: 1, 0x79: 1, 0x7a: 1, 0x7b: 1, 0x7c: 1, 0x7d: 1, 0x7e: 1, 0x7f: 1,
	0x80: 1, 0x81: 1, 0x82: 1, 0x83: 1, // shift/bitwise ops
	0x84: 3, // iinc
	0x85: 1, 0x86: 1, 0x87: 1, 0x88: 1, 0x89: 1, 0x8a: 1, // conversions
	0x8b: 1, 0x8c: 1, 0x8d: 1, 0x8e: 1, 0x8f: 1, 0x90: 1, 0x91: 1, 0x92: 1, 0x93: 1,
	0x94: 1, 0x95: 1, 0x96: 1, 0x97: 1, 0x98: 1, // comparisons
	0x99: 3, 0x9a: 3, 0x9b: 3, 0x9c: 3, 0x9d: 3, 0x9e: 3, // if<cond>
	0x9f: 3, 0xa0: 3, 0xa1: 3, 0xa2: 3, 0xa3: 3, 0xa4: 3, // if_icmp<cond>
	0xa5: 3, 0xa6: 3, // if_acmp<cond>
	0xa7: 3, // goto
	0xa8: 3, // jsr
	0xa9: 2, // ret
	// 0xaa tableswitch, 0xab lookupswitch: variable, handled separately
	0xac: 1, 0xad: 1, 0xae: 1, 0xaf: 1, 0xb0: 1, 0xb1: 1, // *return
	0xb2: 3, // getstatic
	0xb3: 3, // putstatic
	0xb4: 3, // getfield
	0xb5: 3, // putfield
	0xb6: 3, // invokevirtual
	0xb7: 3, // invokespecial
	0xb8: 3, // invokestatic
	0xb9: 5, // invokeinterface
	0xba: 5, // invokedynamic
	0xbb: 3, // new
	0xbc: 2, // newarray
	0xbd: 3, // anewarray
	0xbe: 1, // arraylength
	0xbf: 1, // athrow
	0xc0: 3, // checkcast
	0xc1: 3, // instanceof
	0xc2: 1, 0xc3: 1, // monitorenter/exit
	// 0xc4 wide: variable, handled separately
	0xc5: 4, // multianewarray
	0xc6: 3, 0xc7: 3, // ifnull/ifnonnull
	0xc8: 5, // goto_w
	0xc9: 5, // jsr_w
}

const (
	opLdc             = 0x12
	opLdcW            = 0x13
	opLdc2W           = 0x14
	opGetstatic       = 0xb2
	opPutstatic       = 0xb3
	opGetfield        = 0xb4
	opPutfield        = 0xb5
	opInvokevirtual   = 0xb6
	opInvokespecial   = 0xb7
	opInvokestatic    = 0xb8
	opInvokeinterface = 0xb9
	opInvokedynamic   = 0xba
	opNew             = 0xbb
	opAnewarray       = 0xbd
	opCheckcast       = 0xc0
	opInstanceof      = 0xc1
	opMultianewarray  = 0xc5
	opTableswitch     = 0xaa
	opLookupswitch    = 0xab
	opWide            = 0xc4
)
