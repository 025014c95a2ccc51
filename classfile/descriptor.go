package classfile

// typeRefsInDescriptor extracts every class name embedded in a field or
// method descriptor string (JVMS 4.3.2, 4.3.3), in internal slash-separated
// form.
//
// A descriptor is scanned linearly: object types are spelled "L<name>;" and
// array types prefix any of the above with one or more "[". Parentheses and
// base-type letters are otherwise ignored, which means this same scan works
// unchanged on both field descriptors ("Ljava/lang/String;") and whole
// method descriptors ("(ILjava/lang/String;)[Ljava/util/List;").
func typeRefsInDescriptor(desc string) []string {
	var out []string
	for i := 0; i < len(desc); i++ {
		if desc[i] != 'L' {
			continue
		}
		j := i + 1
		for j < len(desc) && desc[j] != ';' {
			j++
		}
		if j >= len(desc) {
			// Unterminated object type; malformed, but the walker treats
			// descriptor parsing as best-effort rather than fatal.
			break
		}
		out = append(out, desc[i+1:j])
		i = j
	}
	return out
}
