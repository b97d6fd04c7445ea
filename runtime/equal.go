package runtime

// Equal implements the generic EQ/NEQ opcodes: two values compare equal iff
// they are both object references to the identical object, or neither is an
// object reference and their bit patterns match. Since StringObjects are
// always obtained from the VM's intern table, two interned strings with
// equal content compare equal here because interning gives them identical
// pointer identity (spec scenario 4).
func Equal(a, b Value) bool {
	if a.obj != nil || b.obj != nil {
		return a.obj == b.obj
	}
	return a.bits == b.bits
}
