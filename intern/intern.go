// Package intern implements the VM's sole owner of StringObject values: a
// process-wide (one per VM instance) mapping from UTF-8 content to a
// uniquely owned StringObject, guaranteeing that equal content always
// yields identical pointer identity.
package intern

import (
	"github.com/dolthub/swiss"

	"github.com/kaisadilla/judith/object"
)

// StringObject is an immutable UTF-8 buffer owned by a Table. Two
// StringObject pointers obtained from the same Table are equal (==) iff
// their content is equal.
type StringObject struct {
	b []byte
	s string
}

var _ object.Object = (*StringObject)(nil)

func (s *StringObject) Kind() object.Kind { return object.UTF8String }

// Bytes returns the string's raw UTF-8 bytes. Callers must not modify them.
func (s *StringObject) Bytes() []byte { return s.b }

func (s *StringObject) String() string { return s.s }

func (s *StringObject) Len() int { return len(s.b) }

// Table is the VM's string-interning table. Its lifetime equals the VM's;
// every StringObject it ever returns is exclusively owned by it.
type Table struct {
	m *swiss.Map[string, *StringObject]
}

// New returns an empty interning table.
func New() *Table {
	return &Table{m: swiss.NewMap[string, *StringObject](0)}
}

// Intern returns the StringObject for content, creating and storing one if
// this is the first time content has been seen.
func (t *Table) Intern(content string) *StringObject {
	if so, ok := t.m.Get(content); ok {
		return so
	}
	so := &StringObject{b: []byte(content), s: content}
	t.m.Put(content, so)
	return so
}

// InternBytes is like Intern but takes raw bytes. content is not retained:
// it is converted to a string and passed to Intern, so the caller may reuse
// the slice afterwards.
func (t *Table) InternBytes(content []byte) *StringObject {
	// swiss.Map keys on string, so this still allocates one string conversion;
	// that conversion is unavoidable without an unsafe cast, which StringObject
	// deliberately avoids since the interned content must outlive the source
	// buffer.
	return t.Intern(string(content))
}

// InternAll interns every entry of contents, in order, returning the
// corresponding StringObject for each. Ordinals are preserved.
func (t *Table) InternAll(contents []string) []*StringObject {
	out := make([]*StringObject, len(contents))
	for i, c := range contents {
		out[i] = t.Intern(c)
	}
	return out
}

// Len returns the number of distinct strings interned so far.
func (t *Table) Len() int { return t.m.Count() }
