// Package judith is the VM's top-level entry point: it owns the intern
// table, the native assembly, the map of loaded assemblies, and the
// interpreter, wiring package loader and package vm together.
package judith

import (
	"fmt"
	"io"

	"github.com/dolthub/swiss"
	"golang.org/x/exp/slices"

	"github.com/kaisadilla/judith/intern"
	"github.com/kaisadilla/judith/loader"
	"github.com/kaisadilla/judith/native"
	"github.com/kaisadilla/judith/runtime"
	"github.com/kaisadilla/judith/vm"
)

// VM is one independent instance of the JUDITH virtual machine: its own
// intern table, native assembly, and set of loaded assemblies. Nothing is
// shared between two VM values.
type VM struct {
	Strings *intern.Table
	Native  *native.Assembly

	// Stdout, Stderr, and Stdin back every PRINT and native print/println/
	// readln instruction executed through this VM. They default to
	// os.Stdout/os.Stderr/os.Stdin; the CLI driver (cmd/juvm) overrides Stdout
	// to redirect to an output file.
	Stdout io.Writer
	Stderr io.Writer
	Stdin  io.Reader

	// MaxSteps, if nonzero, is forwarded to every Interpreter this VM
	// constructs, bounding how many instructions a single Start call may
	// execute before aborting.
	MaxSteps uint64

	assemblies *swiss.Map[string, *runtime.Assembly]
}

// New constructs an empty VM: an interning table, a freshly built native
// assembly registered against it, and an empty assembly registry. The
// native assembly's names must be interned before anything else can
// reference them, so construction order matters here.
func New() *VM {
	strings := intern.New()
	return &VM{
		Strings:    strings,
		Native:     native.NewAssembly(strings),
		assemblies: swiss.NewMap[string, *runtime.Assembly](0),
	}
}

// Load reads, decodes, and links the assembly file at path, registering it
// under its file-stem name so later Start calls or external references can
// find it again.
func (m *VM) Load(path string) (*runtime.Assembly, error) {
	asm, err := loader.LoadFile(path, m.Strings, m.Native)
	if err != nil {
		return nil, err
	}
	m.assemblies.Put(asm.StemName, asm)
	return asm, nil
}

// Assembly returns the loaded assembly registered under stem, or false if
// none has been loaded under that name.
func (m *VM) Assembly(stem string) (*runtime.Assembly, bool) {
	return m.assemblies.Get(stem)
}

// AssemblyNames returns a sorted list of every assembly stem currently
// loaded.
func (m *VM) AssemblyNames() []string {
	names := make([]string, 0, m.assemblies.Count())
	m.assemblies.Iter(func(k string, _ *runtime.Assembly) bool {
		names = append(names, k)
		return false
	})
	slices.Sort(names)
	return names
}

// Start loads entryPath and runs its entry point: block 0's function 0. A
// JUDITH program has no declared "main" symbol; whatever produced the
// assembly is responsible for placing the entry function first.
func (m *VM) Start(entryPath string) error {
	asm, err := m.Load(entryPath)
	if err != nil {
		return err
	}

	entry, err := entryFunction(asm)
	if err != nil {
		return err
	}

	interp := vm.New(m.Strings)
	if m.Stdout != nil {
		interp.Stdout = m.Stdout
	}
	if m.Stderr != nil {
		interp.Stderr = m.Stderr
	}
	if m.Stdin != nil {
		interp.Stdin = m.Stdin
	}
	interp.MaxSteps = m.MaxSteps

	return interp.Run(entry, nil)
}

func entryFunction(asm *runtime.Assembly) (*runtime.JasmFunction, error) {
	if len(asm.Blocks) == 0 {
		return nil, fmt.Errorf("assembly %q has no blocks to run", asm.StemName)
	}
	blk := asm.Blocks[0]
	if len(blk.Functions) == 0 {
		return nil, fmt.Errorf("assembly %q block %q has no functions to run", asm.StemName, blk.Name.String())
	}
	return blk.Functions[0], nil
}
