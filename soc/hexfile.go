package soc

import (
	"fmt"
	"io"
	"os"

	"github.com/gofrs/flock"
	"github.com/marcinbor85/gohex"

	"rvtasks-in-go/kernel"
)

const hexLineLength = 16

// LoadHex copies every data segment of an Intel HEX image into RAM.
func (r *RAM) LoadHex(rd io.Reader) error {
	mem := gohex.NewMemory()
	if err := mem.ParseIntelHex(rd); err != nil {
		return fmt.Errorf("parse hex: %w", err)
	}
	for _, seg := range mem.GetDataSegments() {
		r.WriteBytes(kernel.Word(seg.Address), seg.Data)
	}
	return nil
}

// DumpHex writes the given memory ranges as an Intel HEX image.
func (r *RAM) DumpHex(w io.Writer, ranges ...kernel.StackRegion) error {
	mem := gohex.NewMemory()
	for _, rg := range ranges {
		data := r.ReadBytes(rg.Base, int(rg.Size()))
		if err := mem.AddBinary(uint32(rg.Base), data); err != nil {
			return fmt.Errorf("dump %v: %w", rg, err)
		}
	}
	return mem.DumpIntelHex(w, hexLineLength)
}

// LoadHexFile preloads an image. It takes no lock, so images can live in
// read-only directories.
func LoadHexFile(r *RAM, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return r.LoadHex(f)
}

// DumpHexFile holds an exclusive lock next to path while writing, so
// two simulators never interleave their images.
func DumpHexFile(r *RAM, path string, ranges ...kernel.StackRegion) error {
	lock := flock.New(path + ".lock")
	ok, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("lock %s: %w", path, err)
	}
	if !ok {
		return fmt.Errorf("lock %s: held by another process", path)
	}
	defer lock.Unlock()

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := r.DumpHex(f, ranges...); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// KernelImage returns the ranges worth dumping: the task table and every
// task stack.
func (m *Machine) KernelImage() []kernel.StackRegion {
	out := []kernel.StackRegion{{Base: kernel.TASK_PCS, Top: kernel.TABLE_END}}
	for _, t := range m.tasks {
		out = append(out, t.Stack)
	}
	return out
}
