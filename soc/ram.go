// Package soc models the RV32 system-on-chip the kernel runs on: RAM,
// the memory-mapped devices, a cycle clock, the machine timer and a hart
// that executes task routines and performs trap entry and exit.
package soc

import "rvtasks-in-go/kernel"

// Device is a memory-mapped word register.
type Device interface {
	Load32() kernel.Word
	Store32(val kernel.Word)
}

// RAM is sparse word-addressed memory with MMIO dispatch. Unwritten
// words read as zero.
type RAM struct {
	words   map[kernel.Word]kernel.Word
	devices map[kernel.Word]Device
}

func NewRAM() *RAM {
	return &RAM{
		words:   make(map[kernel.Word]kernel.Word),
		devices: make(map[kernel.Word]Device),
	}
}

func (r *RAM) Map(addr kernel.Word, d Device) { r.devices[addr] = d }

func (r *RAM) Load32(addr kernel.Word) kernel.Word {
	addr = kernel.WORDROUNDDOWN(addr)
	if d, ok := r.devices[addr]; ok {
		return d.Load32()
	}
	return r.words[addr]
}

func (r *RAM) Store32(addr kernel.Word, val kernel.Word) {
	addr = kernel.WORDROUNDDOWN(addr)
	if d, ok := r.devices[addr]; ok {
		d.Store32(val)
		return
	}
	r.words[addr] = val
}

// little endian, like the hart.
func (r *RAM) loadByte(addr kernel.Word) byte {
	w := r.words[kernel.WORDROUNDDOWN(addr)]
	return byte(w >> (8 * (addr & 3)))
}

func (r *RAM) storeByte(addr kernel.Word, b byte) {
	a := kernel.WORDROUNDDOWN(addr)
	shift := 8 * (addr & 3)
	r.words[a] = r.words[a]&^(0xFF<<shift) | kernel.Word(b)<<shift
}

// ReadBytes copies n bytes of plain memory starting at addr. Devices are
// not read.
func (r *RAM) ReadBytes(addr kernel.Word, n int) []byte {
	out := make([]byte, n)
	for i := range out {
		out[i] = r.loadByte(addr + kernel.Word(i))
	}
	return out
}

func (r *RAM) WriteBytes(addr kernel.Word, data []byte) {
	for i, b := range data {
		r.storeByte(addr+kernel.Word(i), b)
	}
}

// csr is a plain read/write register, used for mepc.
type csr struct {
	val kernel.Word
}

func (c *csr) Load32() kernel.Word     { return c.val }
func (c *csr) Store32(val kernel.Word) { c.val = val }
