package kernel

// RV32: every address and every register is one 32-bit word.
type Word uint32

const WordSize = 4

// Bus is the processor's view of memory and devices. Loads and stores
// are never cached, merged or reordered by the kernel: each call is one
// bus transaction, so a store to a device register always reaches it.
type Bus interface {
	Load32(addr Word) Word
	Store32(addr Word, val Word)
}

type Access uint8

const (
	RW Access = iota
	RO
	WO
)

// Register is a typed handle on one memory-mapped word.
type Register struct {
	Addr  Word
	Width uint8 // bits
	Mode  Access
	bus   Bus
}

func NewRegister(bus Bus, addr Word, width uint8, mode Access) Register {
	return Register{Addr: addr, Width: width, Mode: mode, bus: bus}
}

func (r Register) mask() Word {
	if r.Width >= 32 {
		return ^Word(0)
	}
	return Word(1)<<r.Width - 1
}

// Get reads the register. A write-only register reads as zero without a
// bus transaction, like the hardware.
func (r Register) Get() Word {
	if r.Mode == WO {
		return 0
	}
	return r.bus.Load32(r.Addr) & r.mask()
}

// Set writes the register. Stores to a read-only register are dropped.
func (r Register) Set(val Word) {
	if r.Mode == RO {
		return
	}
	r.bus.Store32(r.Addr, val&r.mask())
}

func WORDROUNDDOWN(a Word) Word { return a &^ (WordSize - 1) }
func WORDALIGNED(a Word) bool   { return a&(WordSize-1) == 0 }
