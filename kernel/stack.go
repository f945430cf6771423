package kernel

import "fmt"

// StackRegion is the half-open range [Base, Top) reserved for one task's
// stack. Stacks grow down from Top.
type StackRegion struct {
	Base Word
	Top  Word
}

// StackBelow returns the region of size bytes ending at top.
func StackBelow(top Word, size Word) StackRegion {
	return StackRegion{Base: top - size, Top: top}
}

func (r StackRegion) Size() Word { return r.Top - r.Base }

func (r StackRegion) Contains(a Word) bool { return a >= r.Base && a < r.Top }

func (r StackRegion) Overlaps(o StackRegion) bool {
	return r.Base < o.Top && o.Base < r.Top
}

// InitialSP is where a never-run task's stack pointer starts: one trap
// frame below the top.
func (r StackRegion) InitialSP() Word { return r.Top - FRAMEWORDS*WordSize }

func (r StackRegion) String() string {
	return fmt.Sprintf("[%#08x, %#08x)", uint32(r.Base), uint32(r.Top))
}

func checkRegion(r StackRegion) error {
	if !WORDALIGNED(r.Base) || !WORDALIGNED(r.Top) {
		return fmt.Errorf("%v: %w", r, ErrRegionAlign)
	}
	if r.Top <= r.Base || r.Size() < FRAMEWORDS*WordSize {
		return fmt.Errorf("%v: %w", r, ErrRegionTooSmall)
	}
	return nil
}

// BootstrapTask prepares a task that is not running yet so that the
// generic trap exit lands on its entry point with a fresh stack: it
// reserves the region, builds a zeroed trap frame one frame below the
// top with entry in word 0 (the saved ra), and records (entry, sp) in the
// table. Call only before the scheduler can pick id.
func (k *Kernel) BootstrapTask(id int, entry Word, region StackRegion) error {
	if id < 0 || id >= NTASK {
		return fmt.Errorf("bootstrap task %d: %w", id, ErrBadTask)
	}
	if entry == 0 {
		return fmt.Errorf("bootstrap task %d: %w", id, ErrNoEntry)
	}
	if err := k.regions.reserve(region, fmt.Sprintf("stack%d", id)); err != nil {
		return fmt.Errorf("bootstrap task %d: %w", id, err)
	}

	sp := region.InitialSP()
	memset(k.bus, sp, 0, FRAMEWORDS)
	k.bus.Store32(sp, entry)

	k.table.SetPC(id, entry)
	k.table.SetSP(id, sp)
	return nil
}
