package kernel

// Hart is what the trap glue exposes of the processor to the kernel.
// Trap entry has already disabled interrupts, stored the interrupted pc
// in MEPC and pushed the register frame; trap exit pops the frame at the
// active sp and jumps to MEPC.
type Hart interface {
	SP() Word
	SetSP(sp Word)
	IntrGet() bool
	IntrOff()
	IntrOn()
}

// mcause values
const (
	CAUSE_INTR   = Word(1) << 31
	CAUSE_MSOFT  = CAUSE_INTR | 3
	CAUSE_MTIMER = CAUSE_INTR | 7
)

// Kerneltrap handles one trap. Timer and software interrupts switch
// tasks; anything else is fatal. It must never be entered while a trap
// is already being handled.
func (k *Kernel) Kerneltrap(h Hart, cause Word) {
	if k.intrap {
		panic("kerneltrap: reentered")
	}
	k.intrap = true

	switch cause {
	case CAUSE_MTIMER, CAUSE_MSOFT:
		k.pushOff(h)
		h.SetSP(k.sched.Schedule(h.SP()))
		k.popOff(h)
	default:
		k.cons.Printf("Kerneltrap %x at %x\n", cause, k.sched.mepc.Get())
		panic("kerneltrap")
	}

	k.intrap = false
}
