package soc

import "rvtasks-in-go/kernel"

// Routine is a piece of firmware text: the instructions in
// [Entry, Entry+Span) executed one per Exec call at the hart's pc.
type Routine interface {
	Entry() kernel.Word
	Span() kernel.Word
	Exec(m *Machine)
}

// TextRoutine is the demo task body:
//
//	for i := 0; ; i++ {
//		print(Text)
//		delay(LoopCycles)
//	}
//
// Its prologue allocates a small frame holding i, so the counter lives
// on the task's own stack.
type TextRoutine struct {
	Base       kernel.Word
	Text       string
	LoopCycles uint32
}

const localFrame = 4 * kernel.WordSize

func (r *TextRoutine) Entry() kernel.Word { return r.Base }

func (r *TextRoutine) Span() kernel.Word {
	return kernel.Word(1+len(r.Text)) * kernel.WordSize
}

func (r *TextRoutine) Exec(m *Machine) {
	c := m.cpu
	off := int((c.pc - r.Base) / kernel.WordSize)
	if off == 0 {
		c.sp -= localFrame
		m.ram.Store32(c.sp, 0)
		c.pc += kernel.WordSize
		return
	}

	m.kernel.Console().Putc(r.Text[off-1])
	if off < len(r.Text) {
		c.pc += kernel.WordSize
		return
	}
	m.clock.Wait(r.LoopCycles)
	m.ram.Store32(c.sp, m.ram.Load32(c.sp)+1)
	c.pc = r.Base + kernel.WordSize
}
