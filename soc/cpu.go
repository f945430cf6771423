package soc

import "rvtasks-in-go/kernel"

// CPU is the single hart. Only the registers the task switch depends on
// are modelled: pc, sp, ra and the machine interrupt enable bits.
type CPU struct {
	pc kernel.Word
	sp kernel.Word
	ra kernel.Word

	mie  bool // machine interrupt enable
	mpie bool // mie before the current trap
}

func (c *CPU) PC() kernel.Word      { return c.pc }
func (c *CPU) SetPC(pc kernel.Word) { c.pc = pc }
func (c *CPU) SP() kernel.Word      { return c.sp }
func (c *CPU) SetSP(sp kernel.Word) { c.sp = sp }
func (c *CPU) RA() kernel.Word      { return c.ra }
func (c *CPU) SetRA(ra kernel.Word) { c.ra = ra }
func (c *CPU) IntrGet() bool        { return c.mie }
func (c *CPU) IntrOff()             { c.mie = false }
func (c *CPU) IntrOn()              { c.mie = true }

var _ kernel.Hart = (*CPU)(nil)
