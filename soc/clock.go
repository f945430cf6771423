package soc

// Clock counts cpu cycles. It is also the kernel's delay primitive:
// waiting simply lets the cycles pass.
type Clock struct {
	cycles uint64
}

func (c *Clock) Now() uint64        { return c.cycles }
func (c *Clock) Advance(n uint64)   { c.cycles += n }
func (c *Clock) Wait(cycles uint32) { c.cycles += uint64(cycles) }
