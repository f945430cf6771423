package soc

import (
	"io"

	"rvtasks-in-go/kernel"
)

// UART is the write-only byte output register at uart0. Every store
// sends the low byte to Sink. The device needs Settle cycles between
// two stores; a store that comes earlier still lands but is counted in
// Overruns, since real hardware would have dropped or garbled it. The
// first error from Sink is kept in Err; later bytes are still offered
// to Sink.
type UART struct {
	Sink   io.Writer
	Settle uint64

	Writes   uint64
	Overruns uint64
	Err      error

	clock *Clock
	last  uint64
}

func NewUART(sink io.Writer, clock *Clock, settle uint64) *UART {
	if sink == nil {
		sink = io.Discard
	}
	return &UART{Sink: sink, Settle: settle, clock: clock}
}

func (u *UART) Load32() kernel.Word { return 0 }

func (u *UART) Store32(val kernel.Word) {
	now := u.clock.Now()
	if u.Writes > 0 && now-u.last < u.Settle {
		u.Overruns++
	}
	u.Writes++
	u.last = now
	if _, err := u.Sink.Write([]byte{byte(val)}); err != nil && u.Err == nil {
		u.Err = err
	}
}
