package soc

import (
	"errors"
	"fmt"
	"io"

	"rvtasks-in-go/kernel"
)

var (
	ErrNotBooted  = errors.New("machine not booted")
	ErrFetchFault = errors.New("fetch outside firmware text")
	ErrStackFault = errors.New("stack pointer outside task stack")
)

// cycles spent in trap entry and exit glue
const trapCycles = 4

type Options struct {
	Output       io.Writer // uart0 sink
	TickInterval uint64    // timer period in cycles, 0 disables the timer
	SettleCycles uint32    // uart settle time after each byte
	ResetCycles  uint64    // cycles reset is held before boot
}

// Event describes one timer trap as seen by the testbench.
type Event struct {
	Cycle uint64
	PC    kernel.Word // interrupted pc
	From  int
	To    int
}

type Machine struct {
	OnTrap func(Event)

	ram    *RAM
	clock  *Clock
	timer  *Timer
	uart   *UART
	mepc   *csr
	cpu    *CPU
	kernel *kernel.Kernel

	resetCycles uint64

	tasks    []kernel.Task
	routines []Routine
	booted   bool
}

func New(opts Options) *Machine {
	m := &Machine{
		ram:   NewRAM(),
		clock: &Clock{},
		timer: &Timer{Interval: opts.TickInterval},
		mepc:  &csr{},
		cpu:   &CPU{},

		resetCycles: opts.ResetCycles,
	}
	m.uart = NewUART(opts.Output, m.clock, uint64(opts.SettleCycles))
	m.ram.Map(kernel.UART0, m.uart)
	m.ram.Map(kernel.MEPC, m.mepc)
	m.kernel = kernel.New(m.ram, kernel.NewConsole(m.ram, m.clock, opts.SettleCycles))
	return m
}

func (m *Machine) RAM() *RAM              { return m.ram }
func (m *Machine) Clock() *Clock          { return m.clock }
func (m *Machine) Timer() *Timer          { return m.timer }
func (m *Machine) UART() *UART            { return m.uart }
func (m *Machine) CPU() *CPU              { return m.cpu }
func (m *Machine) Kernel() *kernel.Kernel { return m.kernel }
func (m *Machine) Tasks() []kernel.Task   { return m.tasks }

// Install loads a routine into firmware text.
func (m *Machine) Install(r Routine) { m.routines = append(m.routines, r) }

// Boot holds the hart in reset for ResetCycles, runs the kernel boot
// sequence with interrupts off, then starts task 0 and enables the
// timer.
func (m *Machine) Boot(tasks []kernel.Task) error {
	if m.clock.Now() < m.resetCycles {
		m.clock.Advance(m.resetCycles - m.clock.Now())
	}
	m.cpu.IntrOff()
	pc, sp, err := m.kernel.Boot(tasks, 0)
	if err != nil {
		return err
	}
	m.tasks = tasks
	m.cpu.pc, m.cpu.sp, m.cpu.ra = pc, sp, pc
	m.cpu.IntrOn()
	m.timer.Start(m.clock.Now())
	m.booted = true
	return nil
}

func (m *Machine) fetch(pc kernel.Word) Routine {
	for _, r := range m.routines {
		if pc >= r.Entry() && pc < r.Entry()+r.Span() {
			return r
		}
	}
	return nil
}

// Step takes a pending interrupt if interrupts are enabled, otherwise
// executes one instruction.
func (m *Machine) Step() error {
	if !m.booted {
		return ErrNotBooted
	}
	m.timer.Poll(m.clock.Now())
	if m.cpu.mie && m.timer.Pending() {
		m.timer.ack()
		return m.trap(kernel.CAUSE_MTIMER)
	}

	r := m.fetch(m.cpu.pc)
	if r == nil {
		return fmt.Errorf("pc %#08x: %w", uint32(m.cpu.pc), ErrFetchFault)
	}
	m.clock.Advance(1)
	r.Exec(m)
	return nil
}

// Run steps until at least cycles more cycles have passed.
func (m *Machine) Run(cycles uint64) error {
	end := m.clock.Now() + cycles
	for m.clock.Now() < end {
		if err := m.Step(); err != nil {
			return err
		}
		if m.uart.Err != nil {
			return fmt.Errorf("uart0: %w", m.uart.Err)
		}
	}
	return nil
}

// Tick raises the timer interrupt immediately and steps once.
func (m *Machine) Tick() error {
	m.timer.Raise()
	return m.Step()
}

func (m *Machine) trap(cause kernel.Word) error {
	c := m.cpu
	from := m.kernel.Table().Current()
	ev := Event{Cycle: m.clock.Now(), PC: c.pc, From: from}

	// entry: mask, latch pc, push the register frame
	c.mpie, c.mie = c.mie, false
	m.mepc.val = c.pc
	c.sp -= kernel.FRAMEWORDS * kernel.WordSize
	if err := m.checkStack(from); err != nil {
		return err
	}
	m.ram.Store32(c.sp, c.ra)
	m.clock.Advance(trapCycles)

	m.kernel.Kerneltrap(c, cause)

	// exit: pop the frame at the new sp, jump to mepc
	c.ra = m.ram.Load32(c.sp)
	c.sp += kernel.FRAMEWORDS * kernel.WordSize
	c.pc = m.mepc.val
	c.mie = c.mpie

	ev.To = m.kernel.Table().Current()
	if err := m.checkStack(ev.To); err != nil {
		return err
	}
	if m.OnTrap != nil {
		m.OnTrap(ev)
	}
	return nil
}

// the stack is empty when sp == Top, so sp lives in (Base, Top].
func (m *Machine) checkStack(task int) error {
	s := m.tasks[task].Stack
	if m.cpu.sp <= s.Base || m.cpu.sp > s.Top {
		return fmt.Errorf("task %s sp %#08x not in %v: %w", m.tasks[task].Name, uint32(m.cpu.sp), s, ErrStackFault)
	}
	return nil
}
