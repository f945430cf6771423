package kernel

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// memBus is an in-memory bus that remembers every store and captures
// uart0 output.
type memBus struct {
	mem    map[Word]Word
	stores map[Word]int
	uart   []byte
}

func newMemBus() *memBus {
	return &memBus{mem: make(map[Word]Word), stores: make(map[Word]int)}
}

func (b *memBus) Load32(addr Word) Word { return b.mem[addr] }

func (b *memBus) Store32(addr Word, val Word) {
	b.stores[addr]++
	if addr == UART0 {
		b.uart = append(b.uart, byte(val))
		return
	}
	b.mem[addr] = val
}

const (
	entryA = Word(0x00000100)
	entryB = Word(0x00000200)
	topA   = Word(0x20001000)
	topB   = Word(0x20000800)
)

func demoTasks() []Task {
	return []Task{
		{Name: "A", Entry: entryA, Stack: StackBelow(topA, 1024)},
		{Name: "B", Entry: entryB, Stack: StackBelow(topB, 1024)},
	}
}

func bootDemo(t *testing.T) (*Kernel, *memBus) {
	t.Helper()
	bus := newMemBus()
	k := New(bus, nil)
	pc, sp, err := k.Boot(demoTasks(), 0)
	require.NoError(t, err)
	require.Equal(t, entryA, pc)
	require.Equal(t, topA, sp)
	return k, bus
}
