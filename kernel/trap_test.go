package kernel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeHart struct {
	sp    Word
	mie   bool
	onSP  func()
	reads int
}

func (h *fakeHart) SP() Word {
	h.reads++
	if h.onSP != nil {
		h.onSP()
	}
	return h.sp
}
func (h *fakeHart) SetSP(sp Word) { h.sp = sp }
func (h *fakeHart) IntrGet() bool { return h.mie }
func (h *fakeHart) IntrOff()      { h.mie = false }
func (h *fakeHart) IntrOn()       { h.mie = true }

func TestKerneltrapSwitchesStack(t *testing.T) {
	k, bus := bootDemo(t)
	bus.mem[MEPC] = 0x10C
	h := &fakeHart{sp: 0x20000F00}

	k.Kerneltrap(h, CAUSE_MTIMER)

	assert.Equal(t, Word(0x20000780), h.sp)
	assert.False(t, h.mie, "interrupts stay masked until trap exit")
	assert.Equal(t, Word(0x20000F00), k.Table().SP(0))
	assert.Equal(t, Word(0x10C), k.Table().PC(0))
	assert.Equal(t, entryB, bus.mem[MEPC])

	k.Kerneltrap(h, CAUSE_MTIMER)
	assert.Equal(t, Word(0x20000F00), h.sp)
	assert.Equal(t, 0, k.Table().Current())
}

func TestKerneltrapReentryIsFatal(t *testing.T) {
	k, _ := bootDemo(t)
	h := &fakeHart{sp: 0x20000F00}
	h.onSP = func() {
		h.onSP = nil
		k.Kerneltrap(&fakeHart{sp: 0x20000E00}, CAUSE_MTIMER)
	}

	assert.PanicsWithValue(t, "kerneltrap: reentered", func() {
		k.Kerneltrap(h, CAUSE_MTIMER)
	})
}

func TestKerneltrapUnexpectedCause(t *testing.T) {
	k, bus := bootDemo(t)
	bus.uart = nil
	bus.mem[MEPC] = 0x104

	assert.PanicsWithValue(t, "kerneltrap", func() {
		k.Kerneltrap(&fakeHart{}, 2)
	})
	assert.Equal(t, "Kerneltrap 00000002 at 00000104\n", string(bus.uart))
	assert.Equal(t, 0, k.Table().Current(), "no switch on a fault")
}

func TestPushPopOffNest(t *testing.T) {
	k := New(newMemBus(), nil)
	h := &fakeHart{mie: true}

	k.pushOff(h)
	k.pushOff(h)
	require.False(t, h.mie)
	k.popOff(h)
	require.False(t, h.mie)
	k.popOff(h)
	require.True(t, h.mie)

	assert.PanicsWithValue(t, "pop_off - interruptible", func() { k.popOff(h) })
	h.mie = false
	assert.PanicsWithValue(t, "pop_off", func() { k.popOff(h) })
}
