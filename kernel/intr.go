package kernel

// push_off/pop_off are like intr_off()/intr_on() except that they are
// matched: it takes two pop_off()s to undo two push_off()s. If
// interrupts were off to begin with, push_off, pop_off leaves them off.

func (k *Kernel) pushOff(h Hart) {
	old := h.IntrGet()
	h.IntrOff()
	if k.noff == 0 {
		k.intena = old
	}
	k.noff++
}

func (k *Kernel) popOff(h Hart) {
	if h.IntrGet() {
		panic("pop_off - interruptible")
	}
	if k.noff < 1 {
		panic("pop_off")
	}
	k.noff--
	if k.noff == 0 && k.intena {
		h.IntrOn()
	}
}
