package soc

// Timer raises the machine timer interrupt every Interval cycles. A
// deadline that passes while the previous tick is still pending is
// folded into it and counted in Missed: the hart sees at most one
// pending timer interrupt.
type Timer struct {
	Interval uint64
	Missed   uint64

	next    uint64
	pending bool
}

func (t *Timer) Start(now uint64) {
	t.next = now + t.Interval
	t.pending = false
}

func (t *Timer) Poll(now uint64) {
	if t.Interval == 0 {
		return
	}
	for t.next <= now {
		if t.pending {
			t.Missed++
		}
		t.pending = true
		t.next += t.Interval
	}
}

func (t *Timer) Pending() bool { return t.pending }

// Raise makes a tick pending now, regardless of the interval.
func (t *Timer) Raise() { t.pending = true }

func (t *Timer) ack() { t.pending = false }
