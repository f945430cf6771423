// Package kernel is the task switching core: the task control table, the
// round-robin trap scheduler and the stack bootstrap, all reached through
// memory-mapped registers.
package kernel

import "fmt"

// Kernel owns the task control table and everything that touches it.
type Kernel struct {
	bus     Bus
	table   TaskTable
	sched   *Scheduler
	cons    *Console
	regions *regionMap

	noff   int  // depth of pushOff nesting
	intena bool // were interrupts enabled before pushOff?
	intrap bool
}

func New(bus Bus, cons *Console) *Kernel {
	if cons == nil {
		cons = NewConsole(bus, NoDelay, 0)
	}
	k := &Kernel{
		bus:     bus,
		table:   NewTaskTable(bus),
		cons:    cons,
		regions: newRegionMap(),
	}
	k.sched = NewScheduler(&k.table, bus)
	return k
}

func (k *Kernel) Table() *TaskTable     { return &k.table }
func (k *Kernel) Scheduler() *Scheduler { return k.sched }
func (k *Kernel) Console() *Console     { return k.cons }

// Boot fills the task table and prepares every task but first to be
// resumed by the scheduler. It returns the pc and sp the hart should
// start task first with; that task's live stack becomes its first
// snapshot on the first trap. A failed Boot releases every stack it
// reserved, so it can be retried with a corrected task set.
func (k *Kernel) Boot(tasks []Task, first int) (pc, sp Word, err error) {
	k.cons.Printf("\n[BOOT] Context Switcher Demo\n")

	nmaps := len(k.regions.maps)
	defer func() {
		if err != nil {
			k.regions.release(nmaps)
		}
	}()

	if len(tasks) != NTASK {
		return 0, 0, fmt.Errorf("boot: %d tasks: %w", len(tasks), ErrTaskCount)
	}
	if first < 0 || first >= NTASK {
		return 0, 0, fmt.Errorf("boot: first task %d: %w", first, ErrBadTask)
	}

	for i, t := range tasks {
		if t.Entry == 0 {
			return 0, 0, fmt.Errorf("boot: task %s: %w", t.Name, ErrNoEntry)
		}
		k.table.SetPC(i, t.Entry)
	}
	k.table.SetCurrent(first)

	if err := k.regions.reserve(tasks[first].Stack, fmt.Sprintf("stack%d", first)); err != nil {
		return 0, 0, fmt.Errorf("boot: task %s: %w", tasks[first].Name, err)
	}
	for i, t := range tasks {
		if i == first {
			continue
		}
		if err := k.BootstrapTask(i, t.Entry, t.Stack); err != nil {
			return 0, 0, fmt.Errorf("boot: task %s: %w", t.Name, err)
		}
	}

	k.cons.Printf("[INFO] Starting Task %s...\n", tasks[first].Name)
	return tasks[first].Entry, tasks[first].Stack.Top, nil
}
