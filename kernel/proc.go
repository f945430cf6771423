package kernel

// Task is one entry of the static task set.
type Task struct {
	Name  string
	Entry Word
	Stack StackRegion
}

// TaskTable is the task control table: per task the resume pc and sp,
// plus the index of the running task. Task ids are not checked; only the
// scheduler and the bootstrap index it.
type TaskTable struct {
	pcs     [NTASK]Register
	sps     [NTASK]Register
	current Register
}

func NewTaskTable(bus Bus) TaskTable {
	var t TaskTable
	for i := 0; i < NTASK; i++ {
		t.pcs[i] = NewRegister(bus, TASK_PC(i), 32, RW)
		t.sps[i] = NewRegister(bus, TASK_SP(i), 32, RW)
	}
	t.current = NewRegister(bus, CURRENT_TASK_PTR, 32, RW)
	return t
}

func (t *TaskTable) Current() int         { return int(t.current.Get()) }
func (t *TaskTable) SetCurrent(i int)     { t.current.Set(Word(i)) }
func (t *TaskTable) PC(i int) Word        { return t.pcs[i].Get() }
func (t *TaskTable) SetPC(i int, pc Word) { t.pcs[i].Set(pc) }
func (t *TaskTable) SP(i int) Word        { return t.sps[i].Get() }
func (t *TaskTable) SetSP(i int, sp Word) { t.sps[i].Set(sp) }

// Scheduler switches tasks on every trap. It only holds the table and
// the mepc register: nothing it can reach writes to a device, waits or
// allocates, so it can never take long enough to be trapped again.
type Scheduler struct {
	table *TaskTable
	mepc  Register
}

func NewScheduler(table *TaskTable, bus Bus) *Scheduler {
	return &Scheduler{
		table: table,
		mepc:  NewRegister(bus, MEPC, 32, RW),
	}
}

// Schedule saves the interrupted task's sp and mepc, advances to the
// next task round robin, loads its pc into mepc and returns its sp.
// Must run with interrupts off.
func (s *Scheduler) Schedule(sp Word) Word {
	cur := s.table.Current()

	s.table.SetSP(cur, sp)
	s.table.SetPC(cur, s.mepc.Get())

	next := (cur + 1) % NTASK

	s.table.SetCurrent(next)
	s.mepc.Set(s.table.PC(next))

	return s.table.SP(next)
}
