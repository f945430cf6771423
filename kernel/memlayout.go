package kernel

// Physical memory layout of the RV32 SoC.
//
// 00000000 -- firmware text, task entry points
// 20000000 -- kernel data: task control table
// 20000014 -- RAM, task stacks
// 40000000 -- MMIO: uart0, mepc
//
// The table is word-addressed and must stay bit-exact; the
// testbench inspects it at these addresses.

// number of tasks, fixed at build time.
const NTASK = 2

// task control table
const (
	TASK_PCS         = Word(0x20000000)
	TASK_SPS         = TASK_PCS + NTASK*WordSize
	CURRENT_TASK_PTR = TASK_SPS + NTASK*WordSize
	TABLE_END        = CURRENT_TASK_PTR + WordSize
)

// write-only, one character per store.
const UART0 = Word(0x40000000)

// interrupted pc on trap entry, resume pc on trap exit.
const MEPC = Word(0x40000010)

// MMIO window, no stack may live here.
const (
	MMIOBASE = Word(0x40000000)
	MMIOEND  = Word(0x40001000)
)

// RAM the kernel hands out for stacks.
const (
	RAMBASE = TASK_PCS
	RAMTOP  = Word(0x20010000)
)

// the initial stack pointer of a bootstrapped task sits this many
// words below the top of its region; the words hold the trap frame.
const FRAMEWORDS = 32

func TASK_PC(i int) Word { return TASK_PCS + Word(i)*WordSize }
func TASK_SP(i int) Word { return TASK_SPS + Word(i)*WordSize }
