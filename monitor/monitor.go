// Package monitor is the simulator's command line: a few commands to
// run the machine and look at the task table, read from a script or
// typed at the terminal.
package monitor

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/google/shlex"
	"github.com/mattn/go-tty"

	"rvtasks-in-go/soc"
)

var ErrUsage = errors.New("usage")

const prompt = "rvsim> "

type Monitor struct {
	m      *soc.Machine
	out    io.Writer
	cycles uint64 // default for run
}

func New(m *soc.Machine, out io.Writer, cycles uint64) *Monitor {
	return &Monitor{m: m, out: out, cycles: cycles}
}

func parseCount(args []string, def uint64) (uint64, error) {
	if len(args) == 0 {
		return def, nil
	}
	if len(args) > 1 {
		return 0, ErrUsage
	}
	n, err := strconv.ParseUint(args[0], 0, 64)
	if err != nil {
		return 0, fmt.Errorf("%q: %w", args[0], ErrUsage)
	}
	return n, nil
}

// Exec runs one command line. It reports quit for quit/exit.
func (mon *Monitor) Exec(line string) (quit bool, err error) {
	args, err := shlex.Split(line)
	if err != nil {
		return false, err
	}
	if len(args) == 0 {
		return false, nil
	}

	switch cmd, args := args[0], args[1:]; cmd {
	case "run":
		n, err := parseCount(args, mon.cycles)
		if err != nil {
			return false, fmt.Errorf("run [cycles]: %w", err)
		}
		return false, mon.m.Run(n)
	case "step":
		n, err := parseCount(args, 1)
		if err != nil {
			return false, fmt.Errorf("step [n]: %w", err)
		}
		for i := uint64(0); i < n; i++ {
			if err := mon.m.Step(); err != nil {
				return false, err
			}
		}
	case "tick":
		return false, mon.m.Tick()
	case "table":
		mon.printTable()
	case "regs":
		c := mon.m.CPU()
		fmt.Fprintf(mon.out, "pc=%#08x sp=%#08x ra=%#08x mie=%v cycle=%d\n",
			uint32(c.PC()), uint32(c.SP()), uint32(c.RA()), c.IntrGet(), mon.m.Clock().Now())
	case "dump":
		if len(args) != 1 {
			return false, fmt.Errorf("dump file.hex: %w", ErrUsage)
		}
		return false, soc.DumpHexFile(mon.m.RAM(), args[0], mon.m.KernelImage()...)
	case "quit", "exit":
		return true, nil
	default:
		return false, fmt.Errorf("%s: unknown command", cmd)
	}
	return false, nil
}

func (mon *Monitor) printTable() {
	t := mon.m.Kernel().Table()
	cur := t.Current()
	for i, task := range mon.m.Tasks() {
		mark := ' '
		if i == cur {
			mark = '*'
		}
		fmt.Fprintf(mon.out, "%c %d %-8s pc=%#08x sp=%#08x stack=%v\n",
			mark, i, task.Name, uint32(t.PC(i)), uint32(t.SP(i)), task.Stack)
	}
	fmt.Fprintf(mon.out, "current=%d uart writes=%d overruns=%d missed ticks=%d\n",
		cur, mon.m.UART().Writes, mon.m.UART().Overruns, mon.m.Timer().Missed)
}

// Script runs every line of r, stopping at the first error or quit.
// Lines starting with # are comments.
func (mon *Monitor) Script(r io.Reader) error {
	sc := bufio.NewScanner(r)
	lineno := 0
	for sc.Scan() {
		lineno++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		quit, err := mon.Exec(line)
		if err != nil {
			return fmt.Errorf("line %d: %w", lineno, err)
		}
		if quit {
			return nil
		}
	}
	return sc.Err()
}

// Interactive reads commands from the controlling terminal until quit.
// Command errors are printed and the session goes on; machine faults end
// it.
func (mon *Monitor) Interactive() error {
	t, err := tty.Open()
	if err != nil {
		return err
	}
	defer t.Close()

	for {
		fmt.Fprint(mon.out, prompt)
		line, err := t.ReadString()
		if err != nil {
			return err
		}
		quit, err := mon.Exec(line)
		if errors.Is(err, soc.ErrFetchFault) || errors.Is(err, soc.ErrStackFault) {
			return err
		}
		if err != nil {
			fmt.Fprintf(mon.out, "error: %v\n", err)
		}
		if quit {
			return nil
		}
	}
}
