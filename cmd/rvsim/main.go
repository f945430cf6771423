// Command rvsim boots the two-task kernel on the SoC model and runs it,
// streaming uart0 to the terminal or to a serial port.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"go.bug.st/serial"

	"rvtasks-in-go/config"
	"rvtasks-in-go/kernel"
	"rvtasks-in-go/monitor"
	"rvtasks-in-go/soc"
)

var (
	configPath  = flag.String("config", "", "board profile (.yaml, .yml or .toml); built-in demo if empty")
	cycles      = flag.Uint64("cycles", 0, "cycles to run; 0 uses the profile's max_cycles")
	scriptPath  = flag.String("script", "", "run monitor commands from file instead of free running")
	interactive = flag.Bool("i", false, "interactive monitor on the terminal")
	serialPort  = flag.String("serial", "", "send uart0 to this serial port instead of stdout")
	baud        = flag.Int("baud", 115200, "serial port baud rate")
	dumpPath    = flag.String("dump", "", "write task table and stacks as Intel HEX on exit")
	trace       = flag.Bool("trace", false, "print a line for every timer trap")
)

const (
	green  = "\033[1;32m"
	yellow = "\033[1;33m"
	reset  = "\033[0m"
)

type console struct {
	w     io.Writer
	color bool
}

func (c *console) say(color, format string, args ...interface{}) {
	if c.color {
		fmt.Fprintf(c.w, color+format+reset+"\n", args...)
		return
	}
	fmt.Fprintf(c.w, format+"\n", args...)
}

func main() {
	log.SetFlags(0)
	log.SetPrefix("rvsim: ")
	flag.Parse()

	board := config.Default()
	if *configPath != "" {
		var err error
		if board, err = config.Load(*configPath); err != nil {
			log.Fatal(err)
		}
	}
	n := *cycles
	if n == 0 {
		n = board.MaxCycles
	}

	out := &console{
		w:     colorable.NewColorableStdout(),
		color: isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd()),
	}

	var uart io.Writer = out.w
	if *serialPort != "" {
		port, err := serial.Open(*serialPort, &serial.Mode{BaudRate: *baud})
		if err != nil {
			log.Fatalf("open %s: %v", *serialPort, err)
		}
		defer port.Close()
		uart = port
	}

	out.say(green, "[SYS] Initializing RV32I SoC Simulation...")
	out.say("", "[SYS] Monitoring UART MMIO (%#08x)", uint32(kernel.UART0))
	out.say("", "---------------------------------------------")

	m, err := board.Machine(soc.Options{Output: uart})
	if err != nil {
		log.Fatal(err)
	}
	if *trace {
		m.OnTrap = func(ev soc.Event) {
			out.say(yellow, "\n[IRQ] Timer Trap at Cycle: %6d | Vector PC: 0x%08x | task %d -> %d",
				ev.Cycle, uint32(ev.PC), ev.From, ev.To)
		}
	}

	mon := monitor.New(m, out.w, n)
	switch {
	case *scriptPath != "":
		f, ferr := os.Open(*scriptPath)
		if ferr != nil {
			log.Fatal(ferr)
		}
		err = mon.Script(f)
		f.Close()
	case *interactive:
		err = mon.Interactive()
	default:
		err = m.Run(n)
	}
	if err != nil {
		log.Print(err)
	}

	if *dumpPath != "" {
		if derr := soc.DumpHexFile(m.RAM(), *dumpPath, m.KernelImage()...); derr != nil {
			log.Fatal(derr)
		}
	}

	out.say("", "\n---------------------------------------------")
	if err != nil {
		os.Exit(1)
	}
	out.say(green, "[SYS] Simulation Terminated Successfully.")
}
