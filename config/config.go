// Package config describes a board: its task set, their firmware text and
// stacks, the timer period and the uart timing. Profiles are YAML or TOML;
// Default matches the reference firmware.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/inhies/go-bytesize"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v2"

	"rvtasks-in-go/kernel"
	"rvtasks-in-go/soc"
)

var ErrInvalid = errors.New("invalid board profile")

type Task struct {
	Name       string `yaml:"name" toml:"name"`
	Entry      uint32 `yaml:"entry" toml:"entry"`
	Text       string `yaml:"text" toml:"text"`
	StackTop   uint32 `yaml:"stack_top" toml:"stack_top"`
	StackSize  string `yaml:"stack_size" toml:"stack_size"` // e.g. "1KB"
	LoopCycles uint32 `yaml:"loop_cycles" toml:"loop_cycles"`
}

type Board struct {
	Tasks        []Task `yaml:"tasks" toml:"tasks"`
	TickInterval uint64 `yaml:"tick_interval" toml:"tick_interval"`
	SettleCycles uint32 `yaml:"settle_cycles" toml:"settle_cycles"`
	MaxCycles    uint64 `yaml:"max_cycles" toml:"max_cycles"`
	ResetCycles  uint64 `yaml:"reset_cycles" toml:"reset_cycles"`
	Image        string `yaml:"image" toml:"image"` // optional Intel HEX preload
}

// Default is the two-task demo: A runs first on the boot stack, B is
// bootstrapped just below 0x20000800.
func Default() *Board {
	return &Board{
		Tasks: []Task{
			{Name: "A", Entry: 0x00000100, Text: "A", StackTop: 0x20001000, StackSize: "1KB", LoopCycles: 10000},
			{Name: "B", Entry: 0x00000200, Text: "B", StackTop: 0x20000800, StackSize: "1KB", LoopCycles: 10000},
		},
		TickInterval: 50000,
		SettleCycles: 5,
		MaxCycles:    1000000,
		ResetCycles:  20,
	}
}

// Load reads a profile; the format follows the file extension. Unknown
// keys are rejected. A profile without tasks gets the Default tasks; a
// task without stack_size gets 1KB. Left-out tick_interval,
// settle_cycles, max_cycles and reset_cycles take their Default values.
// loop_cycles is not defaulted: zero means no delay between messages.
func Load(path string) (*Board, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	b := &Board{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.UnmarshalStrict(data, b)
	case ".toml":
		err = toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields().Decode(b)
	default:
		return nil, fmt.Errorf("%s: unknown profile format: %w", path, ErrInvalid)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	b.fillDefaults()
	if err := b.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return b, nil
}

func (b *Board) fillDefaults() {
	d := Default()
	if len(b.Tasks) == 0 {
		b.Tasks = d.Tasks
	}
	for i := range b.Tasks {
		if b.Tasks[i].StackSize == "" {
			b.Tasks[i].StackSize = d.Tasks[0].StackSize
		}
	}
	if b.TickInterval == 0 {
		b.TickInterval = d.TickInterval
	}
	if b.SettleCycles == 0 {
		b.SettleCycles = d.SettleCycles
	}
	if b.MaxCycles == 0 {
		b.MaxCycles = d.MaxCycles
	}
	if b.ResetCycles == 0 {
		b.ResetCycles = d.ResetCycles
	}
}

func (t *Task) stackSize() (kernel.Word, error) {
	n, err := bytesize.Parse(t.StackSize)
	if err != nil {
		return 0, fmt.Errorf("task %s: stack_size %q: %w", t.Name, t.StackSize, err)
	}
	return kernel.Word(n), nil
}

// Validate checks what can be checked without booting. Stack overlap is
// left to the kernel's boot-time assertions.
func (b *Board) Validate() error {
	if len(b.Tasks) != kernel.NTASK {
		return fmt.Errorf("%d tasks, need %d: %w", len(b.Tasks), kernel.NTASK, ErrInvalid)
	}
	names := make(map[string]bool)
	for i := range b.Tasks {
		t := &b.Tasks[i]
		if t.Name == "" || names[t.Name] {
			return fmt.Errorf("task %d: missing or duplicate name %q: %w", i, t.Name, ErrInvalid)
		}
		names[t.Name] = true
		if t.Entry == 0 || !kernel.WORDALIGNED(kernel.Word(t.Entry)) {
			return fmt.Errorf("task %s: entry %#x: %w", t.Name, t.Entry, ErrInvalid)
		}
		if t.Text == "" {
			return fmt.Errorf("task %s: empty text: %w", t.Name, ErrInvalid)
		}
		size, err := t.stackSize()
		if err != nil {
			return fmt.Errorf("%v: %w", err, ErrInvalid)
		}
		if size > kernel.Word(t.StackTop) {
			return fmt.Errorf("task %s: stack below address zero: %w", t.Name, ErrInvalid)
		}
	}
	if b.TickInterval == 0 {
		return fmt.Errorf("tick_interval must be positive: %w", ErrInvalid)
	}
	return nil
}

// KernelTasks converts the profile into the kernel's static task set.
func (b *Board) KernelTasks() ([]kernel.Task, error) {
	out := make([]kernel.Task, 0, len(b.Tasks))
	for i := range b.Tasks {
		t := &b.Tasks[i]
		size, err := t.stackSize()
		if err != nil {
			return nil, err
		}
		out = append(out, kernel.Task{
			Name:  t.Name,
			Entry: kernel.Word(t.Entry),
			Stack: kernel.StackBelow(kernel.Word(t.StackTop), size),
		})
	}
	return out, nil
}

// Routines returns the firmware text for every task.
func (b *Board) Routines() []soc.Routine {
	out := make([]soc.Routine, 0, len(b.Tasks))
	for _, t := range b.Tasks {
		out = append(out, &soc.TextRoutine{
			Base:       kernel.Word(t.Entry),
			Text:       t.Text,
			LoopCycles: t.LoopCycles,
		})
	}
	return out
}

// Machine builds a machine for the profile, preloads the image if any,
// installs the firmware and boots it.
func (b *Board) Machine(opts soc.Options) (*soc.Machine, error) {
	tasks, err := b.KernelTasks()
	if err != nil {
		return nil, err
	}
	opts.TickInterval = b.TickInterval
	opts.SettleCycles = b.SettleCycles
	opts.ResetCycles = b.ResetCycles
	m := soc.New(opts)
	if b.Image != "" {
		if err := soc.LoadHexFile(m.RAM(), b.Image); err != nil {
			return nil, err
		}
	}
	for _, r := range b.Routines() {
		m.Install(r)
	}
	if err := m.Boot(tasks); err != nil {
		return nil, err
	}
	return m, nil
}
