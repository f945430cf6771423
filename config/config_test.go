package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rvtasks-in-go/kernel"
	"rvtasks-in-go/soc"
)

func TestDefaultMatchesReferenceFirmware(t *testing.T) {
	b := Default()
	require.NoError(t, b.Validate())

	tasks, err := b.KernelTasks()
	require.NoError(t, err)
	require.Len(t, tasks, kernel.NTASK)
	assert.Equal(t, kernel.Word(0x20000800), tasks[1].Stack.Top)
	assert.Equal(t, kernel.Word(0x20000780), tasks[1].Stack.InitialSP())
	assert.Equal(t, kernel.Word(1024), tasks[1].Stack.Size())
}

func TestLoadFormats(t *testing.T) {
	for _, name := range []string{"board.yaml", "board.toml"} {
		t.Run(name, func(t *testing.T) {
			b, err := Load(filepath.Join("testdata", name))
			require.NoError(t, err)

			require.Len(t, b.Tasks, 2)
			assert.Equal(t, "ping", b.Tasks[0].Name)
			assert.Equal(t, uint32(0x400), b.Tasks[0].Entry)
			assert.Equal(t, uint32(300), b.Tasks[0].LoopCycles)
			assert.Equal(t, uint64(4000), b.TickInterval)
			assert.Equal(t, uint32(8), b.SettleCycles)
			assert.Equal(t, Default().MaxCycles, b.MaxCycles, "missing fields keep defaults")
			assert.Equal(t, uint64(20), b.ResetCycles)

			tasks, err := b.KernelTasks()
			require.NoError(t, err)
			assert.Equal(t, kernel.StackRegion{Base: 0x20001800, Top: 0x20002000}, tasks[0].Stack)
		})
	}
}

func writeProfile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadRejects(t *testing.T) {
	tests := []struct {
		name string
		file string
		body string
	}{
		{"unknown extension", "board.json", "{}"},
		{"one task", "board.yaml", "tasks:\n  - {name: a, entry: 0x100, text: a, stack_top: 0x20001000}\n"},
		{"zero entry", "board.yaml", "tasks:\n  - {name: a, entry: 0, text: a, stack_top: 0x20001000}\n  - {name: b, entry: 0x200, text: b, stack_top: 0x20000800}\n"},
		{"unaligned entry", "board.yaml", "tasks:\n  - {name: a, entry: 0x101, text: a, stack_top: 0x20001000}\n  - {name: b, entry: 0x200, text: b, stack_top: 0x20000800}\n"},
		{"duplicate name", "board.yaml", "tasks:\n  - {name: a, entry: 0x100, text: a, stack_top: 0x20001000}\n  - {name: a, entry: 0x200, text: b, stack_top: 0x20000800}\n"},
		{"empty text", "board.yaml", "tasks:\n  - {name: a, entry: 0x100, stack_top: 0x20001000}\n  - {name: b, entry: 0x200, text: b, stack_top: 0x20000800}\n"},
		{"bad size", "board.yaml", "tasks:\n  - {name: a, entry: 0x100, text: a, stack_top: 0x20001000, stack_size: lots}\n  - {name: b, entry: 0x200, text: b, stack_top: 0x20000800}\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeProfile(t, tt.file, tt.body))
			require.ErrorIs(t, err, ErrInvalid)
		})
	}
}

func TestLoadRejectsUnknownYAMLField(t *testing.T) {
	_, err := Load(writeProfile(t, "board.yml", "tick_interval: 10\nwat: 1\n"))
	require.Error(t, err)
}

func TestBoardMachineRuns(t *testing.T) {
	b, err := Load(filepath.Join("testdata", "board.yaml"))
	require.NoError(t, err)

	out := &bytes.Buffer{}
	m, err := b.Machine(soc.Options{Output: out})
	require.NoError(t, err)
	require.NoError(t, m.Run(40000))

	got := out.String()
	assert.Contains(t, got, "[INFO] Starting Task ping...")
	assert.True(t, strings.Count(got, "ping ") > 1, got)
	assert.True(t, strings.Count(got, "pong ") > 1, got)
}

func TestBoardMachineRejectsOverlap(t *testing.T) {
	b := Default()
	b.Tasks[1].StackTop = 0x20000F00
	_, err := b.Machine(soc.Options{})
	require.ErrorIs(t, err, kernel.ErrRegionOverlap)
}

func TestLoadRejectsUnknownTOMLField(t *testing.T) {
	_, err := Load(writeProfile(t, "board.toml", "tick_interval = 10\nwat = 1\n"))
	require.Error(t, err)
}

func TestLoadDefaultsOnlyNamedFields(t *testing.T) {
	body := "tasks:\n" +
		"  - {name: ping, entry: 0x400, text: ping, stack_top: 0x20002000, loop_cycles: 300}\n" +
		"  - {name: pong, entry: 0x800, text: pong, stack_top: 0x20001000}\n"
	b, err := Load(writeProfile(t, "board.yaml", body))
	require.NoError(t, err)

	assert.Equal(t, "1KB", b.Tasks[0].StackSize)
	assert.Equal(t, "1KB", b.Tasks[1].StackSize)
	assert.Equal(t, uint32(300), b.Tasks[0].LoopCycles)
	assert.Zero(t, b.Tasks[1].LoopCycles, "loop_cycles is not defaulted")
	assert.Equal(t, Default().TickInterval, b.TickInterval)
	assert.Equal(t, Default().ResetCycles, b.ResetCycles)
}

func TestBoardMachineHoldsReset(t *testing.T) {
	b := Default()
	b.ResetCycles = 500
	m, err := b.Machine(soc.Options{Output: &bytes.Buffer{}})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, m.Clock().Now(), uint64(500))
}
