package soc

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rvtasks-in-go/kernel"
)

func TestDumpHexHoldsTaskTable(t *testing.T) {
	m, _ := bootMachine(t, Options{},
		&TextRoutine{Base: entryA, Text: "A"}, &TextRoutine{Base: entryB, Text: "B"})
	require.NoError(t, m.Tick())

	path := filepath.Join(t.TempDir(), "image.hex")
	require.NoError(t, DumpHexFile(m.RAM(), path, m.KernelImage()...))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(strings.TrimSpace(string(data)), ":00000001FF"))

	r := NewRAM()
	require.NoError(t, LoadHexFile(r, path))
	for a := kernel.TASK_PCS; a < kernel.TABLE_END; a += kernel.WordSize {
		assert.Equal(t, m.RAM().Load32(a), r.Load32(a), "word %#x", uint32(a))
	}
	assert.Equal(t, 1, int(r.Load32(kernel.CURRENT_TASK_PTR)))
	sp := r.Load32(kernel.TASK_SP(0))
	assert.Equal(t, entryA, r.Load32(sp), "saved ra of task A")
}

func TestLoadHexRejectsGarbage(t *testing.T) {
	err := NewRAM().LoadHex(strings.NewReader(":zz\n"))
	assert.Error(t, err)
}

func TestLoadHexLeavesNoLockFile(t *testing.T) {
	m, _ := bootMachine(t, Options{},
		&TextRoutine{Base: entryA, Text: "A"}, &TextRoutine{Base: entryB, Text: "B"})
	dir := t.TempDir()
	path := filepath.Join(dir, "image.hex")
	require.NoError(t, DumpHexFile(m.RAM(), path, m.KernelImage()...))
	require.NoError(t, os.Remove(path+".lock"))

	require.NoError(t, LoadHexFile(NewRAM(), path))
	_, err := os.Stat(path + ".lock")
	assert.True(t, os.IsNotExist(err))
}
