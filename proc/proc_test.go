package proc_test

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sysprims-dev/sysprims"
	"github.com/sysprims-dev/sysprims/proc"
)

func TestProcessListNonEmpty(t *testing.T) {
	snap, err := proc.ProcessList(nil)
	require.NoError(t, err)
	assert.NotEmpty(t, snap.Processes)
	assert.NotEmpty(t, snap.SchemaID)
}

func TestProcessGetSelf(t *testing.T) {
	pid := uint32(os.Getpid())
	info, err := proc.ProcessGet(pid)
	require.NoError(t, err)
	assert.Equal(t, pid, info.PID)
	assert.NotEmpty(t, info.Name)
}

func TestProcessGetInvalidPID(t *testing.T) {
	_, err := proc.ProcessGet(0)
	require.Error(t, err)
	var sErr *sysprims.Error
	require.ErrorAs(t, err, &sErr)
	assert.Equal(t, sysprims.ErrInvalidArgument, sErr.Kind)
}

func TestProcessGetNonexistent(t *testing.T) {
	_, err := proc.ProcessGet(99999999)
	if err == nil {
		t.Skip("pid 99999999 unexpectedly exists on this system")
	}
	var sErr *sysprims.Error
	require.ErrorAs(t, err, &sErr)
	assert.Equal(t, sysprims.ErrNotFound, sErr.Kind)
}

func TestProcessListFilterByPID(t *testing.T) {
	pid := uint32(os.Getpid())
	snap, err := proc.ProcessList(&proc.ProcessFilter{PIDIn: []uint32{pid}})
	require.NoError(t, err)
	require.Len(t, snap.Processes, 1)
	assert.Equal(t, pid, snap.Processes[0].PID)
}

func TestDescendantsOfSelfHasNoAncestorsAsChildren(t *testing.T) {
	pid := uint32(os.Getpid())
	result, err := proc.Descendants(pid, 1, nil)
	require.NoError(t, err)
	assert.Equal(t, pid, result.RootPID)
	parent := uint32(os.Getppid())
	for _, lvl := range result.Levels {
		for _, p := range lvl.Processes {
			assert.NotEqual(t, pid, p.PID)
			assert.NotEqual(t, parent, p.PID)
		}
	}
}
