package tasks

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfwise/shelfwise/internal/config"
)

func testTasksConfig() config.Tasks {
	return config.Tasks{
		Enabled:         true,
		Workers:         1,
		ReleaseAfter:    10 * time.Minute,
		CleanupInterval: time.Hour,
	}
}

func TestTasksDBPath(t *testing.T) {
	assert.Equal(t, filepath.Join("data", "shelfwise-tasks.db"), tasksDBPath(filepath.Join("data", "shelfwise.db")))
	assert.Equal(t, "shelfwise-tasks.db", tasksDBPath("shelfwise.db"))
}

func TestNewClient_AcceptsOverdueScans(t *testing.T) {
	mainDB := filepath.Join(t.TempDir(), "shelfwise.db")
	client, err := NewClient(mainDB, testTasksConfig(), &fakeLedger{})
	require.NoError(t, err)
	defer client.Close()

	// The overdue scan queue is registered by NewClient, so enqueuing
	// needs no further setup.
	ids, err := client.Add(OverdueScanTask{RequestedAt: time.Now()}).Save()
	require.NoError(t, err)
	assert.Len(t, ids, 1)

	_, err = os.Stat(filepath.Join(filepath.Dir(mainDB), "shelfwise-tasks.db"))
	assert.NoError(t, err, "queue database should live next to the main database")
}
