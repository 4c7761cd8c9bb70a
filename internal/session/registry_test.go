package session

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingCloser struct {
	closed atomic.Int32
}

func (c *countingCloser) Close() error {
	c.closed.Add(1)
	return nil
}

func TestRegistry_CreateYieldsUniqueIDs(t *testing.T) {
	r := NewRegistry()

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := r.Create(nil)
		require.False(t, seen[id], "duplicate session id %s", id)
		seen[id] = true
	}
}

func TestRegistry_ReadUnknownIDReturnsAbsent(t *testing.T) {
	r := NewRegistry()

	_, ok := r.Read("no-such-session")
	assert.False(t, ok)
}

func TestRegistry_UpdateAfterCancelSignalsWorkerStop(t *testing.T) {
	r := NewRegistry()
	id := r.Create(nil)

	require.True(t, r.Update(id, 10, 100, "sampling", StatusProcessing))
	require.True(t, r.Cancel(id))

	assert.False(t, r.Update(id, 20, 100, "sampling", StatusProcessing))
}

func TestRegistry_CancelIsIdempotent(t *testing.T) {
	r := NewRegistry()
	closer := &countingCloser{}
	id := r.Create(closer)

	assert.True(t, r.Cancel(id))
	assert.False(t, r.Cancel(id))
	assert.Equal(t, int32(1), closer.closed.Load())
}

func TestRegistry_HandleReleasedOnceAcrossCompleteAndRead(t *testing.T) {
	r := NewRegistry()
	closer := &countingCloser{}
	id := r.Create(closer)

	require.True(t, r.Complete(id, map[string]int{"samples": 3}))
	assert.Equal(t, int32(1), closer.closed.Load())

	snap, ok := r.Read(id)
	require.True(t, ok)
	assert.Equal(t, StatusCompleted, snap.Status)
	assert.NotNil(t, snap.Result)

	// Terminal session is consumed by the read.
	_, ok = r.Read(id)
	assert.False(t, ok)
	assert.Equal(t, int32(1), closer.closed.Load())
}

func TestRegistry_FailRecordsErrorForPolling(t *testing.T) {
	r := NewRegistry()
	id := r.Create(nil)

	require.True(t, r.Fail(id, "zero frames decoded"))

	snap, ok := r.Read(id)
	require.True(t, ok)
	assert.Equal(t, StatusError, snap.Status)
	assert.Equal(t, "zero frames decoded", snap.Error)
}

func TestRegistry_ProgressIsMonotonic(t *testing.T) {
	r := NewRegistry()
	id := r.Create(nil)

	require.True(t, r.Update(id, 50, 100, "", StatusProcessing))
	require.True(t, r.Update(id, 30, 100, "", StatusProcessing))

	snap, ok := r.Read(id)
	require.True(t, ok)
	assert.Equal(t, 50, snap.Progress)
}

func TestRegistry_SweepReleasesOldSessions(t *testing.T) {
	r := NewRegistry()
	closer := &countingCloser{}
	id := r.Create(closer)

	// Fresh session survives the sweep.
	assert.Equal(t, 0, r.Sweep(time.Minute))
	require.Equal(t, 1, r.Len())

	// Backdate by reaching through the map the way a sweep would see it.
	r.mu.Lock()
	r.sessions[id].createdAt = time.Now().Add(-time.Hour)
	r.mu.Unlock()

	assert.Equal(t, 1, r.Sweep(10*time.Minute))
	assert.Equal(t, 0, r.Len())
	assert.Equal(t, int32(1), closer.closed.Load())

	_, ok := r.Read(id)
	assert.False(t, ok)
}
