package snaplerp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSnapshot is a minimal Snapshot[fakeSnapshot] used across the core
// package's tests. Its Interpolate is a plain scalar lerp, which is enough
// to exercise buffer ordering and the stepping engine without pulling in
// the transform package.
type fakeSnapshot struct {
	remote float64
	local  float64
	value  float64
}

func (f fakeSnapshot) RemoteTimestamp() float64 { return f.remote }
func (f fakeSnapshot) LocalTimestamp() float64  { return f.local }

func (f fakeSnapshot) Interpolate(to fakeSnapshot, t float64) fakeSnapshot {
	return fakeSnapshot{value: f.value + (to.value-f.value)*t}
}

func snap(remote, local, value float64) fakeSnapshot {
	return fakeSnapshot{remote: remote, local: local, value: value}
}

func bufferTimestamps[S Snapshot[S]](b *Buffer[S]) []float64 {
	out := make([]float64, b.Len())
	for i := range out {
		out[i] = b.At(i).RemoteTimestamp()
	}
	return out
}

func TestBufferAdmissionOrdering(t *testing.T) {
	t.Parallel()

	// Snapshots are kept in ascending remote-timestamp order regardless of arrival order.
	b := NewBuffer[fakeSnapshot]()

	require.True(t, b.InsertIfNewEnough(snap(1, 1, 0)))
	assert.Equal(t, []float64{1}, bufferTimestamps(b))

	require.False(t, b.InsertIfNewEnough(snap(0.5, 0.5, 0)))
	assert.Equal(t, []float64{1}, bufferTimestamps(b))

	require.True(t, b.InsertIfNewEnough(snap(2, 2, 0)))
	assert.Equal(t, []float64{1, 2}, bufferTimestamps(b))

	require.True(t, b.InsertIfNewEnough(snap(2.5, 2.5, 0)))
	assert.Equal(t, []float64{1, 2, 2.5}, bufferTimestamps(b))
}

func TestBufferACBInvariant(t *testing.T) {
	t.Parallel()

	// The active interpolation segment's two endpoints can never be displaced by a late arrival.
	b := NewBuffer[fakeSnapshot]()

	require.True(t, b.InsertIfNewEnough(snap(0, 0, 0))) // A
	require.True(t, b.InsertIfNewEnough(snap(2, 2, 0))) // C

	admitted := b.InsertIfNewEnough(snap(1, 1, 0)) // B, rejected

	assert.False(t, admitted)
	assert.Equal(t, 2, b.Len())
	assert.Equal(t, []float64{0, 2}, bufferTimestamps(b))
}

func TestBufferFirstIsLagging(t *testing.T) {
	t.Parallel()

	// With a single resident, an older-or-equal late arrival never re-latches the head.
	b := NewBuffer[fakeSnapshot]()

	require.True(t, b.InsertIfNewEnough(snap(1, 1, 0))) // B

	admitted := b.InsertIfNewEnough(snap(0, 0, 0)) // A, rejected

	assert.False(t, admitted)
	assert.Equal(t, 1, b.Len())
	assert.Equal(t, []float64{1}, bufferTimestamps(b))
}

func TestBufferRejectsDuplicateKeys(t *testing.T) {
	t.Parallel()

	b := NewBuffer[fakeSnapshot]()
	require.True(t, b.InsertIfNewEnough(snap(0, 0, 0)))
	require.True(t, b.InsertIfNewEnough(snap(1, 1, 0)))

	// duplicate of the second (active-segment) key must be rejected.
	assert.False(t, b.InsertIfNewEnough(snap(1, 1, 99)))
	assert.Equal(t, 2, b.Len())
}

func TestBufferMaintainsStrictOrderingUnderLateTailInserts(t *testing.T) {
	t.Parallel()

	// A late arrival that lands strictly past the active segment but
	// strictly before an already-buffered later entry must still be
	// inserted in sorted position, not appended out of order.
	b := NewBuffer[fakeSnapshot]()

	require.True(t, b.InsertIfNewEnough(snap(0, 0, 0)))
	require.True(t, b.InsertIfNewEnough(snap(1, 1, 0)))
	require.True(t, b.InsertIfNewEnough(snap(5, 5, 0)))

	require.True(t, b.InsertIfNewEnough(snap(3, 3, 0)))

	assert.Equal(t, []float64{0, 1, 3, 5}, bufferTimestamps(b))
}

func TestBufferAdmissionSequenceKeepsKeysStrictlyIncreasing(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		inserts []float64
	}{
		{"ascending", []float64{0, 1, 2, 3, 4}},
		{"interleaved late arrivals", []float64{0, 2, 1, 4, 3, 6, 5}},
		{"repeated stale arrivals", []float64{1, 0, -1, 2, 0.5, 3}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			b := NewBuffer[fakeSnapshot]()
			for _, ts := range tc.inserts {
				b.InsertIfNewEnough(snap(ts, ts, 0))
			}

			keys := bufferTimestamps(b)
			for i := 1; i < len(keys); i++ {
				assert.Greater(t, keys[i], keys[i-1], "keys must be strictly increasing")
			}
		})
	}
}

func TestBufferMetricsCounts(t *testing.T) {
	t.Parallel()

	b := NewBuffer[fakeSnapshot]()
	b.InsertIfNewEnough(snap(0, 0, 0))
	b.InsertIfNewEnough(snap(1, 1, 0))
	b.InsertIfNewEnough(snap(0.5, 0.5, 0)) // rejected, ACB

	admitted, rejected := b.counts()
	assert.Equal(t, uint64(2), admitted)
	assert.Equal(t, uint64(1), rejected)
}
