package snaplerp

import (
	"sort"

	"github.com/sirupsen/logrus"
)

// Buffer holds admitted snapshots ordered by strictly increasing
// RemoteTimestamp. It provides no internal synchronization: a single
// consumer must drive Compute serially, and a producer calling
// InsertIfNewEnough from a different goroutine must be externally
// synchronized with that consumer (cmd/snaplerpd's syncedBuffer does this
// with a mutex).
type Buffer[S Snapshot[S]] struct {
	entries []S
	logger  logrus.FieldLogger

	admitted uint64
	rejected uint64
}

// BufferOption configures a Buffer at construction time.
type BufferOption[S Snapshot[S]] func(*Buffer[S])

// WithBufferLogger attaches a structured logger used to report admission
// rejections at Debug level. The zero value (nil) disables logging.
func WithBufferLogger[S Snapshot[S]](log logrus.FieldLogger) BufferOption[S] {
	return func(b *Buffer[S]) {
		b.logger = log
	}
}

// NewBuffer returns an empty ordered buffer.
func NewBuffer[S Snapshot[S]](opts ...BufferOption[S]) *Buffer[S] {
	b := &Buffer[S]{}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Len returns the number of admitted snapshots currently buffered.
func (b *Buffer[S]) Len() int {
	return len(b.entries)
}

// At returns the snapshot at position i in ascending remote-timestamp order.
// It panics if i is out of range, matching slice semantics.
func (b *Buffer[S]) At(i int) S {
	return b.entries[i]
}

// InsertIfNewEnough admits s if it satisfies the buffer's admission rules:
//
//   - an empty buffer admits anything;
//   - with exactly one resident b0, s is admitted only if its remote
//     timestamp is strictly greater than b0's (first-is-lagging: an
//     older or equal late arrival never re-latches the head);
//   - with two or more residents, s is admitted only if its remote
//     timestamp is strictly greater than the second resident b1's (ACB:
//     the active interpolation segment [b0, b1] is never mutated).
//
// Rejections are silent, not an error; the snapshot is simply dropped.
// It reports whether s was admitted.
func (b *Buffer[S]) InsertIfNewEnough(s S) bool {
	ts := s.RemoteTimestamp()

	switch n := len(b.entries); {
	case n == 0:
		// nothing to compare against; always admit.
	case n == 1:
		if ts <= b.entries[0].RemoteTimestamp() {
			b.reject(s, "first-is-lagging")
			return false
		}
	default:
		if ts <= b.entries[1].RemoteTimestamp() {
			b.reject(s, "acb")
			return false
		}
	}

	idx := sort.Search(len(b.entries), func(i int) bool {
		return b.entries[i].RemoteTimestamp() > ts
	})
	b.entries = append(b.entries, s)
	copy(b.entries[idx+1:], b.entries[idx:])
	b.entries[idx] = s

	b.admitted++
	return true
}

func (b *Buffer[S]) reject(s S, reason string) {
	b.rejected++
	if b.logger == nil {
		return
	}
	b.logger.WithFields(logrus.Fields{
		"reason":           reason,
		"remote_timestamp": s.RemoteTimestamp(),
	}).Debug("snaplerp: admission rejected")
}

// popFront evicts the oldest snapshot. The caller must ensure the buffer
// is non-empty.
func (b *Buffer[S]) popFront() {
	copy(b.entries, b.entries[1:])
	b.entries = b.entries[:len(b.entries)-1]
}

// counts returns the raw admitted/rejected totals for Metrics().
func (b *Buffer[S]) counts() (admitted, rejected uint64) {
	return b.admitted, b.rejected
}
