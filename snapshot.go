// Package snaplerp provides a high-performance time-based buffer for
// interpolating irregularly-timed network snapshots into a smooth,
// monotonically advancing stream.
package snaplerp

// Snapshot is the capability a payload type must expose to participate in
// buffering and interpolation. S is the concrete payload type itself, so
// Interpolate can return another value of the same type without dynamic
// dispatch.
//
// RemoteTimestamp is the producer's clock reading for the sample and drives
// buffer ordering. LocalTimestamp is the consumer's clock reading at
// admission time and is used only for buffer-time gating, never ordering.
// Interpolate must be linear in t over the payload's own metric, treating
// t=0 as the receiver and t=1 as to; the engine never calls it with t
// outside [0,1].
type Snapshot[S any] interface {
	RemoteTimestamp() float64
	LocalTimestamp() float64
	Interpolate(to S, t float64) S
}
