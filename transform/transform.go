// Package transform provides a concrete networked transform snapshot:
// a position and rotation pair satisfying snaplerp.Snapshot[Transform].
package transform

import "math"

// Transform is a point-in-time position and rotation sample, timestamped
// on both the producer's and the consumer's clocks.
type Transform struct {
	Position [3]float64 // world-space x, y, z
	Rotation [4]float64 // unit quaternion x, y, z, w

	remoteTimestamp float64
	localTimestamp  float64
}

// New builds a Transform for the given remote (producer) and local
// (consumer arrival) clock readings.
func New(position [3]float64, rotation [4]float64, remoteTimestamp, localTimestamp float64) Transform {
	return Transform{
		Position:        position,
		Rotation:        rotation,
		remoteTimestamp: remoteTimestamp,
		localTimestamp:  localTimestamp,
	}
}

// RemoteTimestamp returns the producer's clock reading for the sample.
func (t Transform) RemoteTimestamp() float64 { return t.remoteTimestamp }

// LocalTimestamp returns the consumer's clock reading at admission time.
func (t Transform) LocalTimestamp() float64 { return t.localTimestamp }

// Interpolate returns the component-wise lerp of Position and the
// normalized lerp of Rotation between t (at u=0) and to (at u=1). The
// returned Transform's timestamps are unspecified, matching the
// interpolation contract's note that they must not be consumed.
func (t Transform) Interpolate(to Transform, u float64) Transform {
	var out Transform
	for i := range t.Position {
		out.Position[i] = t.Position[i] + (to.Position[i]-t.Position[i])*u
	}
	out.Rotation = nlerp(t.Rotation, to.Rotation, u)
	return out
}

// nlerp linearly interpolates two unit quaternions and renormalizes the
// result. It takes the shorter arc by flipping to's sign when the
// quaternions point into opposite hemispheres.
func nlerp(from, to [4]float64, u float64) [4]float64 {
	if dot(from, to) < 0 {
		to = [4]float64{-to[0], -to[1], -to[2], -to[3]}
	}

	var out [4]float64
	for i := range out {
		out[i] = from[i] + (to[i]-from[i])*u
	}

	n := math.Sqrt(dot(out, out))
	if n == 0 {
		return from
	}
	for i := range out {
		out[i] /= n
	}
	return out
}

func dot(a, b [4]float64) float64 {
	var sum float64
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}
