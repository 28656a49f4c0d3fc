package snaplerp

import "github.com/sirupsen/logrus"

// WithBufferTime sets the minimum local-clock age (in seconds) a snapshot
// must reach before it is eligible to serve as the second endpoint of an
// interpolation segment. This is the jitter buffer depth.
func WithBufferTime[S Snapshot[S]](seconds float64) EngineOption[S] {
	return func(e *Engine[S]) {
		if seconds >= 0 {
			e.bufferTime = seconds
		}
	}
}

// WithCatchupThreshold sets the buffer length above which catch-up
// scaling engages. A threshold of math.MaxInt (the default) disables
// catch-up.
func WithCatchupThreshold[S Snapshot[S]](n int) EngineOption[S] {
	return func(e *Engine[S]) {
		if n >= 0 {
			e.catchupThreshold = n
		}
	}
}

// WithCatchupMultiplier sets the per-excess-entry fractional speed-up
// applied to the cursor once the buffer exceeds the catch-up threshold.
// Zero (the default) disables catch-up regardless of the threshold.
func WithCatchupMultiplier[S Snapshot[S]](m float64) EngineOption[S] {
	return func(e *Engine[S]) {
		if m >= 0 {
			e.catchupMultiplier = m
		}
	}
}

// WithEngineLogger attaches a structured logger used to report catch-up
// engagement (Debug) and persistent overshoot (Warn). The zero value
// (nil) disables logging entirely, including ULID correlation-ID
// minting, at no cost beyond a pointer check per tick.
func WithEngineLogger[S Snapshot[S]](log logrus.FieldLogger) EngineOption[S] {
	return func(e *Engine[S]) {
		e.logger = log
	}
}

// WithInitialInterpolationTime seeds the cursor, mainly useful for tests
// that resume a previously-running engine's state.
func WithInitialInterpolationTime[S Snapshot[S]](seconds float64) EngineOption[S] {
	return func(e *Engine[S]) {
		e.interpolationTime = seconds
	}
}
