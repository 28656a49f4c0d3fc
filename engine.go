package snaplerp

import (
	"crypto/rand"
	"math"

	"github.com/oklog/ulid/v2"
	"github.com/sirupsen/logrus"
)

const (
	// defaultCatchupThreshold disables catch-up: no realistic buffer length
	// will ever exceed it.
	defaultCatchupThreshold = math.MaxInt

	// defaultCatchupMultiplier disables catch-up scaling even if a finite
	// threshold is configured.
	defaultCatchupMultiplier = 0.0
)

// Engine advances an interpolation cursor against a Buffer once per local
// tick, producing either an interpolated snapshot or nothing. It is the
// mutable state object the consumer owns; the cursor lives here, never
// inside the Buffer.
//
// Engine provides no internal synchronization. Compute must be called
// serially from a single consumer goroutine.
type Engine[S Snapshot[S]] struct {
	bufferTime        float64
	catchupThreshold  int
	catchupMultiplier float64

	interpolationTime float64

	logger  logrus.FieldLogger
	entropy *ulid.MonotonicEntropy

	consecutiveOvershoots int

	computed       uint64
	underfull      uint64
	warming        uint64
	segmentsPopped uint64
	catchupEngaged uint64
	overshoots     uint64
}

// EngineOption configures an Engine at construction time.
type EngineOption[S Snapshot[S]] func(*Engine[S])

// NewEngine returns an Engine with its cursor at zero and catch-up disabled
// by default.
func NewEngine[S Snapshot[S]](opts ...EngineOption[S]) *Engine[S] {
	e := &Engine[S]{
		catchupThreshold:  defaultCatchupThreshold,
		catchupMultiplier: defaultCatchupMultiplier,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// InterpolationTime reports the engine's current cursor value.
func (e *Engine[S]) InterpolationTime() float64 {
	return e.interpolationTime
}

// Compute advances the cursor by deltaTime (scaled by catch-up, if engaged)
// and either emits an interpolated snapshot or reports that the buffer
// isn't ready for one yet.
//
// On UNDERFULL (fewer than two buffered snapshots) or WARMING (the second
// snapshot hasn't aged past bufferTime on the local clock), it returns
// (false, zero value) and leaves the cursor untouched.
//
// Otherwise it advances the cursor, pops fully-traversed segments from the
// front of buf (never below two residents), and either interpolates within
// the remaining segment or, on OVERSHOOT (the cursor has run past the
// newest known segment with no new data to traverse into), clamps to the
// newest buffered snapshot without extrapolating.
func (e *Engine[S]) Compute(localTime, deltaTime float64, buf *Buffer[S]) (applied bool, computed S) {
	var tickID ulid.ULID
	if e.logger != nil {
		tickID = e.nextTickID()
	}

	if buf.Len() < 2 {
		e.underfull++
		e.consecutiveOvershoots = 0
		var zero S
		return false, zero
	}

	b1 := buf.At(1)
	if b1.LocalTimestamp() > localTime-e.bufferTime {
		e.warming++
		e.consecutiveOvershoots = 0
		var zero S
		return false, zero
	}

	excess := buf.Len() - e.catchupThreshold
	if excess < 0 {
		excess = 0
	}

	effectiveDelta := deltaTime
	if excess > 0 {
		effectiveDelta = deltaTime * (1 + float64(excess)*e.catchupMultiplier)
		e.catchupEngaged++
		if e.logger != nil {
			e.logger.WithFields(logrus.Fields{
				"tick_id":         tickID.String(),
				"excess":          excess,
				"effective_delta": effectiveDelta,
			}).Debug("snaplerp: catch-up engaged")
		}
	}

	e.interpolationTime += effectiveDelta

	for buf.Len() > 2 {
		b0, b1 := buf.At(0), buf.At(1)
		span := b1.RemoteTimestamp() - b0.RemoteTimestamp()
		if e.interpolationTime < span {
			break
		}
		e.interpolationTime -= span
		buf.popFront()
		e.segmentsPopped++
	}

	b0, b1 := buf.At(0), buf.At(1)
	span := b1.RemoteTimestamp() - b0.RemoteTimestamp()

	if e.interpolationTime >= span {
		// No further segment to traverse into: clamp to the newest known
		// snapshot rather than extrapolate past it.
		e.overshoots++
		e.consecutiveOvershoots++
		if e.logger != nil && e.consecutiveOvershoots > 1 {
			e.logger.WithFields(logrus.Fields{
				"tick_id":     tickID.String(),
				"consecutive": e.consecutiveOvershoots,
			}).Warn("snaplerp: overshoot persisting without new data")
		}
		e.computed++
		return true, b1.Interpolate(b1, 0)
	}

	e.consecutiveOvershoots = 0
	t := e.interpolationTime / span
	e.computed++
	return true, b0.Interpolate(b1, t)
}

func (e *Engine[S]) nextTickID() ulid.ULID {
	if e.entropy == nil {
		e.entropy = ulid.Monotonic(rand.Reader, 0)
	}
	id, err := ulid.New(ulid.Now(), e.entropy)
	if err != nil {
		return ulid.ULID{}
	}
	return id
}
