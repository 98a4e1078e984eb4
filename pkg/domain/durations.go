package domain

import "time"

// Durations holds the timing of a Constraint: its default, minimum and
// maximum durations plus the transient play position and execution speed.
type Durations struct {
	defaultDuration time.Duration
	minDuration     time.Duration
	maxDuration     time.Duration
	playPercentage  float64
	executionSpeed  float64

	DefaultDurationChanged Signal[time.Duration]
	MinDurationChanged     Signal[time.Duration]
	MaxDurationChanged     Signal[time.Duration]
	PlayPercentageChanged  Signal[float64]
	ExecutionSpeedChanged  Signal[float64]
}

// NewDurations returns rigid durations (min = default = max) at speed 1.
func NewDurations(d time.Duration) *Durations {
	return &Durations{
		defaultDuration: d,
		minDuration:     d,
		maxDuration:     d,
		executionSpeed:  1.0,
	}
}

func (d *Durations) Default() time.Duration { return d.defaultDuration }

func (d *Durations) SetDefault(v time.Duration) {
	if d.defaultDuration == v {
		return
	}
	d.defaultDuration = v
	d.DefaultDurationChanged.Emit(v)
}

func (d *Durations) Min() time.Duration { return d.minDuration }

func (d *Durations) SetMin(v time.Duration) {
	if d.minDuration == v {
		return
	}
	d.minDuration = v
	d.MinDurationChanged.Emit(v)
}

func (d *Durations) Max() time.Duration { return d.maxDuration }

func (d *Durations) SetMax(v time.Duration) {
	if d.maxDuration == v {
		return
	}
	d.maxDuration = v
	d.MaxDurationChanged.Emit(v)
}

// Rigid reports whether min, default and max are all equal.
func (d *Durations) Rigid() bool {
	return d.minDuration == d.defaultDuration && d.defaultDuration == d.maxDuration
}

// Resize sets the default duration. A rigid constraint stays rigid; otherwise
// min and max are widened just enough to contain the new default.
func (d *Durations) Resize(v time.Duration) {
	rigid := d.Rigid()
	d.SetDefault(v)
	if rigid {
		d.SetMin(v)
		d.SetMax(v)
		return
	}
	if d.minDuration > v {
		d.SetMin(v)
	}
	if d.maxDuration < v {
		d.SetMax(v)
	}
}

func (d *Durations) PlayPercentage() float64 { return d.playPercentage }

func (d *Durations) SetPlayPercentage(v float64) {
	if d.playPercentage == v {
		return
	}
	d.playPercentage = v
	d.PlayPercentageChanged.Emit(v)
}

func (d *Durations) ExecutionSpeed() float64 { return d.executionSpeed }

func (d *Durations) SetExecutionSpeed(v float64) {
	if d.executionSpeed == v {
		return
	}
	d.executionSpeed = v
	d.ExecutionSpeedChanged.Emit(v)
}

// copyFrom copies the scalar values only; subscriptions are never shared.
func (d *Durations) copyFrom(src *Durations) {
	d.defaultDuration = src.defaultDuration
	d.minDuration = src.minDuration
	d.maxDuration = src.maxDuration
	d.playPercentage = src.playPercentage
	d.executionSpeed = src.executionSpeed
}
