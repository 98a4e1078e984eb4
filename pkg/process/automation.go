package process

import (
	"encoding/json"
	"fmt"
	"slices"
	"time"

	"github.com/aretw0/cadence/pkg/domain"
)

// AutomationKind is the process kind of Automation.
const AutomationKind = "Automation"

// Point is one breakpoint of an automation curve. X is the normalized
// position in the parent constraint, Y the normalized value.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Automation drives a remote address along a curve between Min and Max.
type Automation struct {
	domain.ProcessBase

	address string
	min     float64
	max     float64
	points  []Point

	AddressChanged domain.Signal[string]
	PointsChanged  domain.Signal[[]Point]
}

// NewAutomation creates an automation with a linear ramp from 0 to 1.
func NewAutomation(id domain.ProcessID, duration time.Duration, parent *domain.Constraint) *Automation {
	return &Automation{
		ProcessBase: domain.NewProcessBase(id, duration, parent),
		max:         1,
		points:      []Point{{X: 0, Y: 0}, {X: 1, Y: 1}},
	}
}

func (a *Automation) Kind() string { return AutomationKind }

func (a *Automation) Address() string { return a.address }

func (a *Automation) SetAddress(addr string) {
	if a.address == addr {
		return
	}
	a.address = addr
	a.AddressChanged.Emit(addr)
}

func (a *Automation) Min() float64 { return a.min }
func (a *Automation) Max() float64 { return a.max }

// SetRange sets the output bounds. min must not exceed max.
func (a *Automation) SetRange(min, max float64) error {
	if min > max {
		return fmt.Errorf("automation %d: min %g exceeds max %g", a.ID(), min, max)
	}
	a.min, a.max = min, max
	return nil
}

// Points returns a copy of the curve.
func (a *Automation) Points() []Point {
	return slices.Clone(a.points)
}

// SetPoints replaces the curve. Points are kept sorted by X.
func (a *Automation) SetPoints(points []Point) {
	sorted := slices.Clone(points)
	slices.SortStableFunc(sorted, func(p, q Point) int {
		switch {
		case p.X < q.X:
			return -1
		case p.X > q.X:
			return 1
		}
		return 0
	})
	if slices.Equal(a.points, sorted) {
		return
	}
	a.points = sorted
	a.PointsChanged.Emit(slices.Clone(sorted))
}

// ValueAt interpolates the curve at position x in [0, 1] and scales the
// result to the output range.
func (a *Automation) ValueAt(x float64) float64 {
	if len(a.points) == 0 {
		return a.min
	}
	y := a.points[0].Y
	switch last := a.points[len(a.points)-1]; {
	case x <= a.points[0].X:
	case x >= last.X:
		y = last.Y
	default:
		for i := 1; i < len(a.points); i++ {
			p, q := a.points[i-1], a.points[i]
			if x > q.X {
				continue
			}
			if q.X == p.X {
				y = q.Y
			} else {
				y = p.Y + (q.Y-p.Y)*(x-p.X)/(q.X-p.X)
			}
			break
		}
	}
	return a.min + y*(a.max-a.min)
}

// Reset is a no-op: an automation holds no playback state of its own.
func (a *Automation) Reset() {}

func (a *Automation) Clone(id domain.ProcessID, parent *domain.Constraint, _ domain.Factories) (domain.Process, error) {
	out := NewAutomation(id, a.Duration(), parent)
	out.address = a.address
	out.min, out.max = a.min, a.max
	out.points = slices.Clone(a.points)
	return out, nil
}

type automationPayload struct {
	Address string  `json:"address"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Points  []Point `json:"points"`
}

func (a *Automation) Snapshot() (domain.ProcessData, error) {
	raw, err := json.Marshal(automationPayload{Address: a.address, Min: a.min, Max: a.max, Points: a.points})
	if err != nil {
		return domain.ProcessData{}, fmt.Errorf("marshal automation %d: %w", a.ID(), err)
	}
	data := a.Data(AutomationKind)
	data.Payload = raw
	return data, nil
}

// AutomationFactory builds Automation processes and their layers.
type AutomationFactory struct{}

func (AutomationFactory) Kind() string { return AutomationKind }

func (AutomationFactory) MakeProcess(id domain.ProcessID, duration time.Duration, parent *domain.Constraint) domain.Process {
	return NewAutomation(id, duration, parent)
}

func (AutomationFactory) Restore(data domain.ProcessData, parent *domain.Constraint, _ domain.Factories) (domain.Process, error) {
	a := NewAutomation(data.ID, data.Duration, parent)
	if len(data.Payload) == 0 {
		return a, nil
	}
	var p automationPayload
	if err := json.Unmarshal(data.Payload, &p); err != nil {
		return nil, fmt.Errorf("unmarshal automation %d: %w", data.ID, err)
	}
	a.address = p.Address
	if err := a.SetRange(p.Min, p.Max); err != nil {
		return nil, err
	}
	a.points = slices.Clone(p.Points)
	return a, nil
}

func (AutomationFactory) MakeLayer(proc domain.Process, id domain.LayerID) *domain.Layer {
	return domain.NewLayer(id, proc, map[string]string{"curve": "linear"})
}

func (AutomationFactory) CloneLayer(proc domain.Process, id domain.LayerID, source *domain.Layer) *domain.Layer {
	return domain.NewLayer(id, proc, source.Options())
}
