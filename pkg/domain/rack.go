package domain

import (
	"maps"
	"time"
)

// Rack owns an ordered sequence of Slots.
type Rack struct {
	id       RackID
	parent   *Constraint
	duration time.Duration

	Slots Collection[SlotID, *Slot]

	DurationChanged Signal[time.Duration]
}

func NewRack(id RackID) *Rack {
	r := &Rack{id: id}
	r.Slots.Added.Connect(func(s *Slot) { s.parent = r })
	return r
}

func (r *Rack) ID() RackID { return r.id }

// Constraint returns the owning constraint, or nil while detached.
func (r *Rack) Constraint() *Constraint { return r.parent }

func (r *Rack) Duration() time.Duration { return r.duration }

// OnDurationChanged follows the default duration of the owning constraint.
func (r *Rack) OnDurationChanged(d time.Duration) {
	if r.duration == d {
		return
	}
	r.duration = d
	r.DurationChanged.Emit(d)
}

// OnDeleteSharedProcess removes every layer showing p.
func (r *Rack) OnDeleteSharedProcess(p Process) {
	for _, s := range r.Slots.All() {
		for _, l := range s.Layers.All() {
			if l.process == p.ID() {
				_, _ = s.Layers.Remove(l.ID())
			}
		}
	}
}

// Slot owns an ordered sequence of Layers.
type Slot struct {
	id     SlotID
	parent *Rack
	height float64

	Layers Collection[LayerID, *Layer]

	HeightChanged Signal[float64]
}

func NewSlot(id SlotID, height float64) *Slot {
	s := &Slot{id: id, height: height}
	s.Layers.Added.Connect(func(l *Layer) { l.parent = s })
	return s
}

func (s *Slot) ID() SlotID { return s.id }
func (s *Slot) Rack() *Rack { return s.parent }
func (s *Slot) Height() float64 { return s.height }

func (s *Slot) SetHeight(h float64) {
	if s.height == h {
		return
	}
	s.height = h
	s.HeightChanged.Emit(h)
}

// Layer shows one Process of the enclosing Constraint inside a Slot. It holds
// the process id only; the process is resolved through the constraint.
type Layer struct {
	id      LayerID
	process ProcessID
	kind    string
	parent  *Slot
	options map[string]string
}

// NewLayer creates a layer showing proc.
func NewLayer(id LayerID, proc Process, options map[string]string) *Layer {
	return &Layer{id: id, process: proc.ID(), kind: proc.Kind(), options: maps.Clone(options)}
}

func (l *Layer) ID() LayerID { return l.id }
func (l *Layer) ProcessID() ProcessID { return l.process }
func (l *Layer) Kind() string { return l.kind }
func (l *Layer) Slot() *Slot { return l.parent }

// Options returns a copy of the layer display options.
func (l *Layer) Options() map[string]string {
	return maps.Clone(l.options)
}

// Process resolves the shown process through the owning constraint.
func (l *Layer) Process() (Process, error) {
	if l.parent == nil || l.parent.parent == nil || l.parent.parent.parent == nil {
		return nil, structural(KindLayer, int32(l.id), "layer is detached from its constraint")
	}
	c := l.parent.parent.parent
	p, ok := c.Processes.Get(l.process)
	if !ok {
		return nil, structural(KindLayer, int32(l.id), "process %d not found in constraint %d", l.process, c.ID())
	}
	return p, nil
}
