package domain

import (
	"encoding/json"
	"time"
)

// Process is the polymorphic payload hosted by a Constraint. The concrete
// variant is identified by Kind, which keys the factory registry.
type Process interface {
	ID() ProcessID
	Kind() string
	Parent() *Constraint
	Duration() time.Duration
	SetDuration(d time.Duration)
	Executing() bool

	StartExecution()
	StopExecution()
	Reset()

	// Clone returns an independent copy with the given id, owned by parent.
	Clone(id ProcessID, parent *Constraint, factories Factories) (Process, error)
	// Snapshot captures the process so that a factory can Restore it.
	Snapshot() (ProcessData, error)
}

// ProcessData is the serializable form of a Process.
type ProcessData struct {
	ID       ProcessID       `json:"id"`
	Kind     string          `json:"kind"`
	Duration time.Duration   `json:"duration"`
	Payload  json.RawMessage `json:"payload,omitempty"`
}

// ProcessFactory creates, restores and lays out processes of one Kind.
type ProcessFactory interface {
	Kind() string
	MakeProcess(id ProcessID, duration time.Duration, parent *Constraint) Process
	Restore(data ProcessData, parent *Constraint, factories Factories) (Process, error)
	MakeLayer(proc Process, id LayerID) *Layer
	CloneLayer(proc Process, id LayerID, source *Layer) *Layer
}

// Factories looks up the ProcessFactory of a concrete kind.
type Factories interface {
	Factory(kind string) (ProcessFactory, bool)
}

func lookupFactory(factories Factories, kind string) (ProcessFactory, error) {
	if factories == nil {
		return nil, &FactoryError{Kind: kind}
	}
	f, ok := factories.Factory(kind)
	if !ok {
		return nil, &FactoryError{Kind: kind}
	}
	return f, nil
}

// FactoryError reports the kind that no factory could serve.
type FactoryError struct {
	Kind string
}

func (e *FactoryError) Error() string {
	return ErrFactoryNotFound.Error() + ": " + e.Kind
}

func (e *FactoryError) Unwrap() error {
	return ErrFactoryNotFound
}

// ProcessBase implements the bookkeeping shared by every process kind.
type ProcessBase struct {
	id        ProcessID
	parent    *Constraint
	duration  time.Duration
	executing bool

	DurationChanged  Signal[time.Duration]
	ExecutionChanged Signal[bool]
}

func NewProcessBase(id ProcessID, duration time.Duration, parent *Constraint) ProcessBase {
	return ProcessBase{id: id, duration: duration, parent: parent}
}

func (p *ProcessBase) ID() ProcessID { return p.id }
func (p *ProcessBase) Parent() *Constraint { return p.parent }
func (p *ProcessBase) Duration() time.Duration { return p.duration }
func (p *ProcessBase) Executing() bool { return p.executing }

func (p *ProcessBase) SetDuration(d time.Duration) {
	if p.duration == d {
		return
	}
	p.duration = d
	p.DurationChanged.Emit(d)
}

func (p *ProcessBase) StartExecution() {
	p.setExecuting(true)
}

func (p *ProcessBase) StopExecution() {
	p.setExecuting(false)
}

func (p *ProcessBase) setExecuting(v bool) {
	if p.executing == v {
		return
	}
	p.executing = v
	p.ExecutionChanged.Emit(v)
}

// Data returns the common part of a ProcessData for kind.
func (p *ProcessBase) Data(kind string) ProcessData {
	return ProcessData{ID: p.id, Kind: kind, Duration: p.duration}
}
