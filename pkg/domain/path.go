package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind names a container type in an object path.
type Kind string

const (
	KindConstraint Kind = "Constraint"
	KindProcess    Kind = "Process"
	KindState      Kind = "State"
	KindEvent      Kind = "Event"
	KindTimeNode   Kind = "TimeNode"
	KindRack       Kind = "Rack"
	KindSlot       Kind = "Slot"
	KindLayer      Kind = "Layer"
	KindViewModel  Kind = "ViewModel"
)

func (k Kind) valid() bool {
	switch k {
	case KindConstraint, KindProcess, KindState, KindEvent, KindTimeNode,
		KindRack, KindSlot, KindLayer, KindViewModel:
		return true
	}
	return false
}

// Segment is one typed step of a Path.
type Segment struct {
	Kind Kind  `json:"kind"`
	ID   int32 `json:"id"`
}

// Path addresses an entity from the document root, e.g.
// "Constraint.0/Process.0/Constraint.3". Commands store paths instead of
// pointers so they survive serialization.
type Path []Segment

// Child returns a new path extended by one segment.
func (p Path) Child(kind Kind, id int32) Path {
	out := make(Path, len(p), len(p)+1)
	copy(out, p)
	return append(out, Segment{Kind: kind, ID: id})
}

// Parent returns the path without its last segment.
func (p Path) Parent() Path {
	if len(p) == 0 {
		return nil
	}
	out := make(Path, len(p)-1)
	copy(out, p[:len(p)-1])
	return out
}

// Last returns the final segment of a non-empty path.
func (p Path) Last() (Segment, bool) {
	if len(p) == 0 {
		return Segment{}, false
	}
	return p[len(p)-1], true
}

func (p Path) Equal(o Path) bool {
	if len(p) != len(o) {
		return false
	}
	for i := range p {
		if p[i] != o[i] {
			return false
		}
	}
	return true
}

func (p Path) String() string {
	parts := make([]string, len(p))
	for i, s := range p {
		parts[i] = string(s.Kind) + "." + strconv.FormatInt(int64(s.ID), 10)
	}
	return strings.Join(parts, "/")
}

// ParsePath is the inverse of Path.String.
func ParsePath(s string) (Path, error) {
	if s == "" {
		return nil, fmt.Errorf("%w: empty", ErrInvalidPath)
	}
	parts := strings.Split(s, "/")
	p := make(Path, 0, len(parts))
	for _, part := range parts {
		kind, id, ok := strings.Cut(part, ".")
		if !ok {
			return nil, fmt.Errorf("%w: segment %q", ErrInvalidPath, part)
		}
		if !Kind(kind).valid() {
			return nil, fmt.Errorf("%w: unknown kind %q", ErrInvalidPath, kind)
		}
		n, err := strconv.ParseInt(id, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("%w: segment %q: %v", ErrInvalidPath, part, err)
		}
		p = append(p, Segment{Kind: Kind(kind), ID: int32(n)})
	}
	return p, nil
}

// MarshalText encodes the path in its string form.
func (p Path) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *Path) UnmarshalText(b []byte) error {
	parsed, err := ParsePath(string(b))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
