package command

import (
	"cmp"
	"encoding/json"
	"fmt"
	"slices"
	"sync"
)

// Envelope is the wire form of a command.
type Envelope struct {
	Parent  string          `json:"parent"`
	Name    string          `json:"name"`
	Payload json.RawMessage `json:"payload"`
}

// Key returns the command key carried by the envelope.
func (e Envelope) Key() Key {
	return Key{Parent: e.Parent, Name: e.Name}
}

// Encode wraps cmd into an Envelope.
func Encode(cmd Command) (Envelope, error) {
	payload, err := cmd.Serialize()
	if err != nil {
		return Envelope{}, fmt.Errorf("serialize %s: %w", cmd.Key(), err)
	}
	k := cmd.Key()
	return Envelope{Parent: k.Parent, Name: k.Name, Payload: payload}, nil
}

// EncodeAll wraps every command of cmds, in order.
func EncodeAll(cmds []Command) ([]Envelope, error) {
	out := make([]Envelope, 0, len(cmds))
	for _, c := range cmds {
		env, err := Encode(c)
		if err != nil {
			return nil, err
		}
		out = append(out, env)
	}
	return out, nil
}

// DecodeError reports an envelope whose payload a known command rejected.
type DecodeError struct {
	Key Key
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %v", e.Key, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Constructor returns a zero command ready to be deserialized.
type Constructor func() Command

// Registry maps command keys to constructors.
type Registry struct {
	mu    sync.RWMutex
	ctors map[Key]Constructor
}

func NewRegistry() *Registry {
	return &Registry{ctors: make(map[Key]Constructor)}
}

// Register adds a constructor. An existing one for the same key is replaced.
func (r *Registry) Register(key Key, ctor Constructor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ctors[key] = ctor
}

// Decode rebuilds the command carried by env.
func (r *Registry) Decode(env Envelope) (Command, error) {
	r.mu.RLock()
	ctor, ok := r.ctors[env.Key()]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCommand, env.Key())
	}
	cmd := ctor()
	if err := cmd.Deserialize(env.Payload); err != nil {
		return nil, &DecodeError{Key: env.Key(), Err: err}
	}
	return cmd, nil
}

// DecodeAll decodes envs in order.
func (r *Registry) DecodeAll(envs []Envelope) ([]Command, error) {
	out := make([]Command, 0, len(envs))
	for _, env := range envs {
		cmd, err := r.Decode(env)
		if err != nil {
			return nil, err
		}
		out = append(out, cmd)
	}
	return out, nil
}

// Keys lists the registered keys sorted by their string form.
func (r *Registry) Keys() []Key {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Key, 0, len(r.ctors))
	for k := range r.ctors {
		out = append(out, k)
	}
	slices.SortFunc(out, func(a, b Key) int {
		return cmp.Compare(a.String(), b.String())
	})
	return out
}
