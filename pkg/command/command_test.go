package command

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/aretw0/cadence/pkg/domain"
)

// setHeight moves the base constraint; consecutive instances merge.
type setHeight struct {
	Old, New float64
	Fail     bool `json:",omitempty"`
}

func (c *setHeight) Key() Key { return Key{Parent: "Test", Name: "SetHeight"} }

func (c *setHeight) Redo(doc *domain.Document) error {
	if c.Fail {
		return errors.New("redo refused")
	}
	doc.Base().SetHeightPercentage(c.New)
	return nil
}

func (c *setHeight) Undo(doc *domain.Document) error {
	doc.Base().SetHeightPercentage(c.Old)
	return nil
}

func (c *setHeight) MergeWith(other Command) bool {
	o, ok := other.(*setHeight)
	if !ok {
		return false
	}
	c.New = o.New
	return true
}

func (c *setHeight) Serialize() ([]byte, error) { return json.Marshal(c) }
func (c *setHeight) Deserialize(data []byte) error { return json.Unmarshal(data, c) }

// noMerge is setHeight without merging.
type noMerge struct{ setHeight }

func (c *noMerge) Key() Key { return Key{Parent: "Test", Name: "NoMerge"} }
func (c *noMerge) MergeWith(Command) bool { return false }

func newDoc() *domain.Document {
	return domain.NewDocument("t", nil, 0)
}

func height(doc *domain.Document) float64 {
	return doc.Base().HeightPercentage()
}

type fakeLocker struct {
	mu   sync.Mutex
	held map[string]bool
	err  error
}

func (l *fakeLocker) Lock(_ context.Context, key string) (Unlock, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return nil, l.err
	}
	if l.held == nil {
		l.held = map[string]bool{}
	}
	if l.held[key] {
		return nil, fmt.Errorf("%s: locked", key)
	}
	l.held[key] = true
	return func(context.Context) error {
		l.mu.Lock()
		defer l.mu.Unlock()
		delete(l.held, key)
		return nil
	}, nil
}

func (l *fakeLocker) isHeld(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.held[key]
}
