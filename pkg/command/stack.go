package command

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/aretw0/cadence/internal/logging"
	"github.com/aretw0/cadence/pkg/domain"
)

// Hooks observe stack transitions. Nil fields are skipped.
type Hooks struct {
	OnPush func(cmd Command, merged bool)
	OnUndo func(cmd Command)
	OnRedo func(cmd Command)
}

// Stack is the linear undo/redo history of one document.
type Stack struct {
	doc    *domain.Document
	done   []Command
	undone []Command
	hooks  []Hooks
	logger *slog.Logger
}

// StackOption configures a Stack.
type StackOption func(*Stack)

// WithHooks adds observers. It may be given several times.
func WithHooks(h Hooks) StackOption {
	return func(s *Stack) {
		s.hooks = append(s.hooks, h)
	}
}

// WithStackLogger configures a logger for the Stack.
func WithStackLogger(logger *slog.Logger) StackOption {
	return func(s *Stack) {
		s.logger = logger
	}
}

func NewStack(doc *domain.Document, opts ...StackOption) *Stack {
	s := &Stack{doc: doc, logger: logging.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Document returns the document the stack mutates.
func (s *Stack) Document() *domain.Document { return s.doc }

// Push applies cmd and records it. If the top command absorbs cmd, no new
// entry is added. The undone sequence is cleared.
func (s *Stack) Push(cmd Command) error {
	if err := cmd.Redo(s.doc); err != nil {
		return fmt.Errorf("push %s: %w", cmd.Key(), err)
	}
	merged := false
	if n := len(s.done); n > 0 && s.done[n-1].MergeWith(cmd) {
		merged = true
	} else {
		s.done = append(s.done, cmd)
	}
	s.undone = nil
	s.logger.Debug("command pushed", "command", cmd.Key().String(), "merged", merged)
	s.emitPush(cmd, merged)
	return nil
}

// PushApplied records a command whose effect is already on the document.
// It never merges. The undone sequence is cleared.
func (s *Stack) PushApplied(cmd Command) {
	s.done = append(s.done, cmd)
	s.undone = nil
	s.logger.Debug("command pushed", "command", cmd.Key().String(), "applied", true)
	s.emitPush(cmd, false)
}

// Undo reverts the last done command.
func (s *Stack) Undo() error {
	n := len(s.done)
	if n == 0 {
		return ErrNothingToUndo
	}
	cmd := s.done[n-1]
	if err := cmd.Undo(s.doc); err != nil {
		return fmt.Errorf("undo %s: %w", cmd.Key(), err)
	}
	s.done = s.done[:n-1]
	s.undone = append(s.undone, cmd)
	s.logger.Debug("command undone", "command", cmd.Key().String())
	for _, h := range s.hooks {
		if h.OnUndo != nil {
			h.OnUndo(cmd)
		}
	}
	return nil
}

// Redo re-applies the last undone command.
func (s *Stack) Redo() error {
	n := len(s.undone)
	if n == 0 {
		return ErrNothingToRedo
	}
	cmd := s.undone[n-1]
	if err := cmd.Redo(s.doc); err != nil {
		return fmt.Errorf("redo %s: %w", cmd.Key(), err)
	}
	s.undone = s.undone[:n-1]
	s.done = append(s.done, cmd)
	s.logger.Debug("command redone", "command", cmd.Key().String())
	for _, h := range s.hooks {
		if h.OnRedo != nil {
			h.OnRedo(cmd)
		}
	}
	return nil
}

// Restore replaces the history. Every done command is applied in order;
// undone commands are kept unapplied, the last one being the next to redo.
// On failure the stack keeps the commands applied so far.
func (s *Stack) Restore(done, undone []Command) error {
	s.done = s.done[:0]
	s.undone = nil
	for i, cmd := range done {
		if err := cmd.Redo(s.doc); err != nil {
			return fmt.Errorf("restore command %d (%s): %w", i, cmd.Key(), err)
		}
		s.done = append(s.done, cmd)
	}
	s.undone = slices.Clone(undone)
	return nil
}

func (s *Stack) CanUndo() bool { return len(s.done) > 0 }
func (s *Stack) CanRedo() bool { return len(s.undone) > 0 }

// Done returns a copy of the applied commands, oldest first.
func (s *Stack) Done() []Command { return slices.Clone(s.done) }

// Undone returns a copy of the undone commands; the last is redone first.
func (s *Stack) Undone() []Command { return slices.Clone(s.undone) }

func (s *Stack) emitPush(cmd Command, merged bool) {
	for _, h := range s.hooks {
		if h.OnPush != nil {
			h.OnPush(cmd, merged)
		}
	}
}
