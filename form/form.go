// Package form is the field store the conversation writes into. Values are
// only ever set or overwritten through RFC 6902 operations, never invented,
// and every change is announced to registered listeners.
package form

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/tbxark/voiceform/patch"
	"github.com/tbxark/voiceform/types"
)

var (
	ErrUnknownField = errors.New("form: unknown field")
	ErrEmptyValue   = errors.New("form: empty value")
	ErrReadOnly     = errors.New("form: field was filled by the assistant and is read-only")
)

// Reader is the read side of the store used by extractors and the controller.
type Reader interface {
	Get(field types.FieldID) string
	IsSet(field types.FieldID) bool
}

// ChangeFunc is notified after a field value changes.
type ChangeFunc func(field types.FieldID, value string)

type Form struct {
	mu        sync.RWMutex
	reg       Registration
	system    map[types.FieldID]bool
	listeners []ChangeFunc
}

func New() *Form {
	return &Form{system: map[types.FieldID]bool{}}
}

// Get returns the trimmed value of field or the empty string.
func (f *Form) Get(field types.FieldID) string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.reg.Get(field)
}

func (f *Form) IsSet(field types.FieldID) bool {
	return f.Get(field) != ""
}

// FilledBySystem reports whether the assistant wrote the current value.
func (f *Form) FilledBySystem(field types.FieldID) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.system[field]
}

func (f *Form) Snapshot() Registration {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.reg
}

// OnChange registers fn to run after each changed field.
func (f *Form) OnChange(fn ChangeFunc) {
	f.mu.Lock()
	f.listeners = append(f.listeners, fn)
	f.mu.Unlock()
}

// Fill writes value into field on behalf of the assistant.
func (f *Form) Fill(field types.FieldID, value string) error {
	_, err := f.Apply([]patch.Operation{patch.Set(field, value)})
	return err
}

// Apply writes ops on behalf of the assistant and marks the touched fields
// as system-filled. It returns the fields whose value actually changed.
func (f *Form) Apply(ops []patch.Operation) ([]types.FieldID, error) {
	return f.apply(ops, true)
}

// Edit applies ops coming from a manual channel. Fields the assistant filled
// stay read-only until Unlock is called for them.
func (f *Form) Edit(ops []patch.Operation) ([]types.FieldID, error) {
	f.mu.RLock()
	for _, field := range patch.Fields(ops) {
		if f.system[field] {
			f.mu.RUnlock()
			return nil, fmt.Errorf("%w: %s", ErrReadOnly, field)
		}
	}
	f.mu.RUnlock()
	return f.apply(ops, false)
}

// Unlock makes a system-filled field editable through Edit again.
func (f *Form) Unlock(field types.FieldID) {
	f.mu.Lock()
	delete(f.system, field)
	f.mu.Unlock()
}

// Reset clears every value and flag. Listeners are kept.
func (f *Form) Reset() {
	f.mu.Lock()
	f.reg = Registration{}
	f.system = map[types.FieldID]bool{}
	f.mu.Unlock()
}

func (f *Form) apply(ops []patch.Operation, bySystem bool) ([]types.FieldID, error) {
	ops, err := normalize(ops)
	if err != nil {
		return nil, err
	}
	if len(ops) == 0 {
		return nil, nil
	}

	f.mu.Lock()
	before := f.reg
	next, err := patch.ApplyRFC6902(before, ops)
	if err != nil {
		f.mu.Unlock()
		return nil, fmt.Errorf("failed to apply form patch: %w", err)
	}
	f.reg = next
	var changed []types.FieldID
	for _, field := range patch.Fields(ops) {
		if bySystem {
			f.system[field] = true
		}
		if before.Get(field) != next.Get(field) {
			changed = append(changed, field)
		}
	}
	listeners := append([]ChangeFunc(nil), f.listeners...)
	f.mu.Unlock()

	for _, field := range changed {
		value := next.Get(field)
		slog.Debug("Form field changed", "field", field, "value", value, "system", bySystem)
		for _, fn := range listeners {
			fn(field, value)
		}
	}
	return changed, nil
}

func normalize(ops []patch.Operation) ([]patch.Operation, error) {
	out := make([]patch.Operation, 0, len(ops))
	for _, op := range ops {
		if _, ok := types.FieldFromPointer(op.Path); !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownField, op.Path)
		}
		if op.Op == patch.OperationRemove {
			return nil, fmt.Errorf("form: fields can only be overwritten, not removed: %s", op.Path)
		}
		s, ok := op.Value.(string)
		if !ok {
			return nil, fmt.Errorf("form: value for %s must be a string", op.Path)
		}
		s = strings.TrimSpace(s)
		if s == "" {
			return nil, fmt.Errorf("%w: %s", ErrEmptyValue, op.Path)
		}
		op.Value = s
		out = append(out, op)
	}
	if err := patch.ValidatePatchOperations(out, nil); err != nil {
		return nil, err
	}
	return out, nil
}

var _ Reader = (*Form)(nil)
