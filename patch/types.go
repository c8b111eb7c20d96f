package patch

import "github.com/tbxark/voiceform/types"

const (
	OperationAdd     = "add"
	OperationReplace = "replace"
	OperationRemove  = "remove"
)

type Operation struct {
	Op    string `json:"op"`
	Path  string `json:"path"`
	Value any    `json:"value,omitempty"`
}

// Set builds a replace operation writing value into field.
func Set(field types.FieldID, value string) Operation {
	return Operation{Op: OperationReplace, Path: field.Pointer(), Value: value}
}

// Clear builds an operation emptying field.
func Clear(field types.FieldID) Operation {
	return Operation{Op: OperationRemove, Path: field.Pointer()}
}

// Fields returns the distinct fields touched by ops, in order of first appearance.
func Fields(ops []Operation) []types.FieldID {
	seen := make(map[types.FieldID]struct{}, len(ops))
	out := make([]types.FieldID, 0, len(ops))
	for _, op := range ops {
		f, ok := types.FieldFromPointer(op.Path)
		if !ok {
			continue
		}
		if _, dup := seen[f]; dup {
			continue
		}
		seen[f] = struct{}{}
		out = append(out, f)
	}
	return out
}
