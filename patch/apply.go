package patch

import (
	"fmt"

	"github.com/bytedance/sonic"
	jsonpatch "github.com/evanphx/json-patch/v5"
)

// ApplyRFC6902 applies ops to current and decodes the patched document back into T.
func ApplyRFC6902[T any](current T, ops []Operation) (T, error) {
	var zero T

	if len(ops) == 0 {
		return current, nil
	}

	currentJSON, err := sonic.Marshal(current)
	if err != nil {
		return zero, fmt.Errorf("failed to marshal current document: %w", err)
	}

	var doc map[string]any
	if err := sonic.Unmarshal(currentJSON, &doc); err != nil {
		return zero, fmt.Errorf("document is not a JSON object: %w", err)
	}
	ops = FixOperation(doc, ops)
	if len(ops) == 0 {
		return current, nil
	}

	patchJSON, err := sonic.Marshal(ops)
	if err != nil {
		return zero, fmt.Errorf("failed to marshal patch operations: %w", err)
	}

	p, err := jsonpatch.DecodePatch(patchJSON)
	if err != nil {
		return zero, fmt.Errorf("failed to decode patch: %w", err)
	}

	modifiedJSON, err := p.Apply(currentJSON)
	if err != nil {
		return zero, fmt.Errorf("failed to apply patch: %w", err)
	}

	var result T
	if err := sonic.Unmarshal(modifiedJSON, &result); err != nil {
		return zero, fmt.Errorf("patched document does not decode: %w", err)
	}
	return result, nil
}

// FixOperation adapts ops to the flat document: a replace on an absent member
// becomes an add (fields are omitted while empty), and removing an absent
// member is dropped.
func FixOperation(doc map[string]any, ops []Operation) []Operation {
	fixed := make([]Operation, 0, len(ops))
	for _, op := range ops {
		_, exists := doc[memberName(op.Path)]
		switch op.Op {
		case OperationReplace:
			if !exists {
				op.Op = OperationAdd
			}
			fixed = append(fixed, op)
		case OperationRemove:
			if exists {
				fixed = append(fixed, op)
			}
		default:
			fixed = append(fixed, op)
		}
	}
	return fixed
}

func memberName(path string) string {
	if len(path) > 0 && path[0] == '/' {
		path = path[1:]
	}
	return unescapeJSONPointer(path)
}
