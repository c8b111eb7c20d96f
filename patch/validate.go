package patch

import (
	"fmt"
	"strings"
)

// ValidatePatchOperations rejects operations whose path is not in allowedPaths
// or whose value is not a string. An empty allowedPaths set permits any path.
func ValidatePatchOperations(ops []Operation, allowedPaths map[string]bool) error {
	for i, op := range ops {
		if err := validatePathAllowed(op.Path, allowedPaths); err != nil {
			return fmt.Errorf("operation %d: %w", i, err)
		}
		switch op.Op {
		case OperationAdd, OperationReplace:
			if _, ok := op.Value.(string); !ok {
				return fmt.Errorf("operation %d: value for %q must be a string", i, op.Path)
			}
		case OperationRemove:
		default:
			return fmt.Errorf("operation %d: unsupported op %q", i, op.Op)
		}
	}
	return nil
}

func validatePathAllowed(path string, allowedPaths map[string]bool) error {
	if !strings.HasPrefix(path, "/") || strings.Count(path, "/") != 1 {
		return fmt.Errorf("path %q must address a top-level field", path)
	}
	if len(allowedPaths) == 0 || allowedPaths[path] {
		return nil
	}
	return fmt.Errorf("path %q is not in the allowed paths set", path)
}
