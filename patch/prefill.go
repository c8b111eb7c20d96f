package patch

import (
	"fmt"
	"sort"
	"strings"

	"github.com/bytedance/sonic"
)

// GeneratePatchesFromInitial returns the operations that copy every non-empty
// string member of initial that differs from current. Members already holding
// a value in current are kept unless keepExisting is false.
func GeneratePatchesFromInitial[T any](current, initial T, keepExisting bool) ([]Operation, error) {
	currentMap, err := toMap(current)
	if err != nil {
		return nil, fmt.Errorf("failed to encode current document: %w", err)
	}
	initialMap, err := toMap(initial)
	if err != nil {
		return nil, fmt.Errorf("failed to encode initial document: %w", err)
	}

	keys := make([]string, 0, len(initialMap))
	for k := range initialMap {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	ops := make([]Operation, 0, len(keys))
	for _, key := range keys {
		value, ok := initialMap[key].(string)
		if !ok || strings.TrimSpace(value) == "" {
			continue
		}
		existing, _ := currentMap[key].(string)
		if existing == value || (keepExisting && existing != "") {
			continue
		}
		ops = append(ops, Operation{Op: OperationReplace, Path: "/" + escapeJSONPointer(key), Value: value})
	}
	return ops, nil
}

func toMap(v any) (map[string]any, error) {
	raw, err := sonic.Marshal(v)
	if err != nil {
		return nil, err
	}
	out := map[string]any{}
	if err := sonic.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func escapeJSONPointer(token string) string {
	return strings.NewReplacer("~", "~0", "/", "~1").Replace(token)
}

func unescapeJSONPointer(token string) string {
	return strings.NewReplacer("~1", "/", "~0", "~").Replace(token)
}
