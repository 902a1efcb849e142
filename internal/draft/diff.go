package draft

import (
	"encoding/json"
	"fmt"
	"reflect"
	"slices"
	"strings"
)

// normalize round-trips a snapshot through JSON so that values compare the
// same way they will after being stored and loaded (all numbers become
// float64, typed slices become []any).
func normalize(m map[string]any) (map[string]any, error) {
	if m == nil {
		return map[string]any{}, nil
	}
	raw, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("snapshot is not serializable: %w", err)
	}
	out := map[string]any{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ChangedFields returns the keys whose values differ between current and
// original, followed by the keys present only in original. Nested maps and
// lists are compared deeply. Each group is sorted.
func ChangedFields(current, original map[string]any) ([]string, error) {
	cur, err := normalize(current)
	if err != nil {
		return nil, err
	}
	orig, err := normalize(original)
	if err != nil {
		return nil, err
	}

	var changed []string
	for key, value := range cur {
		if !reflect.DeepEqual(value, orig[key]) {
			changed = append(changed, key)
		}
	}
	slices.Sort(changed)

	var removed []string
	for key := range orig {
		if _, ok := cur[key]; !ok {
			removed = append(removed, key)
		}
	}
	slices.Sort(removed)

	return append(changed, removed...), nil
}

// ChangesSummary describes a list of changed fields for display.
func ChangesSummary(fields []string) string {
	switch len(fields) {
	case 0:
		return "No changes"
	case 1:
		return "1 field changed: " + fields[0]
	default:
		return fmt.Sprintf("%d fields changed: %s", len(fields), strings.Join(fields, ", "))
	}
}
