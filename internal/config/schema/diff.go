package schema

import (
	"encoding/json"
	"sort"
)

// FieldDiff is one field whose value differs between two configurations.
type FieldDiff struct {
	// Path is the dot-separated field path, for example "proxy.port".
	Path string

	// Old is the value in the old configuration, nil when absent.
	Old any

	// New is the value in the new configuration, nil when absent.
	New any
}

// Diff returns every field whose value differs between two
// configurations, sorted by path for deterministic iteration.
// Comparison is by value, not identity: two slices with equal contents
// are equal. The result drives change notification after a commit.
func Diff(old, new Config) []FieldDiff {
	oldFlat := flatten(old)
	newFlat := flatten(new)

	var diffs []FieldDiff
	for path, newVal := range newFlat {
		oldVal, exists := oldFlat[path]
		if !exists || !valuesEqual(oldVal, newVal) {
			diffs = append(diffs, FieldDiff{Path: path, Old: oldVal, New: newVal})
		}
	}
	for path, oldVal := range oldFlat {
		if _, exists := newFlat[path]; !exists {
			diffs = append(diffs, FieldDiff{Path: path, Old: oldVal})
		}
	}

	sort.Slice(diffs, func(i, j int) bool { return diffs[i].Path < diffs[j].Path })
	return diffs
}

// DiffPaths returns just the paths from Diff.
func DiffPaths(old, new Config) []string {
	diffs := Diff(old, new)
	paths := make([]string, len(diffs))
	for i, d := range diffs {
		paths[i] = d.Path
	}
	return paths
}

// flatten renders a configuration as a single-level map keyed by
// dot-separated paths. Arrays stay whole; they are compared as one value.
func flatten(cfg Config) map[string]any {
	data, err := json.Marshal(cfg)
	if err != nil {
		return nil
	}
	var tree map[string]any
	if err := json.Unmarshal(data, &tree); err != nil {
		return nil
	}

	result := make(map[string]any)
	flattenInto(tree, "", result)
	return result
}

func flattenInto(tree map[string]any, prefix string, result map[string]any) {
	for key, val := range tree {
		fullKey := key
		if prefix != "" {
			fullKey = prefix + "." + key
		}
		if nested, ok := val.(map[string]any); ok {
			flattenInto(nested, fullKey, result)
		} else {
			result[fullKey] = val
		}
	}
}

func valuesEqual(a, b any) bool {
	if a == nil && b == nil {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	switch va := a.(type) {
	case []any:
		vb, ok := b.([]any)
		if !ok || len(va) != len(vb) {
			return false
		}
		for i := range va {
			if !valuesEqual(va[i], vb[i]) {
				return false
			}
		}
		return true
	default:
		return a == b
	}
}
