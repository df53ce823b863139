// Package docwalk is the single recursive traversal shared by case conversion,
// blob persistence and reachability scanning, so all three agree on what a
// nested document looks like structurally: JSON-shaped values built from
// map[string]any, []any and scalars.
package docwalk

// Visit is called for every scalar leaf in the document. key is the mapping
// key the leaf was reached through, or "" for sequence elements and the root.
type Visit func(key string, value any)

// Walk visits every scalar in value, depth first. Read-only.
func Walk(value any, visit Visit) {
	walk("", value, visit)
}

func walk(key string, value any, visit Visit) {
	switch v := value.(type) {
	case map[string]any:
		for k, elem := range v {
			walk(k, elem, visit)
		}
	case []any:
		for _, elem := range v {
			walk(key, elem, visit)
		}
	default:
		visit(key, v)
	}
}

// RewriteKey produces a new mapping key for every key encountered during
// Transform. Returning the input unchanged keeps the key as-is.
type RewriteKey func(key string) string

// RewriteLeaf produces a replacement for a scalar leaf reached through key.
type RewriteLeaf func(key string, value any) any

// Transform returns a structurally identical copy of value with every mapping
// key rewritten through keyFn and every scalar leaf rewritten through leafFn.
// Either may be nil. The input is never mutated; maps and slices in the result
// are fresh allocations.
func Transform(value any, keyFn RewriteKey, leafFn RewriteLeaf) any {
	return transform("", value, keyFn, leafFn)
}

func transform(key string, value any, keyFn RewriteKey, leafFn RewriteLeaf) any {
	switch v := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, elem := range v {
			nk := k
			if keyFn != nil {
				nk = keyFn(k)
			}
			out[nk] = transform(k, elem, keyFn, leafFn)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, elem := range v {
			out[i] = transform(key, elem, keyFn, leafFn)
		}
		return out
	default:
		if leafFn != nil {
			return leafFn(key, v)
		}
		return v
	}
}

// TransformMap is Transform specialized to a top-level mapping, preserving the
// map[string]any type for callers that hold one.
func TransformMap(value map[string]any, keyFn RewriteKey, leafFn RewriteLeaf) map[string]any {
	if value == nil {
		return nil
	}
	return Transform(value, keyFn, leafFn).(map[string]any)
}

// TransformSlice is Transform specialized to a top-level sequence.
func TransformSlice(value []any, keyFn RewriteKey, leafFn RewriteLeaf) []any {
	if value == nil {
		return nil
	}
	return Transform(value, keyFn, leafFn).([]any)
}
