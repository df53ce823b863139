package models

// ProjectDocument is the full in-memory project a caller hands to the
// persistence engine. Scenes, shots and characters are open maps in
// application (camelCase) key form: declared columns are extracted when the
// document is flattened into rows, every other key rides along in the opaque
// metadata column, so upstream producers can add fields without a schema
// change.
type ProjectDocument struct {
	Settings       map[string]any   `json:"settings,omitempty"`
	ScriptElements []any            `json:"scriptElements,omitempty"`
	Scenes         []map[string]any `json:"scenes,omitempty"`
	Shots          []map[string]any `json:"shots,omitempty"`
	Characters     []map[string]any `json:"characters,omitempty"`
}

// EntityID returns the entity's id field, or "" when absent or not a string.
func EntityID(entity map[string]any) string {
	id, _ := entity["id"].(string)
	return id
}

// Clone returns a deep copy of the document's container structure. Scalar
// leaves are shared; they are immutable strings and numbers after JSON
// decoding.
func (d *ProjectDocument) Clone() *ProjectDocument {
	if d == nil {
		return nil
	}
	out := &ProjectDocument{
		Settings:       cloneMap(d.Settings),
		ScriptElements: cloneSlice(d.ScriptElements),
		Scenes:         cloneEntities(d.Scenes),
		Shots:          cloneEntities(d.Shots),
		Characters:     cloneEntities(d.Characters),
	}
	return out
}

func cloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneSlice(s []any) []any {
	if s == nil {
		return nil
	}
	out := make([]any, len(s))
	for i, v := range s {
		out[i] = cloneValue(v)
	}
	return out
}

func cloneEntities(s []map[string]any) []map[string]any {
	if s == nil {
		return nil
	}
	out := make([]map[string]any, len(s))
	for i, v := range s {
		out[i] = cloneMap(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return cloneMap(t)
	case []any:
		return cloneSlice(t)
	default:
		return t
	}
}
