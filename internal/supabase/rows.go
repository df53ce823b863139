package supabase

import (
	"encoding/json"
	"fmt"
	"strings"
)

// RowStore is the PostgREST-backed relational access used by the persistence
// engine: per-row upserts keyed on the primary key, id-set guarded orphan
// pruning, and the read path's selects.
type RowStore struct {
	client *Client
}

func NewRowStore(client *Client) *RowStore {
	return &RowStore{client: client}
}

// Upsert inserts-or-updates rows by primary key. rows is any JSON-encodable
// value in wire (snake_case) key form.
func (r *RowStore) Upsert(table string, rows any) error {
	_, _, err := r.client.Supabase.From(table).Upsert(rows, "id", "", "").Execute()
	if err != nil {
		return fmt.Errorf("failed to upsert into %s: %w", table, err)
	}
	return nil
}

// DeleteWhereIDNotIn deletes every row of the project whose id is not in
// keepIDs. keepIDs must be non-empty; callers guard the empty set with a
// sentinel id so PostgREST never sees a malformed empty in-list.
func (r *RowStore) DeleteWhereIDNotIn(table, projectID string, keepIDs []string) error {
	quoted := make([]string, len(keepIDs))
	for i, id := range keepIDs {
		quoted[i] = fmt.Sprintf("%q", id)
	}
	_, _, err := r.client.Supabase.From(table).
		Delete("", "").
		Eq("project_id", projectID).
		Not("id", "in", "("+strings.Join(quoted, ",")+")").
		Execute()
	if err != nil {
		return fmt.Errorf("failed to prune %s: %w", table, err)
	}
	return nil
}

// DeleteByProject removes every row of the project from table.
func (r *RowStore) DeleteByProject(table, projectID string) error {
	_, _, err := r.client.Supabase.From(table).
		Delete("", "").
		Eq("project_id", projectID).
		Execute()
	if err != nil {
		return fmt.Errorf("failed to delete %s rows: %w", table, err)
	}
	return nil
}

// DeleteByID removes the single row with the given primary key.
func (r *RowStore) DeleteByID(table, id string) error {
	_, _, err := r.client.Supabase.From(table).
		Delete("", "").
		Eq("id", id).
		Execute()
	if err != nil {
		return fmt.Errorf("failed to delete %s row: %w", table, err)
	}
	return nil
}

// SelectByProject returns all rows of the project as wire-form maps.
func (r *RowStore) SelectByProject(table, projectID string) ([]map[string]any, error) {
	data, _, err := r.client.Supabase.From(table).
		Select("*", "", false).
		Eq("project_id", projectID).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to select from %s: %w", table, err)
	}

	var rows []map[string]any
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode %s rows: %w", table, err)
	}
	return rows, nil
}

// SelectOne returns the row with the given id, or found=false.
func (r *RowStore) SelectOne(table, id string) (map[string]any, bool, error) {
	data, _, err := r.client.Supabase.From(table).
		Select("*", "", false).
		Eq("id", id).
		Execute()
	if err != nil {
		return nil, false, fmt.Errorf("failed to select from %s: %w", table, err)
	}

	var rows []map[string]any
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, false, fmt.Errorf("failed to decode %s row: %w", table, err)
	}
	if len(rows) == 0 {
		return nil, false, nil
	}
	return rows[0], true, nil
}
