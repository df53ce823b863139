package persist_test

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"cineflex-backend/internal/supabase"
)

const testBucket = "project-media"

var testPaths = supabase.ObjectPaths{Bucket: testBucket}

const publicBase = "https://stub.supabase.co/storage/v1/object/public/" + testBucket + "/"

// fakeBlobStore is an in-memory stand-in for the storage client.
type fakeBlobStore struct {
	mu      sync.Mutex
	objects map[string][]byte

	uploads      int
	moves        int
	listCalls    int
	removeSizes  []int
	failUpload   bool
	failMove     bool
	failRemoveAt int // 1-based call index that fails once; 0 disables
	removeCalls  int
}

func newFakeBlobStore() *fakeBlobStore {
	return &fakeBlobStore{objects: make(map[string][]byte)}
}

func (f *fakeBlobStore) Upload(path string, data []byte, contentType string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploads++
	if f.failUpload {
		return errors.New("upload refused")
	}
	f.objects[path] = data
	return nil
}

func (f *fakeBlobStore) Move(src, dst string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.moves++
	if f.failMove {
		return errors.New("move refused")
	}
	data, ok := f.objects[src]
	if !ok {
		data = []byte("migrated")
	}
	delete(f.objects, src)
	f.objects[dst] = data
	return nil
}

func (f *fakeBlobStore) List(prefix string, limit, offset int) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	var all []string
	for path := range f.objects {
		if strings.HasPrefix(path, prefix) {
			all = append(all, path)
		}
	}
	sort.Strings(all)
	if offset >= len(all) {
		return nil, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (f *fakeBlobStore) Remove(paths []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removeCalls++
	f.removeSizes = append(f.removeSizes, len(paths))
	if f.failRemoveAt != 0 && f.removeCalls == f.failRemoveAt {
		return errors.New("delete refused")
	}
	for _, path := range paths {
		delete(f.objects, path)
	}
	return nil
}

func (f *fakeBlobStore) PublicURL(path string) string {
	return publicBase + path
}

func (f *fakeBlobStore) paths() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for path := range f.objects {
		out = append(out, path)
	}
	sort.Strings(out)
	return out
}

type pruneCall struct {
	table     string
	projectID string
	keep      []string
}

// fakeRowStore is an in-memory stand-in for the PostgREST row store.
type fakeRowStore struct {
	mu     sync.Mutex
	tables map[string]map[string]map[string]any

	upserts    int
	pruneCalls []pruneCall
	failTables map[string]bool
}

func newFakeRowStore() *fakeRowStore {
	return &fakeRowStore{
		tables:     make(map[string]map[string]map[string]any),
		failTables: make(map[string]bool),
	}
}

func (f *fakeRowStore) table(name string) map[string]map[string]any {
	t, ok := f.tables[name]
	if !ok {
		t = make(map[string]map[string]any)
		f.tables[name] = t
	}
	return t
}

func (f *fakeRowStore) Upsert(table string, rows any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.upserts++
	if f.failTables[table] {
		return fmt.Errorf("upsert into %s refused", table)
	}
	t := f.table(table)
	switch v := rows.(type) {
	case map[string]any:
		t[v["id"].(string)] = v
	case []map[string]any:
		for _, row := range v {
			t[row["id"].(string)] = row
		}
	default:
		return fmt.Errorf("unexpected upsert payload %T", rows)
	}
	return nil
}

func (f *fakeRowStore) DeleteWhereIDNotIn(table, projectID string, keepIDs []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pruneCalls = append(f.pruneCalls, pruneCall{table: table, projectID: projectID, keep: append([]string(nil), keepIDs...)})
	if f.failTables[table] {
		return fmt.Errorf("prune of %s refused", table)
	}
	if len(keepIDs) == 0 {
		return errors.New("empty in-list")
	}
	keep := make(map[string]struct{}, len(keepIDs))
	for _, id := range keepIDs {
		keep[id] = struct{}{}
	}
	t := f.table(table)
	for id, row := range t {
		if row["project_id"] != projectID {
			continue
		}
		if _, ok := keep[id]; !ok {
			delete(t, id)
		}
	}
	return nil
}

func (f *fakeRowStore) DeleteByProject(table, projectID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	t := f.table(table)
	for id, row := range t {
		if row["project_id"] == projectID {
			delete(t, id)
		}
	}
	return nil
}

func (f *fakeRowStore) DeleteByID(table, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.table(table), id)
	return nil
}

func (f *fakeRowStore) SelectByProject(table, projectID string) ([]map[string]any, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var rows []map[string]any
	for _, row := range f.table(table) {
		if row["project_id"] == projectID {
			rows = append(rows, row)
		}
	}
	return rows, nil
}

func (f *fakeRowStore) SelectOne(table, id string) (map[string]any, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.table(table)[id]
	return row, ok, nil
}

func (f *fakeRowStore) rowCount(table, projectID string) int {
	rows, _ := f.SelectByProject(table, projectID)
	return len(rows)
}
