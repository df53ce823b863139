package persist_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cineflex-backend/internal/models"
	"cineflex-backend/internal/persist"
)

func newTestService(store *fakeBlobStore, rows *fakeRowStore) *persist.Service {
	scanner := persist.NewReachabilityScanner(testPaths)
	blobs := persist.NewBlobPersister(store, testPaths, nil)
	gc := persist.NewGarbageCollector(store, scanner, 100, 1000, nil)
	sync := persist.NewRelationalSync(rows, nil)
	return persist.NewService(blobs, sync, gc, rows, store, nil, 100, nil)
}

// The full pipeline scenario: a shot with a transient capture is saved, the
// capture becomes a durable namespaced blob referenced from the stored row;
// clearing the field and saving again garbage-collects the blob.
func TestSaveProjectDataScenario(t *testing.T) {
	store := newFakeBlobStore()
	rows := newFakeRowStore()
	service := newTestService(store, rows)

	doc := &models.ProjectDocument{
		Scenes: []map[string]any{
			{"id": "s1", "sequence": float64(1), "heading": "INT. LAB - NIGHT"},
		},
		Shots: []map[string]any{
			{"id": "sh1", "sceneId": "s1", "sequence": float64(1), "generatedImage": pngDataURI()},
		},
	}

	require.NoError(t, service.SaveProjectData(projectID, doc))

	// The shot row holds a durable URL under the project namespace.
	shot, found, err := rows.SelectOne("shots", "sh1")
	require.NoError(t, err)
	require.True(t, found)
	metadata := shot["metadata"].(map[string]any)
	generated, ok := metadata["generated_image"].(string)
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(generated, publicBase+projectID+"/"), "got %q", generated)

	// The uploaded blob survived its own save's GC pass.
	blobPath := strings.TrimPrefix(generated, publicBase)
	assert.Equal(t, []string{blobPath}, store.paths())

	// Clear the image and save again: the blob is now unreachable and the
	// following GC pass reclaims it.
	doc.Shots[0]["generatedImage"] = ""
	require.NoError(t, service.SaveProjectData(projectID, doc))
	assert.Empty(t, store.paths())
}

// Reachability soundness: after persistAll, sync and GC, every reference in
// the persisted document still resolves to a stored blob.
func TestSaveNeverCollectsItsOwnReferences(t *testing.T) {
	store := newFakeBlobStore()
	rows := newFakeRowStore()
	service := newTestService(store, rows)

	doc := &models.ProjectDocument{
		Settings: map[string]any{"coverImage": pngDataURI()},
		Shots: []map[string]any{
			{"id": "sh1", "generatedImage": pngDataURI(), "generationCandidates": []any{pngDataURI(), pngDataURI()}},
		},
	}
	require.NoError(t, service.SaveProjectData(projectID, doc))

	assert.Len(t, store.paths(), 4)
}

func TestRepeatedSaveOfUnchangedDocumentIsQuiet(t *testing.T) {
	store := newFakeBlobStore()
	rows := newFakeRowStore()
	service := newTestService(store, rows)

	doc := &models.ProjectDocument{
		Shots: []map[string]any{
			{"id": "sh1", "generatedImage": pngDataURI()},
		},
	}
	require.NoError(t, service.SaveProjectData(projectID, doc))
	uploadsAfterFirst := store.uploads

	// The caller's document now carries the durable URL, as it would after a
	// reload; saving it again uploads and deletes nothing.
	durable, _, _ := rows.SelectOne("shots", "sh1")
	url := durable["metadata"].(map[string]any)["generated_image"].(string)
	again := &models.ProjectDocument{
		Shots: []map[string]any{
			{"id": "sh1", "generatedImage": url},
		},
	}
	require.NoError(t, service.SaveProjectData(projectID, again))

	assert.Equal(t, uploadsAfterFirst, store.uploads)
	assert.Zero(t, store.removeCalls)
}

func TestGetProjectDataRoundTrip(t *testing.T) {
	store := newFakeBlobStore()
	rows := newFakeRowStore()
	service := newTestService(store, rows)

	doc := &models.ProjectDocument{
		Settings:       map[string]any{"aspectRatio": "2.39:1"},
		ScriptElements: []any{map[string]any{"elementType": "slugline", "text": "INT. LAB - NIGHT"}},
		Scenes: []map[string]any{
			{"id": "s2", "sequence": float64(2), "heading": "EXT. ROOF - DAY"},
			{"id": "s1", "sequence": float64(1), "heading": "INT. LAB - NIGHT"},
		},
		Shots: []map[string]any{
			{"id": "sh1", "sceneId": "s1", "sequence": float64(1), "shotType": "WIDE", "aiModel": "shotgen-v2"},
		},
	}
	require.NoError(t, service.SaveProjectData(projectID, doc))

	loaded, found, err := service.GetProjectData(projectID)
	require.NoError(t, err)
	require.True(t, found)

	assert.Equal(t, "2.39:1", loaded.Settings["aspectRatio"])
	element := loaded.ScriptElements[0].(map[string]any)
	assert.Equal(t, "slugline", element["elementType"])

	// Collections come back ordered by sequence, in application key form.
	require.Len(t, loaded.Scenes, 2)
	assert.Equal(t, "s1", loaded.Scenes[0]["id"])
	assert.Equal(t, "s2", loaded.Scenes[1]["id"])

	require.Len(t, loaded.Shots, 1)
	shot := loaded.Shots[0]
	assert.Equal(t, "s1", shot["sceneId"])
	assert.Equal(t, "WIDE", shot["shotType"])
	assert.Equal(t, "shotgen-v2", shot["aiModel"])
	assert.NotContains(t, shot, "metadata")
}

func TestGetProjectDataAbsent(t *testing.T) {
	service := newTestService(newFakeBlobStore(), newFakeRowStore())

	_, found, err := service.GetProjectData(projectID)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestSaveCharactersPersistsPortraits(t *testing.T) {
	store := newFakeBlobStore()
	rows := newFakeRowStore()
	service := newTestService(store, rows)

	characters := []map[string]any{
		{"id": "c1", "name": "Dr. Voss", "role": "antagonist", "portraitImage": pngDataURI()},
	}
	require.NoError(t, service.SaveCharacters(projectID, characters))

	assert.Equal(t, 1, store.uploads)

	loaded, err := service.GetCharacters(projectID)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	portrait := loaded[0]["portraitImage"].(string)
	assert.True(t, strings.HasPrefix(portrait, publicBase+projectID+"/"))
	assert.Equal(t, "Dr. Voss", loaded[0]["name"])
}

func TestDeleteProjectPurgesRowsAndBlobs(t *testing.T) {
	store := newFakeBlobStore()
	rows := newFakeRowStore()
	service := newTestService(store, rows)

	doc := &models.ProjectDocument{
		Scenes: []map[string]any{{"id": "s1", "sequence": float64(1)}},
		Shots:  []map[string]any{{"id": "sh1", "sceneId": "s1", "generatedImage": pngDataURI()}},
	}
	require.NoError(t, service.SaveProjectData(projectID, doc))
	require.NotEmpty(t, store.paths())

	require.NoError(t, service.DeleteProject(projectID))

	assert.Empty(t, store.paths())
	assert.Zero(t, rows.rowCount("scenes", projectID))
	assert.Zero(t, rows.rowCount("shots", projectID))
	_, found, _ := rows.SelectOne("projects", projectID)
	assert.False(t, found)
}

func TestListAssetsPagesThroughNamespace(t *testing.T) {
	store := newFakeBlobStore()
	rows := newFakeRowStore()
	scanner := persist.NewReachabilityScanner(testPaths)
	blobs := persist.NewBlobPersister(store, testPaths, nil)
	gc := persist.NewGarbageCollector(store, scanner, 2, 1000, nil)
	sync := persist.NewRelationalSync(rows, nil)
	service := persist.NewService(blobs, sync, gc, rows, store, nil, 2, nil)

	seedOrphans(store, 5)
	store.objects["other-project/x.png"] = []byte("x")

	assets, err := service.ListAssets(projectID)
	require.NoError(t, err)
	assert.Len(t, assets, 5)
	for _, asset := range assets {
		assert.True(t, strings.HasPrefix(asset.StoragePath, projectID+"/"))
		assert.Equal(t, publicBase+asset.StoragePath, asset.StorageURL)
	}
}
