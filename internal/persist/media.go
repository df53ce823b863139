// Package persist is the persistence synchronization and blob
// garbage-collection engine: it materializes embedded media references into
// durable storage, reconciles the in-memory project document against stored
// rows, and reclaims blobs no longer reachable from any document field.
package persist

import (
	"cineflex-backend/internal/casing"
	"cineflex-backend/internal/docwalk"
	"cineflex-backend/internal/models"
)

// The closed sets of field names that are semantically media references.
// Matching is done on the camelized key so wire-form documents behave the
// same. mediaListFields hold arrays whose every element is a reference.
var mediaFields = map[string]struct{}{
	"generatedImage": {},
	"sketchImage":    {},
	"referenceImage": {},
	"portraitImage":  {},
	"imageUrl":       {},
	"url":            {},
}

var mediaListFields = map[string]struct{}{
	"generationCandidates": {},
	"referencePhotos":      {},
}

func isMediaKey(key string) bool {
	k := casing.ToCamel(key)
	if _, ok := mediaFields[k]; ok {
		return true
	}
	_, ok := mediaListFields[k]
	return ok
}

// walkDocument visits every scalar in every section of the document.
func walkDocument(doc *models.ProjectDocument, visit docwalk.Visit) {
	if doc == nil {
		return
	}
	docwalk.Walk(doc.Settings, visit)
	docwalk.Walk(doc.ScriptElements, visit)
	for _, scene := range doc.Scenes {
		docwalk.Walk(scene, visit)
	}
	for _, shot := range doc.Shots {
		docwalk.Walk(shot, visit)
	}
	for _, character := range doc.Characters {
		docwalk.Walk(character, visit)
	}
}

// transformDocument rewrites every scalar leaf of the document through leafFn,
// returning a fresh document. The input is not mutated.
func transformDocument(doc *models.ProjectDocument, leafFn docwalk.RewriteLeaf) *models.ProjectDocument {
	if doc == nil {
		return nil
	}
	return &models.ProjectDocument{
		Settings:       docwalk.TransformMap(doc.Settings, nil, leafFn),
		ScriptElements: docwalk.TransformSlice(doc.ScriptElements, nil, leafFn),
		Scenes:         transformEntities(doc.Scenes, leafFn),
		Shots:          transformEntities(doc.Shots, leafFn),
		Characters:     transformEntities(doc.Characters, leafFn),
	}
}

func transformEntities(entities []map[string]any, leafFn docwalk.RewriteLeaf) []map[string]any {
	if entities == nil {
		return nil
	}
	out := make([]map[string]any, len(entities))
	for i, entity := range entities {
		out[i] = docwalk.TransformMap(entity, nil, leafFn)
	}
	return out
}
