package persist

import (
	"time"

	"go.uber.org/zap"

	"cineflex-backend/internal/casing"
	"cineflex-backend/internal/models"
)

const (
	tableProjects   = "projects"
	tableScenes     = "scenes"
	tableShots      = "shots"
	tableCharacters = "characters"

	// orphanSentinelID stands in for an empty keep-set so the prune filter is
	// never a malformed empty in-list. It matches no real row, which makes the
	// prune delete every stored row of the collection, exactly what an empty
	// collection requires.
	orphanSentinelID = "__none__"
)

// RowStore is the slice of the relational backend the engine depends on.
type RowStore interface {
	Upsert(table string, rows any) error
	DeleteWhereIDNotIn(table, projectID string, keepIDs []string) error
	DeleteByProject(table, projectID string) error
	DeleteByID(table, id string) error
	SelectByProject(table, projectID string) ([]map[string]any, error)
	SelectOne(table, id string) (map[string]any, bool, error)
}

// columnSpec maps an application-form entity key onto its declared column.
// Keys without a spec ride in the opaque metadata column.
type columnSpec struct {
	appKey string
	column string
}

var sceneColumns = []columnSpec{
	{"sequence", "sort_order"},
	{"heading", "heading"},
	{"notes", "notes"},
	{"locationId", "location_id"},
	{"script", "script"},
}

var shotColumns = []columnSpec{
	{"sceneId", "scene_id"},
	{"sequence", "sort_order"},
	{"shotType", "shot_type"},
	{"description", "description"},
	{"dialogue", "dialogue"},
	{"cameraMovement", "camera_movement"},
}

var characterColumns = []columnSpec{
	{"name", "name"},
	{"role", "role"},
	{"description", "description"},
}

// RelationalSync reconciles a document against stored rows: singleton
// project-level upsert, then per-collection orphan pruning and row upserts.
// Each table is written best-effort; one table's failure is logged and does
// not prevent the others.
type RelationalSync struct {
	rows   RowStore
	logger *zap.Logger
}

func NewRelationalSync(rows RowStore, logger *zap.Logger) *RelationalSync {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RelationalSync{rows: rows, logger: logger}
}

// Sync writes the document's current state for the project. Scenes go before
// shots so the scene foreign key is satisfied on insert.
func (s *RelationalSync) Sync(projectID string, doc *models.ProjectDocument) {
	project := map[string]any{
		"id":              projectID,
		"settings":        casing.ToWireMap(doc.Settings),
		"script_elements": casing.ToWireKeys(doc.ScriptElements),
		"updated_at":      time.Now().UTC().Format(time.RFC3339),
	}
	if err := s.rows.Upsert(tableProjects, project); err != nil {
		s.logger.Warn("project row upsert failed",
			zap.String("project_id", projectID),
			zap.Error(err))
	}

	s.syncCollection(tableScenes, projectID, doc.Scenes, sceneColumns)
	s.syncCollection(tableShots, projectID, doc.Shots, shotColumns)
	s.syncCollection(tableCharacters, projectID, doc.Characters, characterColumns)
}

func (s *RelationalSync) syncCollection(table, projectID string, entities []map[string]any, columns []columnSpec) {
	keep := make([]string, 0, len(entities))
	for _, entity := range entities {
		if id := models.EntityID(entity); id != "" {
			keep = append(keep, id)
		}
	}

	guard := keep
	if len(guard) == 0 {
		guard = []string{orphanSentinelID}
	}
	if err := s.rows.DeleteWhereIDNotIn(table, projectID, guard); err != nil {
		s.logger.Warn("orphan row prune failed",
			zap.String("project_id", projectID),
			zap.String("table", table),
			zap.Error(err))
	}

	if len(keep) == 0 {
		return
	}

	rows := make([]map[string]any, 0, len(entities))
	for _, entity := range entities {
		if models.EntityID(entity) == "" {
			s.logger.Warn("skipping entity without id",
				zap.String("project_id", projectID),
				zap.String("table", table))
			continue
		}
		rows = append(rows, flattenEntity(projectID, entity, columns))
	}
	if err := s.rows.Upsert(table, rows); err != nil {
		s.logger.Warn("row upsert failed",
			zap.String("project_id", projectID),
			zap.String("table", table),
			zap.Error(err))
	}
}

// flattenEntity extracts declared columns from the entity and serializes
// every remaining field into the metadata column, all in wire key form.
func flattenEntity(projectID string, entity map[string]any, columns []columnSpec) map[string]any {
	row := map[string]any{
		"id":         models.EntityID(entity),
		"project_id": projectID,
	}

	metadata := make(map[string]any)
	for key, value := range entity {
		if key == "id" {
			continue
		}
		if column, ok := columnFor(key, columns); ok {
			row[column] = casing.ToWireKeys(value)
			continue
		}
		metadata[key] = value
	}
	row["metadata"] = casing.ToWireMap(metadata)
	return row
}

// unflattenEntity is the inverse used on the read path: metadata fields are
// merged back, declared columns win over metadata on key collision.
func unflattenEntity(row map[string]any, columns []columnSpec) map[string]any {
	entity := make(map[string]any)
	if metadata, ok := row["metadata"].(map[string]any); ok {
		for key, value := range casing.ToAppMap(metadata) {
			entity[key] = value
		}
	}
	if id, ok := row["id"].(string); ok {
		entity["id"] = id
	}
	for _, spec := range columns {
		value, ok := row[spec.column]
		if !ok || value == nil {
			continue
		}
		entity[spec.appKey] = casing.ToAppKeys(value)
	}
	return entity
}

func columnFor(appKey string, columns []columnSpec) (string, bool) {
	key := casing.ToCamel(appKey)
	for _, spec := range columns {
		if spec.appKey == key {
			return spec.column, true
		}
	}
	return "", false
}
