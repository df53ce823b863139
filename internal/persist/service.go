package persist

import (
	"sort"

	"go.uber.org/zap"

	"cineflex-backend/internal/casing"
	"cineflex-backend/internal/models"
	"cineflex-backend/internal/supabase"
)

// EventPublisher notifies interested clients that a project's persisted state
// changed. Publishing is best-effort.
type EventPublisher interface {
	PublishProjectEvent(projectID, event string, payload map[string]any) error
}

// Service runs the full save pipeline for a project document: blob
// materialization, relational sync, then garbage collection against the
// just-persisted document. It also carries the narrower feature accessors
// that follow the same persist-then-upsert pattern at smaller scope.
type Service struct {
	blobs    *BlobPersister
	sync     *RelationalSync
	gc       *GarbageCollector
	rows     RowStore
	store    BlobStore
	events   EventPublisher
	pageSize int
	logger   *zap.Logger
}

func NewService(blobs *BlobPersister, sync *RelationalSync, gc *GarbageCollector, rows RowStore, store BlobStore, events EventPublisher, listPageSize int, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		blobs:    blobs,
		sync:     sync,
		gc:       gc,
		rows:     rows,
		store:    store,
		events:   events,
		pageSize: listPageSize,
		logger:   logger,
	}
}

// SaveProjectData runs the pipeline. The relational writes and the GC pass
// are best-effort: the caller sees the save as succeeding, true failures are
// observable through logs only.
func (s *Service) SaveProjectData(projectID string, doc *models.ProjectDocument) error {
	persisted := s.blobs.PersistDocument(projectID, doc)
	s.sync.Sync(projectID, persisted)

	// GC must observe the document that was just persisted, never an older
	// or newer snapshot; the scheduler serializes saves per project to keep
	// that ordering under concurrent edits.
	s.gc.Collect(projectID, persisted)

	if s.events != nil {
		err := s.events.PublishProjectEvent(projectID, "project_saved",
			supabase.SaveCompletedPayload(projectID, len(persisted.Scenes), len(persisted.Shots)))
		if err != nil {
			s.logger.Warn("failed to publish save event",
				zap.String("project_id", projectID),
				zap.Error(err))
		}
	}
	return nil
}

// GetProjectData loads the persisted document, or found=false when the
// project has never been saved.
func (s *Service) GetProjectData(projectID string) (*models.ProjectDocument, bool, error) {
	project, found, err := s.rows.SelectOne(tableProjects, projectID)
	if err != nil {
		return nil, false, err
	}
	if !found {
		return nil, false, nil
	}

	doc := &models.ProjectDocument{}
	if settings, ok := project["settings"].(map[string]any); ok {
		doc.Settings = casing.ToAppMap(settings)
	}
	if elements, ok := project["script_elements"].([]any); ok {
		doc.ScriptElements = casing.ToAppKeys(elements).([]any)
	}

	if doc.Scenes, err = s.loadCollection(tableScenes, projectID, sceneColumns); err != nil {
		return nil, false, err
	}
	if doc.Shots, err = s.loadCollection(tableShots, projectID, shotColumns); err != nil {
		return nil, false, err
	}
	if doc.Characters, err = s.loadCollection(tableCharacters, projectID, characterColumns); err != nil {
		return nil, false, err
	}
	return doc, true, nil
}

func (s *Service) loadCollection(table, projectID string, columns []columnSpec) ([]map[string]any, error) {
	rows, err := s.rows.SelectByProject(table, projectID)
	if err != nil {
		return nil, err
	}
	entities := make([]map[string]any, 0, len(rows))
	for _, row := range rows {
		entities = append(entities, unflattenEntity(row, columns))
	}
	sortBySequence(entities)
	return entities, nil
}

// GetCharacters and SaveCharacters are the narrow accessor used by the
// character board; the save follows the same persist-then-upsert shape as the
// full pipeline, scoped to one collection.
func (s *Service) GetCharacters(projectID string) ([]map[string]any, error) {
	return s.loadCollection(tableCharacters, projectID, characterColumns)
}

func (s *Service) SaveCharacters(projectID string, characters []map[string]any) error {
	persisted := transformEntities(characters, func(key string, value any) any {
		str, ok := value.(string)
		if !ok || !isMediaKey(key) {
			return value
		}
		return s.blobs.Persist(projectID, str)
	})
	s.sync.syncCollection(tableCharacters, projectID, persisted, characterColumns)
	return nil
}

// ListAssets pages through every stored blob under the project namespace and
// returns its storage path and public URL.
func (s *Service) ListAssets(projectID string) ([]models.Asset, error) {
	prefix := supabase.ProjectPrefix(projectID)
	var assets []models.Asset
	for offset := 0; ; offset += s.pageSize {
		page, err := s.store.List(prefix, s.pageSize, offset)
		if err != nil {
			return nil, err
		}
		for _, path := range page {
			assets = append(assets, models.Asset{
				StoragePath: path,
				StorageURL:  s.store.PublicURL(path),
			})
		}
		if len(page) < s.pageSize {
			break
		}
	}
	return assets, nil
}

// DeleteProject removes the project's rows and purges its entire blob
// namespace. Row deletion is attempted per table; purge failures are logged.
func (s *Service) DeleteProject(projectID string) error {
	// Dependent tables first, primary row last.
	for _, table := range []string{tableShots, tableScenes, tableCharacters} {
		if err := s.rows.DeleteByProject(table, projectID); err != nil {
			s.logger.Warn("failed to delete project rows",
				zap.String("project_id", projectID),
				zap.String("table", table),
				zap.Error(err))
		}
	}
	// The projects table is keyed by id, not project_id.
	if err := s.rows.DeleteByID(tableProjects, projectID); err != nil {
		s.logger.Warn("failed to delete project row",
			zap.String("project_id", projectID),
			zap.Error(err))
	}

	assets, err := s.ListAssets(projectID)
	if err != nil {
		s.logger.Warn("failed to list project blobs for purge",
			zap.String("project_id", projectID),
			zap.Error(err))
	} else if len(assets) > 0 {
		paths := make([]string, len(assets))
		for i, asset := range assets {
			paths[i] = asset.StoragePath
		}
		if err := s.store.Remove(paths); err != nil {
			s.logger.Warn("failed to purge project blobs",
				zap.String("project_id", projectID),
				zap.Error(err))
		}
	}

	if s.events != nil {
		if err := s.events.PublishProjectEvent(projectID, "project_deleted",
			supabase.ProjectDeletedPayload(projectID)); err != nil {
			s.logger.Warn("failed to publish delete event",
				zap.String("project_id", projectID),
				zap.Error(err))
		}
	}
	return nil
}

func sortBySequence(entities []map[string]any) {
	sort.SliceStable(entities, func(i, j int) bool {
		return sequenceOf(entities[i]) < sequenceOf(entities[j])
	})
}

func sequenceOf(entity map[string]any) float64 {
	switch v := entity["sequence"].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	default:
		return 0
	}
}
