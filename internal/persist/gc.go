package persist

import (
	"go.uber.org/zap"

	"cineflex-backend/internal/models"
	"cineflex-backend/internal/supabase"
)

// GarbageCollector reclaims stored blobs no longer reachable from the
// persisted document. It runs after a successful relational sync, against the
// just-persisted document, and is best-effort throughout: a failed listing
// skips the pass, a failed delete batch skips only that batch.
type GarbageCollector struct {
	store           BlobStore
	scanner         ReachabilityScanner
	listPageSize    int
	deleteBatchSize int
	logger          *zap.Logger
}

func NewGarbageCollector(store BlobStore, scanner ReachabilityScanner, listPageSize, deleteBatchSize int, logger *zap.Logger) *GarbageCollector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GarbageCollector{
		store:           store,
		scanner:         scanner,
		listPageSize:    listPageSize,
		deleteBatchSize: deleteBatchSize,
		logger:          logger,
	}
}

// Collect deletes every blob under the project namespace that the document
// does not reference.
func (g *GarbageCollector) Collect(projectID string, doc *models.ProjectDocument) {
	reachable := g.scanner.CollectReachable(projectID, doc)
	prefix := supabase.ProjectPrefix(projectID)

	// The listing is paginated; a page shorter than the page size is the
	// end-of-listing signal.
	var stored []string
	for offset := 0; ; offset += g.listPageSize {
		page, err := g.store.List(prefix, g.listPageSize, offset)
		if err != nil {
			g.logger.Warn("blob listing failed, skipping garbage collection pass",
				zap.String("project_id", projectID),
				zap.Error(err))
			return
		}
		stored = append(stored, page...)
		if len(page) < g.listPageSize {
			break
		}
	}

	var orphans []string
	for _, path := range stored {
		if _, ok := reachable[path]; !ok {
			orphans = append(orphans, path)
		}
	}
	if len(orphans) == 0 {
		return
	}

	deleted := 0
	for start := 0; start < len(orphans); start += g.deleteBatchSize {
		end := start + g.deleteBatchSize
		if end > len(orphans) {
			end = len(orphans)
		}
		if err := g.store.Remove(orphans[start:end]); err != nil {
			g.logger.Warn("orphan delete batch failed, continuing with remaining batches",
				zap.String("project_id", projectID),
				zap.Int("batch_size", end-start),
				zap.Error(err))
			continue
		}
		deleted += end - start
	}

	g.logger.Info("reclaimed orphaned blobs",
		zap.String("project_id", projectID),
		zap.Int("orphans", len(orphans)),
		zap.Int("deleted", deleted))
}
