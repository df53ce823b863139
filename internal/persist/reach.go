package persist

import (
	"cineflex-backend/internal/models"
	"cineflex-backend/internal/supabase"
)

// ReachabilityScanner computes the set of storage paths a document currently
// references. The scan is recomputed from scratch every call; the document may
// have changed since any prior computation, so no state is carried over.
type ReachabilityScanner struct {
	paths supabase.ObjectPaths
}

func NewReachabilityScanner(paths supabase.ObjectPaths) ReachabilityScanner {
	return ReachabilityScanner{paths: paths}
}

// CollectReachable visits every scalar string in the document and returns the
// storage paths namespaced under the project. Non-string scalars and URLs
// outside the project's namespace are ignored.
func (r ReachabilityScanner) CollectReachable(projectID string, doc *models.ProjectDocument) map[string]struct{} {
	reachable := make(map[string]struct{})
	walkDocument(doc, func(_ string, value any) {
		s, ok := value.(string)
		if !ok {
			return
		}
		path, ok := r.paths.PathFromURL(s)
		if !ok || !supabase.InProject(path, projectID) {
			return
		}
		reachable[path] = struct{}{}
	})
	return reachable
}
