package persist

import (
	"encoding/base64"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"cineflex-backend/internal/models"
	"cineflex-backend/internal/supabase"
)

// BlobStore is the slice of the storage client the engine depends on.
type BlobStore interface {
	Upload(path string, data []byte, contentType string) error
	Move(src, dst string) error
	List(prefix string, limit, offset int) ([]string, error)
	Remove(paths []string) error
	PublicURL(path string) string
}

// BlobPersister ensures media references are durable and namespaced under
// their project. Every failure falls back to the original URL: a save must
// never abort because one blob could not be materialized.
type BlobPersister struct {
	store  BlobStore
	paths  supabase.ObjectPaths
	logger *zap.Logger
}

func NewBlobPersister(store BlobStore, paths supabase.ObjectPaths, logger *zap.Logger) *BlobPersister {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BlobPersister{store: store, paths: paths, logger: logger}
}

// Persist returns a durable URL for url under the project's namespace.
//
//   - empty values and external host URLs pass through unchanged
//   - storage URLs already under <projectID>/ pass through unchanged
//   - storage URLs under another namespace are moved into this project's
//   - transient data-URI payloads are decoded and uploaded
func (b *BlobPersister) Persist(projectID, url string) string {
	if url == "" {
		return url
	}

	if path, ok := b.paths.PathFromURL(url); ok {
		if supabase.InProject(path, projectID) {
			return url
		}
		dst := supabase.ProjectPrefix(projectID) + objectName(path)
		if err := b.store.Move(path, dst); err != nil {
			b.logger.Warn("failed to relocate blob into project namespace",
				zap.String("project_id", projectID),
				zap.String("path", path),
				zap.Error(err))
			return url
		}
		return b.store.PublicURL(dst)
	}

	if strings.HasPrefix(url, "http://") || strings.HasPrefix(url, "https://") {
		// External host, assumed durable and not ours to manage.
		return url
	}

	data, contentType, ok := decodeDataURI(url)
	if !ok {
		b.logger.Warn("unresolvable transient media reference left as-is",
			zap.String("project_id", projectID),
			zap.String("prefix", truncate(url, 32)))
		return url
	}

	dst := supabase.ProjectPrefix(projectID) + uuid.New().String() + extensionFor(contentType)
	if err := b.store.Upload(dst, data, contentType); err != nil {
		b.logger.Warn("failed to upload transient media payload",
			zap.String("project_id", projectID),
			zap.String("path", dst),
			zap.Error(err))
		return url
	}
	return b.store.PublicURL(dst)
}

// PersistDocument applies Persist to every media reference field at every
// depth and returns a fresh document; the input is not mutated.
func (b *BlobPersister) PersistDocument(projectID string, doc *models.ProjectDocument) *models.ProjectDocument {
	return transformDocument(doc, func(key string, value any) any {
		s, ok := value.(string)
		if !ok || !isMediaKey(key) {
			return value
		}
		return b.Persist(projectID, s)
	})
}

func objectName(path string) string {
	if idx := strings.LastIndex(path, "/"); idx >= 0 {
		return path[idx+1:]
	}
	return path
}

// decodeDataURI decodes "data:<mime>;base64,<payload>" captures produced by
// the editing UI. Anything else is not a payload this engine can fetch.
func decodeDataURI(url string) ([]byte, string, bool) {
	if !strings.HasPrefix(url, "data:") {
		return nil, "", false
	}
	comma := strings.Index(url, ",")
	if comma < 0 {
		return nil, "", false
	}
	meta := url[len("data:"):comma]
	if !strings.HasSuffix(meta, ";base64") {
		return nil, "", false
	}
	data, err := base64.StdEncoding.DecodeString(url[comma+1:])
	if err != nil || len(data) == 0 {
		return nil, "", false
	}

	contentType := strings.TrimSuffix(meta, ";base64")
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	return data, contentType, true
}

func extensionFor(contentType string) string {
	switch contentType {
	case "image/png":
		return ".png"
	case "image/jpeg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	default:
		return ".bin"
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
