package supabase

import "strings"

// publicObjectMarker is the fixed segment Supabase places before the bucket
// and object path in every public object URL.
const publicObjectMarker = "/storage/v1/object/public/"

// ObjectPaths derives and parses storage paths from durable public URLs for
// one bucket. Pure string inspection, no I/O, never fails: malformed input is
// reported as "not a storage URL" rather than an error.
type ObjectPaths struct {
	Bucket string
}

// PathFromURL extracts the storage path from a public object URL. Returns
// ok=false when rawURL is not a public URL for this bucket.
func (p ObjectPaths) PathFromURL(rawURL string) (string, bool) {
	idx := strings.Index(rawURL, publicObjectMarker)
	if idx < 0 {
		return "", false
	}
	rest := rawURL[idx+len(publicObjectMarker):]
	bucketPrefix := p.Bucket + "/"
	if !strings.HasPrefix(rest, bucketPrefix) {
		return "", false
	}
	path := rest[len(bucketPrefix):]
	if path == "" {
		return "", false
	}
	return path, true
}

// ProjectPrefix is the namespace prefix scoping all blobs of one project.
func ProjectPrefix(projectID string) string {
	return projectID + "/"
}

// InProject reports whether a storage path lies under the project's namespace.
func InProject(path, projectID string) bool {
	return projectID != "" && strings.HasPrefix(path, ProjectPrefix(projectID))
}
