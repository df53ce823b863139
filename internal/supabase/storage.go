package supabase

import (
	"bytes"
	"fmt"
	"strings"

	storage "github.com/supabase-community/storage-go"
)

type StorageClient struct {
	client  *storage.Client
	bucket  string
	baseURL string
}

func NewStorageClient(supabaseURL, serviceKey, bucket string) *StorageClient {
	baseURL := strings.TrimSuffix(supabaseURL, "/")
	client := storage.NewClient(baseURL+"/storage/v1", serviceKey, nil)

	return &StorageClient{
		client:  client,
		bucket:  bucket,
		baseURL: baseURL,
	}
}

// Paths returns the path codec for this client's bucket.
func (s *StorageClient) Paths() ObjectPaths {
	return ObjectPaths{Bucket: s.bucket}
}

// Upload stores data at path, overwriting any existing object.
func (s *StorageClient) Upload(path string, data []byte, contentType string) error {
	upsert := true
	_, err := s.client.UploadFile(s.bucket, path, bytes.NewReader(data), storage.FileOptions{
		ContentType: &contentType,
		Upsert:      &upsert,
	})
	if err != nil {
		return fmt.Errorf("failed to upload %s: %w", path, err)
	}
	return nil
}

// Move renames an object from src to dst within the bucket.
func (s *StorageClient) Move(src, dst string) error {
	_, err := s.client.MoveFile(s.bucket, src, dst)
	if err != nil {
		return fmt.Errorf("failed to move %s to %s: %w", src, dst, err)
	}
	return nil
}

// List returns one page of object paths under prefix, at most limit entries
// starting at offset. A page shorter than limit signals end of listing.
func (s *StorageClient) List(prefix string, limit, offset int) ([]string, error) {
	files, err := s.client.ListFiles(s.bucket, prefix, storage.FileSearchOptions{
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list files under %s: %w", prefix, err)
	}

	paths := make([]string, 0, len(files))
	base := strings.TrimSuffix(prefix, "/")
	for _, file := range files {
		if base == "" {
			paths = append(paths, file.Name)
			continue
		}
		paths = append(paths, base+"/"+file.Name)
	}
	return paths, nil
}

// Remove deletes the given objects in a single batch call.
func (s *StorageClient) Remove(paths []string) error {
	if len(paths) == 0 {
		return nil
	}
	_, err := s.client.RemoveFile(s.bucket, paths)
	if err != nil {
		return fmt.Errorf("failed to delete files: %w", err)
	}
	return nil
}

// Download fetches an object's bytes.
func (s *StorageClient) Download(path string) ([]byte, error) {
	data, err := s.client.DownloadFile(s.bucket, path)
	if err != nil {
		return nil, fmt.Errorf("failed to download %s: %w", path, err)
	}
	return data, nil
}

// PublicURL derives the durable public URL for a storage path.
func (s *StorageClient) PublicURL(path string) string {
	return fmt.Sprintf("%s%s%s/%s", s.baseURL, publicObjectMarker, s.bucket, path)
}
