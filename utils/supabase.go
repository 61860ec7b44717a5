package utils

import (
	"io"
	"strings"

	storage "github.com/supabase-community/storage-go"
)

// SupabaseStorage uploads public assets to one bucket.
type SupabaseStorage struct {
	client *storage.Client
	bucket string
}

func NewSupabaseStorage(supabaseURL, supabaseKey, bucket string) *SupabaseStorage {
	client := storage.NewClient(strings.TrimRight(supabaseURL, "/")+"/storage/v1", supabaseKey, nil)
	return &SupabaseStorage{client: client, bucket: bucket}
}

// Upload stores data at objectPath, replacing any existing object, and
// returns its public URL.
func (s *SupabaseStorage) Upload(objectPath string, data io.Reader, contentType string) (string, error) {
	upsert := true
	options := storage.FileOptions{
		ContentType: &contentType,
		Upsert:      &upsert,
	}
	if _, err := s.client.UploadFile(s.bucket, objectPath, data, options); err != nil {
		return "", err
	}
	return s.client.GetPublicUrl(s.bucket, objectPath).SignedURL, nil
}
