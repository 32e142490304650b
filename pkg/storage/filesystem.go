package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// AvatarStore persists member photos on disk and maps them to public URLs.
type AvatarStore struct {
	baseDir       string
	publicBaseURL string
}

// NewAvatarStore ensures the base directory exists and returns a handle.
func NewAvatarStore(baseDir, publicBaseURL string) (*AvatarStore, error) {
	if baseDir == "" {
		baseDir = "./avatars"
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create avatar directory: %w", err)
	}
	return &AvatarStore{baseDir: baseDir, publicBaseURL: strings.TrimRight(publicBaseURL, "/")}, nil
}

// Save streams an uploaded photo to disk keyed by member ID and returns its
// public URL. An existing photo for the member is overwritten.
func (s *AvatarStore) Save(memberID, ext string, r io.Reader) (string, error) {
	filename := memberID + normalizeExt(ext)
	path := filepath.Join(s.baseDir, filename)

	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create avatar file: %w", err)
	}
	defer file.Close() //nolint:errcheck

	if _, err := io.Copy(file, r); err != nil {
		return "", fmt.Errorf("write avatar file: %w", err)
	}

	return s.publicBaseURL + "/" + filename, nil
}

// Delete removes a member's photo if present. Any extension variant goes.
func (s *AvatarStore) Delete(memberID string) error {
	matches, err := filepath.Glob(filepath.Join(s.baseDir, memberID+".*"))
	if err != nil {
		return fmt.Errorf("locate avatar files: %w", err)
	}
	for _, path := range matches {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("delete avatar file: %w", err)
		}
	}
	return nil
}

// Dir exposes the base directory so the router can serve it statically.
func (s *AvatarStore) Dir() string {
	return s.baseDir
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext == "" {
		return ".jpg"
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}
