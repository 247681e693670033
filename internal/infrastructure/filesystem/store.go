// Package filesystem holds the blob store for downloaded media and
// subtitle artifacts, keyed as <job_id>/<filename>.
package filesystem

import (
	"context"
	"errors"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// ArtifactStore persists artifacts under a single root directory.
type ArtifactStore struct {
	Root    string
	BaseURL string
}

// NewArtifactStore creates the filesystem adapter with the configured
// root and the public base URL used to resolve artifact links.
func NewArtifactStore(root, baseURL string) *ArtifactStore {
	return &ArtifactStore{Root: root, BaseURL: strings.TrimRight(baseURL, "/")}
}

// EnsureDirs creates the artifact root.
func (s *ArtifactStore) EnsureDirs() error {
	return os.MkdirAll(s.Root, 0o755)
}

// Upload stores a blob under key and returns the number of bytes written.
func (s *ArtifactStore) Upload(_ context.Context, key string, r io.Reader) (int64, error) {
	full, err := s.resolve(key)
	if err != nil {
		return 0, err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return 0, err
	}

	file, err := os.Create(full)
	if err != nil {
		return 0, err
	}
	defer file.Close()

	n, err := io.Copy(file, r)
	if err != nil {
		_ = os.Remove(full)
		return 0, err
	}
	return n, nil
}

// RemoveAll deletes every artifact stored under a job id.
func (s *ArtifactStore) RemoveAll(_ context.Context, jobID string) error {
	full, err := s.resolve(jobID)
	if err != nil {
		return err
	}
	return os.RemoveAll(full)
}

// ResolveURL returns the stable public URL for an uploaded key.
func (s *ArtifactStore) ResolveURL(key string) string {
	return s.BaseURL + "/api/files/" + key
}

// Resolve validates a key and returns the absolute path for serving.
func (s *ArtifactStore) Resolve(key string) (string, error) {
	return s.resolve(key)
}

func (s *ArtifactStore) resolve(key string) (string, error) {
	cleaned, err := normalizeKey(key)
	if err != nil {
		return "", err
	}
	full := filepath.Join(s.Root, filepath.FromSlash(cleaned))
	if !isWithinDir(s.Root, full) {
		return "", errors.New("invalid artifact key")
	}
	return full, nil
}

func normalizeKey(raw string) (string, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return "", errors.New("empty artifact key")
	}
	value = strings.ReplaceAll(value, "\\", "/")
	cleaned := path.Clean("/" + value)
	cleaned = strings.TrimPrefix(cleaned, "/")
	if cleaned == "" || cleaned == "." {
		return "", errors.New("invalid artifact key")
	}
	return cleaned, nil
}

func isWithinDir(basePath, targetPath string) bool {
	baseAbs, err := filepath.Abs(basePath)
	if err != nil {
		return false
	}
	targetAbs, err := filepath.Abs(targetPath)
	if err != nil {
		return false
	}
	rel, err := filepath.Rel(baseAbs, targetAbs)
	if err != nil {
		return false
	}
	sep := string(os.PathSeparator)
	if rel == ".." || strings.HasPrefix(rel, ".."+sep) {
		return false
	}
	return true
}
