package download

import (
	"context"
	"io"

	"vidgrab/internal/domain/download"
)

// Extractor is an application port for the external media extraction tool.
type Extractor interface {
	// Probe runs metadata-only extraction for a URL.
	Probe(ctx context.Context, url string) (download.VideoInfo, error)
	// Fetch retrieves the media into workDir and returns the names of the
	// regular files it produced there. Progress percentages reported by
	// the tool are forwarded to onProgress.
	Fetch(ctx context.Context, url, quality string, format download.Format, workDir string, onProgress func(int)) ([]string, error)
}

// JobStore is an application port for durable job records.
type JobStore interface {
	Create(ctx context.Context, job *download.Job) error
	Get(ctx context.Context, id string) (*download.Job, error)
	Update(ctx context.Context, job *download.Job) error
	Delete(ctx context.Context, id string) error
	// List returns all jobs ordered by creation time, newest first.
	List(ctx context.Context) ([]*download.Job, error)
}

// ArtifactStore is an application port for durable blob storage.
type ArtifactStore interface {
	// Upload stores the blob under key and returns the number of bytes written.
	Upload(ctx context.Context, key string, r io.Reader) (int64, error)
	// RemoveAll deletes every blob stored under the given job id.
	RemoveAll(ctx context.Context, jobID string) error
	// ResolveURL returns the stable public URL for an uploaded key.
	ResolveURL(key string) string
}
