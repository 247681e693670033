package download

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"vidgrab/internal/domain/download"
)

const defaultFetchConcurrency = 1

// Service is the download orchestrator: it owns the job state machine and
// drives each submission through probe, fetch, artifact upload and final
// persistence. Per-job updates are serialized; different jobs run in
// parallel up to the configured extractor bound.
type Service struct {
	extractor Extractor
	jobs      JobStore
	artifacts ArtifactStore
	logger    *log.Logger
	workRoot  string
	slots     chan struct{}
	reg       *runRegistry
}

// NewService creates the orchestrator with injected ports. maxConcurrent
// bounds simultaneous extractor invocations.
func NewService(extractor Extractor, jobs JobStore, artifacts ArtifactStore, workRoot string, maxConcurrent int, logger *log.Logger) *Service {
	if maxConcurrent <= 0 {
		maxConcurrent = defaultFetchConcurrency
	}
	return &Service{
		extractor: extractor,
		jobs:      jobs,
		artifacts: artifacts,
		logger:    logger,
		workRoot:  workRoot,
		slots:     make(chan struct{}, maxConcurrent),
		reg:       newRunRegistry(),
	}
}

// Submit validates the request, persists a pending job and launches the
// asynchronous pipeline. It returns as soon as the record exists; any
// later failure is captured on the job itself.
func (s *Service) Submit(ctx context.Context, url, quality string, format download.Format) (*download.Job, error) {
	if err := download.ValidateURL(url); err != nil {
		return nil, err
	}
	if !download.ValidFormat(format) {
		return nil, &download.ValidationError{Reason: fmt.Sprintf("unsupported format %q", format)}
	}
	if quality == "" {
		quality = "720p"
	}

	job := &download.Job{
		ID:        uuid.New().String(),
		URL:       url,
		Quality:   quality,
		Format:    format,
		Status:    download.StatusPending,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.jobs.Create(ctx, job); err != nil {
		return nil, &download.StorageError{Op: "create job", Err: err}
	}
	s.logger.Printf("download %s submitted: %s (%s %s)", job.ID, url, format, quality)

	go s.run(job.ID, true)
	return job.Clone(), nil
}

// Get returns the current record for a job id.
func (s *Service) Get(ctx context.Context, id string) (*download.Job, error) {
	return s.jobs.Get(ctx, id)
}

// List returns all job records, newest first.
func (s *Service) List(ctx context.Context) ([]*download.Job, error) {
	return s.jobs.List(ctx)
}

// Info probes a URL without creating a job. Probes share the extractor
// bound with running downloads.
func (s *Service) Info(ctx context.Context, url string) (download.VideoInfo, error) {
	if err := download.ValidateURL(url); err != nil {
		return download.VideoInfo{}, err
	}
	select {
	case s.slots <- struct{}{}:
	case <-ctx.Done():
		return download.VideoInfo{}, ctx.Err()
	}
	defer func() { <-s.slots }()
	return s.extractor.Probe(ctx, url)
}

// Pause records the intent to pause a downloading job. An extractor
// invocation already in flight keeps running; a fetch that finishes while
// the job is paused still carries it to a terminal state.
func (s *Service) Pause(ctx context.Context, id string) error {
	return s.mutate(ctx, id, func(j *download.Job) error {
		if j.Status != download.StatusDownloading {
			return download.ErrNotDownloading
		}
		j.Status = download.StatusPaused
		return nil
	})
}

// Resume moves a paused job back to downloading. If the underlying
// retrieval is no longer in flight the fetch pipeline is re-entered from
// the beginning of the retrieval step.
func (s *Service) Resume(ctx context.Context, id string) error {
	err := s.mutate(ctx, id, func(j *download.Job) error {
		if j.Status != download.StatusPaused {
			return download.ErrNotPaused
		}
		j.Status = download.StatusDownloading
		return nil
	})
	if err != nil {
		return err
	}
	if !s.reg.isRunning(id) {
		go s.run(id, false)
	}
	return nil
}

// Remove deletes a job record unconditionally, regardless of status, and
// cascades deletion of its uploaded artifacts. Artifact cleanup is
// best-effort and never fails the removal.
func (s *Service) Remove(ctx context.Context, id string) error {
	lock := s.reg.lock(id)
	lock.Lock()
	defer lock.Unlock()

	if _, err := s.jobs.Get(ctx, id); err != nil {
		return err
	}
	if err := s.jobs.Delete(ctx, id); err != nil {
		return &download.StorageError{Op: "delete job", Err: err}
	}
	if err := s.artifacts.RemoveAll(ctx, id); err != nil {
		s.logger.Printf("download %s: artifact cleanup failed: %v", id, err)
	}
	return nil
}

// ClearCompleted deletes every completed job in one pass and returns the
// number of records removed. Jobs in any other status are untouched.
func (s *Service) ClearCompleted(ctx context.Context) (int, error) {
	all, err := s.jobs.List(ctx)
	if err != nil {
		return 0, &download.StorageError{Op: "list jobs", Err: err}
	}

	removed := 0
	for _, job := range all {
		if job.Status != download.StatusCompleted {
			continue
		}
		if err := s.Remove(ctx, job.ID); err != nil {
			s.logger.Printf("clear completed: %s: %v", job.ID, err)
			continue
		}
		removed++
	}
	return removed, nil
}

// run executes the asynchronous pipeline for one job. probeFirst is false
// when re-entering from Resume, where metadata is already known.
func (s *Service) run(id string, probeFirst bool) {
	if !s.reg.tryStart(id) {
		return
	}
	defer s.reg.finish(id)

	s.slots <- struct{}{}
	defer func() { <-s.slots }()

	ctx := context.Background()
	job, err := s.jobs.Get(ctx, id)
	if err != nil {
		s.logger.Printf("download %s: gone before start: %v", id, err)
		return
	}

	if probeFirst {
		info, err := s.extractor.Probe(ctx, job.URL)
		if err != nil {
			s.fail(id, err)
			return
		}
		err = s.mutate(ctx, id, func(j *download.Job) error {
			j.Title = info.Title
			j.Thumbnail = info.Thumbnail
			j.Duration = info.Duration
			j.Status = download.StatusDownloading
			j.Progress = 0
			return nil
		})
		if err != nil {
			s.logger.Printf("download %s: cannot enter downloading: %v", id, err)
			return
		}
	} else if job.Status != download.StatusDownloading {
		// A restart can lose the race with a retrieval that already
		// finished the job. A record that left downloading is never
		// fetched again.
		s.logger.Printf("download %s: retrieval not restarted from %s", id, job.Status)
		return
	}

	workDir := filepath.Join(s.workRoot, id)
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		s.fail(id, &download.StorageError{Op: "create work dir", Err: err})
		return
	}
	// Temp cleanup is best-effort regardless of outcome.
	defer func() {
		if err := os.RemoveAll(workDir); err != nil {
			s.logger.Printf("download %s: temp cleanup failed: %v", id, err)
		}
	}()

	files, err := s.extractor.Fetch(ctx, job.URL, job.Quality, job.Format, workDir, func(p int) {
		s.setProgress(id, p)
	})
	if err != nil {
		s.fail(id, err)
		return
	}

	arts := download.ClassifyArtifacts(files, job.Format)
	if arts.Media == "" {
		s.fail(id, &download.FetchError{Err: fmt.Errorf("no %s file produced", download.PrimaryExt(job.Format))})
		return
	}

	title, duration := "", ""
	if arts.Info != "" {
		data, readErr := os.ReadFile(filepath.Join(workDir, arts.Info))
		if readErr != nil {
			s.fail(id, &download.StorageError{Op: "read info file", Err: readErr})
			return
		}
		title, duration, err = parseInfoFile(data)
		if err != nil {
			s.fail(id, &download.ParseError{Source: arts.Info, Err: err})
			return
		}
	}

	var total int64
	for _, name := range files {
		n, upErr := s.uploadFile(ctx, id+"/"+name, filepath.Join(workDir, name))
		if upErr != nil {
			s.fail(id, &download.StorageError{Op: "upload " + name, Err: upErr})
			return
		}
		total += n
	}

	subtitles := make([]download.Subtitle, 0, len(arts.Subtitles))
	for _, name := range arts.Subtitles {
		subtitles = append(subtitles, download.Subtitle{
			Language: download.SubtitleLanguage(name),
			Filename: name,
			Path:     id + "/" + name,
		})
	}
	mediaKey := id + "/" + arts.Media

	err = s.mutate(ctx, id, func(j *download.Job) error {
		j.Status = download.StatusCompleted
		j.Progress = 100
		j.FilePath = mediaKey
		j.FileSize = total
		j.Subtitles = subtitles
		if title != "" {
			j.Title = title
		}
		if duration != "" {
			j.Duration = duration
		}
		return nil
	})
	if err != nil {
		s.logger.Printf("download %s: cannot record completion: %v", id, err)
		return
	}
	s.logger.Printf("download %s completed: %s (%d bytes, %d subtitles)", id, mediaKey, total, len(subtitles))
}

func (s *Service) uploadFile(ctx context.Context, key, path string) (int64, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer file.Close()
	return s.artifacts.Upload(ctx, key, file)
}

// mutate applies a locked read-modify-write on one job record, enforcing
// the state machine edges on any status change.
func (s *Service) mutate(ctx context.Context, id string, fn func(*download.Job) error) error {
	lock := s.reg.lock(id)
	lock.Lock()
	defer lock.Unlock()

	job, err := s.jobs.Get(ctx, id)
	if err != nil {
		return err
	}
	prev := job.Status
	if err := fn(job); err != nil {
		return err
	}
	if job.Status != prev && !download.CanTransition(prev, job.Status) {
		return fmt.Errorf("invalid transition %s -> %s", prev, job.Status)
	}
	if err := s.jobs.Update(ctx, job); err != nil {
		return &download.StorageError{Op: "update job", Err: err}
	}
	return nil
}

// setProgress raises the reported percentage. Progress is only meaningful
// while downloading or paused and never decreases.
func (s *Service) setProgress(id string, p int) {
	if p < 0 {
		p = 0
	}
	if p > 100 {
		p = 100
	}
	err := s.mutate(context.Background(), id, func(j *download.Job) error {
		if (j.Status == download.StatusDownloading || j.Status == download.StatusPaused) && p > j.Progress {
			j.Progress = p
		}
		return nil
	})
	if err != nil {
		s.logger.Printf("download %s: progress update dropped: %v", id, err)
	}
}

// fail records a terminal failure with the most specific diagnostic
// available. A failed job keeps no file reference.
func (s *Service) fail(id string, cause error) {
	s.logger.Printf("download %s failed: %v", id, cause)
	err := s.mutate(context.Background(), id, func(j *download.Job) error {
		j.Status = download.StatusError
		j.Error = cause.Error()
		j.Progress = 0
		j.FilePath = ""
		j.FileSize = 0
		j.Subtitles = nil
		return nil
	})
	if err != nil {
		s.logger.Printf("download %s: cannot record failure: %v", id, err)
	}
}

func parseInfoFile(data []byte) (title, duration string, err error) {
	var info struct {
		Title          string  `json:"title"`
		DurationString string  `json:"duration_string"`
		Duration       float64 `json:"duration"`
	}
	if err := json.Unmarshal(data, &info); err != nil {
		return "", "", err
	}
	duration = info.DurationString
	if duration == "" && info.Duration > 0 {
		duration = strconv.FormatFloat(info.Duration, 'f', -1, 64)
	}
	return info.Title, duration, nil
}

// runRegistry serializes per-job updates and tracks in-flight pipelines so
// Resume never starts a second retrieval for the same job.
type runRegistry struct {
	mu      sync.Mutex
	locks   map[string]*sync.Mutex
	running map[string]struct{}
}

func newRunRegistry() *runRegistry {
	return &runRegistry{
		locks:   make(map[string]*sync.Mutex),
		running: make(map[string]struct{}),
	}
}

func (r *runRegistry) lock(id string) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()
	lock, ok := r.locks[id]
	if !ok {
		lock = &sync.Mutex{}
		r.locks[id] = lock
	}
	return lock
}

func (r *runRegistry) tryStart(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.running[id]; ok {
		return false
	}
	r.running[id] = struct{}{}
	return true
}

func (r *runRegistry) finish(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.running, id)
}

func (r *runRegistry) isRunning(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.running[id]
	return ok
}
