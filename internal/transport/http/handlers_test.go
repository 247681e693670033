package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"vidgrab/internal/domain/download"
)

type stubUseCases struct {
	job       *download.Job
	submitErr error
	pauseErr  error
	removed   []string
}

func (s *stubUseCases) Submit(_ context.Context, url, quality string, format download.Format) (*download.Job, error) {
	if s.submitErr != nil {
		return nil, s.submitErr
	}
	return &download.Job{ID: "j1", URL: url, Quality: quality, Format: format, Status: download.StatusPending}, nil
}

func (s *stubUseCases) Get(_ context.Context, id string) (*download.Job, error) {
	if s.job == nil || s.job.ID != id {
		return nil, download.ErrNotFound
	}
	return s.job, nil
}

func (s *stubUseCases) List(_ context.Context) ([]*download.Job, error) {
	if s.job == nil {
		return nil, nil
	}
	return []*download.Job{s.job}, nil
}

func (s *stubUseCases) Pause(_ context.Context, _ string) error  { return s.pauseErr }
func (s *stubUseCases) Resume(_ context.Context, _ string) error { return nil }

func (s *stubUseCases) Remove(_ context.Context, id string) error {
	s.removed = append(s.removed, id)
	return nil
}

func (s *stubUseCases) ClearCompleted(_ context.Context) (int, error) { return 2, nil }

func (s *stubUseCases) Info(_ context.Context, _ string) (download.VideoInfo, error) {
	return download.VideoInfo{Title: "Demo"}, nil
}

type stubResolver struct{}

func (stubResolver) Resolve(key string) (string, error) { return "/nonexistent/" + key, nil }
func (stubResolver) ResolveURL(key string) string       { return "http://localhost:8080/api/files/" + key }

func newTestRouter(uc *stubUseCases) http.Handler {
	return NewRouter(NewHandler(uc, stubResolver{}))
}

func TestSubmit_ReturnsAccepted(t *testing.T) {
	router := newTestRouter(&stubUseCases{})
	req := httptest.NewRequest(http.MethodPost, "/api/downloads",
		strings.NewReader(`{"url":"https://example.com/v","quality":"720p","format":"video"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", rec.Code, rec.Body.String())
	}
	var payload struct {
		ID     string          `json:"id"`
		Status download.Status `json:"status"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload.ID != "j1" || payload.Status != download.StatusPending {
		t.Fatalf("unexpected payload %+v", payload)
	}
}

func TestSubmit_ValidationErrorIsBadRequest(t *testing.T) {
	router := newTestRouter(&stubUseCases{submitErr: &download.ValidationError{Reason: "url must not be empty"}})
	req := httptest.NewRequest(http.MethodPost, "/api/downloads", strings.NewReader(`{"url":""}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestGetDownload_UnknownIsNotFound(t *testing.T) {
	router := newTestRouter(&stubUseCases{})
	req := httptest.NewRequest(http.MethodGet, "/api/downloads/missing", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestGetDownload_IncludesFileURL(t *testing.T) {
	uc := &stubUseCases{job: &download.Job{ID: "j1", Status: download.StatusCompleted, FilePath: "j1/Demo.mp4"}}
	router := newTestRouter(uc)
	req := httptest.NewRequest(http.MethodGet, "/api/downloads/j1", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var payload struct {
		FileURL string `json:"file_url"`
	}
	_ = json.Unmarshal(rec.Body.Bytes(), &payload)
	if payload.FileURL != "http://localhost:8080/api/files/j1/Demo.mp4" {
		t.Fatalf("unexpected file url %q", payload.FileURL)
	}
}

func TestPause_ConflictOutsideDownloading(t *testing.T) {
	router := newTestRouter(&stubUseCases{pauseErr: download.ErrNotDownloading})
	req := httptest.NewRequest(http.MethodPost, "/api/downloads/j1/pause", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
}

func TestClearCompleted_ReportsCount(t *testing.T) {
	router := newTestRouter(&stubUseCases{})
	req := httptest.NewRequest(http.MethodDelete, "/api/downloads/completed", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var payload map[string]int
	_ = json.Unmarshal(rec.Body.Bytes(), &payload)
	if payload["removed"] != 2 {
		t.Fatalf("unexpected body %s", rec.Body.String())
	}
}

func TestRemove_ReturnsNoContent(t *testing.T) {
	uc := &stubUseCases{}
	router := newTestRouter(uc)
	req := httptest.NewRequest(http.MethodDelete, "/api/downloads/j1", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if len(uc.removed) != 1 || uc.removed[0] != "j1" {
		t.Fatalf("remove not forwarded: %v", uc.removed)
	}
}

func TestContentTypeFor(t *testing.T) {
	cases := map[string]string{
		"Demo.mp4":    "video/mp4",
		"Track.MP3":   "audio/mpeg",
		"Demo.en.vtt": "text/vtt",
		"Demo.es.srt": "text/srt",
		"notes.txt":   "application/octet-stream",
	}
	for name, want := range cases {
		if got := contentTypeFor(name); got != want {
			t.Fatalf("contentTypeFor(%q) = %q, want %q", name, got, want)
		}
	}
}
