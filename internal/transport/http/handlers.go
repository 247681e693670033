package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"path"
	"strings"

	"github.com/gorilla/mux"

	"vidgrab/internal/domain/download"
)

type downloadUseCases interface {
	Submit(ctx context.Context, url, quality string, format download.Format) (*download.Job, error)
	Get(ctx context.Context, id string) (*download.Job, error)
	List(ctx context.Context) ([]*download.Job, error)
	Pause(ctx context.Context, id string) error
	Resume(ctx context.Context, id string) error
	Remove(ctx context.Context, id string) error
	ClearCompleted(ctx context.Context) (int, error)
	Info(ctx context.Context, url string) (download.VideoInfo, error)
}

type artifactResolver interface {
	Resolve(key string) (string, error)
	ResolveURL(key string) string
}

type Handler struct {
	downloads downloadUseCases
	artifacts artifactResolver
}

// NewHandler wires HTTP handlers with the download use cases.
func NewHandler(downloads downloadUseCases, artifacts artifactResolver) *Handler {
	return &Handler{downloads: downloads, artifacts: artifacts}
}

type submitRequest struct {
	URL     string          `json:"url"`
	Quality string          `json:"quality"`
	Format  download.Format `json:"format"`
}

type jobPayload struct {
	*download.Job
	FileURL string `json:"file_url,omitempty"`
}

func (h *Handler) payload(job *download.Job) jobPayload {
	out := jobPayload{Job: job}
	if job.FilePath != "" {
		out.FileURL = h.artifacts.ResolveURL(job.FilePath)
	}
	return out
}

// Submit handles POST /api/downloads.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	job, err := h.downloads.Submit(r.Context(), req.URL, req.Quality, req.Format)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	_ = json.NewEncoder(w).Encode(h.payload(job))
}

// ListDownloads handles GET /api/downloads.
func (h *Handler) ListDownloads(w http.ResponseWriter, r *http.Request) {
	jobs, err := h.downloads.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	resp := make([]jobPayload, 0, len(jobs))
	for _, job := range jobs {
		resp = append(resp, h.payload(job))
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

// GetDownload handles GET /api/downloads/{id}.
func (h *Handler) GetDownload(w http.ResponseWriter, r *http.Request) {
	job, err := h.downloads.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(h.payload(job))
}

// PauseDownload handles POST /api/downloads/{id}/pause.
func (h *Handler) PauseDownload(w http.ResponseWriter, r *http.Request) {
	h.control(w, r, h.downloads.Pause)
}

// ResumeDownload handles POST /api/downloads/{id}/resume.
func (h *Handler) ResumeDownload(w http.ResponseWriter, r *http.Request) {
	h.control(w, r, h.downloads.Resume)
}

func (h *Handler) control(w http.ResponseWriter, r *http.Request, op func(context.Context, string) error) {
	id := mux.Vars(r)["id"]
	if err := op(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	job, err := h.downloads.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(h.payload(job))
}

// RemoveDownload handles DELETE /api/downloads/{id}.
func (h *Handler) RemoveDownload(w http.ResponseWriter, r *http.Request) {
	if err := h.downloads.Remove(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ClearCompleted handles DELETE /api/downloads/completed.
func (h *Handler) ClearCompleted(w http.ResponseWriter, r *http.Request) {
	removed, err := h.downloads.ClearCompleted(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]int{"removed": removed})
}

// VideoInfo handles POST /api/video-info.
func (h *Handler) VideoInfo(w http.ResponseWriter, r *http.Request) {
	var req struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	info, err := h.downloads.Info(r.Context(), req.URL)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(info)
}

// ServeArtifact handles GET /api/files/{id}/{filename} with Range support.
func (h *Handler) ServeArtifact(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	key := vars["id"] + "/" + vars["filename"]

	full, err := h.artifacts.Resolve(key)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	streamFile(w, r, full, contentTypeFor(vars["filename"]))
}

// Health handles GET /api/health.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func contentTypeFor(filename string) string {
	switch strings.ToLower(path.Ext(filename)) {
	case ".mp4":
		return "video/mp4"
	case ".mp3":
		return "audio/mpeg"
	case ".vtt":
		return "text/vtt"
	case ".srt":
		return "text/srt"
	default:
		return "application/octet-stream"
	}
}

func writeError(w http.ResponseWriter, err error) {
	var validation *download.ValidationError
	switch {
	case errors.As(err, &validation):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, download.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, download.ErrNotDownloading), errors.Is(err, download.ErrNotPaused):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
