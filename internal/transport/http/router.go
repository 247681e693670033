package http

import (
	"github.com/gorilla/mux"
)

// NewRouter configures HTTP routes for the download queue control surface.
func NewRouter(handler *Handler) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/api/downloads", handler.Submit).Methods("POST")
	r.HandleFunc("/api/downloads", handler.ListDownloads).Methods("GET")
	r.HandleFunc("/api/downloads/completed", handler.ClearCompleted).Methods("DELETE")
	r.HandleFunc("/api/downloads/{id}", handler.GetDownload).Methods("GET")
	r.HandleFunc("/api/downloads/{id}", handler.RemoveDownload).Methods("DELETE")
	r.HandleFunc("/api/downloads/{id}/pause", handler.PauseDownload).Methods("POST")
	r.HandleFunc("/api/downloads/{id}/resume", handler.ResumeDownload).Methods("POST")
	r.HandleFunc("/api/video-info", handler.VideoInfo).Methods("POST")
	r.HandleFunc("/api/files/{id}/{filename}", handler.ServeArtifact).Methods("GET")
	r.HandleFunc("/api/health", handler.Health).Methods("GET")
	return r
}
