package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/quantmind-br/offsync/internal/domain"
	"github.com/quantmind-br/offsync/internal/manifest"
)

// CapturedAtHeader carries the capture time of a served resource
const CapturedAtHeader = "X-Offsync-Captured-At"

func (s *Server) manifestList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.defs.List(s.base(r)+ManifestsPath))
}

func (s *Server) manifestDocument(w http.ResponseWriter, r *http.Request) {
	def, err := s.defs.Find(chi.URLParam(r, "name"))
	if err != nil {
		writeError(w, statusFromError(err), err.Error())
		return
	}

	switch r.URL.Query().Get("format") {
	case "", "json":
		writeJSON(w, http.StatusOK, def.Manifest())
	case "gears":
		writeJSON(w, http.StatusOK, manifest.RenderGears(def.Manifest()))
	case "html5":
		writeCacheManifest(w, def)
	default:
		writeError(w, http.StatusBadRequest, "unknown format "+strconv.Quote(r.URL.Query().Get("format")))
	}
}

func (s *Server) cacheManifest(w http.ResponseWriter, r *http.Request) {
	def, err := s.defs.Find(chi.URLParam(r, "name"))
	if err != nil {
		writeError(w, statusFromError(err), err.Error())
		return
	}
	writeCacheManifest(w, def)
}

func (s *Server) cachedResource(w http.ResponseWriter, r *http.Request) {
	target := r.URL.Query().Get("url")
	if target == "" {
		writeError(w, http.StatusBadRequest, "missing url parameter")
		return
	}

	res, err := s.reader.Lookup(r.Context(), target)
	if err != nil {
		status := statusFromError(err)
		if status == http.StatusInternalServerError {
			s.logger.Error().Err(err).Str("url", target).Msg("Lookup failed")
		}
		writeError(w, status, err.Error())
		return
	}

	contentType := res.ContentType
	if contentType == "" {
		contentType = http.DetectContentType(res.Body)
	}
	w.Header().Set("Content-Type", contentType)
	if !res.CapturedAt.IsZero() {
		w.Header().Set(CapturedAtHeader, res.CapturedAt.UTC().Format(time.RFC3339))
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(res.Body)
}

func writeCacheManifest(w http.ResponseWriter, def *manifest.Definition) {
	w.Header().Set("Content-Type", manifest.ContentTypeCacheManifest)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(manifest.RenderHTML5(def.Manifest())))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", manifest.ContentTypeJSON)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

var errorStatusMap = map[error]int{
	manifest.ErrUnknownManifest: http.StatusNotFound,
	domain.ErrCacheMiss:         http.StatusNotFound,
	domain.ErrNotFound:          http.StatusNotFound,
	domain.ErrInvalidURL:        http.StatusBadRequest,
	domain.ErrPermissionDenied:  http.StatusForbidden,
}

func statusFromError(err error) int {
	for target, status := range errorStatusMap {
		if errors.Is(err, target) {
			return status
		}
	}
	return http.StatusInternalServerError
}
