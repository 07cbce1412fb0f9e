package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/glyphica/iconsearch/core"
	"github.com/glyphica/iconsearch/search"
	"github.com/glyphica/iconsearch/vectorstore"
)

const defaultSearchLimit = 50

type searchRequest struct {
	Query          string             `json:"query,omitempty"`
	QueryEmbedding []float32          `json:"queryEmbedding,omitempty"`
	Filters        core.FilterOptions `json:"filters,omitempty"`
	Limit          int                `json:"limit,omitempty"`
	CollectionName string             `json:"collectionName,omitempty"`
}

type searchResponse struct {
	Success bool                `json:"success"`
	Results []core.SearchResult `json:"results,omitempty"`
	Mode    search.SearchMode   `json:"mode,omitempty"`
	Error   string              `json:"error,omitempty"`
}

type relayResponse struct {
	Success bool                    `json:"success"`
	Results []vectorstore.SearchHit `json:"results"`
	Error   string                  `json:"error,omitempty"`
}

type statusResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// handleSearch answers both shapes of search: text queries go through
// the full orchestration chain, while requests carrying a precomputed
// queryEmbedding are relayed straight to the vector store and return
// raw hits.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, statusResponse{Error: "invalid request body: " + err.Error()})
		return
	}
	limit := req.Limit
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	if len(req.QueryEmbedding) > 0 {
		filters := vectorstore.Filters{}
		if len(req.Filters.Libraries) > 0 {
			filters[vectorstore.FieldLibrary] = req.Filters.Libraries
		}
		if len(req.Filters.Categories) > 0 {
			filters[vectorstore.FieldCategory] = req.Filters.Categories
		}
		if len(req.Filters.Tags) > 0 {
			filters[vectorstore.FieldTags] = req.Filters.Tags
		}

		hits, err := s.service.SearchByEmbedding(r.Context(), req.QueryEmbedding, limit, filters)
		if err != nil {
			s.logger.Warn("relayed embedding search failed", "error", err)
			writeJSON(w, http.StatusOK, relayResponse{Error: err.Error()})
			return
		}
		if hits == nil {
			hits = []vectorstore.SearchHit{}
		}
		writeJSON(w, http.StatusOK, relayResponse{Success: true, Results: hits})
		return
	}

	results, mode := s.service.SearchIcons(r.Context(), req.Query, req.Filters, limit)
	writeJSON(w, http.StatusOK, searchResponse{Success: true, Results: results, Mode: mode})
}

func (s *Server) handleFilters(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.service.FilterOptions())
}

// handleVectorConfig accepts a pushed store configuration and switches
// the active backend, keeping server-side searches aligned with the
// client that pushed it.
func (s *Server) handleVectorConfig(w http.ResponseWriter, r *http.Request) {
	var config vectorstore.Config
	if err := json.NewDecoder(r.Body).Decode(&config); err != nil {
		writeJSON(w, http.StatusBadRequest, statusResponse{Error: "invalid request body: " + err.Error()})
		return
	}

	if err := s.service.SwitchVectorStore(r.Context(), config); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, vectorstore.ErrUnsupportedBackend) || errors.Is(err, vectorstore.ErrMissingConfig) {
			status = http.StatusBadRequest
		}
		writeJSON(w, status, statusResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{Success: true})
}

type tagRequest struct {
	ID     string `json:"id"`
	NewTag string `json:"newTag"`
}

func (s *Server) handleTags(w http.ResponseWriter, r *http.Request) {
	var req tagRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, statusResponse{Error: "invalid request body: " + err.Error()})
		return
	}

	err := s.service.UpdateIconTag(r.Context(), req.ID, req.NewTag)
	switch {
	case errors.Is(err, search.ErrIconNotFound):
		writeJSON(w, http.StatusNotFound, statusResponse{Error: err.Error()})
	case errors.Is(err, search.ErrEmptyTag):
		writeJSON(w, http.StatusBadRequest, statusResponse{Error: err.Error()})
	case err != nil:
		writeJSON(w, http.StatusInternalServerError, statusResponse{Error: err.Error()})
	default:
		writeJSON(w, http.StatusOK, statusResponse{Success: true})
	}
}

type embeddingsRequest struct {
	Items []search.ReembedItem `json:"items"`
}

func (s *Server) handleEmbeddings(w http.ResponseWriter, r *http.Request) {
	var req embeddingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, statusResponse{Error: "invalid request body: " + err.Error()})
		return
	}

	if err := s.service.ReembedIcons(r.Context(), req.Items); err != nil {
		writeJSON(w, http.StatusInternalServerError, statusResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{Success: true})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
