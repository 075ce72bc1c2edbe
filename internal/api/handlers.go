package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/halvorsen/muninn/internal/apperr"
	"github.com/halvorsen/muninn/internal/store"
)

// Handler holds API route handlers.
type Handler struct {
	st *store.Store
}

// NewHandler creates a new Handler.
func NewHandler(st *store.Store) *Handler {
	return &Handler{st: st}
}

// ListMemories handles GET /api/memories.
//
//	@Summary		List memories, newest first
//	@Tags			memories
//	@Produce		json
//	@Param			project	query		string	false	"Filter by project partition"
//	@Param			limit	query		int		false	"Max results"
//	@Success		200		{object}	MemoryListResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/memories [get]
func (h *Handler) ListMemories(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	project := q.Get("project")
	limit, _ := strconv.Atoi(q.Get("limit"))

	memories, fails, err := h.st.List(r.Context(), project)
	if err != nil {
		if errors.Is(err, apperr.ErrInvalidProjectName) {
			writeJSON(w, http.StatusBadRequest, errorBody("invalid project name"))
			return
		}
		slog.Error("list memories failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	total := len(memories)
	if limit > 0 && limit < len(memories) {
		memories = memories[:limit]
	}
	resp := map[string]any{
		"memories": memories,
		"total":    total,
	}
	if len(fails) > 0 {
		resp["failed_files"] = toFailedFiles(fails)
	}
	writeJSON(w, http.StatusOK, resp)
}

// CreateMemory handles POST /api/memories.
//
//	@Summary		Store a new memory
//	@Tags			memories
//	@Accept			json
//	@Produce		json
//	@Param			body	body		AddMemoryRequest	true	"Memory to store"
//	@Success		201		{object}	MemoryDetail
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/memories [post]
func (h *Handler) CreateMemory(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 10<<20)
	var req AddMemoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.Content == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("content is required"))
		return
	}
	m, err := h.st.Add(r.Context(), store.AddParams{
		Content:  req.Content,
		Title:    req.Title,
		Category: req.Category,
		Project:  req.Project,
		Tags:     req.Tags,
		Priority: req.Priority,
		Status:   req.Status,
		Related:  req.Related,
	})
	if err != nil {
		if errors.Is(err, apperr.ErrInvalidProjectName) {
			writeJSON(w, http.StatusBadRequest, errorBody("invalid project name"))
			return
		}
		slog.Error("create memory failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

// GetMemory handles GET /api/memories/{id}.
//
//	@Summary		Get a single memory by id
//	@Tags			memories
//	@Produce		json
//	@Param			id	path		string	true	"Memory id"
//	@Success		200	{object}	MemoryDetail
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/memories/{id} [get]
func (h *Handler) GetMemory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	m, err := h.st.Get(r.Context(), id)
	if err != nil {
		slog.Error("get memory failed", slog.String("id", id), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	if m == nil {
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// UpdateMemory handles PUT /api/memories/{id}.
//
//	@Summary		Update fields of a memory
//	@Tags			memories
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string				true	"Memory id"
//	@Param			body	body		UpdateMemoryRequest	true	"Fields to change"
//	@Success		200		{object}	MemoryDetail
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/memories/{id} [put]
func (h *Handler) UpdateMemory(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 10<<20)
	id := chi.URLParam(r, "id")
	var req UpdateMemoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	m, err := h.st.Update(r.Context(), id, store.UpdateParams{
		Content:  req.Content,
		Category: req.Category,
		Project:  req.Project,
		Tags:     req.Tags,
		Priority: req.Priority,
		Status:   req.Status,
		Related:  req.Related,
	})
	if err != nil {
		if errors.Is(err, apperr.ErrInvalidProjectName) {
			writeJSON(w, http.StatusBadRequest, errorBody("invalid project name"))
			return
		}
		slog.Error("update memory failed", slog.String("id", id), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	if m == nil {
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// DeleteMemory handles DELETE /api/memories/{id}.
//
//	@Summary		Delete a memory
//	@Tags			memories
//	@Param			id	path	string	true	"Memory id"
//	@Success		204	"Memory deleted"
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/memories/{id} [delete]
func (h *Handler) DeleteMemory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	deleted, err := h.st.Delete(r.Context(), id)
	if err != nil {
		slog.Error("delete memory failed", slog.String("id", id), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	if !deleted {
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Search handles GET /api/search.
//
//	@Summary		Weighted search across memories
//	@Tags			search
//	@Produce		json
//	@Param			q		query		string	false	"Search query; empty lists recent memories"
//	@Param			project	query		string	false	"Restrict to a project partition"
//	@Param			limit	query		int		false	"Max results"
//	@Success		200		{object}	SearchResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := q.Get("q")
	project := q.Get("project")
	limit, _ := strconv.Atoi(q.Get("limit"))

	results, fails, err := h.st.Search(r.Context(), query, project)
	if err != nil {
		if errors.Is(err, apperr.ErrInvalidProjectName) {
			writeJSON(w, http.StatusBadRequest, errorBody("invalid project name"))
			return
		}
		slog.Error("search failed", slog.String("query", query), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	if limit > 0 && limit < len(results) {
		results = results[:limit]
	}
	resp := map[string]any{
		"results": results,
	}
	if len(fails) > 0 {
		resp["failed_files"] = toFailedFiles(fails)
	}
	writeJSON(w, http.StatusOK, resp)
}

// Stats handles GET /api/stats.
//
//	@Summary		Store totals and per-project counts
//	@Tags			stats
//	@Produce		json
//	@Success		200	{object}	StatsResponse
//	@Security		BearerAuth
//	@Router			/stats [get]
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.st.Stats(r.Context())
	if err != nil {
		slog.Error("stats failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
