package handler

import (
	"net/http"
	"time"

	contentdomain "fambook-go/internal/domain/content"
	"fambook-go/internal/transport/httpserver/middleware"
	"github.com/go-chi/chi/v5"
)

type createMemoryRequest struct {
	AlbumID *string `json:"albumId" validate:"omitempty,uuid"`
	PostID  *string `json:"postId" validate:"omitempty,uuid"`
}

type memoryResponse struct {
	ID        string    `json:"id"`
	AlbumID   *string   `json:"albumId,omitempty"`
	PostID    *string   `json:"postId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

func (h *Handlers) CreateMemory(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid token")
		return
	}

	var req createMemoryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeValidationErrors(w, err)
		return
	}

	memory, err := h.Content.CreateMemory(r.Context(), user.ID, req.AlbumID, req.PostID)
	if err != nil {
		h.writeContentError(w, "content.memories.create", err, user.ID)
		return
	}

	writeData(w, http.StatusCreated, "saved to memories", toMemoryResponse(memory))
}

func (h *Handlers) ListMemories(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid token")
		return
	}

	memories, err := h.Content.ListMemories(r.Context(), user.ID)
	if err != nil {
		h.writeContentError(w, "content.memories.list", err, user.ID)
		return
	}

	responses := make([]memoryResponse, 0, len(memories))
	for i := range memories {
		responses = append(responses, toMemoryResponse(&memories[i]))
	}
	writeData(w, http.StatusOK, "memories", responses)
}

func (h *Handlers) DeleteMemory(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid token")
		return
	}
	memoryID := chi.URLParam(r, "id")

	if err := h.Content.DeleteMemory(r.Context(), user.ID, memoryID); err != nil {
		h.writeContentError(w, "content.memories.delete", err, user.ID)
		return
	}

	writeMessage(w, http.StatusOK, "memory removed")
}

func toMemoryResponse(memory *contentdomain.Memory) memoryResponse {
	return memoryResponse{
		ID:        memory.ID,
		AlbumID:   memory.AlbumID,
		PostID:    memory.PostID,
		CreatedAt: memory.CreatedAt,
	}
}
