package handler

import (
	"net/http"
	"time"

	contentdomain "fambook-go/internal/domain/content"
	"fambook-go/internal/transport/httpserver/middleware"
	"github.com/go-chi/chi/v5"
)

type createAlbumRequest struct {
	FamilyID    string  `json:"familyId" validate:"required,uuid"`
	Name        string  `json:"name" validate:"required,min=2,max=100"`
	Description *string `json:"description" validate:"omitempty,max=500"`
	MediaLimit  int     `json:"mediaLimit" validate:"omitempty,min=1,max=500"`
}

type updateAlbumRequest struct {
	Name          *string `json:"name" validate:"omitempty,min=2,max=100"`
	Description   *string `json:"description" validate:"omitempty,max=500"`
	CoverImageURL *string `json:"coverImageUrl" validate:"omitempty,url"`
	MediaLimit    *int    `json:"mediaLimit" validate:"omitempty,min=1,max=500"`
}

type captionRequest struct {
	Caption *string `json:"caption" validate:"omitempty,max=500"`
}

type albumResponse struct {
	ID            string    `json:"id"`
	FamilyID      string    `json:"familyId"`
	Name          string    `json:"name"`
	Description   *string   `json:"description,omitempty"`
	MediaLimit    int       `json:"mediaLimit"`
	CoverImageURL *string   `json:"coverImageUrl,omitempty"`
	CreatedByID   string    `json:"createdById"`
	CreatedAt     time.Time `json:"createdAt"`
}

type albumDetailResponse struct {
	Album albumResponse   `json:"album"`
	Media []mediaResponse `json:"media"`
}

func (h *Handlers) CreateAlbum(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid token")
		return
	}

	var req createAlbumRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeValidationErrors(w, err)
		return
	}

	album, err := h.Content.CreateAlbum(r.Context(), user.ID, user.FullName, req.FamilyID, req.Name, req.Description, req.MediaLimit)
	if err != nil {
		h.writeContentError(w, "content.albums.create", err, user.ID)
		return
	}

	writeData(w, http.StatusCreated, "album created", toAlbumResponse(album))
}

func (h *Handlers) ListAlbums(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid token")
		return
	}
	familyID := r.URL.Query().Get("familyId")
	if familyID == "" {
		writeError(w, http.StatusBadRequest, "familyId query parameter is required")
		return
	}

	albums, err := h.Content.ListAlbums(r.Context(), user.ID, familyID)
	if err != nil {
		h.writeContentError(w, "content.albums.list", err, user.ID)
		return
	}

	responses := make([]albumResponse, 0, len(albums))
	for i := range albums {
		responses = append(responses, toAlbumResponse(&albums[i]))
	}
	writeData(w, http.StatusOK, "albums", responses)
}

func (h *Handlers) GetAlbum(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid token")
		return
	}
	albumID := chi.URLParam(r, "id")

	album, media, err := h.Content.GetAlbum(r.Context(), user.ID, albumID)
	if err != nil {
		h.writeContentError(w, "content.albums.get", err, user.ID)
		return
	}

	resp := albumDetailResponse{
		Album: toAlbumResponse(album),
		Media: make([]mediaResponse, 0, len(media)),
	}
	for i := range media {
		resp.Media = append(resp.Media, toMediaResponse(&media[i]))
	}
	writeData(w, http.StatusOK, "album", resp)
}

func (h *Handlers) UpdateAlbum(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid token")
		return
	}
	albumID := chi.URLParam(r, "id")

	var req updateAlbumRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeValidationErrors(w, err)
		return
	}

	album, err := h.Content.UpdateAlbum(r.Context(), user.ID, albumID, contentdomain.AlbumUpdate{
		Name:          trimPtr(req.Name),
		Description:   req.Description,
		CoverImageURL: req.CoverImageURL,
		MediaLimit:    req.MediaLimit,
	})
	if err != nil {
		h.writeContentError(w, "content.albums.update", err, user.ID)
		return
	}

	writeData(w, http.StatusOK, "album updated", toAlbumResponse(album))
}

func (h *Handlers) DeleteAlbum(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid token")
		return
	}
	albumID := chi.URLParam(r, "id")

	if err := h.Content.DeleteAlbum(r.Context(), user.ID, albumID); err != nil {
		h.writeContentError(w, "content.albums.delete", err, user.ID)
		return
	}

	writeMessage(w, http.StatusOK, "album deleted")
}

func (h *Handlers) UploadAlbumMedia(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid token")
		return
	}
	albumID := chi.URLParam(r, "id")

	if err := r.ParseMultipartForm(multipartMemoryLimit); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	files, closeFiles, err := openUploads(r, "files")
	if err != nil {
		writeError(w, http.StatusBadRequest, "could not read uploaded files")
		return
	}
	defer closeFiles()

	media, err := h.Content.UploadAlbumMedia(r.Context(), user.ID, user.FullName, albumID, files)
	if err != nil {
		h.writeContentError(w, "content.albums.upload", err, user.ID)
		return
	}

	responses := make([]mediaResponse, 0, len(media))
	for i := range media {
		responses = append(responses, toMediaResponse(&media[i]))
	}
	writeData(w, http.StatusCreated, "media uploaded", responses)
}

func (h *Handlers) UpdateMediaCaption(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid token")
		return
	}
	albumID := chi.URLParam(r, "id")
	mediaID := chi.URLParam(r, "mediaId")

	var req captionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeValidationErrors(w, err)
		return
	}

	media, err := h.Content.UpdateMediaCaption(r.Context(), user.ID, albumID, mediaID, req.Caption)
	if err != nil {
		h.writeContentError(w, "content.media.caption", err, user.ID)
		return
	}

	writeData(w, http.StatusOK, "caption updated", toMediaResponse(media))
}

func (h *Handlers) DeleteAlbumMedia(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid token")
		return
	}
	albumID := chi.URLParam(r, "id")
	mediaID := chi.URLParam(r, "mediaId")

	if err := h.Content.DeleteMedia(r.Context(), user.ID, albumID, mediaID); err != nil {
		h.writeContentError(w, "content.media.delete", err, user.ID)
		return
	}

	writeMessage(w, http.StatusOK, "media deleted")
}

func toAlbumResponse(album *contentdomain.Album) albumResponse {
	return albumResponse{
		ID:            album.ID,
		FamilyID:      album.FamilyID,
		Name:          album.Name,
		Description:   album.Description,
		MediaLimit:    album.MediaLimit,
		CoverImageURL: album.CoverImageURL,
		CreatedByID:   album.CreatedByID,
		CreatedAt:     album.CreatedAt,
	}
}
