package handler

import (
	"errors"
	"net/http"
	"time"

	contentdomain "fambook-go/internal/domain/content"
	"fambook-go/internal/transport/httpserver/middleware"
	"github.com/go-chi/chi/v5"
)

const multipartMemoryLimit = 32 << 20

type commentRequest struct {
	Text string `json:"text" validate:"required,min=1,max=1000"`
}

type postResponse struct {
	ID        string          `json:"id"`
	FamilyID  string          `json:"familyId"`
	UserID    string          `json:"userId"`
	Text      string          `json:"text"`
	Media     []mediaResponse `json:"media"`
	CreatedAt time.Time       `json:"createdAt"`
}

type mediaResponse struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	URL       string    `json:"url"`
	Caption   *string   `json:"caption,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

type feedPostResponse struct {
	ID           string          `json:"id"`
	FamilyID     string          `json:"familyId"`
	UserID       string          `json:"userId"`
	Text         string          `json:"text"`
	AuthorName   string          `json:"authorName"`
	AuthorAvatar *string         `json:"authorAvatar,omitempty"`
	Media        []mediaResponse `json:"media"`
	LikeCount    int64           `json:"likeCount"`
	CommentCount int64           `json:"commentCount"`
	IsLiked      bool            `json:"isLiked"`
	IsInMemory   bool            `json:"isInMemory"`
	CreatedAt    time.Time       `json:"createdAt"`
}

type commentResponse struct {
	ID           string    `json:"id"`
	PostID       string    `json:"postId"`
	UserID       string    `json:"userId"`
	Text         string    `json:"text"`
	AuthorName   string    `json:"authorName,omitempty"`
	AuthorAvatar *string   `json:"authorAvatar,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (h *Handlers) Feed(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid token")
		return
	}

	query := r.URL.Query()
	page, limit := parsePagination(query.Get("page"), query.Get("limit"))

	feed, err := h.Content.Feed(r.Context(), user.ID, contentdomain.FeedQuery{
		FamilyID:  query.Get("familyId"),
		Search:    query.Get("search"),
		Filter:    query.Get("filter"),
		SortOrder: query.Get("sort"),
		Page:      page,
		Limit:     limit,
	})
	if err != nil {
		h.writeContentError(w, "content.feed", err, user.ID)
		return
	}

	responses := make([]feedPostResponse, 0, len(feed))
	for i := range feed {
		responses = append(responses, toFeedPostResponse(&feed[i]))
	}
	writeData(w, http.StatusOK, "feed", responses)
}

func (h *Handlers) CreatePost(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid token")
		return
	}

	if err := r.ParseMultipartForm(multipartMemoryLimit); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	familyID := r.FormValue("familyId")
	if familyID == "" {
		writeError(w, http.StatusBadRequest, "familyId is required")
		return
	}
	text := r.FormValue("text")

	files, closeFiles, err := openUploads(r, "files")
	if err != nil {
		writeError(w, http.StatusBadRequest, "could not read uploaded files")
		return
	}
	defer closeFiles()

	post, media, err := h.Content.CreatePost(r.Context(), user.ID, familyID, text, files)
	if err != nil {
		h.writeContentError(w, "content.posts.create", err, user.ID)
		return
	}

	writeData(w, http.StatusCreated, "post created", toPostResponse(post, media))
}

func (h *Handlers) GetPost(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid token")
		return
	}
	postID := chi.URLParam(r, "id")

	post, err := h.Content.GetPost(r.Context(), user.ID, postID)
	if err != nil {
		h.writeContentError(w, "content.posts.get", err, user.ID)
		return
	}

	writeData(w, http.StatusOK, "post", toFeedPostResponse(post))
}

func (h *Handlers) DeletePost(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid token")
		return
	}
	postID := chi.URLParam(r, "id")

	if err := h.Content.DeletePost(r.Context(), user.ID, postID); err != nil {
		h.writeContentError(w, "content.posts.delete", err, user.ID)
		return
	}

	writeMessage(w, http.StatusOK, "post deleted")
}

func (h *Handlers) ToggleLike(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid token")
		return
	}
	postID := chi.URLParam(r, "id")

	liked, err := h.Content.ToggleLike(r.Context(), user.ID, user.FullName, postID)
	if err != nil {
		h.writeContentError(w, "content.likes.toggle", err, user.ID)
		return
	}

	message := "post unliked"
	if liked {
		message = "post liked"
	}
	writeData(w, http.StatusOK, message, map[string]bool{"liked": liked})
}

func (h *Handlers) ListLikes(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid token")
		return
	}
	postID := chi.URLParam(r, "id")

	likes, err := h.Content.ListLikes(r.Context(), user.ID, postID)
	if err != nil {
		h.writeContentError(w, "content.likes.list", err, user.ID)
		return
	}

	writeData(w, http.StatusOK, "likes", likes)
}

func (h *Handlers) AddComment(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid token")
		return
	}
	postID := chi.URLParam(r, "id")

	var req commentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeValidationErrors(w, err)
		return
	}

	comment, err := h.Content.AddComment(r.Context(), user.ID, user.FullName, postID, req.Text)
	if err != nil {
		h.writeContentError(w, "content.comments.add", err, user.ID)
		return
	}

	writeData(w, http.StatusCreated, "comment added", toCommentResponse(comment))
}

func (h *Handlers) ListComments(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid token")
		return
	}
	postID := chi.URLParam(r, "id")
	page, limit := parsePagination(r.URL.Query().Get("page"), r.URL.Query().Get("limit"))

	comments, err := h.Content.ListComments(r.Context(), user.ID, postID, page, limit)
	if err != nil {
		h.writeContentError(w, "content.comments.list", err, user.ID)
		return
	}

	responses := make([]commentResponse, 0, len(comments))
	for i := range comments {
		view := &comments[i]
		resp := toCommentResponse(&view.Comment)
		resp.AuthorName = view.AuthorName
		resp.AuthorAvatar = view.AuthorAvatar
		responses = append(responses, resp)
	}
	writeData(w, http.StatusOK, "comments", responses)
}

func (h *Handlers) UpdateComment(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid token")
		return
	}
	commentID := chi.URLParam(r, "id")

	var req commentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeValidationErrors(w, err)
		return
	}

	comment, err := h.Content.UpdateComment(r.Context(), user.ID, commentID, req.Text)
	if err != nil {
		h.writeContentError(w, "content.comments.update", err, user.ID)
		return
	}

	writeData(w, http.StatusOK, "comment updated", toCommentResponse(comment))
}

func (h *Handlers) DeleteComment(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid token")
		return
	}
	commentID := chi.URLParam(r, "id")

	if err := h.Content.DeleteComment(r.Context(), user.ID, commentID); err != nil {
		h.writeContentError(w, "content.comments.delete", err, user.ID)
		return
	}

	writeMessage(w, http.StatusOK, "comment deleted")
}

// openUploads turns the named multipart file headers into upload descriptors
// backed by open readers. The returned closer releases all of them.
func openUploads(r *http.Request, field string) ([]contentdomain.UploadFile, func(), error) {
	if r.MultipartForm == nil {
		return nil, func() {}, nil
	}
	headers := r.MultipartForm.File[field]

	files := make([]contentdomain.UploadFile, 0, len(headers))
	closers := make([]func() error, 0, len(headers))
	closeAll := func() {
		for _, close := range closers {
			_ = close()
		}
	}

	for _, header := range headers {
		file, err := header.Open()
		if err != nil {
			closeAll()
			return nil, func() {}, err
		}
		closers = append(closers, file.Close)
		files = append(files, contentdomain.UploadFile{
			Name:        header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Size:        header.Size,
			Body:        file,
		})
	}
	return files, closeAll, nil
}

func (h *Handlers) writeContentError(w http.ResponseWriter, op string, err error, userID string) {
	switch {
	case errors.Is(err, contentdomain.ErrPostNotFound):
		h.log.BusinessError(op+": post not found", err, "user_id", userID)
		writeError(w, http.StatusNotFound, "post not found")
	case errors.Is(err, contentdomain.ErrAlbumNotFound):
		h.log.BusinessError(op+": album not found", err, "user_id", userID)
		writeError(w, http.StatusNotFound, "album not found")
	case errors.Is(err, contentdomain.ErrMediaNotFound):
		h.log.BusinessError(op+": media not found", err, "user_id", userID)
		writeError(w, http.StatusNotFound, "media not found")
	case errors.Is(err, contentdomain.ErrCommentNotFound):
		h.log.BusinessError(op+": comment not found", err, "user_id", userID)
		writeError(w, http.StatusNotFound, "comment not found")
	case errors.Is(err, contentdomain.ErrMemoryNotFound):
		h.log.BusinessError(op+": memory not found", err, "user_id", userID)
		writeError(w, http.StatusNotFound, "memory not found")
	case errors.Is(err, contentdomain.ErrNotAuthor), errors.Is(err, contentdomain.ErrNotOwner):
		h.log.BusinessError(op+": forbidden", err, "user_id", userID)
		writeError(w, http.StatusForbidden, "you cannot modify this")
	case errors.Is(err, contentdomain.ErrMediaLimitExceeded):
		h.log.BusinessError(op+": media limit exceeded", err, "user_id", userID)
		writeError(w, http.StatusConflict, "album media limit exceeded")
	case errors.Is(err, contentdomain.ErrMemoryExists):
		h.log.BusinessError(op+": memory exists", err, "user_id", userID)
		writeError(w, http.StatusConflict, "already saved to memories")
	case errors.Is(err, contentdomain.ErrUnsupportedMediaType),
		errors.Is(err, contentdomain.ErrFileTooLarge),
		errors.Is(err, contentdomain.ErrMemoryTargetInvalid),
		errors.Is(err, contentdomain.ErrInvalidInput):
		h.log.BusinessError(op+": invalid input", err, "user_id", userID)
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, contentdomain.ErrStorageUpload):
		h.log.InternalError(op+": storage upload failed", err, "user_id", userID)
		writeError(w, http.StatusBadGateway, "media upload failed")
	default:
		h.writeFamilyError(w, op, err, userID, "")
	}
}

func toPostResponse(post *contentdomain.Post, media []contentdomain.Media) postResponse {
	resp := postResponse{
		ID:        post.ID,
		FamilyID:  post.FamilyID,
		UserID:    post.UserID,
		Text:      post.Text,
		Media:     make([]mediaResponse, 0, len(media)),
		CreatedAt: post.CreatedAt,
	}
	for i := range media {
		resp.Media = append(resp.Media, toMediaResponse(&media[i]))
	}
	return resp
}

func toFeedPostResponse(post *contentdomain.FeedPost) feedPostResponse {
	media := make([]mediaResponse, 0, len(post.Media))
	for i := range post.Media {
		media = append(media, toMediaResponse(&post.Media[i]))
	}
	return feedPostResponse{
		ID:           post.Post.ID,
		FamilyID:     post.Post.FamilyID,
		UserID:       post.Post.UserID,
		Text:         post.Post.Text,
		AuthorName:   post.AuthorName,
		AuthorAvatar: post.AuthorAvatar,
		Media:        media,
		LikeCount:    post.LikeCount,
		CommentCount: post.CommentCount,
		IsLiked:      post.IsLiked,
		IsInMemory:   post.IsInMemory,
		CreatedAt:    post.Post.CreatedAt,
	}
}

func toMediaResponse(media *contentdomain.Media) mediaResponse {
	return mediaResponse{
		ID:        media.ID,
		Type:      media.Type,
		URL:       media.URL,
		Caption:   media.Caption,
		CreatedAt: media.CreatedAt,
	}
}

func toCommentResponse(comment *contentdomain.Comment) commentResponse {
	return commentResponse{
		ID:        comment.ID,
		PostID:    comment.PostID,
		UserID:    comment.UserID,
		Text:      comment.Content,
		CreatedAt: comment.CreatedAt,
		UpdatedAt: comment.UpdatedAt,
	}
}
