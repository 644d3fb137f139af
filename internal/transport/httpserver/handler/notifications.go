package handler

import (
	"errors"
	"net/http"
	"time"

	notifdomain "fambook-go/internal/domain/notification"
	"fambook-go/internal/transport/httpserver/middleware"
	"github.com/go-chi/chi/v5"
)

type notificationResponse struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Content   string    `json:"content"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"createdAt"`
}

func (h *Handlers) ListNotifications(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid token")
		return
	}
	page, limit := parsePagination(r.URL.Query().Get("page"), r.URL.Query().Get("limit"))

	rows, err := h.Notifications.List(r.Context(), user.ID, page, limit)
	if err != nil {
		h.log.InternalError("notifications.list: failed", err, "user_id", user.ID)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	responses := make([]notificationResponse, 0, len(rows))
	for i := range rows {
		responses = append(responses, notificationResponse{
			ID:        rows[i].ID,
			Type:      rows[i].Type,
			Content:   rows[i].Content,
			Read:      rows[i].Read,
			CreatedAt: rows[i].CreatedAt,
		})
	}
	writeData(w, http.StatusOK, "notifications", responses)
}

func (h *Handlers) UnreadNotificationCount(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid token")
		return
	}

	count, err := h.Notifications.UnreadCount(r.Context(), user.ID)
	if err != nil {
		h.log.InternalError("notifications.unread_count: failed", err, "user_id", user.ID)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeData(w, http.StatusOK, "unread count", map[string]int64{"count": count})
}

func (h *Handlers) MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid token")
		return
	}
	id := chi.URLParam(r, "id")

	if err := h.Notifications.MarkRead(r.Context(), user.ID, id); err != nil {
		switch {
		case errors.Is(err, notifdomain.ErrNotificationNotFound):
			h.log.BusinessError("notifications.read: not found", err, "user_id", user.ID, "notification_id", id)
			writeError(w, http.StatusNotFound, "notification not found")
		case errors.Is(err, notifdomain.ErrNotRecipient):
			h.log.BusinessError("notifications.read: not recipient", err, "user_id", user.ID, "notification_id", id)
			writeError(w, http.StatusForbidden, "not your notification")
		default:
			h.log.InternalError("notifications.read: failed", err, "user_id", user.ID, "notification_id", id)
			writeError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}

	writeMessage(w, http.StatusOK, "notification marked read")
}

func (h *Handlers) MarkAllNotificationsRead(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid token")
		return
	}

	if err := h.Notifications.MarkAllRead(r.Context(), user.ID); err != nil {
		h.log.InternalError("notifications.read_all: failed", err, "user_id", user.ID)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeMessage(w, http.StatusOK, "all notifications marked read")
}
