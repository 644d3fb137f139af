package handler

import (
	"errors"
	"net/http"
	"time"

	familydomain "fambook-go/internal/domain/family"
	"fambook-go/internal/transport/httpserver/middleware"
	"github.com/go-chi/chi/v5"
)

type createFamilyRequest struct {
	Name        string  `json:"name" validate:"required,min=2,max=50"`
	Description *string `json:"description" validate:"omitempty,max=500"`
}

type joinFamilyRequest struct {
	Token string `json:"token" validate:"required"`
}

type familyResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	JoinToken   string    `json:"joinToken,omitempty"`
	CreatedByID string    `json:"createdById"`
	CreatedAt   time.Time `json:"createdAt"`
}

type memberResponse struct {
	MemberID string    `json:"memberId"`
	Role     string    `json:"role"`
	Status   string    `json:"status"`
	JoinedAt time.Time `json:"joinedAt"`
}

func (h *Handlers) CreateFamily(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid token")
		return
	}

	var req createFamilyRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeValidationErrors(w, err)
		return
	}

	fam, err := h.Families.Create(r.Context(), user.ID, req.Name, req.Description)
	if err != nil {
		switch {
		case errors.Is(err, familydomain.ErrDuplicateName):
			h.log.BusinessError("families.create: duplicate name", err, "user_id", user.ID)
			writeError(w, http.StatusConflict, "you already have a family with this name")
		case errors.Is(err, familydomain.ErrTokenGenerationFailed):
			h.log.InternalError("families.create: token generation failed", err, "user_id", user.ID)
			writeError(w, http.StatusInternalServerError, "internal error")
		default:
			h.log.InternalError("families.create: create failed", err, "user_id", user.ID)
			writeError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}

	writeData(w, http.StatusCreated, "family created", toFamilyResponse(fam, true))
}

func (h *Handlers) JoinFamily(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid token")
		return
	}

	var req joinFamilyRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeValidationErrors(w, err)
		return
	}

	fam, err := h.Families.Join(r.Context(), user.ID, user.FullName, req.Token)
	if err != nil {
		switch {
		case errors.Is(err, familydomain.ErrTokenNotFound):
			h.log.BusinessError("families.join: token not found", err, "user_id", user.ID)
			writeError(w, http.StatusNotFound, "invalid join token")
		case errors.Is(err, familydomain.ErrAlreadyMember):
			h.log.BusinessError("families.join: already member", err, "user_id", user.ID)
			writeError(w, http.StatusConflict, "you already belong to this family or have a pending request")
		default:
			h.log.InternalError("families.join: join failed", err, "user_id", user.ID)
			writeError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}

	writeData(w, http.StatusOK, "join request sent", toFamilyResponse(fam, false))
}

func (h *Handlers) ListMyFamilies(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid token")
		return
	}

	summaries, err := h.Families.ListMine(r.Context(), user.ID)
	if err != nil {
		h.log.InternalError("families.list: list failed", err, "user_id", user.ID)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeData(w, http.StatusOK, "families", summaries)
}

func (h *Handlers) GetFamily(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid token")
		return
	}
	familyID := chi.URLParam(r, "id")

	fam, member, err := h.Families.Get(r.Context(), user.ID, familyID)
	if err != nil {
		h.writeFamilyError(w, "families.get", err, user.ID, familyID)
		return
	}

	writeData(w, http.StatusOK, "family", map[string]interface{}{
		"family": toFamilyResponse(fam, member.Role == familydomain.RoleAdmin),
		"membership": memberResponse{
			MemberID: member.ID,
			Role:     member.Role,
			Status:   member.Status,
			JoinedAt: member.JoinedAt,
		},
	})
}

func (h *Handlers) ListFamilyMembers(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid token")
		return
	}
	familyID := chi.URLParam(r, "id")
	page, limit := parsePagination(r.URL.Query().Get("page"), r.URL.Query().Get("limit"))

	members, err := h.Families.ListMembers(r.Context(), user.ID, familyID, page, limit)
	if err != nil {
		h.writeFamilyError(w, "families.members", err, user.ID, familyID)
		return
	}

	writeData(w, http.StatusOK, "members", members)
}

func (h *Handlers) GetFamilyStats(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid token")
		return
	}
	familyID := chi.URLParam(r, "id")

	stats, err := h.Families.GetStats(r.Context(), user.ID, familyID)
	if err != nil {
		h.writeFamilyError(w, "families.stats", err, user.ID, familyID)
		return
	}

	writeData(w, http.StatusOK, "stats", stats)
}

func (h *Handlers) ListJoinRequests(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid token")
		return
	}
	familyID := chi.URLParam(r, "id")

	requests, err := h.Families.PendingRequests(r.Context(), user.ID, familyID)
	if err != nil {
		h.writeFamilyError(w, "families.requests", err, user.ID, familyID)
		return
	}

	writeData(w, http.StatusOK, "join requests", requests)
}

func (h *Handlers) ApproveJoinRequest(w http.ResponseWriter, r *http.Request) {
	h.resolveJoinRequest(w, r, true)
}

func (h *Handlers) RejectJoinRequest(w http.ResponseWriter, r *http.Request) {
	h.resolveJoinRequest(w, r, false)
}

func (h *Handlers) resolveJoinRequest(w http.ResponseWriter, r *http.Request, approve bool) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid token")
		return
	}
	familyID := chi.URLParam(r, "id")
	memberID := chi.URLParam(r, "memberId")

	var err error
	if approve {
		err = h.Families.Approve(r.Context(), user.ID, familyID, memberID)
	} else {
		err = h.Families.Reject(r.Context(), user.ID, familyID, memberID)
	}
	if err != nil {
		switch {
		case errors.Is(err, familydomain.ErrMemberNotFound):
			h.log.BusinessError("families.request: member not found", err, "family_id", familyID, "member_id", memberID)
			writeError(w, http.StatusNotFound, "join request not found")
		case errors.Is(err, familydomain.ErrRequestNotPending):
			h.log.BusinessError("families.request: not pending", err, "family_id", familyID, "member_id", memberID)
			writeError(w, http.StatusConflict, "request is not pending")
		default:
			h.writeFamilyError(w, "families.request", err, user.ID, familyID)
		}
		return
	}

	if approve {
		writeMessage(w, http.StatusOK, "request approved")
		return
	}
	writeMessage(w, http.StatusOK, "request rejected")
}

// writeFamilyError maps the errors every membership-gated endpoint shares.
func (h *Handlers) writeFamilyError(w http.ResponseWriter, op string, err error, userID, familyID string) {
	switch {
	case errors.Is(err, familydomain.ErrFamilyNotFound):
		h.log.BusinessError(op+": family not found", err, "user_id", userID, "family_id", familyID)
		writeError(w, http.StatusNotFound, "family not found")
	case errors.Is(err, familydomain.ErrNotMember):
		h.log.BusinessError(op+": not a member", err, "user_id", userID, "family_id", familyID)
		writeError(w, http.StatusForbidden, "you are not a member of this family")
	case errors.Is(err, familydomain.ErrNotAdmin):
		h.log.BusinessError(op+": not an admin", err, "user_id", userID, "family_id", familyID)
		writeError(w, http.StatusForbidden, "admin access required")
	default:
		h.log.InternalError(op+": failed", err, "user_id", userID, "family_id", familyID)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func toFamilyResponse(fam *familydomain.Family, includeToken bool) familyResponse {
	resp := familyResponse{
		ID:          fam.ID,
		Name:        fam.Name,
		Description: fam.Description,
		CreatedByID: fam.CreatedByID,
		CreatedAt:   fam.CreatedAt,
	}
	if includeToken {
		resp.JoinToken = fam.JoinToken
	}
	return resp
}
