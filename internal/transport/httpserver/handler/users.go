package handler

import (
	"errors"
	"net/http"
	"time"

	userdomain "fambook-go/internal/domain/user"
	"fambook-go/internal/transport/httpserver/middleware"
	"github.com/go-chi/chi/v5"
)

type userResponse struct {
	ID                 string                     `json:"id"`
	Email              string                     `json:"email"`
	FullName           string                     `json:"fullName"`
	Bio                *string                    `json:"bio,omitempty"`
	BirthPlace         *string                    `json:"birthPlace,omitempty"`
	CurrentPlace       *string                    `json:"currentPlace,omitempty"`
	RelationshipStatus *string                    `json:"relationshipStatus,omitempty"`
	ProfilePictureURL  *string                    `json:"profilePictureUrl,omitempty"`
	Languages          []string                   `json:"languages"`
	Interests          []string                   `json:"interests"`
	Privacy            userdomain.PrivacySettings `json:"privacy"`
	CreatedAt          time.Time                  `json:"createdAt"`
}

type basicInfoRequest struct {
	FullName           *string   `json:"fullName" validate:"omitempty,min=1,max=100"`
	Bio                *string   `json:"bio" validate:"omitempty,max=1000"`
	BirthPlace         *string   `json:"birthPlace" validate:"omitempty,max=200"`
	CurrentPlace       *string   `json:"currentPlace" validate:"omitempty,max=200"`
	RelationshipStatus *string   `json:"relationshipStatus" validate:"omitempty,max=32"`
	Languages          *[]string `json:"languages"`
}

type privacyRequest struct {
	Fields map[string]string `json:"fields" validate:"required"`
}

type tabVisibilityRequest struct {
	Tabs map[string]bool `json:"tabs" validate:"required"`
}

type pictureRequest struct {
	PictureURL string `json:"pictureUrl" validate:"required,url"`
}

type interestsRequest struct {
	Interests []string `json:"interests" validate:"required"`
}

type educationRequest struct {
	School    string  `json:"school" validate:"required,min=1,max=200"`
	Degree    *string `json:"degree" validate:"omitempty,max=200"`
	Field     *string `json:"field" validate:"omitempty,max=200"`
	StartDate string  `json:"startDate" validate:"required"`
	EndDate   string  `json:"endDate"`
}

type workHistoryRequest struct {
	Company   string  `json:"company" validate:"required,min=1,max=200"`
	Title     string  `json:"title" validate:"required,min=1,max=200"`
	Location  *string `json:"location" validate:"omitempty,max=200"`
	StartDate string  `json:"startDate" validate:"required"`
	EndDate   string  `json:"endDate"`
}

type educationResponse struct {
	ID        string     `json:"id"`
	School    string     `json:"school"`
	Degree    *string    `json:"degree,omitempty"`
	Field     *string    `json:"field,omitempty"`
	StartDate time.Time  `json:"startDate"`
	EndDate   *time.Time `json:"endDate,omitempty"`
}

type workHistoryResponse struct {
	ID        string     `json:"id"`
	Company   string     `json:"company"`
	Title     string     `json:"title"`
	Location  *string    `json:"location,omitempty"`
	StartDate time.Time  `json:"startDate"`
	EndDate   *time.Time `json:"endDate,omitempty"`
}

func (h *Handlers) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid token")
		return
	}
	writeData(w, http.StatusOK, "current user", toUserResponse(user))
}

// SyncUser exists for clients that want an explicit sync call; the auth
// middleware has already upserted the user by the time we get here.
func (h *Handlers) SyncUser(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid token")
		return
	}
	writeData(w, http.StatusOK, "user synced", toUserResponse(user))
}

func (h *Handlers) GetProfile(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid token")
		return
	}
	targetID := chi.URLParam(r, "id")

	profile, err := h.Users.GetProfile(r.Context(), user.ID, targetID)
	if err != nil {
		h.writeUserError(w, "users.profile", err, user.ID, targetID)
		return
	}

	writeData(w, http.StatusOK, "profile", profile)
}

func (h *Handlers) UpdateBasicInfo(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid token")
		return
	}
	targetID := chi.URLParam(r, "id")

	var req basicInfoRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeValidationErrors(w, err)
		return
	}

	updated, err := h.Users.UpdateBasicInfo(r.Context(), user.ID, targetID, userdomain.BasicInfoUpdate{
		FullName:           trimPtr(req.FullName),
		Bio:                req.Bio,
		BirthPlace:         req.BirthPlace,
		CurrentPlace:       req.CurrentPlace,
		RelationshipStatus: req.RelationshipStatus,
		Languages:          req.Languages,
	})
	if err != nil {
		h.writeUserError(w, "users.basic_info", err, user.ID, targetID)
		return
	}

	writeData(w, http.StatusOK, "profile updated", toUserResponse(updated))
}

func (h *Handlers) UpdatePrivacy(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid token")
		return
	}
	targetID := chi.URLParam(r, "id")

	var req privacyRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeValidationErrors(w, err)
		return
	}

	updated, err := h.Users.UpdatePrivacy(r.Context(), user.ID, targetID, req.Fields)
	if err != nil {
		h.writeUserError(w, "users.privacy", err, user.ID, targetID)
		return
	}

	writeData(w, http.StatusOK, "privacy updated", toUserResponse(updated))
}

func (h *Handlers) UpdateTabVisibility(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid token")
		return
	}
	targetID := chi.URLParam(r, "id")

	var req tabVisibilityRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeValidationErrors(w, err)
		return
	}

	updated, err := h.Users.UpdateTabVisibility(r.Context(), user.ID, targetID, req.Tabs)
	if err != nil {
		h.writeUserError(w, "users.tab_visibility", err, user.ID, targetID)
		return
	}

	writeData(w, http.StatusOK, "tab visibility updated", toUserResponse(updated))
}

func (h *Handlers) UpdatePicture(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid token")
		return
	}
	targetID := chi.URLParam(r, "id")

	var req pictureRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeValidationErrors(w, err)
		return
	}

	updated, err := h.Users.UpdatePicture(r.Context(), user.ID, targetID, req.PictureURL)
	if err != nil {
		h.writeUserError(w, "users.picture", err, user.ID, targetID)
		return
	}

	writeData(w, http.StatusOK, "picture updated", toUserResponse(updated))
}

func (h *Handlers) UpdateInterests(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid token")
		return
	}
	targetID := chi.URLParam(r, "id")

	var req interestsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeValidationErrors(w, err)
		return
	}

	updated, err := h.Users.UpdateInterests(r.Context(), user.ID, targetID, req.Interests)
	if err != nil {
		h.writeUserError(w, "users.interests", err, user.ID, targetID)
		return
	}

	writeData(w, http.StatusOK, "interests updated", toUserResponse(updated))
}

func (h *Handlers) ListEducation(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid token")
		return
	}
	targetID := chi.URLParam(r, "id")

	entries, err := h.Users.ListEducation(r.Context(), user.ID, targetID)
	if err != nil {
		h.writeUserError(w, "users.education.list", err, user.ID, targetID)
		return
	}

	responses := make([]educationResponse, 0, len(entries))
	for i := range entries {
		responses = append(responses, toEducationResponse(&entries[i]))
	}
	writeData(w, http.StatusOK, "education", responses)
}

func (h *Handlers) AddEducation(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid token")
		return
	}
	targetID := chi.URLParam(r, "id")

	entry, ok := h.decodeEducation(w, r)
	if !ok {
		return
	}

	created, err := h.Users.AddEducation(r.Context(), user.ID, targetID, entry)
	if err != nil {
		h.writeUserError(w, "users.education.add", err, user.ID, targetID)
		return
	}

	writeData(w, http.StatusCreated, "education added", toEducationResponse(created))
}

func (h *Handlers) UpdateEducation(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid token")
		return
	}
	entryID := chi.URLParam(r, "eduId")

	entry, ok := h.decodeEducation(w, r)
	if !ok {
		return
	}

	updated, err := h.Users.UpdateEducation(r.Context(), user.ID, entryID, entry)
	if err != nil {
		h.writeUserError(w, "users.education.update", err, user.ID, entryID)
		return
	}

	writeData(w, http.StatusOK, "education updated", toEducationResponse(updated))
}

func (h *Handlers) DeleteEducation(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid token")
		return
	}
	entryID := chi.URLParam(r, "eduId")

	if err := h.Users.DeleteEducation(r.Context(), user.ID, entryID); err != nil {
		h.writeUserError(w, "users.education.delete", err, user.ID, entryID)
		return
	}

	writeMessage(w, http.StatusOK, "education deleted")
}

func (h *Handlers) ListWorkHistory(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid token")
		return
	}
	targetID := chi.URLParam(r, "id")

	entries, err := h.Users.ListWorkHistory(r.Context(), user.ID, targetID)
	if err != nil {
		h.writeUserError(w, "users.work.list", err, user.ID, targetID)
		return
	}

	responses := make([]workHistoryResponse, 0, len(entries))
	for i := range entries {
		responses = append(responses, toWorkHistoryResponse(&entries[i]))
	}
	writeData(w, http.StatusOK, "work history", responses)
}

func (h *Handlers) AddWorkHistory(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid token")
		return
	}
	targetID := chi.URLParam(r, "id")

	entry, ok := h.decodeWorkHistory(w, r)
	if !ok {
		return
	}

	created, err := h.Users.AddWorkHistory(r.Context(), user.ID, targetID, entry)
	if err != nil {
		h.writeUserError(w, "users.work.add", err, user.ID, targetID)
		return
	}

	writeData(w, http.StatusCreated, "work history added", toWorkHistoryResponse(created))
}

func (h *Handlers) UpdateWorkHistory(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid token")
		return
	}
	entryID := chi.URLParam(r, "workId")

	entry, ok := h.decodeWorkHistory(w, r)
	if !ok {
		return
	}

	updated, err := h.Users.UpdateWorkHistory(r.Context(), user.ID, entryID, entry)
	if err != nil {
		h.writeUserError(w, "users.work.update", err, user.ID, entryID)
		return
	}

	writeData(w, http.StatusOK, "work history updated", toWorkHistoryResponse(updated))
}

func (h *Handlers) DeleteWorkHistory(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid token")
		return
	}
	entryID := chi.URLParam(r, "workId")

	if err := h.Users.DeleteWorkHistory(r.Context(), user.ID, entryID); err != nil {
		h.writeUserError(w, "users.work.delete", err, user.ID, entryID)
		return
	}

	writeMessage(w, http.StatusOK, "work history deleted")
}

func (h *Handlers) decodeEducation(w http.ResponseWriter, r *http.Request) (userdomain.Education, bool) {
	var req educationRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return userdomain.Education{}, false
	}
	if err := h.validate.Struct(req); err != nil {
		writeValidationErrors(w, err)
		return userdomain.Education{}, false
	}

	startDate, err := parseDateRequired(req.StartDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid startDate, expected YYYY-MM-DD")
		return userdomain.Education{}, false
	}
	endDate, err := parseDateParam(req.EndDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid endDate, expected YYYY-MM-DD")
		return userdomain.Education{}, false
	}

	return userdomain.Education{
		School:    req.School,
		Degree:    req.Degree,
		Field:     req.Field,
		StartDate: startDate,
		EndDate:   endDate,
	}, true
}

func (h *Handlers) decodeWorkHistory(w http.ResponseWriter, r *http.Request) (userdomain.WorkHistory, bool) {
	var req workHistoryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return userdomain.WorkHistory{}, false
	}
	if err := h.validate.Struct(req); err != nil {
		writeValidationErrors(w, err)
		return userdomain.WorkHistory{}, false
	}

	startDate, err := parseDateRequired(req.StartDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid startDate, expected YYYY-MM-DD")
		return userdomain.WorkHistory{}, false
	}
	endDate, err := parseDateParam(req.EndDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid endDate, expected YYYY-MM-DD")
		return userdomain.WorkHistory{}, false
	}

	return userdomain.WorkHistory{
		Company:   req.Company,
		Title:     req.Title,
		Location:  req.Location,
		StartDate: startDate,
		EndDate:   endDate,
	}, true
}

func (h *Handlers) writeUserError(w http.ResponseWriter, op string, err error, actorID, targetID string) {
	switch {
	case errors.Is(err, userdomain.ErrUserNotFound):
		h.log.BusinessError(op+": user not found", err, "actor_id", actorID, "target_id", targetID)
		writeError(w, http.StatusNotFound, "user not found")
	case errors.Is(err, userdomain.ErrNotProfileOwner):
		h.log.BusinessError(op+": not profile owner", err, "actor_id", actorID, "target_id", targetID)
		writeError(w, http.StatusForbidden, "you can only edit your own profile")
	case errors.Is(err, userdomain.ErrTabHidden):
		h.log.BusinessError(op+": tab hidden", err, "actor_id", actorID, "target_id", targetID)
		writeError(w, http.StatusForbidden, "this section is not visible to you")
	case errors.Is(err, userdomain.ErrEducationNotFound):
		h.log.BusinessError(op+": education not found", err, "actor_id", actorID, "target_id", targetID)
		writeError(w, http.StatusNotFound, "education entry not found")
	case errors.Is(err, userdomain.ErrWorkHistoryNotFound):
		h.log.BusinessError(op+": work history not found", err, "actor_id", actorID, "target_id", targetID)
		writeError(w, http.StatusNotFound, "work history entry not found")
	case errors.Is(err, userdomain.ErrUnknownField),
		errors.Is(err, userdomain.ErrUnknownTab),
		errors.Is(err, userdomain.ErrInvalidVisibility),
		errors.Is(err, userdomain.ErrInvalidDateRange):
		h.log.BusinessError(op+": invalid input", err, "actor_id", actorID, "target_id", targetID)
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		h.log.InternalError(op+": failed", err, "actor_id", actorID, "target_id", targetID)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func toUserResponse(user *userdomain.User) userResponse {
	return userResponse{
		ID:                 user.ID,
		Email:              user.Email,
		FullName:           user.FullName,
		Bio:                user.Bio,
		BirthPlace:         user.BirthPlace,
		CurrentPlace:       user.CurrentPlace,
		RelationshipStatus: user.RelationshipStatus,
		ProfilePictureURL:  user.ProfilePictureURL,
		Languages:          user.Languages,
		Interests:          user.Interests,
		Privacy:            user.Privacy,
		CreatedAt:          user.CreatedAt,
	}
}

func toEducationResponse(entry *userdomain.Education) educationResponse {
	return educationResponse{
		ID:        entry.ID,
		School:    entry.School,
		Degree:    entry.Degree,
		Field:     entry.Field,
		StartDate: entry.StartDate,
		EndDate:   entry.EndDate,
	}
}

func toWorkHistoryResponse(entry *userdomain.WorkHistory) workHistoryResponse {
	return workHistoryResponse{
		ID:        entry.ID,
		Company:   entry.Company,
		Title:     entry.Title,
		Location:  entry.Location,
		StartDate: entry.StartDate,
		EndDate:   entry.EndDate,
	}
}
