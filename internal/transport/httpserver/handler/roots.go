package handler

import (
	"errors"
	"net/http"
	"time"

	rootsdomain "fambook-go/internal/domain/roots"
	"fambook-go/internal/transport/httpserver/middleware"
	"github.com/go-chi/chi/v5"
)

type createRootRequest struct {
	FamilyID    string  `json:"familyId" validate:"required,uuid"`
	Name        string  `json:"name" validate:"required,min=2,max=100"`
	Description *string `json:"description" validate:"omitempty,max=500"`
}

type nodeRequest struct {
	FullName       string  `json:"fullName" validate:"required,min=1,max=100"`
	Gender         *string `json:"gender" validate:"omitempty,oneof=male female other"`
	BirthDate      string  `json:"birthDate"`
	DeathDate      string  `json:"deathDate"`
	Bio            *string `json:"bio" validate:"omitempty,max=1000"`
	PictureURL     *string `json:"pictureUrl" validate:"omitempty,url"`
	LinkedMemberID *string `json:"linkedMemberId"`
}

type relationRequest struct {
	FromNodeID string `json:"fromNodeId" validate:"required,uuid"`
	ToNodeID   string `json:"toNodeId" validate:"required,uuid"`
	Type       string `json:"type" validate:"required"`
}

type rootResponse struct {
	ID          string    `json:"id"`
	FamilyID    string    `json:"familyId"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	CreatedByID string    `json:"createdById"`
	CreatedAt   time.Time `json:"createdAt"`
}

type nodeResponse struct {
	ID             string     `json:"id"`
	RootID         string     `json:"rootId"`
	FullName       string     `json:"fullName"`
	Gender         *string    `json:"gender,omitempty"`
	BirthDate      *time.Time `json:"birthDate,omitempty"`
	DeathDate      *time.Time `json:"deathDate,omitempty"`
	Bio            *string    `json:"bio,omitempty"`
	PictureURL     *string    `json:"pictureUrl,omitempty"`
	LinkedMemberID *string    `json:"linkedMemberId,omitempty"`
}

type relationResponse struct {
	ID         string `json:"id"`
	RootID     string `json:"rootId"`
	FromNodeID string `json:"fromNodeId"`
	ToNodeID   string `json:"toNodeId"`
	Type       string `json:"type"`
}

type rootDetailResponse struct {
	Root      rootResponse       `json:"root"`
	Nodes     []nodeResponse     `json:"nodes"`
	Relations []relationResponse `json:"relations"`
}

func (h *Handlers) CreateRoot(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid token")
		return
	}

	var req createRootRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeValidationErrors(w, err)
		return
	}

	root, err := h.Roots.CreateRoot(r.Context(), user.ID, req.FamilyID, req.Name, req.Description)
	if err != nil {
		if errors.Is(err, rootsdomain.ErrRootAlreadyExists) {
			h.log.BusinessError("roots.create: root already exists", err, "family_id", req.FamilyID)
			writeError(w, http.StatusConflict, "this family already has a tree")
			return
		}
		h.writeRootsError(w, "roots.create", err, user.ID)
		return
	}

	writeData(w, http.StatusCreated, "tree created", toRootResponse(root))
}

func (h *Handlers) ListRoots(w http.ResponseWriter, r *http.Request) {
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

	roots, err := h.Roots.ListRoots(r.Context(), user.ID, familyID)
	if err != nil {
		h.writeRootsError(w, "roots.list", err, user.ID)
		return
	}

	responses := make([]rootResponse, 0, len(roots))
	for i := range roots {
		responses = append(responses, toRootResponse(&roots[i]))
	}
	writeData(w, http.StatusOK, "trees", responses)
}

func (h *Handlers) GetRoot(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid token")
		return
	}
	rootID := chi.URLParam(r, "id")

	detail, err := h.Roots.GetRoot(r.Context(), user.ID, rootID)
	if err != nil {
		h.writeRootsError(w, "roots.get", err, user.ID)
		return
	}

	resp := rootDetailResponse{
		Root:      toRootResponse(&detail.Root),
		Nodes:     make([]nodeResponse, 0, len(detail.Nodes)),
		Relations: make([]relationResponse, 0, len(detail.Relations)),
	}
	for i := range detail.Nodes {
		resp.Nodes = append(resp.Nodes, toNodeResponse(&detail.Nodes[i]))
	}
	for i := range detail.Relations {
		resp.Relations = append(resp.Relations, toRelationResponse(&detail.Relations[i]))
	}
	writeData(w, http.StatusOK, "tree", resp)
}

func (h *Handlers) DeleteRoot(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid token")
		return
	}
	rootID := chi.URLParam(r, "id")

	if err := h.Roots.DeleteRoot(r.Context(), user.ID, rootID); err != nil {
		h.writeRootsError(w, "roots.delete", err, user.ID)
		return
	}

	writeMessage(w, http.StatusOK, "tree deleted")
}

func (h *Handlers) CreateNode(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid token")
		return
	}
	rootID := chi.URLParam(r, "id")

	input, ok := h.decodeNodeInput(w, r)
	if !ok {
		return
	}

	node, err := h.Roots.CreateNode(r.Context(), user.ID, rootID, input)
	if err != nil {
		h.writeRootsError(w, "roots.nodes.create", err, user.ID)
		return
	}

	writeData(w, http.StatusCreated, "person added", toNodeResponse(node))
}

func (h *Handlers) UpdateNode(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid token")
		return
	}
	rootID := chi.URLParam(r, "id")
	nodeID := chi.URLParam(r, "nodeId")

	input, ok := h.decodeNodeInput(w, r)
	if !ok {
		return
	}

	node, err := h.Roots.UpdateNode(r.Context(), user.ID, rootID, nodeID, input)
	if err != nil {
		h.writeRootsError(w, "roots.nodes.update", err, user.ID)
		return
	}

	writeData(w, http.StatusOK, "person updated", toNodeResponse(node))
}

func (h *Handlers) DeleteNode(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid token")
		return
	}
	rootID := chi.URLParam(r, "id")
	nodeID := chi.URLParam(r, "nodeId")

	if err := h.Roots.DeleteNode(r.Context(), user.ID, rootID, nodeID); err != nil {
		if errors.Is(err, rootsdomain.ErrNodeHasRelations) {
			h.log.BusinessError("roots.nodes.delete: node has relations", err, "node_id", nodeID)
			writeError(w, http.StatusBadRequest, "remove this person's relationships first")
			return
		}
		h.writeRootsError(w, "roots.nodes.delete", err, user.ID)
		return
	}

	writeMessage(w, http.StatusOK, "person deleted")
}

func (h *Handlers) CanDeleteNode(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid token")
		return
	}
	rootID := chi.URLParam(r, "id")
	nodeID := chi.URLParam(r, "nodeId")

	check, err := h.Roots.CanDeleteNode(r.Context(), user.ID, rootID, nodeID)
	if err != nil {
		h.writeRootsError(w, "roots.nodes.can_delete", err, user.ID)
		return
	}

	writeData(w, http.StatusOK, "delete check", check)
}

func (h *Handlers) CreateRelation(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid token")
		return
	}
	rootID := chi.URLParam(r, "id")

	var req relationRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeValidationErrors(w, err)
		return
	}

	relation, err := h.Roots.CreateRelation(r.Context(), user.ID, rootID, rootsdomain.RelationInput{
		FromNodeID: req.FromNodeID,
		ToNodeID:   req.ToNodeID,
		Type:       req.Type,
	})
	if err != nil {
		h.writeRootsError(w, "roots.relations.create", err, user.ID)
		return
	}

	writeData(w, http.StatusCreated, "relationship added", toRelationResponse(relation))
}

func (h *Handlers) DeleteRelation(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid token")
		return
	}
	rootID := chi.URLParam(r, "id")
	relationID := chi.URLParam(r, "relId")

	if err := h.Roots.DeleteRelation(r.Context(), user.ID, rootID, relationID); err != nil {
		h.writeRootsError(w, "roots.relations.delete", err, user.ID)
		return
	}

	writeMessage(w, http.StatusOK, "relationship deleted")
}

func (h *Handlers) ListUnlinkedMembers(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid token")
		return
	}
	familyID := chi.URLParam(r, "id")
	includeMemberID := r.URL.Query().Get("includeMemberId")

	members, err := h.Roots.UnlinkedMembers(r.Context(), user.ID, familyID, includeMemberID)
	if err != nil {
		h.writeRootsError(w, "roots.unlinked_members", err, user.ID)
		return
	}

	writeData(w, http.StatusOK, "unlinked members", members)
}

func (h *Handlers) decodeNodeInput(w http.ResponseWriter, r *http.Request) (rootsdomain.NodeInput, bool) {
	var req nodeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return rootsdomain.NodeInput{}, false
	}
	if err := h.validate.Struct(req); err != nil {
		writeValidationErrors(w, err)
		return rootsdomain.NodeInput{}, false
	}

	birthDate, err := parseDateParam(req.BirthDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid birthDate, expected YYYY-MM-DD")
		return rootsdomain.NodeInput{}, false
	}
	deathDate, err := parseDateParam(req.DeathDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid deathDate, expected YYYY-MM-DD")
		return rootsdomain.NodeInput{}, false
	}

	return rootsdomain.NodeInput{
		FullName:       req.FullName,
		Gender:         req.Gender,
		BirthDate:      birthDate,
		DeathDate:      deathDate,
		Bio:            req.Bio,
		PictureURL:     req.PictureURL,
		LinkedMemberID: req.LinkedMemberID,
	}, true
}

func (h *Handlers) writeRootsError(w http.ResponseWriter, op string, err error, userID string) {
	switch {
	case errors.Is(err, rootsdomain.ErrRootNotFound):
		h.log.BusinessError(op+": root not found", err, "user_id", userID)
		writeError(w, http.StatusNotFound, "tree not found")
	case errors.Is(err, rootsdomain.ErrNodeNotFound):
		h.log.BusinessError(op+": node not found", err, "user_id", userID)
		writeError(w, http.StatusNotFound, "person not found")
	case errors.Is(err, rootsdomain.ErrRelationNotFound):
		h.log.BusinessError(op+": relation not found", err, "user_id", userID)
		writeError(w, http.StatusNotFound, "relationship not found")
	case errors.Is(err, rootsdomain.ErrRelationExists):
		h.log.BusinessError(op+": relation exists", err, "user_id", userID)
		writeError(w, http.StatusConflict, "this relationship already exists")
	case errors.Is(err, rootsdomain.ErrMemberAlreadyLinked):
		h.log.BusinessError(op+": member already linked", err, "user_id", userID)
		writeError(w, http.StatusConflict, "this member is already linked to another person")
	case errors.Is(err, rootsdomain.ErrInvalidRelationType),
		errors.Is(err, rootsdomain.ErrSelfRelation),
		errors.Is(err, rootsdomain.ErrNodesInDifferentRoot),
		errors.Is(err, rootsdomain.ErrMemberNotInFamily):
		h.log.BusinessError(op+": invalid input", err, "user_id", userID)
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		h.writeFamilyError(w, op, err, userID, "")
	}
}

func toRootResponse(root *rootsdomain.FamilyRoot) rootResponse {
	return rootResponse{
		ID:          root.ID,
		FamilyID:    root.FamilyID,
		Name:        root.Name,
		Description: root.Description,
		CreatedByID: root.CreatedByID,
		CreatedAt:   root.CreatedAt,
	}
}

func toNodeResponse(node *rootsdomain.RootNode) nodeResponse {
	return nodeResponse{
		ID:             node.ID,
		RootID:         node.RootID,
		FullName:       node.FullName,
		Gender:         node.Gender,
		BirthDate:      node.BirthDate,
		DeathDate:      node.DeathDate,
		Bio:            node.Bio,
		PictureURL:     node.PictureURL,
		LinkedMemberID: node.LinkedMemberID,
	}
}

func toRelationResponse(relation *rootsdomain.RootRelation) relationResponse {
	return relationResponse{
		ID:         relation.ID,
		RootID:     relation.RootID,
		FromNodeID: relation.FromNodeID,
		ToNodeID:   relation.ToNodeID,
		Type:       relation.Type,
	}
}
