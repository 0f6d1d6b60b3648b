// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"campusdir/internal/cache"
	"campusdir/internal/directory"
	"campusdir/internal/middleware"
	"campusdir/internal/models"
	"campusdir/internal/store"
)

// Admin groups the authenticated directory management handlers.
type Admin struct {
	categories  *store.CategoryStore
	services    *store.ServiceStore
	submissions *store.SubmissionStore
	users       *store.UserStore
	audit       *store.AuditLogStore
	validator   *directory.Validator
	snapshots   *cache.SnapshotCache
}

// NewAdmin creates the admin handler group. snapshots may be nil when
// Valkey is not configured.
func NewAdmin(
	categories *store.CategoryStore,
	services *store.ServiceStore,
	submissions *store.SubmissionStore,
	users *store.UserStore,
	audit *store.AuditLogStore,
	validator *directory.Validator,
	snapshots *cache.SnapshotCache,
) *Admin {
	return &Admin{
		categories:  categories,
		services:    services,
		submissions: submissions,
		users:       users,
		audit:       audit,
		validator:   validator,
		snapshots:   snapshots,
	}
}

// actor returns the audit identity of the request.
func actor(r *http.Request) string {
	if sess := middleware.SessionFromCtx(r.Context()); sess != nil {
		return sess.Email
	}
	return "unknown"
}

// invalidate clears the public response cache after a mutation.
func (h *Admin) invalidate(r *http.Request) {
	if h.snapshots != nil {
		h.snapshots.InvalidateAll(r.Context())
	}
}

// Dashboard serves the counts the admin landing page shows.
func (h *Admin) Dashboard(w http.ResponseWriter, r *http.Request) {
	cats, err := h.categories.List(store.CategoryFilter{})
	if err != nil {
		respondError(w, &directory.StoreError{Op: "list categories", Err: err})
		return
	}
	svcs, err := h.services.List(store.ServiceFilter{})
	if err != nil {
		respondError(w, &directory.StoreError{Op: "list services", Err: err})
		return
	}
	pending, err := h.submissions.CountPending()
	if err != nil {
		respondError(w, &directory.StoreError{Op: "count submissions", Err: err})
		return
	}

	respondJSON(w, http.StatusOK, map[string]int{
		"categories":          len(cats),
		"services":            len(svcs),
		"pending_submissions": pending,
	})
}

type categoryRequest struct {
	Name        string  `json:"name"`
	Type        string  `json:"type"`
	ParentID    *string `json:"parent_id"`
	Color       string  `json:"color"`
	Icon        string  `json:"icon"`
	Description string  `json:"description"`
	Featured    bool    `json:"featured"`
	SortOrder   *int    `json:"sort_order"`
}

// CreateCategory validates and inserts a new category node. Structural
// rules (root kinds, section parents, sibling name uniqueness) are enforced
// before the row is written.
func (h *Admin) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	var parentID *uuid.UUID
	if req.ParentID != nil && *req.ParentID != "" {
		id, err := uuid.Parse(*req.ParentID)
		if err != nil {
			badRequest(w, "invalid parent_id")
			return
		}
		parentID = &id
	}

	name := strings.TrimSpace(req.Name)
	if utf8.RuneCountInString(name) > maxNameLen {
		badRequest(w, "Name is too long (max 120 characters).")
		return
	}
	in := directory.CategoryInput{
		Name:     name,
		Type:     models.CategoryType(req.Type),
		ParentID: parentID,
	}
	if err := h.validator.ValidateCreate(in); err != nil {
		respondError(w, err)
		return
	}

	sortOrder := 0
	if req.SortOrder != nil {
		sortOrder = *req.SortOrder
	} else {
		next, err := h.categories.NextSortOrder(parentID)
		if err != nil {
			respondError(w, &directory.StoreError{Op: "next sort order", Err: err})
			return
		}
		sortOrder = next
	}

	cat := &models.Category{
		Name:        name,
		Type:        in.Type,
		ParentID:    parentID,
		Color:       req.Color,
		Icon:        req.Icon,
		Description: req.Description,
		Featured:    req.Featured,
		SortOrder:   sortOrder,
	}
	created, err := h.categories.Create(cat)
	if err != nil {
		respondError(w, &directory.StoreError{Op: "create category", Err: err})
		return
	}

	h.audit.Log("category", created.ID, "create", actor(r))
	h.invalidate(r)
	respondJSON(w, http.StatusCreated, created)
}

// UpdateCategory applies a partial update. Only fields present in the body
// change; sending "parent_id": null moves a node to the root level, which
// the validator then checks against its type.
func (h *Admin) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		badRequest(w, "invalid category id")
		return
	}

	// Raw decode first to distinguish an absent parent_id from an explicit null.
	var raw map[string]any
	if !decodeJSON(w, r, &raw) {
		return
	}

	patch := directory.CategoryPatch{}
	if v, ok := raw["name"]; ok {
		s, ok := v.(string)
		if !ok {
			badRequest(w, "name must be a string")
			return
		}
		s = strings.TrimSpace(s)
		if utf8.RuneCountInString(s) > maxNameLen {
			badRequest(w, "Name is too long (max 120 characters).")
			return
		}
		patch.Name = &s
	}
	if v, ok := raw["type"]; ok {
		s, ok := v.(string)
		if !ok {
			badRequest(w, "type must be a string")
			return
		}
		t := models.CategoryType(s)
		patch.Type = &t
	}
	if v, ok := raw["parent_id"]; ok {
		patch.ParentIDSet = true
		if v != nil {
			s, ok := v.(string)
			if !ok {
				badRequest(w, "parent_id must be a string or null")
				return
			}
			pid, err := uuid.Parse(s)
			if err != nil {
				badRequest(w, "invalid parent_id")
				return
			}
			patch.ParentID = &pid
		}
	}
	if v, ok := raw["color"].(string); ok {
		patch.Color = &v
	}
	if v, ok := raw["icon"].(string); ok {
		patch.Icon = &v
	}
	if v, ok := raw["description"].(string); ok {
		patch.Description = &v
	}
	if v, ok := raw["featured"].(bool); ok {
		patch.Featured = &v
	}
	if v, ok := raw["sort_order"].(float64); ok {
		so := int(v)
		patch.SortOrder = &so
	}

	if err := h.validator.ValidateUpdate(id, patch); err != nil {
		respondError(w, err)
		return
	}

	cat, err := h.categories.FindByID(id)
	if err != nil {
		respondError(w, &directory.StoreError{Op: "find category", Err: err})
		return
	}
	if cat == nil {
		respondError(w, &directory.NotFoundError{Entity: "category", ID: id})
		return
	}

	if patch.Name != nil {
		cat.Name = *patch.Name
	}
	if patch.Type != nil {
		cat.Type = *patch.Type
	}
	if patch.ParentIDSet {
		cat.ParentID = patch.ParentID
	}
	if patch.Color != nil {
		cat.Color = *patch.Color
	}
	if patch.Icon != nil {
		cat.Icon = *patch.Icon
	}
	if patch.Description != nil {
		cat.Description = *patch.Description
	}
	if patch.Featured != nil {
		cat.Featured = *patch.Featured
	}
	if patch.SortOrder != nil {
		cat.SortOrder = *patch.SortOrder
	}

	if err := h.categories.Update(cat); err != nil {
		respondError(w, &directory.StoreError{Op: "update category", Err: err})
		return
	}

	h.audit.Log("category", cat.ID, "update", actor(r))
	h.invalidate(r)
	respondJSON(w, http.StatusOK, cat)
}

// DeleteCategory removes an empty category. Deletes are blocked while
// children or services remain under the node.
func (h *Admin) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		badRequest(w, "invalid category id")
		return
	}

	if err := h.validator.ValidateDelete(id); err != nil {
		respondError(w, err)
		return
	}

	if err := h.categories.Delete(id); err != nil {
		respondError(w, &directory.StoreError{Op: "delete category", Err: err})
		return
	}

	h.audit.Log("category", id, "delete", actor(r))
	h.invalidate(r)
	w.WriteHeader(http.StatusNoContent)
}

type serviceRequest struct {
	CategoryID  string   `json:"category_id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	Href        *string  `json:"href"`
	Image       *string  `json:"image"`
	Status      string   `json:"status"`
	Featured    bool     `json:"featured"`
	SortOrder   int      `json:"sort_order"`
}

func (h *Admin) serviceFromRequest(w http.ResponseWriter, req serviceRequest) (*models.Service, bool) {
	categoryID, err := uuid.Parse(req.CategoryID)
	if err != nil {
		badRequest(w, "invalid category_id")
		return nil, false
	}
	cat, err := h.categories.FindByID(categoryID)
	if err != nil {
		respondError(w, &directory.StoreError{Op: "find category", Err: err})
		return nil, false
	}
	if cat == nil {
		respondError(w, &directory.NotFoundError{Entity: "category", ID: categoryID})
		return nil, false
	}

	status := models.ServiceStatus(req.Status)
	if req.Status == "" {
		status = models.ServiceStatusActive
	}
	if err := directory.ValidateServiceInput(req.Title, status, req.Href); err != nil {
		respondError(w, err)
		return nil, false
	}
	if msg := validateTags(req.Tags); msg != "" {
		badRequest(w, msg)
		return nil, false
	}

	tags := req.Tags
	if tags == nil {
		tags = []string{}
	}
	return &models.Service{
		CategoryID:  categoryID,
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Tags:        tags,
		Href:        req.Href,
		Image:       req.Image,
		Status:      status,
		Featured:    req.Featured,
		SortOrder:   req.SortOrder,
	}, true
}

// CreateService validates and inserts a new service under a category.
func (h *Admin) CreateService(w http.ResponseWriter, r *http.Request) {
	var req serviceRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	svc, ok := h.serviceFromRequest(w, req)
	if !ok {
		return
	}

	created, err := h.services.Create(svc)
	if err != nil {
		respondError(w, &directory.StoreError{Op: "create service", Err: err})
		return
	}

	h.audit.Log("service", created.ID, "create", actor(r))
	h.invalidate(r)
	respondJSON(w, http.StatusCreated, created)
}

// UpdateService replaces a service's fields. Unlike categories, services
// carry no structural state, so a full replace keeps the handler simple.
func (h *Admin) UpdateService(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		badRequest(w, "invalid service id")
		return
	}

	existing, err := h.services.FindByID(id)
	if err != nil {
		respondError(w, &directory.StoreError{Op: "find service", Err: err})
		return
	}
	if existing == nil {
		respondError(w, &directory.NotFoundError{Entity: "service", ID: id})
		return
	}

	var req serviceRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	svc, ok := h.serviceFromRequest(w, req)
	if !ok {
		return
	}
	svc.ID = id

	if err := h.services.Update(svc); err != nil {
		respondError(w, &directory.StoreError{Op: "update service", Err: err})
		return
	}

	updated, err := h.services.FindByID(id)
	if err != nil {
		respondError(w, &directory.StoreError{Op: "find service", Err: err})
		return
	}

	h.audit.Log("service", id, "update", actor(r))
	h.invalidate(r)
	respondJSON(w, http.StatusOK, updated)
}

// DeleteService removes a service entry.
func (h *Admin) DeleteService(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		badRequest(w, "invalid service id")
		return
	}

	existing, err := h.services.FindByID(id)
	if err != nil {
		respondError(w, &directory.StoreError{Op: "find service", Err: err})
		return
	}
	if existing == nil {
		respondError(w, &directory.NotFoundError{Entity: "service", ID: id})
		return
	}

	if err := h.services.Delete(id); err != nil {
		respondError(w, &directory.StoreError{Op: "delete service", Err: err})
		return
	}

	h.audit.Log("service", id, "delete", actor(r))
	h.invalidate(r)
	w.WriteHeader(http.StatusNoContent)
}

// Submissions lists the review queue, optionally filtered by status.
func (h *Admin) Submissions(w http.ResponseWriter, r *http.Request) {
	var status *models.SubmissionStatus
	if s := r.URL.Query().Get("status"); s != "" {
		st := models.SubmissionStatus(s)
		if st != models.SubmissionStatusPending && st != models.SubmissionStatusAccepted && st != models.SubmissionStatusRejected {
			badRequest(w, "unknown submission status")
			return
		}
		status = &st
	}

	subs, err := h.submissions.List(status)
	if err != nil {
		respondError(w, &directory.StoreError{Op: "list submissions", Err: err})
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"submissions": subs})
}

type resolveRequest struct {
	Status string `json:"status"`
}

// ResolveSubmission marks a pending suggestion accepted or rejected.
// Accepting does not create a service automatically; staff curate the
// entry through the service endpoints.
func (h *Admin) ResolveSubmission(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		badRequest(w, "invalid submission id")
		return
	}

	var req resolveRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	status := models.SubmissionStatus(req.Status)
	if status != models.SubmissionStatusAccepted && status != models.SubmissionStatusRejected {
		badRequest(w, "status must be accepted or rejected")
		return
	}

	sub, err := h.submissions.FindByID(id)
	if err != nil {
		respondError(w, &directory.StoreError{Op: "find submission", Err: err})
		return
	}
	if sub == nil {
		respondError(w, &directory.NotFoundError{Entity: "submission", ID: id})
		return
	}
	if sub.Status != models.SubmissionStatusPending {
		respondError(w, &directory.ConflictError{Message: "submission is already resolved"})
		return
	}

	if err := h.submissions.Resolve(id, status); err != nil {
		respondError(w, &directory.StoreError{Op: "resolve submission", Err: err})
		return
	}

	h.audit.Log("submission", id, string(status), actor(r))
	respondJSON(w, http.StatusOK, map[string]string{"status": string(status)})
}

// Users lists all accounts. Admin only.
func (h *Admin) Users(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List()
	if err != nil {
		respondError(w, &directory.StoreError{Op: "list users", Err: err})
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"users": users})
}

type userRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
	Role        string `json:"role"`
}

// CreateUser adds a new account. Admin only. The new user completes 2FA
// enrollment on first login.
func (h *Admin) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req userRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if msg := validateEmail(email); msg != "" {
		badRequest(w, msg)
		return
	}
	if len(req.Password) < 12 {
		badRequest(w, "Password must be at least 12 characters.")
		return
	}
	role := models.Role(req.Role)
	if role != models.RoleAdmin && role != models.RoleEditor {
		badRequest(w, "role must be admin or editor")
		return
	}

	existing, err := h.users.FindByEmail(email)
	if err != nil {
		respondError(w, &directory.StoreError{Op: "find user", Err: err})
		return
	}
	if existing != nil {
		respondError(w, &directory.ConflictError{Message: "a user with this email already exists"})
		return
	}

	user, err := h.users.Create(email, req.Password, strings.TrimSpace(req.DisplayName), role)
	if err != nil {
		respondError(w, &directory.StoreError{Op: "create user", Err: err})
		return
	}

	h.audit.Log("user", user.ID, "create", actor(r))
	respondJSON(w, http.StatusCreated, user)
}

// ResetUser2FA clears a user's TOTP enrollment so they re-enroll on next
// login. Admin only; used when someone loses their authenticator.
func (h *Admin) ResetUser2FA(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		badRequest(w, "invalid user id")
		return
	}

	user, err := h.users.FindByID(id)
	if err != nil {
		respondError(w, &directory.StoreError{Op: "find user", Err: err})
		return
	}
	if user == nil {
		respondError(w, &directory.NotFoundError{Entity: "user", ID: id})
		return
	}

	if err := h.users.ResetTOTP(id); err != nil {
		respondError(w, &directory.StoreError{Op: "reset totp", Err: err})
		return
	}

	h.audit.Log("user", id, "reset-2fa", actor(r))
	slog.Info("2fa reset", "user_id", id, "by", actor(r))
	respondJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// DeleteUser removes an account. Admin only; self-deletion is rejected so
// the last admin cannot lock everyone out mid-session.
func (h *Admin) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		badRequest(w, "invalid user id")
		return
	}

	sess := middleware.SessionFromCtx(r.Context())
	if sess != nil && sess.UserID == id {
		respondError(w, &directory.ConflictError{Message: "you cannot delete your own account"})
		return
	}

	user, err := h.users.FindByID(id)
	if err != nil {
		respondError(w, &directory.StoreError{Op: "find user", Err: err})
		return
	}
	if user == nil {
		respondError(w, &directory.NotFoundError{Entity: "user", ID: id})
		return
	}

	if err := h.users.Delete(id); err != nil {
		respondError(w, &directory.StoreError{Op: "delete user", Err: err})
		return
	}

	h.audit.Log("user", id, "delete", actor(r))
	w.WriteHeader(http.StatusNoContent)
}

// AuditLog serves the most recent audit entries.
func (h *Admin) AuditLog(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 || n > 500 {
			badRequest(w, "limit must be between 1 and 500")
			return
		}
		limit = n
	}

	entries, err := h.audit.RecentEntries(limit)
	if err != nil {
		respondError(w, &directory.StoreError{Op: "list audit entries", Err: err})
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"entries": entries})
}
