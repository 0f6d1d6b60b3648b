// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"campusdir/internal/cache"
	"campusdir/internal/directory"
	"campusdir/internal/mailer"
	"campusdir/internal/models"
	"campusdir/internal/store"
)

// Submissions handles the public resource suggestion endpoint.
type Submissions struct {
	submissions *store.SubmissionStore
	categories  *store.CategoryStore
	dedupe      *cache.SubmissionDedupe
	notifier    mailer.Notifier
	notifyTo    string
}

// NewSubmissions creates the public submission handler. dedupe may be nil
// when Valkey is not configured; duplicate suppression is then skipped.
func NewSubmissions(submissions *store.SubmissionStore, categories *store.CategoryStore, dedupe *cache.SubmissionDedupe, notifier mailer.Notifier, notifyTo string) *Submissions {
	return &Submissions{
		submissions: submissions,
		categories:  categories,
		dedupe:      dedupe,
		notifier:    notifier,
		notifyTo:    notifyTo,
	}
}

type submissionRequest struct {
	Name        string  `json:"name"`
	Email       string  `json:"email"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Href        *string `json:"href,omitempty"`
	CategoryID  *string `json:"category_id,omitempty"`
}

// Create accepts a public resource suggestion. Repeated suggestions with
// the same submitter, title, and link inside the dedupe window are rejected
// with a conflict so the review queue stays readable.
func (h *Submissions) Create(w http.ResponseWriter, r *http.Request) {
	var req submissionRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	href := ""
	if req.Href != nil {
		href = strings.TrimSpace(*req.Href)
	}
	if msg := validateSubmission(req.Name, req.Email, req.Title, req.Description, href); msg != "" {
		badRequest(w, msg)
		return
	}

	var categoryID *uuid.UUID
	if req.CategoryID != nil && *req.CategoryID != "" {
		id, err := uuid.Parse(*req.CategoryID)
		if err != nil {
			badRequest(w, "invalid category_id")
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
		categoryID = &id
	}

	if h.dedupe != nil {
		fp := cache.Fingerprint(req.Email, req.Title, href)
		fresh, err := h.dedupe.Claim(r.Context(), fp)
		if err != nil {
			slog.Warn("submission dedupe unavailable", "error", err)
		} else if !fresh {
			respondError(w, &directory.ConflictError{
				Reason:  directory.ReasonDuplicateSubmission,
				Message: "this resource was already suggested recently",
			})
			return
		}
	}

	sub := &models.Submission{
		Name:        strings.TrimSpace(req.Name),
		Email:       strings.ToLower(strings.TrimSpace(req.Email)),
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		CategoryID:  categoryID,
	}
	if href != "" {
		sub.Href = &href
	}

	created, err := h.submissions.Create(sub)
	if err != nil {
		respondError(w, &directory.StoreError{Op: "create submission", Err: err})
		return
	}

	if h.notifyTo != "" {
		go func() {
			if err := h.notifier.NotifySubmission(h.notifyTo, created.Title, created.Email); err != nil {
				slog.Error("submission notification failed", "submission_id", created.ID, "error", err)
			}
		}()
	}

	slog.Info("submission received", "submission_id", created.ID, "title", created.Title)
	respondJSON(w, http.StatusCreated, created)
}
