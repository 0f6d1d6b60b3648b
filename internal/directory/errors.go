// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package directory implements the category tree core: write validation,
// tree materialization, breadcrumb resolution, search filtering, and the
// browse state machine. Everything here is derived from a flat snapshot of
// category rows; the package owns no durable state.
package directory

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Reason identifies the specific structural rule a rejected write violated.
type Reason string

const (
	ReasonMissingName          Reason = "missing-name"
	ReasonInvalidType          Reason = "invalid-type"
	ReasonCampusWithParent     Reason = "campus-with-parent"
	ReasonSectionWithoutParent Reason = "section-without-parent"
	ReasonGeneralWithParent    Reason = "general-with-parent"
	ReasonParentNotFound       Reason = "parent-not-found"
	ReasonParentNotCampus      Reason = "parent-not-campus"
	ReasonDuplicateName        Reason = "duplicate-name"

	// ReasonDuplicateSubmission marks a public suggestion already seen
	// inside the dedupe window.
	ReasonDuplicateSubmission Reason = "duplicate-submission"
)

// ValidationError reports a structural invariant violation. It is never
// retried; the caller must correct the input.
type ValidationError struct {
	Reason  Reason
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed (%s): %s", e.Reason, e.Message)
}

// ConflictError reports a duplicate name under the same parent, or a delete
// blocked by remaining children or services. Requires caller action.
// Reason is ReasonDuplicateName for name collisions and empty for blocked deletes.
type ConflictError struct {
	Reason  Reason
	Message string
}

func (e *ConflictError) Error() string {
	return e.Message
}

// NotFoundError reports that a referenced category or service does not exist.
type NotFoundError struct {
	Entity string
	ID     uuid.UUID
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

// StoreError wraps an underlying persistence failure. The caller may retry
// at its discretion; this package never retries internally.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// ErrPathTooDeep signals that breadcrumb resolution exceeded the traversal
// cap, which can only happen if the depth invariant has been violated by a
// malformed write below the API boundary.
var ErrPathTooDeep = errors.New("category path exceeds depth cap")

// ErrInvalidTransition signals a click on a node that has no defined
// transition from the current view (e.g. a section clicked from the top level).
var ErrInvalidTransition = errors.New("no transition for node from current view")
