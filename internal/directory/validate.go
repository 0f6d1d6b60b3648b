// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package directory

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"campusdir/internal/models"
)

// CategoryReader is the subset of the category store the validator consults.
type CategoryReader interface {
	FindByID(id uuid.UUID) (*models.Category, error)
	FindByName(name string, parentID *uuid.UUID) (*models.Category, error)
	CountByParent(parentID uuid.UUID) (int, error)
}

// ServiceCounter reports how many services reference a category.
type ServiceCounter interface {
	CountByCategory(categoryID uuid.UUID) (int, error)
}

// Validator gates every category mutation. It checks the structural
// invariants against the current collection and never mutates the store.
type Validator struct {
	categories CategoryReader
	services   ServiceCounter
}

// NewValidator returns a Validator backed by the given store readers.
func NewValidator(categories CategoryReader, services ServiceCounter) *Validator {
	return &Validator{categories: categories, services: services}
}

// CategoryInput is a candidate category for creation.
type CategoryInput struct {
	Name     string
	Type     models.CategoryType
	ParentID *uuid.UUID
}

// CategoryPatch is a partial update. Pointer fields are applied only when
// non-nil; ParentIDSet distinguishes "clear the parent" from "leave it alone".
type CategoryPatch struct {
	Name        *string
	Type        *models.CategoryType
	ParentID    *uuid.UUID
	ParentIDSet bool
	Color       *string
	Icon        *string
	Description *string
	Featured    *bool
	SortOrder   *int
}

// ValidateCreate checks a candidate against the structural invariants:
// the name must be non-empty, the type must be one of the closed enum,
// campus and general categories must be roots, sections must reference an
// existing campus parent, and the name must be unique among siblings.
func (v *Validator) ValidateCreate(in CategoryInput) error {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return &ValidationError{Reason: ReasonMissingName, Message: "name is required"}
	}
	if !models.ValidCategoryType(in.Type) {
		return &ValidationError{Reason: ReasonInvalidType, Message: fmt.Sprintf("unknown category type %q", in.Type)}
	}

	if err := v.checkStructure(in.Type, in.ParentID); err != nil {
		return err
	}

	return v.checkNameUnique(name, in.ParentID, nil)
}

// ValidateUpdate re-runs the applicable invariants for the fields present in
// the patch. Name uniqueness is checked against the post-patch parent.
func (v *Validator) ValidateUpdate(id uuid.UUID, patch CategoryPatch) error {
	current, err := v.categories.FindByID(id)
	if err != nil {
		return &StoreError{Op: "find category", Err: err}
	}
	if current == nil {
		return &NotFoundError{Entity: "category", ID: id}
	}

	// Effective values after applying the patch.
	effType := current.Type
	if patch.Type != nil {
		if !models.ValidCategoryType(*patch.Type) {
			return &ValidationError{Reason: ReasonInvalidType, Message: fmt.Sprintf("unknown category type %q", *patch.Type)}
		}
		effType = *patch.Type
	}
	effParent := current.ParentID
	if patch.ParentIDSet {
		effParent = patch.ParentID
	}

	if patch.Type != nil || patch.ParentIDSet {
		if err := v.checkStructure(effType, effParent); err != nil {
			return err
		}
	}

	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return &ValidationError{Reason: ReasonMissingName, Message: "name is required"}
		}
		if name != current.Name {
			if err := v.checkNameUnique(name, effParent, &id); err != nil {
				return err
			}
		}
	}

	return nil
}

// ValidateDelete blocks deletion while any service references the category
// or any category still has it as a parent.
func (v *Validator) ValidateDelete(id uuid.UUID) error {
	current, err := v.categories.FindByID(id)
	if err != nil {
		return &StoreError{Op: "find category", Err: err}
	}
	if current == nil {
		return &NotFoundError{Entity: "category", ID: id}
	}

	svcCount, err := v.services.CountByCategory(id)
	if err != nil {
		return &StoreError{Op: "count services", Err: err}
	}
	if svcCount > 0 {
		return &ConflictError{Message: fmt.Sprintf("category has %d services; move or delete them first", svcCount)}
	}

	childCount, err := v.categories.CountByParent(id)
	if err != nil {
		return &StoreError{Op: "count children", Err: err}
	}
	if childCount > 0 {
		return &ConflictError{Message: fmt.Sprintf("category has %d child categories; move or delete them first", childCount)}
	}

	return nil
}

// checkStructure enforces the parent rules per category type.
func (v *Validator) checkStructure(t models.CategoryType, parentID *uuid.UUID) error {
	switch t {
	case models.CategoryTypeCampus:
		if parentID != nil {
			return &ValidationError{Reason: ReasonCampusWithParent, Message: "a campus category cannot have a parent"}
		}
	case models.CategoryTypeGeneral:
		if parentID != nil {
			return &ValidationError{Reason: ReasonGeneralWithParent, Message: "a general category cannot have a parent"}
		}
	case models.CategoryTypeSection:
		if parentID == nil {
			return &ValidationError{Reason: ReasonSectionWithoutParent, Message: "a section requires a campus parent"}
		}
		parent, err := v.categories.FindByID(*parentID)
		if err != nil {
			return &StoreError{Op: "find parent", Err: err}
		}
		if parent == nil {
			return &ValidationError{Reason: ReasonParentNotFound, Message: fmt.Sprintf("parent category %s does not exist", parentID)}
		}
		if parent.Type != models.CategoryTypeCampus {
			return &ValidationError{Reason: ReasonParentNotCampus, Message: fmt.Sprintf("parent category is %q, sections require a campus", parent.Type)}
		}
	}
	return nil
}

// checkNameUnique enforces sibling-name uniqueness. The scope is the
// parent_id value only, not the type: all roots share one namespace.
// exclude skips the category being updated.
func (v *Validator) checkNameUnique(name string, parentID *uuid.UUID, exclude *uuid.UUID) error {
	existing, err := v.categories.FindByName(name, parentID)
	if err != nil {
		return &StoreError{Op: "find by name", Err: err}
	}
	if existing != nil && (exclude == nil || existing.ID != *exclude) {
		return &ConflictError{
			Reason:  ReasonDuplicateName,
			Message: fmt.Sprintf("a category named %q already exists under the same parent", name),
		}
	}
	return nil
}

// ValidateServiceInput checks the fields of a service create/update that
// are not foreign-key checks: title presence, status enum, and href shape.
func ValidateServiceInput(title string, status models.ServiceStatus, href *string) error {
	if strings.TrimSpace(title) == "" {
		return &ValidationError{Reason: ReasonMissingName, Message: "title is required"}
	}
	if !models.ValidServiceStatus(status) {
		return &ValidationError{Reason: ReasonInvalidType, Message: fmt.Sprintf("unknown service status %q", status)}
	}
	if href != nil && *href != "" {
		u, err := url.Parse(*href)
		if err != nil || !u.IsAbs() || u.Host == "" {
			return &ValidationError{Reason: ReasonInvalidType, Message: "href must be a well-formed absolute URL"}
		}
	}
	return nil
}
