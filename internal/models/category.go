// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// CategoryType distinguishes the three kinds of category nodes.
// Campus and general categories are roots; sections live under a campus.
type CategoryType string

const (
	CategoryTypeCampus  CategoryType = "campus"
	CategoryTypeSection CategoryType = "section"
	CategoryTypeGeneral CategoryType = "general"
)

// ValidCategoryType reports whether t is one of the closed set of category types.
func ValidCategoryType(t CategoryType) bool {
	switch t {
	case CategoryTypeCampus, CategoryTypeSection, CategoryTypeGeneral:
		return true
	}
	return false
}

// Category is a node in the two-level directory forest. A campus or general
// category is a root (ParentID nil); a section must reference a campus parent.
type Category struct {
	ID          uuid.UUID    `json:"id"`
	Name        string       `json:"name"`
	Type        CategoryType `json:"type"`
	ParentID    *uuid.UUID   `json:"parent_id"`
	Color       string       `json:"color"`
	Icon        string       `json:"icon"`
	Description string       `json:"description"`
	Featured    bool         `json:"featured"`
	SortOrder   int          `json:"sort_order"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`

	// Virtual fields populated by the tree builder or include joins.
	Children []Category `json:"children,omitempty"`
	Services []Service  `json:"services,omitempty"`
}

// IsRoot returns true for categories with no parent.
func (c *Category) IsRoot() bool {
	return c.ParentID == nil
}

// Summary is the reduced category shape used in breadcrumb paths.
type Summary struct {
	ID   uuid.UUID    `json:"id"`
	Name string       `json:"name"`
	Type CategoryType `json:"type"`
	Icon string       `json:"icon"`
}

// Summarize returns the breadcrumb summary of a category.
func (c *Category) Summarize() Summary {
	return Summary{ID: c.ID, Name: c.Name, Type: c.Type, Icon: c.Icon}
}
