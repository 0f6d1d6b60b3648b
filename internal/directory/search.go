// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package directory

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"campusdir/internal/models"
)

// TypeFacet restricts top-level search candidates by root kind. It is a
// closed set validated at the boundary; sections are never top-level
// candidates so there is no section facet.
type TypeFacet string

const (
	FacetAll     TypeFacet = "all"
	FacetCampus  TypeFacet = "campus"
	FacetGeneral TypeFacet = "general"
)

// ParseTypeFacet validates a raw facet value. Empty input means all.
func ParseTypeFacet(s string) (TypeFacet, error) {
	switch TypeFacet(s) {
	case "", FacetAll:
		return FacetAll, nil
	case FacetCampus:
		return FacetCampus, nil
	case FacetGeneral:
		return FacetGeneral, nil
	}
	return "", &ValidationError{Reason: ReasonInvalidType, Message: fmt.Sprintf("unknown type facet %q", s)}
}

// Search narrows a flat snapshot by a free-text term and a type facet,
// ahead of tree building. Matching is a visibility predicate on the root
// container, not a content filter: a root survives when its own text, any
// of its sections, or any service anywhere in its subtree matches, and a
// surviving root keeps its full, unfiltered section list. Runs before
// BuildTree so a root whose only match is a nested service still appears.
func Search(term string, facet TypeFacet, flat []models.Category, services map[uuid.UUID][]models.Service) []models.Category {
	needle := strings.ToLower(strings.TrimSpace(term))

	childIDs := make(map[uuid.UUID][]int)
	byID := make(map[uuid.UUID]int, len(flat))
	for i, c := range flat {
		byID[c.ID] = i
	}
	for i, c := range flat {
		if c.ParentID != nil {
			if _, ok := byID[*c.ParentID]; ok {
				childIDs[*c.ParentID] = append(childIDs[*c.ParentID], i)
			}
		}
	}

	var out []models.Category
	for _, c := range flat {
		if c.ParentID != nil {
			continue
		}
		if !facetAllows(facet, c.Type) {
			continue
		}

		survives := needle == "" || subtreeMatches(needle, c, flat, childIDs, services)
		if !survives {
			continue
		}

		out = append(out, c)
		for _, idx := range childIDs[c.ID] {
			out = append(out, flat[idx])
		}
	}
	return out
}

// facetAllows reports whether a root of the given type is a candidate
// under the facet.
func facetAllows(facet TypeFacet, t models.CategoryType) bool {
	switch facet {
	case FacetCampus:
		return t == models.CategoryTypeCampus
	case FacetGeneral:
		return t == models.CategoryTypeGeneral
	default:
		return true
	}
}

// subtreeMatches reports whether the root, any of its children, or any
// service in the subtree contains the needle.
func subtreeMatches(needle string, root models.Category, flat []models.Category, childIDs map[uuid.UUID][]int, services map[uuid.UUID][]models.Service) bool {
	if categoryMatches(needle, root) || servicesMatch(needle, services[root.ID]) {
		return true
	}
	for _, idx := range childIDs[root.ID] {
		child := flat[idx]
		if categoryMatches(needle, child) || servicesMatch(needle, services[child.ID]) {
			return true
		}
	}
	return false
}

// categoryMatches checks a category's own name and description.
func categoryMatches(needle string, c models.Category) bool {
	return strings.Contains(strings.ToLower(c.Name), needle) ||
		strings.Contains(strings.ToLower(c.Description), needle)
}

// servicesMatch checks service titles, descriptions, and tags.
func servicesMatch(needle string, svcs []models.Service) bool {
	for _, s := range svcs {
		if strings.Contains(strings.ToLower(s.Title), needle) ||
			strings.Contains(strings.ToLower(s.Description), needle) {
			return true
		}
		for _, tag := range s.Tags {
			if strings.Contains(strings.ToLower(tag), needle) {
				return true
			}
		}
	}
	return false
}

// FilterServices narrows a flat service list by term and status, used by
// the flat service listing endpoint.
func FilterServices(term string, status *models.ServiceStatus, svcs []models.Service) []models.Service {
	needle := strings.ToLower(strings.TrimSpace(term))
	var out []models.Service
	for _, s := range svcs {
		if status != nil && s.Status != *status {
			continue
		}
		if needle != "" && !servicesMatch(needle, []models.Service{s}) {
			continue
		}
		out = append(out, s)
	}
	return out
}
