// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package directory

import (
	"sort"

	"github.com/google/uuid"

	"campusdir/internal/models"
)

// TreeOptions parameterizes tree materialization. Both retrieval modes of
// the HTTP layer route through BuildTree so their ordering can never diverge.
type TreeOptions struct {
	// Depth bounds child attachment: 0 attaches no children, 1 attaches
	// direct children only, FullDepth nests to the structural limit.
	Depth int

	// IncludeServices attaches each node's service list.
	IncludeServices bool
}

// FullDepth nests categories to the structural limit of the hierarchy.
// The forest is two levels deep (root, section), so this caps recursion
// rather than trusting every row to honor the depth invariant.
const FullDepth = 2

// BuildTree materializes a flat snapshot of category rows into a forest.
// Roots are all categories with no parent; children attach via a parent-id
// index in O(n). Sibling lists and service lists come out sorted by
// (sort_order, created_at) at every level.
//
// Rows whose parent id references a missing category are excluded from the
// nested result. They remain retrievable through flat listings; dropping
// them here keeps the read path alive when referential state is stale.
func BuildTree(flat []models.Category, services map[uuid.UUID][]models.Service, opts TreeOptions) []models.Category {
	byID := make(map[uuid.UUID]int, len(flat))
	for i, c := range flat {
		byID[c.ID] = i
	}

	childIDs := make(map[uuid.UUID][]uuid.UUID)
	var roots []models.Category
	for _, c := range flat {
		if c.ParentID == nil {
			roots = append(roots, c)
			continue
		}
		if _, ok := byID[*c.ParentID]; !ok {
			continue // orphan row: parent not in this snapshot
		}
		childIDs[*c.ParentID] = append(childIDs[*c.ParentID], c.ID)
	}

	sortCategories(roots)
	for i := range roots {
		attach(&roots[i], flat, byID, childIDs, services, opts, opts.Depth)
	}
	return roots
}

// attach fills a node's services and, while depth remains, its child list.
func attach(node *models.Category, flat []models.Category, byID map[uuid.UUID]int, childIDs map[uuid.UUID][]uuid.UUID, services map[uuid.UUID][]models.Service, opts TreeOptions, depth int) {
	if opts.IncludeServices {
		svcs := append([]models.Service(nil), services[node.ID]...)
		sortServices(svcs)
		if svcs == nil {
			svcs = []models.Service{}
		}
		node.Services = svcs
	}

	if depth <= 0 {
		return
	}

	ids := childIDs[node.ID]
	children := make([]models.Category, 0, len(ids))
	for _, id := range ids {
		children = append(children, flat[byID[id]])
	}
	sortCategories(children)
	for i := range children {
		attach(&children[i], flat, byID, childIDs, services, opts, depth-1)
	}
	node.Children = children
}

// Roots returns the root categories of a flat snapshot sorted by the
// sibling ordering contract, without attaching anything.
func Roots(flat []models.Category) []models.Category {
	var roots []models.Category
	for _, c := range flat {
		if c.ParentID == nil {
			roots = append(roots, c)
		}
	}
	sortCategories(roots)
	return roots
}

// ChildrenOf returns the direct children of parentID, sorted.
func ChildrenOf(parentID uuid.UUID, flat []models.Category) []models.Category {
	var children []models.Category
	for _, c := range flat {
		if c.ParentID != nil && *c.ParentID == parentID {
			children = append(children, c)
		}
	}
	sortCategories(children)
	return children
}

// sortCategories orders a sibling set by (sort_order asc, created_at asc).
// created_at is the stable tie-breaker; the sort itself is stable so equal
// rows keep their input order.
func sortCategories(cats []models.Category) {
	sort.SliceStable(cats, func(i, j int) bool {
		if cats[i].SortOrder != cats[j].SortOrder {
			return cats[i].SortOrder < cats[j].SortOrder
		}
		return cats[i].CreatedAt.Before(cats[j].CreatedAt)
	})
}

// sortServices orders a service sibling set by (sort_order asc, created_at asc).
func sortServices(svcs []models.Service) {
	sort.SliceStable(svcs, func(i, j int) bool {
		if svcs[i].SortOrder != svcs[j].SortOrder {
			return svcs[i].SortOrder < svcs[j].SortOrder
		}
		return svcs[i].CreatedAt.Before(svcs[j].CreatedAt)
	})
}
