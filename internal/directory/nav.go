// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package directory

import (
	"github.com/google/uuid"

	"campusdir/internal/models"
)

// View is the current browse position, a closed union of three variants.
// A services view always carries its category; the illegal "leaf view with
// no current node" state cannot be constructed.
type View interface {
	viewName() string
}

// TopView is the initial state: the root category listing.
type TopView struct{}

// CampusView shows the sections of a campus.
type CampusView struct {
	Current models.Category
}

// ServicesView shows the services of a section or general category.
type ServicesView struct {
	Current models.Category
}

func (TopView) viewName() string      { return "top" }
func (CampusView) viewName() string   { return "campus" }
func (ServicesView) viewName() string { return "services" }

// ViewName returns the wire name of a view state.
func ViewName(v View) string {
	return v.viewName()
}

// Controller is the browse state machine. It holds the most recent flat
// snapshot and derives the displayed node set and breadcrumb from it on
// every transition. Transitions are synchronous: any fetch a transition
// depends on must already be applied via ApplySnapshot.
type Controller struct {
	view     View
	seq      uint64
	flat     []models.Category
	services map[uuid.UUID][]models.Service

	breadcrumb      []models.Summary
	shownCategories []models.Category
	shownServices   []models.Service
}

// NewController returns a controller in the top-level view with an empty
// snapshot.
func NewController() *Controller {
	c := &Controller{view: TopView{}}
	c.recompute()
	return c
}

// ApplySnapshot installs a fetched flat collection. Responses are ordered
// by a monotonic sequence number: a payload older than the last applied one
// is discarded, so a late-arriving fetch cannot overwrite newer state.
// Returns false when the snapshot was discarded as stale.
func (c *Controller) ApplySnapshot(seq uint64, flat []models.Category, services map[uuid.UUID][]models.Service) bool {
	if seq < c.seq {
		return false
	}
	c.seq = seq
	c.flat = flat
	c.services = services

	// The current node may have changed or vanished in the new snapshot;
	// re-resolve it so the projection reflects live data.
	switch v := c.view.(type) {
	case CampusView:
		if cur := c.find(v.Current.ID); cur != nil {
			c.view = CampusView{Current: *cur}
		} else {
			c.view = TopView{}
		}
	case ServicesView:
		if cur := c.find(v.Current.ID); cur != nil {
			c.view = ServicesView{Current: *cur}
		} else {
			c.view = TopView{}
		}
	}
	c.recompute()
	return true
}

// Seq returns the sequence number of the applied snapshot.
func (c *Controller) Seq() uint64 {
	return c.seq
}

// Click applies the transition for a user click on a tree node.
// From the top level, a campus opens its section list and a general
// category opens its services. From a campus view, one of its own sections
// opens that section's services. Any other click is rejected and leaves
// the state unchanged.
func (c *Controller) Click(id uuid.UUID) error {
	node := c.find(id)
	if node == nil {
		return &NotFoundError{Entity: "category", ID: id}
	}

	switch v := c.view.(type) {
	case TopView:
		switch node.Type {
		case models.CategoryTypeCampus:
			c.view = CampusView{Current: *node}
		case models.CategoryTypeGeneral:
			c.view = ServicesView{Current: *node}
		default:
			return ErrInvalidTransition
		}
	case CampusView:
		if node.Type != models.CategoryTypeSection || node.ParentID == nil || *node.ParentID != v.Current.ID {
			return ErrInvalidTransition
		}
		c.view = ServicesView{Current: *node}
	default:
		return ErrInvalidTransition
	}

	c.recompute()
	return nil
}

// ClickBreadcrumb jumps to a breadcrumb entry. A nil id is the home link
// and returns to the top level; otherwise the target's type decides the
// view: campus opens its sections, section and general open their services.
func (c *Controller) ClickBreadcrumb(id *uuid.UUID) error {
	if id == nil {
		c.view = TopView{}
		c.recompute()
		return nil
	}

	node := c.find(*id)
	if node == nil {
		return &NotFoundError{Entity: "category", ID: *id}
	}

	if node.Type == models.CategoryTypeCampus {
		c.view = CampusView{Current: *node}
	} else {
		c.view = ServicesView{Current: *node}
	}
	c.recompute()
	return nil
}

// View returns the current view variant.
func (c *Controller) View() View {
	return c.view
}

// Breadcrumb returns the path for the current view, derived from the
// snapshot applied most recently (not from click time).
func (c *Controller) Breadcrumb() []models.Summary {
	return c.breadcrumb
}

// DisplayedCategories returns the category set the current view shows:
// roots at the top level, sections in a campus view, nothing in a services
// view.
func (c *Controller) DisplayedCategories() []models.Category {
	return c.shownCategories
}

// DisplayedServices returns the service set of a services view, or nil.
func (c *Controller) DisplayedServices() []models.Service {
	return c.shownServices
}

// recompute re-derives breadcrumb and displayed sets from the current
// snapshot. Runs on every transition and snapshot application.
func (c *Controller) recompute() {
	var current *models.Category
	switch v := c.view.(type) {
	case CampusView:
		cur := v.Current
		current = &cur
	case ServicesView:
		cur := v.Current
		current = &cur
	}

	// The parent chain is two levels deep; ResolvePath can only fail on a
	// malformed snapshot, in which case the partial-path contract does not
	// apply and an empty breadcrumb is the safe projection.
	path, err := ResolvePath(current, c.flat)
	if err != nil {
		path = []models.Summary{}
	}
	c.breadcrumb = path

	switch v := c.view.(type) {
	case TopView:
		c.shownCategories = Roots(c.flat)
		c.shownServices = nil
	case CampusView:
		c.shownCategories = ChildrenOf(v.Current.ID, c.flat)
		c.shownServices = nil
	case ServicesView:
		c.shownCategories = nil
		svcs := append([]models.Service(nil), c.services[v.Current.ID]...)
		sortServices(svcs)
		c.shownServices = svcs
	}
}

// find looks up a category by id in the applied snapshot.
func (c *Controller) find(id uuid.UUID) *models.Category {
	for i := range c.flat {
		if c.flat[i].ID == id {
			return &c.flat[i]
		}
	}
	return nil
}
