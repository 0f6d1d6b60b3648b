// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"campusdir/internal/cache"
	"campusdir/internal/directory"
	"campusdir/internal/models"
	"campusdir/internal/store"
)

// Public groups the read-only directory HTTP handlers.
type Public struct {
	categories *store.CategoryStore
	services   *store.ServiceStore
	snapshots  *cache.SnapshotCache
}

// NewPublic creates a new Public handler group. snapshots may be nil when
// Valkey is not configured; responses are then assembled on every request.
func NewPublic(categories *store.CategoryStore, services *store.ServiceStore, snapshots *cache.SnapshotCache) *Public {
	return &Public{
		categories: categories,
		services:   services,
		snapshots:  snapshots,
	}
}

// Categories serves the category collection. Without parameters it returns
// the flat list; tree=true nests children (and services with
// include_services=true), and q= switches to search mode where matching
// roots keep their full subtree.
func (p *Public) Categories(w http.ResponseWriter, r *http.Request) {
	if body, ok := p.cached(r); ok {
		w.Header().Set("Content-Type", "application/json")
		w.Write(body)
		return
	}

	q := r.URL.Query()

	// Search mode.
	if term := q.Get("q"); term != "" {
		facet, err := directory.ParseTypeFacet(q.Get("facet"))
		if err != nil {
			respondError(w, err)
			return
		}

		flat, err := p.categories.List(store.CategoryFilter{})
		if err != nil {
			respondError(w, &directory.StoreError{Op: "list categories", Err: err})
			return
		}
		services, err := p.services.MapByCategory()
		if err != nil {
			respondError(w, &directory.StoreError{Op: "map services", Err: err})
			return
		}

		results := directory.Search(term, facet, flat, services)
		p.respondCached(w, r, map[string]any{"categories": results, "total": len(results)})
		return
	}

	// Tree mode.
	if q.Get("tree") == "true" {
		opts := directory.TreeOptions{
			Depth:           directory.FullDepth,
			IncludeServices: q.Get("include_services") == "true",
		}
		if q.Get("depth") == "1" {
			opts.Depth = 1
		}

		flat, err := p.categories.List(store.CategoryFilter{})
		if err != nil {
			respondError(w, &directory.StoreError{Op: "list categories", Err: err})
			return
		}
		var services map[uuid.UUID][]models.Service
		if opts.IncludeServices {
			services, err = p.services.MapByCategory()
			if err != nil {
				respondError(w, &directory.StoreError{Op: "map services", Err: err})
				return
			}
		}

		roots := directory.BuildTree(flat, services, opts)
		p.respondCached(w, r, map[string]any{"categories": roots, "total": len(roots), "view": "tree"})
		return
	}

	// Flat mode with filters.
	filter := store.CategoryFilter{}
	if t := q.Get("type"); t != "" {
		ct := models.CategoryType(t)
		if !models.ValidCategoryType(ct) {
			badRequest(w, "unknown category type")
			return
		}
		filter.Type = &ct
	}
	if pid := q.Get("parent_id"); pid != "" {
		if pid == "null" {
			filter.RootsOnly = true
		} else {
			id, err := uuid.Parse(pid)
			if err != nil {
				badRequest(w, "invalid parent_id")
				return
			}
			filter.ParentID = &id
		}
	}
	if q.Get("featured") == "true" {
		featured := true
		filter.Featured = &featured
	}

	cats, err := p.categories.List(filter)
	if err != nil {
		respondError(w, &directory.StoreError{Op: "list categories", Err: err})
		return
	}

	if q.Get("include_children") == "true" {
		flat, err := p.categories.List(store.CategoryFilter{})
		if err != nil {
			respondError(w, &directory.StoreError{Op: "list categories", Err: err})
			return
		}
		for i := range cats {
			cats[i].Children = directory.ChildrenOf(cats[i].ID, flat)
		}
	}
	if q.Get("include_services") == "true" {
		services, err := p.services.MapByCategory()
		if err != nil {
			respondError(w, &directory.StoreError{Op: "map services", Err: err})
			return
		}
		for i := range cats {
			cats[i].Services = services[cats[i].ID]
		}
	}

	p.respondCached(w, r, map[string]any{"categories": cats, "total": len(cats)})
}

// Category serves a single category by ID, optionally with its children
// and services attached.
func (p *Public) Category(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		badRequest(w, "invalid category id")
		return
	}

	cat, err := p.categories.FindByID(id)
	if err != nil {
		respondError(w, &directory.StoreError{Op: "find category", Err: err})
		return
	}
	if cat == nil {
		respondError(w, &directory.NotFoundError{Entity: "category", ID: id})
		return
	}

	q := r.URL.Query()
	if q.Get("include_children") == "true" {
		flat, err := p.categories.List(store.CategoryFilter{})
		if err != nil {
			respondError(w, &directory.StoreError{Op: "list categories", Err: err})
			return
		}
		cat.Children = directory.ChildrenOf(cat.ID, flat)
	}
	if q.Get("include_services") == "true" {
		svcs, err := p.services.List(store.ServiceFilter{CategoryID: &cat.ID})
		if err != nil {
			respondError(w, &directory.StoreError{Op: "list services", Err: err})
			return
		}
		cat.Services = svcs
	}

	respondJSON(w, http.StatusOK, cat)
}

// Breadcrumb serves the root-to-node path for a category. Nodes whose
// ancestors are missing from the snapshot get the partial path that could
// be resolved.
func (p *Public) Breadcrumb(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		badRequest(w, "invalid category id")
		return
	}

	cat, err := p.categories.FindByID(id)
	if err != nil {
		respondError(w, &directory.StoreError{Op: "find category", Err: err})
		return
	}
	if cat == nil {
		respondError(w, &directory.NotFoundError{Entity: "category", ID: id})
		return
	}

	flat, err := p.categories.List(store.CategoryFilter{})
	if err != nil {
		respondError(w, &directory.StoreError{Op: "list categories", Err: err})
		return
	}

	path, err := directory.ResolvePath(cat, flat)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"path": path})
}

// Browse serves the navigation state machine. The at parameter positions
// the view (empty means the top level); the click parameter then attempts a
// transition from that view. Undefined transitions are 400s; unknown nodes
// are 404s.
func (p *Public) Browse(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var at *uuid.UUID
	if s := q.Get("at"); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			badRequest(w, "invalid at parameter")
			return
		}
		at = &id
	}

	flat, err := p.categories.List(store.CategoryFilter{})
	if err != nil {
		respondError(w, &directory.StoreError{Op: "list categories", Err: err})
		return
	}
	services, err := p.services.MapByCategory()
	if err != nil {
		respondError(w, &directory.StoreError{Op: "map services", Err: err})
		return
	}

	var seq uint64
	if p.snapshots != nil {
		if s, err := p.snapshots.Seq(r.Context()); err == nil {
			seq = s
		}
	}

	ctrl := directory.NewController()
	ctrl.ApplySnapshot(seq, flat, services)

	if at != nil {
		if err := ctrl.ClickBreadcrumb(at); err != nil {
			respondError(w, err)
			return
		}
	}

	if s := q.Get("click"); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			badRequest(w, "invalid click parameter")
			return
		}
		if err := ctrl.Click(id); err != nil {
			respondError(w, err)
			return
		}
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"view":       directory.ViewName(ctrl.View()),
		"seq":        ctrl.Seq(),
		"breadcrumb": ctrl.Breadcrumb(),
		"categories": ctrl.DisplayedCategories(),
		"services":   ctrl.DisplayedServices(),
	})
}

// Services serves the flat service collection with optional filters. The q
// parameter narrows by title, description, and tags.
func (p *Public) Services(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := store.ServiceFilter{}
	if cid := q.Get("category_id"); cid != "" {
		id, err := uuid.Parse(cid)
		if err != nil {
			badRequest(w, "invalid category_id")
			return
		}
		filter.CategoryID = &id
	}
	var statusFilter *models.ServiceStatus
	if s := q.Get("status"); s != "" {
		status := models.ServiceStatus(s)
		if !models.ValidServiceStatus(status) {
			badRequest(w, "unknown service status")
			return
		}
		filter.Status = &status
		statusFilter = &status
	}
	if q.Get("featured") == "true" {
		featured := true
		filter.Featured = &featured
	}

	svcs, err := p.services.List(filter)
	if err != nil {
		respondError(w, &directory.StoreError{Op: "list services", Err: err})
		return
	}

	if term := q.Get("q"); term != "" {
		svcs = directory.FilterServices(term, statusFilter, svcs)
	}

	respondJSON(w, http.StatusOK, map[string]any{"services": svcs, "total": len(svcs)})
}

// cached returns the cached body for this request if one exists.
func (p *Public) cached(r *http.Request) ([]byte, bool) {
	if p.snapshots == nil {
		return nil, false
	}
	return p.snapshots.Get(r.Context(), cacheKey(r))
}

// respondCached writes the response and stores it for later requests.
func (p *Public) respondCached(w http.ResponseWriter, r *http.Request, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		respondError(w, err)
		return
	}
	if p.snapshots != nil {
		p.snapshots.Set(r.Context(), cacheKey(r), buf.Bytes())
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(buf.Bytes())
}

// cacheKey derives the Valkey key for a public GET from its path and query.
func cacheKey(r *http.Request) string {
	if r.URL.RawQuery == "" {
		return r.URL.Path
	}
	return r.URL.Path + "?" + r.URL.RawQuery
}
