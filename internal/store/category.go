// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package store provides database access methods for all CampusDir
// entities. Each store struct wraps a *sql.DB and exposes typed query methods.
package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"campusdir/internal/models"
)

// CategoryStore manages categories in the database.
type CategoryStore struct {
	db *sql.DB
}

// NewCategoryStore returns a new CategoryStore.
func NewCategoryStore(db *sql.DB) *CategoryStore {
	return &CategoryStore{db: db}
}

const categoryColumns = `id, name, type, parent_id, color, icon, description, featured, sort_order, created_at, updated_at`

// scanCategory scans a row into a Category struct.
func scanCategory(scanner interface{ Scan(...any) error }) (*models.Category, error) {
	var c models.Category
	err := scanner.Scan(
		&c.ID, &c.Name, &c.Type, &c.ParentID, &c.Color, &c.Icon,
		&c.Description, &c.Featured, &c.SortOrder, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// CategoryFilter narrows List results. Nil fields mean "no restriction";
// RootsOnly selects categories with no parent (the literal null filter).
type CategoryFilter struct {
	Type      *models.CategoryType
	ParentID  *uuid.UUID
	RootsOnly bool
	Featured  *bool
}

// List returns the flat category collection matching the filter, ordered by
// (sort_order, created_at) so the database and the in-memory tree agree on
// sibling order.
func (s *CategoryStore) List(f CategoryFilter) ([]models.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories WHERE 1=1`
	var args []any
	n := 0
	next := func() string { n++; return fmt.Sprintf("$%d", n) }

	if f.Type != nil {
		query += ` AND type = ` + next()
		args = append(args, *f.Type)
	}
	if f.RootsOnly {
		query += ` AND parent_id IS NULL`
	} else if f.ParentID != nil {
		query += ` AND parent_id = ` + next()
		args = append(args, *f.ParentID)
	}
	if f.Featured != nil {
		query += ` AND featured = ` + next()
		args = append(args, *f.Featured)
	}
	query += ` ORDER BY sort_order, created_at`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var items []models.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		items = append(items, *c)
	}
	return items, rows.Err()
}

// FindByID retrieves a category by ID. Returns nil if not found.
func (s *CategoryStore) FindByID(id uuid.UUID) (*models.Category, error) {
	row := s.db.QueryRow(`SELECT `+categoryColumns+` FROM categories WHERE id = $1`, id)
	c, err := scanCategory(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find category by id: %w", err)
	}
	return c, nil
}

// FindByName retrieves a category by name within a sibling set (same
// parent_id value, with nil meaning the root namespace). Returns nil if
// not found.
func (s *CategoryStore) FindByName(name string, parentID *uuid.UUID) (*models.Category, error) {
	var row *sql.Row
	if parentID == nil {
		row = s.db.QueryRow(`SELECT `+categoryColumns+` FROM categories WHERE name = $1 AND parent_id IS NULL`, name)
	} else {
		row = s.db.QueryRow(`SELECT `+categoryColumns+` FROM categories WHERE name = $1 AND parent_id = $2`, name, *parentID)
	}
	c, err := scanCategory(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find category by name: %w", err)
	}
	return c, nil
}

// CountByParent returns how many categories have the given parent.
func (s *CategoryStore) CountByParent(parentID uuid.UUID) (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM categories WHERE parent_id = $1`, parentID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count children: %w", err)
	}
	return count, nil
}

// Create inserts a new category and returns it.
func (s *CategoryStore) Create(c *models.Category) (*models.Category, error) {
	row := s.db.QueryRow(`
		INSERT INTO categories (name, type, parent_id, color, icon, description, featured, sort_order)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+categoryColumns,
		c.Name, c.Type, c.ParentID, c.Color, c.Icon, c.Description, c.Featured, c.SortOrder,
	)
	result, err := scanCategory(row)
	if err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	return result, nil
}

// Update modifies an existing category.
func (s *CategoryStore) Update(c *models.Category) error {
	_, err := s.db.Exec(`
		UPDATE categories SET
			name = $1, type = $2, parent_id = $3, color = $4, icon = $5,
			description = $6, featured = $7, sort_order = $8, updated_at = NOW()
		WHERE id = $9
	`, c.Name, c.Type, c.ParentID, c.Color, c.Icon, c.Description, c.Featured, c.SortOrder, c.ID)
	if err != nil {
		return fmt.Errorf("update category: %w", err)
	}
	return nil
}

// Delete removes a category by ID. The schema restricts deletion while
// services or child categories still reference it; validation rejects such
// deletes before they reach here.
func (s *CategoryStore) Delete(id uuid.UUID) error {
	_, err := s.db.Exec(`DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	return nil
}

// NextSortOrder returns the next sort_order value for a given sibling set.
func (s *CategoryStore) NextSortOrder(parentID *uuid.UUID) (int, error) {
	var maxOrder sql.NullInt64
	var err error
	if parentID == nil {
		err = s.db.QueryRow(`SELECT MAX(sort_order) FROM categories WHERE parent_id IS NULL`).Scan(&maxOrder)
	} else {
		err = s.db.QueryRow(`SELECT MAX(sort_order) FROM categories WHERE parent_id = $1`, *parentID).Scan(&maxOrder)
	}
	if err != nil {
		return 0, err
	}
	if maxOrder.Valid {
		return int(maxOrder.Int64) + 1, nil
	}
	return 0, nil
}
