// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"campusdir/internal/models"
)

// ServiceStore manages service entries in the database.
type ServiceStore struct {
	db *sql.DB
}

// NewServiceStore returns a new ServiceStore.
func NewServiceStore(db *sql.DB) *ServiceStore {
	return &ServiceStore{db: db}
}

const serviceColumns = `id, category_id, title, description, tags, href, image, status, featured, sort_order, created_at, updated_at`

// scanService scans a row into a Service struct. Tags are stored as a
// jsonb array and unmarshaled on read.
func scanService(scanner interface{ Scan(...any) error }) (*models.Service, error) {
	var s models.Service
	var tags []byte
	err := scanner.Scan(
		&s.ID, &s.CategoryID, &s.Title, &s.Description, &tags,
		&s.Href, &s.Image, &s.Status, &s.Featured, &s.SortOrder,
		&s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(tags) > 0 {
		if err := json.Unmarshal(tags, &s.Tags); err != nil {
			return nil, fmt.Errorf("unmarshal tags: %w", err)
		}
	}
	if s.Tags == nil {
		s.Tags = []string{}
	}
	return &s, nil
}

// marshalTags encodes a tag list for the jsonb column; nil becomes [].
func marshalTags(tags []string) ([]byte, error) {
	if tags == nil {
		tags = []string{}
	}
	return json.Marshal(tags)
}

// ServiceFilter narrows List results.
type ServiceFilter struct {
	CategoryID *uuid.UUID
	Status     *models.ServiceStatus
	Featured   *bool
}

// List returns services matching the filter, ordered by (sort_order,
// created_at) within each category.
func (s *ServiceStore) List(f ServiceFilter) ([]models.Service, error) {
	query := `SELECT ` + serviceColumns + ` FROM services WHERE 1=1`
	var args []any
	n := 0
	next := func() string { n++; return fmt.Sprintf("$%d", n) }

	if f.CategoryID != nil {
		query += ` AND category_id = ` + next()
		args = append(args, *f.CategoryID)
	}
	if f.Status != nil {
		query += ` AND status = ` + next()
		args = append(args, *f.Status)
	}
	if f.Featured != nil {
		query += ` AND featured = ` + next()
		args = append(args, *f.Featured)
	}
	query += ` ORDER BY category_id, sort_order, created_at`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list services: %w", err)
	}
	defer rows.Close()

	var items []models.Service
	for rows.Next() {
		svc, err := scanService(rows)
		if err != nil {
			return nil, fmt.Errorf("scan service: %w", err)
		}
		items = append(items, *svc)
	}
	return items, rows.Err()
}

// MapByCategory returns all services grouped by category id, each group
// ordered by (sort_order, created_at). This is the snapshot shape the
// directory core consumes.
func (s *ServiceStore) MapByCategory() (map[uuid.UUID][]models.Service, error) {
	all, err := s.List(ServiceFilter{})
	if err != nil {
		return nil, err
	}
	grouped := make(map[uuid.UUID][]models.Service)
	for _, svc := range all {
		grouped[svc.CategoryID] = append(grouped[svc.CategoryID], svc)
	}
	return grouped, nil
}

// FindByID retrieves a service by ID. Returns nil if not found.
func (s *ServiceStore) FindByID(id uuid.UUID) (*models.Service, error) {
	row := s.db.QueryRow(`SELECT `+serviceColumns+` FROM services WHERE id = $1`, id)
	svc, err := scanService(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find service by id: %w", err)
	}
	return svc, nil
}

// CountByCategory returns how many services reference a category.
func (s *ServiceStore) CountByCategory(categoryID uuid.UUID) (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM services WHERE category_id = $1`, categoryID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count services: %w", err)
	}
	return count, nil
}

// Create inserts a new service and returns it.
func (s *ServiceStore) Create(svc *models.Service) (*models.Service, error) {
	tags, err := marshalTags(svc.Tags)
	if err != nil {
		return nil, fmt.Errorf("create service: %w", err)
	}

	row := s.db.QueryRow(`
		INSERT INTO services (category_id, title, description, tags, href, image, status, featured, sort_order)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING `+serviceColumns,
		svc.CategoryID, svc.Title, svc.Description, tags, svc.Href, svc.Image,
		svc.Status, svc.Featured, svc.SortOrder,
	)
	result, err := scanService(row)
	if err != nil {
		return nil, fmt.Errorf("create service: %w", err)
	}
	return result, nil
}

// Update modifies an existing service.
func (s *ServiceStore) Update(svc *models.Service) error {
	tags, err := marshalTags(svc.Tags)
	if err != nil {
		return fmt.Errorf("update service: %w", err)
	}

	_, err = s.db.Exec(`
		UPDATE services SET
			category_id = $1, title = $2, description = $3, tags = $4,
			href = $5, image = $6, status = $7, featured = $8, sort_order = $9,
			updated_at = NOW()
		WHERE id = $10
	`, svc.CategoryID, svc.Title, svc.Description, tags, svc.Href, svc.Image,
		svc.Status, svc.Featured, svc.SortOrder, svc.ID)
	if err != nil {
		return fmt.Errorf("update service: %w", err)
	}
	return nil
}

// Delete removes a service by ID.
func (s *ServiceStore) Delete(id uuid.UUID) error {
	_, err := s.db.Exec(`DELETE FROM services WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete service: %w", err)
	}
	return nil
}
