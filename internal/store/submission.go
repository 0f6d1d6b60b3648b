// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"campusdir/internal/models"
)

// SubmissionStore manages public resource suggestions.
type SubmissionStore struct {
	db *sql.DB
}

// NewSubmissionStore returns a new SubmissionStore.
func NewSubmissionStore(db *sql.DB) *SubmissionStore {
	return &SubmissionStore{db: db}
}

const submissionColumns = `id, name, email, title, description, href, category_id, status, created_at, resolved_at`

func scanSubmission(scanner interface{ Scan(...any) error }) (*models.Submission, error) {
	var sub models.Submission
	err := scanner.Scan(
		&sub.ID, &sub.Name, &sub.Email, &sub.Title, &sub.Description,
		&sub.Href, &sub.CategoryID, &sub.Status, &sub.CreatedAt, &sub.ResolvedAt,
	)
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// Create inserts a new pending submission and returns it.
func (s *SubmissionStore) Create(sub *models.Submission) (*models.Submission, error) {
	row := s.db.QueryRow(`
		INSERT INTO submissions (name, email, title, description, href, category_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+submissionColumns,
		sub.Name, sub.Email, sub.Title, sub.Description, sub.Href, sub.CategoryID,
	)
	result, err := scanSubmission(row)
	if err != nil {
		return nil, fmt.Errorf("create submission: %w", err)
	}
	return result, nil
}

// FindByID retrieves a submission by ID. Returns nil if not found.
func (s *SubmissionStore) FindByID(id uuid.UUID) (*models.Submission, error) {
	row := s.db.QueryRow(`SELECT `+submissionColumns+` FROM submissions WHERE id = $1`, id)
	sub, err := scanSubmission(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find submission by id: %w", err)
	}
	return sub, nil
}

// List returns submissions, optionally restricted to one status, newest first.
func (s *SubmissionStore) List(status *models.SubmissionStatus) ([]models.Submission, error) {
	query := `SELECT ` + submissionColumns + ` FROM submissions`
	var args []any
	if status != nil {
		query += ` WHERE status = $1`
		args = append(args, *status)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	defer rows.Close()

	var items []models.Submission
	for rows.Next() {
		sub, err := scanSubmission(rows)
		if err != nil {
			return nil, fmt.Errorf("scan submission: %w", err)
		}
		items = append(items, *sub)
	}
	return items, rows.Err()
}

// Resolve marks a submission accepted or rejected and stamps resolved_at.
func (s *SubmissionStore) Resolve(id uuid.UUID, status models.SubmissionStatus) error {
	_, err := s.db.Exec(`
		UPDATE submissions SET status = $1, resolved_at = NOW() WHERE id = $2
	`, status, id)
	if err != nil {
		return fmt.Errorf("resolve submission: %w", err)
	}
	return nil
}

// CountPending returns the number of submissions awaiting review.
func (s *SubmissionStore) CountPending() (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM submissions WHERE status = 'pending'`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count pending submissions: %w", err)
	}
	return count, nil
}
