// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// ServiceStatus represents the availability state of a service entry.
type ServiceStatus string

const (
	ServiceStatusActive      ServiceStatus = "active"
	ServiceStatusComingSoon  ServiceStatus = "coming-soon"
	ServiceStatusMaintenance ServiceStatus = "maintenance"
)

// ValidServiceStatus reports whether s is one of the closed set of statuses.
func ValidServiceStatus(s ServiceStatus) bool {
	switch s {
	case ServiceStatusActive, ServiceStatusComingSoon, ServiceStatusMaintenance:
		return true
	}
	return false
}

// Service is a leaf resource entry (a link, tool, or card) belonging to
// exactly one category.
type Service struct {
	ID          uuid.UUID     `json:"id"`
	CategoryID  uuid.UUID     `json:"category_id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Tags        []string      `json:"tags"`
	Href        *string       `json:"href,omitempty"`
	Image       *string       `json:"image,omitempty"`
	Status      ServiceStatus `json:"status"`
	Featured    bool          `json:"featured"`
	SortOrder   int           `json:"sort_order"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// HasTag reports whether the service carries the given tag (exact match).
func (s *Service) HasTag(tag string) bool {
	for _, t := range s.Tags {
		if t == tag {
			return true
		}
	}
	return false
}
