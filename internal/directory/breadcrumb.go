// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package directory

import (
	"github.com/google/uuid"

	"campusdir/internal/models"
)

// maxPathDepth caps breadcrumb traversal. The hierarchy is two levels deep,
// so any walk longer than this means a malformed parent chain.
const maxPathDepth = 8

// ResolvePath reconstructs the root-to-target breadcrumb by walking parent
// references through the flat snapshot. A nil target yields an empty path
// (the home view). A parent missing from the snapshot ends the walk and
// returns the partial path: momentarily inconsistent or filtered data is
// not an error. Exceeding the traversal cap returns ErrPathTooDeep.
func ResolvePath(target *models.Category, flat []models.Category) ([]models.Summary, error) {
	if target == nil {
		return []models.Summary{}, nil
	}

	byID := make(map[uuid.UUID]*models.Category, len(flat))
	for i := range flat {
		byID[flat[i].ID] = &flat[i]
	}

	path := []models.Summary{target.Summarize()}
	current := target
	for current.ParentID != nil {
		if len(path) >= maxPathDepth {
			return nil, ErrPathTooDeep
		}
		parent, ok := byID[*current.ParentID]
		if !ok {
			break // stale or filtered snapshot: return what we have
		}
		path = append([]models.Summary{parent.Summarize()}, path...)
		current = parent
	}
	return path, nil
}
