// fixtures_test.go provides an in-memory category collection used by the
// validator, tree, breadcrumb, navigation, and search tests.
package directory

import (
	"time"

	"github.com/google/uuid"

	"campusdir/internal/models"
)

// baseTime anchors deterministic created_at values; each fixture row is
// offset by its creation index so the tie-breaker ordering is observable.
var baseTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// memStore is an in-memory CategoryReader + ServiceCounter.
type memStore struct {
	categories []models.Category
	services   map[uuid.UUID][]models.Service
}

func (m *memStore) FindByID(id uuid.UUID) (*models.Category, error) {
	for i := range m.categories {
		if m.categories[i].ID == id {
			c := m.categories[i]
			return &c, nil
		}
	}
	return nil, nil
}

func (m *memStore) FindByName(name string, parentID *uuid.UUID) (*models.Category, error) {
	for i := range m.categories {
		c := m.categories[i]
		if c.Name != name {
			continue
		}
		if (c.ParentID == nil) != (parentID == nil) {
			continue
		}
		if c.ParentID != nil && *c.ParentID != *parentID {
			continue
		}
		return &c, nil
	}
	return nil, nil
}

func (m *memStore) CountByParent(parentID uuid.UUID) (int, error) {
	n := 0
	for _, c := range m.categories {
		if c.ParentID != nil && *c.ParentID == parentID {
			n++
		}
	}
	return n, nil
}

func (m *memStore) CountByCategory(categoryID uuid.UUID) (int, error) {
	return len(m.services[categoryID]), nil
}

// cat builds a category with a deterministic timestamp.
func cat(name string, t models.CategoryType, parentID *uuid.UUID, sortOrder, seq int) models.Category {
	return models.Category{
		ID:        uuid.New(),
		Name:      name,
		Type:      t,
		ParentID:  parentID,
		SortOrder: sortOrder,
		CreatedAt: baseTime.Add(time.Duration(seq) * time.Minute),
	}
}

// svc builds a service with a deterministic timestamp.
func svc(title string, categoryID uuid.UUID, sortOrder, seq int) models.Service {
	return models.Service{
		ID:         uuid.New(),
		CategoryID: categoryID,
		Title:      title,
		Status:     models.ServiceStatusActive,
		SortOrder:  sortOrder,
		CreatedAt:  baseTime.Add(time.Duration(seq) * time.Minute),
	}
}

// scenario builds the canonical three-category fixture:
// campus A with section B (service S1), general C (service S2).
type scenarioData struct {
	a, b, c models.Category
	s1, s2  models.Service
	flat    []models.Category
	svcMap  map[uuid.UUID][]models.Service
}

func scenario() scenarioData {
	a := cat("Campus A", models.CategoryTypeCampus, nil, 0, 0)
	b := cat("Section B", models.CategoryTypeSection, &a.ID, 0, 1)
	c := cat("General C", models.CategoryTypeGeneral, nil, 1, 2)
	s1 := svc("Service S1", b.ID, 0, 3)
	s2 := svc("Service S2", c.ID, 0, 4)

	return scenarioData{
		a: a, b: b, c: c, s1: s1, s2: s2,
		flat: []models.Category{a, b, c},
		svcMap: map[uuid.UUID][]models.Service{
			b.ID: {s1},
			c.ID: {s2},
		},
	}
}
