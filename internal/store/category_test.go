package store

import (
	"testing"

	"github.com/google/uuid"

	"campusdir/internal/models"
)

func TestCategoryStoreCreateAndFind(t *testing.T) {
	db := testDB(t)
	s := NewCategoryStore(db)

	name := "Test Campus " + uuid.NewString()[:8]
	t.Cleanup(func() { cleanCategories(t, db, name) })

	created, err := s.Create(&models.Category{
		Name:  name,
		Type:  models.CategoryTypeCampus,
		Color: "#1d4ed8",
		Icon:  "building",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if created.ID == uuid.Nil {
		t.Error("expected non-nil UUID")
	}
	if created.Type != models.CategoryTypeCampus {
		t.Errorf("type: got %q, want %q", created.Type, models.CategoryTypeCampus)
	}
	if created.ParentID != nil {
		t.Error("expected nil parent for campus")
	}

	found, err := s.FindByID(created.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if found == nil {
		t.Fatal("expected category, got nil")
	}
	if found.Name != name {
		t.Errorf("name: got %q, want %q", found.Name, name)
	}

	// Not found.
	missing, _ := s.FindByID(uuid.New())
	if missing != nil {
		t.Error("expected nil for unknown id")
	}
}

func TestCategoryStoreFindByName(t *testing.T) {
	db := testDB(t)
	s := NewCategoryStore(db)

	rootName := "Test Root " + uuid.NewString()[:8]
	childName := "Test Section " + uuid.NewString()[:8]
	t.Cleanup(func() { cleanCategories(t, db, childName, rootName) })

	root, err := s.Create(&models.Category{Name: rootName, Type: models.CategoryTypeCampus})
	if err != nil {
		t.Fatalf("Create root: %v", err)
	}
	child, err := s.Create(&models.Category{
		Name: childName, Type: models.CategoryTypeSection, ParentID: &root.ID,
	})
	if err != nil {
		t.Fatalf("Create child: %v", err)
	}

	// Root scope uses the IS NULL branch.
	found, err := s.FindByName(rootName, nil)
	if err != nil {
		t.Fatalf("FindByName root: %v", err)
	}
	if found == nil || found.ID != root.ID {
		t.Fatal("expected root category by name at root scope")
	}

	// Child is only visible under its parent scope.
	found, _ = s.FindByName(childName, nil)
	if found != nil {
		t.Error("expected nil for child name at root scope")
	}
	found, err = s.FindByName(childName, &root.ID)
	if err != nil {
		t.Fatalf("FindByName child: %v", err)
	}
	if found == nil || found.ID != child.ID {
		t.Fatal("expected child category by name under parent scope")
	}
}

func TestCategoryStoreListFilters(t *testing.T) {
	db := testDB(t)
	s := NewCategoryStore(db)

	rootName := "Test List Campus " + uuid.NewString()[:8]
	childName := "Test List Section " + uuid.NewString()[:8]
	t.Cleanup(func() { cleanCategories(t, db, childName, rootName) })

	root, err := s.Create(&models.Category{Name: rootName, Type: models.CategoryTypeCampus})
	if err != nil {
		t.Fatalf("Create root: %v", err)
	}
	if _, err := s.Create(&models.Category{
		Name: childName, Type: models.CategoryTypeSection, ParentID: &root.ID,
	}); err != nil {
		t.Fatalf("Create child: %v", err)
	}

	roots, err := s.List(CategoryFilter{RootsOnly: true})
	if err != nil {
		t.Fatalf("List roots: %v", err)
	}
	for _, c := range roots {
		if c.ParentID != nil {
			t.Errorf("root list contains non-root %q", c.Name)
		}
	}

	children, err := s.List(CategoryFilter{ParentID: &root.ID})
	if err != nil {
		t.Fatalf("List children: %v", err)
	}
	if len(children) != 1 || children[0].Name != childName {
		t.Fatalf("children: got %d entries, want the one section", len(children))
	}

	sectionType := models.CategoryTypeSection
	sections, err := s.List(CategoryFilter{Type: &sectionType})
	if err != nil {
		t.Fatalf("List by type: %v", err)
	}
	for _, c := range sections {
		if c.Type != models.CategoryTypeSection {
			t.Errorf("type filter leaked %q", c.Type)
		}
	}
}

func TestCategoryStoreUpdate(t *testing.T) {
	db := testDB(t)
	s := NewCategoryStore(db)

	name := "Test Update " + uuid.NewString()[:8]
	renamed := "Test Renamed " + uuid.NewString()[:8]
	t.Cleanup(func() { cleanCategories(t, db, name, renamed) })

	created, err := s.Create(&models.Category{Name: name, Type: models.CategoryTypeGeneral})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	created.Name = renamed
	created.Featured = true
	created.SortOrder = 7
	if err := s.Update(created); err != nil {
		t.Fatalf("Update: %v", err)
	}

	found, _ := s.FindByID(created.ID)
	if found.Name != renamed {
		t.Errorf("name: got %q, want %q", found.Name, renamed)
	}
	if !found.Featured {
		t.Error("expected featured after update")
	}
	if found.SortOrder != 7 {
		t.Errorf("sort_order: got %d, want 7", found.SortOrder)
	}
}

func TestCategoryStoreDelete(t *testing.T) {
	db := testDB(t)
	s := NewCategoryStore(db)

	name := "Test Delete " + uuid.NewString()[:8]

	created, err := s.Create(&models.Category{Name: name, Type: models.CategoryTypeGeneral})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := s.Delete(created.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	found, _ := s.FindByID(created.ID)
	if found != nil {
		t.Error("expected nil after delete")
	}
}

func TestCategoryStoreCountByParent(t *testing.T) {
	db := testDB(t)
	s := NewCategoryStore(db)

	rootName := "Test Count " + uuid.NewString()[:8]
	childName := "Test Count Child " + uuid.NewString()[:8]
	t.Cleanup(func() { cleanCategories(t, db, childName, rootName) })

	root, err := s.Create(&models.Category{Name: rootName, Type: models.CategoryTypeCampus})
	if err != nil {
		t.Fatalf("Create root: %v", err)
	}

	count, err := s.CountByParent(root.ID)
	if err != nil {
		t.Fatalf("CountByParent: %v", err)
	}
	if count != 0 {
		t.Errorf("count: got %d, want 0", count)
	}

	if _, err := s.Create(&models.Category{
		Name: childName, Type: models.CategoryTypeSection, ParentID: &root.ID,
	}); err != nil {
		t.Fatalf("Create child: %v", err)
	}

	count, _ = s.CountByParent(root.ID)
	if count != 1 {
		t.Errorf("count: got %d, want 1", count)
	}
}

func TestCategoryStoreNextSortOrder(t *testing.T) {
	db := testDB(t)
	s := NewCategoryStore(db)

	rootName := "Test Sort " + uuid.NewString()[:8]
	childName := "Test Sort Child " + uuid.NewString()[:8]
	t.Cleanup(func() { cleanCategories(t, db, childName, rootName) })

	root, err := s.Create(&models.Category{Name: rootName, Type: models.CategoryTypeCampus})
	if err != nil {
		t.Fatalf("Create root: %v", err)
	}

	next, err := s.NextSortOrder(&root.ID)
	if err != nil {
		t.Fatalf("NextSortOrder empty: %v", err)
	}
	if next != 0 {
		t.Errorf("next: got %d, want 0", next)
	}

	child := &models.Category{
		Name: childName, Type: models.CategoryTypeSection,
		ParentID: &root.ID, SortOrder: next,
	}
	if _, err := s.Create(child); err != nil {
		t.Fatalf("Create child: %v", err)
	}

	next, _ = s.NextSortOrder(&root.ID)
	if next != 1 {
		t.Errorf("next after insert: got %d, want 1", next)
	}
}
