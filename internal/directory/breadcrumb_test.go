package directory

import (
	"errors"
	"testing"

	"campusdir/internal/models"
)

func TestResolvePathNilTarget(t *testing.T) {
	s := scenario()
	path, err := ResolvePath(nil, s.flat)
	if err != nil {
		t.Fatalf("ResolvePath(nil): %v", err)
	}
	if len(path) != 0 {
		t.Errorf("expected empty path for home view, got %+v", path)
	}
}

func TestResolvePathRoot(t *testing.T) {
	s := scenario()
	path, err := ResolvePath(&s.a, s.flat)
	if err != nil {
		t.Fatalf("ResolvePath(A): %v", err)
	}
	if len(path) != 1 || path[0].ID != s.a.ID {
		t.Fatalf("path: got %+v, want [A]", path)
	}
}

// The path always ends with the target and begins with a parentless root.
func TestResolvePathSection(t *testing.T) {
	s := scenario()
	path, err := ResolvePath(&s.b, s.flat)
	if err != nil {
		t.Fatalf("ResolvePath(B): %v", err)
	}
	if len(path) != 2 {
		t.Fatalf("path length: got %d, want 2", len(path))
	}
	if path[0].ID != s.a.ID || path[1].ID != s.b.ID {
		t.Errorf("path: got [%s %s], want [A B]", path[0].Name, path[1].Name)
	}
	if path[0].Type != models.CategoryTypeCampus {
		t.Errorf("path must begin at a root, got type %q", path[0].Type)
	}
}

// A parent missing from the snapshot ends the walk with a partial path
// rather than an error.
func TestResolvePathPartialOnMissingParent(t *testing.T) {
	s := scenario()
	// Filtered snapshot without the campus.
	filtered := []models.Category{s.b, s.c}

	path, err := ResolvePath(&s.b, filtered)
	if err != nil {
		t.Fatalf("ResolvePath on filtered snapshot: %v", err)
	}
	if len(path) != 1 || path[0].ID != s.b.ID {
		t.Errorf("partial path: got %+v, want [B]", path)
	}
}

// A parent cycle would loop forever without the traversal cap.
func TestResolvePathDepthCap(t *testing.T) {
	a := cat("A", models.CategoryTypeCampus, nil, 0, 0)
	b := cat("B", models.CategoryTypeSection, &a.ID, 0, 1)
	// Corrupt the chain: A points back at B.
	a.ParentID = &b.ID
	flat := []models.Category{a, b}

	_, err := ResolvePath(&b, flat)
	if !errors.Is(err, ErrPathTooDeep) {
		t.Fatalf("expected ErrPathTooDeep, got %v", err)
	}
}
