package database

import (
	"database/sql"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"
)

// Seed populates the database with initial development data. It creates a
// default admin user if none exists, plus a small starter directory so the
// public endpoints return something before any admin work. The admin will
// be prompted to set up 2FA on first login (totp_enabled = false).
func Seed(db *sql.DB) error {
	if err := seedAdmin(db); err != nil {
		return err
	}
	return seedDirectory(db)
}

func seedAdmin(db *sql.DB) error {
	// Check if any users exist already.
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		return fmt.Errorf("seed check users: %w", err)
	}

	if count > 0 {
		slog.Info("users already seeded, skipping")
		return nil
	}

	// Hash the default admin password.
	hash, err := bcrypt.GenerateFromPassword([]byte("admin"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("seed bcrypt: %w", err)
	}

	// Insert default admin user. 2FA is not enabled — they must set it up
	// on first login.
	_, err = db.Exec(`
		INSERT INTO users (email, password_hash, display_name, role, totp_enabled)
		VALUES ($1, $2, $3, $4, $5)
	`, "admin@campusdir.local", string(hash), "Admin", "admin", false)
	if err != nil {
		return fmt.Errorf("seed insert admin: %w", err)
	}

	slog.Info("database seeded with default admin user",
		"email", "admin@campusdir.local",
		"password", "admin",
	)

	return nil
}

func seedDirectory(db *sql.DB) error {
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM categories").Scan(&count); err != nil {
		return fmt.Errorf("seed check categories: %w", err)
	}

	if count > 0 {
		slog.Info("directory already seeded, skipping")
		return nil
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("seed begin: %w", err)
	}
	defer tx.Rollback()

	insertCategory := func(name, ctype string, parent *string, color, icon, description string, sortOrder int) (string, error) {
		var id string
		err := tx.QueryRow(`
			INSERT INTO categories (name, type, parent_id, color, icon, description, sort_order)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING id
		`, name, ctype, parent, color, icon, description, sortOrder).Scan(&id)
		if err != nil {
			return "", fmt.Errorf("seed category %q: %w", name, err)
		}
		return id, nil
	}

	insertService := func(categoryID, title, description, tags, href, status string, sortOrder int) error {
		_, err := tx.Exec(`
			INSERT INTO services (category_id, title, description, tags, href, status, sort_order)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, categoryID, title, description, tags, href, status, sortOrder)
		if err != nil {
			return fmt.Errorf("seed service %q: %w", title, err)
		}
		return nil
	}

	mainCampus, err := insertCategory("Main Campus", "campus", nil, "#1d4ed8", "building", "Central campus facilities and departments", 0)
	if err != nil {
		return err
	}

	library, err := insertCategory("Library", "section", &mainCampus, "#0f766e", "book", "Library services and study spaces", 0)
	if err != nil {
		return err
	}
	registrar, err := insertCategory("Registrar", "section", &mainCampus, "#b45309", "clipboard", "Enrollment, records and transcripts", 1)
	if err != nil {
		return err
	}

	itServices, err := insertCategory("IT Services", "general", nil, "#7c3aed", "monitor", "Accounts, networks and software for everyone", 1)
	if err != nil {
		return err
	}

	if err := insertService(library, "Room Booking", "Reserve group study rooms", `["study","booking"]`, "https://library.campusdir.local/rooms", "active", 0); err != nil {
		return err
	}
	if err := insertService(library, "Interlibrary Loan", "Request titles from partner libraries", `["books","loans"]`, "https://library.campusdir.local/ill", "active", 1); err != nil {
		return err
	}
	if err := insertService(registrar, "Transcript Requests", "Order official transcripts", `["records"]`, "https://registrar.campusdir.local/transcripts", "active", 0); err != nil {
		return err
	}
	if err := insertService(itServices, "Campus Wi-Fi", "Connect your devices to the campus network", `["network","wifi"]`, "https://it.campusdir.local/wifi", "active", 0); err != nil {
		return err
	}
	if err := insertService(itServices, "Password Reset", "Self-service account recovery", `["account"]`, "https://it.campusdir.local/password", "maintenance", 1); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed commit: %w", err)
	}

	slog.Info("database seeded with starter directory")
	return nil
}
