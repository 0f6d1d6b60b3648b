// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// handler_test.go provides shared test infrastructure for handler integration
// tests. Tests are skipped when PostgreSQL or Valkey are unavailable.
package handlers

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/redis/go-redis/v9"

	"campusdir/internal/cache"
	"campusdir/internal/database"
	"campusdir/internal/directory"
	"campusdir/internal/mailer"
	"campusdir/internal/middleware"
	"campusdir/internal/models"
	"campusdir/internal/session"
	"campusdir/internal/store"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB opens a connection to the test PostgreSQL and runs migrations.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "campusdir")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "campusdir")
	dsn := "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Skipf("skipping: cannot open DB: %v", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping: DB not reachable: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		db.Close()
		t.Fatalf("migrate: %v", err)
	}
	goose.SetBaseFS(nil)

	t.Cleanup(func() { db.Close() })
	return db
}

// testValkeyClient returns a Redis client for handler tests on DB 15.
func testValkeyClient(t *testing.T) *redis.Client {
	t.Helper()

	host := envOr("VALKEY_HOST", "localhost")
	port := envOr("VALKEY_PORT", "6379")
	password := os.Getenv("VALKEY_PASSWORD")

	client := redis.NewClient(&redis.Options{
		Addr:     host + ":" + port,
		Password: password,
		DB:       15,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("skipping: Valkey not reachable: %v", err)
	}

	t.Cleanup(func() {
		// Clean up test session, cache, and dedupe keys.
		for _, pattern := range []string{"session:*", "dir:*", "submit:*"} {
			keys, _ := client.Keys(ctx, pattern).Result()
			if len(keys) > 0 {
				client.Del(ctx, keys...)
			}
		}
		client.Close()
	})

	return client
}

// testEnv holds all dependencies for handler integration tests.
type testEnv struct {
	DB          *sql.DB
	Valkey      *redis.Client
	Sessions    *session.Store
	Categories  *store.CategoryStore
	Services    *store.ServiceStore
	Subs        *store.SubmissionStore
	Users       *store.UserStore
	Audit       *store.AuditLogStore
	Snapshots   *cache.SnapshotCache
	Dedupe      *cache.SubmissionDedupe
	Admin       *Admin
	Auth        *Auth
	Public      *Public
	Submissions *Submissions
}

// newTestEnv creates a complete test environment with all handler dependencies.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testDB(t)
	vk := testValkeyClient(t)

	sessions := session.NewStore(vk, false)
	categories := store.NewCategoryStore(db)
	services := store.NewServiceStore(db)
	subs := store.NewSubmissionStore(db)
	users := store.NewUserStore(db)
	audit := store.NewAuditLogStore(db)
	snapshots := cache.NewSnapshotCache(vk, 1*time.Minute)
	dedupe := cache.NewSubmissionDedupe(vk, 1*time.Minute)
	validator := directory.NewValidator(categories, services)

	admin := NewAdmin(categories, services, subs, users, audit, validator, snapshots)
	auth := NewAuth(users, sessions)
	public := NewPublic(categories, services, nil)
	submissions := NewSubmissions(subs, categories, dedupe, mailer.Noop{}, "")

	return &testEnv{
		DB:          db,
		Valkey:      vk,
		Sessions:    sessions,
		Categories:  categories,
		Services:    services,
		Subs:        subs,
		Users:       users,
		Audit:       audit,
		Snapshots:   snapshots,
		Dedupe:      dedupe,
		Admin:       admin,
		Auth:        auth,
		Public:      public,
		Submissions: submissions,
	}
}

// ctxWithSession adds session data to a context using the middleware key.
func ctxWithSession(ctx context.Context, data *session.Data) context.Context {
	return context.WithValue(ctx, middleware.SessionKey, data)
}

// testSession creates a session.Data for testing.
func testSession(userID uuid.UUID, email, role string, twoFADone bool) *session.Data {
	return &session.Data{
		UserID:      userID,
		Email:       email,
		DisplayName: "Test User",
		Role:        role,
		TwoFADone:   twoFADone,
	}
}

// withChiURLParam adds a chi URL parameter to a request.
func withChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// withChiURLParamAndSession adds both chi URL param and session to a request.
func withChiURLParamAndSession(r *http.Request, key, value string, sess *session.Data) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	ctx := context.WithValue(r.Context(), chi.RouteCtxKey, rctx)
	ctx = context.WithValue(ctx, middleware.SessionKey, sess)
	return r.WithContext(ctx)
}

// adminSession returns a fully authenticated admin session backed by a
// real seeded user row when one exists.
func adminSession(t *testing.T, db *sql.DB) *session.Data {
	t.Helper()
	var id uuid.UUID
	var email string
	if err := db.QueryRow("SELECT id, email FROM users WHERE role = 'admin' LIMIT 1").Scan(&id, &email); err != nil {
		t.Fatalf("no admin user in database, run seed first: %v", err)
	}
	return testSession(id, email, "admin", true)
}

// makeCategory inserts a category directly through the store and registers
// cleanup of it and any services under it.
func makeCategory(t *testing.T, env *testEnv, name string, ct models.CategoryType, parentID *uuid.UUID) *models.Category {
	t.Helper()
	created, err := env.Categories.Create(&models.Category{
		Name:     name,
		Type:     ct,
		ParentID: parentID,
	})
	if err != nil {
		t.Fatalf("create category %q: %v", name, err)
	}
	t.Cleanup(func() {
		env.DB.Exec("DELETE FROM services WHERE category_id = $1", created.ID)
		env.DB.Exec("DELETE FROM categories WHERE id = $1", created.ID)
	})
	return created
}

// cleanCategories removes test categories (services first) by name.
func cleanCategories(t *testing.T, db *sql.DB, names ...string) {
	t.Helper()
	for _, n := range names {
		db.Exec("DELETE FROM services WHERE category_id IN (SELECT id FROM categories WHERE name = $1)", n)
		db.Exec("DELETE FROM categories WHERE name = $1", n)
	}
}

// cleanSubmissions removes test submissions by title.
func cleanSubmissions(t *testing.T, db *sql.DB, titles ...string) {
	t.Helper()
	for _, title := range titles {
		db.Exec("DELETE FROM submissions WHERE title = $1", title)
	}
}

// cleanUsers removes test users by email.
func cleanUsers(t *testing.T, db *sql.DB, emails ...string) {
	t.Helper()
	for _, e := range emails {
		db.Exec("DELETE FROM users WHERE email = $1", e)
	}
}
