package testutil

import (
	"fmt"
	"net/http/httptest"
	"testing"

	glebsqlite "github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/rafaeltorres/user-registry/internal/api"
	"github.com/rafaeltorres/user-registry/internal/config"
	"github.com/rafaeltorres/user-registry/internal/domain"
	"github.com/rafaeltorres/user-registry/internal/repository"
	reposqlite "github.com/rafaeltorres/user-registry/internal/repository/sqlite"
	"github.com/rafaeltorres/user-registry/internal/service"
	"github.com/rafaeltorres/user-registry/internal/ws"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// TestDB wraps an in-memory SQLite database. Each TestDB gets its own named
// shared-cache database so parallel tests stay isolated.
type TestDB struct {
	DB *gorm.DB
}

func NewTestDB(t *testing.T) *TestDB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String())
	db, err := gorm.Open(glebsqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}

	if err := db.AutoMigrate(&domain.User{}); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	return &TestDB{DB: db}
}

// Truncate clears all tables for test isolation
func (tdb *TestDB) Truncate(t *testing.T) {
	t.Helper()

	if err := tdb.DB.Exec("DELETE FROM users").Error; err != nil {
		t.Fatalf("failed to truncate users: %v", err)
	}
}

// TestConfig returns a configuration suitable for testing
func TestConfig() *config.Config {
	return &config.Config{
		Port:                  "0",
		Environment:           "test",
		DatabasePath:          ":memory:",
		JWTSecret:             "test-jwt-secret-key-for-testing-only",
		JWTIssuer:             "user-registry-test",
		JWTAudience:           "user-registry-test-client",
		JWTExpirationMinutes:  60,
		RefreshExpirationDays: 7,
	}
}

// TestServer holds all components for integration testing
type TestServer struct {
	Server   *httptest.Server
	DB       *TestDB
	Repos    *repository.Repositories
	Services *service.Services
	Hub      *ws.Hub
	Config   *config.Config
}

// NewTestServer creates a complete test server with all dependencies
func NewTestServer(t *testing.T) *TestServer {
	t.Helper()

	testDB := NewTestDB(t)
	cfg := TestConfig()

	repos := reposqlite.NewRepositories(testDB.DB)
	hub := ws.NewHub()
	go hub.Run()

	services := service.NewServices(repos, cfg, hub)
	router := api.NewRouter(services, hub, cfg)

	server := httptest.NewServer(router)

	ts := &TestServer{
		Server:   server,
		DB:       testDB,
		Repos:    repos,
		Services: services,
		Hub:      hub,
		Config:   cfg,
	}

	t.Cleanup(func() {
		server.Close()
		hub.Stop()
	})

	return ts
}

// APIURL returns the full v1 API URL for a given path
func (ts *TestServer) APIURL(path string) string {
	return fmt.Sprintf("%s/api/v1%s", ts.Server.URL, path)
}

// APIV2URL returns the full v2 API URL for a given path
func (ts *TestServer) APIV2URL(path string) string {
	return fmt.Sprintf("%s/api/v2%s", ts.Server.URL, path)
}

// EventsURL returns the websocket URL of the event feed
func (ts *TestServer) EventsURL(token string) string {
	wsURL := "ws" + ts.Server.URL[4:]
	return fmt.Sprintf("%s/api/v1/events?token=%s", wsURL, token)
}
