package testutil

import (
	"context"
	"fmt"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dom/coinshelf/internal/api"
	"github.com/dom/coinshelf/internal/config"
	"github.com/dom/coinshelf/internal/domain"
	"github.com/dom/coinshelf/internal/mail/mocks"
	"github.com/dom/coinshelf/internal/metrics"
	"github.com/dom/coinshelf/internal/repository"
	repoPostgres "github.com/dom/coinshelf/internal/repository/postgres"
	"github.com/dom/coinshelf/internal/service"
	"github.com/stretchr/testify/mock"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// TestDB manages a testcontainers PostgreSQL instance
type TestDB struct {
	Container testcontainers.Container
	DB        *gorm.DB
	DSN       string
}

// NewTestDB creates a new PostgreSQL testcontainer and returns a migrated
// connection
func NewTestDB(t *testing.T) *TestDB {
	t.Helper()

	ctx := context.Background()

	container, err := tcPostgres.Run(ctx,
		"postgres:15-alpine",
		tcPostgres.WithDatabase("test_coinshelf"),
		tcPostgres.WithUsername("test"),
		tcPostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	db, err := gorm.Open(gormPostgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to connect to database: %v", err)
	}

	if err := repoPostgres.Migrate(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	testDB := &TestDB{
		Container: container,
		DB:        db,
		DSN:       dsn,
	}

	t.Cleanup(func() {
		testDB.Cleanup()
	})

	return testDB
}

// Cleanup terminates the container
func (tdb *TestDB) Cleanup() {
	if tdb.Container != nil {
		tdb.Container.Terminate(context.Background())
	}
}

// Truncate clears all tables for test isolation
func (tdb *TestDB) Truncate(t *testing.T) {
	t.Helper()

	tables := []string{
		"items",
		"public_collection_links",
		"password_reset_tokens",
		"price_snapshots",
		"users",
	}

	for _, table := range tables {
		if err := tdb.DB.Exec(fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table)).Error; err != nil {
			t.Logf("warning: failed to truncate %s: %v", table, err)
		}
	}
}

// TestConfig returns a configuration suitable for testing
func TestConfig() *config.Config {
	return &config.Config{
		Port:               "0",
		Environment:        "test",
		FrontendURL:        "http://shelf.test",
		CORSAllowedOrigins: []string{"*"},
		JWTSecret:          "test-jwt-secret-key-for-testing-only",
		JWTExpirationHours: 1,
		PasswordResetTTL:   time.Hour,
		PriceSourceTimeout: time.Second,
		DefaultUSDZARRate:  18.5,
	}
}

// StubPrices is a fixed quote source.
type StubPrices struct {
	Prices domain.MetalPrices
}

func (s StubPrices) GetMetalPrices(ctx context.Context) domain.MetalPrices {
	p := s.Prices
	p.Timestamp = time.Now().UTC()
	return p
}

// DefaultStubPrices quotes gold at 2000 USD/oz and silver at 25 USD/oz.
func DefaultStubPrices() StubPrices {
	return StubPrices{Prices: domain.MetalPrices{
		GoldUSDPerOz:   2000,
		SilverUSDPerOz: 25,
		GoldZARPerOz:   37000,
		SilverZARPerOz: 462.5,
		Source:         "stub",
	}}
}

// NewMockMailer returns a mailer that accepts every message.
func NewMockMailer() *mocks.MockMailer {
	m := &mocks.MockMailer{}
	m.On("SendWelcome", mock.Anything, mock.Anything).Return(nil).Maybe()
	m.On("SendPasswordChanged", mock.Anything, mock.Anything).Return(nil).Maybe()
	m.On("SendPasswordReset", mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
	return m
}

// TestServer holds all components for integration testing
type TestServer struct {
	Server   *httptest.Server
	DB       *TestDB
	Repos    *repository.Repositories
	Services *service.Services
	Mailer   *mocks.MockMailer
	Metrics  *metrics.Metrics
	Config   *config.Config
}

// ServerOption adjusts the external collaborators before the server starts.
type ServerOption func(*service.External)

// NewTestServer creates a complete test server with all dependencies. Mail
// goes to a mock, prices come from DefaultStubPrices and catalog/storage are
// unconfigured unless opts provide them.
func NewTestServer(t *testing.T, opts ...ServerOption) *TestServer {
	t.Helper()

	testDB := NewTestDB(t)
	cfg := TestConfig()
	m := metrics.New()
	mailer := NewMockMailer()

	ext := service.External{
		Mailer: mailer,
		Prices: DefaultStubPrices(),
	}
	for _, opt := range opts {
		opt(&ext)
	}

	repos := repoPostgres.NewRepositories(testDB.DB)
	services := service.NewServices(repos, cfg, ext)
	router := api.NewRouter(services, m, cfg)

	server := httptest.NewServer(router)

	ts := &TestServer{
		Server:   server,
		DB:       testDB,
		Repos:    repos,
		Services: services,
		Mailer:   mailer,
		Metrics:  m,
		Config:   cfg,
	}

	t.Cleanup(func() {
		server.Close()
	})

	return ts
}

// BaseURL returns the test server's base URL
func (ts *TestServer) BaseURL() string {
	return ts.Server.URL
}

// APIURL returns the full API URL for a given path
func (ts *TestServer) APIURL(path string) string {
	return fmt.Sprintf("%s/api%s", ts.Server.URL, path)
}

// LastResetURL returns the reset link from the most recent reset mail.
func (ts *TestServer) LastResetURL(t *testing.T) string {
	t.Helper()
	var url string
	for _, call := range ts.Mailer.Calls {
		if call.Method == "SendPasswordReset" {
			url = call.Arguments.String(2)
		}
	}
	if url == "" {
		t.Fatalf("no password reset mail was sent")
	}
	return url
}
