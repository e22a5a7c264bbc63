package testutil

import (
	"context"
	"os"
	"os/exec"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oklog/ulid/v2"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/iho/goppob/internal/domain"
	"github.com/iho/goppob/internal/infrastructure/postgres"
)

// TestDB provides isolated test database connections.
type TestDB struct {
	Pool *pgxpool.Pool
	URL  string
	t    *testing.T
}

// NewTestDB connects to DATABASE_URL, or starts a throwaway PostgreSQL
// container when it is unset, and applies all migrations.
func NewTestDB(t *testing.T) *TestDB {
	t.Helper()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		dbURL = startContainer(t)
	}

	if err := postgres.RunMigrations(dbURL); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := postgres.NewPoolWithConfig(ctx, postgres.PoolConfig{
		DatabaseURL:      dbURL,
		MaxConns:         50,
		LockTimeout:      5 * time.Second,
		StatementTimeout: 15 * time.Second,
	})
	if err != nil {
		t.Fatalf("failed to connect to test database: %v", err)
	}

	return &TestDB{
		Pool: pool,
		URL:  dbURL,
		t:    t,
	}
}

func startContainer(t *testing.T) string {
	t.Helper()

	if !DockerAvailable() {
		t.Skip("DATABASE_URL is unset and docker is not available")
	}

	dsn, terminate, err := StartPostgres(context.Background())
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}
	t.Cleanup(terminate)
	return dsn
}

// DockerAvailable reports whether a docker daemon answers.
func DockerAvailable() bool {
	return exec.Command("docker", "info", "--format", "{{.ServerVersion}}").Run() == nil
}

// StartPostgres runs a throwaway PostgreSQL container and returns its DSN
// and a function that removes it.
func StartPostgres(ctx context.Context) (string, func(), error) {
	container, err := tcpostgres.Run(ctx,
		"postgres:17-alpine",
		tcpostgres.WithDatabase("ppob"),
		tcpostgres.WithUsername("ppob"),
		tcpostgres.WithPassword("ppob"),
		tcpostgres.BasicWaitStrategies(),
	)
	terminate := func() {
		if container != nil {
			_ = testcontainers.TerminateContainer(container)
		}
	}
	if err != nil {
		terminate()
		return "", nil, err
	}

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		terminate()
		return "", nil, err
	}
	return dsn, terminate, nil
}

// Cleanup closes the database connection.
func (db *TestDB) Cleanup() {
	db.Pool.Close()
}

// TruncateAll removes members, their history and pending events. The
// catalog seed is kept.
func (db *TestDB) TruncateAll(ctx context.Context) {
	db.t.Helper()

	_, err := db.Pool.Exec(ctx, `
		TRUNCATE TABLE history CASCADE;
		TRUNCATE TABLE outbox_events CASCADE;
		TRUNCATE TABLE users CASCADE;
	`)
	if err != nil {
		db.t.Fatalf("failed to truncate tables: %v", err)
	}
}

// CreateTestUser inserts a member with the given balance and no history.
// Use it only for tests that do not check ledger consistency.
func (db *TestDB) CreateTestUser(ctx context.Context, email string, balance int64) *domain.User {
	db.t.Helper()

	now := time.Now().UTC()
	user := &domain.User{
		ID:           GenerateID(),
		Email:        email,
		FirstName:    "Test",
		LastName:     "Member",
		PasswordHash: "not-a-hash",
		Balance:      balance,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	_, err := db.Pool.Exec(ctx, `
		INSERT INTO users (id, email, first_name, last_name, password_hash, balance, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		user.ID, user.Email, user.FirstName, user.LastName, user.PasswordHash, user.Balance, user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		db.t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// InsertService adds a catalog service, replacing one with the same code.
func (db *TestDB) InsertService(ctx context.Context, code, name string, tariff int64) {
	db.t.Helper()

	_, err := db.Pool.Exec(ctx, `
		INSERT INTO services (service_code, service_name, service_tariff)
		VALUES ($1, $2, $3)
		ON CONFLICT (service_code) DO UPDATE SET service_name = EXCLUDED.service_name, service_tariff = EXCLUDED.service_tariff`,
		code, name, tariff,
	)
	if err != nil {
		db.t.Fatalf("failed to insert service: %v", err)
	}
}

// CountHistory returns the number of history rows of a member.
func (db *TestDB) CountHistory(ctx context.Context, userID string) int {
	db.t.Helper()

	var n int
	if err := db.Pool.QueryRow(ctx, `SELECT count(*) FROM history WHERE user_id = $1`, userID).Scan(&n); err != nil {
		db.t.Fatalf("failed to count history: %v", err)
	}
	return n
}

// GenerateID generates a new ULID.
func GenerateID() string {
	return ulid.Make().String()
}
