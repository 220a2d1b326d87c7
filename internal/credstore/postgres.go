package credstore

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// Postgres stores credentials in a users table. Uniqueness is enforced by
// the database, so concurrent signups race safely.
type Postgres struct {
	db *sql.DB
}

// OpenPostgres opens a connection pool, verifies connectivity and runs
// the embedded schema migrations.
func OpenPostgres(databaseURL string) (*Postgres, error) {
	if databaseURL == "" {
		return nil, errors.New("database url is empty")
	}

	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, err
	}

	// Conservative pool defaults.
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	if err := runMigrations(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}

	return &Postgres{db: db}, nil
}

func runMigrations(db *sql.DB) error {
	src, err := iofs.New(migrationFS, "migrations")
	if err != nil {
		return err
	}
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return err
	}
	m, err := migrate.NewWithInstance("iofs", src, "postgres", driver)
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

// Insert relies on ON CONFLICT DO NOTHING so the uniqueness check and the
// write are one atomic statement.
func (p *Postgres) Insert(ctx context.Context, username, passwordHash string) error {
	res, err := p.db.ExecContext(ctx, `
		INSERT INTO users (id, username, password_hash, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (username) DO NOTHING
	`, uuid.New(), username, passwordHash, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	if n == 0 {
		return ErrExists
	}
	return nil
}

// Lookup returns the stored hash for username.
func (p *Postgres) Lookup(ctx context.Context, username string) (string, error) {
	var hash string
	err := p.db.QueryRowContext(ctx,
		`SELECT password_hash FROM users WHERE username = $1`, username,
	).Scan(&hash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("lookup user: %w", err)
	}
	return hash, nil
}

// Close releases the connection pool.
func (p *Postgres) Close() error { return p.db.Close() }
