// Package store keeps user profiles and their latest risk score in SQLite.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/etnz/riskfolio"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when no user has the requested id.
var ErrNotFound = errors.New("user not found")

// User is a registered user and its investment profile.
type User struct {
	ID        string               `json:"id"`
	Name      string               `json:"name"`
	Email     string               `json:"email"`
	Profile   riskfolio.Profile    `json:"profile"`
	RiskScore *riskfolio.RiskScore `json:"riskScore,omitempty"` // latest computed score
	CreatedAt time.Time            `json:"createdAt"`
	UpdatedAt time.Time            `json:"updatedAt"`
}

// Store is a user store backed by a SQLite database.
type Store struct {
	db  *sql.DB
	log zerolog.Logger
	now func() time.Time
}

// Open opens, or creates, the database at path and runs the migrations.
// Use ":memory:" for a transient store.
func Open(path string, log zerolog.Logger) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// a single connection serializes writes and keeps in-memory databases
	// alive for the whole life of the store.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	s := &Store{
		db:  db,
		log: log.With().Str("component", "store").Logger(),
		now: time.Now,
	}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	s.log.Info().Str("path", path).Msg("user store opened")
	return s, nil
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id         TEXT PRIMARY KEY,
			name       TEXT NOT NULL,
			email      TEXT NOT NULL,
			profile    TEXT NOT NULL,
			risk_score REAL,
			created_at INTEGER NOT NULL,
			updated_at INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_users_email ON users(email)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error { return s.db.Close() }

// Create registers a new user with a fresh id.
func (s *Store) Create(ctx context.Context, name, email string, p riskfolio.Profile) (User, error) {
	profile, err := json.Marshal(p)
	if err != nil {
		return User{}, fmt.Errorf("cannot encode profile: %w", err)
	}
	now := s.now().UTC().Truncate(time.Second)
	u := User{
		ID:        uuid.NewString(),
		Name:      name,
		Email:     email,
		Profile:   p,
		CreatedAt: now,
		UpdatedAt: now,
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO users (id, name, email, profile, risk_score, created_at, updated_at) VALUES (?, ?, ?, ?, NULL, ?, ?)`,
		u.ID, u.Name, u.Email, string(profile), now.Unix(), now.Unix())
	if err != nil {
		return User{}, fmt.Errorf("cannot insert user: %w", err)
	}
	s.log.Debug().Str("user", u.ID).Msg("user created")
	return u, nil
}

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Get returns the user id, ErrNotFound if there is none.
func (s *Store) Get(ctx context.Context, id string) (User, error) {
	return get(ctx, s.db, id)
}

func get(ctx context.Context, q queryer, id string) (User, error) {
	var (
		u                User
		profile          string
		score            sql.NullFloat64
		created, updated int64
	)
	err := q.QueryRowContext(ctx,
		`SELECT id, name, email, profile, risk_score, created_at, updated_at FROM users WHERE id = ?`, id).
		Scan(&u.ID, &u.Name, &u.Email, &profile, &score, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return User{}, fmt.Errorf("cannot read user %s: %w", id, err)
	}
	if err := json.Unmarshal([]byte(profile), &u.Profile); err != nil {
		return User{}, fmt.Errorf("cannot decode profile of user %s: %w", id, err)
	}
	if score.Valid {
		rs := riskfolio.RiskScore(score.Float64)
		u.RiskScore = &rs
	}
	u.CreatedAt = time.Unix(created, 0).UTC()
	u.UpdatedAt = time.Unix(updated, 0).UTC()
	return u, nil
}

// UpdateProfile overwrites the profile fields present in patch, the others
// are kept. It returns the updated user.
func (s *Store) UpdateProfile(ctx context.Context, id string, patch riskfolio.Profile) (User, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return User{}, fmt.Errorf("cannot begin transaction: %w", err)
	}
	defer tx.Rollback()

	u, err := get(ctx, tx, id)
	if err != nil {
		return User{}, err
	}
	u.Profile = u.Profile.Merge(patch)
	u.UpdatedAt = s.now().UTC().Truncate(time.Second)

	profile, err := json.Marshal(u.Profile)
	if err != nil {
		return User{}, fmt.Errorf("cannot encode profile: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `UPDATE users SET profile = ?, updated_at = ? WHERE id = ?`,
		string(profile), u.UpdatedAt.Unix(), id); err != nil {
		return User{}, fmt.Errorf("cannot update user %s: %w", id, err)
	}
	if err := tx.Commit(); err != nil {
		return User{}, fmt.Errorf("cannot commit user %s: %w", id, err)
	}
	return u, nil
}

// SetRiskScore records the latest risk score of user id.
func (s *Store) SetRiskScore(ctx context.Context, id string, score riskfolio.RiskScore) error {
	res, err := s.db.ExecContext(ctx, `UPDATE users SET risk_score = ?, updated_at = ? WHERE id = ?`,
		float64(score), s.now().Unix(), id)
	if err != nil {
		return fmt.Errorf("cannot update risk score of user %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("cannot update risk score of user %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}
