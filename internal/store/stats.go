package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"

	"hideseek-arcade/internal/game"
)

// ErrEmptyUsername is returned for operations keyed by a blank username
var ErrEmptyUsername = errors.New("store: empty username")

func normalize(username string) (string, error) {
	u := strings.TrimSpace(username)
	if u == "" {
		return "", ErrEmptyUsername
	}
	return u, nil
}

// AllStats returns every user ordered by score, highest first
func (db *DB) AllStats(ctx context.Context) ([]game.Stats, error) {
	rows, err := db.conn.QueryContext(ctx,
		"SELECT username, score, ammo_missed, ammo FROM user_stats ORDER BY score DESC, username ASC")
	if err != nil {
		return nil, fmt.Errorf("query stats: %w", err)
	}
	defer rows.Close()

	var result []game.Stats
	for rows.Next() {
		var s game.Stats
		if err := rows.Scan(&s.Username, &s.Score, &s.AmmoMissed, &s.Ammo); err != nil {
			return nil, fmt.Errorf("scan stats: %w", err)
		}
		result = append(result, s)
	}
	return result, rows.Err()
}

// TopStats returns the highest scores, at most limit rows
func (db *DB) TopStats(ctx context.Context, limit int) ([]game.Stats, error) {
	all, err := db.AllStats(ctx)
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

// UserStats returns the stored stats for username.
// An unknown user gets a zeroed record rather than an error.
func (db *DB) UserStats(ctx context.Context, username string) (game.Stats, error) {
	u, err := normalize(username)
	if err != nil {
		return game.Stats{}, err
	}
	s := game.Stats{Username: u}
	err = db.conn.QueryRowContext(ctx,
		"SELECT score, ammo_missed, ammo FROM user_stats WHERE username = ?", u,
	).Scan(&s.Score, &s.AmmoMissed, &s.Ammo)
	if errors.Is(err, sql.ErrNoRows) {
		return s, nil
	}
	if err != nil {
		return game.Stats{Username: u}, fmt.Errorf("get stats %s: %w", u, err)
	}
	return s, nil
}

// RegisterUser creates a zeroed row for username if none exists
func (db *DB) RegisterUser(ctx context.Context, username string) error {
	u, err := normalize(username)
	if err != nil {
		return err
	}
	_, err = db.conn.ExecContext(ctx,
		"INSERT INTO user_stats (username) VALUES (?) ON CONFLICT(username) DO NOTHING", u)
	if err != nil {
		return fmt.Errorf("register %s: %w", u, err)
	}
	return nil
}

// UpdateStats overwrites score, ammo_missed and ammo for the user, creating the row if needed
func (db *DB) UpdateStats(ctx context.Context, s game.Stats) error {
	u, err := normalize(s.Username)
	if err != nil {
		return err
	}
	_, err = db.conn.ExecContext(ctx, `
		INSERT INTO user_stats (username, score, ammo_missed, ammo) VALUES (?, ?, ?, ?)
		ON CONFLICT(username) DO UPDATE SET
			score = excluded.score,
			ammo_missed = excluded.ammo_missed,
			ammo = excluded.ammo`,
		u, s.Score, s.AmmoMissed, s.Ammo,
	)
	if err != nil {
		return fmt.Errorf("update stats %s: %w", u, err)
	}
	return nil
}

// PassHash returns the bcrypt hash claiming username, or "" if unclaimed
func (db *DB) PassHash(ctx context.Context, username string) (string, error) {
	u, err := normalize(username)
	if err != nil {
		return "", err
	}
	var hash string
	err = db.conn.QueryRowContext(ctx, "SELECT pass_hash FROM user_stats WHERE username = ?", u).Scan(&hash)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get pass hash %s: %w", u, err)
	}
	return hash, nil
}

// SetPassHash stores the password hash claiming username
func (db *DB) SetPassHash(ctx context.Context, username, hash string) error {
	u, err := normalize(username)
	if err != nil {
		return err
	}
	_, err = db.conn.ExecContext(ctx, `
		INSERT INTO user_stats (username, pass_hash) VALUES (?, ?)
		ON CONFLICT(username) DO UPDATE SET pass_hash = excluded.pass_hash`,
		u, hash,
	)
	if err != nil {
		return fmt.Errorf("set pass hash %s: %w", u, err)
	}
	return nil
}

// StatsReader is the read side needed to seed a session
type StatsReader interface {
	UserStats(ctx context.Context, username string) (game.Stats, error)
}

// LoadStats reads a user's stats, treating any failure as a new player
func LoadStats(ctx context.Context, r StatsReader, username string) game.Stats {
	s, err := r.UserStats(ctx, username)
	if err != nil {
		log.Printf("store: load stats for %q: %v", username, err)
		return game.Stats{Username: strings.TrimSpace(username)}
	}
	return s
}
