// Package episode persists users and published podcast episodes.
package episode

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"podcast_studio/database"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id        TEXT PRIMARY KEY,
	subject   TEXT NOT NULL UNIQUE,
	name      TEXT NOT NULL,
	email     TEXT NOT NULL,
	image_url TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS episodes (
	id               TEXT PRIMARY KEY,
	user_id          TEXT NOT NULL,
	author           TEXT NOT NULL,
	author_id        TEXT NOT NULL,
	author_image_url TEXT NOT NULL,
	title            TEXT NOT NULL,
	description      TEXT NOT NULL,
	audio_url        TEXT NOT NULL,
	audio_storage_id TEXT NOT NULL,
	audio_duration   REAL NOT NULL DEFAULT 0,
	image_url        TEXT NOT NULL,
	image_storage_id TEXT NOT NULL,
	voice_prompt     TEXT NOT NULL,
	image_prompt     TEXT NOT NULL,
	voice_type       TEXT NOT NULL,
	views            INTEGER NOT NULL DEFAULT 0,
	created_at       INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_episodes_views ON episodes (views DESC, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_episodes_voice ON episodes (voice_type);
`

const episodeColumns = `id, user_id, author, author_id, author_image_url, title, description,
	audio_url, audio_storage_id, audio_duration, image_url, image_storage_id,
	voice_prompt, image_prompt, voice_type, views, created_at`

// ErrNotFound is returned when an episode or user does not exist.
var ErrNotFound = errors.New("not found")

// Store manages users and episodes backed by SQLite.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// NewStore prepares the users and episodes tables on db.
func NewStore(ctx context.Context, db *sql.DB) (*Store, error) {
	if db == nil {
		return nil, errors.New("episode store: db is nil")
	}
	if err := database.EnsureSchema(ctx, db, "episodes", schema); err != nil {
		return nil, err
	}
	return &Store{db: db, now: time.Now}, nil
}

// UpsertUser creates the user for u.Subject or updates the existing one.
// Empty Name keeps the stored name, matching profile updates that do not
// carry one.
func (s *Store) UpsertUser(ctx context.Context, u User) (User, error) {
	u.Subject = strings.TrimSpace(u.Subject)
	if u.Subject == "" {
		return User{}, errors.New("upsert user: subject is required")
	}
	existing, err := s.UserBySubject(ctx, u.Subject)
	if err != nil {
		return User{}, err
	}
	if existing == nil {
		u.ID = uuid.NewString()
		_, err = database.Exec(ctx, s.db,
			`INSERT INTO users (id, subject, name, email, image_url) VALUES (?, ?, ?, ?, ?)`,
			u.ID, u.Subject, u.Name, u.Email, u.ImageURL)
		if err != nil {
			return User{}, fmt.Errorf("insert user: %w", err)
		}
		return u, nil
	}

	u.ID = existing.ID
	if u.Name == "" {
		u.Name = existing.Name
	}
	_, err = database.Exec(ctx, s.db,
		`UPDATE users SET name = ?, email = ?, image_url = ? WHERE id = ?`,
		u.Name, u.Email, u.ImageURL, u.ID)
	if err != nil {
		return User{}, fmt.Errorf("update user: %w", err)
	}
	return u, nil
}

// DeleteUser removes the user record. Episodes keep their author snapshot.
func (s *Store) DeleteUser(ctx context.Context, subject string) error {
	res, err := database.Exec(ctx, s.db, `DELETE FROM users WHERE subject = ?`, subject)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// UserBySubject returns nil, nil when no user has the subject.
func (s *Store) UserBySubject(ctx context.Context, subject string) (*User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, subject, name, email, image_url FROM users WHERE subject = ?`, subject)
	var u User
	if err := row.Scan(&u.ID, &u.Subject, &u.Name, &u.Email, &u.ImageURL); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("query user: %w", err)
	}
	return &u, nil
}

// Insert writes e as a single row and returns the new id. e.ID, e.Views
// and e.CreatedAt are assigned here.
func (s *Store) Insert(ctx context.Context, e Episode) (string, error) {
	e.ID = uuid.NewString()
	e.Views = 0
	e.CreatedAt = s.now()
	_, err := database.Exec(ctx, s.db,
		`INSERT INTO episodes (`+episodeColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.UserID, e.Author, e.AuthorID, e.AuthorImage, e.Title, e.Description,
		e.AudioURL, e.AudioHandle, e.AudioDuration, e.ImageURL, e.ImageHandle,
		e.VoicePrompt, e.ImagePrompt, e.VoiceType, e.Views, e.CreatedAt.UnixMilli())
	if err != nil {
		return "", fmt.Errorf("insert episode: %w", err)
	}
	return e.ID, nil
}

// Get returns the episode or ErrNotFound.
func (s *Store) Get(ctx context.Context, id string) (*Episode, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+episodeColumns+` FROM episodes WHERE id = ?`, id)
	e, err := scanEpisode(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("query episode: %w", err)
	}
	return e, nil
}

// List returns the trending episodes: most viewed first, newest breaking ties.
func (s *Store) List(ctx context.Context, limit int) ([]Episode, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+episodeColumns+` FROM episodes ORDER BY views DESC, created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query episodes: %w", err)
	}
	return collect(rows)
}

// SimilarByVoice lists other episodes narrated with the same voice as id.
func (s *Store) SimilarByVoice(ctx context.Context, id string, limit int) ([]Episode, error) {
	if limit <= 0 {
		limit = 8
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+episodeColumns+` FROM episodes
		WHERE voice_type = (SELECT voice_type FROM episodes WHERE id = ?) AND id != ?
		ORDER BY views DESC, created_at DESC
		LIMIT ?`, id, id, limit)
	if err != nil {
		return nil, fmt.Errorf("query similar episodes: %w", err)
	}
	return collect(rows)
}

// IncrementViews bumps the view counter and returns the new value.
func (s *Store) IncrementViews(ctx context.Context, id string) (int64, error) {
	res, err := database.Exec(ctx, s.db, `UPDATE episodes SET views = views + 1 WHERE id = ?`, id)
	if err != nil {
		return 0, fmt.Errorf("increment views: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return 0, ErrNotFound
	}
	var views int64
	if err := s.db.QueryRowContext(ctx, `SELECT views FROM episodes WHERE id = ?`, id).Scan(&views); err != nil {
		return 0, fmt.Errorf("read views: %w", err)
	}
	return views, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEpisode(row scanner) (*Episode, error) {
	var (
		e         Episode
		createdAt int64
	)
	if err := row.Scan(&e.ID, &e.UserID, &e.Author, &e.AuthorID, &e.AuthorImage, &e.Title, &e.Description,
		&e.AudioURL, &e.AudioHandle, &e.AudioDuration, &e.ImageURL, &e.ImageHandle,
		&e.VoicePrompt, &e.ImagePrompt, &e.VoiceType, &e.Views, &createdAt); err != nil {
		return nil, err
	}
	e.CreatedAt = time.UnixMilli(createdAt)
	return &e, nil
}

func collect(rows *sql.Rows) ([]Episode, error) {
	defer rows.Close()
	var out []Episode
	for rows.Next() {
		e, err := scanEpisode(rows)
		if err != nil {
			return nil, fmt.Errorf("scan episode: %w", err)
		}
		out = append(out, *e)
	}
	return out, rows.Err()
}
