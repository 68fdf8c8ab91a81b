package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"podcast_studio/database"
)

const blobSchema = `
CREATE TABLE IF NOT EXISTS blobs (
	handle     TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	mime_type  TEXT NOT NULL,
	size       INTEGER NOT NULL,
	data       BLOB NOT NULL,
	created_at INTEGER NOT NULL
);`

// Local keeps blobs in the studio SQLite database and serves them under
// <baseURL>/blobs/<handle>.
type Local struct {
	db      *sql.DB
	baseURL string
	now     func() time.Time
}

// NewLocal prepares the blobs table on db.
func NewLocal(ctx context.Context, db *sql.DB, baseURL string) (*Local, error) {
	if db == nil {
		return nil, errors.New("local store: db is nil")
	}
	if err := database.EnsureSchema(ctx, db, "blobs", blobSchema); err != nil {
		return nil, err
	}
	return &Local{db: db, baseURL: strings.TrimRight(baseURL, "/"), now: time.Now}, nil
}

func (l *Local) Upload(ctx context.Context, p Payload) (Handle, error) {
	if err := validatePayload(p); err != nil {
		return "", fmt.Errorf("local upload: %w", err)
	}
	h := Handle(uuid.NewString())
	_, err := database.Exec(ctx, l.db,
		`INSERT INTO blobs (handle, name, mime_type, size, data, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		string(h), p.Name, p.MIMEType, len(p.Data), p.Data, l.now().UnixMilli())
	if err != nil {
		return "", fmt.Errorf("local upload: %w", err)
	}
	return h, nil
}

func (l *Local) ResolveURL(ctx context.Context, h Handle) (string, error) {
	var exists int
	err := l.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM blobs WHERE handle = ?`, string(h)).Scan(&exists)
	if err != nil {
		return "", fmt.Errorf("resolve url: %w", err)
	}
	if exists == 0 {
		return "", nil
	}
	return l.baseURL + "/blobs/" + url.PathEscape(string(h)), nil
}

// Open loads the object named by h.
func (l *Local) Open(ctx context.Context, h Handle) (*Object, error) {
	row := l.db.QueryRowContext(ctx,
		`SELECT handle, name, mime_type, size, data, created_at FROM blobs WHERE handle = ?`, string(h))
	var (
		obj       Object
		handle    string
		createdAt int64
	)
	if err := row.Scan(&handle, &obj.Name, &obj.MIMEType, &obj.Size, &obj.Data, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("open blob: %w", err)
	}
	obj.Handle = Handle(handle)
	obj.CreatedAt = time.UnixMilli(createdAt)
	return &obj, nil
}

func (l *Local) Delete(ctx context.Context, h Handle) error {
	if _, err := database.Exec(ctx, l.db, `DELETE FROM blobs WHERE handle = ?`, string(h)); err != nil {
		return fmt.Errorf("delete blob: %w", err)
	}
	return nil
}
