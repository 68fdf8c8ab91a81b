// Package storage holds generated assets. An upload returns an opaque
// handle; the handle is later resolved to a fetchable URL.
package storage

import (
	"context"
	"errors"
	"time"
)

// Handle identifies an uploaded object.
type Handle string

// Payload is a named file-like blob handed to Upload.
type Payload struct {
	Name     string
	MIMEType string
	Data     []byte
}

// Object is a stored blob with its metadata.
type Object struct {
	Handle    Handle
	Name      string
	MIMEType  string
	Size      int64
	Data      []byte
	CreatedAt time.Time
}

// ErrNotFound is returned when a handle does not name a stored object.
var ErrNotFound = errors.New("object not found")

// ObjectStore is the contract shared by the local and remote stores.
// ResolveURL returns "" with a nil error when the handle is unknown.
type ObjectStore interface {
	Upload(ctx context.Context, p Payload) (Handle, error)
	ResolveURL(ctx context.Context, h Handle) (string, error)
}

// Deleter is implemented by stores that can drop an object again.
type Deleter interface {
	Delete(ctx context.Context, h Handle) error
}

func validatePayload(p Payload) error {
	if len(p.Data) == 0 {
		return errors.New("payload is empty")
	}
	if p.MIMEType == "" {
		return errors.New("payload mime type is required")
	}
	return nil
}
