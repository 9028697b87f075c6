package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound        = errors.New("document not found")
	ErrInvalidKey      = errors.New("invalid document key")
	ErrCorruptDocument = errors.New("stored document is corrupt")
)

const (
	TournamentsCollection = "tournaments"
	UsersCollection       = "users"
	CommentsCollection    = "comments"
)

// DocumentStore maps keys to whole JSON documents. Writes replace the full
// document, the last writer wins.
type DocumentStore interface {
	// Get returns ErrNotFound when the key is absent.
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, doc []byte) error
	// Delete is a no-op for absent keys.
	Delete(ctx context.Context, key string) error
	// ListKeys returns keys sorted ascending.
	ListKeys(ctx context.Context) ([]string, error)
	// Rename returns ErrNotFound when oldKey is absent.
	Rename(ctx context.Context, oldKey, newKey string) error
}

// Backend hands out one DocumentStore per collection.
type Backend interface {
	Collection(name string) DocumentStore
	Close() error
}

// SanitizeKey turns a human supplied name into a document key. Anything
// outside [A-Za-z0-9_-] becomes an underscore, so distinct names can collide.
func SanitizeKey(name string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

func checkKey(key string) error {
	if key == "" || SanitizeKey(key) != key {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return nil
}
