package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

const (
	getDocumentQuery    = "SELECT body FROM documents WHERE collection = ? AND doc_key = ?"
	listDocumentsQuery  = "SELECT doc_key FROM documents WHERE collection = ? ORDER BY doc_key ASC"
	deleteDocumentQuery = "DELETE FROM documents WHERE collection = ? AND doc_key = ?"
	renameDocumentQuery = "UPDATE documents SET doc_key = ?, updated_at = ? WHERE collection = ? AND doc_key = ?"
	putDocumentQuery    = `
		INSERT INTO documents (collection, doc_key, body, updated_at)
		VALUES (:collection, :doc_key, :body, :updated_at)
		ON CONFLICT (collection, doc_key) DO UPDATE SET
		body = excluded.body,
		updated_at = excluded.updated_at
	`
)

type documentRow struct {
	Collection string    `db:"collection"`
	Key        string    `db:"doc_key"`
	Body       string    `db:"body"`
	UpdatedAt  time.Time `db:"updated_at"`
}

// SQLBackend stores every collection in a single documents table. The schema
// comes from the db package migrations.
type SQLBackend struct {
	db *sqlx.DB
}

func NewSQLBackend(db *sqlx.DB) *SQLBackend {
	return &SQLBackend{db: db}
}

func (b *SQLBackend) Collection(name string) DocumentStore {
	return &SQLStore{db: b.db, collection: name}
}

func (b *SQLBackend) Close() error {
	return b.db.Close()
}

type SQLStore struct {
	db         *sqlx.DB
	collection string
}

func (s *SQLStore) Get(ctx context.Context, key string) ([]byte, error) {
	if err := checkKey(key); err != nil {
		return nil, err
	}
	var body string
	err := s.db.GetContext(ctx, &body, s.db.Rebind(getDocumentQuery), s.collection, key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get document %q: %w", key, err)
	}
	return []byte(body), nil
}

func (s *SQLStore) Put(ctx context.Context, key string, doc []byte) error {
	if err := checkKey(key); err != nil {
		return err
	}
	row := documentRow{
		Collection: s.collection,
		Key:        key,
		Body:       string(doc),
		UpdatedAt:  time.Now().UTC(),
	}
	if _, err := s.db.NamedExecContext(ctx, putDocumentQuery, row); err != nil {
		return fmt.Errorf("put document %q: %w", key, err)
	}
	return nil
}

func (s *SQLStore) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, s.db.Rebind(deleteDocumentQuery), s.collection, key); err != nil {
		return fmt.Errorf("delete document %q: %w", key, err)
	}
	return nil
}

func (s *SQLStore) ListKeys(ctx context.Context) ([]string, error) {
	keys := []string{}
	if err := s.db.SelectContext(ctx, &keys, s.db.Rebind(listDocumentsQuery), s.collection); err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return keys, nil
}

func (s *SQLStore) Rename(ctx context.Context, oldKey, newKey string) error {
	if err := checkKey(newKey); err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, s.db.Rebind(renameDocumentQuery), newKey, time.Now().UTC(), s.collection, oldKey)
	if err != nil {
		return fmt.Errorf("rename document %q: %w", oldKey, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rename document %q: %w", oldKey, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
