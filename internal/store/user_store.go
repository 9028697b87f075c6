package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	users "github.com/AdamBeresnev/bracket-api/internal/user"
	"github.com/google/uuid"
)

// Users live under "id_<uuid>". Lookups by username or OAuth identity go
// through small index documents that only hold the user ID.
const (
	userKeyPrefix     = "id_"
	usernameKeyPrefix = "name_"
	providerKeyPrefix = "oauth_"
)

type userIndex struct {
	ID uuid.UUID `json:"id"`
}

type UserStore struct {
	docs DocumentStore
}

func NewUserStore(docs DocumentStore) *UserStore {
	return &UserStore{docs: docs}
}

func userKey(id uuid.UUID) string {
	return userKeyPrefix + id.String()
}

func usernameKey(username string) string {
	return usernameKeyPrefix + SanitizeKey(strings.ToLower(strings.TrimSpace(username)))
}

func providerKey(provider, providerID string) string {
	return providerKeyPrefix + SanitizeKey(provider) + "_" + SanitizeKey(providerID)
}

func (s *UserStore) GetUser(ctx context.Context, id uuid.UUID) (*users.User, error) {
	doc, err := s.docs.Get(ctx, userKey(id))
	if err != nil {
		return nil, err
	}
	var user users.User
	if err := json.Unmarshal(doc, &user); err != nil {
		return nil, fmt.Errorf("%w: user %s: %v", ErrCorruptDocument, id, err)
	}
	return &user, nil
}

func (s *UserStore) GetUserByUsername(ctx context.Context, username string) (*users.User, error) {
	return s.getByIndex(ctx, usernameKey(username))
}

func (s *UserStore) GetUserByProvider(ctx context.Context, provider string, providerID string) (*users.User, error) {
	return s.getByIndex(ctx, providerKey(provider, providerID))
}

func (s *UserStore) UsernameTaken(ctx context.Context, username string) (bool, error) {
	_, err := s.docs.Get(ctx, usernameKey(username))
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

// CreateUser writes the user first and the indexes after, so a failed index
// write leaves an orphan user rather than an index pointing nowhere.
func (s *UserStore) CreateUser(ctx context.Context, user *users.User) error {
	if err := s.UpdateUser(ctx, user); err != nil {
		return err
	}
	if user.Username != "" {
		if err := s.putIndex(ctx, usernameKey(user.Username), user.ID); err != nil {
			return err
		}
	}
	if user.Provider != nil && user.ProviderID != nil {
		if err := s.putIndex(ctx, providerKey(*user.Provider, *user.ProviderID), user.ID); err != nil {
			return err
		}
	}
	return nil
}

func (s *UserStore) UpdateUser(ctx context.Context, user *users.User) error {
	doc, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("marshal user: %w", err)
	}
	return s.docs.Put(ctx, userKey(user.ID), doc)
}

func (s *UserStore) getByIndex(ctx context.Context, key string) (*users.User, error) {
	doc, err := s.docs.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	var idx userIndex
	if err := json.Unmarshal(doc, &idx); err != nil {
		return nil, fmt.Errorf("%w: index %q: %v", ErrCorruptDocument, key, err)
	}
	return s.GetUser(ctx, idx.ID)
}

func (s *UserStore) putIndex(ctx context.Context, key string, id uuid.UUID) error {
	doc, err := json.Marshal(userIndex{ID: id})
	if err != nil {
		return err
	}
	return s.docs.Put(ctx, key, doc)
}
