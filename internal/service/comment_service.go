package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/AdamBeresnev/bracket-api/internal/store"
	"github.com/google/uuid"
)

type Comment struct {
	ID        uuid.UUID `json:"id"`
	User      string    `json:"user"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"createdAt"`
}

// commentThread is stored as one document per message ID.
type commentThread struct {
	MessageID string    `json:"messageId"`
	Comments  []Comment `json:"comments"`
}

type CommentService struct {
	docs  store.DocumentStore
	locks *KeyLocks
	now   func() time.Time
}

func NewCommentService(docs store.DocumentStore, locks *KeyLocks) *CommentService {
	return &CommentService{docs: docs, locks: locks, now: time.Now}
}

func (s *CommentService) AddComment(ctx context.Context, messageID, user, body string) (Comment, error) {
	key := store.SanitizeKey(messageID)
	user = strings.TrimSpace(user)
	body = strings.TrimSpace(body)
	if key == "" || user == "" || body == "" {
		return Comment{}, fmt.Errorf("%w: message id, user and body", ErrMissingFields)
	}

	unlock := s.locks.Lock("comments:" + key)
	defer unlock()

	thread, err := s.loadThread(ctx, key)
	if err != nil {
		return Comment{}, err
	}

	comment := Comment{
		ID:        uuid.New(),
		User:      user,
		Body:      body,
		CreatedAt: s.now(),
	}
	thread.Comments = append(thread.Comments, comment)

	doc, err := json.Marshal(thread)
	if err != nil {
		return Comment{}, fmt.Errorf("marshal comments: %w", err)
	}
	if err := s.docs.Put(ctx, key, doc); err != nil {
		return Comment{}, fmt.Errorf("save comments %q: %w", key, err)
	}
	return comment, nil
}

// ListComments returns the thread in posting order. Unknown message IDs have
// an empty thread.
func (s *CommentService) ListComments(ctx context.Context, messageID string) ([]Comment, error) {
	key := store.SanitizeKey(messageID)
	if key == "" {
		return []Comment{}, nil
	}
	thread, err := s.loadThread(ctx, key)
	if err != nil {
		return nil, err
	}
	return thread.Comments, nil
}

func (s *CommentService) loadThread(ctx context.Context, key string) (*commentThread, error) {
	thread := &commentThread{MessageID: key, Comments: []Comment{}}

	doc, err := s.docs.Get(ctx, key)
	if errors.Is(err, store.ErrNotFound) {
		return thread, nil
	}
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(doc, thread); err != nil {
		return nil, fmt.Errorf("%w: comments %q: %v", store.ErrCorruptDocument, key, err)
	}
	if thread.Comments == nil {
		thread.Comments = []Comment{}
	}
	return thread, nil
}
