package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/AdamBeresnev/bracket-api/internal/store"
	users "github.com/AdamBeresnev/bracket-api/internal/user"
	"github.com/AdamBeresnev/bracket-api/internal/utils"
	"github.com/google/uuid"
	"github.com/markbates/goth"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 8

var GuestUserID = uuid.MustParse("00000000-0000-0000-0000-000000000001")

type UserService struct {
	store *store.UserStore
	locks *KeyLocks
	now   func() time.Time
}

func NewUserService(store *store.UserStore, locks *KeyLocks) *UserService {
	return &UserService{store: store, locks: locks, now: time.Now}
}

type RegisterInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ProfilePatch fields left nil stay unchanged.
type ProfilePatch struct {
	Email       *string `json:"email"`
	DisplayName *string `json:"displayName"`
	Password    *string `json:"password"`
}

func (s *UserService) Register(ctx context.Context, input RegisterInput) (*users.User, error) {
	username := strings.TrimSpace(input.Username)
	if username == "" || input.Password == "" {
		return nil, fmt.Errorf("%w: username and password", ErrMissingFields)
	}

	hash, err := hashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(usernameLockKey(username))
	defer unlock()

	taken, err := s.store.UsernameTaken(ctx, username)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, fmt.Errorf("%w: %q", ErrUsernameTaken, username)
	}

	user := &users.User{
		ID:           uuid.New(),
		Username:     username,
		Email:        strings.TrimSpace(input.Email),
		DisplayName:  username,
		PasswordHash: hash,
		CreatedAt:    s.now(),
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// Login returns ErrInvalidCredentials for both unknown users and wrong
// passwords.
func (s *UserService) Login(ctx context.Context, username, password string) (*users.User, error) {
	user, err := s.store.GetUserByUsername(ctx, username)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	// OAuth-only accounts have no password
	if user.PasswordHash == "" {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func (s *UserService) GetUser(ctx context.Context, id uuid.UUID) (*users.User, error) {
	user, err := s.store.GetUser(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrUserNotFound, id)
	}
	return user, err
}

func (s *UserService) UpdateProfile(ctx context.Context, id uuid.UUID, patch ProfilePatch) (*users.User, error) {
	unlock := s.locks.Lock(userLockKey(id))
	defer unlock()

	user, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.Email != nil {
		user.Email = strings.TrimSpace(*patch.Email)
	}
	if patch.DisplayName != nil {
		user.DisplayName = strings.TrimSpace(*patch.DisplayName)
	}
	if patch.Password != nil {
		hash, err := hashPassword(*patch.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
	}

	if err := s.store.UpdateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	return user, nil
}

func (s *UserService) FindOrCreateUserByProvider(ctx context.Context, gothUser goth.User) (*users.User, error) {
	user, err := s.store.GetUserByProvider(ctx, gothUser.Provider, gothUser.UserID)

	if err == nil {
		if utils.OrZero(user.AvatarURL) != gothUser.AvatarURL {
			user.AvatarURL = utils.StringOrNil(gothUser.AvatarURL)
			if err := s.store.UpdateUser(ctx, user); err != nil {
				return nil, fmt.Errorf("update user avatar: %w", err)
			}
		}
		return user, nil
	}

	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	username := utils.FirstNonEmpty(gothUser.NickName, gothUser.Name, gothUser.Provider+"_"+gothUser.UserID)

	unlock := s.locks.Lock(usernameLockKey(username))
	defer unlock()

	taken, err := s.store.UsernameTaken(ctx, username)
	if err != nil {
		return nil, err
	}

	newUser := &users.User{
		ID:          uuid.New(),
		Email:       gothUser.Email,
		Username:    username,
		DisplayName: utils.FirstNonEmpty(gothUser.Name, username),
		CreatedAt:   s.now(),
		Provider:    utils.Ptr(gothUser.Provider),
		ProviderID:  utils.Ptr(gothUser.UserID),
		AvatarURL:   utils.StringOrNil(gothUser.AvatarURL),
	}
	if taken {
		newUser.Username = username + "_" + newUser.ID.String()[:8]
	}

	if err := s.store.CreateUser(ctx, newUser); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return newUser, nil
}

// EnsureGuestUser returns the shared guest account, creating it on first use.
func (s *UserService) EnsureGuestUser(ctx context.Context) (*users.User, error) {
	user, err := s.store.GetUser(ctx, GuestUserID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	unlock := s.locks.Lock(userLockKey(GuestUserID))
	defer unlock()

	guestUser := &users.User{
		ID:          GuestUserID,
		Username:    "guest",
		DisplayName: "Guest User",
		CreatedAt:   s.now(),
	}
	// No username index, the guest cannot log in with a password and does not
	// reserve the name
	if err := s.store.UpdateUser(ctx, guestUser); err != nil {
		return nil, fmt.Errorf("create guest user: %w", err)
	}
	return guestUser, nil
}

func hashPassword(password string) (string, error) {
	if len(password) < minPasswordLength {
		return "", ErrPasswordTooShort
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

func usernameLockKey(username string) string {
	return "user:name:" + strings.ToLower(strings.TrimSpace(username))
}

func userLockKey(id uuid.UUID) string {
	return "user:id:" + id.String()
}
