package service

import (
	"context"
	"testing"

	"github.com/AdamBeresnev/bracket-api/internal/utils"
	"github.com/google/uuid"
	"github.com/markbates/goth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndLogin(t *testing.T) {
	svc := setupServices(t).users
	ctx := context.Background()

	user, err := svc.Register(ctx, RegisterInput{Username: "Alice", Email: "alice@example.com", Password: "correct horse"})
	require.NoError(t, err)
	assert.Equal(t, "Alice", user.Username)
	assert.Equal(t, "Alice", user.DisplayName)
	assert.NotEqual(t, "correct horse", user.PasswordHash)
	assert.Equal(t, testNow, user.CreatedAt)

	_, err = svc.Register(ctx, RegisterInput{Username: "alice", Password: "another password"})
	assert.ErrorIs(t, err, ErrUsernameTaken)

	_, err = svc.Register(ctx, RegisterInput{Username: "Bob", Password: "short"})
	assert.ErrorIs(t, err, ErrPasswordTooShort)

	_, err = svc.Register(ctx, RegisterInput{Username: " ", Password: "long enough"})
	assert.ErrorIs(t, err, ErrMissingFields)

	loggedIn, err := svc.Login(ctx, "ALICE", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, user.ID, loggedIn.ID)

	_, err = svc.Login(ctx, "Alice", "wrong horse")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, "Nobody", "correct horse")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestUpdateProfile(t *testing.T) {
	svc := setupServices(t).users
	ctx := context.Background()

	user, err := svc.Register(ctx, RegisterInput{Username: "Alice", Password: "correct horse"})
	require.NoError(t, err)

	updated, err := svc.UpdateProfile(ctx, user.ID, ProfilePatch{
		DisplayName: utils.Ptr("Alice A."),
		Password:    utils.Ptr("battery staple"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Alice A.", updated.DisplayName)

	_, err = svc.Login(ctx, "Alice", "correct horse")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Login(ctx, "Alice", "battery staple")
	require.NoError(t, err)

	_, err = svc.UpdateProfile(ctx, user.ID, ProfilePatch{Password: utils.Ptr("short")})
	assert.ErrorIs(t, err, ErrPasswordTooShort)

	_, err = svc.UpdateProfile(ctx, uuid.New(), ProfilePatch{})
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestFindOrCreateUserByProvider(t *testing.T) {
	svc := setupServices(t).users
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Username: "alice", Password: "correct horse"})
	require.NoError(t, err)

	gothUser := goth.User{
		Provider:  "discord",
		UserID:    "12345",
		NickName:  "alice",
		Name:      "Alice Liddell",
		Email:     "alice@example.com",
		AvatarURL: "https://cdn.example.com/a.png",
	}

	created, err := svc.FindOrCreateUserByProvider(ctx, gothUser)
	require.NoError(t, err)
	assert.NotEqual(t, "alice", created.Username, "a taken username gets a suffix")
	assert.Contains(t, created.Username, "alice_")
	assert.Equal(t, "Alice Liddell", created.DisplayName)
	assert.Equal(t, "https://cdn.example.com/a.png", utils.OrZero(created.AvatarURL))

	gothUser.AvatarURL = "https://cdn.example.com/b.png"
	again, err := svc.FindOrCreateUserByProvider(ctx, gothUser)
	require.NoError(t, err)
	assert.Equal(t, created.ID, again.ID)
	assert.Equal(t, "https://cdn.example.com/b.png", utils.OrZero(again.AvatarURL))

	stored, err := svc.GetUser(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, again.AvatarURL, stored.AvatarURL)

	_, err = svc.Login(ctx, created.Username, "")
	assert.ErrorIs(t, err, ErrInvalidCredentials, "OAuth accounts cannot log in with a password")
}

func TestEnsureGuestUser(t *testing.T) {
	svc := setupServices(t).users
	ctx := context.Background()

	guest, err := svc.EnsureGuestUser(ctx)
	require.NoError(t, err)
	assert.Equal(t, GuestUserID, guest.ID)

	again, err := svc.EnsureGuestUser(ctx)
	require.NoError(t, err)
	assert.Equal(t, guest, again)
}
