package service

import "errors"

var (
	ErrTournamentNotFound  = errors.New("tournament not found")
	ErrDuplicateTournament = errors.New("tournament name already exists")
	ErrMissingFields       = errors.New("required fields are missing")
	ErrMalformedDocument   = errors.New("tournament document is malformed")

	ErrUserNotFound       = errors.New("user not found")
	ErrUsernameTaken      = errors.New("username is already in use")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrPasswordTooShort   = errors.New("password must be at least 8 characters")
)
