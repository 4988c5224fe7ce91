package domain

import "errors"

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailExists        = errors.New("email already registered")
	ErrCPFExists          = errors.New("cpf already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrRefreshTokenMismatch means the stored refresh token changed between
	// read and rotation, i.e. a concurrent refresh already won.
	ErrRefreshTokenMismatch = errors.New("refresh token mismatch")
)
