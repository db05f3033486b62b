// Package common defines shared constants and sentinel errors used across
// client and server layers of FlashRead. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Input / validation errors surfaced to the user.
	ErrorFileTooLarge      = errors.New("file too large")
	ErrorUnsupportedFormat = errors.New("unsupported file format")
	ErrorEmptyDocument     = errors.New("no valid words found")

	// Backup format errors.
	ErrorUnsupportedBackupVersion = errors.New("unsupported backup format")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")

	// Token lifecycle errors.
	ErrTokenExpired        = errors.New("token expired")
	ErrRefreshTokenExpired = errors.New("refresh token expired")
)
