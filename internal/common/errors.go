// Package common defines shared constants and sentinel errors used across
// CloudKeeper components. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository / remote-store errors.
	ErrNotFound      = errors.New("not found")
	ErrInvalidRecord = errors.New("invalid record")

	// Transport and session errors.
	ErrUnauthorized = errors.New("unauthorized")
	ErrUnavailable  = errors.New("backend unavailable")
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")

	// File-management runtime errors.
	ErrOversize = errors.New("file too large")
	ErrUpload   = errors.New("upload failed")
	ErrQuery    = errors.New("query failed")
)
