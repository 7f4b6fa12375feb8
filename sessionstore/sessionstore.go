// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package sessionstore persists the session token across process
// restarts.  The client package performs no persistence of its own; a
// caller wanting it loads the token from a Store at startup, hands it
// to the client with SetSession, and writes it back on every change.
//
//	store, err := sessionstore.New(sessionstore.Redis,
//		sessionstore.WithRedisClient(rdb))
//	token, err := store.Load(ctx)
//	c.SetSession(token)
//	...
//	err = store.Save(ctx, c.Session())
package sessionstore

import (
	"context"
	"errors"
)

// Common errors for session store operations.
var (
	ErrInvalidConfig    = errors.New("invalid session store configuration")
	ErrInvalidStoreType = errors.New("invalid session store type")
)

// Store holds one session token.
type Store interface {
	// Load retrieves the stored token.  An empty string with a nil
	// error means no token is stored (not an error).
	Load(ctx context.Context) (string, error)

	// Save replaces the stored token.
	Save(ctx context.Context, token string) error

	// Clear removes any stored token.
	Clear(ctx context.Context) error

	// Close closes the store and releases any resources.
	Close() error
}
