// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package identity persists the customer identity on this device.
//
// A Store is a small string key-value store. The widget only ever uses two
// keys (KeyCustomerID and KeyCustomerName); ReadIdentity and WriteIdentity
// wrap them into an Identity value.
package identity

import (
	"errors"
	"fmt"
	"io"
)

// =============================================================================
// KEYS
// =============================================================================

const (
	// KeyCustomerID holds the opaque id returned by createCustomer.
	KeyCustomerID = "freecom-customer-id"
	// KeyCustomerName holds the generated display name.
	KeyCustomerName = "freecom-customer-name"
)

// =============================================================================
// ERRORS
// =============================================================================

// ErrNotFound is returned by Get when the key is absent.
var ErrNotFound = &StoreError{Message: "key not found"}

// ErrUnknownBackend is returned by Open for an unsupported backend name.
var ErrUnknownBackend = &StoreError{Message: "unknown identity backend"}

// StoreError represents an identity store error.
// It can be compared using errors.Is.
type StoreError struct {
	Message string
}

func (e *StoreError) Error() string {
	return e.Message
}

// Is implements errors.Is support for comparing store errors.
func (e *StoreError) Is(target error) bool {
	t, ok := target.(*StoreError)
	if !ok {
		return false
	}
	return e.Message == t.Message
}

// =============================================================================
// STORE INTERFACE
// =============================================================================

// Store is the local key-value persistence used for the customer identity.
// Implementations must be safe for concurrent use.
type Store interface {
	// Get returns the value for key, or ErrNotFound.
	Get(key string) (string, error)
	// Set stores value under key, replacing any previous value.
	Set(key, value string) error
	// Clear removes every key.
	Clear() error
	io.Closer
}

// Identity is the customer identity stored on this device.
type Identity struct {
	CustomerID string
	Name       string
}

// Complete reports whether both the id and the name are present.
func (i Identity) Complete() bool {
	return i.CustomerID != "" && i.Name != ""
}

// ReadIdentity loads the identity from s. Absent keys leave the matching
// field empty; only real storage failures are returned as errors.
func ReadIdentity(s Store) (Identity, error) {
	var id Identity
	var err error

	if id.CustomerID, err = get(s, KeyCustomerID); err != nil {
		return Identity{}, err
	}
	if id.Name, err = get(s, KeyCustomerName); err != nil {
		return Identity{}, err
	}
	return id, nil
}

func get(s Store, key string) (string, error) {
	v, err := s.Get(key)
	if errors.Is(err, ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("identity: read %s: %w", key, err)
	}
	return v, nil
}

// WriteIdentity persists both fields of id to s.
func WriteIdentity(s Store, id Identity) error {
	if err := s.Set(KeyCustomerID, id.CustomerID); err != nil {
		return fmt.Errorf("identity: write %s: %w", KeyCustomerID, err)
	}
	if err := s.Set(KeyCustomerName, id.Name); err != nil {
		return fmt.Errorf("identity: write %s: %w", KeyCustomerName, err)
	}
	return nil
}

// =============================================================================
// FACTORY
// =============================================================================

// Open returns the store for backend ("file", "sqlite" or "memory").
// path is ignored by the memory backend.
func Open(backend, path string) (Store, error) {
	switch backend {
	case "file", "":
		return NewFileStore(path)
	case "sqlite":
		return NewSQLiteStore(path)
	case "memory":
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, backend)
	}
}
