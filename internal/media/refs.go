package media

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// RefScheme prefixes every locally created reference URI.
const RefScheme = "blob:"

var (
	// ErrUnknownRef is returned for URIs this store never minted.
	ErrUnknownRef = errors.New("media: unknown reference")
	// ErrReleased is returned when a reference is used or released after release.
	ErrReleased = errors.New("media: reference already released")
)

// Ref is a session-scoped handle on bytes the user supplied.
type Ref struct {
	URI  string
	Name string
}

type refEntry struct {
	name     string
	data     []byte
	released bool
}

// RefStore mints and releases local references. Released URIs are kept as
// tombstones so a second release is reported instead of silently ignored.
// A RefStore is owned by the UI goroutine and is not safe for concurrent use.
type RefStore struct {
	entries map[string]*refEntry
	live    int
}

// NewRefStore returns an empty store.
func NewRefStore() *RefStore {
	return &RefStore{entries: map[string]*refEntry{}}
}

// IsRef reports whether uri looks like a locally created reference.
func IsRef(uri string) bool { return strings.HasPrefix(uri, RefScheme) }

// Create registers data under a fresh URI that has never been handed out.
// Content is not inspected; an empty file still gets a reference.
func (s *RefStore) Create(name string, data []byte) (Ref, error) {
	uri := RefScheme + uuid.NewString()
	s.entries[uri] = &refEntry{name: name, data: data}
	s.live++
	log.Debug().Str("uri", uri).Str("name", name).Int("bytes", len(data)).Msg("ref created")
	return Ref{URI: uri, Name: name}, nil
}

// Open returns the bytes behind a live reference.
func (s *RefStore) Open(uri string) ([]byte, error) {
	e, ok := s.entries[uri]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownRef, uri)
	}
	if e.released {
		return nil, fmt.Errorf("%w: %s", ErrReleased, uri)
	}
	return e.data, nil
}

// Release frees the bytes behind uri. Releasing twice is an error.
func (s *RefStore) Release(uri string) error {
	e, ok := s.entries[uri]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownRef, uri)
	}
	if e.released {
		return fmt.Errorf("%w: %s", ErrReleased, uri)
	}
	e.released = true
	e.data = nil
	s.live--
	log.Debug().Str("uri", uri).Str("name", e.name).Msg("ref released")
	return nil
}

// Live returns how many references are currently unreleased.
func (s *RefStore) Live() int { return s.live }

// Released reports whether uri was minted here and has since been released.
func (s *RefStore) Released(uri string) bool {
	e, ok := s.entries[uri]
	return ok && e.released
}
