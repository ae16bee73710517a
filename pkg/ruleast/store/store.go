// Package store persists named rules and their encoded trees.
package store

import (
	"errors"
	"time"
)

// Store persists rules.
// Implementations must be safe for concurrent use.
type Store interface {
	// Save stores a rule, replacing any rule with the same ID.
	// A replaced rule keeps its original CreatedAt. A zero CreatedAt is
	// set to the current time.
	Save(r Rule) error

	// Load retrieves a rule by ID.
	// Returns ErrNotFound if the rule doesn't exist.
	Load(id string) (Rule, error)

	// List returns metadata for all rules, oldest first.
	// Returns an empty slice (not error) if the store is empty.
	List() ([]Info, error)

	// Delete removes a rule.
	// Returns ErrNotFound if the rule doesn't exist.
	Delete(id string) error

	// Close releases any resources (connections, files).
	Close() error
}

// Rule is a stored rule: its source text and the JSON encoding of its tree.
type Rule struct {
	ID        string
	Name      string
	Text      string
	Tree      []byte
	CreatedAt time.Time
}

// Info provides metadata without loading the tree.
type Info struct {
	ID        string
	Name      string
	Text      string
	CreatedAt time.Time
	Size      int64
}

// Sentinel errors for store operations.
var (
	// ErrNotFound indicates a rule doesn't exist.
	ErrNotFound = errors.New("rule not found")

	// ErrStoreClosed indicates the store has been closed.
	ErrStoreClosed = errors.New("rule store closed")

	// ErrInvalidRule indicates a rule without an ID.
	ErrInvalidRule = errors.New("rule has no id")
)

func infoOf(r Rule) Info {
	return Info{
		ID:        r.ID,
		Name:      r.Name,
		Text:      r.Text,
		CreatedAt: r.CreatedAt,
		Size:      int64(len(r.Tree)),
	}
}
