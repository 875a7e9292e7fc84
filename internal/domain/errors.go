package domain

import "errors"

var (
	// ErrNotFound marks a switch/delete target that does not exist in
	// the store, and a blob Get/Delete against a missing key. Callers
	// turn it into a "not found" outcome rather than a generic failure.
	ErrNotFound = errors.New("conversation not found")

	// ErrNotAdded marks an append that did not happen: no target
	// conversation was supplied, or the store write failed.
	ErrNotAdded = errors.New("message not added")

	// ErrNoActiveConversation is returned by chat entry points when no
	// conversation is currently selected.
	ErrNoActiveConversation = errors.New("no active conversation")

	// ErrBackendUnavailable wraps store or model backend failures that
	// are not a missing key.
	ErrBackendUnavailable = errors.New("backend unavailable")
)
