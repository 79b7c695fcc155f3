// internal/domain/twferr/twferr.go
//
// Package twferr holds the error taxonomy shared by the forum services and
// the request handlers. Services wrap these with fmt.Errorf("...: %w");
// handlers translate them to pages with errors.Is.
package twferr

import "errors"

var (
	// ErrNotFound: a referenced forum, course, module or discussion is absent,
	// or a discussion does not belong to the forum it was requested under.
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized: the caller is not signed in, is a guest where a real
	// account is required, or lacks the capability for the action.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInvalidAction: a request asked for both or neither of two mutually
	// exclusive operations.
	ErrInvalidAction = errors.New("invalid action")

	// ErrTrackingDisallowed: read tracking cannot be changed for this user
	// in this forum.
	ErrTrackingDisallowed = errors.New("read tracking not allowed")

	// ErrSubscription: a subscribe or unsubscribe could not be completed.
	ErrSubscription = errors.New("subscription could not be changed")
)
