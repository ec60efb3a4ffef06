package model

import "errors"

var (
	// ErrMalformedRecord marks a store row missing required identity fields.
	ErrMalformedRecord = errors.New("malformed record")
	// ErrAuthorizationDenied marks a mutation attempted without the required role.
	ErrAuthorizationDenied = errors.New("authorization denied")
	// ErrNotFound marks a task that no longer exists in the store.
	ErrNotFound = errors.New("not found")
	// ErrStopped marks an operation against a torn-down controller.
	ErrStopped = errors.New("controller stopped")
)
