package usecase

import "errors"

// Sentinel errors for the use case layer
var (
	// Precondition failures (StateError)
	ErrNoDirectory = errors.New("no contact directory loaded")
	ErrNoSlots     = errors.New("no slots set")
	ErrNoGateway   = errors.New("no messaging gateway configured")

	// Input failures
	ErrNoParseableLines = errors.New("no availability line could be parsed")
)

// Context keys for error values
const (
	WorkspaceIDKey = "workspace_id"
	ContactIDKey   = "contact_id"
)
