package types

import "github.com/google/uuid"

// ID identifies kiosks, capabilities and items.
type ID = uuid.UUID

// NilID is the zero identifier. No live kiosk or item uses it.
var NilID = uuid.Nil

// NewID generates a time-ordered UUID v7 identifier.
func NewID() ID {
	id, err := uuid.NewV7()
	if err != nil {
		// Fallback to UUID v4 if v7 generation fails
		return uuid.New()
	}
	return id
}

// NewSecretID generates a random UUID v4. Capability identifiers use it
// because v7 identifiers leak their creation time.
func NewSecretID() ID {
	return uuid.New()
}

// ParseID parses the canonical string form of an ID.
// Returns ErrInvalidID if s is empty or malformed.
func ParseID(s string) (ID, error) {
	if s == "" {
		return NilID, ErrInvalidID
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return NilID, ErrInvalidID
	}
	return id, nil
}
