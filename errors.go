package lyra

import "errors"

var (
	// ErrInvalidPlayer is returned by TryNew when the given name does
	// not resolve to a live MPRIS player on the bus.
	ErrInvalidPlayer = errors.New("lyra: invalid player")
	// ErrPropertyNotFound is returned when a requested metadata key is
	// absent from the player's metadata dictionary.
	ErrPropertyNotFound = errors.New("lyra: property not found")
	// ErrTypeMismatch is returned when a property value cannot be
	// stored into the requested Go type.
	ErrTypeMismatch = errors.New("lyra: property type mismatch")
)
