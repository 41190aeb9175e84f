package models

// Media player subsystem payloads. Commands address players by their
// MPRIS short name; events carry the name of the player they came
// from.

// PlayerTarget selects which player a no-argument command acts on.
type PlayerTarget struct {
	Player string
}

// PlayerStatus reports a playback status change.
type PlayerStatus struct {
	Player     string
	PlayStatus string
}

// SeekOffset is a relative seek, in signed microseconds.
type SeekOffset struct {
	Player       string
	OffsetMicros int64
}

// PositionChange is an absolute position set, in microseconds.
type PositionChange struct {
	Player   string
	Position int64
}

// SeekEvent reports that a player's position jumped.
type SeekEvent struct {
	Player   string
	Position int64
}

// OpenURIRequest asks a player to load a URI.
type OpenURIRequest struct {
	Player string
	URI    string
}

// PropertyRequest names a property to read.
type PropertyRequest struct {
	Player string
	Name   string
}

// PropertyValue carries a property read result or a value to write.
type PropertyValue struct {
	Player string
	Name   string
	Value  interface{}
}

// TrackMetadata is the subset of MPRIS track metadata the bridge
// forwards to clients.
type TrackMetadata struct {
	Player string
	Title  string
	Artist string
	Album  string
	// Length of the track in microseconds.
	Length int64
}
