package models

import (
	"errors"

	"github.com/vmihailenco/msgpack/v5"
)

// Ping is the client hello: it carries the capability list used to
// decide which bridge modules to bring up.
type Ping struct {
	Serializable
	Message      string
	Capabilities []string
}

func NewPing(message string, capabilities []string) (*Ping, error) {
	baseSerializable, constructError := NewSerializable()
	if constructError != nil {
		return nil, constructError
	}
	return &Ping{*baseSerializable, message, capabilities}, nil
}

// -- GETTERS & SETTERS

func (p *Ping) GetMessage() string {
	return p.Message
}

// -- ENCODERS & DECODERS

func (p *Ping) Encode() ([]byte, error) {
	if p == nil {
		return nil, errors.New("serializable object marshaling error")
	}
	marshaledPing, marshalErr := msgpack.Marshal(p)
	if marshalErr != nil {
		return nil, marshalErr
	}
	return marshaledPing, nil
}

func DecodePing(data []byte) (*Ping, error) {
	if data == nil {
		return nil, errors.New("null data")
	}
	var serializedPing Ping
	marshalErr := msgpack.Unmarshal(data, &serializedPing)
	if marshalErr != nil {
		return nil, marshalErr
	}
	return &serializedPing, nil
}

// DecodePingFrom reads a Ping from a decoder whose envelope has
// already been consumed.
func DecodePingFrom(decoder *msgpack.Decoder) (*Ping, error) {
	var serializedPing Ping
	if decodeErr := decoder.Decode(&serializedPing); decodeErr != nil {
		return nil, decodeErr
	}
	return &serializedPing, nil
}
