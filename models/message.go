package models

import (
	"bytes"

	"github.com/vmihailenco/msgpack/v5"
)

// Message is the msgpack-RPC envelope the bridge speaks: a two-element
// array of method string and argument payload.
type Message struct {
	Method string
	Args   interface{}
}

func (m *Message) Encode() ([]byte, error) {
	var buf bytes.Buffer
	encoder := msgpack.NewEncoder(&buf)
	if arrErr := encoder.EncodeArrayLen(2); arrErr != nil {
		return nil, arrErr
	}
	if methodErr := encoder.EncodeString(m.Method); methodErr != nil {
		return nil, methodErr
	}
	if argsErr := encoder.Encode(m.Args); argsErr != nil {
		return nil, argsErr
	}
	return buf.Bytes(), nil
}
