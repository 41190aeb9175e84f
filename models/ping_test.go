package models

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
)

func TestPingRoundTrip(t *testing.T) {
	ping, newErr := NewPing("Hello, World!", []string{"mp"})
	require.NoError(t, newErr)

	encoded, encodeErr := ping.Encode()
	require.NoError(t, encodeErr)

	decoded, decodeErr := DecodePing(encoded)
	require.NoError(t, decodeErr)

	assert.Equal(t, ping.GetId(), decoded.GetId())
	assert.Equal(t, ping.GetType(), decoded.GetType())
	assert.Equal(t,
		ping.GetTimestamp().Format(time.RFC3339),
		decoded.GetTimestamp().Format(time.RFC3339),
	)
	assert.Equal(t, "Hello, World!", decoded.GetMessage())
	assert.Equal(t, []string{"mp"}, decoded.Capabilities)
}

func TestDecodePingNullData(t *testing.T) {
	_, decodeErr := DecodePing(nil)
	assert.Error(t, decodeErr)
}

func TestMessageEncodesAsArray(t *testing.T) {
	message := Message{
		Method: "mp:rplayerstatus",
		Args:   &PlayerStatus{Player: "vlc", PlayStatus: "Playing"},
	}

	encoded, encodeErr := message.Encode()
	require.NoError(t, encodeErr)

	decoder := msgpack.NewDecoder(bytes.NewReader(encoded))
	arrLen, arrErr := decoder.DecodeArrayLen()
	require.NoError(t, arrErr)
	assert.Equal(t, 2, arrLen)

	method, methodErr := decoder.DecodeString()
	require.NoError(t, methodErr)
	assert.Equal(t, "mp:rplayerstatus", method)

	var status PlayerStatus
	require.NoError(t, decoder.Decode(&status))
	assert.Equal(t, "vlc", status.Player)
	assert.Equal(t, "Playing", status.PlayStatus)
}

func TestSerializableRoundTrip(t *testing.T) {
	serializable, newErr := NewSerializable()
	require.NoError(t, newErr)

	encoded, encodeErr := serializable.Encode()
	require.NoError(t, encodeErr)

	decoded, decodeErr := DecodeSerializable(encoded)
	require.NoError(t, decodeErr)
	assert.Equal(t, serializable.GetId(), decoded.GetId())
}
