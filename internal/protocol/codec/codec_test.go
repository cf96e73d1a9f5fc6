package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palemoky/card-battle-arena/internal/protocol"
)

func TestEncodeDecode(t *testing.T) {
	msg := MustNewMessage(protocol.MsgJoinRoom, protocol.JoinRoomPayload{RoomID: "room-1"})
	defer PutMessage(msg)

	data, err := Encode(msg)
	require.NoError(t, err)

	decoded, err := Decode(data)
	require.NoError(t, err)
	defer PutMessage(decoded)

	assert.Equal(t, protocol.MsgJoinRoom, decoded.Type)

	payload, err := ParsePayload[protocol.JoinRoomPayload](decoded)
	require.NoError(t, err)
	assert.Equal(t, "room-1", payload.RoomID)
}

func TestDecode_Invalid(t *testing.T) {
	_, err := Decode([]byte("{not json"))
	assert.Error(t, err)
}

func TestNewErrorMessage(t *testing.T) {
	msg := NewErrorMessage(protocol.ErrCodeRoomFull)
	defer PutMessage(msg)

	payload, err := ParsePayload[protocol.ErrorPayload](msg)
	require.NoError(t, err)
	assert.Equal(t, protocol.ErrCodeRoomFull, payload.Code)
	assert.Equal(t, protocol.ErrorMessages[protocol.ErrCodeRoomFull], payload.Message)

	custom := NewErrorMessageWithText(protocol.ErrCodeUnknown, "boom")
	defer PutMessage(custom)
	payload, err = ParsePayload[protocol.ErrorPayload](custom)
	require.NoError(t, err)
	assert.Equal(t, "boom", payload.Message)
}
