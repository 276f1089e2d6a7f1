package chat

import (
	"encoding/json"
	"testing"

	"job-portal/backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJoinRoomPayloadValidate(t *testing.T) {
	tests := []struct {
		name    string
		payload JoinRoomPayload
		wantErr bool
	}{
		{"合法", JoinRoomPayload{RoomID: "r1", UserID: "u1", UserType: models.KindStaff}, false},
		{"缺 roomId", JoinRoomPayload{UserID: "u1", UserType: models.KindStaff}, true},
		{"缺 userId", JoinRoomPayload{RoomID: "r1", UserType: models.KindCandidate}, true},
		{"身分不在封閉集合內", JoinRoomPayload{RoomID: "r1", UserID: "u1", UserType: "admin"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.payload.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSendMessagePayloadValidate(t *testing.T) {
	assert.NoError(t, (&SendMessagePayload{RoomID: "r1", Message: "hi"}).Validate())
	assert.Error(t, (&SendMessagePayload{RoomID: "r1"}).Validate(), "空白訊息應該被拒絕")
	assert.Error(t, (&SendMessagePayload{Message: "hi"}).Validate())
}

func TestNewEnvelopeRoundTrip(t *testing.T) {
	payload := models.ChatMessage{UserID: "u1", UserType: models.KindStaff, Message: "hello", Timestamp: 1000}
	data, err := NewEnvelope(EventReceiveMessage, payload)
	require.NoError(t, err)

	var env Envelope
	require.NoError(t, json.Unmarshal(data, &env))
	assert.Equal(t, EventReceiveMessage, env.Event)

	var got models.ChatMessage
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.Equal(t, payload, got)
}
