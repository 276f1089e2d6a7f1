package chat

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"job-portal/backend/chat/mocks"
	"job-portal/backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestHandleChatHistory(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockStore(ctrl)
	handler := NewHandler(NewHub(), store)

	t.Run("缺少 roomId 時回 400", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/chat/history", nil)
		rec := httptest.NewRecorder()
		handler.HandleChatHistory(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("儲存失敗時回 500", func(t *testing.T) {
		store.EXPECT().History(gomock.Any(), "r1").Return(nil, errors.New("store unavailable"))
		req := httptest.NewRequest(http.MethodGet, "/chat/history?roomId=r1", nil)
		rec := httptest.NewRecorder()
		handler.HandleChatHistory(rec, req)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})

	t.Run("正常情況回傳日誌內容", func(t *testing.T) {
		store.EXPECT().History(gomock.Any(), "r1").Return([]models.ChatMessage{
			{UserID: "u1", UserType: models.KindStaff, Message: "hello", Timestamp: 1000},
		}, nil)
		req := httptest.NewRequest(http.MethodGet, "/chat/history?roomId=r1", nil)
		rec := httptest.NewRecorder()
		handler.HandleChatHistory(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var resp ChatHistoryResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Len(t, resp.Messages, 1)
		assert.Equal(t, "hello", resp.Messages[0].Message)
	})
}

func TestHandleRoomPresence(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockStore(ctrl)
	handler := NewHandler(NewHub(), store)

	t.Run("缺少 roomId 時回 400", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/chat/presence", nil)
		rec := httptest.NewRecorder()
		handler.HandleRoomPresence(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("回傳名單時不洩漏連線識別碼", func(t *testing.T) {
		store.EXPECT().ListPresence(gomock.Any(), "r1").Return(map[string]models.Presence{
			"u1": {UserType: models.KindStaff, ConnID: "secret-conn"},
		}, nil)
		req := httptest.NewRequest(http.MethodGet, "/chat/presence?roomId=r1", nil)
		rec := httptest.NewRecorder()
		handler.HandleRoomPresence(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.NotContains(t, rec.Body.String(), "secret-conn")

		var resp map[string][]roomParticipant
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Len(t, resp["participants"], 1)
		assert.Equal(t, "u1", resp["participants"][0].UserID)
		assert.Equal(t, models.KindStaff, resp["participants"][0].UserType)
	})
}
