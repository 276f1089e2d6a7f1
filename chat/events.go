package chat

import (
	"encoding/json"
	"errors"

	"job-portal/backend/models"
)

// 客戶端與伺服器之間往來的具名事件
const (
	EventJoinRoom       = "join_room"       // client -> server，必須先於其他事件
	EventChatHistory    = "chat_history"    // server -> client，只發給剛加入的連線
	EventSendMessage    = "send_message"    // client -> server
	EventReceiveMessage = "receive_message" // server -> client(s)，發話者除外
	EventTyping         = "typing"          // client -> server
	EventUserTyping     = "user_typing"     // server -> client(s)，發話者除外
	EventError          = "error"           // server -> client，回報被拒絕的事件
)

// Envelope 是線上傳輸的事件外層結構。
// Data 先保留原始 JSON，依 Event 名稱再解析成對應的 payload，
// 避免直接信任鬆散的訊息形狀。
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// JoinRoomPayload 對應 join_room 事件
type JoinRoomPayload struct {
	RoomID   string                 `json:"roomId"`
	UserID   string                 `json:"userId"`
	UserType models.ParticipantKind `json:"userType"`
}

// Validate 檢查 join_room 的必要欄位
func (p *JoinRoomPayload) Validate() error {
	if p.RoomID == "" {
		return errors.New("roomId is required")
	}
	if p.UserID == "" {
		return errors.New("userId is required")
	}
	if !p.UserType.Valid() {
		return errors.New("userType must be staff or candidate")
	}
	return nil
}

// SendMessagePayload 對應 send_message 事件
type SendMessagePayload struct {
	RoomID    string                 `json:"roomId"`
	UserID    string                 `json:"userId"`
	UserType  models.ParticipantKind `json:"userType"`
	Message   string                 `json:"message"`
	Timestamp int64                  `json:"timestamp"`
}

// Validate 檢查 send_message 的必要欄位，空白訊息在這裡擋下
func (p *SendMessagePayload) Validate() error {
	if p.RoomID == "" {
		return errors.New("roomId is required")
	}
	if p.Message == "" {
		return errors.New("message must not be empty")
	}
	return nil
}

// TypingPayload 對應 typing 事件
type TypingPayload struct {
	RoomID   string `json:"roomId"`
	UserID   string `json:"userId"`
	IsTyping bool   `json:"isTyping"`
}

// Validate 檢查 typing 的必要欄位
func (p *TypingPayload) Validate() error {
	if p.RoomID == "" {
		return errors.New("roomId is required")
	}
	if p.UserID == "" {
		return errors.New("userId is required")
	}
	return nil
}

// UserTypingPayload 是廣播給其他參與者的打字狀態
type UserTypingPayload struct {
	UserID   string `json:"userId"`
	IsTyping bool   `json:"isTyping"`
}

// ErrorPayload 對應 error 事件
type ErrorPayload struct {
	Message string `json:"message"`
}

// NewEnvelope 將 payload 包進事件外層並序列化成可直接寫入連線的 bytes
func NewEnvelope(event string, payload interface{}) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Event: event, Data: data})
}
