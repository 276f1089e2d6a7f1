package chat

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"job-portal/backend/models"

	"github.com/gorilla/websocket"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// upgrader 用於將 HTTP 連線升級為 WebSocket 連線
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// 設定true:允許所有來源的連線
		return true
	},
}

// Handler 聚合聊天核心的 HTTP 進入點
type Handler struct {
	hub   *Hub
	store Store
}

// NewHandler 創建並返回一個新的 Handler 實例
func NewHandler(hub *Hub, store Store) *Handler {
	return &Handler{hub: hub, store: store}
}

// ServeWS 處理 WebSocket 連線請求。
// 加入聊天室不在這裡發生：連線建立後客戶端必須自行送出 join_room 事件。
func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("Failed to upgrade to WebSocket: %v", err)
		return
	}

	client := &Client{
		hub:    h.hub,
		store:  h.store,
		conn:   conn,
		send:   make(chan []byte, 256),
		connID: primitive.NewObjectID().Hex(), // 每條連線一個識別碼
	}

	go client.writePump()
	client.readPump() // readPump 會在連線關閉時自動清理在線紀錄
}

// ChatHistoryResponse 代表聊天記錄的回應結構
type ChatHistoryResponse struct {
	Messages []models.ChatMessage `json:"messages"`
	Error    string               `json:"error,omitempty"`
}

// HandleChatHistory 處理獲取聊天記錄的請求 (REST 介面，回放同一份日誌)
func (h *Handler) HandleChatHistory(w http.ResponseWriter, r *http.Request) {
	// 從 URL 查詢參數提取聊天室 ID
	roomID := r.URL.Query().Get("roomId")
	if roomID == "" {
		http.Error(w, "Room ID is required", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), storeTimeout)
	defer cancel()

	messages, err := h.store.History(ctx, roomID)
	if err != nil {
		log.Printf("Error getting chat history for room %s: %v", roomID, err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(ChatHistoryResponse{Messages: messages})
}

// roomParticipant 是在線名單回應中的單一成員 (不洩漏連線識別碼)
type roomParticipant struct {
	UserID   string                 `json:"userId"`
	UserType models.ParticipantKind `json:"userType"`
}

// HandleRoomPresence 處理獲取聊天室在線名單的請求
func (h *Handler) HandleRoomPresence(w http.ResponseWriter, r *http.Request) {
	roomID := r.URL.Query().Get("roomId")
	if roomID == "" {
		http.Error(w, "Room ID is required", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), storeTimeout)
	defer cancel()

	presence, err := h.store.ListPresence(ctx, roomID)
	if err != nil {
		log.Printf("Error getting presence for room %s: %v", roomID, err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	participants := make([]roomParticipant, 0, len(presence))
	for userID, p := range presence {
		participants = append(participants, roomParticipant{UserID: userID, UserType: p.UserType})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string][]roomParticipant{"participants": participants})
}
