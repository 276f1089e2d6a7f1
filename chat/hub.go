package chat

import (
	"log"
)

// broadcastRequest 代表一次聊天室內的扇出：把 payload 送給
// 同聊天室裡除了 sender 以外的所有在線成員
type broadcastRequest struct {
	roomID  string
	sender  *Client
	payload []byte
}

// Hub 維護所有活躍的 WebSocket 客戶端，並處理訊息的廣播。
// rooms 以 roomID -> userID -> client 索引，同一身分在同一聊天室
// 只會有一筆在線紀錄；所有狀態變更都發生在單一 Run 迴圈中，
// 因此不需要鎖。
type Hub struct {
	rooms      map[string]map[string]*Client
	broadcast  chan broadcastRequest
	register   chan *Client
	unregister chan *Client
}

// NewHub 創建並返回一個新的 Hub 實例
func NewHub() *Hub {
	return &Hub{
		broadcast:  make(chan broadcastRequest),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		rooms:      make(map[string]map[string]*Client),
	}
}

// Run 啟動 Hub 的運行迴圈
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.handleRegister(client)
		case client := <-h.unregister:
			h.handleUnregister(client)
		case req := <-h.broadcast:
			h.handleBroadcast(req)
		}
	}
}

// handleRegister 將客戶端登錄到其聊天室。
// 同一身分重複加入時採 last-write-wins：新連線直接覆蓋舊紀錄，
// 並關閉被取代連線的發送通道讓它自行收尾。
func (h *Hub) handleRegister(client *Client) {
	members, ok := h.rooms[client.RoomID]
	if !ok {
		members = make(map[string]*Client)
		h.rooms[client.RoomID] = members
	}

	if prev, ok := members[client.UserID]; ok && prev != client {
		prev.closeSend()
		log.Printf("User %s rejoined room %s, replacing stale connection %s", client.UserID, client.RoomID, prev.connID)
	}

	members[client.UserID] = client
	log.Printf("User %s (%s) joined room %s. Total clients in room: %d", client.UserID, client.UserType, client.RoomID, len(members))
}

// handleUnregister 處理連線中斷後的清理。
// 只有當紀錄仍指向這個連線時才移除：若該身分已經用新連線重新加入，
// 舊連線的斷線清理不可以動到新紀錄。
func (h *Hub) handleUnregister(client *Client) {
	members, ok := h.rooms[client.RoomID]
	if !ok {
		return // 從未加入任何聊天室的連線，斷線時什麼都不用做
	}

	current, ok := members[client.UserID]
	if !ok || current != client {
		return // 紀錄已被同身分的新連線覆蓋，保留新紀錄
	}

	delete(members, client.UserID)
	client.closeSend()
	if len(members) == 0 {
		delete(h.rooms, client.RoomID) // 如果房間沒有客戶端了，就刪除房間
	}
	log.Printf("User %s left room %s. Total clients in room: %d", client.UserID, client.RoomID, len(members))
}

// handleBroadcast 將事件扇出給聊天室內除發送者以外的所有成員。
// 對單一成員的投遞失敗 (發送通道已滿，通常代表連線已死) 只會
// 淘汰該成員，不會影響其他成員收到這次廣播。
func (h *Hub) handleBroadcast(req broadcastRequest) {
	members, ok := h.rooms[req.roomID]
	if !ok {
		log.Printf("Room %s not found for broadcasting message.", req.roomID)
		return
	}

	for userID, client := range members {
		if client == req.sender {
			continue // 發送者端已有樂觀更新，不回送自己的訊息
		}
		if !client.trySend(req.payload) {
			// 投遞失敗只淘汰這一個成員，其餘成員照常收到廣播
			client.closeSend()
			delete(members, userID)
			if len(members) == 0 {
				delete(h.rooms, req.roomID)
			}
			log.Printf("Client channel is full, dropped user %s from room %s", userID, req.roomID)
		}
	}
}
