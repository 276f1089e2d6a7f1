package chat

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"job-portal/backend/models"

	"github.com/gorilla/websocket"
)

const (
	// 將訊息寫入到遠端對等點的最長時間
	writeWait = 10 * time.Second

	// 允許從遠端對等點讀取下一個 pong 訊息的最長時間。
	pongWait = 60 * time.Second

	// 發送 ping 訊息給遠端對等點的週期。
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 4096

	// 對共享儲存的單次操作時限
	storeTimeout = 5 * time.Second
)

// Client 代表一個 WebSocket 客戶端，也是每條連線的會話狀態機：
// 連線建立後處於未加入狀態，收到合法的 join_room 後才算 Joined，
// 在那之前的 send_message / typing 一律拒絕。
// 事件在 readPump 中逐一處理，單一連線不會有兩個事件併發執行。
type Client struct {
	hub   *Hub
	store Store
	conn  *websocket.Conn // WebSocket 連線物件，透過它來讀寫訊息
	send  chan []byte     // 已序列化的事件，由 writePump 送往前端

	// send 可能同時被 Hub (被取代/淘汰時關閉) 與 readPump (回放歷史、
	// 回報錯誤) 碰到，用 mu+closed 保護，避免往已關閉的通道寫入
	mu     sync.Mutex
	closed bool

	connID   string // 本次連線的識別碼，斷線清理時用來比對在線紀錄
	joined   bool
	RoomID   string // 客戶端所在的聊天室 ID
	UserID   string
	UserType models.ParticipantKind
}

// trySend 嘗試把事件排入發送通道，不阻塞；
// 通道已關閉或已滿時回傳 false，由呼叫端決定要不要淘汰這條連線
func (c *Client) trySend(payload []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- payload:
		return true
	default:
		return false
	}
}

// closeSend 關閉發送通道，重複呼叫是安全的
func (c *Client) closeSend() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// readPump 讀取用戶傳來的事件，解析後驅動 Hub 與 Store
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.cleanupPresence()
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error { c.conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })
	for {
		_, p, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Println("Client disconnected gracefully.")
			} else {
				log.Printf("Error reading message: %v", err)
			}
			break
		}

		// 先解析事件外層，再依事件名稱解析 payload
		var env Envelope
		if err := json.Unmarshal(p, &env); err != nil {
			log.Printf("Error unmarshalling event envelope: %v", err)
			c.sendError("malformed event")
			continue
		}

		switch env.Event {
		case EventJoinRoom:
			c.handleJoinRoom(env.Data)
		case EventSendMessage:
			c.handleSendMessage(env.Data)
		case EventTyping:
			c.handleTyping(env.Data)
		default:
			log.Printf("Unknown event %q from connection %s", env.Event, c.connID)
			c.sendError("unknown event")
		}
	}
}

// handleJoinRoom 處理 join_room：登錄在線紀錄、向 Hub 註冊，
// 並把歷史訊息回放給「這條連線」(不廣播)
func (c *Client) handleJoinRoom(data json.RawMessage) {
	if c.joined {
		c.sendError("already joined a room")
		return
	}

	var payload JoinRoomPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		log.Printf("Error unmarshalling join_room payload: %v", err)
		c.sendError("malformed join_room payload")
		return
	}
	if err := payload.Validate(); err != nil {
		c.sendError(err.Error())
		return
	}

	c.RoomID = payload.RoomID
	c.UserID = payload.UserID
	c.UserType = payload.UserType

	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()

	presence := models.Presence{UserType: c.UserType, ConnID: c.connID}
	if err := c.store.SavePresence(ctx, c.RoomID, c.UserID, presence); err != nil {
		log.Printf("Error saving presence for user %s in room %s: %v", c.UserID, c.RoomID, err)
		c.sendError("failed to join room, please retry")
		c.RoomID, c.UserID, c.UserType = "", "", ""
		return
	}

	c.joined = true
	c.hub.register <- c

	// 取得歷史訊息並只回放給剛加入的連線
	history, err := c.store.History(ctx, c.RoomID)
	if err != nil {
		log.Printf("Error getting historical messages for room %s: %v", c.RoomID, err)
		c.sendError("failed to load chat history")
		return
	}
	c.sendEvent(EventChatHistory, history)
}

// handleSendMessage 處理 send_message：先附加到日誌，再廣播給
// 同聊天室的其他成員。附加失敗時回報發送者，不做無聲遺失。
func (c *Client) handleSendMessage(data json.RawMessage) {
	if !c.joined {
		// 未加入前的訊息事件直接丟棄
		log.Printf("Dropping send_message from connection %s before join_room", c.connID)
		c.sendError("join a room before sending messages")
		return
	}

	var payload SendMessagePayload
	if err := json.Unmarshal(data, &payload); err != nil {
		log.Printf("Error unmarshalling send_message payload: %v", err)
		c.sendError("malformed send_message payload")
		return
	}
	if err := payload.Validate(); err != nil {
		c.sendError(err.Error())
		return
	}

	// 發送者資訊以會話狀態為準，不信任 payload 自報的身分；
	// timestamp 是客戶端的顯示時間，原樣透傳
	msg := models.ChatMessage{
		UserID:    c.UserID,
		UserType:  c.UserType,
		Message:   payload.Message,
		Timestamp: payload.Timestamp,
	}

	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()

	if err := c.store.AppendMessage(ctx, c.RoomID, msg); err != nil {
		log.Printf("Error appending message to room %s: %v", c.RoomID, err)
		c.sendError("failed to send message, please retry")
		return
	}

	envelope, err := NewEnvelope(EventReceiveMessage, msg)
	if err != nil {
		log.Printf("Error marshalling receive_message: %v", err)
		return
	}
	c.hub.broadcast <- broadcastRequest{roomID: c.RoomID, sender: c, payload: envelope}
}

// handleTyping 處理 typing：轉發打字狀態給其他成員，不落地儲存
func (c *Client) handleTyping(data json.RawMessage) {
	if !c.joined {
		log.Printf("Dropping typing from connection %s before join_room", c.connID)
		return
	}

	var payload TypingPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		log.Printf("Error unmarshalling typing payload: %v", err)
		c.sendError("malformed typing payload")
		return
	}
	if err := payload.Validate(); err != nil {
		c.sendError(err.Error())
		return
	}

	envelope, err := NewEnvelope(EventUserTyping, UserTypingPayload{UserID: c.UserID, IsTyping: payload.IsTyping})
	if err != nil {
		log.Printf("Error marshalling user_typing: %v", err)
		return
	}
	c.hub.broadcast <- broadcastRequest{roomID: c.RoomID, sender: c, payload: envelope}
}

// cleanupPresence 在斷線時移除這條連線在共享儲存中的在線紀錄。
// 比對連線識別碼的工作在 Store 內完成，重新加入後的新紀錄不受影響。
func (c *Client) cleanupPresence() {
	if !c.joined {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()
	if err := c.store.CleanupConnection(ctx, c.connID); err != nil {
		log.Printf("Error cleaning up presence for connection %s: %v", c.connID, err)
	}
}

// sendEvent 將事件排入這條連線自己的發送通道，排不進去就放棄
func (c *Client) sendEvent(event string, payload interface{}) {
	envelope, err := NewEnvelope(event, payload)
	if err != nil {
		log.Printf("Error marshalling %s event: %v", event, err)
		return
	}
	if !c.trySend(envelope) {
		log.Printf("Dropping %s event for connection %s: send channel closed or full", event, c.connID)
	}
}

// sendError 回報被拒絕的事件給發送者本人
func (c *Client) sendError(message string) {
	c.sendEvent(EventError, ErrorPayload{Message: message})
}

// writePump 接收 Hub 廣播來的事件，寫給前端
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case payload, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// 如果這個 channel 被關閉了（ok == false），就送出 CloseMessage
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				log.Printf("Error writing message: %v", err)
				return
			}

		// 接收定時器以保持連線活躍並檢測客戶端是否仍在線。
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
