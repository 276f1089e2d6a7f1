package chat

import (
	"context"
	"encoding/json"
	"log"

	"job-portal/backend/models"

	"github.com/redis/go-redis/v9"
)

const (
	// Redis key 前綴：chat_room:<roomID> 是在線名單的 hash，
	// messages:<roomID> 是該聊天室訊息日誌的 list
	presenceKeyPrefix = "chat_room:"
	messagesKeyPrefix = "messages:"
)

// Store 定義聊天核心依賴的共享儲存：在線名單 (hash) 與訊息日誌 (list)。
// 以介面抽象是為了讓多實例部署時所有狀態都落在外部的原子性儲存，
// 程序本身不持有跨實例狀態；測試時也可以用記憶體實作替代。
type Store interface {
	// SavePresence 登錄 (或覆蓋) 某聊天室內一位參與者的在線紀錄
	SavePresence(ctx context.Context, roomID, userID string, p models.Presence) error
	// RemovePresence 移除在線紀錄，不存在時不視為錯誤
	RemovePresence(ctx context.Context, roomID, userID string) error
	// ListPresence 列出某聊天室目前的在線名單 (userID -> Presence)
	ListPresence(ctx context.Context, roomID string) (map[string]models.Presence, error)
	// CleanupConnection 在連線中斷時，掃描所有聊天室並移除
	// 「連線識別碼相符」的在線紀錄；同一身分重新加入後的新紀錄
	// 因為帶有不同的連線識別碼，不會被舊連線的清理誤刪
	CleanupConnection(ctx context.Context, connID string) error
	// AppendMessage 將訊息附加到聊天室日誌的尾端 (伺服器到達順序)
	AppendMessage(ctx context.Context, roomID string, msg models.ChatMessage) error
	// History 回傳聊天室最近的訊息，由舊到新
	History(ctx context.Context, roomID string) ([]models.ChatMessage, error)
}

// RedisStore 是 Store 的 Redis 實作，hash/list 操作本身即具原子性，
// 多個連線的事件處理器可以併發讀寫而不需額外加鎖
type RedisStore struct {
	client       *redis.Client
	historyLimit int64 // 一次回放的訊息數量上限，避免無上限的日誌拖垮新加入者
}

// NewRedisStore 建立 RedisStore，historyLimit <= 0 時使用預設值 200
func NewRedisStore(client *redis.Client, historyLimit int64) *RedisStore {
	if historyLimit <= 0 {
		historyLimit = 200
	}
	return &RedisStore{client: client, historyLimit: historyLimit}
}

func presenceKey(roomID string) string { return presenceKeyPrefix + roomID }
func messagesKey(roomID string) string { return messagesKeyPrefix + roomID }

// SavePresence 以 HSET 寫入，同一 userID 重複加入時直接覆蓋 (last-write-wins)
func (s *RedisStore) SavePresence(ctx context.Context, roomID, userID string, p models.Presence) error {
	data, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return s.client.HSet(ctx, presenceKey(roomID), userID, data).Err()
}

// RemovePresence 以 HDEL 移除，欄位不存在時 Redis 回傳 0 而非錯誤
func (s *RedisStore) RemovePresence(ctx context.Context, roomID, userID string) error {
	return s.client.HDel(ctx, presenceKey(roomID), userID).Err()
}

// ListPresence 以 HGETALL 取得整個在線名單
func (s *RedisStore) ListPresence(ctx context.Context, roomID string) (map[string]models.Presence, error) {
	fields, err := s.client.HGetAll(ctx, presenceKey(roomID)).Result()
	if err != nil {
		return nil, err
	}

	participants := make(map[string]models.Presence, len(fields))
	for userID, raw := range fields {
		var p models.Presence
		if err := json.Unmarshal([]byte(raw), &p); err != nil {
			// 壞掉的紀錄跳過即可，不要讓整個名單查詢失敗
			log.Printf("Skipping corrupt presence entry for user %s in room %s: %v", userID, roomID, err)
			continue
		}
		participants[userID] = p
	}
	return participants, nil
}

// CleanupConnection 掃描所有聊天室的在線 hash，
// 只刪除連線識別碼與斷線連線相符的欄位
func (s *RedisStore) CleanupConnection(ctx context.Context, connID string) error {
	iter := s.client.Scan(ctx, 0, presenceKeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		fields, err := s.client.HGetAll(ctx, key).Result()
		if err != nil {
			return err
		}
		for userID, raw := range fields {
			var p models.Presence
			if err := json.Unmarshal([]byte(raw), &p); err != nil {
				log.Printf("Skipping corrupt presence entry %s in %s: %v", userID, key, err)
				continue
			}
			if p.ConnID == connID {
				if err := s.client.HDel(ctx, key, userID).Err(); err != nil {
					return err
				}
			}
		}
	}
	return iter.Err()
}

// AppendMessage 以 RPUSH 附加到日誌尾端
func (s *RedisStore) AppendMessage(ctx context.Context, roomID string, msg models.ChatMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return s.client.RPush(ctx, messagesKey(roomID), data).Err()
}

// History 以 LRANGE 取得最近 historyLimit 則訊息 (由舊到新)；
// 負的起始索引代表從尾端往回數，日誌比上限短時會自動涵蓋全部
func (s *RedisStore) History(ctx context.Context, roomID string) ([]models.ChatMessage, error) {
	raws, err := s.client.LRange(ctx, messagesKey(roomID), -s.historyLimit, -1).Result()
	if err != nil {
		return nil, err
	}

	messages := make([]models.ChatMessage, 0, len(raws))
	for _, raw := range raws {
		var msg models.ChatMessage
		if err := json.Unmarshal([]byte(raw), &msg); err != nil {
			log.Printf("Skipping corrupt message in room %s: %v", roomID, err)
			continue
		}
		messages = append(messages, msg)
	}
	return messages, nil
}
