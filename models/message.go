package models

// ParticipantKind 定義聊天室參與者的身分類別
type ParticipantKind string

const (
	KindStaff     ParticipantKind = "staff"     // 校方 (HR / 系所)
	KindCandidate ParticipantKind = "candidate" // 求職者
)

// Valid 檢查身分類別是否屬於封閉集合
func (k ParticipantKind) Valid() bool {
	return k == KindStaff || k == KindCandidate
}

// ChatMessage 代表一則聊天訊息
// Timestamp 是客戶端送出時的毫秒時間戳，僅作為顯示用途；
// 伺服器端以「到達順序」決定訊息在日誌中的順序，不依 Timestamp 重排。
type ChatMessage struct {
	UserID    string          `json:"userId"`
	UserType  ParticipantKind `json:"userType"`
	Message   string          `json:"message"`
	Timestamp int64           `json:"timestamp"`
}

// Presence 代表某個聊天室內一位在線參與者的登錄資料
// ConnID 是該參與者目前連線的識別碼，斷線清理時用來比對，
// 避免誤刪同一身分重新加入後的新紀錄。
type Presence struct {
	UserType ParticipantKind `json:"userType"`
	ConnID   string          `json:"connId"`
}
